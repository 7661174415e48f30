package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExposureWarning(t *testing.T) {
	tests := []struct {
		name    string
		exp     Exposure
		exposed bool
		warning string
	}{
		{"not a repo", Exposure{Path: "cycle.json"}, false, ""},
		{"ignored", Exposure{Path: "cycle.json", IsRepo: true, Ignored: true}, false, ""},
		{"unignored", Exposure{Path: "cycle.json", IsRepo: true}, true, "warning: cycle.json not in .gitignore (add to .gitignore)"},
		{"tracked", Exposure{Path: "cycle.json", IsRepo: true, Tracked: true, Ignored: true}, true, "warning: cycle.json is tracked by git (run: git rm --cached cycle.json)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exposed, tt.exp.Exposed())
			assert.Equal(t, tt.warning, tt.exp.Warning())
		})
	}
}

func TestCheck_Repository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	require.NoError(t, exec.Command("git", "-C", dir, "init", "-q").Run())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.secret.json\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cycle.secret.json"), []byte("{}"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cycle.json"), []byte("{}"), 0600))

	ignored := Check(dir, "cycle.secret.json")
	assert.True(t, ignored.IsRepo)
	assert.True(t, ignored.Ignored)
	assert.False(t, ignored.Exposed())

	plain := Check(dir, "cycle.json")
	assert.True(t, plain.IsRepo)
	assert.False(t, plain.Ignored)
	assert.True(t, plain.Exposed())
}

func TestCheck_NotRepository(t *testing.T) {
	exp := Check(t.TempDir(), "cycle.json")
	assert.False(t, exp.IsRepo)
	assert.Empty(t, exp.Warning())
}
