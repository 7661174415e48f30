package core

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/illarion/billcycle/internal/git"
	"github.com/illarion/billcycle/internal/security"
)

// OutputOptions controls WriteOutput
type OutputOptions struct {
	// Overwrite replaces an existing file
	Overwrite bool
	// Plaintext marks data as an unencrypted payload; such files are checked
	// against git
	Plaintext bool
}

// WriteOutput writes data to path inside workDir with owner-only permissions.
// For plaintext output it returns a warning when git could commit the file.
func (t *Tracker) WriteOutput(workDir, path string, data []byte, opts OutputOptions) (warning string, err error) {
	out, err := security.New(workDir)
	if err != nil {
		return "", err
	}
	defer out.Close()

	rel, err := out.WriteFile(path, data, opts.Overwrite)
	if err != nil {
		return "", err
	}
	t.log.Info("wrote output", zap.String("path", rel), zap.Bool("plaintext", opts.Plaintext))

	if !opts.Plaintext {
		return "", nil
	}

	exp := git.Check(workDir, rel)
	if exp.Exposed() {
		t.log.Warn("plaintext output visible to git", zap.String("path", rel), zap.Bool("tracked", exp.Tracked))
	}
	return exp.Warning(), nil
}

// StoreExposure reports how git sees the history store file
func (t *Tracker) StoreExposure(workDir string) (git.Exposure, error) {
	if t.db == nil {
		return git.Exposure{}, ErrNoHistory
	}
	storeAbs, err := filepath.Abs(t.db.Path())
	if err != nil {
		return git.Exposure{}, err
	}
	workAbs, err := filepath.Abs(workDir)
	if err != nil {
		return git.Exposure{}, err
	}
	rel, err := filepath.Rel(workAbs, storeAbs)
	if err != nil || strings.HasPrefix(rel, "..") {
		// Outside the working tree
		return git.Exposure{Path: t.db.Path()}, nil
	}
	return git.Check(workDir, filepath.ToSlash(rel)), nil
}
