package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Exposure describes how git sees one path.
type Exposure struct {
	Path    string
	IsRepo  bool
	Tracked bool
	Ignored bool
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// Check reports how git sees path relative to workDir
func Check(workDir, path string) Exposure {
	exp := Exposure{Path: path}
	if !IsGitRepo(workDir) {
		return exp
	}
	exp.IsRepo = true
	exp.Tracked = IsTracked(workDir, path)
	exp.Ignored = IsIgnored(workDir, path)
	return exp
}

// Exposed reports whether a commit could pick the file up
func (e Exposure) Exposed() bool {
	return e.IsRepo && (e.Tracked || !e.Ignored)
}

// Warning returns a user-facing hint, or "" when the path is safe
func (e Exposure) Warning() string {
	switch {
	case !e.IsRepo:
		return ""
	case e.Tracked:
		return fmt.Sprintf("warning: %s is tracked by git (run: git rm --cached %s)", e.Path, e.Path)
	case !e.Ignored:
		return fmt.Sprintf("warning: %s not in .gitignore (add to .gitignore)", e.Path)
	}
	return ""
}
