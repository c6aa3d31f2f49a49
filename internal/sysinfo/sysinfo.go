// Package sysinfo captures the ambient environment snapshot embedded in prompts.
package sysinfo

import (
	"os"
	"os/exec"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// Unknown is the sentinel used when an environment fact cannot be read.
const Unknown = "unknown"

// Context is an immutable snapshot of the invocation environment.
// It is captured once per process and read-only thereafter.
type Context struct {
	WorkingDir string
	Shell      string
	OS         string
	User       string

	// GitBranch is the checked-out branch of the working directory, or ""
	// when the directory is not inside a git repository.
	GitBranch string
}

// Collector gathers a Context. Dependencies are injected so tests can
// substitute fakes without touching process state.
type Collector struct {
	getwd     func() (string, error)
	getenv    func(string) string
	uname     func() (string, error)
	gitBranch func(dir string) string
}

// NewCollector creates a production Collector using the real OS.
func NewCollector() *Collector {
	return &Collector{
		getwd:     os.Getwd,
		getenv:    os.Getenv,
		uname:     runUname,
		gitBranch: lookupGitBranch,
	}
}

// NewCollectorWithDeps creates a Collector with custom lookups (for testing).
func NewCollectorWithDeps(
	getwd func() (string, error),
	getenv func(string) string,
	uname func() (string, error),
	gitBranch func(dir string) string,
) *Collector {
	return &Collector{getwd: getwd, getenv: getenv, uname: uname, gitBranch: gitBranch}
}

// Collect gathers the snapshot. It never fails: any lookup error degrades
// that field to the Unknown sentinel. Collect has no side effects beyond
// reading OS state, so repeated calls within one process yield identical
// values.
func (c *Collector) Collect() Context {
	ctx := Context{
		WorkingDir: Unknown,
		Shell:      Unknown,
		OS:         Unknown,
		User:       Unknown,
	}

	if wd, err := c.getwd(); err == nil && wd != "" {
		ctx.WorkingDir = wd
		ctx.GitBranch = c.gitBranch(wd)
	}
	if shell := c.getenv("SHELL"); shell != "" {
		ctx.Shell = shell
	}
	if banner, err := c.uname(); err == nil && banner != "" {
		ctx.OS = banner
	}
	if user := c.getenv("USER"); user != "" {
		ctx.User = user
	}

	return ctx
}

func runUname() (string, error) {
	raw, err := exec.Command("uname", "-a").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// lookupGitBranch returns the short branch name for dir, or "" when dir is
// not in a repository or the head cannot be resolved. A detached head is
// reported as the abbreviated commit hash.
func lookupGitBranch(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	if head.Name().IsBranch() {
		return head.Name().Short()
	}
	hash := head.Hash().String()
	if len(hash) > 8 {
		hash = hash[:8]
	}
	return hash
}
