package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommitHash is a full git commit hash (40 hex characters, or 64 for
// repositories using SHA-256 object names).
type CommitHash string

// ParseCommitHash validates s as a full commit hash.
func ParseCommitHash(s string) (CommitHash, error) {
	if len(s) != 40 && len(s) != 64 {
		return "", fmt.Errorf("invalid commit hash %q: want 40 or 64 hex characters", s)
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("invalid commit hash %q: non-hex character %q", s, c)
		}
	}
	return CommitHash(s), nil
}

func (c CommitHash) String() string { return string(c) }

// Short returns the abbreviated form used in human-readable output.
func (c CommitHash) Short() string {
	if len(c) < 12 {
		return string(c)
	}
	return string(c[:12])
}

// ErrGitFileNotFound indicates a path does not exist at the requested commit.
var ErrGitFileNotFound = errors.New("file not found at commit")

// GitClient handles git command operations against the enclosing repository.
type GitClient interface {
	// RepoRoot returns the absolute path of the repository work tree.
	RepoRoot(ctx context.Context) (string, error)
	// MergeBase returns the merge base of two revisions.
	MergeBase(ctx context.Context, a, b string) (CommitHash, error)
	// ListTreeFiles lists blob paths under dir at commit, recursively,
	// relative to the repository root.
	ListTreeFiles(ctx context.Context, commit CommitHash, dir string) ([]string, error)
	// ShowFile returns the contents of path (relative to the repository
	// root) at commit. Returns ErrGitFileNotFound when the path does not
	// exist there.
	ShowFile(ctx context.Context, commit CommitHash, path string) ([]byte, error)
	// FirstCommit returns the oldest commit reachable from start in which
	// path was touched. Returns ErrGitFileNotFound when no such commit
	// exists.
	FirstCommit(ctx context.Context, start CommitHash, path string) (CommitHash, error)
}

// SystemGitClient implements GitClient using the system git binary.
type SystemGitClient struct {
	dir     string
	verbose bool
}

// NewSystemGitClient creates a SystemGitClient rooted at dir (any directory
// inside the work tree).
func NewSystemGitClient(dir string, verbose bool) *SystemGitClient {
	return &SystemGitClient{dir: dir, verbose: verbose}
}

// run executes a git command and returns trimmed stdout.
func (g *SystemGitClient) run(ctx context.Context, args ...string) (string, error) {
	out, err := g.runRaw(ctx, args...)
	return strings.TrimRight(string(out), " \t\r\n"), err
}

// runRaw executes a git command and returns stdout verbatim. Document
// contents must round-trip byte for byte, so no trimming here.
func (g *SystemGitClient) runRaw(ctx context.Context, args ...string) ([]byte, error) {
	if g.verbose {
		fmt.Fprintf(os.Stderr, "[DEBUG] git %s (in %s)\n", strings.Join(args, " "), g.dir)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("git %s: %w: %s",
				strings.Join(args, " "), err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// RepoRoot returns the work tree root.
func (g *SystemGitClient) RepoRoot(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotInRepository, err)
	}
	return out, nil
}

// MergeBase returns the merge base of two revisions.
func (g *SystemGitClient) MergeBase(ctx context.Context, a, b string) (CommitHash, error) {
	out, err := g.run(ctx, "merge-base", a, b)
	if err != nil {
		return "", err
	}
	return ParseCommitHash(out)
}

// ListTreeFiles lists blob paths under dir at commit.
func (g *SystemGitClient) ListTreeFiles(ctx context.Context, commit CommitHash, dir string) ([]string, error) {
	args := []string{"ls-tree", "-r", "--name-only", "-z", commit.String()}
	if dir != "" && dir != "." {
		args = append(args, "--", strings.TrimSuffix(dir, "/"))
	}
	out, err := g.runRaw(ctx, args...)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, name := range strings.Split(string(out), "\x00") {
		if name != "" {
			files = append(files, name)
		}
	}
	return files, nil
}

// ShowFile returns the contents of path at commit.
func (g *SystemGitClient) ShowFile(ctx context.Context, commit CommitHash, path string) ([]byte, error) {
	out, err := g.runRaw(ctx, "cat-file", "blob", fmt.Sprintf("%s:%s", commit, path))
	if err != nil {
		// cat-file reports missing paths as "does not exist" or
		// "Not a valid object name" depending on version.
		msg := err.Error()
		if strings.Contains(msg, "does not exist") || strings.Contains(msg, "Not a valid object name") {
			return nil, fmt.Errorf("%s at %s: %w", path, commit.Short(), ErrGitFileNotFound)
		}
		return nil, err
	}
	return out, nil
}

// FirstCommit returns the oldest commit reachable from start touching path.
// Note --max-count cannot be combined with --reverse here: git applies the
// count before reversing, which would return the newest commit instead.
func (g *SystemGitClient) FirstCommit(ctx context.Context, start CommitHash, path string) (CommitHash, error) {
	all, err := g.run(ctx, "rev-list", "--reverse", start.String(), "--", path)
	if err != nil {
		return "", err
	}
	if all == "" {
		return "", fmt.Errorf("%s from %s: %w", path, start.Short(), ErrGitFileNotFound)
	}
	first := all
	if i := strings.IndexByte(all, '\n'); i >= 0 {
		first = all[:i]
	}
	return ParseCommitHash(first)
}
