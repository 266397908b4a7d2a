package jj

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tatami-vcs/tatami/internal/log"
)

// FindRepo walks from start up through parent directories looking for a
// .jj directory. Returns the repository root, or "" when none is found.
func FindRepo(start string) string {
	current, err := filepath.Abs(start)
	if err != nil {
		return ""
	}

	for {
		if info, err := os.Stat(filepath.Join(current, ".jj")); err == nil && info.IsDir() {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// Client runs the jj binary against one repository.
type Client struct {
	root   string
	binary string
}

// NewClient creates a client for the repository at root.
// Returns an error when root is not a jj repository.
func NewClient(root string) (*Client, error) {
	info, err := os.Stat(filepath.Join(root, ".jj"))
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("not a jj repository: %s", root)
	}
	return &Client{root: root, binary: "jj"}, nil
}

// Root returns the repository root path.
func (c *Client) Root() string {
	return c.root
}

// Log fetches up to limit revisions in display order. revset may be empty
// for jj's default. The returned slice replaces any previous one
// wholesale; revisions are never mutated in place.
func (c *Client) Log(ctx context.Context, revset string, limit int) ([]Revision, error) {
	args := []string{"log", "--no-graph", "--template", logTemplate}
	if limit > 0 {
		args = append(args, "--limit", strconv.Itoa(limit))
	}
	if revset != "" {
		args = append(args, "-r", revset)
	}

	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching log: %w", err)
	}

	revisions, err := ParseLog(string(out))
	if err != nil {
		return nil, fmt.Errorf("parsing log: %w", err)
	}
	log.Debug(log.CatJJ, "Fetched log", "revisions", len(revisions), "revset", revset)
	return revisions, nil
}

// Status reports the working copy's identity and changed files.
func (c *Client) Status(ctx context.Context) (Status, error) {
	out, err := c.run(ctx, "log", "--no-graph", "-r", "@", "--template", logTemplate)
	if err != nil {
		return Status{}, fmt.Errorf("fetching working copy: %w", err)
	}
	revs, err := ParseLog(string(out))
	if err != nil || len(revs) == 0 {
		return Status{}, fmt.Errorf("parsing working copy: %w", err)
	}
	wc := revs[0]

	files, err := c.ChangedFiles(ctx, "@")
	if err != nil {
		return Status{}, err
	}

	return Status{
		ChangeID:    wc.ChangeID,
		CommitID:    wc.CommitID,
		Description: wc.Description,
		Files:       files,
	}, nil
}

// ChangedFiles lists the files a revision changes relative to its parents.
func (c *Client) ChangedFiles(ctx context.Context, rev string) ([]ChangedFile, error) {
	out, err := c.run(ctx, "diff", "--summary", "-r", rev)
	if err != nil {
		return nil, fmt.Errorf("fetching change summary: %w", err)
	}
	return ParseSummary(string(out)), nil
}

// FileContent returns a file's contents at the given revision.
// A file absent at that revision yields empty content, not an error.
func (c *Client) FileContent(ctx context.Context, rev, path string) ([]byte, error) {
	out, err := c.run(ctx, "file", "show", "-r", rev, path)
	if err != nil {
		// jj exits non-zero for paths that do not exist at the revision.
		return nil, nil
	}
	return out, nil
}

// ParentFileContent returns a file's contents at the revision's primary
// parent.
func (c *Client) ParentFileContent(ctx context.Context, rev, path string) ([]byte, error) {
	return c.FileContent(ctx, rev+"-", path)
}

// ParseSummary parses `jj diff --summary` output: one "X path" line per
// changed file.
func ParseSummary(output string) []ChangedFile {
	var files []ChangedFile
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 3 {
			continue
		}

		var status FileStatus
		switch line[0] {
		case 'A':
			status = FileAdded
		case 'M':
			status = FileModified
		case 'D':
			status = FileDeleted
		case 'R', 'C':
			status = FileRenamed
		default:
			continue
		}
		files = append(files, ChangedFile{Path: line[2:], Status: status})
	}
	return files
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"--repository", c.root, "--color", "never", "--quiet", "--ignore-working-copy"}, args...)
	cmd := exec.CommandContext(ctx, c.binary, full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		log.Warn(log.CatJJ, "jj command failed", "args", strings.Join(args, " "), "stderr", msg)
		return nil, fmt.Errorf("jj %s: %s", args[0], msg)
	}
	return stdout.Bytes(), nil
}
