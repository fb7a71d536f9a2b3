package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
)

// CommitInfo is the wire form of one commit.
type CommitInfo struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Email   string `json:"email"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

// FileChange is one entry of a status listing.
type FileChange struct {
	Path     string `json:"path"`
	Staging  string `json:"staging"`
	Worktree string `json:"worktree"`
}

func newCommitInfo(c *object.Commit) CommitInfo {
	return CommitInfo{
		Hash:    c.Hash.String(),
		Author:  c.Author.Name,
		Email:   c.Author.Email,
		Date:    c.Author.When.UTC().Format(time.RFC3339),
		Message: strings.TrimSpace(c.Message),
	}
}

// openRepo opens the repository at path, translating the common failure
// to NOT_FOUND.
func openRepo(path string) (*git.Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, NotFound("git repository", path)
		}
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	return repo, nil
}

// resolveCommit turns a revision string (branch, tag, hash, HEAD~n) into
// its commit object.
func resolveCommit(repo *git.Repository, rev string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, NotFound("revision", rev)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, NotFound("commit", hash.String())
	}
	return commit, nil
}

// remoteErr classifies errors from network-facing git operations: the
// remote being unreachable is UNAVAILABLE, not an internal fault.
func remoteErr(verb string, err error) error {
	if errors.Is(err, git.ErrRemoteNotFound) {
		return NotFound("remote", verb)
	}
	return Errf(CodeUnavailable, "%s failed: %v", verb, err)
}

func handleCloneRepo(ctx context.Context, _ *Kit, args map[string]any) (any, error) {
	url := stringArg(args, "url")
	path := stringArg(args, "path")
	if url == "" {
		return nil, InvalidParam("url", "must not be empty")
	}

	if entries, err := os.ReadDir(path); err == nil && len(entries) > 0 {
		return nil, Errf(CodeConflict, "target directory is not empty: %s", path)
	}

	opts := &git.CloneOptions{URL: url}
	if depth := intArg(args, "depth"); depth > 0 {
		opts.Depth = depth
	}
	if branch := stringArg(args, "branch"); branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, path, opts)
	if err != nil {
		if errors.Is(err, git.ErrTargetDirNotEmpty) {
			return nil, Errf(CodeConflict, "target directory is not empty: %s", path)
		}
		return nil, remoteErr("clone", err)
	}

	head, err := repo.Head()
	if err != nil {
		// Empty remote: the clone succeeded but has no commits yet.
		return map[string]any{"path": path, "url": url, "cloned": true}, nil
	}
	return map[string]any{
		"path":   path,
		"url":    url,
		"cloned": true,
		"branch": head.Name().Short(),
		"head":   head.Hash().String(),
	}, nil
}

func handleRepoStatus(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, err
	}

	changes := make([]FileChange, 0, len(status))
	for file, st := range status {
		changes = append(changes, FileChange{
			Path:     file,
			Staging:  string(byte(st.Staging)),
			Worktree: string(byte(st.Worktree)),
		})
	}

	out := map[string]any{
		"path":    path,
		"clean":   status.IsClean(),
		"changes": changes,
	}
	if head, err := repo.Head(); err == nil {
		out["branch"] = head.Name().Short()
		out["head"] = head.Hash().String()
	}
	return out, nil
}

// conflictedIndex reports whether the index still carries merge stages.
// A merged entry stores stage zero on disk; a merge that stopped on
// conflicts leaves the base/ours/theirs stages behind instead.
func conflictedIndex(repo *git.Repository) (bool, error) {
	idx, err := repo.Storer.Index()
	if err != nil {
		return false, err
	}
	for _, e := range idx.Entries {
		if e.Stage != 0 {
			return true, nil
		}
	}
	return false, nil
}

// repoRelative rejects paths that could escape the repository when handed
// to the index.
func repoRelative(param, p string) error {
	if filepath.IsAbs(p) {
		return InvalidParam(param, "paths must be relative to the repository root")
	}
	clean := filepath.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return InvalidParam(param, "paths must stay inside the repository")
	}
	return nil
}

func handleCommitChanges(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	message := stringArg(args, "message")
	if strings.TrimSpace(message) == "" {
		return nil, InvalidParam("message", "must not be empty")
	}

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	conflicted, err := conflictedIndex(repo)
	if err != nil {
		return nil, err
	}
	if conflicted {
		return nil, Errf(CodeConflict, "repository has unresolved merge conflicts")
	}

	paths := stringsArg(args, "paths")
	switch {
	case len(paths) > 0:
		for _, p := range paths {
			if err := repoRelative("paths", p); err != nil {
				return nil, err
			}
			if _, err := wt.Add(p); err != nil {
				return nil, fmt.Errorf("staging %s: %w", p, err)
			}
		}
	case boolArg(args, "add_all"):
		if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
			return nil, fmt.Errorf("staging changes: %w", err)
		}
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  commitAuthor(args, "author_name", "workbench"),
			Email: commitAuthor(args, "author_email", "workbench@localhost"),
			When:  time.Now(),
		},
	})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return nil, Errf(CodeConflict, "nothing to commit")
		}
		return nil, err
	}

	return map[string]any{"path": path, "hash": hash.String(), "message": message}, nil
}

func commitAuthor(args map[string]any, key, fallback string) string {
	if v := stringArg(args, key); v != "" {
		return v
	}
	return fallback
}

func handleRepoInfo(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	out := map[string]any{"path": path}

	if head, err := repo.Head(); err == nil {
		out["branch"] = head.Name().Short()
		if commit, err := repo.CommitObject(head.Hash()); err == nil {
			out["head"] = newCommitInfo(commit)
		}
	}

	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			out["clean"] = status.IsClean()
		}
	}

	if remotes, err := repo.Remotes(); err == nil {
		names := make([]string, 0, len(remotes))
		for _, r := range remotes {
			names = append(names, r.Config().Name)
		}
		out["remotes"] = names
	}

	branches := 0
	if iter, err := repo.Branches(); err == nil {
		_ = iter.ForEach(func(*plumbing.Reference) error { branches++; return nil })
	}
	out["branch_count"] = branches

	return out, nil
}

func handleCommitHistory(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	maxCount := intArg(args, "max_count")
	author := stringArg(args, "author")
	if maxCount < 1 {
		return nil, InvalidParam("max_count", "must be positive")
	}

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, Errf(CodeConflict, "repository has no commits")
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var commits []CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if author != "" && !strings.Contains(strings.ToLower(c.Author.Name), strings.ToLower(author)) {
			return nil
		}
		commits = append(commits, newCommitInfo(c))
		if len(commits) >= maxCount {
			return errStopIteration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, err
	}

	return map[string]any{"path": path, "commits": commits, "count": len(commits)}, nil
}

// errStopIteration aborts a ForEach early; it never leaves this package.
var errStopIteration = errors.New("stop iteration")

func handleShowCommit(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	rev := stringArg(args, "revision")
	if rev == "" {
		rev = "HEAD"
	}

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	commit, err := resolveCommit(repo, rev)
	if err != nil {
		return nil, err
	}

	out := map[string]any{"commit": newCommitInfo(commit)}

	parents := make([]string, 0, commit.NumParents())
	for _, h := range commit.ParentHashes {
		parents = append(parents, h.String())
	}
	out["parents"] = parents

	if stats, err := commit.Stats(); err == nil {
		files := make([]map[string]any, 0, len(stats))
		for _, s := range stats {
			files = append(files, map[string]any{
				"file":      s.Name,
				"additions": s.Addition,
				"deletions": s.Deletion,
			})
		}
		out["files"] = files
	}
	return out, nil
}

func handleDiffChanges(ctx context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	from := stringArg(args, "from")
	to := stringArg(args, "to")

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	if (from == "") != (to == "") {
		return nil, InvalidParam("from", "from and to must be given together")
	}

	// No revisions: report worktree changes against HEAD.
	if from == "" {
		wt, err := repo.Worktree()
		if err != nil {
			return nil, err
		}
		status, err := wt.Status()
		if err != nil {
			return nil, err
		}
		changes := make([]FileChange, 0, len(status))
		for file, st := range status {
			changes = append(changes, FileChange{
				Path:     file,
				Staging:  string(byte(st.Staging)),
				Worktree: string(byte(st.Worktree)),
			})
		}
		return map[string]any{"path": path, "changes": changes, "clean": status.IsClean()}, nil
	}

	fromCommit, err := resolveCommit(repo, from)
	if err != nil {
		return nil, err
	}
	toCommit, err := resolveCommit(repo, to)
	if err != nil {
		return nil, err
	}
	patch, err := fromCommit.PatchContext(ctx, toCommit)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	stats := patch.Stats()
	files := make([]map[string]any, 0, len(stats))
	for _, s := range stats {
		files = append(files, map[string]any{
			"file":      s.Name,
			"additions": s.Addition,
			"deletions": s.Deletion,
		})
	}
	return map[string]any{
		"path":  path,
		"from":  fromCommit.Hash.String(),
		"to":    toCommit.Hash.String(),
		"files": files,
		"patch": patch.String(),
	}, nil
}

func handleFileHistory(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	file := stringArg(args, "file")
	maxCount := intArg(args, "max_count")
	if file == "" {
		return nil, InvalidParam("file", "must not be empty")
	}
	if err := repoRelative("file", file); err != nil {
		return nil, err
	}
	if maxCount < 1 {
		return nil, InvalidParam("max_count", "must be positive")
	}

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, Errf(CodeConflict, "repository has no commits")
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash(), FileName: &file})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var commits []CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, newCommitInfo(c))
		if len(commits) >= maxCount {
			return errStopIteration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, NotFound("file in repository history", file)
	}

	return map[string]any{"file": file, "commits": commits, "count": len(commits)}, nil
}
