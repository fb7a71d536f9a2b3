package tools

import (
	"context"
	"errors"
	"time"

	git "github.com/go-git/go-git/v6"
	gitconfig "github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
)

// mergedWalkLimit bounds the ancestry walk used to decide whether a
// branch is merged into HEAD. Deep histories past the limit are treated
// as unmerged, which errs on the safe side.
const mergedWalkLimit = 1000

func handleCreateBranch(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	name := stringArg(args, "name")
	if name == "" {
		return nil, InvalidParam("name", "must not be empty")
	}

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	refName := plumbing.NewBranchReferenceName(name)
	if _, err := repo.Reference(refName, false); err == nil {
		return nil, Errf(CodeConflict, "branch already exists: %s", name)
	}

	rev := stringArg(args, "from")
	if rev == "" {
		rev = "HEAD"
	}
	commit, err := resolveCommit(repo, rev)
	if err != nil {
		return nil, err
	}

	if err := repo.Storer.SetReference(plumbing.NewHashReference(refName, commit.Hash)); err != nil {
		return nil, err
	}

	if boolArg(args, "checkout") {
		wt, err := repo.Worktree()
		if err != nil {
			return nil, err
		}
		if err := wt.Checkout(&git.CheckoutOptions{Branch: refName}); err != nil {
			return nil, err
		}
	}

	return map[string]any{
		"path":   path,
		"branch": name,
		"head":   commit.Hash.String(),
	}, nil
}

func handleSwitchBranch(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	name := stringArg(args, "name")
	force := boolArg(args, "force")
	if name == "" {
		return nil, InvalidParam("name", "must not be empty")
	}

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	refName := plumbing.NewBranchReferenceName(name)
	if _, err := repo.Reference(refName, false); err != nil {
		return nil, NotFound("branch", name)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, err
	}
	if !status.IsClean() && !force {
		return nil, Errf(CodeConflict,
			"working tree has uncommitted changes, commit them or set force")
	}

	if err := wt.Checkout(&git.CheckoutOptions{Branch: refName, Force: force}); err != nil {
		return nil, err
	}
	return map[string]any{"path": path, "branch": name, "switched": true}, nil
}

func handleDeleteBranch(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	name := stringArg(args, "name")
	force := boolArg(args, "force")
	if name == "" {
		return nil, InvalidParam("name", "must not be empty")
	}

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	refName := plumbing.NewBranchReferenceName(name)
	ref, err := repo.Reference(refName, false)
	if err != nil {
		return nil, NotFound("branch", name)
	}

	head, err := repo.Head()
	if err == nil && head.Name() == refName {
		return nil, Errf(CodeConflict, "cannot delete the currently checked out branch")
	}

	if !force {
		merged, err := isAncestor(repo, ref.Hash(), head)
		if err != nil {
			return nil, err
		}
		if !merged {
			return nil, Errf(CodeConflict,
				"branch %s is not merged, set force to delete anyway", name)
		}
	}

	if err := repo.Storer.RemoveReference(refName); err != nil {
		return nil, err
	}
	return map[string]any{"path": path, "branch": name, "deleted": true}, nil
}

// isAncestor reports whether hash is reachable from head within the walk
// limit.
func isAncestor(repo *git.Repository, hash plumbing.Hash, head *plumbing.Reference) (bool, error) {
	if head == nil {
		return false, nil
	}
	target := hash.String()
	if head.Hash().String() == target {
		return true, nil
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return false, err
	}
	defer iter.Close()

	seen := 0
	found := false
	err = iter.ForEach(func(c *object.Commit) error {
		if c.Hash.String() == target {
			found = true
			return errStopIteration
		}
		seen++
		if seen >= mergedWalkLimit {
			return errStopIteration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return false, err
	}
	return found, nil
}

func handleListBranches(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	current := ""
	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		current = head.Name().Short()
	}

	iter, err := repo.Branches()
	if err != nil {
		return nil, err
	}
	var branches []map[string]any
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		branches = append(branches, map[string]any{
			"name":    ref.Name().Short(),
			"head":    ref.Hash().String(),
			"current": ref.Name().Short() == current,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{"path": path, "branches": branches, "count": len(branches)}, nil
}

func handleCreateTag(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	name := stringArg(args, "name")
	if name == "" {
		return nil, InvalidParam("name", "must not be empty")
	}

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	rev := stringArg(args, "revision")
	if rev == "" {
		rev = "HEAD"
	}
	commit, err := resolveCommit(repo, rev)
	if err != nil {
		return nil, err
	}

	// A message makes the tag annotated; without one a lightweight ref
	// is created.
	var opts *git.CreateTagOptions
	annotated := false
	if message := stringArg(args, "message"); message != "" {
		annotated = true
		opts = &git.CreateTagOptions{
			Message: message,
			Tagger: &object.Signature{
				Name:  commitAuthor(args, "tagger_name", "workbench"),
				Email: commitAuthor(args, "tagger_email", "workbench@localhost"),
				When:  time.Now(),
			},
		}
	}

	if _, err := repo.CreateTag(name, commit.Hash, opts); err != nil {
		if errors.Is(err, git.ErrTagExists) {
			return nil, Errf(CodeConflict, "tag already exists: %s", name)
		}
		return nil, err
	}

	return map[string]any{
		"path":      path,
		"tag":       name,
		"target":    commit.Hash.String(),
		"annotated": annotated,
	}, nil
}

func handleListTags(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Tags()
	if err != nil {
		return nil, err
	}
	var tags []map[string]any
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, map[string]any{
			"name":   ref.Name().Short(),
			"target": ref.Hash().String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{"path": path, "tags": tags, "count": len(tags)}, nil
}

func handleDeleteTag(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	name := stringArg(args, "name")
	if name == "" {
		return nil, InvalidParam("name", "must not be empty")
	}

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	if err := repo.DeleteTag(name); err != nil {
		if errors.Is(err, git.ErrTagNotFound) {
			return nil, NotFound("tag", name)
		}
		return nil, err
	}
	return map[string]any{"path": path, "tag": name, "deleted": true}, nil
}

func handleListRemotes(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(remotes))
	for _, r := range remotes {
		cfg := r.Config()
		out = append(out, map[string]any{"name": cfg.Name, "urls": cfg.URLs})
	}
	return map[string]any{"path": path, "remotes": out, "count": len(out)}, nil
}

func handleAddRemote(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	name := stringArg(args, "name")
	url := stringArg(args, "url")
	if name == "" {
		return nil, InvalidParam("name", "must not be empty")
	}
	if url == "" {
		return nil, InvalidParam("url", "must not be empty")
	}

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{Name: name, URLs: []string{url}}); err != nil {
		if errors.Is(err, git.ErrRemoteExists) {
			return nil, Errf(CodeConflict, "remote already exists: %s", name)
		}
		return nil, err
	}
	return map[string]any{"path": path, "remote": name, "url": url}, nil
}

func handleRemoveRemote(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	name := stringArg(args, "name")
	if name == "" {
		return nil, InvalidParam("name", "must not be empty")
	}

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	if err := repo.DeleteRemote(name); err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return nil, NotFound("remote", name)
		}
		return nil, err
	}
	return map[string]any{"path": path, "remote": name, "deleted": true}, nil
}

func handleFetchRemote(ctx context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	remote := stringArg(args, "remote")

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	err = repo.FetchContext(ctx, &git.FetchOptions{RemoteName: remote})
	switch {
	case err == nil:
		return map[string]any{"path": path, "remote": remote, "updated": true}, nil
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		return map[string]any{"path": path, "remote": remote, "updated": false}, nil
	default:
		return nil, remoteErr("fetch", err)
	}
}

func handlePushChanges(ctx context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	remote := stringArg(args, "remote")

	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	err = repo.PushContext(ctx, &git.PushOptions{RemoteName: remote})
	switch {
	case err == nil:
		return map[string]any{"path": path, "remote": remote, "pushed": true}, nil
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		return map[string]any{"path": path, "remote": remote, "pushed": false}, nil
	case errors.Is(err, git.ErrNonFastForwardUpdate):
		return nil, Errf(CodeConflict, "push rejected, remote has diverged (fetch first)")
	default:
		return nil, remoteErr("push", err)
	}
}

func handlePullChanges(ctx context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	remote := stringArg(args, "remote")

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
	if !status.IsClean() {
		return nil, Errf(CodeConflict, "working tree has uncommitted changes, commit them first")
	}

	err = wt.PullContext(ctx, &git.PullOptions{RemoteName: remote})
	switch {
	case err == nil:
		head, _ := repo.Head()
		out := map[string]any{"path": path, "remote": remote, "updated": true}
		if head != nil {
			out["head"] = head.Hash().String()
		}
		return out, nil
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		return map[string]any{"path": path, "remote": remote, "updated": false}, nil
	case errors.Is(err, git.ErrNonFastForwardUpdate):
		return nil, Errf(CodeConflict, "pull would not fast-forward, resolve manually")
	default:
		return nil, remoteErr("pull", err)
	}
}
