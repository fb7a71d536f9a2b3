package tools

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/format/index"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates a repository under dir with an initial commit on
// main. Returns the repository and the initial commit hash.
func initTestRepo(t *testing.T, dir string) (*git.Repository, string) {
	t.Helper()

	repo, err := git.PlainInit(dir, false,
		git.WithDefaultBranch(plumbing.NewBranchReferenceName("main")))
	require.NoError(t, err)

	hash := commitTestFile(t, repo, dir, "README.md", "initial\n", "initial commit")
	return repo, hash
}

func commitTestFile(t *testing.T, repo *git.Repository, dir, name, content, message string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestRepoStatus(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	initTestRepo(t, repoDir)

	data := requireSuccess(t, invoke(t, d, CategoryRepository, "repo_status",
		map[string]any{"path": "repo"}))
	assert.Equal(t, true, data["clean"])
	assert.Equal(t, "main", data["branch"])

	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "dirty.txt"), []byte("x"), 0o644))
	data = requireSuccess(t, invoke(t, d, CategoryRepository, "repo_status",
		map[string]any{"path": "repo"}))
	assert.Equal(t, false, data["clean"])
}

func TestRepoStatusNotARepo(t *testing.T) {
	d, root := testDispatcher(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "plain"), 0o755))

	res := invoke(t, d, CategoryRepository, "repo_status", map[string]any{"path": "plain"})
	requireFailure(t, res, CodeNotFound)
}

func TestCommitChanges(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	repo, _ := initTestRepo(t, repoDir)

	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "new.txt"), []byte("x"), 0o644))
	data := requireSuccess(t, invoke(t, d, CategoryRepository, "commit_changes",
		map[string]any{"path": "repo", "message": "add new.txt"}))
	assert.NotEmpty(t, data["hash"])

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "add new.txt", commit.Message)
}

func TestCommitChangesNothingToCommit(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	initTestRepo(t, repoDir)

	res := invoke(t, d, CategoryRepository, "commit_changes",
		map[string]any{"path": "repo", "message": "empty"})
	requireFailure(t, res, CodeConflict)
}

func TestCommitChangesSelectedPaths(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	initTestRepo(t, repoDir)

	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "staged.txt"), []byte("s"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "unstaged.txt"), []byte("u"), 0o644))

	requireSuccess(t, invoke(t, d, CategoryRepository, "commit_changes",
		map[string]any{"path": "repo", "message": "partial", "paths": []any{"staged.txt"}}))

	data := requireSuccess(t, invoke(t, d, CategoryRepository, "repo_status",
		map[string]any{"path": "repo"}))
	assert.Equal(t, false, data["clean"]) // unstaged.txt still pending

	res := invoke(t, d, CategoryRepository, "commit_changes",
		map[string]any{"path": "repo", "message": "escape", "paths": []any{"../outside.txt"}})
	requireFailure(t, res, CodeInvalidParameter)
}

func TestCommitChangesConflictedIndex(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	repo, _ := initTestRepo(t, repoDir)

	// A merge that stops on conflicts leaves the ours/theirs stages in
	// the index; write that state the way git does.
	idx, err := repo.Storer.Index()
	require.NoError(t, err)
	require.NotEmpty(t, idx.Entries)
	blob := idx.Entries[0].Hash
	idx.Entries = append(idx.Entries,
		&index.Entry{Name: "clash.txt", Hash: blob, Mode: filemode.Regular, Stage: index.OurMode},
		&index.Entry{Name: "clash.txt", Hash: blob, Mode: filemode.Regular, Stage: index.TheirMode},
	)
	require.NoError(t, repo.Storer.SetIndex(idx))

	res := invoke(t, d, CategoryRepository, "commit_changes",
		map[string]any{"path": "repo", "message": "resolve"})
	requireFailure(t, res, CodeConflict)
	assert.Contains(t, res.Error, "unresolved merge conflicts")
}

func TestCommitHistory(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	repo, _ := initTestRepo(t, repoDir)
	commitTestFile(t, repo, repoDir, "a.txt", "a", "second")
	commitTestFile(t, repo, repoDir, "b.txt", "b", "third")

	data := requireSuccess(t, invoke(t, d, CategoryRepository, "commit_history",
		map[string]any{"path": "repo", "max_count": 2}))
	assert.EqualValues(t, 2, data["count"])

	commits := data["commits"].([]any)
	newest := commits[0].(map[string]any)
	assert.Equal(t, "third", newest["message"])
}

func TestShowCommit(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	repo, first := initTestRepo(t, repoDir)
	second := commitTestFile(t, repo, repoDir, "feature.txt", "line\n", "add feature")

	data := requireSuccess(t, invoke(t, d, CategoryRepository, "show_commit",
		map[string]any{"path": "repo", "revision": second}))
	commit := data["commit"].(map[string]any)
	assert.Equal(t, "add feature", commit["message"])
	assert.Equal(t, []any{first}, data["parents"])

	res := invoke(t, d, CategoryRepository, "show_commit",
		map[string]any{"path": "repo", "revision": "no-such-rev"})
	requireFailure(t, res, CodeNotFound)
}

func TestDiffChanges(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	repo, first := initTestRepo(t, repoDir)
	second := commitTestFile(t, repo, repoDir, "delta.txt", "added line\n", "add delta")

	data := requireSuccess(t, invoke(t, d, CategoryRepository, "diff_changes",
		map[string]any{"path": "repo", "from": first, "to": second}))
	assert.Contains(t, data["patch"], "delta.txt")

	// Worktree mode without revisions.
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "wip.txt"), []byte("x"), 0o644))
	data = requireSuccess(t, invoke(t, d, CategoryRepository, "diff_changes",
		map[string]any{"path": "repo"}))
	assert.Equal(t, false, data["clean"])

	res := invoke(t, d, CategoryRepository, "diff_changes",
		map[string]any{"path": "repo", "from": first})
	requireFailure(t, res, CodeInvalidParameter)
}

func TestFileHistory(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	repo, _ := initTestRepo(t, repoDir)
	commitTestFile(t, repo, repoDir, "tracked.txt", "v1\n", "tracked v1")
	commitTestFile(t, repo, repoDir, "tracked.txt", "v2\n", "tracked v2")
	commitTestFile(t, repo, repoDir, "other.txt", "o\n", "other")

	data := requireSuccess(t, invoke(t, d, CategoryRepository, "file_history",
		map[string]any{"path": "repo", "file": "tracked.txt"}))
	assert.EqualValues(t, 2, data["count"])

	res := invoke(t, d, CategoryRepository, "file_history",
		map[string]any{"path": "repo", "file": "never-existed.txt"})
	requireFailure(t, res, CodeNotFound)
}

func TestBranchLifecycle(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	initTestRepo(t, repoDir)

	requireSuccess(t, invoke(t, d, CategoryRepository, "create_branch",
		map[string]any{"path": "repo", "name": "feature"}))

	res := invoke(t, d, CategoryRepository, "create_branch",
		map[string]any{"path": "repo", "name": "feature"})
	requireFailure(t, res, CodeConflict)

	data := requireSuccess(t, invoke(t, d, CategoryRepository, "list_branches",
		map[string]any{"path": "repo"}))
	assert.EqualValues(t, 2, data["count"])

	requireSuccess(t, invoke(t, d, CategoryRepository, "switch_branch",
		map[string]any{"path": "repo", "name": "feature"}))

	// Cannot delete the checked out branch.
	res = invoke(t, d, CategoryRepository, "delete_branch",
		map[string]any{"path": "repo", "name": "feature"})
	requireFailure(t, res, CodeConflict)

	requireSuccess(t, invoke(t, d, CategoryRepository, "switch_branch",
		map[string]any{"path": "repo", "name": "main"}))
	requireSuccess(t, invoke(t, d, CategoryRepository, "delete_branch",
		map[string]any{"path": "repo", "name": "feature"}))

	res = invoke(t, d, CategoryRepository, "switch_branch",
		map[string]any{"path": "repo", "name": "feature"})
	requireFailure(t, res, CodeNotFound)
}

func TestSwitchBranchDirtyTree(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	repo, _ := initTestRepo(t, repoDir)

	requireSuccess(t, invoke(t, d, CategoryRepository, "create_branch",
		map[string]any{"path": "repo", "name": "other"}))

	// Modify a tracked file so the tree is dirty.
	commitTestFile(t, repo, repoDir, "file.txt", "v1\n", "add file")
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "file.txt"), []byte("v2\n"), 0o644))

	res := invoke(t, d, CategoryRepository, "switch_branch",
		map[string]any{"path": "repo", "name": "other"})
	requireFailure(t, res, CodeConflict)

	requireSuccess(t, invoke(t, d, CategoryRepository, "switch_branch",
		map[string]any{"path": "repo", "name": "other", "force": true}))
}

func TestDeleteBranchUnmerged(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	repo, _ := initTestRepo(t, repoDir)

	// Branch with a commit main does not have.
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("wip"),
		Create: true,
	}))
	commitTestFile(t, repo, repoDir, "wip.txt", "w\n", "wip work")
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("main"),
	}))

	res := invoke(t, d, CategoryRepository, "delete_branch",
		map[string]any{"path": "repo", "name": "wip"})
	requireFailure(t, res, CodeConflict)

	requireSuccess(t, invoke(t, d, CategoryRepository, "delete_branch",
		map[string]any{"path": "repo", "name": "wip", "force": true}))
}

func TestTagLifecycle(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	initTestRepo(t, repoDir)

	data := requireSuccess(t, invoke(t, d, CategoryRepository, "create_tag",
		map[string]any{"path": "repo", "name": "v1.0.0", "message": "first release"}))
	assert.Equal(t, true, data["annotated"])

	res := invoke(t, d, CategoryRepository, "create_tag",
		map[string]any{"path": "repo", "name": "v1.0.0"})
	requireFailure(t, res, CodeConflict)

	data = requireSuccess(t, invoke(t, d, CategoryRepository, "list_tags",
		map[string]any{"path": "repo"}))
	assert.EqualValues(t, 1, data["count"])

	requireSuccess(t, invoke(t, d, CategoryRepository, "delete_tag",
		map[string]any{"path": "repo", "name": "v1.0.0"}))

	res = invoke(t, d, CategoryRepository, "delete_tag",
		map[string]any{"path": "repo", "name": "v1.0.0"})
	requireFailure(t, res, CodeNotFound)
}

func TestRemoteLifecycle(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	initTestRepo(t, repoDir)

	requireSuccess(t, invoke(t, d, CategoryRepository, "add_remote",
		map[string]any{"path": "repo", "name": "origin", "url": "https://example.com/r.git"}))

	res := invoke(t, d, CategoryRepository, "add_remote",
		map[string]any{"path": "repo", "name": "origin", "url": "https://example.com/r.git"})
	requireFailure(t, res, CodeConflict)

	data := requireSuccess(t, invoke(t, d, CategoryRepository, "list_remotes",
		map[string]any{"path": "repo"}))
	assert.EqualValues(t, 1, data["count"])

	requireSuccess(t, invoke(t, d, CategoryRepository, "remove_remote",
		map[string]any{"path": "repo", "name": "origin"}))

	res = invoke(t, d, CategoryRepository, "remove_remote",
		map[string]any{"path": "repo", "name": "origin"})
	requireFailure(t, res, CodeNotFound)
}

func TestCloneRepoLocal(t *testing.T) {
	d, root := testDispatcher(t)
	srcDir := filepath.Join(root, "src")
	require.NoError(t, os.Mkdir(srcDir, 0o755))
	initTestRepo(t, srcDir)

	data := requireSuccess(t, invoke(t, d, CategoryRepository, "clone_repo",
		map[string]any{"url": srcDir, "path": "clone"}))
	assert.Equal(t, true, data["cloned"])

	_, err := git.PlainOpen(filepath.Join(root, "clone"))
	assert.NoError(t, err)
}

func TestCloneRepoIntoExistingClone(t *testing.T) {
	d, root := testDispatcher(t)
	srcDir := filepath.Join(root, "src")
	require.NoError(t, os.Mkdir(srcDir, 0o755))
	initTestRepo(t, srcDir)

	requireSuccess(t, invoke(t, d, CategoryRepository, "clone_repo",
		map[string]any{"url": srcDir, "path": "clone"}))

	res := invoke(t, d, CategoryRepository, "clone_repo",
		map[string]any{"url": srcDir, "path": "clone"})
	requireFailure(t, res, CodeConflict)
}

func TestCloneRepoNonEmptyTarget(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "occupied/file.txt", "x")

	res := invoke(t, d, CategoryRepository, "clone_repo",
		map[string]any{"url": "https://example.com/r.git", "path": "occupied"})
	requireFailure(t, res, CodeConflict)
}

func TestRepoInfo(t *testing.T) {
	d, root := testDispatcher(t)
	repoDir := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repoDir, 0o755))
	initTestRepo(t, repoDir)

	data := requireSuccess(t, invoke(t, d, CategoryRepository, "repo_info",
		map[string]any{"path": "repo"}))
	assert.Equal(t, "main", data["branch"])
	assert.Equal(t, true, data["clean"])
	assert.EqualValues(t, 1, data["branch_count"])
}
