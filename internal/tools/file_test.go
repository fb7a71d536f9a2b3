package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWorkspaceFile(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFile(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "hello.txt", "hello world\n")

	data := requireSuccess(t, invoke(t, d, CategoryFilesystem, "read_file",
		map[string]any{"path": "hello.txt"}))
	assert.Equal(t, "hello world\n", data["content"])
	assert.EqualValues(t, 12, data["size"])
}

func TestReadFileNotFound(t *testing.T) {
	d, _ := testDispatcher(t)
	res := invoke(t, d, CategoryFilesystem, "read_file", map[string]any{"path": "missing.txt"})
	requireFailure(t, res, CodeNotFound)
}

func TestReadFileDirectory(t *testing.T) {
	d, _ := testDispatcher(t)
	res := invoke(t, d, CategoryFilesystem, "read_file", map[string]any{"path": "."})
	requireFailure(t, res, CodeInvalidParameter)
}

func TestReadFileTooLarge(t *testing.T) {
	d, root := testDispatcher(t)
	big := make([]byte, 2<<20)
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.bin"), big, 0o644))

	res := invoke(t, d, CategoryFilesystem, "read_file", map[string]any{"path": "big.bin"})
	requireFailure(t, res, CodeInvalidParameter)
}

func TestWriteFile(t *testing.T) {
	d, root := testDispatcher(t)

	data := requireSuccess(t, invoke(t, d, CategoryFilesystem, "write_file",
		map[string]any{"path": "out.txt", "content": "written"}))
	assert.Equal(t, true, data["created"])

	content, err := os.ReadFile(filepath.Join(root, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "written", string(content))
}

func TestWriteFileMissingParent(t *testing.T) {
	d, root := testDispatcher(t)

	res := invoke(t, d, CategoryFilesystem, "write_file",
		map[string]any{"path": "deep/nested/out.txt", "content": "x"})
	requireFailure(t, res, CodeNotFound)

	requireSuccess(t, invoke(t, d, CategoryFilesystem, "write_file",
		map[string]any{"path": "deep/nested/out.txt", "content": "x", "create_parents": true}))
	_, err := os.Stat(filepath.Join(root, "deep", "nested", "out.txt"))
	assert.NoError(t, err)
}

func TestWriteFileBackup(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "cfg.txt", "old")

	data := requireSuccess(t, invoke(t, d, CategoryFilesystem, "write_file",
		map[string]any{"path": "cfg.txt", "content": "new", "backup": true}))
	assert.NotEmpty(t, data["backup_path"])

	backup, err := os.ReadFile(filepath.Join(root, "cfg.txt.bak"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(backup))
}

func TestEditFile(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "code.go", "package main\n\nfunc old() {}\n")

	requireSuccess(t, invoke(t, d, CategoryFilesystem, "edit_file", map[string]any{
		"path": "code.go", "old_text": "func old()", "new_text": "func renamed()",
	}))

	content, err := os.ReadFile(filepath.Join(root, "code.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "func renamed()")
}

func TestEditFileNotUnique(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "dup.txt", "aaa\naaa\n")

	res := invoke(t, d, CategoryFilesystem, "edit_file", map[string]any{
		"path": "dup.txt", "old_text": "aaa", "new_text": "bbb",
	})
	requireFailure(t, res, CodeConflict)

	res = invoke(t, d, CategoryFilesystem, "edit_file", map[string]any{
		"path": "dup.txt", "old_text": "zzz", "new_text": "bbb",
	})
	requireFailure(t, res, CodeConflict)
}

func TestMoveFile(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "a.txt", "payload")

	requireSuccess(t, invoke(t, d, CategoryFilesystem, "move_file",
		map[string]any{"source": "a.txt", "destination": "b.txt"}))

	_, err := os.Stat(filepath.Join(root, "a.txt"))
	assert.True(t, os.IsNotExist(err))
	content, err := os.ReadFile(filepath.Join(root, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
}

func TestMoveFileExistingDestination(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "a.txt", "one")
	writeWorkspaceFile(t, root, "b.txt", "two")

	res := invoke(t, d, CategoryFilesystem, "move_file",
		map[string]any{"source": "a.txt", "destination": "b.txt"})
	requireFailure(t, res, CodeConflict)

	requireSuccess(t, invoke(t, d, CategoryFilesystem, "move_file",
		map[string]any{"source": "a.txt", "destination": "b.txt", "overwrite": true}))
}

func TestReadFileLines(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "lines.txt", "one\ntwo\nthree\nfour\n")

	data := requireSuccess(t, invoke(t, d, CategoryFilesystem, "read_file_lines",
		map[string]any{"path": "lines.txt", "offset": 2, "limit": 2}))
	assert.Equal(t, []any{"two", "three"}, data["lines"])
	assert.EqualValues(t, 4, data["total_lines"])
}

func TestHeadTailFile(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "log.txt", "1\n2\n3\n4\n5\n")

	head := requireSuccess(t, invoke(t, d, CategoryFilesystem, "head_file",
		map[string]any{"path": "log.txt", "limit": 2}))
	assert.Equal(t, []any{"1", "2"}, head["lines"])

	tail := requireSuccess(t, invoke(t, d, CategoryFilesystem, "tail_file",
		map[string]any{"path": "log.txt", "limit": 2}))
	assert.Equal(t, []any{"4", "5"}, tail["lines"])
}

func TestReadMultipleFiles(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "a.txt", "A")
	writeWorkspaceFile(t, root, "b.txt", "B")

	data := requireSuccess(t, invoke(t, d, CategoryFilesystem, "read_multiple_files",
		map[string]any{"paths": []any{"a.txt", "b.txt", "missing.txt"}}))
	files, ok := data["files"].([]any)
	require.True(t, ok)
	require.Len(t, files, 3)

	first := files[0].(map[string]any)
	assert.Equal(t, true, first["success"])
	assert.Equal(t, "A", first["content"])

	last := files[2].(map[string]any)
	assert.Equal(t, false, last["success"])
	assert.NotEmpty(t, last["error"])
}

func TestReadMultipleFilesBatchLimit(t *testing.T) {
	d, _ := testDispatcher(t)
	paths := make([]any, 11) // limit in the test kit is 10
	for i := range paths {
		paths[i] = "x.txt"
	}
	res := invoke(t, d, CategoryFilesystem, "read_multiple_files", map[string]any{"paths": paths})
	requireFailure(t, res, CodeInvalidParameter)
}

func TestFileExists(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "present.txt", "x")

	data := requireSuccess(t, invoke(t, d, CategoryFilesystem, "file_exists",
		map[string]any{"path": "present.txt"}))
	assert.Equal(t, true, data["exists"])
	assert.Equal(t, "file", data["type"])

	data = requireSuccess(t, invoke(t, d, CategoryFilesystem, "file_exists",
		map[string]any{"path": "absent.txt"}))
	assert.Equal(t, false, data["exists"])
}

func TestGetFileInfo(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "info.txt", "12345")

	data := requireSuccess(t, invoke(t, d, CategoryFilesystem, "get_file_info",
		map[string]any{"path": "info.txt"}))
	assert.EqualValues(t, 5, data["size"])
	assert.Equal(t, false, data["is_dir"])
	assert.Equal(t, "info.txt", data["name"])
	assert.NotEmpty(t, data["modified"])
}

func TestDeleteFile(t *testing.T) {
	d, root := testDispatcher(t)
	writeWorkspaceFile(t, root, "gone.txt", "x")

	requireSuccess(t, invoke(t, d, CategoryFilesystem, "delete_file",
		map[string]any{"path": "gone.txt"}))
	_, err := os.Stat(filepath.Join(root, "gone.txt"))
	assert.True(t, os.IsNotExist(err))

	res := invoke(t, d, CategoryFilesystem, "delete_file", map[string]any{"path": "gone.txt"})
	requireFailure(t, res, CodeNotFound)

	data := requireSuccess(t, invoke(t, d, CategoryFilesystem, "delete_file",
		map[string]any{"path": "gone.txt", "ignore_missing": true}))
	assert.Equal(t, false, data["existed"])
}
