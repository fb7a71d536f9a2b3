package tools

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirEntry is one row of a list_directory response.
type DirEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// TreeNode is one node of a directory_tree response.
type TreeNode struct {
	Name     string      `json:"name"`
	IsDir    bool        `json:"is_dir"`
	Children []*TreeNode `json:"children,omitempty"`
}

func statDir(path string) (fs.FileInfo, error) {
	info, err := statFile(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, InvalidParam("path", "is a file, not a directory")
	}
	return info, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func handleListDirectory(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	root := stringArg(args, "path")
	recursive := boolArg(args, "recursive")
	includeHidden := boolArg(args, "include_hidden")
	max := kit.Cfg.Limits.MaxListEntries

	if _, err := statDir(root); err != nil {
		return nil, err
	}

	var entries []DirEntry
	truncated := false
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if !includeHidden && hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(entries) >= max {
			truncated = true
			return filepath.SkipAll
		}

		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		entries = append(entries, DirEntry{
			Name:  d.Name(),
			Path:  path,
			IsDir: d.IsDir(),
			Size:  size,
		})
		if d.IsDir() && !recursive {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return map[string]any{
		"path":      root,
		"entries":   entries,
		"count":     len(entries),
		"truncated": truncated,
	}, nil
}

func handleCreateDirectory(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")

	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return nil, Errf(CodeConflict, "a file already exists at %s", path)
		}
		if !boolArg(args, "exist_ok") {
			return nil, Errf(CodeConflict, "directory already exists: %s", path)
		}
		return map[string]any{"path": path, "created": false, "existed": true}, nil
	}

	mkdir := os.Mkdir
	if boolArg(args, "parents") {
		mkdir = os.MkdirAll
	}
	if err := mkdir(path, 0o750); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFound("parent directory", filepath.Dir(path))
		}
		return nil, err
	}
	return map[string]any{"path": path, "created": true, "existed": false}, nil
}

func handleRemoveDirectory(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	recursive := boolArg(args, "recursive")

	if _, err := statDir(path); err != nil {
		return nil, err
	}

	if !recursive {
		empty, err := dirEmpty(path)
		if err != nil {
			return nil, err
		}
		if !empty {
			return nil, Errf(CodeConflict,
				"directory is not empty: %s (set recursive to remove anyway)", path)
		}
		if err := os.Remove(path); err != nil {
			return nil, err
		}
		return map[string]any{"path": path, "removed": true}, nil
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, err
	}
	return map[string]any{"path": path, "removed": true}, nil
}

func dirEmpty(path string) (bool, error) {
	f, err := os.Open(path) // #nosec G304 -- path went through the sandbox
	if err != nil {
		return false, err
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

func handleDirectoryTree(ctx context.Context, _ *Kit, args map[string]any) (any, error) {
	root := stringArg(args, "path")
	maxDepth := intArg(args, "max_depth")
	if maxDepth < 1 {
		return nil, InvalidParam("max_depth", "must be positive")
	}

	if _, err := statDir(root); err != nil {
		return nil, err
	}

	node, err := buildTree(ctx, root, maxDepth)
	if err != nil {
		return nil, err
	}
	return node, nil
}

func buildTree(ctx context.Context, path string, depth int) (*TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	node := &TreeNode{Name: filepath.Base(path), IsDir: true}
	if depth == 0 {
		return node, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if hidden(e.Name()) {
			continue
		}
		if e.IsDir() {
			child, err := buildTree(ctx, filepath.Join(path, e.Name()), depth-1)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		} else {
			node.Children = append(node.Children, &TreeNode{Name: e.Name()})
		}
	}
	return node, nil
}

func handleDirectorySize(ctx context.Context, _ *Kit, args map[string]any) (any, error) {
	root := stringArg(args, "path")
	if _, err := statDir(root); err != nil {
		return nil, err
	}

	var total int64
	var files, dirs int
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			dirs++
			return nil
		}
		files++
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"path":        root,
		"total_bytes": total,
		"files":       files,
		"directories": dirs - 1, // exclude the root itself
	}, nil
}
