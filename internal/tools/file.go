package tools

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File operation payloads. Field names are part of the wire contract.

// FileInfo describes one filesystem entry.
type FileInfo struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	IsDir       bool   `json:"is_dir"`
	Mode        string `json:"mode"`
	Permissions string `json:"permissions"`
	Modified    string `json:"modified"`
}

// ReadResult carries file content with size metadata.
type ReadResult struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Size    int64  `json:"size"`
}

// WriteResult reports a completed write.
type WriteResult struct {
	Path         string `json:"path"`
	BytesWritten int    `json:"bytes_written"`
	Created      bool   `json:"created"`
	BackupPath   string `json:"backup_path,omitempty"`
}

// LinesResult carries a line-addressed slice of a file.
type LinesResult struct {
	Path       string   `json:"path"`
	Lines      []string `json:"lines"`
	StartLine  int      `json:"start_line"`
	TotalLines int      `json:"total_lines"`
	Truncated  bool     `json:"truncated"`
}

// BatchReadItem is one entry of a read_multiple_files response.
type BatchReadItem struct {
	Path    string `json:"path"`
	Success bool   `json:"success"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newFileInfo(path string, info fs.FileInfo) FileInfo {
	return FileInfo{
		Path:        path,
		Name:        info.Name(),
		Size:        info.Size(),
		IsDir:       info.IsDir(),
		Mode:        info.Mode().String(),
		Permissions: fmt.Sprintf("%04o", info.Mode().Perm()),
		Modified:    info.ModTime().UTC().Format(time.RFC3339),
	}
}

// statFile stats a path, translating the common failures to taxonomy
// errors so handlers stay terse.
func statFile(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFound("path", path)
		}
		return nil, err
	}
	return info, nil
}

// readFileCapped reads a regular file, refusing directories and files
// over the configured limit.
func readFileCapped(kit *Kit, path string) ([]byte, error) {
	info, err := statFile(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, InvalidParam("path", "is a directory, not a file")
	}
	if max := kit.Cfg.Limits.MaxReadBytes; info.Size() > max {
		return nil, InvalidParam("path",
			fmt.Sprintf("file is %d bytes, exceeds the %d byte read limit", info.Size(), max))
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path went through the sandbox
	if err != nil {
		return nil, err
	}
	return data, nil
}

// backupFile copies src to src+".bak" before a destructive write.
func backupFile(src string) (string, error) {
	in, err := os.Open(src) // #nosec G304 -- path went through the sandbox
	if err != nil {
		return "", err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", err
	}
	dst := src + ".bak"
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()) // #nosec G304
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	return dst, nil
}

func handleReadFile(_ context.Context, kit *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	data, err := readFileCapped(kit, path)
	if err != nil {
		return nil, err
	}
	return ReadResult{Path: path, Content: string(data), Size: int64(len(data))}, nil
}

func handleWriteFile(_ context.Context, kit *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	content := stringArg(args, "content")

	parent := filepath.Dir(path)
	if _, err := os.Stat(parent); errors.Is(err, fs.ErrNotExist) {
		if !boolArg(args, "create_parents") {
			return nil, NotFound("parent directory", parent)
		}
		if err := os.MkdirAll(parent, 0o750); err != nil {
			return nil, err
		}
	}

	res := WriteResult{Path: path, BytesWritten: len(content)}
	if _, err := os.Stat(path); err == nil {
		if boolArg(args, "backup") {
			backup, err := backupFile(path)
			if err != nil {
				return nil, fmt.Errorf("creating backup: %w", err)
			}
			res.BackupPath = backup
		}
	} else {
		res.Created = true
	}

	if err := os.WriteFile(path, []byte(content), 0o640); err != nil { // #nosec G304
		return nil, err
	}
	return res, nil
}

func handleEditFile(_ context.Context, kit *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	oldText := stringArg(args, "old_text")
	newText := stringArg(args, "new_text")
	if oldText == "" {
		return nil, InvalidParam("old_text", "must not be empty")
	}

	data, err := readFileCapped(kit, path)
	if err != nil {
		return nil, err
	}
	content := string(data)

	switch n := strings.Count(content, oldText); n {
	case 0:
		return nil, Errf(CodeConflict, "old_text not found in %s", filepath.Base(path))
	case 1:
		// unique, proceed
	default:
		return nil, Errf(CodeConflict,
			"old_text occurs %d times in %s, it must match exactly once", n, filepath.Base(path))
	}

	res := WriteResult{Path: path}
	if boolArg(args, "backup") {
		backup, err := backupFile(path)
		if err != nil {
			return nil, fmt.Errorf("creating backup: %w", err)
		}
		res.BackupPath = backup
	}

	idx := strings.Index(content, oldText)
	updated := content[:idx] + newText + content[idx+len(oldText):]
	res.BytesWritten = len(updated)

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil { // #nosec G304
		return nil, err
	}
	return res, nil
}

func handleMoveFile(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	src := stringArg(args, "source")
	dst := stringArg(args, "destination")

	if _, err := statFile(src); err != nil {
		return nil, err
	}
	if _, err := os.Stat(dst); err == nil && !boolArg(args, "overwrite") {
		return nil, Errf(CodeConflict, "destination already exists: %s", dst)
	}
	if err := os.Rename(src, dst); err != nil {
		return nil, err
	}
	return map[string]any{"source": src, "destination": dst, "moved": true}, nil
}

func handleReadFileLines(_ context.Context, kit *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	offset := intArg(args, "offset")
	limit := intArg(args, "limit")
	if offset < 1 {
		return nil, InvalidParam("offset", "line numbers start at 1")
	}
	if limit < 1 {
		return nil, InvalidParam("limit", "must be positive")
	}

	info, err := statFile(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, InvalidParam("path", "is a directory, not a file")
	}

	f, err := os.Open(path) // #nosec G304 -- path went through the sandbox
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res := LinesResult{Path: path, StartLine: offset}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), int(kit.Cfg.Limits.MaxReadBytes))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo < offset {
			continue
		}
		if len(res.Lines) < limit {
			res.Lines = append(res.Lines, scanner.Text())
		} else {
			res.Truncated = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	res.TotalLines = lineNo
	return res, nil
}

func handleReadMultipleFiles(_ context.Context, kit *Kit, args map[string]any) (any, error) {
	paths := stringsArg(args, "paths")
	if len(paths) == 0 {
		return nil, InvalidParam("paths", "must not be empty")
	}
	if max := kit.Cfg.Limits.MaxBatchFiles; len(paths) > max {
		return nil, InvalidParam("paths",
			fmt.Sprintf("%d paths requested, limit is %d", len(paths), max))
	}

	items := make([]BatchReadItem, 0, len(paths))
	for _, p := range paths {
		item := BatchReadItem{Path: p}
		data, err := readFileCapped(kit, p)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Success = true
			item.Content = string(data)
		}
		items = append(items, item)
	}
	return map[string]any{"files": items, "count": len(items)}, nil
}

func handleFileExists(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{"path": path, "exists": false}, nil
		}
		return nil, err
	}
	kind := "file"
	if info.IsDir() {
		kind = "directory"
	}
	return map[string]any{"path": path, "exists": true, "type": kind}, nil
}

func handleGetFileInfo(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	info, err := statFile(path)
	if err != nil {
		return nil, err
	}
	return newFileInfo(path, info), nil
}

func handleHeadFile(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	args["offset"] = 1
	return handleReadFileLines(ctx, kit, args)
}

func handleTailFile(_ context.Context, kit *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	limit := intArg(args, "limit")
	if limit < 1 {
		return nil, InvalidParam("limit", "must be positive")
	}

	data, err := readFileCapped(kit, path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	start := len(lines) - limit
	if start < 0 {
		start = 0
	}
	return LinesResult{
		Path:       path,
		Lines:      lines[start:],
		StartLine:  start + 1,
		TotalLines: len(lines),
	}, nil
}

func handleDeleteFile(_ context.Context, _ *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if boolArg(args, "ignore_missing") {
				return map[string]any{"path": path, "deleted": false, "existed": false}, nil
			}
			return nil, NotFound("file", path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, InvalidParam("path", "is a directory, use remove_directory")
	}
	if err := os.Remove(path); err != nil {
		return nil, err
	}
	return map[string]any{"path": path, "deleted": true, "existed": true}, nil
}
