package tools

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

// LargeFile is one find_large_files result row.
type LargeFile struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// DuplicateGroup is one set of byte-identical files.
type DuplicateGroup struct {
	Hash  string   `json:"hash"`
	Size  int64    `json:"size"`
	Files []string `json:"files"`
}

func handleCompareFiles(_ context.Context, kit *Kit, args map[string]any) (any, error) {
	left := stringArg(args, "path")
	right := stringArg(args, "other")

	leftData, err := readFileCapped(kit, left)
	if err != nil {
		return nil, err
	}
	rightData, err := readFileCapped(kit, right)
	if err != nil {
		return nil, err
	}

	identical := bytes.Equal(leftData, rightData)
	out := map[string]any{
		"path":      left,
		"other":     right,
		"identical": identical,
	}
	if identical {
		out["diff"] = ""
		return out, nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(leftData)),
		B:        difflib.SplitLines(string(rightData)),
		FromFile: left,
		ToFile:   right,
		Context:  3,
	})
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}
	out["diff"] = diff
	out["diff_lines"] = len(difflib.SplitLines(diff))
	return out, nil
}

func handleFindDuplicateFiles(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	root := stringArg(args, "path")
	recursive := boolArg(args, "recursive")
	includeHidden := boolArg(args, "include_hidden")
	minSize := int64(intArg(args, "min_size"))
	if minSize < 1 {
		return nil, InvalidParam("min_size", "must be positive")
	}
	if _, err := statDir(root); err != nil {
		return nil, err
	}

	maxFiles := kit.Cfg.Limits.MaxListEntries
	processed := 0
	truncated := false
	bySize := map[int64][]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
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
		if d.IsDir() {
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() < minSize {
			return nil
		}
		if processed >= maxFiles {
			truncated = true
			return filepath.SkipAll
		}
		processed++
		bySize[info.Size()] = append(bySize[info.Size()], path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Hash only size collisions; unique sizes cannot be duplicates.
	groups := []DuplicateGroup{}
	for size, paths := range bySize {
		if len(paths) < 2 {
			continue
		}
		byHash := map[string][]string{}
		for _, p := range paths {
			sum, err := hashFile(p)
			if err != nil {
				continue
			}
			byHash[sum] = append(byHash[sum], p)
		}
		for sum, files := range byHash {
			if len(files) < 2 {
				continue
			}
			sort.Strings(files)
			groups = append(groups, DuplicateGroup{Hash: sum, Size: size, Files: files})
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Files[0] < groups[j].Files[0] })

	return map[string]any{
		"path":            root,
		"duplicates":      groups,
		"count":           len(groups),
		"files_processed": processed,
		"truncated":       truncated,
	}, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- path went through the sandbox
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func handleFindLargeFiles(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	root := stringArg(args, "path")
	recursive := boolArg(args, "recursive")
	includeHidden := boolArg(args, "include_hidden")
	minSize := int64(intArg(args, "min_size"))
	limit := intArg(args, "limit")
	if minSize < 1 {
		return nil, InvalidParam("min_size", "must be positive")
	}
	if limit < 1 {
		return nil, InvalidParam("limit", "must be positive")
	}
	if _, err := statDir(root); err != nil {
		return nil, err
	}

	var found []LargeFile
	truncated := false
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
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
		if d.IsDir() {
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() < minSize {
			return nil
		}
		if len(found) >= limit {
			truncated = true
			return filepath.SkipAll
		}
		found = append(found, LargeFile{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Size > found[j].Size })

	return map[string]any{
		"path":      root,
		"min_size":  minSize,
		"files":     found,
		"count":     len(found),
		"truncated": truncated,
	}, nil
}

// logLevelRe recognizes the common severity words in a log line.
var logLevelRe = regexp.MustCompile(`(?i)\b(DEBUG|INFO|WARN|WARNING|ERROR|FATAL|CRITICAL|TRACE)\b`)

// logTimestampRe matches an ISO timestamp at the start of a log line.
var logTimestampRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?)`)

func handleExtractLogLines(_ context.Context, kit *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	maxLines := intArg(args, "max_lines")
	if maxLines < 1 {
		return nil, InvalidParam("max_lines", "must be positive")
	}

	var include, exclude *regexp.Regexp
	var err error
	if p := stringArg(args, "pattern"); p != "" {
		if include, err = compilePattern(p, true); err != nil {
			return nil, err
		}
	}
	if p := stringArg(args, "exclude_pattern"); p != "" {
		if exclude, err = regexp.Compile("(?i)" + p); err != nil {
			return nil, InvalidParam("exclude_pattern", err.Error())
		}
	}

	levels := levelSet(args, "levels")
	excludeLevels := levelSet(args, "exclude_levels")

	var start, end time.Time
	if s := stringArg(args, "start_time"); s != "" {
		if start, err = time.Parse(time.RFC3339, s); err != nil {
			return nil, InvalidParam("start_time", "must be RFC3339")
		}
	}
	if s := stringArg(args, "end_time"); s != "" {
		if end, err = time.Parse(time.RFC3339, s); err != nil {
			return nil, InvalidParam("end_time", "must be RFC3339")
		}
	}

	data, err := readFileCapped(kit, path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")

	var out []string
	truncated := false
	for _, line := range lines {
		if len(out) >= maxLines {
			truncated = true
			break
		}
		if !start.IsZero() || !end.IsZero() {
			if ts, ok := lineTimestamp(line); ok {
				if !start.IsZero() && ts.Before(start) {
					continue
				}
				if !end.IsZero() && ts.After(end) {
					continue
				}
			}
		}
		if len(levels) > 0 || len(excludeLevels) > 0 {
			if m := logLevelRe.FindString(line); m != "" {
				level := normalizeLevel(m)
				if len(levels) > 0 && !levels[level] {
					continue
				}
				if excludeLevels[level] {
					continue
				}
			}
		}
		if include != nil && !include.MatchString(line) {
			continue
		}
		if exclude != nil && exclude.MatchString(line) {
			continue
		}
		out = append(out, line)
	}

	return map[string]any{
		"path":      path,
		"lines":     out,
		"count":     len(out),
		"truncated": truncated,
	}, nil
}

// lineTimestamp parses a leading ISO timestamp. Lines without one pass
// the time filter untouched, matching how log files mix stack traces
// with timestamped lines.
func lineTimestamp(line string) (time.Time, bool) {
	m := logTimestampRe.FindString(line)
	if m == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if ts, err := time.Parse(layout, m); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func levelSet(args map[string]any, key string) map[string]bool {
	values := stringsArg(args, key)
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[normalizeLevel(v)] = true
	}
	return set
}

// normalizeLevel folds the severity aliases so WARN and WARNING filter
// the same lines.
func normalizeLevel(level string) string {
	up := strings.ToUpper(level)
	switch up {
	case "WARNING":
		return "WARN"
	case "CRITICAL":
		return "FATAL"
	}
	return up
}
