package tools

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Match is one grep_file hit with optional surrounding context.
type Match struct {
	Line    int      `json:"line"`
	Text    string   `json:"text"`
	Before  []string `json:"before,omitempty"`
	After   []string `json:"after,omitempty"`
}

func compilePattern(pattern string, ignoreCase bool) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, InvalidParam("pattern", "must not be empty")
	}
	if ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, InvalidParam("pattern", err.Error())
	}
	return re, nil
}

func handleGrepFile(_ context.Context, kit *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	maxMatches := intArg(args, "max_matches")
	contextLines := intArg(args, "context")
	if maxMatches < 1 {
		return nil, InvalidParam("max_matches", "must be positive")
	}
	if contextLines < 0 {
		return nil, InvalidParam("context", "must not be negative")
	}

	re, err := compilePattern(stringArg(args, "pattern"), boolArg(args, "ignore_case"))
	if err != nil {
		return nil, err
	}

	data, err := readFileCapped(kit, path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")

	var matches []Match
	truncated := false
	for i, line := range lines {
		if !re.MatchString(line) {
			continue
		}
		if len(matches) >= maxMatches {
			truncated = true
			break
		}
		m := Match{Line: i + 1, Text: line}
		if contextLines > 0 {
			lo := max(0, i-contextLines)
			hi := min(len(lines), i+1+contextLines)
			m.Before = lines[lo:i]
			m.After = lines[i+1 : hi]
		}
		matches = append(matches, m)
	}

	return map[string]any{
		"path":      path,
		"matches":   matches,
		"count":     len(matches),
		"truncated": truncated,
	}, nil
}

func handleSearchFiles(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	root := stringArg(args, "path")
	pattern := stringArg(args, "pattern")
	includeHidden := boolArg(args, "include_hidden")
	if pattern == "" {
		return nil, InvalidParam("pattern", "must not be empty")
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, InvalidParam("pattern", "invalid glob: "+err.Error())
	}
	if _, err := statDir(root); err != nil {
		return nil, err
	}

	maxEntries := kit.Cfg.Limits.MaxListEntries
	var found []string
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
		ok, _ := filepath.Match(pattern, d.Name())
		if !ok {
			return nil
		}
		if len(found) >= maxEntries {
			truncated = true
			return filepath.SkipAll
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"path":      root,
		"pattern":   pattern,
		"files":     found,
		"count":     len(found),
		"truncated": truncated,
	}, nil
}

func handleCountPattern(_ context.Context, kit *Kit, args map[string]any) (any, error) {
	path := stringArg(args, "path")
	re, err := compilePattern(stringArg(args, "pattern"), boolArg(args, "ignore_case"))
	if err != nil {
		return nil, err
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

	total := 0
	matchingLines := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), int(kit.Cfg.Limits.MaxReadBytes))
	for scanner.Scan() {
		n := len(re.FindAllStringIndex(scanner.Text(), -1))
		if n > 0 {
			matchingLines++
			total += n
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return map[string]any{
		"path":           path,
		"matches":        total,
		"matching_lines": matchingLines,
	}, nil
}
