package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrTraversal indicates a path resolved outside the sandbox root.
// Error messages wrapping it never echo the offending absolute path; the
// caller logs details server-side instead.
var ErrTraversal = errors.New("path escapes the workspace root")

// ErrNoRoot indicates sandboxing is enabled but no root is configured.
// Deny-by-default: permissive mode requires an explicit opt-out.
var ErrNoRoot = errors.New("no workspace root configured, all paths denied")

// Sandbox resolves caller-supplied paths against a configured root.
// Immutable after construction; safe for concurrent use.
type Sandbox struct {
	root    string // canonical absolute root, empty when unset
	enabled bool
}

// NewSandbox creates a path sandbox rooted at root. The root is
// canonicalized (absolute, symlinks evaluated) so later containment checks
// compare like with like. An empty root with enabled=true yields a sandbox
// that denies every path.
func NewSandbox(root string, enabled bool) (*Sandbox, error) {
	if root == "" {
		return &Sandbox{enabled: enabled}, nil
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %q: %w", root, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing root %q: %w", root, err)
	}

	return &Sandbox{root: canonical, enabled: enabled}, nil
}

// Enabled reports whether path containment is active.
func (s *Sandbox) Enabled() bool {
	return s.enabled
}

// Root returns the canonical root, or empty when unset.
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve validates a caller-supplied path and returns its canonical
// absolute form. Relative inputs are resolved against the root. Symlinks
// are followed before the containment check, so a link inside the root
// pointing outside still fails with ErrTraversal.
//
// For paths that do not exist yet (write targets), the deepest existing
// ancestor is canonicalized and the remaining components re-joined, which
// closes the symlinked-parent-directory escape.
func (s *Sandbox) Resolve(input string) (string, error) {
	if input == "" {
		return "", errors.New("empty path")
	}

	if !s.enabled {
		// Permissive mode: explicit configuration choice. Still clean
		// the path so handlers see a canonical form.
		abs, err := filepath.Abs(filepath.Clean(input))
		if err != nil {
			return "", fmt.Errorf("invalid path: %w", err)
		}
		return abs, nil
	}

	if s.root == "" {
		return "", ErrNoRoot
	}

	clean := filepath.Clean(input)
	var abs string
	if filepath.IsAbs(clean) {
		abs = clean
	} else {
		abs = filepath.Join(s.root, clean)
	}

	canonical, err := s.canonicalize(abs)
	if err != nil {
		return "", err
	}

	if !s.contains(canonical) {
		return "", ErrTraversal
	}
	return canonical, nil
}

// canonicalize evaluates symlinks for abs. When the full path does not
// exist, it walks up to the deepest existing ancestor, canonicalizes that,
// and re-joins the missing suffix.
func (s *Sandbox) canonicalize(abs string) (string, error) {
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("resolving symlinks: %w", err)
	}

	// Path does not exist yet. Find the deepest existing ancestor.
	existing := abs
	var suffix []string
	for {
		parent := filepath.Dir(existing)
		if parent == existing {
			// Reached the filesystem root without finding anything.
			return abs, nil
		}
		suffix = append([]string{filepath.Base(existing)}, suffix...)
		existing = parent

		resolved, err = filepath.EvalSymlinks(existing)
		if err == nil {
			return filepath.Join(append([]string{resolved}, suffix...)...), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("resolving symlinks: %w", err)
		}
	}
}

// contains reports whether path equals the root or is a descendant of it.
func (s *Sandbox) contains(path string) bool {
	if path == s.root {
		return true
	}
	return strings.HasPrefix(path, s.root+string(filepath.Separator))
}
