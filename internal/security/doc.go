// Package security provides the path sandbox that protects every
// filesystem-touching tool operation against traversal attacks (CWE-22).
//
// A Sandbox is built once at startup from the configured workspace root and
// shared read-only by all concurrent dispatches. Resolve turns a
// caller-supplied path string into a canonical absolute path that is
// guaranteed to stay inside the root, following symlinks so a link inside
// the root cannot point the operation outside of it.
//
// Three modes, chosen explicitly by configuration:
//   - enabled with a root: paths are contained within the root
//   - enabled without a root: every path is denied (fail-safe default)
//   - disabled: any path is accepted as-is (explicit, logged opt-out)
package security
