// Package tools implements the operation registry and dispatcher behind
// the server's portmanteau tools. Each tool (filesystem_ops,
// repository_ops, docker_ops, system_ops) is a category of named
// operations; a single dispatch path validates parameters, resolves
// paths through the sandbox, enforces a timeout, and folds every outcome
// into the uniform result envelope.
package tools
