// Package mcp exposes the operation registry over the Model Context
// Protocol. Four portmanteau tools are registered, one per category;
// each takes an operation name plus an arguments object and answers with
// the JSON result envelope as text content.
package mcp
