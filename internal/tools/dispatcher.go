package tools

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"workbench/internal/log"
	"workbench/internal/security"

	"github.com/google/uuid"
)

// Dispatcher is the single execution path for every operation: registry
// lookup, parameter validation, sandbox path resolution, timeout
// enforcement and error classification all happen here, so individual
// handlers stay small.
type Dispatcher struct {
	reg     *Registry
	kit     *Kit
	timeout time.Duration
}

// NewDispatcher wires a registry and kit together. timeout bounds every
// operation; the config layer guarantees it is within sane limits.
func NewDispatcher(reg *Registry, kit *Kit, timeout time.Duration) *Dispatcher {
	return &Dispatcher{reg: reg, kit: kit, timeout: timeout}
}

// Dispatch runs one operation and always returns an envelope; errors
// never escape as Go errors past this point.
func (d *Dispatcher) Dispatch(ctx context.Context, category, operation string, args map[string]any) Result {
	start := time.Now()
	reqID := uuid.NewString()
	logger := d.kit.Log.With("request_id", reqID, "tool", category, "operation", operation)

	op, ok := d.reg.Lookup(category, operation)
	if !ok {
		logger.Warn("unknown operation")
		return FailDetails(CodeUnknownOperation,
			fmt.Sprintf("unknown operation %q for %s", operation, category),
			map[string]any{"valid_operations": d.reg.OperationNames(category)})
	}

	validated, err := op.Params.Validate(args)
	if err != nil {
		logger.Warn("parameter validation failed", "error", err)
		return ToResult(err)
	}

	if err := d.resolvePaths(op, validated); err != nil {
		// The rejected path is logged server-side, never echoed to the
		// client.
		logger.Warn("path rejected", "error", err)
		return ToResult(err)
	}

	result := d.run(ctx, op, validated, logger)

	logger.Info("operation complete",
		"success", result.Success,
		"duration", time.Since(start),
	)
	return result
}

// resolvePaths rewrites every Path-flagged argument to its canonical
// sandboxed form before the handler sees it.
func (d *Dispatcher) resolvePaths(op *Operation, args map[string]any) error {
	for _, f := range op.Params.Fields {
		if !f.Path {
			continue
		}
		raw, present := args[f.Name]
		if !present {
			continue
		}
		switch input := raw.(type) {
		case string:
			resolved, err := d.resolveOne(f.Name, input)
			if err != nil {
				return err
			}
			args[f.Name] = resolved
		case []string:
			resolved := make([]string, len(input))
			for i, p := range input {
				r, err := d.resolveOne(f.Name, p)
				if err != nil {
					return err
				}
				resolved[i] = r
			}
			args[f.Name] = resolved
		}
	}
	return nil
}

func (d *Dispatcher) resolveOne(param, input string) (string, error) {
	resolved, err := d.kit.Sandbox.Resolve(input)
	if err != nil {
		if errors.Is(err, security.ErrTraversal) || errors.Is(err, security.ErrNoRoot) {
			return "", &OpError{
				Code:    CodePathTraversal,
				Message: fmt.Sprintf("parameter %s: path is outside the allowed workspace", param),
				Details: map[string]any{"parameter": param},
			}
		}
		return "", InvalidParam(param, err.Error())
	}
	return resolved, nil
}

// run executes the handler under the dispatch timeout, converting panics
// to INTERNAL failures so one bad operation cannot take down the server.
func (d *Dispatcher) run(ctx context.Context, op *Operation, args map[string]any, logger log.Logger) Result {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	type outcome struct {
		data any
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panicked",
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()),
				)
				done <- outcome{err: Errf(CodeInternal, "internal error")}
			}
		}()
		data, err := op.Handler(ctx, d.kit, args)
		done <- outcome{data: data, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if Classify(out.err) == CodeInternal {
				logger.Error("operation failed", "error", out.err)
			}
			return ToResult(out.err)
		}
		return OK(out.data)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Fail(CodeTimeout,
				fmt.Sprintf("operation %s timed out after %s", op.Name, d.timeout))
		}
		return Fail(CodeUnavailable, "request canceled")
	}
}

// helpCatalog describes every registered operation of a category, or all
// categories when category is empty. Backing data for the server_help
// operation, generated from the registry so it cannot drift.
func helpCatalog(reg *Registry, category string) map[string]any {
	categories := reg.Categories()
	if category != "" {
		categories = []string{category}
	}

	out := make(map[string]any, len(categories))
	for _, cat := range categories {
		ops := reg.Operations(cat)
		entries := make([]map[string]any, 0, len(ops))
		for _, op := range ops {
			params := make([]map[string]any, 0, len(op.Params.Fields))
			for _, f := range op.Params.Fields {
				p := map[string]any{
					"name":     f.Name,
					"type":     f.Kind.String(),
					"required": f.Required,
				}
				if f.Doc != "" {
					p["description"] = f.Doc
				}
				if f.Default != nil {
					p["default"] = f.Default
				}
				if len(f.Enum) > 0 {
					p["enum"] = f.Enum
				}
				params = append(params, p)
			}
			entries = append(entries, map[string]any{
				"operation":  op.Name,
				"summary":    op.Summary,
				"parameters": params,
			})
		}
		out[cat] = entries
	}
	return out
}
