package tools

import "encoding/json"

// Code identifies a failure class in the stable error taxonomy. Codes are
// part of the wire contract; clients branch on them.
type Code string

const (
	CodeUnknownOperation Code = "UNKNOWN_OPERATION"
	CodeMissingParameter Code = "MISSING_PARAMETER"
	CodeInvalidParameter Code = "INVALID_PARAMETER"
	CodePathTraversal    Code = "PATH_TRAVERSAL"
	CodeNotFound         Code = "NOT_FOUND"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeConflict         Code = "CONFLICT"
	CodeUnavailable      Code = "UNAVAILABLE"
	CodeTimeout          Code = "TIMEOUT"
	CodeInternal         Code = "INTERNAL"
)

// Result is the uniform envelope every operation returns. Exactly one of
// the two shapes is emitted: {"success":true,"data":...} or
// {"success":false,"error":...,"error_code":...} with optional details.
type Result struct {
	Success   bool
	Data      any
	Error     string
	ErrorCode Code
	Details   map[string]any
}

// OK wraps data in a success envelope.
func OK(data any) Result {
	return Result{Success: true, Data: data}
}

// Fail builds a failure envelope with the given code and message.
func Fail(code Code, msg string) Result {
	return Result{Success: false, Error: msg, ErrorCode: code}
}

// FailDetails builds a failure envelope carrying structured details.
func FailDetails(code Code, msg string, details map[string]any) Result {
	return Result{Success: false, Error: msg, ErrorCode: code, Details: details}
}

// MarshalJSON enforces the envelope shape: success envelopes carry only
// success and data (data present even when nil), failure envelopes carry
// success, error and error_code, plus details when non-empty.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success bool `json:"success"`
			Data    any  `json:"data"`
		}{true, r.Data})
	}
	if len(r.Details) > 0 {
		return json.Marshal(struct {
			Success   bool           `json:"success"`
			Error     string         `json:"error"`
			ErrorCode Code           `json:"error_code"`
			Details   map[string]any `json:"details"`
		}{false, r.Error, r.ErrorCode, r.Details})
	}
	return json.Marshal(struct {
		Success   bool   `json:"success"`
		Error     string `json:"error"`
		ErrorCode Code   `json:"error_code"`
	}{false, r.Error, r.ErrorCode})
}

// UnmarshalJSON restores a Result from its wire form. Used by tests and
// by clients of the envelope; the server itself only marshals.
func (r *Result) UnmarshalJSON(data []byte) error {
	var wire struct {
		Success   bool            `json:"success"`
		Data      json.RawMessage `json:"data"`
		Error     string          `json:"error"`
		ErrorCode Code            `json:"error_code"`
		Details   map[string]any  `json:"details"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.Success = wire.Success
	r.Error = wire.Error
	r.ErrorCode = wire.ErrorCode
	r.Details = wire.Details
	r.Data = nil
	if len(wire.Data) > 0 {
		var v any
		if err := json.Unmarshal(wire.Data, &v); err != nil {
			return err
		}
		r.Data = v
	}
	return nil
}
