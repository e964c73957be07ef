package domain

import (
	"encoding/json"
	"fmt"
)

// ResultKind tags the concrete value carried by a Result
type ResultKind string

const (
	ResultKindInt    ResultKind = "int"
	ResultKindFloat  ResultKind = "float"
	ResultKindString ResultKind = "string"
	ResultKindBytes  ResultKind = "bytes"
	ResultKindJSON   ResultKind = "json"
)

// Result is the canonical value a tool returns. Exactly one field matching Kind is meaningful.
type Result struct {
	Kind   ResultKind      `json:"kind"`
	Int    int64           `json:"int,omitempty"`
	Float  float64         `json:"float,omitempty"`
	String string          `json:"string,omitempty"`
	Bytes  []byte          `json:"bytes,omitempty"`
	JSON   json.RawMessage `json:"json,omitempty"`
}

func IntResult(v int64) Result {
	return Result{Kind: ResultKindInt, Int: v}
}

func FloatResult(v float64) Result {
	return Result{Kind: ResultKindFloat, Float: v}
}

func StringResult(v string) Result {
	return Result{Kind: ResultKindString, String: v}
}

func BytesResult(v []byte) Result {
	return Result{Kind: ResultKindBytes, Bytes: v}
}

// JSONResult wraps an arbitrary JSON document
func JSONResult(v json.RawMessage) Result {
	return Result{Kind: ResultKindJSON, JSON: v}
}

// Validate reports whether Kind is one of the known tags
func (r Result) Validate() error {
	switch r.Kind {
	case ResultKindInt, ResultKindFloat, ResultKindString, ResultKindBytes, ResultKindJSON:
		return nil
	default:
		return fmt.Errorf("unknown result kind %q", r.Kind)
	}
}

// Value returns the carried value as a plain Go value
func (r Result) Value() interface{} {
	switch r.Kind {
	case ResultKindInt:
		return r.Int
	case ResultKindFloat:
		return r.Float
	case ResultKindString:
		return r.String
	case ResultKindBytes:
		return r.Bytes
	case ResultKindJSON:
		return r.JSON
	default:
		return nil
	}
}

func (r Result) Display() string {
	switch r.Kind {
	case ResultKindBytes:
		return fmt.Sprintf("%x", r.Bytes)
	case ResultKindJSON:
		return string(r.JSON)
	default:
		return fmt.Sprint(r.Value())
	}
}
