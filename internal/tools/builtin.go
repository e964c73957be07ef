package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/domain"
)

const (
	KindFibonacci = "fibonacci"
	KindAdder     = "adder"
	KindEcho      = "echo"
)

// largest sequence number whose result still fits in an int64
const maxFibonacciSequence = 91

// ToolFunc adapts a function to secondary.Tool
type ToolFunc func(ctx context.Context, parameters json.RawMessage) (domain.Result, error)

func (f ToolFunc) Execute(ctx context.Context, parameters json.RawMessage) (domain.Result, error) {
	return f(ctx, parameters)
}

// Fibonacci returns the Fibonacci number for a sequence number, where 0 and 1 both yield 1
type Fibonacci struct{}

func NewFibonacci(json.RawMessage) (secondary.Tool, error) {
	return Fibonacci{}, nil
}

func (Fibonacci) Execute(ctx context.Context, parameters json.RawMessage) (domain.Result, error) {
	var n int64
	if err := json.Unmarshal(parameters, &n); err != nil {
		return domain.Result{}, fmt.Errorf("fibonacci expects an integer: %w", err)
	}
	if n < 0 || n > maxFibonacciSequence {
		return domain.Result{}, fmt.Errorf("fibonacci sequence number must be in [0, %d], got %d", maxFibonacciSequence, n)
	}

	var prev, curr int64 = 0, 1
	for i := int64(0); i < n; i++ {
		prev, curr = curr, prev+curr
	}
	return domain.IntResult(curr), nil
}

// AdderConfig is the descriptor configuration of the adder kind
type AdderConfig struct {
	Increment int64 `json:"increment"`
}

// Adder adds a configured increment (1 by default) to an integer
type Adder struct {
	increment int64
}

func NewAdder(config json.RawMessage) (secondary.Tool, error) {
	cfg := AdderConfig{Increment: 1}
	if len(config) > 0 && string(config) != "null" {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, fmt.Errorf("invalid adder config: %w", err)
		}
	}
	return &Adder{increment: cfg.Increment}, nil
}

func (a *Adder) Execute(ctx context.Context, parameters json.RawMessage) (domain.Result, error) {
	var n int64
	if err := json.Unmarshal(parameters, &n); err != nil {
		return domain.Result{}, fmt.Errorf("adder expects an integer: %w", err)
	}
	if (a.increment > 0 && n > math.MaxInt64-a.increment) || (a.increment < 0 && n < math.MinInt64-a.increment) {
		return domain.Result{}, fmt.Errorf("adder overflows int64: %d + %d", n, a.increment)
	}
	return domain.IntResult(n + a.increment), nil
}

// NewEcho returns the parameters unchanged as a JSON result
func NewEcho(json.RawMessage) (secondary.Tool, error) {
	return ToolFunc(func(ctx context.Context, parameters json.RawMessage) (domain.Result, error) {
		if len(parameters) == 0 {
			return domain.Result{}, errors.New("echo expects parameters")
		}
		return domain.JSONResult(parameters), nil
	}), nil
}
