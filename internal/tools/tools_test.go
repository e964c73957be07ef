package tools

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/appserver.net/internal/adapter/logging"
	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/domain"
)

func TestFibonacci(t *testing.T) {
	tool, err := NewFibonacci(nil)
	require.NoError(t, err)

	tests := []struct {
		n    string
		want int64
	}{
		{n: "0", want: 1},
		{n: "1", want: 1},
		{n: "2", want: 2},
		{n: "10", want: 89},
		{n: "47", want: 4807526976},
		{n: "91", want: 7540113804746346429},
	}

	for _, tt := range tests {
		t.Run(tt.n, func(t *testing.T) {
			result, err := tool.Execute(context.Background(), json.RawMessage(tt.n))
			require.NoError(t, err)
			assert.Equal(t, domain.IntResult(tt.want), result)
		})
	}
}

func TestFibonacci_InvalidInput(t *testing.T) {
	tool, err := NewFibonacci(nil)
	require.NoError(t, err)

	for _, params := range []string{"-1", "92", `"ten"`, `{}`} {
		_, err := tool.Execute(context.Background(), json.RawMessage(params))
		assert.Error(t, err, params)
	}
}

func TestAdder(t *testing.T) {
	plusOne, err := NewAdder(nil)
	require.NoError(t, err)
	result, err := plusOne.Execute(context.Background(), json.RawMessage("5"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.Int)

	plusTen, err := NewAdder(json.RawMessage(`{"increment":10}`))
	require.NoError(t, err)
	result, err = plusTen.Execute(context.Background(), json.RawMessage("5"))
	require.NoError(t, err)
	assert.Equal(t, int64(15), result.Int)

	_, err = NewAdder(json.RawMessage(`{"increment":"x"}`))
	assert.Error(t, err)
}

func TestAdder_Overflow(t *testing.T) {
	plusOne, err := NewAdder(nil)
	require.NoError(t, err)
	minusOne, err := NewAdder(json.RawMessage(`{"increment":-1}`))
	require.NoError(t, err)

	tests := []struct {
		name    string
		adder   secondary.Tool
		n       int64
		want    int64
		wantErr bool
	}{
		{name: "max minus one", adder: plusOne, n: math.MaxInt64 - 1, want: math.MaxInt64},
		{name: "max", adder: plusOne, n: math.MaxInt64, wantErr: true},
		{name: "min plus one", adder: minusOne, n: math.MinInt64 + 1, want: math.MinInt64},
		{name: "min", adder: minusOne, n: math.MinInt64, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.adder.Execute(context.Background(), json.RawMessage(strconv.FormatInt(tt.n, 10)))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Int)
		})
	}
}

func TestEcho(t *testing.T) {
	echo, err := NewEcho(nil)
	require.NoError(t, err)

	result, err := echo.Execute(context.Background(), json.RawMessage("42"))
	require.NoError(t, err)
	assert.Equal(t, domain.ResultKindJSON, result.Kind)
	assert.JSONEq(t, "42", string(result.JSON))

	_, err = echo.Execute(context.Background(), nil)
	assert.Error(t, err)
}

func TestCatalog_Build(t *testing.T) {
	catalog := NewBuiltinCatalog(logging.NewNopLogger())
	assert.Equal(t, []string{KindAdder, KindEcho, KindFibonacci}, catalog.Kinds())

	tool, err := catalog.Build(&domain.ToolDescriptor{ID: "plusfive", Kind: KindAdder, Config: json.RawMessage(`{"increment":5}`)})
	require.NoError(t, err)
	result, err := tool.Execute(context.Background(), json.RawMessage("1"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.Int)

	_, err = catalog.Build(&domain.ToolDescriptor{ID: "x", Kind: "brainfuck"})
	assert.ErrorIs(t, err, domain.ErrUnknownTool)
}

func TestStaticSource(t *testing.T) {
	source := NewStaticSource(NewBuiltinCatalog(logging.NewNopLogger()))

	tests := []struct {
		id   string
		kind string
	}{
		{id: "fibonacci", kind: KindFibonacci},
		{id: "adder", kind: KindAdder},
		{id: "echo", kind: KindEcho},
		{id: "plusone", kind: KindAdder},
		{id: "appserver.job.impl.Fibonacci", kind: KindFibonacci},
		{id: "appserver.job.impl.PlusOne", kind: KindAdder},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			descriptor, err := source.FetchTool(context.Background(), tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.id, descriptor.ID)
			assert.Equal(t, tt.kind, descriptor.Kind)
		})
	}

	_, err := source.FetchTool(context.Background(), "unknown")
	assert.ErrorIs(t, err, domain.ErrToolNotFound)
}

func TestStaticSource_ReturnsCopies(t *testing.T) {
	source := NewStaticSource(NewBuiltinCatalog(logging.NewNopLogger()))

	d, err := source.FetchTool(context.Background(), "echo")
	require.NoError(t, err)
	d.Kind = "tampered"

	again, err := source.FetchTool(context.Background(), "echo")
	require.NoError(t, err)
	assert.Equal(t, KindEcho, again.Kind)
}
