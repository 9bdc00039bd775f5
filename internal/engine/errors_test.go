package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/compiler"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
)

func TestExecutionError_Message(t *testing.T) {
	err := &ExecutionError{Code: ErrCodeNotFound, Message: "transaction not found", Chain: "mainnet", ID: "abc"}
	assert.Equal(t, "NOT_FOUND: transaction not found (chain=mainnet, id=abc)", err.Error())
}

func TestRPCError_Classifies(t *testing.T) {
	notFound := rpcError("mainnet", "1", fmt.Errorf("checkpoint 1: %w", rpc.ErrNotFound))
	assert.True(t, IsExecutionError(notFound, ErrCodeNotFound))

	other := rpcError("mainnet", "1", errors.New("timeout"))
	assert.True(t, IsExecutionError(other, ErrCodeRPCFailure))

	inner := &ExecutionError{Code: ErrCodeResolverNotFound}
	assert.Same(t, inner, rpcError("mainnet", "x", inner))
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"execution", &ExecutionError{Code: ErrCodeMissingIDs}, "MISSING_IDS"},
		{"wrapped execution", fmt.Errorf("run: %w", &ExecutionError{Code: ErrCodeNotFound}), "NOT_FOUND"},
		{"parse", &compiler.ParseError{Kind: compiler.ErrInvalidEntity}, "INVALID_ENTITY"},
		{"canceled", fmt.Errorf("fetch: %w", context.Canceled), "CANCELED"},
		{"other", errors.New("boom"), "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}
