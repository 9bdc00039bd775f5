package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/compiler"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
)

// ErrorCode categorizes execution errors.
type ErrorCode string

const (
	// ErrCodeMissingTxHashOrFilter: a tx query named neither digests nor a checkpoint filter.
	ErrCodeMissingTxHashOrFilter ErrorCode = "MISSING_TRANSACTION_HASH_OR_FILTER"

	// ErrCodeStartAfterEnd: a checkpoint range resolved to start > end.
	ErrCodeStartAfterEnd ErrorCode = "START_CHECKPOINT_AFTER_END"

	// ErrCodeResolverNotFound: a name resolved to no address or the zero address,
	// or the node rejected the lookup with a JSON-RPC error.
	ErrCodeResolverNotFound ErrorCode = "RESOLVER_NOT_FOUND"

	// ErrCodeRPCFailure: transport or JSON-RPC failure.
	ErrCodeRPCFailure ErrorCode = "RPC_FAILURE"

	// ErrCodeNotFound: the node has no such checkpoint, transaction, object or coin.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	ErrCodeUnsupportedEntity   ErrorCode = "UNSUPPORTED_ENTITY"
	ErrCodeMissingFields       ErrorCode = "MISSING_FIELDS"
	ErrCodeMissingCheckpointID ErrorCode = "MISSING_CHECKPOINT_ID"
	ErrCodeMissingIDs          ErrorCode = "MISSING_IDS"

	// ErrCodeRowLimitExceeded: a range would expand past the row quota.
	ErrCodeRowLimitExceeded ErrorCode = "ROW_LIMIT_EXCEEDED"
)

// ExecutionError is returned by Execute. Chain and ID, when set, name the
// endpoint and identifier the failure happened on.
type ExecutionError struct {
	Code    ErrorCode
	Message string
	Chain   string
	ID      string
	Err     error
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	var ctx []string
	if e.Chain != "" {
		ctx = append(ctx, "chain="+e.Chain)
	}
	if e.ID != "" {
		ctx = append(ctx, "id="+e.ID)
	}
	if len(ctx) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(ctx, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// IsExecutionError reports whether err is an ExecutionError with code.
// Uses errors.As to handle wrapped errors.
func IsExecutionError(err error, code ErrorCode) bool {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

// Code returns the machine-readable code for err: the ExecutionError code,
// the ParseError kind, or CANCELED and INTERNAL otherwise.
func Code(err error) string {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return string(ee.Code)
	}
	var pe *compiler.ParseError
	if errors.As(err, &pe) {
		return string(pe.Kind)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "CANCELED"
	}
	return "INTERNAL"
}

// rpcError classifies a client error. Errors that already carry a code pass
// through untouched.
func rpcError(chain, id string, err error) error {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return err
	}
	code := ErrCodeRPCFailure
	if rpc.IsNotFound(err) {
		code = ErrCodeNotFound
	}
	return &ExecutionError{Code: code, Chain: chain, ID: id, Err: err}
}

func newStartAfterEndError(chain string, start, end uint64) *ExecutionError {
	return &ExecutionError{
		Code:    ErrCodeStartAfterEnd,
		Message: fmt.Sprintf("start checkpoint must be less than end checkpoint (%d > %d)", start, end),
		Chain:   chain,
	}
}
