package engine

import (
	"fmt"
	"math"
)

// DefaultMaxRows bounds how many checkpoints one expression may expand to.
const DefaultMaxRows = 10_000

// rowQuota counts the items an expression expands to on one chain and fails
// once the configured limit is passed.
//
// Each chain task owns its quota; nothing is shared across goroutines.
type rowQuota struct {
	chain   string
	limit   int
	current int
}

func newRowQuota(chain string, limit int) *rowQuota {
	return &rowQuota{chain: chain, limit: limit}
}

// Take reserves n more rows. A non-positive limit disables the quota.
func (q *rowQuota) Take(n uint64) error {
	if q.limit <= 0 {
		return nil
	}
	if n > uint64(q.limit-q.current) {
		return q.exceeded()
	}
	q.current += int(n)
	return nil
}

// TakeRange reserves the rows of the inclusive range start..end, with
// start <= end. A range spanning every uint64 is rejected even when the
// quota is disabled, since its size does not fit in a uint64.
func (q *rowQuota) TakeRange(start, end uint64) error {
	span := end - start
	if span == math.MaxUint64 {
		return q.exceeded()
	}
	return q.Take(span + 1)
}

func (q *rowQuota) exceeded() error {
	return &ExecutionError{
		Code:    ErrCodeRowLimitExceeded,
		Message: fmt.Sprintf("expression expands to more than %d rows", q.limit),
		Chain:   q.chain,
	}
}
