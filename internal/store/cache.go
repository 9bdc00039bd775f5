package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// cacheDomain separates cache keys from any other blake2b use.
const cacheDomain = "suiql/rpc-cache/v1\x00"

// cacheEntry is the CBOR payload of one rpc_cache row. The request is kept
// next to the result so a key collision is detected on read.
type cacheEntry struct {
	Endpoint string `cbor:"1,keyasint"`
	Method   string `cbor:"2,keyasint"`
	Params   []byte `cbor:"3,keyasint"`
	Result   []byte `cbor:"4,keyasint"`
}

// RPCCache persists immutable RPC results in the store. It satisfies
// rpc.Cache.
type RPCCache struct {
	s *Store
}

// RPCCache returns the persistent response cache backed by s.
func (s *Store) RPCCache() *RPCCache {
	return &RPCCache{s: s}
}

// cacheKey hashes the request with length prefixes so that field boundaries
// cannot shift between endpoint, method and params.
func cacheKey(endpoint, method string, params []byte) []byte {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(cacheDomain))
	for _, part := range [][]byte{[]byte(endpoint), []byte(method), params} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		h.Write(part)
	}
	return h.Sum(nil)
}

// Get returns the cached result for the request. A miss is (nil, false, nil).
func (c *RPCCache) Get(ctx context.Context, endpoint, method string, params []byte) ([]byte, bool, error) {
	var payload []byte
	err := c.s.db.QueryRowContext(ctx,
		`SELECT payload FROM rpc_cache WHERE key = ?`,
		cacheKey(endpoint, method, params),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read rpc cache: %w", err)
	}

	var entry cacheEntry
	if err := cbor.Unmarshal(payload, &entry); err != nil {
		return nil, false, fmt.Errorf("decode rpc cache entry: %w", err)
	}
	if entry.Endpoint != endpoint || entry.Method != method || !bytes.Equal(entry.Params, params) {
		return nil, false, nil
	}
	return entry.Result, true, nil
}

// Put stores result for the request. Writing the same request twice keeps
// the first result.
func (c *RPCCache) Put(ctx context.Context, endpoint, method string, params, result []byte) error {
	payload, err := cbor.Marshal(cacheEntry{
		Endpoint: endpoint,
		Method:   method,
		Params:   params,
		Result:   result,
	})
	if err != nil {
		return fmt.Errorf("encode rpc cache entry: %w", err)
	}

	_, err = c.s.db.ExecContext(ctx, `
		INSERT INTO rpc_cache (key, endpoint, method, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`,
		cacheKey(endpoint, method, params),
		endpoint,
		method,
		payload,
		c.s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write rpc cache: %w", err)
	}
	return nil
}

// Purge removes every cached response for endpoint and reports how many
// rows were deleted. An empty endpoint purges everything.
func (c *RPCCache) Purge(ctx context.Context, endpoint string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if endpoint == "" {
		res, err = c.s.db.ExecContext(ctx, `DELETE FROM rpc_cache`)
	} else {
		res, err = c.s.db.ExecContext(ctx, `DELETE FROM rpc_cache WHERE endpoint = ?`, endpoint)
	}
	if err != nil {
		return 0, fmt.Errorf("purge rpc cache: %w", err)
	}
	return res.RowsAffected()
}
