// Package blobstore implements the core's only persistent dependency: a
// byte-addressable remote key-value store. The contract is intentionally
// thin — get/put, no TTL, no listing, no compare-and-set.
package blobstore

import "context"

// Store is the contract Worker depends on. Errors are opaque
// transient-or-fatal; the core does not retry.
type Store interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Put(ctx context.Context, id string, data []byte) error
}
