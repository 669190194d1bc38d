// Package poe implements Proof-of-Existence collaborators (§4.3 of the
// specification). The engine treats a Store as a pure function over
// (certificate ID, instant) within a single run; it never mutates one.
package poe

import (
	"time"

	"github.com/sigtrust/cts/model"
)

// Store answers whether proof exists that a certificate existed at or
// before a given instant.
type Store interface {
	HasCertificatePOE(id model.CertificateID, at time.Time) bool
}

// entry pairs a certificate with the instant at which its POE was
// established; queries at or after that instant succeed.
type entry struct {
	id  model.CertificateID
	not time.Time
}

// MemoryStore is a pre-populated, in-memory Store, built by callers (or test
// fixtures) before a run starts, per §3 ("POE store. Pre-populated before
// CTS runs").
type MemoryStore struct {
	entries []entry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add records that id had proof of existence at poeTime. A store may record
// multiple POE instants for the same certificate (e.g. one timestamp token
// plus one archival record); HasCertificatePOE succeeds if any recorded
// instant is at or before the queried time.
func (m *MemoryStore) Add(id model.CertificateID, poeTime time.Time) {
	m.entries = append(m.entries, entry{id: id, not: poeTime})
}

// HasCertificatePOE implements Store.
func (m *MemoryStore) HasCertificatePOE(id model.CertificateID, at time.Time) bool {
	for _, e := range m.entries {
		if e.id == id && !e.not.After(at) {
			return true
		}
	}
	return false
}

// Chain combines multiple Store collaborators into one: HasCertificatePOE
// succeeds if any underlying store does. This lets a caller combine a
// timestamp-token-backed TimestampStore with a pre-populated MemoryStore of
// archival evidence, the way the spec's §4.3 "Implementations may be based
// on timestamps, previously validated signatures, or explicit archive
// evidence" is meant to be composed.
func Chain(stores ...Store) Store {
	return chained(stores)
}

type chained []Store

func (c chained) HasCertificatePOE(id model.CertificateID, at time.Time) bool {
	for _, s := range c {
		if s.HasCertificatePOE(id, at) {
			return true
		}
	}
	return false
}
