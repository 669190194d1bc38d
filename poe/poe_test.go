package poe

import (
	"testing"
	"time"

	"github.com/sigtrust/cts/model"
)

func TestMemoryStore(t *testing.T) {
	now := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.Add("ee", now.Add(-time.Hour))

	if !s.HasCertificatePOE("ee", now) {
		t.Error("expected POE at now (after recorded instant)")
	}
	if !s.HasCertificatePOE("ee", now.Add(-time.Hour)) {
		t.Error("expected POE exactly at recorded instant")
	}
	if s.HasCertificatePOE("ee", now.Add(-2*time.Hour)) {
		t.Error("did not expect POE before recorded instant")
	}
	if s.HasCertificatePOE("ca", now) {
		t.Error("did not expect POE for unknown certificate")
	}
}

func TestChain(t *testing.T) {
	now := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	a := NewMemoryStore()
	a.Add("ee", now)
	b := NewMemoryStore()
	b.Add("ca", now)

	chained := Chain(a, b)
	if !chained.HasCertificatePOE("ee", now) {
		t.Error("expected ee POE from store a")
	}
	if !chained.HasCertificatePOE("ca", now) {
		t.Error("expected ca POE from store b")
	}
	if chained.HasCertificatePOE("root", now) {
		t.Error("did not expect POE for root")
	}
}

func TestChain_Empty(t *testing.T) {
	if Chain().HasCertificatePOE("x", time.Now()) {
		t.Error("empty chain should never have POE")
	}
}
