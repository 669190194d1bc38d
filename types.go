// Package cts implements the Control-Time Sliding algorithm (ETSI long-term
// signature validation, clause 9.2.2): given a certificate chain, revocation
// evidence, a Proof-of-Existence store, trust-service status information and
// an algorithm-expiration catalogue, it determines the latest instant at
// which the chain's trust path can still be regarded as cryptographically
// sound.
//
// See https://www.etsi.org/deliver/etsi_en/319100_319199/31910201/ for the
// underlying signature validation procedures this feeds into.
package cts

import (
	"time"

	"github.com/sigtrust/cts/report"
)

// Indication is the standardized top-level outcome of the CTS run.
type Indication int

const (
	// Valid means the trust path held up to (at least) the returned
	// control-time.
	Valid Indication = iota
	// Indeterminate means the engine could not establish a control-time
	// past some point in the chain; see SubIndication for why.
	Indeterminate
	// Failed is reserved for sibling constraint checks (multi-value
	// constraints, signature verification) and is never produced by CTS
	// itself (§7).
	Failed
)

func (i Indication) String() string {
	switch i {
	case Valid:
		return "Valid"
	case Indeterminate:
		return "Indeterminate"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// SubIndication refines an Indication. CTS only ever produces NoPOE or None.
type SubIndication int

const (
	None SubIndication = iota
	NoPOE
)

func (s SubIndication) String() string {
	if s == NoPOE {
		return "NoPOE"
	}
	return "None"
}

// Conclusion is the result of one CTS run.
type Conclusion struct {
	Indication    Indication
	SubIndication SubIndication
	ControlTime   time.Time
	Trace         *report.Fragment
}
