// Package model holds the immutable, read-only views over diagnostic data
// that the control-time sliding engine consumes. Views are built once by a
// loader and never mutated afterwards.
//
// This mirrors the teacher's common package: a shared set of DTOs built by
// one collaborator (there, a PDF parser; here, any diagnostic-data source)
// and read by another (there, verify; here, the CTS engine).
package model

import "time"

// CertificateID identifies a certificate within a Chain. Diagnostic data is
// free to use whatever opaque identifier scheme it likes (a serial number, a
// hash, a sequential index); the engine never interprets it.
type CertificateID string

// AlgoUsage describes the signature algorithm used to sign an object
// (a certificate or a revocation status), prior to canonicalization.
type AlgoUsage struct {
	DigestAlgorithm   string
	EncryptionAlgo    string
	EncryptionKeyBits int
}

// RevocationView is a read-only view over a single revocation status
// (an OCSP response or a CRL entry) for one certificate.
type RevocationView struct {
	// IssuingTime is when the revocation status itself was produced
	// (OCSP thisUpdate, or the CRL's thisUpdate).
	IssuingTime time.Time

	// Algo describes the algorithm used to sign the revocation status.
	Algo AlgoUsage

	// Revoked reports whether this status marks the certificate as revoked.
	Revoked bool

	// RevocationDate is when the certificate was revoked, valid only when
	// Revoked is true.
	RevocationDate time.Time
}

// CertificateView is a read-only view over one certificate in a Chain.
type CertificateView struct {
	ID CertificateID

	// Trusted marks a certificate whose trust is established out-of-band
	// (a trust anchor). Trusted certificates short-circuit the engine.
	Trusted bool

	NotBefore time.Time
	NotAfter  time.Time

	// TrustServiceStatus is the opaque status URI of the issuing trust
	// service, populated only for the signing certificate / trust anchor.
	TrustServiceStatus string
	// TrustServiceEndDate is when TrustServiceStatus stopped applying.
	TrustServiceEndDate time.Time

	// Algo describes the algorithm used to sign this certificate.
	Algo AlgoUsage

	// Revocation is this certificate's revocation status, or nil if none
	// is known to the diagnostic data.
	Revocation *RevocationView

	// RevocationInfoArchivalCutOff is the upper bound on in-scope
	// revocation issuing time contributed by the expiredCertOnCRL CRL
	// extension (OID 2.5.29.60) on the issuing CA, when the loader found
	// and decoded it. Nil unless the extension was present; consulted by
	// the engine only when the policy opts into widening (see
	// Policy.ExpiredCertOnCRLExtensionEnabled in SPEC_FULL.md).
	RevocationInfoArchivalCutOff *time.Time
}

// Chain is an ordered sequence of certificate IDs. By contract element 0 is
// the signing certificate and the last element is a trust anchor.
type Chain []CertificateID

// SigningCertificateID returns the chain's first element, the signing
// certificate the engine distinguishes in its trust-anchor special case.
func (c Chain) SigningCertificateID() CertificateID {
	return c[0]
}

// Reversed returns the chain in trust-anchor-first order, the iteration
// order the engine processes certificates in.
func (c Chain) Reversed() Chain {
	out := make(Chain, len(c))
	for i, id := range c {
		out[len(c)-1-i] = id
	}
	return out
}

// DiagnosticData resolves certificate views by ID. Implementations never
// return nil; a missing ID yields a sentinel view whose fields are all
// zero-valued, and such a view must never appear in a well-formed chain.
type DiagnosticData interface {
	LookupCertificate(id CertificateID) CertificateView
}

// Static is the simplest possible DiagnosticData: a fixed lookup table,
// built once by a loader and never mutated afterwards.
type Static map[CertificateID]CertificateView

// LookupCertificate implements DiagnosticData.
func (s Static) LookupCertificate(id CertificateID) CertificateView {
	return s[id]
}
