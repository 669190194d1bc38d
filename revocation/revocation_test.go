package revocation

import (
	"crypto/rand"
	"crypto/x509"
	"math/big"
	"testing"
	"time"

	"golang.org/x/crypto/ocsp"

	"github.com/sigtrust/cts/internal/testpki"
)

func TestInfoArchival_AddCRLAndOCSP(t *testing.T) {
	info := InfoArchival{}

	if err := info.AddCRL([]byte("crl")); err != nil {
		t.Errorf("AddCRL failed: %v", err)
	}
	if len(info.CRL) != 1 {
		t.Error("AddCRL did not append")
	}

	if err := info.AddOCSP([]byte("ocsp")); err != nil {
		t.Errorf("AddOCSP failed: %v", err)
	}
	if len(info.OCSP) != 1 {
		t.Error("AddOCSP did not append")
	}
}

func TestViewFor_OCSPGood(t *testing.T) {
	pki := testpki.NewTestPKI(t)
	pki.StartCRLServer()
	defer pki.Close()

	_, leaf := pki.IssueLeaf("cts-test-leaf")
	issuer := pki.IntermediateCerts[len(pki.IntermediateCerts)-1]
	issuerKey := pki.IntermediateKeys[len(pki.IntermediateKeys)-1]

	now := time.Now()
	resp, err := ocsp.CreateResponse(issuer, issuer, ocsp.Response{
		Status:       ocsp.Good,
		SerialNumber: leaf.SerialNumber,
		ThisUpdate:   now.Add(-time.Hour),
		NextUpdate:   now.Add(24 * time.Hour),
	}, issuerKey)
	if err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}

	var info InfoArchival
	if err := info.AddOCSP(resp); err != nil {
		t.Fatal(err)
	}

	view, ok := info.ViewFor(leaf, issuer)
	if !ok {
		t.Fatal("expected a revocation view")
	}
	if view.Revoked {
		t.Error("expected Revoked = false for Good status")
	}
	if view.Algo.DigestAlgorithm == "" {
		t.Error("expected a non-empty digest algorithm")
	}
}

func TestViewFor_OCSPRevoked(t *testing.T) {
	pki := testpki.NewTestPKI(t)
	pki.StartCRLServer()
	defer pki.Close()

	_, leaf := pki.IssueLeaf("cts-test-leaf-revoked")
	issuer := pki.IntermediateCerts[len(pki.IntermediateCerts)-1]
	issuerKey := pki.IntermediateKeys[len(pki.IntermediateKeys)-1]

	now := time.Now()
	revokedAt := now.Add(-time.Hour)
	resp, err := ocsp.CreateResponse(issuer, issuer, ocsp.Response{
		Status:       ocsp.Revoked,
		SerialNumber: leaf.SerialNumber,
		ThisUpdate:   now.Add(-2 * time.Hour),
		NextUpdate:   now.Add(24 * time.Hour),
		RevokedAt:    revokedAt,
	}, issuerKey)
	if err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}

	var info InfoArchival
	if err := info.AddOCSP(resp); err != nil {
		t.Fatal(err)
	}

	view, ok := info.ViewFor(leaf, issuer)
	if !ok {
		t.Fatal("expected a revocation view")
	}
	if !view.Revoked {
		t.Fatal("expected Revoked = true for Revoked status")
	}
	if !view.RevocationDate.Equal(revokedAt) {
		t.Errorf("RevocationDate = %v, want %v", view.RevocationDate, revokedAt)
	}
}

func TestViewFor_CRLRevoked(t *testing.T) {
	pki := testpki.NewTestPKI(t)
	pki.StartCRLServer()
	defer pki.Close()

	_, leaf := pki.IssueLeaf("cts-test-leaf-crl")
	issuer := pki.IntermediateCerts[len(pki.IntermediateCerts)-1]
	issuerKey := pki.IntermediateKeys[len(pki.IntermediateKeys)-1]

	now := time.Now()
	revokedAt := now.Add(-30 * time.Minute)
	crlBytes, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		Number:     big.NewInt(1),
		ThisUpdate: now.Add(-time.Hour),
		NextUpdate: now.Add(24 * time.Hour),
		RevokedCertificateEntries: []x509.RevocationListEntry{
			{SerialNumber: leaf.SerialNumber, RevocationTime: revokedAt},
		},
	}, issuer, issuerKey)
	if err != nil {
		t.Fatalf("CreateRevocationList: %v", err)
	}

	var info InfoArchival
	if err := info.AddCRL(crlBytes); err != nil {
		t.Fatal(err)
	}

	view, ok := info.ViewFor(leaf, issuer)
	if !ok {
		t.Fatal("expected a revocation view")
	}
	if !view.Revoked {
		t.Fatal("expected Revoked = true")
	}
	if !view.RevocationDate.Equal(revokedAt) {
		t.Errorf("RevocationDate = %v, want %v", view.RevocationDate, revokedAt)
	}
}

func TestViewFor_NoMaterial(t *testing.T) {
	var info InfoArchival
	_, ok := info.ViewFor(&x509.Certificate{SerialNumber: big.NewInt(1)}, &x509.Certificate{})
	if ok {
		t.Error("expected no revocation view without embedded CRL/OCSP material")
	}
}
