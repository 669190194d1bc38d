package loader

import (
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"testing"
	"time"

	"github.com/digitorus/pkcs7"
	"golang.org/x/crypto/ocsp"

	"github.com/sigtrust/cts/internal/testpki"
	"github.com/sigtrust/cts/revocation"
)

func buildSignedData(t *testing.T) (*pkcs7.PKCS7, *x509.Certificate, *x509.Certificate, *x509.Certificate) {
	t.Helper()

	pki := testpki.NewTestPKI(t)
	pki.StartCRLServer()
	t.Cleanup(pki.Close)

	leafKey, leafCert := pki.IssueLeaf("cts-loader-test")
	issuer := pki.IntermediateCerts[len(pki.IntermediateCerts)-1]
	issuerKey := pki.IntermediateKeys[len(pki.IntermediateKeys)-1]
	root := pki.RootCert

	now := time.Now()
	ocspResp, err := ocsp.CreateResponse(issuer, issuer, ocsp.Response{
		Status:       ocsp.Good,
		SerialNumber: leafCert.SerialNumber,
		ThisUpdate:   now.Add(-time.Hour),
		NextUpdate:   now.Add(24 * time.Hour),
	}, issuerKey)
	if err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}

	var revInfo revocation.InfoArchival
	if err := revInfo.AddOCSP(ocspResp); err != nil {
		t.Fatal(err)
	}

	content := []byte("cts loader test content")
	sd, err := pkcs7.NewSignedData(content)
	if err != nil {
		t.Fatalf("NewSignedData: %v", err)
	}

	config := pkcs7.SignerInfoConfig{
		ExtraSignedAttributes: []pkcs7.Attribute{
			{Type: revocationInfoArchivalOID, Value: revInfo},
		},
	}
	if err := sd.AddSignerChain(leafCert, leafKey, []*x509.Certificate{issuer, root}, config); err != nil {
		t.Fatalf("AddSignerChain: %v", err)
	}
	sd.Detach()

	der, err := sd.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	p7, err := pkcs7.Parse(der)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p7.Content = content

	return p7, leafCert, issuer, root
}

func TestFromPKCS7_BuildsChainAndRevocation(t *testing.T) {
	p7, leafCert, _, root := buildSignedData(t)
	anchors := NewTrustAnchors(root)

	result, err := FromPKCS7(p7, anchors)
	if err != nil {
		t.Fatalf("FromPKCS7: %v", err)
	}

	if len(result.Chain) != 3 {
		t.Fatalf("chain length = %d, want 3 (leaf, intermediate, root)", len(result.Chain))
	}
	if result.Chain.SigningCertificateID() != certID(leafCert) {
		t.Errorf("signing cert = %s, want %s", result.Chain.SigningCertificateID(), certID(leafCert))
	}

	leafView := result.Diag.LookupCertificate(certID(leafCert))
	if leafView.Revocation == nil {
		t.Fatal("expected a revocation view for the leaf certificate")
	}
	if leafView.Revocation.Revoked {
		t.Error("expected Revoked = false for a Good OCSP status")
	}

	rootView := result.Diag.LookupCertificate(certID(root))
	if !rootView.Trusted {
		t.Error("expected the root certificate to be marked Trusted via TrustAnchors")
	}
}

func TestFromPKCS7_NoSigners(t *testing.T) {
	_, err := FromPKCS7(&pkcs7.PKCS7{}, nil)
	if err == nil {
		t.Fatal("expected an error for signed data with no signers")
	}
}

func TestFromBytes_NoSignature(t *testing.T) {
	_, err := FromBytes([]byte("not a pdf"), nil)
	if err == nil {
		t.Fatal("expected an error for a document with no PDF signature")
	}
}

func TestExpiredCertOnCRLCutOff_DecodesExtension(t *testing.T) {
	want := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	extValue, err := asn1.MarshalWithParams(want, "generalized")
	if err != nil {
		t.Fatalf("MarshalWithParams: %v", err)
	}

	key := testpki.GenerateKey(t, testpki.ECDSA_P256)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "expired-cert-on-crl-test-ca"},
		NotBefore:    want.Add(-365 * 24 * time.Hour),
		NotAfter:     want.Add(365 * 24 * time.Hour),
		IsCA:         true,
		ExtraExtensions: []pkix.Extension{
			{Id: expiredCertOnCRLOID, Value: extValue},
		},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, key.Public(), key)
	if err != nil {
		t.Fatalf("CreateCertificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}

	got := expiredCertOnCRLCutOff(cert)
	if got == nil {
		t.Fatal("expected a non-nil cutoff")
	}
	if !got.Equal(want) {
		t.Errorf("cutoff = %v, want %v", got, want)
	}
}

func TestExpiredCertOnCRLCutOff_NilWithoutExtension(t *testing.T) {
	key := testpki.GenerateKey(t, testpki.ECDSA_P256)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "no-extension-test-ca"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IsCA:         true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, key.Public(), key)
	if err != nil {
		t.Fatalf("CreateCertificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}

	if got := expiredCertOnCRLCutOff(cert); got != nil {
		t.Errorf("cutoff = %v, want nil", got)
	}
	if got := expiredCertOnCRLCutOff(nil); got != nil {
		t.Errorf("cutoff for nil issuer = %v, want nil", got)
	}
}
