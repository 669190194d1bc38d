// Package loader builds the model.Chain, model.DiagnosticData and POE
// evidence the engine needs directly from a signed PDF, the way a real CTS
// deployment would plug in a document verifier as its diagnostic-data
// source instead of hand-building fixtures.
//
// Grounded on verify/verify.go's Reader function: locating the AcroForm
// signature dictionary, parsing the embedded PKCS#7 SignedData with
// github.com/digitorus/pkcs7, appending the ByteRange-selected content
// before any signature check, extracting the RFC 3161 timestamp token from
// the signer's unauthenticated attributes, and unmarshalling the
// revocationInfoArchival signed attribute (OID 1.2.840.113583.1.1.8) into
// revocation.InfoArchival. Where the teacher's Reader also verifies the
// signature and records per-signer pass/fail, this package stops at
// building the views CTS needs: signature cryptographic verification is a
// sibling constraint CTS composes with (non-goal, see SPEC_FULL.md).
//
// FromBytes wraps an in-memory document in a filebuffer.Buffer, the same
// in-memory file type the teacher's sign package uses as its OutputBuffer,
// so callers with a document already in memory don't need a temp file.
package loader

import (
	"bytes"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"io"
	"time"

	"github.com/digitorus/pdf"
	"github.com/digitorus/pkcs7"
	"github.com/mattetti/filebuffer"

	"github.com/sigtrust/cts/model"
	"github.com/sigtrust/cts/poe"
	"github.com/sigtrust/cts/revocation"
)

// revocationInfoArchivalOID is the signed attribute OID PDF signers use to
// embed CRL/OCSP evidence for long-term validation, unchanged from
// verify/verify.go.
var revocationInfoArchivalOID = asn1.ObjectIdentifier{1, 2, 840, 113583, 1, 1, 8}

// timeStampTokenOID is RFC 3161's id-aa-timeStampToken, the unauthenticated
// attribute carrying an embedded timestamp.
var timeStampTokenOID = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 14}

// expiredCertOnCRLOID is id-ce-expiredCertsOnCRL, a CA certificate
// extension carrying the earliest instant from which that CA's CRLs widen
// to include entries for already-expired certificates.
var expiredCertOnCRLOID = asn1.ObjectIdentifier{2, 5, 29, 60}

// TrustAnchors marks certificates whose trust is established out-of-band
// (e.g. a configured root store), by raw subject name. A loader never
// infers trust from chain shape alone; callers decide what's trusted.
type TrustAnchors map[string]bool

// NewTrustAnchors builds a TrustAnchors set from a list of certificates.
func NewTrustAnchors(certs ...*x509.Certificate) TrustAnchors {
	t := make(TrustAnchors, len(certs))
	for _, c := range certs {
		t[anchorKey(c)] = true
	}
	return t
}

func anchorKey(c *x509.Certificate) string {
	return string(c.RawSubject)
}

// Result bundles the three collaborators a CTS run needs, built from one
// signed document.
type Result struct {
	Chain model.Chain
	Diag  model.DiagnosticData
	POE   poe.Store
}

// FromPDF locates the first PDF signature (Filter Adobe.PPKLite) in file and
// builds a Result from its embedded PKCS#7 SignedData. An error is returned
// if the document carries no recognizable signature.
func FromPDF(file io.ReaderAt, size int64, anchors TrustAnchors) (*Result, error) {
	rdr, err := pdf.NewReader(file, size)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to open PDF: %w", err)
	}

	if rdr.Trailer().Key("Root").Key("AcroForm").Key("SigFlags").IsNull() {
		return nil, fmt.Errorf("loader: document has no digital signature")
	}

	for _, x := range rdr.Xref() {
		v := rdr.Resolve(x.Ptr(), x.Ptr())
		if v.Key("Filter").Name() != "Adobe.PPKLite" {
			continue
		}

		p7, err := pkcs7.Parse([]byte(v.Key("Contents").RawString()))
		if err != nil {
			continue
		}

		for i := 0; i < v.Key("ByteRange").Len(); i++ {
			i++
			content, err := io.ReadAll(io.NewSectionReader(file,
				v.Key("ByteRange").Index(i-1).Int64(),
				v.Key("ByteRange").Index(i).Int64()))
			if err != nil {
				return nil, fmt.Errorf("loader: failed to read ByteRange: %w", err)
			}
			p7.Content = append(p7.Content, content...)
		}

		return FromPKCS7(p7, anchors)
	}

	return nil, fmt.Errorf("loader: no Adobe.PPKLite signature found")
}

// FromBytes builds a Result from an in-memory signed PDF, for callers that
// already hold the document (an upload handler, a message payload) and
// would rather not write it to disk first. Wraps data in a
// filebuffer.Buffer, the same in-memory io.ReaderAt the teacher's sign
// package uses as its OutputBuffer, and delegates to FromPDF.
func FromBytes(data []byte, anchors TrustAnchors) (*Result, error) {
	buf := filebuffer.New(data)
	return FromPDF(buf, int64(len(data)), anchors)
}

// FromPKCS7 builds a Result directly from an already-parsed PKCS#7
// SignedData, for callers that extracted the signature bytes some other
// way (a non-PDF container, a previously cached parse).
func FromPKCS7(p7 *pkcs7.PKCS7, anchors TrustAnchors) (*Result, error) {
	if len(p7.Signers) == 0 {
		return nil, fmt.Errorf("loader: signed data has no signers")
	}
	signer := p7.Signers[0]

	chain, certByID, err := buildChain(p7.Certificates, signer.IssuerAndSerialNumber.IssuerName.FullBytes, anchors)
	if err != nil {
		return nil, err
	}

	var revInfo revocation.InfoArchival
	_ = p7.UnmarshalSignedAttribute(revocationInfoArchivalOID, &revInfo)

	diag := make(model.Static, len(chain))
	for i, id := range chain {
		cert := certByID[id]
		view := model.CertificateView{
			ID:        id,
			Trusted:   anchors[anchorKey(cert)],
			NotBefore: cert.NotBefore,
			NotAfter:  cert.NotAfter,
			Algo:      revocation.AlgoFromCertificate(cert, issuerOf(chain, certByID, i)),
		}

		if rev, ok := revInfo.ViewFor(cert, issuerOf(chain, certByID, i)); ok {
			view.Revocation = rev
		}

		view.RevocationInfoArchivalCutOff = expiredCertOnCRLCutOff(issuerOf(chain, certByID, i))

		diag[id] = view
	}

	store := poe.NewTimestampStore()
	for _, attr := range signer.UnauthenticatedAttributes {
		if !attr.Type.Equal(timeStampTokenOID) {
			continue
		}
		if err := store.AddToken(chain.SigningCertificateID(), attr.Value.Bytes, signer.EncryptedDigest); err != nil {
			return nil, fmt.Errorf("loader: %w", err)
		}
		break
	}

	return &Result{Chain: chain, Diag: diag, POE: store}, nil
}

// buildChain orders certs signing-certificate-first by walking issuer
// links (Subject -> Issuer) starting from the signer's issuer name, mirroring
// verify/verify.go's cert-pool-plus-IssuerAndSerialNumber matching but
// producing an ordered chain instead of an unordered pool.
func buildChain(certs []*x509.Certificate, signerIssuer []byte, anchors TrustAnchors) (model.Chain, map[model.CertificateID]*x509.Certificate, error) {
	byID := make(map[model.CertificateID]*x509.Certificate, len(certs))
	bySubject := make(map[string]*x509.Certificate, len(certs))
	for _, c := range certs {
		byID[certID(c)] = c
		bySubject[string(c.RawSubject)] = c
	}

	var signerCert *x509.Certificate
	for _, c := range certs {
		if bytes.Equal(c.RawIssuer, signerIssuer) {
			signerCert = c
			break
		}
	}
	if signerCert == nil {
		return nil, nil, fmt.Errorf("loader: could not locate the signing certificate among embedded certificates")
	}

	var chain model.Chain
	cur := signerCert
	seen := make(map[string]bool)
	for {
		id := certID(cur)
		chain = append(chain, id)
		seen[string(cur.RawSubject)] = true

		if anchors[anchorKey(cur)] || bytes.Equal(cur.RawIssuer, cur.RawSubject) {
			break
		}
		next, ok := bySubject[string(cur.RawIssuer)]
		if !ok || seen[string(next.RawSubject)] {
			break
		}
		cur = next
	}

	return chain, byID, nil
}

// expiredCertOnCRLCutOff decodes issuer's id-ce-expiredCertsOnCRL extension
// (OID 2.5.29.60), if present, into the GeneralizedTime it carries. A nil
// issuer or a missing/undecodable extension both yield nil: "no widening
// known" is the safe default engine.go falls back to.
func expiredCertOnCRLCutOff(issuer *x509.Certificate) *time.Time {
	if issuer == nil {
		return nil
	}
	for _, ext := range issuer.Extensions {
		if !ext.Id.Equal(expiredCertOnCRLOID) {
			continue
		}
		var cutoff time.Time
		if _, err := asn1.Unmarshal(ext.Value, &cutoff); err != nil {
			return nil
		}
		return &cutoff
	}
	return nil
}

// issuerOf returns the certificate that issued chain[i]. For the last
// element of the chain it returns that certificate itself (a self-signed
// root is its own issuer).
func issuerOf(chain model.Chain, byID map[model.CertificateID]*x509.Certificate, i int) *x509.Certificate {
	if i+1 >= len(chain) {
		return byID[chain[i]]
	}
	return byID[chain[i+1]]
}

// certID derives a stable CertificateID from a certificate's serial number,
// the same key verify/verify.go uses to correlate embedded OCSP responses
// with the certificate they cover (fmt.Sprintf("%x", cert.SerialNumber)).
func certID(c *x509.Certificate) model.CertificateID {
	return model.CertificateID(fmt.Sprintf("%x", c.SerialNumber))
}
