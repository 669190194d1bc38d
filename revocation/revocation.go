// Package revocation holds the revocation evidence embedded or referenced for
// a certificate — CRL entries, OCSP responses, other ASN.1-encoded status
// objects — and turns it into the model.RevocationView the engine consumes.
//
// InfoArchival's shape and Add* methods are carried over unchanged from the
// teacher's revocation package: a pkcs7 RevocationInfoArchival container
// (RFC unspecified, common convention followed by signers embedding
// long-term validation material inline). ViewFor replaces the teacher's
// IsRevoked stub, which only ever consulted CRLs and always returned false
// otherwise; it now parses OCSP responses too (golang.org/x/crypto/ocsp,
// the same library verify/signature.go used for live OCSP checks) and
// reports revocation time and signing algorithm, not just a bare bool.
package revocation

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"

	"golang.org/x/crypto/ocsp"

	"github.com/sigtrust/cts/model"
)

// InfoArchival is the pkcs7 container holding the revocation information for
// one embedded certificate.
type InfoArchival struct {
	CRL   CRL   `asn1:"tag:0,optional,explicit"`
	OCSP  OCSP  `asn1:"tag:1,optional,explicit"`
	Other Other `asn1:"tag:2,optional,explicit"`
}

// AddCRL embeds the raw bytes of a downloaded CRL.
func (r *InfoArchival) AddCRL(b []byte) error {
	r.CRL = append(r.CRL, asn1.RawValue{FullBytes: b})
	return nil
}

// AddOCSP embeds the raw bytes of an OCSP response.
func (r *InfoArchival) AddOCSP(b []byte) error {
	r.OCSP = append(r.OCSP, asn1.RawValue{FullBytes: b})
	return nil
}

// CRL contains the raw bytes of one or more pkix.CertificateList, parsable
// with x509.ParseRevocationList.
type CRL []asn1.RawValue

// OCSP contains the raw bytes of one or more OCSP responses, parsable with
// ocsp.ParseResponse.
type OCSP []asn1.RawValue

// Other is the catch-all ASN.1 OtherRevInfo arm.
type Other struct {
	Type  asn1.ObjectIdentifier
	Value []byte
}

// ViewFor resolves the revocation status of cert, issued by issuer, from
// whatever CRL and OCSP material is embedded. OCSP responses are consulted
// first (they carry a tighter issuing-time bound); CRLs are checked only if
// no OCSP response covers the certificate. The second return value is false
// when neither source says anything about cert, which the loader surfaces
// as "no revocation known" (model.CertificateView.Revocation == nil).
func (r *InfoArchival) ViewFor(cert, issuer *x509.Certificate) (*model.RevocationView, bool) {
	for _, raw := range r.OCSP {
		resp, err := ocsp.ParseResponseForCert(raw.FullBytes, cert, issuer)
		if err != nil {
			continue
		}
		view := &model.RevocationView{
			IssuingTime: resp.ThisUpdate,
			Algo:        algoFromX509(resp.SignatureAlgorithm, issuer),
		}
		if resp.Status == ocsp.Revoked {
			view.Revoked = true
			view.RevocationDate = resp.RevokedAt
		}
		return view, true
	}

	for _, raw := range r.CRL {
		crl, err := x509.ParseRevocationList(raw.FullBytes)
		if err != nil {
			continue
		}
		if issuer != nil && string(crl.RawIssuer) != string(issuer.RawSubject) {
			continue
		}
		view := &model.RevocationView{
			IssuingTime: crl.ThisUpdate,
			Algo:        algoFromX509(crl.SignatureAlgorithm, issuer),
		}
		for _, rc := range crl.RevokedCertificateEntries {
			if rc.SerialNumber.Cmp(cert.SerialNumber) == 0 {
				view.Revoked = true
				view.RevocationDate = rc.RevocationTime
				break
			}
		}
		return view, true
	}

	return nil, false
}

// AlgoFromCertificate derives model.AlgoUsage for cert's own signature,
// given the certificate that issued it (for the signing key's bit length).
// A nil issuer is valid for a self-signed certificate, though EncryptionKeyBits
// will then come from cert's own key rather than the signer's.
func AlgoFromCertificate(cert, issuer *x509.Certificate) model.AlgoUsage {
	if issuer == nil {
		issuer = cert
	}
	return algoFromX509(cert.SignatureAlgorithm, issuer)
}

// algoFromX509 canonicalizes a parsed x509 signature algorithm plus the
// certificate that signed it into model.AlgoUsage, the shape algoid
// consumes. Unrecognized algorithms yield empty digest and encryption names; CanonicalDigest
// and CanonicalEncryption later fold whatever passes through here.
func algoFromX509(sa x509.SignatureAlgorithm, signer *x509.Certificate) model.AlgoUsage {
	digest, encryption := splitSignatureAlgorithm(sa)
	return model.AlgoUsage{
		DigestAlgorithm:   digest,
		EncryptionAlgo:    encryption,
		EncryptionKeyBits: keyBits(signer),
	}
}

func splitSignatureAlgorithm(sa x509.SignatureAlgorithm) (digest, encryption string) {
	switch sa {
	case x509.MD5WithRSA:
		return "md5", "rsa"
	case x509.SHA1WithRSA:
		return "sha1", "rsa"
	case x509.SHA256WithRSA, x509.SHA256WithRSAPSS:
		return "sha256", "rsa"
	case x509.SHA384WithRSA, x509.SHA384WithRSAPSS:
		return "sha384", "rsa"
	case x509.SHA512WithRSA, x509.SHA512WithRSAPSS:
		return "sha512", "rsa"
	case x509.DSAWithSHA1:
		return "sha1", "dsa"
	case x509.DSAWithSHA256:
		return "sha256", "dsa"
	case x509.ECDSAWithSHA1:
		return "sha1", "ecdsa"
	case x509.ECDSAWithSHA256:
		return "sha256", "ecdsa"
	case x509.ECDSAWithSHA384:
		return "sha384", "ecdsa"
	case x509.ECDSAWithSHA512:
		return "sha512", "ecdsa"
	case x509.PureEd25519:
		return "", "ed25519"
	default:
		return "", ""
	}
}

func keyBits(cert *x509.Certificate) int {
	if cert == nil {
		return 0
	}
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return pub.N.BitLen()
	case *ecdsa.PublicKey:
		return pub.Curve.Params().BitSize
	default:
		return 0
	}
}
