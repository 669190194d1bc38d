// Package algoid canonicalizes algorithm identifiers (OIDs, short names, or
// whatever spelling diagnostic data happens to carry) to the form a
// validation policy's expiration table is keyed by, and exposes the two
// lookup shapes §4.5 of the specification requires: by digest algorithm
// alone, and by encryption-algorithm+key-length.
//
// Grounded on verify/verify.go's inline OID handling for signer algorithms
// and golang.org/x/crypto/ocsp's OID-to-hash mapping idiom; x/text/cases
// folds case before table lookup, the same normalization step a policy
// author's freeform TOML spelling needs.
package algoid

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// known short-name aliases for digest algorithm OIDs commonly seen in
// certificate and revocation signature algorithm fields. Canonical form is
// the lowercase short name; unrecognized OIDs pass through unchanged after
// case-folding, so an unknown algorithm still canonicalizes deterministically
// even though it will never match a policy entry.
var digestAliases = map[string]string{
	"1.2.840.113549.2.5":    "md5",
	"1.3.14.3.2.26":         "sha1",
	"2.16.840.1.101.3.4.2.1": "sha256",
	"2.16.840.1.101.3.4.2.2": "sha384",
	"2.16.840.1.101.3.4.2.3": "sha512",
	"2.16.840.1.101.3.4.2.4": "sha224",
	"sha-1":                 "sha1",
	"sha-256":               "sha256",
	"sha-384":               "sha384",
	"sha-512":               "sha512",
}

var encryptionAliases = map[string]string{
	"1.2.840.113549.1.1.1": "rsa",
	"1.2.840.10045.2.1":    "ecdsa",
	"1.2.840.10040.4.1":    "dsa",
	"1.3.101.112":          "ed25519",
	"rsaencryption":        "rsa",
	"id-ecpublickey":       "ecdsa",
}

// CanonicalDigest normalizes a digest algorithm identifier to its canonical
// short name. Step 8 of the engine looks this up directly in the policy.
func CanonicalDigest(raw string) string {
	return canonicalize(raw, digestAliases)
}

// CanonicalEncryption normalizes an encryption (signature public-key)
// algorithm identifier to its canonical short name.
func CanonicalEncryption(raw string) string {
	return canonicalize(raw, encryptionAliases)
}

// EncryptionKey builds the second lookup shape §4.5 describes: the
// encryption algorithm concatenated with the key length, e.g. "rsa-2048".
// A zero or negative key length omits the suffix, since some revocation
// metadata never reports a key size.
func EncryptionKey(rawAlgo string, keyBits int) string {
	algo := CanonicalEncryption(rawAlgo)
	if keyBits <= 0 {
		return algo
	}
	return fmt.Sprintf("%s-%d", algo, keyBits)
}

func canonicalize(raw string, aliases map[string]string) string {
	trimmed := strings.TrimSpace(raw)
	folded := fold.String(trimmed)
	if canon, ok := aliases[folded]; ok {
		return canon
	}
	// OIDs are compared as written (folding is a no-op on digits and dots);
	// short names are matched case-insensitively.
	if canon, ok := aliases[trimmed]; ok {
		return canon
	}
	return folded
}
