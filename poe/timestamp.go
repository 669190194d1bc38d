package poe

import (
	"bytes"
	"fmt"
	"time"

	"github.com/digitorus/timestamp"

	"github.com/sigtrust/cts/model"
)

// TimestampStore is a POE store grounded on RFC 3161 timestamp tokens,
// exactly the token verify/verify.go parses out of a PDF's unauthenticated
// attributes and checks against the signed content's hash (lines ~148-181
// of that file). Here the parsed token's GenTime becomes the instant at
// which POE for a certificate is established, once the token's hashed
// message is confirmed to cover that certificate's signing material.
type TimestampStore struct {
	tokens []timestampToken
}

type timestampToken struct {
	id  model.CertificateID
	gen time.Time
}

// NewTimestampStore creates an empty store; use AddToken to register
// verified timestamp tokens before a CTS run.
func NewTimestampStore() *TimestampStore {
	return &TimestampStore{}
}

// AddToken parses a DER-encoded RFC 3161 timestamp token, verifies that its
// hashed message matches the supplied content using the token's own
// HashAlgorithm (the same comparison verify/signature.go performs against
// the PKCS#7 EncryptedDigest), and — if it matches — registers the token's
// Time as proof of existence for id.
func (s *TimestampStore) AddToken(id model.CertificateID, der []byte, content []byte) error {
	ts, err := timestamp.Parse(der)
	if err != nil {
		return fmt.Errorf("poe: failed to parse timestamp token: %w", err)
	}

	h := ts.HashAlgorithm.New()
	h.Write(content)
	if !bytes.Equal(h.Sum(nil), ts.HashedMessage) {
		return fmt.Errorf("poe: timestamp token hash does not match content for %s", id)
	}

	s.tokens = append(s.tokens, timestampToken{id: id, gen: ts.Time})
	return nil
}

// HasCertificatePOE implements Store.
func (s *TimestampStore) HasCertificatePOE(id model.CertificateID, at time.Time) bool {
	for _, t := range s.tokens {
		if t.id == id && !t.gen.After(at) {
			return true
		}
	}
	return false
}
