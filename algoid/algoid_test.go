package algoid

import "testing"

func TestCanonicalDigest(t *testing.T) {
	tests := map[string]string{
		"2.16.840.1.101.3.4.2.1": "sha256",
		"SHA-256":                "sha256",
		"sha-1":                  "sha1",
		"1.3.14.3.2.26":          "sha1",
		"1.2.3.4.5.unknown":      "1.2.3.4.5.unknown",
	}
	for raw, want := range tests {
		if got := CanonicalDigest(raw); got != want {
			t.Errorf("CanonicalDigest(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestEncryptionKey(t *testing.T) {
	if got := EncryptionKey("1.2.840.113549.1.1.1", 2048); got != "rsa-2048" {
		t.Errorf("got %q", got)
	}
	if got := EncryptionKey("1.2.840.10045.2.1", 0); got != "ecdsa" {
		t.Errorf("got %q", got)
	}
}
