package policy

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	content := `
max_revocation_freshness = "24h"
expired_cert_on_crl_widening = true

[algorithm_expiration]
sha1 = "2017-01-01T00:00:00Z"
"rsa-1024" = "2014-01-01T00:00:00Z"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if p.MaxRevocationFreshness() != 24*time.Hour {
		t.Errorf("MaxRevocationFreshness = %v, want 24h", p.MaxRevocationFreshness())
	}
	if !p.ExpiredCertOnCRLExtensionEnabled() {
		t.Error("ExpiredCertOnCRLExtensionEnabled = false, want true")
	}

	exp, ok := p.AlgorithmExpiration("sha1")
	if !ok || !exp.Equal(time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("AlgorithmExpiration(sha1) = %v, %v", exp, ok)
	}

	if _, ok := p.AlgorithmExpiration("sha512"); ok {
		t.Error("AlgorithmExpiration(sha512) should be unknown")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/policy.toml"); err == nil {
		t.Error("expected an error for a missing policy file")
	}
}

func TestNew(t *testing.T) {
	p := New(12*time.Hour, map[string]time.Time{
		"sha256": time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}, false)

	if p.MaxRevocationFreshness() != 12*time.Hour {
		t.Errorf("got %v", p.MaxRevocationFreshness())
	}
	if p.ExpiredCertOnCRLExtensionEnabled() {
		t.Error("expected disabled by default")
	}
	if _, ok := p.AlgorithmExpiration("sha256"); !ok {
		t.Error("expected sha256 expiration to be present")
	}
}
