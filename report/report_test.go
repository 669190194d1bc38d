package report

import (
	"testing"

	"github.com/sigtrust/cts/model"
)

func TestBuilder_OrderAndLastIsKO(t *testing.T) {
	b := NewBuilder()

	b.OpenCertificate("root")
	h := b.AddConstraint("CTS_WITSS")
	b.SetStatus(h, OK)
	b.AddInfo(h, InfoTrustedServiceStatus, "granted")

	b.OpenCertificate("ca")
	h2 := b.AddConstraint("CTS_DRIE")
	b.SetStatus(h2, KO)

	f := b.Fragment()
	if len(f.Containers) != 2 {
		t.Fatalf("expected 2 containers, got %d", len(f.Containers))
	}
	if f.Containers[0].CertificateID != model.CertificateID("root") {
		t.Errorf("container order wrong: %v", f.Containers[0].CertificateID)
	}
	if !f.LastIsKO() {
		t.Error("expected LastIsKO true")
	}
}

func TestBuilder_AddConstraintBeforeOpenPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewBuilder().AddConstraint("CTS_DRIE")
}

func TestFragment_LastIsKO_EmptyFragment(t *testing.T) {
	b := NewBuilder()
	b.OpenCertificate("root")
	if b.Fragment().LastIsKO() {
		t.Error("empty fragment should not be LastIsKO")
	}
}
