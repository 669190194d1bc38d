// Package report implements the append-only constraint tree the control-time
// sliding engine records its trace into (§4.2 of the specification),
// decoupled from any serialization format.
//
// Grounded on the teacher's verify.Response/verify.Signer/verify.Certificate
// result-tree shape (verify/verify.go): one root, one container per
// certificate, an ordered list of findings per container. The teacher builds
// that tree by direct struct-literal mutation; this package generalizes it
// into a dedicated append-only builder because the spec's trace order is
// itself an observable, tested property (§8), not just incidental
// structure.
package report

import "github.com/sigtrust/cts/model"

// Status is the outcome of a single constraint evaluation.
type Status int

const (
	OK Status = iota
	KO
)

func (s Status) String() string {
	if s == KO {
		return "KO"
	}
	return "OK"
}

// InfoKey identifies a typed attribute attached to a Constraint, per §3's
// "zero or more typed info attributes" requirement.
type InfoKey string

const (
	InfoControlTime           InfoKey = "control-time"
	InfoRevocationIssuingTime InfoKey = "revocation-issuing-time"
	InfoRevocationTime        InfoKey = "revocation-time"
	InfoCertAlgoExpiration    InfoKey = "certificate-algorithm-expiration-date"
	InfoRevocationAlgoExp     InfoKey = "revocation-algorithm-expiration-date"
	InfoTrustedServiceStatus  InfoKey = "trusted-service-status"
	InfoCertificateID         InfoKey = "certificate-id"
	InfoMaxRevocationFresh    InfoKey = "max-revocation-freshness"
	InfoFreshnessGap          InfoKey = "freshness-gap"
)

// Info is one typed attribute on a Constraint. Value is stored as a string
// so the tree stays serialization-format-agnostic; callers format times and
// durations before attaching them.
type Info struct {
	Key   InfoKey
	Value string
}

// Constraint is one evaluated check, identified by its stable message tag
// (e.g. "CTS_DRIE").
type Constraint struct {
	MessageTag string
	Status     Status
	Info       []Info
}

// CertificateContainer groups the constraints evaluated for one certificate,
// in evaluation order.
type CertificateContainer struct {
	CertificateID model.CertificateID
	Constraints   []Constraint
}

// Fragment is the root of the report tree: "control-time-sliding-data"
// containing ordered certificate containers.
type Fragment struct {
	Containers []*CertificateContainer
}

// Builder appends constraints to a Fragment. It is not safe for concurrent
// use; one Builder belongs to exactly one CTS run, per §5.
type Builder struct {
	fragment *Fragment
	current  *CertificateContainer
}

// NewBuilder creates an empty report, ready for OpenCertificate.
func NewBuilder() *Builder {
	return &Builder{fragment: &Fragment{}}
}

// Fragment returns the tree built so far. The returned value must be
// treated as read-only; the Builder retains ownership of its backing slices
// until the run completes (§3: "the conclusion owns its trace").
func (b *Builder) Fragment() *Fragment {
	return b.fragment
}

// OpenCertificate starts a new certificate container and makes it the target
// of subsequent AddConstraint calls. Containers are appended in the order
// certificates are iterated (trust-anchor first, per §4.1).
func (b *Builder) OpenCertificate(id model.CertificateID) {
	b.current = &CertificateContainer{CertificateID: id}
	b.fragment.Containers = append(b.fragment.Containers, b.current)
}

// Handle references a single constraint for later SetStatus/AddInfo calls.
type Handle struct {
	container *CertificateContainer
	index     int
}

// AddConstraint appends a new constraint node to the currently open
// certificate container and returns a handle to it. OpenCertificate must
// have been called first.
func (b *Builder) AddConstraint(messageTag string) Handle {
	if b.current == nil {
		panic("report: AddConstraint called before OpenCertificate")
	}
	b.current.Constraints = append(b.current.Constraints, Constraint{MessageTag: messageTag})
	return Handle{container: b.current, index: len(b.current.Constraints) - 1}
}

// SetStatus records the outcome of the constraint referenced by h.
func (b *Builder) SetStatus(h Handle, status Status) {
	h.container.Constraints[h.index].Status = status
}

// AddInfo attaches a typed attribute to the constraint referenced by h.
func (b *Builder) AddInfo(h Handle, key InfoKey, value string) {
	c := &h.container.Constraints[h.index]
	c.Info = append(c.Info, Info{Key: key, Value: value})
}

// LastIsKO reports whether the very last constraint appended anywhere in the
// fragment is KO — the property §7 and §8 require of every Indeterminate
// return ("a returned Indeterminate/NoPOE must have its last recorded
// constraint in KO status").
func (f *Fragment) LastIsKO() bool {
	for i := len(f.Containers) - 1; i >= 0; i-- {
		c := f.Containers[i]
		if len(c.Constraints) == 0 {
			continue
		}
		return c.Constraints[len(c.Constraints)-1].Status == KO
	}
	return false
}
