// Package trustservice classifies an opaque trust-service status URI into
// one of the four abstract classes the ETSI trusted-list ecosystem defines,
// per §4.4 of the specification. Trusted-list ingestion itself is out of
// scope (§1); this package only knows the closed set of status URIs.
package trustservice

import "strings"

// Status is the abstract classification of a trust service's operational
// state.
type Status int

const (
	// Other covers any status URI outside the closed set below, including
	// the empty string.
	Other Status = iota
	UnderSupervision
	SupervisionInCessation
	Accredited
)

func (s Status) String() string {
	switch s {
	case UnderSupervision:
		return "UnderSupervision"
	case SupervisionInCessation:
		return "SupervisionInCessation"
	case Accredited:
		return "Accredited"
	default:
		return "Other"
	}
}

// Recognized reports whether the status falls into one of the three named
// classes the engine treats specially (step 2 of §4.1). Other/Unknown is
// not "recognized" even though it is a valid Status value.
func (s Status) Recognized() bool {
	return s == UnderSupervision || s == SupervisionInCessation || s == Accredited
}

// One historical (eSigDir-1999-93-EC namespace) URI and one current-namespace
// URI per bucket, for each of UnderSupervision, SupervisionInCessation and
// Accredited: six URIs in all.
var known = map[string]Status{
	// UnderSupervision
	"http://uri.etsi.org/TrstSvc/eSigDir-1999-93-EC-TrustedList/Svcstatus/undersupervision": UnderSupervision,
	"http://uri.etsi.org/TrstSvc/TrustedList/Svcstatus/granted":                             UnderSupervision,

	// Accredited
	"http://uri.etsi.org/TrstSvc/eSigDir-1999-93-EC-TrustedList/Svcstatus/accredited": Accredited,
	"http://uri.etsi.org/TrstSvc/TrustedList/Svcstatus/accredited":                   Accredited,

	// SupervisionInCessation
	"http://uri.etsi.org/TrstSvc/eSigDir-1999-93-EC-TrustedList/Svcstatus/supervisionincessation": SupervisionInCessation,
	"http://uri.etsi.org/TrstSvc/TrustedList/Svcstatus/withdrawn":                                 SupervisionInCessation,
}

// Classify maps a status URI to its abstract class. An empty or unrecognized
// URI yields Other; callers distinguish "empty/unknown" from "other known
// but non-conforming" the way §4.1 step 2 requires by checking the raw
// string themselves before calling Classify, since Classify alone cannot
// tell those two Other cases apart by design (it never fails).
func Classify(statusURI string) Status {
	trimmed := strings.TrimSpace(statusURI)
	if status, ok := known[trimmed]; ok {
		return status
	}
	return Other
}
