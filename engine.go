package cts

import (
	"fmt"
	"strings"
	"time"

	"github.com/sigtrust/cts/algoid"
	"github.com/sigtrust/cts/clock"
	"github.com/sigtrust/cts/model"
	"github.com/sigtrust/cts/poe"
	"github.com/sigtrust/cts/policy"
	"github.com/sigtrust/cts/report"
	"github.com/sigtrust/cts/trustservice"
)

// Message tags for each constraint the engine evaluates, per §4.1.
const (
	tagWITSS        = "CTS_WITSS"
	tagDRIE         = "CTS_DRIE"
	tagICNEAIDORSI  = "CTS_ICNEAIDORSI"
	tagIIDORSIBCT   = "CTS_IIDORSIBCT"
	tagDSOPCPOEOC   = "CTS_DSOPCPOEOC"
	tagSCT          = "CTS_SCT"
	tagAlgoReliable = "CTS_AREC"
)

// Run executes one Control-Time Sliding pass over chain, per §4.1's public
// contract. chain must be non-empty; an empty chain is a programming error,
// not a domain failure, and Run panics (callers that recover at a process
// boundary, e.g. cmd/cts, get a message instead of a crash with no context).
func Run(now time.Time, pol policy.Policy, diag model.DiagnosticData, store poe.Store, chain model.Chain) Conclusion {
	if pol == nil || diag == nil || store == nil {
		panic("cts: Run called with a nil collaborator")
	}
	if len(chain) == 0 {
		panic("cts: Run called with an empty chain")
	}

	e := &engineRun{
		now:         now,
		controlTime: now,
		policy:      pol,
		diag:        diag,
		poe:         store,
		signingID:   chain.SigningCertificateID(),
		builder:     report.NewBuilder(),
	}

	indication, sub := e.process(chain.Reversed())

	return Conclusion{
		Indication:    indication,
		SubIndication: sub,
		ControlTime:   e.controlTime,
		Trace:         e.builder.Fragment(),
	}
}

type engineRun struct {
	now         time.Time
	controlTime time.Time
	policy      policy.Policy
	diag        model.DiagnosticData
	poe         poe.Store
	signingID   model.CertificateID
	builder     *report.Builder
}

// earlyReturn is used internally to unwind the per-certificate loop on a
// KO constraint without threading an extra bool/indication pair through
// every step function.
type earlyReturn struct{}

func (e *engineRun) process(orderedFromAnchor model.Chain) (indication Indication, sub SubIndication) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(earlyReturn); ok {
				indication, sub = Indeterminate, NoPOE
				return
			}
			panic(r)
		}
	}()

	for _, cid := range orderedFromAnchor {
		e.processCertificate(cid)
	}

	return Valid, None
}

// processCertificate runs steps 1-8 of §4.1 for a single certificate. It
// panics with earlyReturn to unwind to Run on any KO short-circuit; process
// recovers it.
func (e *engineRun) processCertificate(cid model.CertificateID) {
	cert := e.diag.LookupCertificate(cid)
	e.builder.OpenCertificate(cid)

	// Step 1: trusted short-circuit.
	if cert.Trusted {
		return
	}

	// Step 2: signing-certificate / trust-anchor special case.
	if cid == e.signingID {
		e.evaluateTrustServiceStatus(cert)
	}

	// Step 3: revocation presence.
	h := e.builder.AddConstraint(tagDRIE)
	if cert.Revocation == nil {
		e.builder.SetStatus(h, report.KO)
		panic(earlyReturn{})
	}
	e.builder.SetStatus(h, report.OK)

	rev := cert.Revocation

	// Step 4: revocation in scope.
	h = e.builder.AddConstraint(tagICNEAIDORSI)
	upperBound := cert.NotAfter
	if e.policy.ExpiredCertOnCRLExtensionEnabled() && cert.RevocationInfoArchivalCutOff != nil &&
		cert.RevocationInfoArchivalCutOff.After(upperBound) {
		upperBound = *cert.RevocationInfoArchivalCutOff
	}
	if rev.IssuingTime.Before(cert.NotBefore) || rev.IssuingTime.After(upperBound) {
		e.builder.SetStatus(h, report.KO)
		panic(earlyReturn{})
	}
	e.builder.SetStatus(h, report.OK)

	// Step 5: revocation issued before control-time.
	h = e.builder.AddConstraint(tagIIDORSIBCT)
	e.builder.AddInfo(h, report.InfoControlTime, clock.FormatRFC3339(e.controlTime))
	if !rev.IssuingTime.Before(e.controlTime) {
		e.builder.SetStatus(h, report.KO)
		panic(earlyReturn{})
	}
	e.builder.SetStatus(h, report.OK)

	// Step 6: POE check.
	h = e.builder.AddConstraint(tagDSOPCPOEOC)
	if !e.poe.HasCertificatePOE(cid, e.controlTime) || rev.IssuingTime.After(e.controlTime) {
		e.builder.SetStatus(h, report.KO)
		panic(earlyReturn{})
	}
	e.builder.SetStatus(h, report.OK)

	// Step 7: slide control-time.
	e.slideControlTime(cid, rev)

	// Step 8: algorithm reliability, fixed order.
	e.checkAlgorithmReliability(cid, cert, rev)
}

// evaluateTrustServiceStatus implements step 2 of §4.1.
func (e *engineRun) evaluateTrustServiceStatus(cert model.CertificateView) {
	h := e.builder.AddConstraint(tagWITSS)
	e.builder.AddInfo(h, report.InfoTrustedServiceStatus, cert.TrustServiceStatus)
	e.builder.SetStatus(h, report.OK)

	status := trustservice.Classify(cert.TrustServiceStatus)
	if status.Recognized() {
		return
	}

	if strings.TrimSpace(cert.TrustServiceStatus) == "" {
		// Log a warning; do not alter control-time (§4.1 step 2).
		fmt.Printf("cts: warning: certificate %s has no trust-service status\n", cert.ID)
		return
	}

	e.slideTo(cert.TrustServiceEndDate)
	e.builder.AddInfo(h, report.InfoControlTime, clock.FormatRFC3339(e.controlTime))
}

// slideControlTime implements step 7 of §4.1.
func (e *engineRun) slideControlTime(cid model.CertificateID, rev *model.RevocationView) {
	h := e.builder.AddConstraint(tagSCT)
	e.builder.AddInfo(h, report.InfoControlTime, clock.FormatRFC3339(e.controlTime))
	e.builder.SetStatus(h, report.OK)

	if rev.Revoked {
		e.slideTo(rev.RevocationDate)
		e.builder.AddInfo(h, report.InfoRevocationTime, clock.FormatRFC3339(rev.RevocationDate))
		return
	}

	gap := e.controlTime.Sub(rev.IssuingTime)
	maxFreshness := e.policy.MaxRevocationFreshness()
	if gap > maxFreshness {
		e.builder.AddInfo(h, report.InfoFreshnessGap, gap.String())
		e.builder.AddInfo(h, report.InfoMaxRevocationFresh, maxFreshness.String())
		e.builder.AddInfo(h, report.InfoCertificateID, string(cid))
		e.slideTo(rev.IssuingTime)
		e.builder.AddInfo(h, report.InfoControlTime, clock.FormatRFC3339(e.controlTime))
	}
}

// checkAlgorithmReliability implements step 8 of §4.1: the four checks in
// their fixed order. Each check can only lower control-time, so their
// relative order doesn't affect the final value, only the trace.
func (e *engineRun) checkAlgorithmReliability(cid model.CertificateID, cert model.CertificateView, rev *model.RevocationView) {
	e.checkExpiration(algoid.CanonicalDigest(cert.Algo.DigestAlgorithm), report.InfoCertAlgoExpiration)
	e.checkExpiration(algoid.EncryptionKey(cert.Algo.EncryptionAlgo, cert.Algo.EncryptionKeyBits), report.InfoCertAlgoExpiration)
	e.checkExpiration(algoid.CanonicalDigest(rev.Algo.DigestAlgorithm), report.InfoRevocationAlgoExp)
	e.checkExpiration(algoid.EncryptionKey(rev.Algo.EncryptionAlgo, rev.Algo.EncryptionKeyBits), report.InfoRevocationAlgoExp)
}

func (e *engineRun) checkExpiration(canonicalID string, infoKey report.InfoKey) {
	h := e.builder.AddConstraint(tagAlgoReliable)
	e.builder.SetStatus(h, report.OK)

	expiration, ok := e.policy.AlgorithmExpiration(canonicalID)
	if !ok {
		return
	}
	if e.controlTime.After(expiration) {
		e.slideTo(expiration)
		e.builder.AddInfo(h, infoKey, clock.FormatRFC3339(expiration))
	}
}

// slideTo assigns controlTime only if the candidate is at or before the
// current value, enforcing §3's invariant ("intermediate assignments must
// always decrease or hold equal; the engine must never let control-time
// move forward") regardless of what an individual step computed.
func (e *engineRun) slideTo(candidate time.Time) {
	if candidate.After(e.controlTime) {
		return
	}
	e.controlTime = candidate
}
