// Package reportjson serializes a report.Fragment to JSON. The core report
// package intentionally knows nothing about any serialization format (see
// the report entry in SPEC_FULL.md's expanded component spec); this
// package is the thin presentation layer, mirroring how the teacher's common
// struct tags feed cli's encoding/json output in cli/verify.go.
package reportjson

import (
	"encoding/json"

	"github.com/sigtrust/cts/report"
)

type infoDoc struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type constraintDoc struct {
	MessageTag string    `json:"message_tag"`
	Status     string    `json:"status"`
	Info       []infoDoc `json:"info,omitempty"`
}

type containerDoc struct {
	CertificateID string          `json:"certificate_id"`
	Constraints   []constraintDoc `json:"constraints"`
}

type fragmentDoc struct {
	Containers []containerDoc `json:"control-time-sliding-data"`
}

// Marshal renders a report.Fragment as indented JSON.
func Marshal(f *report.Fragment) ([]byte, error) {
	doc := fragmentDoc{Containers: make([]containerDoc, 0, len(f.Containers))}
	for _, c := range f.Containers {
		cd := containerDoc{
			CertificateID: string(c.CertificateID),
			Constraints:   make([]constraintDoc, 0, len(c.Constraints)),
		}
		for _, con := range c.Constraints {
			infos := make([]infoDoc, 0, len(con.Info))
			for _, i := range con.Info {
				infos = append(infos, infoDoc{Key: string(i.Key), Value: i.Value})
			}
			cd.Constraints = append(cd.Constraints, constraintDoc{
				MessageTag: con.MessageTag,
				Status:     con.Status.String(),
				Info:       infos,
			})
		}
		doc.Containers = append(doc.Containers, cd)
	}
	return json.MarshalIndent(doc, "", "  ")
}
