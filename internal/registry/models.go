package registry

import (
	"time"

	"github.com/google/uuid"

	"dinehalal/internal/registry/ingest"
)

// DefaultCertType is applied when the registry document does not state a
// certification type for a row.
const DefaultCertType = "Halal Certified"

// Establishment is one certified record from the government registry.
// Records are immutable once parsed and replaced wholesale on re-ingestion.
type Establishment struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	CertType string    `json:"cert_type"`
	RegNum   string    `json:"reg_num"`
	ParsedAt time.Time `json:"parsed_at"`
}

// fromRaw fills in defaults: a fresh identity token, the default
// certification type, and a synthesized registration number when the document
// omitted one. Synthesized numbers are not stable across parses.
func fromRaw(r ingest.RawRecord, parsedAt time.Time) Establishment {
	certType := r.CertType
	if certType == "" {
		certType = DefaultCertType
	}
	regNum := r.RegNum
	if regNum == "" {
		regNum = "synth-" + uuid.NewString()
	}
	return Establishment{
		ID:       uuid.NewString(),
		Name:     r.Name,
		Address:  r.Address,
		CertType: certType,
		RegNum:   regNum,
		ParsedAt: parsedAt,
	}
}
