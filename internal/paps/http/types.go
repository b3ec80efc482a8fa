package http

import (
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps/domain"
)

type completeReq struct {
	EvidenceLinks []string `json:"evidenceLinks"`
	// EvidenceText is the raw textarea form: links separated by
	// newlines, commas, or spaces. Used when EvidenceLinks is empty.
	EvidenceText string `json:"evidenceText"`
}

type statusResp struct {
	Resolve     string   `json:"resolve"`
	Load        string   `json:"load"`
	Error       string   `json:"error,omitempty"`
	Scope       string   `json:"scope"`
	Owners      []string `json:"owners"`
	SharedOwner string   `json:"sharedOwner"`
}

func toStatusResp(s paps.Status) statusResp {
	return statusResp{
		Resolve:     s.Resolve.String(),
		Load:        s.Load.String(),
		Error:       s.Error,
		Scope:       s.Resolution.State.String(),
		Owners:      s.Resolution.OwnerEmails,
		SharedOwner: s.Resolution.SharedOwnerEmail,
	}
}

type listResp struct {
	OK     bool         `json:"ok"`
	Status statusResp   `json:"status"`
	Paps   []domain.PAP `json:"paps"`
}
