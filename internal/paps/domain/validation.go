package domain

import (
	"strings"
	"time"
)

// ValidateDraft checks a record before it is sent to the row store.
// Required descriptive fields must be present and the strategic context
// triple must be all-set or all-empty.
func ValidateDraft(p *PAP) error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(p.PersonnelOfficeConcerned) == "" {
		return ErrPersonnelRequired
	}
	if strings.TrimSpace(p.PerformanceIndicator) == "" {
		return ErrIndicatorRequired
	}

	set := 0
	for _, v := range []string{p.DevelopmentArea, p.Outcome, p.Strategy} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return ErrPartialContext
	}

	return nil
}

// NormalizeDraft applies the completion rules to a draft before it is
// inserted, mirroring NormalizeCompletion on the patch path: a completed
// draft needs validated evidence links and gets a timestamp if one is
// missing; an incomplete draft carries no completion residue.
func NormalizeDraft(p *PAP, now time.Time) error {
	if p.Completed {
		if err := ValidateEvidence(p.EvidenceLinks); err != nil {
			return err
		}
		if p.CompletedAt == nil {
			p.CompletedAt = &now
		}
		return nil
	}

	p.CompletedAt = nil
	p.EvidenceLinks = []string{}
	return nil
}

// ValidateEvidence checks the links attached on completion: at least one,
// all valid http(s) URLs.
func ValidateEvidence(links []string) error {
	if len(links) == 0 {
		return ErrEvidenceRequired
	}
	for _, l := range links {
		if !IsValidURL(l) {
			return ErrEvidenceInvalid
		}
	}
	return nil
}

// NormalizeCompletion enforces the completion invariant on a patch that
// touches the completed flag, before anything reaches the row store:
//
//	completed=true  requires evidence links (validated) and a timestamp;
//	completed=false forces completedAt=nil and evidenceLinks=[].
//
// Patches that do not touch FieldCompleted pass through untouched.
func NormalizeCompletion(p Patch, now time.Time) (Patch, error) {
	v, touched := p[FieldCompleted]
	if !touched {
		return p, nil
	}

	completed, _ := v.(bool)
	if completed {
		links := asStrings(p[FieldEvidenceLinks])
		if err := ValidateEvidence(links); err != nil {
			return nil, err
		}
		p[FieldEvidenceLinks] = links
		if asTimePtr(p[FieldCompletedAt]) == nil {
			p[FieldCompletedAt] = &now
		}
		return p, nil
	}

	p[FieldCompletedAt] = nil
	p[FieldEvidenceLinks] = []string{}
	return p, nil
}
