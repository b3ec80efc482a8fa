package domain

import "time"

// Row is the remote shape of a PAP record, keyed the way the row store
// names its columns. Every PAP field has exactly one Row counterpart and
// the mapping is a lossless bijection; null columns are read as the zero
// defaults before a Row is built.
type Row struct {
	ID         string `json:"id"`
	OwnerEmail string `json:"owner_email"`

	Title                    string `json:"title"`
	PerformanceIndicator     string `json:"performance_indicator"`
	PersonnelOfficeConcerned string `json:"personnel_office_concerned"`

	DevelopmentArea string `json:"development_area"`
	Outcome         string `json:"outcome"`
	Strategy        string `json:"strategy"`

	Q1 string `json:"q1"`
	Q2 string `json:"q2"`
	Q3 string `json:"q3"`
	Q4 string `json:"q4"`

	ActualQ1 string `json:"actual_q1"`
	ActualQ2 string `json:"actual_q2"`
	ActualQ3 string `json:"actual_q3"`
	ActualQ4 string `json:"actual_q4"`

	TotalEstimatedCost   float64 `json:"total_estimated_cost"`
	FundSource           string  `json:"fund_source"`
	Risks                string  `json:"risks"`
	Probability          string  `json:"probability"`
	Severity             string  `json:"severity"`
	RiskExposure         string  `json:"risk_exposure"`
	MitigatingActivities string  `json:"mitigating_activities"`

	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at"`
	EvidenceLinks []string   `json:"evidence_links"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromRow maps a remote row to the internal record shape.
func FromRow(r Row) PAP {
	exposure := r.RiskExposure
	if exposure == "" {
		exposure = ExposureLow
	}
	links := r.EvidenceLinks
	if links == nil {
		links = []string{}
	}
	return PAP{
		ID:                       r.ID,
		OwnerEmail:               r.OwnerEmail,
		Title:                    r.Title,
		PerformanceIndicator:     r.PerformanceIndicator,
		PersonnelOfficeConcerned: r.PersonnelOfficeConcerned,
		DevelopmentArea:          r.DevelopmentArea,
		Outcome:                  r.Outcome,
		Strategy:                 r.Strategy,
		Q1:                       r.Q1,
		Q2:                       r.Q2,
		Q3:                       r.Q3,
		Q4:                       r.Q4,
		ActualQ1:                 r.ActualQ1,
		ActualQ2:                 r.ActualQ2,
		ActualQ3:                 r.ActualQ3,
		ActualQ4:                 r.ActualQ4,
		TotalEstimatedCost:       r.TotalEstimatedCost,
		FundSource:               r.FundSource,
		Risks:                    r.Risks,
		Probability:              r.Probability,
		Severity:                 r.Severity,
		RiskExposure:             exposure,
		MitigatingActivities:     r.MitigatingActivities,
		Completed:                r.Completed,
		CompletedAt:              r.CompletedAt,
		EvidenceLinks:            links,
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
	}
}

// ToRow maps the internal record back to the remote shape.
func (p PAP) ToRow() Row {
	links := p.EvidenceLinks
	if links == nil {
		links = []string{}
	}
	return Row{
		ID:                       p.ID,
		OwnerEmail:               p.OwnerEmail,
		Title:                    p.Title,
		PerformanceIndicator:     p.PerformanceIndicator,
		PersonnelOfficeConcerned: p.PersonnelOfficeConcerned,
		DevelopmentArea:          p.DevelopmentArea,
		Outcome:                  p.Outcome,
		Strategy:                 p.Strategy,
		Q1:                       p.Q1,
		Q2:                       p.Q2,
		Q3:                       p.Q3,
		Q4:                       p.Q4,
		ActualQ1:                 p.ActualQ1,
		ActualQ2:                 p.ActualQ2,
		ActualQ3:                 p.ActualQ3,
		ActualQ4:                 p.ActualQ4,
		TotalEstimatedCost:       p.TotalEstimatedCost,
		FundSource:               p.FundSource,
		Risks:                    p.Risks,
		Probability:              p.Probability,
		Severity:                 p.Severity,
		RiskExposure:             p.RiskExposure,
		MitigatingActivities:     p.MitigatingActivities,
		Completed:                p.Completed,
		CompletedAt:              p.CompletedAt,
		EvidenceLinks:            links,
		CreatedAt:                p.CreatedAt,
		UpdatedAt:                p.UpdatedAt,
	}
}
