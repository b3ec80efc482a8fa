package domain

import "time"

// PAP is a Program, Activity, or Project tracked against the strategic
// plan. Rows are stored under OwnerEmail; visibility and write attribution
// are decided by the ownership resolver, not by the acting user.
type PAP struct {
	ID         string `json:"id"`
	OwnerEmail string `json:"ownerEmail"`

	Title                    string `json:"title"`
	PerformanceIndicator     string `json:"performanceIndicator"`
	PersonnelOfficeConcerned string `json:"personnelOfficeConcerned"`

	// Strategic classification. Either all three are set or all three
	// are empty; partially classified records are rejected.
	DevelopmentArea string `json:"developmentArea"`
	Outcome         string `json:"outcome"`
	Strategy        string `json:"strategy"`

	// Quarterly targets and actuals are free-form numeric-as-text,
	// parsed leniently for totals (non-numeric reads as 0).
	Q1 string `json:"q1"`
	Q2 string `json:"q2"`
	Q3 string `json:"q3"`
	Q4 string `json:"q4"`

	ActualQ1 string `json:"actualQ1"`
	ActualQ2 string `json:"actualQ2"`
	ActualQ3 string `json:"actualQ3"`
	ActualQ4 string `json:"actualQ4"`

	TotalEstimatedCost   float64 `json:"totalEstimatedCost"`
	FundSource           string  `json:"fundSource"`
	Risks                string  `json:"risks"`
	Probability          string  `json:"probability"`
	Severity             string  `json:"severity"`
	RiskExposure         string  `json:"riskExposure"`
	MitigatingActivities string  `json:"mitigatingActivities"`

	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completedAt"`
	EvidenceLinks []string   `json:"evidenceLinks"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Risk exposure levels.
const (
	ExposureLow    = "Low"
	ExposureMedium = "Medium"
	ExposureHigh   = "High"
)

// Classified reports whether the record carries a full strategic context
// triple.
func (p *PAP) Classified() bool {
	return p.DevelopmentArea != "" && p.Outcome != "" && p.Strategy != ""
}

// GroupKey is the grouping identity used by the list views and the report
// exporter. Unclassified records all share the ungrouped key.
func (p *PAP) GroupKey() string {
	if !p.Classified() {
		return UngroupedKey
	}
	return p.DevelopmentArea + "|||" + p.Outcome + "|||" + p.Strategy
}

// UngroupedKey marks records without a strategic context triple. Groups
// sort lexicographically with the ungrouped bucket always last.
const UngroupedKey = "__ungrouped__"

// TotalTarget sums the four quarterly targets leniently.
func (p *PAP) TotalTarget() float64 {
	return ParseLenient(p.Q1) + ParseLenient(p.Q2) + ParseLenient(p.Q3) + ParseLenient(p.Q4)
}
