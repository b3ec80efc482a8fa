package domain

// Field enumerates the patchable fields of a PAP record. The enum is
// closed: a patch can only name one of these, and each maps to exactly
// one remote column. Adding a PAP field means adding a constant here and
// a case in Column, which the compiler and TestFieldColumnsExhaustive
// keep honest.
type Field string

const (
	FieldOwnerEmail               Field = "ownerEmail"
	FieldTitle                    Field = "title"
	FieldPerformanceIndicator     Field = "performanceIndicator"
	FieldPersonnelOfficeConcerned Field = "personnelOfficeConcerned"
	FieldDevelopmentArea          Field = "developmentArea"
	FieldOutcome                  Field = "outcome"
	FieldStrategy                 Field = "strategy"
	FieldQ1                       Field = "q1"
	FieldQ2                       Field = "q2"
	FieldQ3                       Field = "q3"
	FieldQ4                       Field = "q4"
	FieldActualQ1                 Field = "actualQ1"
	FieldActualQ2                 Field = "actualQ2"
	FieldActualQ3                 Field = "actualQ3"
	FieldActualQ4                 Field = "actualQ4"
	FieldTotalEstimatedCost       Field = "totalEstimatedCost"
	FieldFundSource               Field = "fundSource"
	FieldRisks                    Field = "risks"
	FieldProbability              Field = "probability"
	FieldSeverity                 Field = "severity"
	FieldRiskExposure             Field = "riskExposure"
	FieldMitigatingActivities     Field = "mitigatingActivities"
	FieldCompleted                Field = "completed"
	FieldCompletedAt              Field = "completedAt"
	FieldEvidenceLinks            Field = "evidenceLinks"
)

// AllFields lists every patchable field in declaration order.
var AllFields = []Field{
	FieldOwnerEmail, FieldTitle, FieldPerformanceIndicator,
	FieldPersonnelOfficeConcerned, FieldDevelopmentArea, FieldOutcome,
	FieldStrategy, FieldQ1, FieldQ2, FieldQ3, FieldQ4,
	FieldActualQ1, FieldActualQ2, FieldActualQ3, FieldActualQ4,
	FieldTotalEstimatedCost, FieldFundSource, FieldRisks,
	FieldProbability, FieldSeverity, FieldRiskExposure,
	FieldMitigatingActivities, FieldCompleted, FieldCompletedAt,
	FieldEvidenceLinks,
}

// Column returns the remote column for a field. The second result is
// false for anything outside the closed enum, which callers treat as
// "silently drop" per the over-posting safety net.
func (f Field) Column() (string, bool) {
	switch f {
	case FieldOwnerEmail:
		return "owner_email", true
	case FieldTitle:
		return "title", true
	case FieldPerformanceIndicator:
		return "performance_indicator", true
	case FieldPersonnelOfficeConcerned:
		return "personnel_office_concerned", true
	case FieldDevelopmentArea:
		return "development_area", true
	case FieldOutcome:
		return "outcome", true
	case FieldStrategy:
		return "strategy", true
	case FieldQ1:
		return "q1", true
	case FieldQ2:
		return "q2", true
	case FieldQ3:
		return "q3", true
	case FieldQ4:
		return "q4", true
	case FieldActualQ1:
		return "actual_q1", true
	case FieldActualQ2:
		return "actual_q2", true
	case FieldActualQ3:
		return "actual_q3", true
	case FieldActualQ4:
		return "actual_q4", true
	case FieldTotalEstimatedCost:
		return "total_estimated_cost", true
	case FieldFundSource:
		return "fund_source", true
	case FieldRisks:
		return "risks", true
	case FieldProbability:
		return "probability", true
	case FieldSeverity:
		return "severity", true
	case FieldRiskExposure:
		return "risk_exposure", true
	case FieldMitigatingActivities:
		return "mitigating_activities", true
	case FieldCompleted:
		return "completed", true
	case FieldCompletedAt:
		return "completed_at", true
	case FieldEvidenceLinks:
		return "evidence_links", true
	}
	return "", false
}

// Patch is a partial set of field changes. A nil value means "explicitly
// no value" and is written as SQL NULL.
type Patch map[Field]any

// Columns translates the patch to remote column names, dropping any key
// outside the field enum. The translation never fails; unrecognized keys
// are a caller mistake the manager absorbs rather than propagates.
func (p Patch) Columns() map[string]any {
	out := make(map[string]any, len(p))
	for f, v := range p {
		col, ok := f.Column()
		if !ok {
			continue
		}
		out[col] = v
	}
	return out
}

// EditsActuals reports whether the patch touches a quarterly actual.
// Actuals are frozen while a record is completed.
func (p Patch) EditsActuals() bool {
	for _, f := range []Field{FieldActualQ1, FieldActualQ2, FieldActualQ3, FieldActualQ4} {
		if _, ok := p[f]; ok {
			return true
		}
	}
	return false
}

// Apply merges the patch into a copy of the record and returns it. The
// merge is pure: replaying the same patch over a fresh fetch yields the
// same record, which is what makes the optimistic cache re-derivable.
func (p Patch) Apply(rec PAP) PAP {
	for f, v := range p {
		switch f {
		case FieldOwnerEmail:
			rec.OwnerEmail = asString(v)
		case FieldTitle:
			rec.Title = asString(v)
		case FieldPerformanceIndicator:
			rec.PerformanceIndicator = asString(v)
		case FieldPersonnelOfficeConcerned:
			rec.PersonnelOfficeConcerned = asString(v)
		case FieldDevelopmentArea:
			rec.DevelopmentArea = asString(v)
		case FieldOutcome:
			rec.Outcome = asString(v)
		case FieldStrategy:
			rec.Strategy = asString(v)
		case FieldQ1:
			rec.Q1 = asString(v)
		case FieldQ2:
			rec.Q2 = asString(v)
		case FieldQ3:
			rec.Q3 = asString(v)
		case FieldQ4:
			rec.Q4 = asString(v)
		case FieldActualQ1:
			rec.ActualQ1 = asString(v)
		case FieldActualQ2:
			rec.ActualQ2 = asString(v)
		case FieldActualQ3:
			rec.ActualQ3 = asString(v)
		case FieldActualQ4:
			rec.ActualQ4 = asString(v)
		case FieldTotalEstimatedCost:
			rec.TotalEstimatedCost = asFloat(v)
		case FieldFundSource:
			rec.FundSource = asString(v)
		case FieldRisks:
			rec.Risks = asString(v)
		case FieldProbability:
			rec.Probability = asString(v)
		case FieldSeverity:
			rec.Severity = asString(v)
		case FieldRiskExposure:
			rec.RiskExposure = asString(v)
		case FieldMitigatingActivities:
			rec.MitigatingActivities = asString(v)
		case FieldCompleted:
			b, _ := v.(bool)
			rec.Completed = b
		case FieldCompletedAt:
			rec.CompletedAt = asTimePtr(v)
		case FieldEvidenceLinks:
			rec.EvidenceLinks = asStrings(v)
		}
	}
	return rec
}
