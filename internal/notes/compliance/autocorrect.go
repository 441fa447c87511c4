package compliance

import (
	"strings"
	"time"
)

// AppliedCorrection records one deterministic default applied to a
// missing required field, so callers can log exactly what changed.
type AppliedCorrection struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Value string `json:"value"`
}

// CorrectionReport pairs the validation state before and after the
// corrections with the itemized list of what was applied.
type CorrectionReport struct {
	Applied []AppliedCorrection `json:"applied"`
	Before  ValidationResult    `json:"before"`
	After   ValidationResult    `json:"after"`
}

// WasCorrected reports whether any rule fired.
func (r CorrectionReport) WasCorrected() bool { return len(r.Applied) > 0 }

// AutoCorrect applies one deterministic rule per missing required field
// and re-validates once. It never overwrites an explicit value, which
// makes it idempotent: a second run on its own output applies nothing.
// Completeness can only go up.
func AutoCorrect(n Note, policy DefaultPolicy, now func() time.Time) (Note, CorrectionReport) {
	if now == nil {
		now = time.Now
	}
	report := CorrectionReport{Applied: []AppliedCorrection{}, Before: Validate(n)}

	for _, field := range report.Before.MissingRequired {
		switch field {
		case FieldTimestamp:
			ts := now().UTC()
			n.Timestamp = ts
			report.Applied = append(report.Applied, AppliedCorrection{
				Field: field, Rule: "derive_from_now", Value: ts.Format(time.RFC3339),
			})

		case FieldPlanDocumented, FieldPlanText:
			// One source of plan content serves both fields; the rule is
			// applied at most once even when both are missing.
			if hasCorrection(report.Applied, FieldPlanDocumented) {
				continue
			}
			planText := strings.TrimSpace(n.PlanText)
			if planText == "" {
				planText = strings.TrimSpace(strings.Join(n.Record.SuggestedTreatmentPlan, "\n"))
			}
			if planText == "" {
				continue
			}
			n.PlanText = planText
			documented := true
			n.PlanDocumented = &documented
			report.Applied = append(report.Applied, AppliedCorrection{
				Field: FieldPlanDocumented, Rule: "infer_from_plan_content", Value: "true",
			})

		case FieldRedFlagsAssessed:
			assessed := policy.AssumeRedFlagsAssessed
			n.RedFlagsAssessed = &assessed
			if n.Record.RedFlags == nil {
				n.Record.RedFlags = []string{}
			}
			report.Applied = append(report.Applied, AppliedCorrection{
				Field: field, Rule: "policy_default", Value: boolString(assessed),
			})

		case FieldRedFlagsList:
			n.Record.RedFlags = []string{}
			report.Applied = append(report.Applied, AppliedCorrection{
				Field: field, Rule: "empty_but_present_list", Value: "[]",
			})

		case FieldContraindicationsChecked:
			checked := policy.AssumeContraindicationsChecked
			n.ContraindicationsChecked = &checked
			report.Applied = append(report.Applied, AppliedCorrection{
				Field: field, Rule: "policy_default", Value: boolString(checked),
			})
		}
	}

	report.After = Validate(n)
	return n, report
}

func hasCorrection(applied []AppliedCorrection, field string) bool {
	for _, a := range applied {
		if a.Field == field {
			return true
		}
	}
	return false
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
