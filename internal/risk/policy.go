package risk

import "github.com/codguard/codguard/internal/settings"

// CODAssessment tells the checkout UI what to do with the cash-on-delivery
// option for a scored order.
type CODAssessment struct {
	Available            bool   `json:"cod_available"`
	RequiresVerification bool   `json:"requires_verification"`
	Notice               string `json:"notice,omitempty"`
}

const prepayNotice = "Prepaid payment is recommended for this order."

// AssessCOD maps a decision tier onto the COD policy. Low risk always allows
// COD, medium allows it with a prepay nudge, and high risk follows the
// configured action: hide it, require verification, or allow anyway.
func AssessCOD(d Decision, s *settings.Settings) CODAssessment {
	switch d.Tier {
	case TierLow:
		return CODAssessment{Available: true}
	case TierHigh:
		switch s.CODAction {
		case settings.CODHide:
			return CODAssessment{Available: false}
		case settings.CODAllow:
			return CODAssessment{Available: true, Notice: prepayNotice}
		default: // settings.CODVerify
			return CODAssessment{Available: true, RequiresVerification: true, Notice: prepayNotice}
		}
	default:
		return CODAssessment{Available: true, Notice: prepayNotice}
	}
}
