package firewall

import "encoding/json"

// Outcome is the unified result classification of one user action.
type Outcome string

const (
	OutcomeSafe    Outcome = "safe"
	OutcomeBlocked Outcome = "blocked"
	OutcomeError   Outcome = "error"
)

// Fallback reasons used when the remote omits one.
const (
	fallbackBlockedReason = "Blocked by safety service"
	fallbackErrorReason   = "Safety service reported an error"
)

// maxDisplayEntries bounds list output on display surfaces. The cap is a UI
// choice, not a semantic limit; the full slices stay on the Verdict.
const maxDisplayEntries = 3

// Verdict is the single display contract both remote response shapes are
// normalized into. AnswerText is set only for a Safe full-answer response;
// Explanations and PolicyViolations are meaningful only when the outcome is
// not Safe.
type Verdict struct {
	Outcome          Outcome  `json:"outcome"`
	RiskScore        *float64 `json:"risk_score,omitempty"`
	Reason           string   `json:"reason,omitempty"`
	Explanations     []string `json:"explanations,omitempty"`
	PolicyViolations []string `json:"policy_violations,omitempty"`
	RequestID        string   `json:"request_id,omitempty"`
	AnswerText       string   `json:"answer_text,omitempty"`
}

// DisplayExplanations returns at most maxDisplayEntries explanations.
func (v *Verdict) DisplayExplanations() []string {
	return capEntries(v.Explanations)
}

// DisplayViolations returns at most maxDisplayEntries policy violations.
func (v *Verdict) DisplayViolations() []string {
	return capEntries(v.PolicyViolations)
}

func capEntries(entries []string) []string {
	if len(entries) > maxDisplayEntries {
		return entries[:maxDisplayEntries]
	}
	return entries
}

// normalizeAsk maps a /safe-ask body into a Verdict. Risk scores are passed
// through as received; the remote contract clamps them to [0,1] and the
// client does not re-validate.
func normalizeAsk(raw []byte) (*Verdict, error) {
	var r askResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, wrapError(KindMalformedResponse, "safety service returned an unreadable response", err)
	}

	v := &Verdict{
		RiskScore: r.RiskScore,
		RequestID: r.RequestID,
	}

	switch r.Status {
	case "ok":
		v.Outcome = OutcomeSafe
		v.AnswerText = r.Answer
	case "blocked":
		v.Outcome = OutcomeBlocked
		v.Reason = r.Reason
		if v.Reason == "" {
			v.Reason = fallbackBlockedReason
		}
		v.Explanations = r.Explanations
	default:
		v.Outcome = OutcomeError
		v.Reason = r.Reason
		if v.Reason == "" {
			v.Reason = fallbackErrorReason
		}
		v.Explanations = r.Explanations
	}

	return v, nil
}

// normalizeScan maps a /scan-html body into a Verdict. The outcome derives
// from the boolean safety flag; explanation and violation lists are copied
// verbatim.
func normalizeScan(raw []byte) (*Verdict, error) {
	var r scanResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, wrapError(KindMalformedResponse, "safety service returned an unreadable response", err)
	}
	if r.IsSafe == nil {
		return nil, newError(KindMalformedResponse, "safety service response is missing the is_safe flag")
	}

	v := &Verdict{
		RiskScore:        r.RiskScore,
		Reason:           r.Reason,
		Explanations:     r.Explanations,
		PolicyViolations: r.PolicyViolations,
		RequestID:        r.RequestID,
	}
	if *r.IsSafe {
		v.Outcome = OutcomeSafe
	} else {
		v.Outcome = OutcomeBlocked
		if v.Reason == "" {
			v.Reason = fallbackBlockedReason
		}
	}

	return v, nil
}
