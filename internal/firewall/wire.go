package firewall

// Wire types for the remote safety service. The shapes mirror the service's
// documented contract exactly; nothing is added or renamed client-side.

// askRequest is the body of POST /safe-ask.
type askRequest struct {
	URL   string `json:"url"`
	HTML  string `json:"html"`
	Query string `json:"query"`
}

// askResponse is the body returned by /safe-ask.
type askResponse struct {
	Status       string   `json:"status"`
	Answer       string   `json:"answer,omitempty"`
	RiskScore    *float64 `json:"risk_score,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	Explanations []string `json:"explanations,omitempty"`
	Version      string   `json:"version,omitempty"`
	RequestID    string   `json:"request_id,omitempty"`
}

// scanRequest is the body of POST /scan-html.
type scanRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// scanResponse is the body returned by /scan-html. IsSafe is a pointer so a
// body missing the safety flag is detected as malformed rather than silently
// read as unsafe.
type scanResponse struct {
	IsSafe           *bool    `json:"is_safe"`
	RiskScore        *float64 `json:"risk_score,omitempty"`
	Reason           string   `json:"reason,omitempty"`
	Explanations     []string `json:"explanations,omitempty"`
	PolicyViolations []string `json:"policy_violations,omitempty"`
	RequestID        string   `json:"request_id,omitempty"`
}

// Health is the parsed body of GET /health.
type Health struct {
	Status          string  `json:"status"`
	Version         string  `json:"version"`
	LLMConfigured   bool    `json:"llm_configured"`
	SafetyThreshold float64 `json:"safety_threshold"`
}
