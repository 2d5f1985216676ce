package firewall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScan_Safe(t *testing.T) {
	v, err := normalizeScan([]byte(`{"is_safe": true, "risk_score": 0.1, "request_id": "r-1"}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSafe, v.Outcome)
	require.NotNil(t, v.RiskScore)
	assert.Equal(t, 0.1, *v.RiskScore)
	assert.Empty(t, v.AnswerText)
	assert.Equal(t, "r-1", v.RequestID)
}

func TestNormalizeScan_Blocked(t *testing.T) {
	v, err := normalizeScan([]byte(`{
		"is_safe": false,
		"risk_score": 0.92,
		"reason": "Injection detected",
		"explanations": ["hidden instruction block", "role override attempt"],
		"policy_violations": ["login form on external domain"]
	}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, v.Outcome)
	assert.Equal(t, "Injection detected", v.Reason)
	assert.Equal(t, 0.92, *v.RiskScore)
	assert.Equal(t, []string{"hidden instruction block", "role override attempt"}, v.Explanations)
	assert.Equal(t, []string{"login form on external domain"}, v.PolicyViolations)
}

func TestNormalizeScan_BlockedWithoutReasonUsesFallback(t *testing.T) {
	v, err := normalizeScan([]byte(`{"is_safe": false}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, v.Outcome)
	assert.Equal(t, fallbackBlockedReason, v.Reason)
}

func TestNormalizeScan_MissingFlagIsMalformed(t *testing.T) {
	_, err := normalizeScan([]byte(`{"risk_score": 0.5}`))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindMalformedResponse))
}

func TestNormalizeScan_OutOfRangeScorePassesThrough(t *testing.T) {
	// The remote contract clamps scores to [0,1]; the normalizer does not
	// re-validate, so a buggy remote value is surfaced as-is.
	v, err := normalizeScan([]byte(`{"is_safe": false, "risk_score": 1.7}`))
	require.NoError(t, err)
	assert.Equal(t, 1.7, *v.RiskScore)
}

func TestNormalizeAsk(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		outcome Outcome
		reason  string
		answer  string
	}{
		{
			name:    "ok",
			body:    `{"status": "ok", "answer": "The page lists prices.", "risk_score": 0.05}`,
			outcome: OutcomeSafe,
			answer:  "The page lists prices.",
		},
		{
			name:    "blocked with reason",
			body:    `{"status": "blocked", "reason": "Prompt injection detected", "risk_score": 0.95}`,
			outcome: OutcomeBlocked,
			reason:  "Prompt injection detected",
		},
		{
			name:    "blocked without reason",
			body:    `{"status": "blocked"}`,
			outcome: OutcomeBlocked,
			reason:  fallbackBlockedReason,
		},
		{
			name:    "unknown status",
			body:    `{"status": "error"}`,
			outcome: OutcomeError,
			reason:  fallbackErrorReason,
		},
		{
			name:    "unknown status with reason",
			body:    `{"status": "degraded", "reason": "LLM unavailable"}`,
			outcome: OutcomeError,
			reason:  "LLM unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := normalizeAsk([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, v.Outcome)
			assert.Equal(t, tt.reason, v.Reason)
			assert.Equal(t, tt.answer, v.AnswerText)
			if tt.outcome != OutcomeSafe {
				assert.Empty(t, v.AnswerText, "answer text only accompanies a safe outcome")
			}
		})
	}
}

func TestDisplayCaps(t *testing.T) {
	v := &Verdict{
		Explanations:     []string{"a", "b", "c", "d", "e"},
		PolicyViolations: []string{"x", "y"},
	}
	assert.Equal(t, []string{"a", "b", "c"}, v.DisplayExplanations())
	assert.Equal(t, []string{"x", "y"}, v.DisplayViolations())
	assert.Len(t, v.Explanations, 5, "full list stays available past the display cap")
}
