package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pageguard/pageguard/internal/firewall"
)

// renderVerdict prints one verdict for a human, or as JSON with --json.
// Display lists are capped; the JSON form carries the full verdict.
func renderVerdict(w io.Writer, v *firewall.Verdict, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	switch v.Outcome {
	case firewall.OutcomeSafe:
		fmt.Fprintln(w, "✓ SAFE")
	case firewall.OutcomeBlocked:
		fmt.Fprintln(w, "✗ BLOCKED")
	default:
		fmt.Fprintln(w, "! ERROR")
	}

	if v.RiskScore != nil {
		fmt.Fprintf(w, "  Risk score: %.2f\n", *v.RiskScore)
	}
	if v.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", v.Reason)
	}
	for _, e := range v.DisplayExplanations() {
		fmt.Fprintf(w, "  - %s\n", e)
	}
	if violations := v.DisplayViolations(); len(violations) > 0 {
		fmt.Fprintln(w, "  Policy violations:")
		for _, p := range violations {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	}
	if v.RequestID != "" {
		fmt.Fprintf(w, "  Request ID: %s\n", v.RequestID)
	}
	if v.AnswerText != "" {
		fmt.Fprintf(w, "\n%s\n", v.AnswerText)
	}

	return nil
}
