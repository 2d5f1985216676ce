// Package policy contains the pure decision functions of pageguard: which
// request mode applies to a user action, and whether a host is covered by the
// enterprise domain allow-list.
package policy

import "github.com/pageguard/pageguard/internal/settings"

// Mode is the operating mode resolved from settings for one user action.
type Mode int

const (
	// ModeNormal sends the user's query and requests a generated answer.
	ModeNormal Mode = iota
	// ModeScanOnly requests a safety verdict only; no query is sent.
	ModeScanOnly
	// ModeEnterpriseScanOnly is scan-only forced by organization policy,
	// with the domain allow-list check active.
	ModeEnterpriseScanOnly
)

func (m Mode) String() string {
	switch m {
	case ModeScanOnly:
		return "scan-only"
	case ModeEnterpriseScanOnly:
		return "enterprise-scan-only"
	default:
		return "normal"
	}
}

// ScanOnly reports whether the mode forbids sending a query.
func (m Mode) ScanOnly() bool {
	return m == ModeScanOnly || m == ModeEnterpriseScanOnly
}

// Resolve derives the request mode from settings. Enterprise mode always
// wins, regardless of the stored scan_only value, so an inconsistent store
// can never downgrade organization policy.
func Resolve(s settings.Settings) Mode {
	switch {
	case s.EnterpriseMode:
		return ModeEnterpriseScanOnly
	case s.ScanOnly:
		return ModeScanOnly
	default:
		return ModeNormal
	}
}
