package policy

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/pageguard/pageguard/internal/settings"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		s    settings.Settings
		want Mode
	}{
		{"defaults", settings.Settings{}, ModeNormal},
		{"scan only", settings.Settings{ScanOnly: true}, ModeScanOnly},
		{"enterprise", settings.Settings{EnterpriseMode: true}, ModeEnterpriseScanOnly},
		{"enterprise wins over scan only", settings.Settings{EnterpriseMode: true, ScanOnly: true}, ModeEnterpriseScanOnly},
		{"enterprise wins over inconsistent store", settings.Settings{EnterpriseMode: true, ScanOnly: false}, ModeEnterpriseScanOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.s); got != tt.want {
				t.Errorf("Resolve(%+v) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

// Enterprise mode must resolve to EnterpriseScanOnly no matter what else the
// settings contain, and Resolve must be deterministic.
func TestResolve_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := settings.Settings{
			APIKey:         rapid.String().Draw(t, "apiKey"),
			Environment:    settings.Environment(rapid.SampledFrom([]string{"dev", "prod", "junk"}).Draw(t, "env")),
			ScanOnly:       rapid.Bool().Draw(t, "scanOnly"),
			EnterpriseMode: rapid.Bool().Draw(t, "enterprise"),
		}

		got := Resolve(s)
		if s.EnterpriseMode && got != ModeEnterpriseScanOnly {
			t.Fatalf("enterprise settings resolved to %v", got)
		}
		if !s.EnterpriseMode && got == ModeEnterpriseScanOnly {
			t.Fatalf("non-enterprise settings resolved to enterprise mode")
		}
		if again := Resolve(s); again != got {
			t.Fatalf("Resolve not deterministic: %v then %v", got, again)
		}
	})
}

func TestMode_ScanOnly(t *testing.T) {
	if ModeNormal.ScanOnly() {
		t.Error("normal mode must allow queries")
	}
	if !ModeScanOnly.ScanOnly() || !ModeEnterpriseScanOnly.ScanOnly() {
		t.Error("scan-only modes must forbid queries")
	}
}
