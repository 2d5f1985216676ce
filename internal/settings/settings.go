// Package settings holds the persisted pageguard configuration and its
// defaulting and merge rules. Every reader goes through Store.Load, which
// always returns a complete structure; partial updates go through Store.Save,
// which enforces the enterprise-implies-scan-only coupling before persisting.
package settings

// Environment selects which remote safety endpoint is used.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// Endpoints per environment. The production address is fixed; dev points at a
// locally running safety service.
const (
	devEndpoint  = "http://localhost:8000"
	prodEndpoint = "https://api.safebrowse.io"
)

// Settings is the full persisted configuration.
type Settings struct {
	APIKey         string      `mapstructure:"api_key" yaml:"api_key"`
	Environment    Environment `mapstructure:"environment" yaml:"environment"`
	ScanOnly       bool        `mapstructure:"scan_only" yaml:"scan_only"`
	EnterpriseMode bool        `mapstructure:"enterprise_mode" yaml:"enterprise_mode"`
	AllowedDomains []string    `mapstructure:"allowed_domains" yaml:"allowed_domains"`
}

// Default returns the built-in defaults used on first run and as the base
// layer for every Load.
func Default() Settings {
	return Settings{
		APIKey:         "",
		Environment:    EnvDev,
		ScanOnly:       false,
		EnterpriseMode: false,
		AllowedDomains: []string{},
	}
}

// Endpoint returns the base URL of the remote safety service for the
// configured environment. An unrecognized environment falls back to dev so a
// corrupted config file never silently targets production.
func (s Settings) Endpoint() string {
	if s.Environment == EnvProd {
		return prodEndpoint
	}
	return devEndpoint
}

// Normalize re-asserts the enterprise-implies-scan-only invariant. Save
// enforces it at the write boundary; Normalize exists so readers stay
// consistent even if the stored pair was edited by hand.
func (s Settings) Normalize() Settings {
	if s.EnterpriseMode {
		s.ScanOnly = true
	}
	if s.Environment != EnvDev && s.Environment != EnvProd {
		s.Environment = EnvDev
	}
	if s.AllowedDomains == nil {
		s.AllowedDomains = []string{}
	}
	return s
}

// Partial is a sparse update applied by Store.Save. Nil fields keep their
// currently persisted value.
type Partial struct {
	APIKey         *string
	Environment    *Environment
	ScanOnly       *bool
	EnterpriseMode *bool
	AllowedDomains *[]string
}

// merge overlays the non-nil fields of p onto s.
func merge(s Settings, p Partial) Settings {
	if p.APIKey != nil {
		s.APIKey = *p.APIKey
	}
	if p.Environment != nil {
		s.Environment = *p.Environment
	}
	if p.ScanOnly != nil {
		s.ScanOnly = *p.ScanOnly
	}
	if p.EnterpriseMode != nil {
		s.EnterpriseMode = *p.EnterpriseMode
	}
	if p.AllowedDomains != nil {
		s.AllowedDomains = append([]string(nil), (*p.AllowedDomains)...)
	}
	return s
}
