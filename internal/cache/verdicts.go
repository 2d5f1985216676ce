package cache

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/pageguard/pageguard/internal/firewall"
)

// Default verdict retention per layer.
const (
	DefaultMemoryTTL = 15 * time.Minute
	DefaultDiskTTL   = 24 * time.Hour
)

// Verdicts is the typed facade the guard uses: scan verdicts in, scan
// verdicts out, keyed by page identity.
type Verdicts struct {
	store Cache
}

// DefaultDiskDir returns the verdict cache directory under the XDG cache
// home.
func DefaultDiskDir() string {
	return filepath.Join(xdg.CacheHome, "pageguard", "verdicts")
}

// NewVerdicts creates the standard layered verdict cache.
func NewVerdicts() *Verdicts {
	return &Verdicts{store: NewLayered(DefaultMemoryTTL, DefaultDiskDir(), DefaultDiskTTL)}
}

// NewVerdictsWith wraps an explicit storage layer, for tests.
func NewVerdictsWith(store Cache) *Verdicts {
	return &Verdicts{store: store}
}

// Get returns the cached verdict for the page, if any.
func (vc *Verdicts) Get(pageURL, html string) (*firewall.Verdict, bool) {
	data, found := vc.store.Get(Key(pageURL, html))
	if !found {
		return nil, false
	}

	var v firewall.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		_ = vc.store.Delete(Key(pageURL, html))
		return nil, false
	}
	return &v, true
}

// Put stores a scan verdict. Verdicts carrying answer text are never stored.
func (vc *Verdicts) Put(pageURL, html string, v *firewall.Verdict) error {
	if v == nil || v.AnswerText != "" {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return vc.store.Set(Key(pageURL, html), data, 0)
}

// Clear drops every cached verdict.
func (vc *Verdicts) Clear() error {
	return vc.store.Clear()
}
