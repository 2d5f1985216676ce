package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Store persists Settings as a flat YAML key-value file. It is the single
// load/save path shared by every command surface; the last writer wins and no
// locking is attempted across processes, because writes are rare and
// user-initiated.
type Store struct {
	path string
	mu   sync.Mutex
}

// DefaultPath returns the standard settings location under the XDG config
// directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "pageguard", "config.yaml")
}

// NewStore creates a store backed by the given file. An empty path selects
// DefaultPath.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// Path returns the backing file location.
func (st *Store) Path() string {
	return st.path
}

// Load reads the settings file and overlays it on the built-in defaults,
// field by field. A missing file yields pure defaults; no field is ever
// absent downstream.
func (st *Store) Load() (Settings, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.load()
}

func (st *Store) load() (Settings, error) {
	def := Default()

	v := viper.New()
	v.SetConfigFile(st.path)
	v.SetConfigType("yaml")
	v.SetDefault("api_key", def.APIKey)
	v.SetDefault("environment", string(def.Environment))
	v.SetDefault("scan_only", def.ScanOnly)
	v.SetDefault("enterprise_mode", def.EnterpriseMode)
	v.SetDefault("allowed_domains", def.AllowedDomains)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return def, fmt.Errorf("read settings %s: %w", st.path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return def, fmt.Errorf("decode settings %s: %w", st.path, err)
	}

	return s.Normalize(), nil
}

// Save performs a read-merge-write: current settings are loaded, the supplied
// fields are overlaid, the enterprise-implies-scan-only invariant is applied,
// and the complete structure is written back. Any reader after Save observes
// a consistent pair.
func (st *Store) Save(p Partial) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	current, err := st.load()
	if err != nil {
		return err
	}

	merged := merge(current, p).Normalize()

	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(st.path)
	v.SetConfigType("yaml")
	v.Set("api_key", merged.APIKey)
	v.Set("environment", string(merged.Environment))
	v.Set("scan_only", merged.ScanOnly)
	v.Set("enterprise_mode", merged.EnterpriseMode)
	v.Set("allowed_domains", merged.AllowedDomains)

	if err := v.WriteConfigAs(st.path); err != nil {
		return fmt.Errorf("write settings %s: %w", st.path, err)
	}

	return nil
}

// Reset overwrites the settings file with the built-in defaults.
func (st *Store) Reset() error {
	def := Default()
	return st.Save(Partial{
		APIKey:         &def.APIKey,
		Environment:    &def.Environment,
		ScanOnly:       &def.ScanOnly,
		EnterpriseMode: &def.EnterpriseMode,
		AllowedDomains: &def.AllowedDomains,
	})
}
