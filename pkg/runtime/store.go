package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TenantConfig is a tenant's desired runtime configuration
type TenantConfig struct {
	TenantID string `yaml:"tenant_id"`
	Locale   string `yaml:"locale"`

	// service_key -> provider_name
	Services map[string]string `yaml:"services"`

	// module_key -> module config blob (module decides schema)
	Modules map[string]map[string]any `yaml:"modules"`
}

// ConfigStore supplies tenant configs. The core does not assume where
// configs live (db/redis/file).
type ConfigStore interface {
	GetTenantConfig(ctx context.Context, tenantID string) (*TenantConfig, error)
	ListTenants(ctx context.Context) ([]string, error)
}

// FileConfigStore reads tenant configs from <dir>/<tenant_id>.yaml
type FileConfigStore struct {
	dir string
}

// NewFileConfigStore creates a store over a config directory
func NewFileConfigStore(dir string) *FileConfigStore {
	return &FileConfigStore{dir: dir}
}

// GetTenantConfig loads and parses one tenant's YAML document
func (s *FileConfigStore) GetTenantConfig(_ context.Context, tenantID string) (*TenantConfig, error) {
	path := filepath.Join(s.dir, tenantID+".yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tenant config: %w", err)
	}

	var cfg TenantConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tenant config %s: %w", path, err)
	}
	if cfg.TenantID == "" {
		cfg.TenantID = tenantID
	}
	return &cfg, nil
}

// ListTenants enumerates tenant IDs from the *.yaml files in the directory
func (s *FileConfigStore) ListTenants(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var tenants []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") {
			tenants = append(tenants, strings.TrimSuffix(name, ".yaml"))
		}
	}
	return tenants, nil
}

// ApplyFromStore loads a tenant's config from the store and applies it
// under a fresh trace/request pair
func (cm *ConfigManager) ApplyFromStore(ctx context.Context, store ConfigStore, tenantID string) error {
	cfg, err := store.GetTenantConfig(ctx, tenantID)
	if err != nil {
		return err
	}

	rc := NewContext(tenantID, WithLocale(cfg.Locale))
	return cm.ApplyTenantConfig(ctx, Apply{
		TenantID:  tenantID,
		TraceID:   rc.TraceID,
		RequestID: rc.RequestID,
		Services:  cfg.Services,
		Modules:   cfg.Modules,
	})
}
