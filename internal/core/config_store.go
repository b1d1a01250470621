package core

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// ConfigName is the project configuration file, at the repository root.
const ConfigName = "openapi.yml"

// DefaultDocumentsDir is used when documents_dir is not set.
const DefaultDocumentsDir = "openapi"

// maxConfigFileSize caps openapi.yml reads (1 MB). A config with hundreds
// of services is well under 100 KB, so this is generous.
const maxConfigFileSize = 1 << 20

// ConfigStore handles openapi.yml I/O operations
type ConfigStore interface {
	Load() (types.ProjectConfig, error)
	Save(config types.ProjectConfig) error
	Path() string
}

// FileConfigStore implements ConfigStore using the filesystem
type FileConfigStore struct {
	rootDir string
}

// NewFileConfigStore creates a new FileConfigStore rooted at the repository
// root.
func NewFileConfigStore(rootDir string) *FileConfigStore {
	return &FileConfigStore{rootDir: rootDir}
}

// Path returns the config file path
func (s *FileConfigStore) Path() string {
	return filepath.Join(s.rootDir, ConfigName)
}

// Load reads and parses openapi.yml
func (s *FileConfigStore) Load() (types.ProjectConfig, error) {
	info, err := os.Stat(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return types.ProjectConfig{}, ErrNotConfigured
		}
		return types.ProjectConfig{}, fmt.Errorf("failed to read %s: %w", ConfigName, err)
	}
	if info.Size() > maxConfigFileSize {
		return types.ProjectConfig{}, fmt.Errorf(
			"%s exceeds maximum size (%d bytes > %d byte limit)", ConfigName, info.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		return types.ProjectConfig{}, fmt.Errorf("failed to read %s: %w", ConfigName, err)
	}

	var cfg types.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return types.ProjectConfig{}, fmt.Errorf("invalid %s: %w", ConfigName, err)
	}

	applyConfigDefaults(&cfg)
	return cfg, nil
}

// Save writes openapi.yml
func (s *FileConfigStore) Save(cfg types.ProjectConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(s.Path(), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigName, err)
	}

	return nil
}

func applyConfigDefaults(cfg *types.ProjectConfig) {
	if cfg.DocumentsDir == "" {
		cfg.DocumentsDir = DefaultDocumentsDir
	}
	if cfg.BlessedBranch == "" {
		cfg.BlessedBranch = types.DefaultBlessedBranch
	}
}
