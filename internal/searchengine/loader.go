package searchengine

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultBackendsYAML []byte

type backendsFile struct {
	Backends []Config `yaml:"backends"`
}

// DefaultConfigs returns the enabled built-in backends in declaration order.
func DefaultConfigs() ([]Config, error) {
	var file backendsFile
	if err := yaml.Unmarshal(defaultBackendsYAML, &file); err != nil {
		return nil, fmt.Errorf("decode default backends: %w", err)
	}

	configs := make([]Config, 0, len(file.Backends))
	for _, cfg := range file.Backends {
		if cfg.isEnabled() {
			configs = append(configs, cfg)
		}
	}
	return configs, nil
}

// LoadFromDir reads one backend per *.yaml/*.yml file, in file name order.
// A missing directory yields no configs and no error.
func LoadFromDir(dirPath string) ([]Config, error) {
	trimmed := strings.TrimSpace(dirPath)
	if trimmed == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read search backends dir: %w", err)
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lower := strings.ToLower(entry.Name())
		if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
			files = append(files, filepath.Join(trimmed, entry.Name()))
		}
	}
	sort.Strings(files)

	loaded := make([]Config, 0, len(files))
	errors := make([]string, 0)

	for _, filePath := range files {
		content, err := os.ReadFile(filePath)
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}

		var cfg Config
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}
		if !cfg.isEnabled() {
			continue
		}
		if err := cfg.normalizeAndValidate(); err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}
		loaded = append(loaded, cfg)
	}

	if len(errors) > 0 {
		return loaded, fmt.Errorf("search backends failed to load: %s", strings.Join(errors, " | "))
	}

	return loaded, nil
}

// BuildBackends loads backends from dirPath, falling back to the built-in
// set when the directory provides none. Load warnings are returned together
// with whatever backends could be built.
func BuildBackends(dirPath string, fetcher Fetcher) ([]Backend, error) {
	configs, loadErr := LoadFromDir(dirPath)
	if len(configs) == 0 {
		defaults, err := DefaultConfigs()
		if err != nil {
			return nil, err
		}
		configs = defaults
	}

	backends := make([]Backend, 0, len(configs))
	for _, cfg := range configs {
		backend, err := NewBackend(cfg, fetcher)
		if err != nil {
			if loadErr == nil {
				loadErr = fmt.Errorf("build search backend %q: %w", cfg.Key, err)
			}
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no usable search backends")
	}

	return backends, loadErr
}
