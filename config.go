package statementvault

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadBackendConfig reads a BackendConfig from a YAML file. Environment
// variables override file values, so a deployment can pin the file and
// still redirect a single installation.
func LoadBackendConfig(path string) (BackendConfig, error) {
	var cfg BackendConfig

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read backend config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse backend config: %w", err)
		}
	}

	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvConsumerID); v != "" {
		cfg.ConsumerID = v
	}

	if cfg.BaseURL == "" {
		return cfg, fmt.Errorf("backend config has no baseUrl")
	}
	return cfg, nil
}
