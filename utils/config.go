package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"waveunet/nn"
)

// LoadConfig reads a network configuration from a JSON file and checks
// its scalar fields. Dilation schedules are validated later, when the
// network is assembled.
func LoadConfig(filepath string) (nn.Config, error) {
	cfg := nn.DefaultConfig()
	data, err := os.ReadFile(filepath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes a network configuration to a JSON file.
func SaveConfig(filepath string, cfg nn.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}
