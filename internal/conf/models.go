package conf

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"telegram-filter-bot/internal/biz/domain"
)

// ModelsConfig is the completion model roster loaded from YAML.
type ModelsConfig struct {
	Models []ModelEntry `yaml:"models"`
}

// ModelEntry describes one completion backend.
type ModelEntry struct {
	Name       string `yaml:"name"`
	DailyLimit int    `yaml:"daily_limit"`
	RPMLimit   int    `yaml:"rpm_limit"`
	Quality    int    `yaml:"quality"`
	Tier       int    `yaml:"tier"`
}

// LoadModelsConfig loads the model roster from a YAML file. An empty or
// missing path falls back to the built-in defaults.
func LoadModelsConfig(configPath string) (*ModelsConfig, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{"configs/models.yaml", "./configs/models.yaml"}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err == nil {
			data = raw
			loadedPath = p
			break
		}
	}

	if data == nil {
		fmt.Println("[Config] No models.yaml found, using defaults")
		return DefaultModelsConfig(), nil
	}

	fmt.Printf("[Config] Loading models from: %s\n", loadedPath)
	var cfg ModelsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse models config: %w", err)
	}
	if len(cfg.Models) == 0 {
		return DefaultModelsConfig(), nil
	}
	return &cfg, nil
}

// DefaultModelsConfig returns the built-in three-tier roster.
func DefaultModelsConfig() *ModelsConfig {
	return &ModelsConfig{
		Models: []ModelEntry{
			{Name: "gpt-4o", DailyLimit: 200, RPMLimit: 3, Quality: 9, Tier: domain.TierPremium},
			{Name: "gpt-4o-mini", DailyLimit: 1500, RPMLimit: 30, Quality: 7, Tier: domain.TierGeneral},
			{Name: "gpt-3.5-turbo", DailyLimit: 2000, RPMLimit: 60, Quality: 5, Tier: domain.TierFallback},
		},
	}
}

// ToDescriptors converts the roster into model descriptors sorted by tier.
func (c *ModelsConfig) ToDescriptors() []*domain.ModelDescriptor {
	out := make([]*domain.ModelDescriptor, 0, len(c.Models))
	for _, m := range c.Models {
		out = append(out, &domain.ModelDescriptor{
			Name:       m.Name,
			DailyLimit: m.DailyLimit,
			RPMLimit:   m.RPMLimit,
			Quality:    m.Quality,
			Tier:       m.Tier,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out
}
