// Package config resolves runtime configuration from defaults, an optional
// digivolve.yaml file and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/duynguyendang/digivolve/pkg/dataset"
)

const (
	DefaultPort    = "8080"
	DefaultDataset = "./data/digimon_list.xlsx"
	DefaultFile    = "digivolve.yaml"
)

// Config is the resolved runtime configuration.
type Config struct {
	Port        string
	DatasetPath string
	Watch       bool

	// Gemini is optional; an empty key disables the narrative features.
	GeminiAPIKey string
	GeminiModel  string

	// Dataset carries sheet/format/column overrides for the loader.
	Dataset dataset.Options
}

// fileConfig is the on-disk shape of digivolve.yaml.
type fileConfig struct {
	Server struct {
		Port  string `yaml:"port"`
		Watch *bool  `yaml:"watch"`
	} `yaml:"server"`
	Dataset struct {
		Path    string `yaml:"path"`
		Sheet   string `yaml:"sheet"`
		Format  string `yaml:"format"`
		Columns struct {
			Number     string `yaml:"number"`
			Name       string `yaml:"name"`
			Stage      string `yaml:"stage"`
			Attribute  string `yaml:"attribute"`
			Evolutions string `yaml:"evolutions"`
		} `yaml:"columns"`
	} `yaml:"dataset"`
}

// Load resolves the configuration. file may be empty, in which case
// digivolve.yaml is used when present. A .env file in the working directory
// is honored before environment variables are read.
func Load(file string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        DefaultPort,
		DatasetPath: DefaultDataset,
	}

	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		if err := applyFile(cfg, file); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Server.Port != "" {
		cfg.Port = fc.Server.Port
	}
	if fc.Server.Watch != nil {
		cfg.Watch = *fc.Server.Watch
	}
	if fc.Dataset.Path != "" {
		cfg.DatasetPath = fc.Dataset.Path
	}
	cfg.Dataset.Sheet = fc.Dataset.Sheet
	cfg.Dataset.Format = fc.Dataset.Format
	cfg.Dataset.NumberCol = fc.Dataset.Columns.Number
	cfg.Dataset.NameCol = fc.Dataset.Columns.Name
	cfg.Dataset.StageCol = fc.Dataset.Columns.Stage
	cfg.Dataset.AttributeCol = fc.Dataset.Columns.Attribute
	cfg.Dataset.EvolutionsCol = fc.Dataset.Columns.Evolutions
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DIGIVOLVE_DATASET"); v != "" {
		cfg.DatasetPath = v
	}
	if v := os.Getenv("DIGIVOLVE_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Watch = b
		}
	}
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
}
