package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"vramcalc/logging"
)

type Config struct {
	HuggingFaceToken string  `json:"huggingface_token"`
	GGUFCacheBits    int     `json:"gguf_cache_bits"` // KV cache precision for GGUF estimates, 4, 8 or 16
	FitsVRAM         float64 `json:"fits_vram"`       // VRAM budget in GB used to colour the quant table, 0 = no budget
	ContextSizes     []int   `json:"context_sizes"`   // context lengths shown in the quant table
	LogLevel         string  `json:"log_level"`
	LogFilePath      string  `json:"log_file_path"`
}

var defaultConfig = Config{
	HuggingFaceToken: "",
	GGUFCacheBits:    16,
	FitsVRAM:         0,
	ContextSizes:     []int{2048, 8192, 16384, 32768, 49152, 65536},
	LogLevel:         "warn",
	LogFilePath:      os.Getenv("HOME") + "/.config/vramcalc/vramcalc.log",
}

func LoadConfig() (Config, error) {
	configPath := getConfigPath()

	file, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			if err := generateDefaultConfig(configPath); err != nil {
				logging.ErrorLogger.Printf("Failed to create default config: %v\n", err)
				return Config{}, fmt.Errorf("failed to create default config: %w", err)
			}
			return defaultConfig, nil
		}
		logging.ErrorLogger.Printf("Failed to open config file: %v\n", err)
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		logging.ErrorLogger.Printf("Failed to decode config file: %v\n", err)
		return Config{}, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.GGUFCacheBits == 0 {
		config.GGUFCacheBits = defaultConfig.GGUFCacheBits
	}
	if len(config.ContextSizes) == 0 {
		config.ContextSizes = defaultConfig.ContextSizes
	}

	return config, nil
}

func SaveConfig(config Config) error {
	configPath := getConfigPath()
	logging.DebugLogger.Printf("Saving config to: %s\n", configPath)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

func generateDefaultConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(defaultConfig)
}

func getConfigPath() string {
	if path := os.Getenv("VRAMCALC_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "vramcalc", "config.json")
}
