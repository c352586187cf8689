package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables recognized by Load.
const (
	EnvPolicy      = "CARTWATCH_POLICY"
	EnvCooldown    = "CARTWATCH_COOLDOWN_SECONDS"
	EnvOutputDir   = "CARTWATCH_OUTPUT_DIR"
	EnvMinArea     = "CARTWATCH_MIN_AREA"
	EnvDevice      = "CARTWATCH_CAMERA_DEVICE"
	EnvJPEGQuality = "CARTWATCH_JPEG_QUALITY"
)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error. Variables already set are left alone.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Capture.Policy = getEnv(EnvPolicy, cfg.Capture.Policy)
	cfg.Capture.OutputDir = getEnv(EnvOutputDir, cfg.Capture.OutputDir)

	var err error
	if cfg.Capture.CooldownSeconds, err = getEnvFloat(EnvCooldown, cfg.Capture.CooldownSeconds); err != nil {
		return err
	}
	if cfg.Rule.MinArea, err = getEnvInt(EnvMinArea, cfg.Rule.MinArea); err != nil {
		return err
	}
	if cfg.Camera.Device, err = getEnvInt(EnvDevice, cfg.Camera.Device); err != nil {
		return err
	}
	if cfg.Capture.JPEGQuality, err = getEnvInt(EnvJPEGQuality, cfg.Capture.JPEGQuality); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, key, value)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, key, value)
	}
	return f, nil
}
