// Package config provides configuration for the planar CLI host.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"planar/internal/solver"
)

// Config holds host configuration.
type Config struct {
	// DataDir is the directory holding the scene database.
	DataDir string
	// HistoryFile is the shell's readline history file.
	HistoryFile string
	// TuningFile optionally points at a YAML solver tuning file.
	TuningFile string
	// Debug enables debug logging.
	Debug bool
}

// FromEnv creates a Config from environment variables.
func FromEnv() *Config {
	return &Config{
		DataDir:     getEnv("PLANAR_DATA", "./data"),
		HistoryFile: getEnv("PLANAR_HISTORY", ""),
		TuningFile:  getEnv("PLANAR_TUNING", ""),
		Debug:       getEnvBool("PLANAR_DEBUG", false),
	}
}

// Tuning mirrors solver.Options in a YAML tuning file. Absent fields keep
// their defaults.
type Tuning struct {
	MaxIterations  *int     `yaml:"max_iterations"`
	ConvergenceEps *float64 `yaml:"convergence_eps"`
	LambdaInit     *float64 `yaml:"lambda_init"`
	LambdaUp       *float64 `yaml:"lambda_up"`
	LambdaDown     *float64 `yaml:"lambda_down"`
}

// LoadTuning reads a YAML tuning file and applies it over the default
// solver options. An empty path returns the defaults unchanged.
func LoadTuning(path string) (solver.Options, error) {
	opts := solver.DefaultOptions()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("reading tuning file: %w", err)
	}

	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return opts, fmt.Errorf("parsing tuning file: %w", err)
	}

	if t.MaxIterations != nil {
		opts.MaxIterations = *t.MaxIterations
	}
	if t.ConvergenceEps != nil {
		opts.ConvergenceEps = *t.ConvergenceEps
	}
	if t.LambdaInit != nil {
		opts.LambdaInit = *t.LambdaInit
	}
	if t.LambdaUp != nil {
		opts.LambdaUp = *t.LambdaUp
	}
	if t.LambdaDown != nil {
		opts.LambdaDown = *t.LambdaDown
	}
	return opts, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
