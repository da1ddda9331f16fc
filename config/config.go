package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"keypad-cracker/keypad"
)

const (
	defaultRuns      = 20
	defaultOutputDir = "."
	defaultBucket    = "cracking-algorithm-data"
	defaultRegion    = "sa-east-1"
)

// Config captures all runtime options for the cracker and its benchmarks.
type Config struct {
	Digits  int           `yaml:"digits"`
	Bench   BenchConfig   `yaml:"bench"`
	Storage StorageConfig `yaml:"storage"`
	Logging Logging       `yaml:"logging"`
}

// BenchConfig controls the bench command.
type BenchConfig struct {
	Runs       int      `yaml:"runs"`
	Workers    int      `yaml:"workers"`
	OutputDir  string   `yaml:"output_dir"`
	Algorithms []string `yaml:"algorithms"`
	Compress   bool     `yaml:"compress"`
}

// StorageConfig selects where benchmark reports are uploaded.
type StorageConfig struct {
	S3  S3Config  `yaml:"s3"`
	GCS GCSConfig `yaml:"gcs"`
}

// S3Config configures uploads to S3-compatible storage.
type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// GCSConfig configures uploads to Google Cloud Storage.
type GCSConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

type Logging struct {
	Verbose bool `yaml:"verbose"`
}

// Load builds the configuration from defaults, an optional YAML file and
// KEYPAD_* environment variables, in that order. A .env file in the working
// directory is loaded first when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	normalizeConfig(&cfg)
	if err := keypad.ValidateDigits(cfg.Digits); err != nil {
		return Config{}, errors.Wrap(err, "config digits")
	}
	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Digits: keypad.DefaultDigits,
		Bench: BenchConfig{
			Runs:       defaultRuns,
			OutputDir:  defaultOutputDir,
			Algorithms: []string{AlgorithmExhaustive, AlgorithmExhaustiveParallel, AlgorithmGreedy},
		},
		Storage: StorageConfig{
			S3: S3Config{
				Region: defaultRegion,
				Bucket: defaultBucket,
			},
		},
	}
}

const (
	AlgorithmExhaustive         = "exhaustive"
	AlgorithmExhaustiveParallel = "exhaustive-parallel"
	AlgorithmGreedy             = "greedy"
)

func normalizeConfig(cfg *Config) {
	if cfg.Bench.Runs <= 0 {
		cfg.Bench.Runs = defaultRuns
	}
	if cfg.Bench.Workers < 0 {
		cfg.Bench.Workers = 0
	}
	cfg.Bench.OutputDir = strings.TrimSpace(cfg.Bench.OutputDir)
	if cfg.Bench.OutputDir == "" {
		cfg.Bench.OutputDir = defaultOutputDir
	}
	algorithms := cfg.Bench.Algorithms[:0]
	for _, a := range cfg.Bench.Algorithms {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			algorithms = append(algorithms, a)
		}
	}
	cfg.Bench.Algorithms = algorithms
	if len(cfg.Bench.Algorithms) == 0 {
		cfg.Bench.Algorithms = []string{AlgorithmExhaustive, AlgorithmExhaustiveParallel, AlgorithmGreedy}
	}
	cfg.Storage.S3.Prefix = strings.Trim(cfg.Storage.S3.Prefix, "/")
	cfg.Storage.GCS.Prefix = strings.Trim(cfg.Storage.GCS.Prefix, "/")
	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = defaultRegion
	}
}

// ValidAlgorithm reports whether name is a bench algorithm.
func ValidAlgorithm(name string) bool {
	switch name {
	case AlgorithmExhaustive, AlgorithmExhaustiveParallel, AlgorithmGreedy:
		return true
	}
	return false
}

func applyEnv(cfg *Config) error {
	if v := envValue("KEYPAD_DIGITS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "KEYPAD_DIGITS=%q", v)
		}
		cfg.Digits = n
	}
	if v := envValue("KEYPAD_BENCH_RUNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "KEYPAD_BENCH_RUNS=%q", v)
		}
		cfg.Bench.Runs = n
	}
	if v := envValue("KEYPAD_S3_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "KEYPAD_S3_ENABLED=%q", v)
		}
		cfg.Storage.S3.Enabled = enabled
	}
	cfg.Storage.S3.Endpoint = firstNonEmpty(envValue("KEYPAD_S3_ENDPOINT"), cfg.Storage.S3.Endpoint)
	cfg.Storage.S3.Region = firstNonEmpty(envValue("KEYPAD_S3_REGION"), cfg.Storage.S3.Region)
	cfg.Storage.S3.Bucket = firstNonEmpty(envValue("KEYPAD_S3_BUCKET"), cfg.Storage.S3.Bucket)
	cfg.Storage.S3.AccessKeyID = firstNonEmpty(envValue("KEYPAD_S3_ACCESS_KEY_ID"), cfg.Storage.S3.AccessKeyID)
	cfg.Storage.S3.SecretAccessKey = firstNonEmpty(envValue("KEYPAD_S3_SECRET_ACCESS_KEY"), cfg.Storage.S3.SecretAccessKey)
	cfg.Storage.GCS.Bucket = firstNonEmpty(envValue("KEYPAD_GCS_BUCKET"), cfg.Storage.GCS.Bucket)
	cfg.Storage.GCS.CredentialsFile = firstNonEmpty(envValue("KEYPAD_GCS_CREDENTIALS_FILE"), cfg.Storage.GCS.CredentialsFile)
	return nil
}

func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
