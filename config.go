package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFile    = "./config.yml"
	ConfigEnvFile = "./config.env"
	ConfigPrefix  = "BKLS"

	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendBadger = "badger"

	DefaultStorageKey     = "booklist-v1"
	DefaultBucketName     = "booklist"
	DefaultLogFolder      = "./logs"
	DefaultLogMaxSize     = 10
	DefaultMaxImportSize  = 5 << 20
	DefaultRequestTimeout = 30 * time.Second
	DefaultImportRate     = 10
	DefaultImportBurst    = 5
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string        `yaml:"git_commit" envconfig:"BKLS_GIT_COMMIT"`
	GitTag             string        `yaml:"git_tag" envconfig:"BKLS_GIT_TAG"`
	BuildTime          string        `yaml:"build_time" envconfig:"BKLS_BUILD_TIME"`
	IsProduction       bool          `yaml:"is_production" envconfig:"BKLS_IS_PRODUCTION"`
	LogLevel           zapcore.Level `yaml:"log_level" envconfig:"BKLS_LOG_LEVEL"`
	LogFolder          string        `yaml:"log_folder" envconfig:"BKLS_LOG_FOLDER"`
	LogMaxSize         int           `yaml:"log_max_size" envconfig:"BKLS_LOG_MAX_SIZE"`
	ProfilerEnable     bool          `yaml:"profiler_enable" envconfig:"BKLS_PROFILER_ENABLE"`
	OpsEndpointsEnable bool          `yaml:"ops_endpoints_enable" envconfig:"BKLS_OPS_ENDPOINTS_ENABLE"`
	Server             ServerConfig  `yaml:"server"`
	Storage            StorageConfig `yaml:"storage"`
	Redis              RedisConfig   `yaml:"redis"`
	BoltDB             BoltDBConfig  `yaml:"boltdb"`
	BadgerDB           BadgerConfig  `yaml:"badgerdb"`
}

type ServerConfig struct {
	Host                    string        `yaml:"host" envconfig:"BKLS_SERVER_HOST"`
	Port                    string        `yaml:"port" envconfig:"BKLS_SERVER_PORT"`
	ReadTimeout             time.Duration `yaml:"read_timeout" envconfig:"BKLS_SERVER_READ_TIMEOUT"`
	WriteTimeout            time.Duration `yaml:"write_timeout" envconfig:"BKLS_SERVER_WRITE_TIMEOUT"`
	RequestTimeout          time.Duration `yaml:"request_timeout" envconfig:"BKLS_SERVER_REQUEST_TIMEOUT"`
	LongRequestWriteTimeout time.Duration `yaml:"long_request_write_timeout" envconfig:"BKLS_SERVER_LONG_REQUEST_WRITE_TIMEOUT"` // export downloads
	ShutdownTimeout         time.Duration `yaml:"shutdown_timeout" envconfig:"BKLS_SERVER_SHUTDOWN_TIMEOUT"`
	MaxImportSize           int64         `yaml:"max_import_size" envconfig:"BKLS_SERVER_MAX_IMPORT_SIZE"`
	ImportRatePerMinute     int           `yaml:"import_rate_per_minute" envconfig:"BKLS_SERVER_IMPORT_RATE_PER_MINUTE"`
	ImportBurst             int           `yaml:"import_burst" envconfig:"BKLS_SERVER_IMPORT_BURST"`
	TrustProxyHeaders       bool          `yaml:"trust_proxy_headers" envconfig:"BKLS_SERVER_TRUST_PROXY_HEADERS"` // X-Real-IP / X-Forwarded-For
}

// StorageConfig selects where the book list mirror lives.
type StorageConfig struct {
	Backend string `yaml:"backend" envconfig:"BKLS_STORAGE_BACKEND"`
	Key     string `yaml:"key" envconfig:"BKLS_STORAGE_KEY"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"BKLS_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"BKLS_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"BKLS_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"BKLS_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"BKLS_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BKLS_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"BKLS_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"BKLS_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"BKLS_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BKLS_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"BKLS_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"BKLS_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"BKLS_BOLTDB_BUCKET_NAME"`
}

type BadgerConfig struct {
	Dir        string `yaml:"dir" envconfig:"BKLS_BADGERDB_DIR"`
	SyncWrites bool   `yaml:"sync_writes" envconfig:"BKLS_BADGERDB_SYNC_WRITES"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.LogFolder) == 0 {
		config.LogFolder = DefaultLogFolder
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = DefaultLogMaxSize
	}

	if config.Server.MaxImportSize <= 0 {
		config.Server.MaxImportSize = DefaultMaxImportSize
	}

	if config.Server.ImportRatePerMinute <= 0 {
		config.Server.ImportRatePerMinute = DefaultImportRate
	}

	if config.Server.ImportBurst <= 0 {
		config.Server.ImportBurst = DefaultImportBurst
	}

	if config.Server.RequestTimeout <= 0 {
		config.Server.RequestTimeout = DefaultRequestTimeout
	}

	if len(config.Storage.Backend) == 0 {
		config.Storage.Backend = BackendBolt
	}

	if len(config.Storage.Key) == 0 {
		config.Storage.Key = DefaultStorageKey
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	switch config.Storage.Backend {
	case BackendBolt:
		if len(config.BoltDB.FilePath) == 0 {
			return errors.New("make sure to set a valid boltdb file path in configuration file")
		}
		if len(config.BoltDB.BucketName) == 0 {
			config.BoltDB.BucketName = DefaultBucketName
		}
	case BackendRedis:
		if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
			return errors.New("make sure to set valid redis address and port in configuration file")
		}
	case BackendBadger:
		if len(config.BadgerDB.Dir) == 0 {
			return errors.New("make sure to set a valid badger folder in configuration file")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q. use %s, %s or %s", config.Storage.Backend, BackendBolt, BackendRedis, BackendBadger)
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The env file is optional.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile(ConfigFile)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load(ConfigEnvFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `BKLS`.
	err = LoadConfigEnvs(ConfigPrefix, config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
