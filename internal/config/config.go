// Package config loads engine configuration from files and the
// environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	RecordLog  RecordLogConfig  `yaml:"record_log" json:"record_log"`
	Catalog    CatalogConfig    `yaml:"catalog" json:"catalog"`
	Session    SessionConfig    `yaml:"session" json:"session"`
	ChangeFeed ChangeFeedConfig `yaml:"change_feed" json:"change_feed"`
	Engine     EngineConfig     `yaml:"engine" json:"engine"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// RecordLogConfig selects and configures the record store backend.
type RecordLogConfig struct {
	Type       string `yaml:"type" json:"type"`
	MaxRecords int    `yaml:"max_records,omitempty" json:"max_records,omitempty"`

	Redis    RedisConfig    `yaml:"redis,omitempty" json:"redis,omitempty"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb,omitempty" json:"dynamodb,omitempty"`
	MySQL    MySQLConfig    `yaml:"mysql,omitempty" json:"mysql,omitempty"`
}

// RedisConfig contains Redis-specific configuration.
type RedisConfig struct {
	Endpoints    []string      `yaml:"endpoints" json:"endpoints"`
	Password     string        `yaml:"password,omitempty" json:"password,omitempty"`
	DB           int           `yaml:"db,omitempty" json:"db,omitempty"`
	PoolSize     int           `yaml:"pool_size,omitempty" json:"pool_size,omitempty"`
	MinIdleConns int           `yaml:"min_idle_conns,omitempty" json:"min_idle_conns,omitempty"`
	DialTimeout  time.Duration `yaml:"dial_timeout,omitempty" json:"dial_timeout,omitempty"`
	ReadTimeout  time.Duration `yaml:"read_timeout,omitempty" json:"read_timeout,omitempty"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty" json:"write_timeout,omitempty"`
}

// DynamoDBConfig contains DynamoDB-specific configuration.
type DynamoDBConfig struct {
	Region          string `yaml:"region" json:"region"`
	TableName       string `yaml:"table_name" json:"table_name"`
	Endpoint        string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" json:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" json:"secret_access_key,omitempty"`
}

// MySQLConfig contains MySQL-specific configuration.
type MySQLConfig struct {
	Host              string        `yaml:"host" json:"host"`
	Port              int           `yaml:"port" json:"port"`
	Database          string        `yaml:"database" json:"database"`
	Username          string        `yaml:"username" json:"username"`
	Password          string        `yaml:"password,omitempty" json:"password,omitempty"`
	MaxOpenConns      int           `yaml:"max_open_conns,omitempty" json:"max_open_conns,omitempty"`
	MaxIdleConns      int           `yaml:"max_idle_conns,omitempty" json:"max_idle_conns,omitempty"`
	ConnMaxLifetime   time.Duration `yaml:"conn_max_lifetime,omitempty" json:"conn_max_lifetime,omitempty"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout,omitempty" json:"connection_timeout,omitempty"`
}

// CatalogConfig selects the declaration store backend. "shared" reuses the
// record log's connection where the backend supports it.
type CatalogConfig struct {
	Type string `yaml:"type" json:"type"`
}

// SessionConfig selects the session store backend.
type SessionConfig struct {
	Type string        `yaml:"type" json:"type"`
	TTL  time.Duration `yaml:"ttl,omitempty" json:"ttl,omitempty"`
}

// ChangeFeedConfig configures the insert event feed and its drainer.
type ChangeFeedConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	QueueType       string        `yaml:"queue_type" json:"queue_type"`
	QueueBufferSize int           `yaml:"queue_buffer_size,omitempty" json:"queue_buffer_size,omitempty"`
	BatchSize       int           `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	DrainRate       int           `yaml:"drain_rate,omitempty" json:"drain_rate,omitempty"`
	Kafka           KafkaConfig   `yaml:"kafka,omitempty" json:"kafka,omitempty"`
	DrainInterval   time.Duration `yaml:"drain_interval,omitempty" json:"drain_interval,omitempty"`
}

// KafkaConfig contains Kafka-specific configuration.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers" json:"brokers"`
	Topic        string        `yaml:"topic" json:"topic"`
	GroupID      string        `yaml:"group_id" json:"group_id"`
	BatchSize    int           `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	BatchTimeout time.Duration `yaml:"batch_timeout,omitempty" json:"batch_timeout,omitempty"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty" json:"write_timeout,omitempty"`
	RequiredAcks int           `yaml:"required_acks,omitempty" json:"required_acks,omitempty"`
	MinBytes     int           `yaml:"min_bytes,omitempty" json:"min_bytes,omitempty"`
	MaxBytes     int           `yaml:"max_bytes,omitempty" json:"max_bytes,omitempty"`
	MaxWait      time.Duration `yaml:"max_wait,omitempty" json:"max_wait,omitempty"`
}

// EngineConfig tunes query processing.
type EngineConfig struct {
	ReadWindow       int  `yaml:"read_window,omitempty" json:"read_window,omitempty"`
	DisplayLimit     int  `yaml:"display_limit,omitempty" json:"display_limit,omitempty"`
	StrictUniqueness bool `yaml:"strict_uniqueness,omitempty" json:"strict_uniqueness,omitempty"`
}

// LoggingConfig tunes the process-wide logger.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// Default returns a configuration with sensible defaults: everything in
// memory, uniqueness fail-open, change feed disabled.
func Default() *Config {
	return &Config{
		RecordLog: RecordLogConfig{
			Type:       "memory",
			MaxRecords: 10000,
			Redis: RedisConfig{
				Endpoints:    []string{"localhost:6379"},
				PoolSize:     10,
				MinIdleConns: 5,
				DialTimeout:  5 * time.Second,
				ReadTimeout:  3 * time.Second,
				WriteTimeout: 3 * time.Second,
			},
			DynamoDB: DynamoDBConfig{
				Region:    "us-east-1",
				TableName: "chatql-records",
			},
			MySQL: MySQLConfig{
				Host:              "localhost",
				Port:              3306,
				MaxOpenConns:      25,
				MaxIdleConns:      5,
				ConnMaxLifetime:   5 * time.Minute,
				ConnectionTimeout: 10 * time.Second,
			},
		},
		Catalog: CatalogConfig{Type: "memory"},
		Session: SessionConfig{Type: "memory", TTL: 30 * 24 * time.Hour},
		ChangeFeed: ChangeFeedConfig{
			Enabled:         false,
			QueueType:       "memory",
			QueueBufferSize: 10000,
			BatchSize:       100,
			DrainRate:       50,
			DrainInterval:   100 * time.Millisecond,
			Kafka: KafkaConfig{
				Brokers:      []string{"localhost:9092"},
				Topic:        "chatql-changefeed",
				GroupID:      "chatql-changefeed",
				BatchSize:    100,
				BatchTimeout: 10 * time.Millisecond,
				WriteTimeout: 10 * time.Second,
				RequiredAcks: -1,
				MinBytes:     1,
				MaxBytes:     10 * 1024 * 1024,
				MaxWait:      100 * time.Millisecond,
			},
		},
		Engine: EngineConfig{
			ReadWindow:       100,
			DisplayLimit:     20,
			StrictUniqueness: false,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file, layered over
// defaults. The format follows the file extension.
func LoadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// LoadFromEnv overlays CHATQL_* environment variables onto the config.
// Examples:
//   - CHATQL_RECORDLOG_TYPE=redis
//   - CHATQL_RECORDLOG_ENDPOINTS=localhost:6379,localhost:6380
//   - CHATQL_MYSQL_HOST=localhost
//   - CHATQL_ENGINE_READ_WINDOW=200
func (c *Config) LoadFromEnv() {
	if val := os.Getenv("CHATQL_RECORDLOG_TYPE"); val != "" {
		c.RecordLog.Type = val
	}
	if val := os.Getenv("CHATQL_RECORDLOG_MAX_RECORDS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.RecordLog.MaxRecords = n
		}
	}
	if val := os.Getenv("CHATQL_RECORDLOG_ENDPOINTS"); val != "" {
		c.RecordLog.Redis.Endpoints = strings.Split(val, ",")
	}
	if val := os.Getenv("CHATQL_RECORDLOG_PASSWORD"); val != "" {
		c.RecordLog.Redis.Password = val
	}
	if val := os.Getenv("CHATQL_RECORDLOG_DB"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.RecordLog.Redis.DB = n
		}
	}
	if val := os.Getenv("CHATQL_DYNAMODB_REGION"); val != "" {
		c.RecordLog.DynamoDB.Region = val
	}
	if val := os.Getenv("CHATQL_DYNAMODB_TABLE"); val != "" {
		c.RecordLog.DynamoDB.TableName = val
	}
	if val := os.Getenv("CHATQL_DYNAMODB_ENDPOINT"); val != "" {
		c.RecordLog.DynamoDB.Endpoint = val
	}
	if val := os.Getenv("CHATQL_MYSQL_HOST"); val != "" {
		c.RecordLog.MySQL.Host = val
	}
	if val := os.Getenv("CHATQL_MYSQL_PORT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.RecordLog.MySQL.Port = n
		}
	}
	if val := os.Getenv("CHATQL_MYSQL_DATABASE"); val != "" {
		c.RecordLog.MySQL.Database = val
	}
	if val := os.Getenv("CHATQL_MYSQL_USERNAME"); val != "" {
		c.RecordLog.MySQL.Username = val
	}
	if val := os.Getenv("CHATQL_MYSQL_PASSWORD"); val != "" {
		c.RecordLog.MySQL.Password = val
	}
	if val := os.Getenv("CHATQL_CATALOG_TYPE"); val != "" {
		c.Catalog.Type = val
	}
	if val := os.Getenv("CHATQL_SESSION_TYPE"); val != "" {
		c.Session.Type = val
	}
	if val := os.Getenv("CHATQL_CHANGEFEED_ENABLED"); val != "" {
		c.ChangeFeed.Enabled = val == "true" || val == "1"
	}
	if val := os.Getenv("CHATQL_CHANGEFEED_QUEUE_TYPE"); val != "" {
		c.ChangeFeed.QueueType = val
	}
	if val := os.Getenv("CHATQL_CHANGEFEED_BROKERS"); val != "" {
		c.ChangeFeed.Kafka.Brokers = strings.Split(val, ",")
	}
	if val := os.Getenv("CHATQL_CHANGEFEED_TOPIC"); val != "" {
		c.ChangeFeed.Kafka.Topic = val
	}
	if val := os.Getenv("CHATQL_ENGINE_READ_WINDOW"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Engine.ReadWindow = n
		}
	}
	if val := os.Getenv("CHATQL_ENGINE_DISPLAY_LIMIT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Engine.DisplayLimit = n
		}
	}
	if val := os.Getenv("CHATQL_ENGINE_STRICT_UNIQUENESS"); val != "" {
		c.Engine.StrictUniqueness = val == "true" || val == "1"
	}
	if val := os.Getenv("CHATQL_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv("CHATQL_LOG_FORMAT"); val != "" {
		c.Logging.Format = val
	}
}

// Validate checks cross-field constraints the struct tags cannot express.
func (c *Config) Validate() error {
	switch c.RecordLog.Type {
	case "memory", "redis", "dynamodb", "mysql":
	default:
		return fmt.Errorf("unknown record log type: %q", c.RecordLog.Type)
	}

	switch c.Catalog.Type {
	case "memory", "shared":
	default:
		return fmt.Errorf("unknown catalog type: %q", c.Catalog.Type)
	}
	if c.Catalog.Type == "shared" && c.RecordLog.Type != "redis" && c.RecordLog.Type != "mysql" {
		return fmt.Errorf("catalog type %q requires a redis or mysql record log, got %q",
			c.Catalog.Type, c.RecordLog.Type)
	}

	switch c.Session.Type {
	case "memory", "shared":
	default:
		return fmt.Errorf("unknown session store type: %q", c.Session.Type)
	}
	if c.Session.Type == "shared" && c.RecordLog.Type != "redis" {
		return fmt.Errorf("session store type %q requires a redis record log, got %q",
			c.Session.Type, c.RecordLog.Type)
	}

	if c.ChangeFeed.Enabled {
		switch c.ChangeFeed.QueueType {
		case "memory", "kafka":
		default:
			return fmt.Errorf("unknown change-feed queue type: %q", c.ChangeFeed.QueueType)
		}
		if c.ChangeFeed.QueueType == "kafka" {
			if len(c.ChangeFeed.Kafka.Brokers) == 0 {
				return fmt.Errorf("change feed requires at least one Kafka broker")
			}
			if c.ChangeFeed.Kafka.Topic == "" {
				return fmt.Errorf("change feed requires a Kafka topic")
			}
		}
		if c.ChangeFeed.DrainRate <= 0 {
			return fmt.Errorf("change-feed drain rate must be positive, got %d", c.ChangeFeed.DrainRate)
		}
	}

	if c.Engine.ReadWindow <= 0 {
		return fmt.Errorf("read window must be positive, got %d", c.Engine.ReadWindow)
	}
	if c.Engine.DisplayLimit <= 0 {
		return fmt.Errorf("display limit must be positive, got %d", c.Engine.DisplayLimit)
	}
	return nil
}
