// Package recordstore provides the append-only per-table record log
// backends. Each backend registers itself with the strategy factory from its
// init function; callers create stores through Create.
package recordstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/chatql/chatql/internal/core"
)

// Config carries everything any backend needs; each backend validates the
// fields it cares about.
type Config struct {
	// Type selects the backend: "memory", "redis", "dynamodb" or "mysql".
	Type string

	// MaxRecords caps a log's retained length where the backend supports
	// trimming. Zero means unbounded.
	MaxRecords int

	// Redis fields.
	Endpoints    []string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// DynamoDB fields.
	Region          string
	TableName       string
	Endpoint        string // optional, for LocalStack
	AccessKeyID     string // optional, IAM role otherwise
	SecretAccessKey string // optional, IAM role otherwise

	// MySQL fields.
	Host              string
	Port              int
	Database          string
	Username          string
	DBPassword        string
	MaxOpenConns      int
	MaxIdleConns      int
	ConnMaxLifetime   time.Duration
	ConnectionTimeout time.Duration
}

// Factory is the strategy interface each backend implements.
type Factory interface {
	// Create builds a record store from the configuration.
	Create(config Config) (core.RecordStore, error)

	// Type returns the backend identifier.
	Type() string

	// Validate checks the backend-specific configuration.
	Validate(config Config) error
}

var (
	factoryRegistry = make(map[string]Factory)
	registryMutex   sync.RWMutex
)

// RegisterFactory registers a backend factory. Called from each backend's
// init function; duplicate or empty types panic at startup.
func RegisterFactory(factory Factory) {
	if factory == nil {
		panic("factory cannot be nil")
	}
	if factory.Type() == "" {
		panic("factory type cannot be empty")
	}

	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, exists := factoryRegistry[factory.Type()]; exists {
		panic(fmt.Sprintf("record store factory for type %q is already registered", factory.Type()))
	}
	factoryRegistry[factory.Type()] = factory
}

// Create builds a record store using the factory registered for config.Type.
func Create(config Config) (core.RecordStore, error) {
	if config.Type == "" {
		return nil, fmt.Errorf("record store type is required")
	}

	registryMutex.RLock()
	factory, exists := factoryRegistry[config.Type]
	registryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported record store type: %s", config.Type)
	}
	if err := factory.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", config.Type, err)
	}
	return factory.Create(config)
}

// RegisteredTypes returns the identifiers of all registered backends.
func RegisteredTypes() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	types := make([]string, 0, len(factoryRegistry))
	for t := range factoryRegistry {
		types = append(types, t)
	}
	return types
}
