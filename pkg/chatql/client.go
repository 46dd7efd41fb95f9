// Package chatql is the public facade over the query engine: session
// handling, table lifecycle and the insert/select operations, wired to the
// configured store backends.
package chatql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/chatql/chatql/internal/catalog"
	"github.com/chatql/chatql/internal/changefeed"
	"github.com/chatql/chatql/internal/config"
	"github.com/chatql/chatql/internal/core"
	"github.com/chatql/chatql/internal/engine"
	"github.com/chatql/chatql/internal/logging"
	"github.com/chatql/chatql/internal/recordstore"
	"github.com/chatql/chatql/internal/session"
)

// ErrNotSupported is returned for operations the append-only log cannot
// express, such as UPDATE and DELETE.
var ErrNotSupported = errors.New("operation not supported: records are append-only")

// Result types re-exported for callers.
type (
	InsertResult = engine.InsertResult
	ResultSet    = engine.ResultSet
)

// Config is the public configuration type.
type Config = config.Config

// DefaultConfig returns the all-in-memory default configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a YAML or JSON configuration file and overlays CHATQL_*
// environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Client is the top-level entry point. One client serves many tenants and
// users; per-call identity comes in through tenantID and userID.
type Client struct {
	cfg      *config.Config
	logger   *slog.Logger
	records  core.RecordStore
	decls    core.DeclarationStore
	sessions core.SessionStore
	feed     changefeed.Queue
	engine   *engine.Engine
	registry *catalog.Registry
	drainer  *Drainer

	mu      sync.Mutex
	handler EventHandler
	closed  bool
}

// New builds a client from the configuration. A nil config gets defaults.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	records, err := recordstore.Create(recordStoreConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create record store: %w", err)
	}

	decls, err := declarationStore(cfg, records)
	if err != nil {
		records.Close()
		return nil, err
	}

	sessions, err := sessionStore(cfg, records)
	if err != nil {
		decls.Close()
		records.Close()
		return nil, err
	}

	var feed changefeed.Queue
	if cfg.ChangeFeed.Enabled {
		feed, err = changeFeedQueue(cfg)
		if err != nil {
			sessions.Close()
			decls.Close()
			records.Close()
			return nil, err
		}
	}

	c := &Client{
		cfg:      cfg,
		logger:   logger,
		records:  records,
		decls:    decls,
		sessions: sessions,
		feed:     feed,
		registry: catalog.NewRegistry(decls, logger),
		engine: engine.New(records, decls, feed, engine.Options{
			ReadWindow:       cfg.Engine.ReadWindow,
			DisplayLimit:     cfg.Engine.DisplayLimit,
			StrictUniqueness: cfg.Engine.StrictUniqueness,
		}, logger),
	}
	logger.Info("client ready",
		"record_log", cfg.RecordLog.Type,
		"catalog", cfg.Catalog.Type,
		"change_feed", cfg.ChangeFeed.Enabled)
	return c, nil
}

func recordStoreConfig(cfg *config.Config) recordstore.Config {
	return recordstore.Config{
		Type:       cfg.RecordLog.Type,
		MaxRecords: cfg.RecordLog.MaxRecords,

		Endpoints:    cfg.RecordLog.Redis.Endpoints,
		Password:     cfg.RecordLog.Redis.Password,
		DB:           cfg.RecordLog.Redis.DB,
		PoolSize:     cfg.RecordLog.Redis.PoolSize,
		MinIdleConns: cfg.RecordLog.Redis.MinIdleConns,
		DialTimeout:  cfg.RecordLog.Redis.DialTimeout,
		ReadTimeout:  cfg.RecordLog.Redis.ReadTimeout,
		WriteTimeout: cfg.RecordLog.Redis.WriteTimeout,

		Region:          cfg.RecordLog.DynamoDB.Region,
		TableName:       cfg.RecordLog.DynamoDB.TableName,
		Endpoint:        cfg.RecordLog.DynamoDB.Endpoint,
		AccessKeyID:     cfg.RecordLog.DynamoDB.AccessKeyID,
		SecretAccessKey: cfg.RecordLog.DynamoDB.SecretAccessKey,

		Host:              cfg.RecordLog.MySQL.Host,
		Port:              cfg.RecordLog.MySQL.Port,
		Database:          cfg.RecordLog.MySQL.Database,
		Username:          cfg.RecordLog.MySQL.Username,
		DBPassword:        cfg.RecordLog.MySQL.Password,
		MaxOpenConns:      cfg.RecordLog.MySQL.MaxOpenConns,
		MaxIdleConns:      cfg.RecordLog.MySQL.MaxIdleConns,
		ConnMaxLifetime:   cfg.RecordLog.MySQL.ConnMaxLifetime,
		ConnectionTimeout: cfg.RecordLog.MySQL.ConnectionTimeout,
	}
}

// declarationStore builds the catalog backend. "shared" piggybacks on the
// record log's connection.
func declarationStore(cfg *config.Config, records core.RecordStore) (core.DeclarationStore, error) {
	switch cfg.Catalog.Type {
	case "memory":
		return catalog.NewMemoryDeclarationStore(), nil
	case "shared":
		switch store := records.(type) {
		case *recordstore.RedisStore:
			return catalog.NewRedisDeclarationStore(store.Client()), nil
		case *recordstore.MySQLStore:
			return catalog.NewMySQLDeclarationStore(context.Background(), store.DB())
		default:
			return nil, fmt.Errorf("catalog type %q cannot share a %q record log",
				cfg.Catalog.Type, cfg.RecordLog.Type)
		}
	default:
		return nil, fmt.Errorf("unknown catalog type: %q", cfg.Catalog.Type)
	}
}

func sessionStore(cfg *config.Config, records core.RecordStore) (core.SessionStore, error) {
	switch cfg.Session.Type {
	case "memory":
		return session.NewMemoryStore(), nil
	case "shared":
		store, ok := records.(*recordstore.RedisStore)
		if !ok {
			return nil, fmt.Errorf("session store type %q requires a redis record log", cfg.Session.Type)
		}
		return session.NewRedisStore(store.Client(), cfg.Session.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session store type: %q", cfg.Session.Type)
	}
}

func changeFeedQueue(cfg *config.Config) (changefeed.Queue, error) {
	switch cfg.ChangeFeed.QueueType {
	case "memory":
		return changefeed.NewMemoryQueue(cfg.ChangeFeed.QueueBufferSize), nil
	case "kafka":
		return changefeed.NewKafkaQueue(changefeed.KafkaConfig{
			Brokers:      cfg.ChangeFeed.Kafka.Brokers,
			Topic:        cfg.ChangeFeed.Kafka.Topic,
			GroupID:      cfg.ChangeFeed.Kafka.GroupID,
			BatchSize:    cfg.ChangeFeed.Kafka.BatchSize,
			BatchTimeout: cfg.ChangeFeed.Kafka.BatchTimeout,
			WriteTimeout: cfg.ChangeFeed.Kafka.WriteTimeout,
			MinBytes:     cfg.ChangeFeed.Kafka.MinBytes,
			MaxBytes:     cfg.ChangeFeed.Kafka.MaxBytes,
			MaxWait:      cfg.ChangeFeed.Kafka.MaxWait,
			RequiredAcks: cfg.ChangeFeed.Kafka.RequiredAcks,
		})
	default:
		return nil, fmt.Errorf("unknown change-feed queue type: %q", cfg.ChangeFeed.QueueType)
	}
}

// sessionFor resolves a SessionContext from the session store. A user with
// no selected table-set gets an empty TableSet; the engine rejects the
// operations that need one.
func (c *Client) sessionFor(ctx context.Context, tenantID, userID string) (core.SessionContext, error) {
	name, ok, err := c.sessions.GetTableSet(ctx, tenantID, userID)
	if err != nil {
		return core.SessionContext{}, fmt.Errorf("%w: reading session: %v", core.ErrStoreUnavailable, err)
	}
	sc := core.SessionContext{TenantID: tenantID, UserID: userID}
	if ok {
		sc.TableSet = name
	}
	return sc, nil
}

// UseTableSet selects the table-set subsequent operations run against. The
// name is sanitized the same way table names are.
func (c *Client) UseTableSet(ctx context.Context, tenantID, userID, name string) (string, error) {
	sanitized, _ := core.SanitizeTableName(name)
	if sanitized == "" {
		return "", fmt.Errorf("%w: table-set name %q has no usable characters", core.ErrSchemaSyntax, name)
	}
	if err := c.sessions.SetTableSet(ctx, tenantID, userID, sanitized); err != nil {
		return "", fmt.Errorf("%w: storing session: %v", core.ErrStoreUnavailable, err)
	}
	c.logger.Info("table-set selected", "tenant", tenantID, "user", userID, "table_set", sanitized)
	return sanitized, nil
}

// CurrentTableSet returns the caller's selected table-set, if any.
func (c *Client) CurrentTableSet(ctx context.Context, tenantID, userID string) (string, bool, error) {
	return c.sessions.GetTableSet(ctx, tenantID, userID)
}

// CreateTable registers a table with the given declaration and returns the
// canonical rendering that was stored.
func (c *Client) CreateTable(ctx context.Context, tenantID, userID, table, declaration string) (string, error) {
	sc, err := c.sessionFor(ctx, tenantID, userID)
	if err != nil {
		return "", err
	}
	schema, err := c.registry.CreateTable(ctx, sc, table, declaration)
	if err != nil {
		return "", err
	}
	return schema.Render(), nil
}

// logDeleter is implemented by backends that can discard a whole table log.
type logDeleter interface {
	DeleteLog(ctx context.Context, tableID string) error
}

// DropTable removes a table's declaration and, where the backend supports
// it, the table's record log.
func (c *Client) DropTable(ctx context.Context, tenantID, userID, table string) error {
	sc, err := c.sessionFor(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if err := c.registry.DropTable(ctx, sc, table); err != nil {
		return err
	}
	if deleter, ok := c.records.(logDeleter); ok {
		if err := deleter.DeleteLog(ctx, sc.TableID(table)); err != nil {
			c.logger.Warn("failed to delete record log for dropped table",
				"table", sc.TableID(table), "error", err)
		}
	}
	return nil
}

// ListTables returns the table names in the caller's table-set.
func (c *Client) ListTables(ctx context.Context, tenantID, userID string) ([]string, error) {
	sc, err := c.sessionFor(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return c.registry.ListTables(ctx, sc)
}

// DescribeTable returns a table's declaration in canonical form.
func (c *Client) DescribeTable(ctx context.Context, tenantID, userID, table string) (string, error) {
	sc, err := c.sessionFor(ctx, tenantID, userID)
	if err != nil {
		return "", err
	}
	schema, err := c.registry.DescribeTable(ctx, sc, table)
	if err != nil {
		return "", err
	}
	if len(schema) == 0 {
		return "(schemaless)", nil
	}
	return schema.Render(), nil
}

// Insert validates and appends one row. valuesText is the comma-separated
// literal list, e.g. "1, 'alice', true".
func (c *Client) Insert(ctx context.Context, tenantID, userID, table, valuesText string) (*InsertResult, error) {
	sc, err := c.sessionFor(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return c.engine.Insert(ctx, sc, table, valuesText)
}

// Select runs a query over the table's recent records. columns is "*" or a
// comma-separated projection list; whereClause may be empty.
func (c *Client) Select(ctx context.Context, tenantID, userID, table, columns string, distinct bool, whereClause string) (*ResultSet, error) {
	sc, err := c.sessionFor(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return c.engine.Select(ctx, sc, table, columns, distinct, whereClause)
}

// Explain describes how a select would execute without running it.
func (c *Client) Explain(ctx context.Context, tenantID, userID, table, columns string, distinct bool, whereClause string) (string, error) {
	sc, err := c.sessionFor(ctx, tenantID, userID)
	if err != nil {
		return "", err
	}
	schema, err := c.registry.DescribeTable(ctx, sc, table)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "scan %s (window %d, newest first)\n", sc.TableID(table), c.cfg.Engine.ReadWindow)
	if len(schema) == 0 {
		b.WriteString("schema: none, positional columns\n")
	} else {
		fmt.Fprintf(&b, "schema: %s\n", schema.Render())
	}
	if strings.TrimSpace(whereClause) != "" {
		fmt.Fprintf(&b, "filter: %s\n", strings.TrimSpace(whereClause))
	} else {
		b.WriteString("filter: none\n")
	}
	fmt.Fprintf(&b, "project: %s\n", strings.TrimSpace(columns))
	if distinct {
		b.WriteString("distinct: yes\n")
	}
	fmt.Fprintf(&b, "display: first %d matches", c.cfg.Engine.DisplayLimit)
	return b.String(), nil
}

// Update is not supported; the record log is append-only.
func (c *Client) Update(context.Context, string, string, string, string, string) error {
	return ErrNotSupported
}

// Delete is not supported; the record log is append-only.
func (c *Client) Delete(context.Context, string, string, string, string) error {
	return ErrNotSupported
}

// OnChange registers the handler the drainer hands change events to. Must
// be called before Start.
func (c *Client) OnChange(handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// Start launches the change-feed drainer when a feed is configured.
func (c *Client) Start(ctx context.Context) {
	if c.feed == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drainer == nil {
		c.drainer = NewDrainer(c.feed, c.handler, DrainerConfig{
			DrainRate:    c.cfg.ChangeFeed.DrainRate,
			BatchSize:    c.cfg.ChangeFeed.BatchSize,
			PollInterval: c.cfg.ChangeFeed.DrainInterval,
		}, c.logger)
	}
	c.drainer.Start(ctx)
}

// Stop halts the drainer without releasing store connections.
func (c *Client) Stop() {
	c.mu.Lock()
	drainer := c.drainer
	c.mu.Unlock()
	if drainer != nil {
		drainer.Stop()
	}
}

// Close stops the drainer and releases every backend connection.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.Stop()

	var errs []error
	if c.feed != nil {
		if err := c.feed.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.sessions.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.decls.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.records.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
