package neo4jdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/edgehound/internal/platform/importerr"
	"github.com/yungbote/edgehound/internal/platform/logger"
)

const (
	DefaultURI         = "bolt://localhost:7687"
	DefaultUser        = "neo4j"
	DefaultTimeout     = 10 * time.Second
	DefaultMaxPoolSize = 1
)

type Config struct {
	URI         string
	User        string
	Password    string
	Database    string
	Timeout     time.Duration
	MaxPoolSize int
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.URI) == "" {
		c.URI = DefaultURI
	}
	if strings.TrimSpace(c.User) == "" {
		c.User = DefaultUser
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxPoolSize <= 0 {
		c.MaxPoolSize = DefaultMaxPoolSize
	}
	return c
}

// Client runs parameterized Cypher over a single driver. It is used from one
// goroutine; every call opens a short-lived auto-commit session.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
	tracer   trace.Tracer
}

// New builds the driver and verifies connectivity exactly once. Any failure is
// a connectivity error; there is no retry.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, importerr.Errorf(importerr.KindConfig, "neo4jdb.new", "logger required")
	}
	cfg = cfg.withDefaults()

	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = cfg.MaxPoolSize
		c.SocketConnectTimeout = cfg.Timeout
	})
	if err != nil {
		return nil, importerr.New(importerr.KindConnectivity, "init_driver", err)
	}

	vctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, importerr.New(importerr.KindConnectivity, "verify_connectivity", err)
	}

	log.Info("Connected to Neo4j", "uri", cfg.URI, "user", cfg.User, "database", cfg.Database)
	return &Client{
		Driver:   driver,
		Database: cfg.Database,
		log:      log.With("client", "Neo4jDB"),
		tracer:   otel.Tracer("edgehound/neo4jdb"),
	}, nil
}

// ValidateDomain checks that at least one node belongs to the AD domain.
func (c *Client) ValidateDomain(ctx context.Context, domain string) error {
	domain = strings.ToUpper(strings.TrimSpace(domain))
	if domain == "" {
		return nil
	}
	n, err := c.CountMatches(ctx, `MATCH (n) WHERE n.domain =~ $domain RETURN COUNT(n)`, map[string]any{
		"domain": DomainPattern(domain),
	})
	if err != nil {
		return importerr.New(importerr.KindConnectivity, "validate_domain", err)
	}
	if n < 1 {
		return importerr.Errorf(importerr.KindConnectivity, "validate_domain", "domain %q not present in store", domain)
	}
	return nil
}

// DomainPattern is the regex used to match a node's domain property.
func DomainPattern(domain string) string {
	return "[A-Z]*." + strings.ToUpper(strings.TrimSpace(domain))
}

// CountMatches runs a query whose first column of the first row is a count.
// An empty result counts as zero.
func (c *Client) CountMatches(ctx context.Context, query string, params map[string]any) (int64, error) {
	records, err := c.run(ctx, "count_matches", neo4j.AccessModeRead, query, params)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 || len(records[0].Values) == 0 {
		return 0, nil
	}
	n, ok := AsInt64(records[0].Values[0])
	if !ok {
		return 0, importerr.Errorf(importerr.KindStore, "count_matches", "unexpected count value %T", records[0].Values[0])
	}
	return n, nil
}

// Execute runs a write query and returns each row keyed by column name.
func (c *Client) Execute(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	records, err := c.run(ctx, "execute", neo4j.AccessModeWrite, query, params)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.AsMap())
	}
	return rows, nil
}

func (c *Client) run(ctx context.Context, op string, mode neo4j.AccessMode, query string, params map[string]any) ([]*neo4j.Record, error) {
	if c == nil || c.Driver == nil {
		return nil, importerr.Errorf(importerr.KindStore, op, "client closed")
	}
	ctx, span := c.tracer.Start(ctx, "neo4jdb."+op, trace.WithAttributes(
		attribute.String("db.system", "neo4j"),
		attribute.String("db.name", c.Database),
	))
	defer span.End()

	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: c.Database,
	})
	defer session.Close(ctx)

	start := time.Now()
	res, err := session.Run(ctx, query, params)
	var records []*neo4j.Record
	if err == nil {
		records, err = res.Collect(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
		c.log.Error("Query failed", "op", op, "error", err)
		return nil, importerr.New(importerr.KindStore, op, err)
	}
	c.log.Debug("Query ran", "op", op, "query", compact(query), "params", params, "rows", len(records), "elapsed", time.Since(start))
	return records, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	if err != nil {
		c.log.Error("Failed to close Neo4j driver", "error", err)
		return fmt.Errorf("neo4jdb: close: %w", err)
	}
	c.log.Info("Closed Neo4j driver")
	return nil
}

// AsInt64 converts the numeric types the driver may hand back for COUNT().
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
