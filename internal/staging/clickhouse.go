package staging

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	apperrors "bristolgate/internal/errors"
	"bristolgate/pkg/contracts/domain"
)

// Client manages the ClickHouse connection pool the staging sources
// and the catalog share.
type Client struct {
	db *sql.DB
}

// ClientConfig holds ClickHouse connection settings.
type ClientConfig struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
}

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// WithHost sets database host.
func WithHost(host string) ClientOption {
	return func(c *ClientConfig) { c.Host = host }
}

// WithPort sets database port.
func WithPort(port int) ClientOption {
	return func(c *ClientConfig) { c.Port = port }
}

// WithDatabase sets database name.
func WithDatabase(database string) ClientOption {
	return func(c *ClientConfig) { c.Database = database }
}

// WithCredentials sets username and password.
func WithCredentials(user, password string) ClientOption {
	return func(c *ClientConfig) {
		c.User = user
		c.Password = password
	}
}

// WithMaxConnections sets max open and idle connections.
func WithMaxConnections(maxOpen, maxIdle int) ClientOption {
	return func(c *ClientConfig) {
		c.MaxOpenConns = maxOpen
		c.MaxIdleConns = maxIdle
	}
}

// WithTimeouts sets dial and read timeouts.
func WithTimeouts(dial, read time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.DialTimeout = dial
		c.ReadTimeout = read
	}
}

// NewClient creates a ClickHouse client with connection pool.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &ClientConfig{
		Port:            9000,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("staging: clickhouse host is required")
	}

	db, err := sql.Open("clickhouse", buildDSN(*cfg))
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}

	return &Client{db: db}, nil
}

// DB returns *sql.DB for direct use.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Health performs health check.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes connection pool.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func buildDSN(cfg ClientConfig) string {
	dsn := fmt.Sprintf("clickhouse://%s:%s@%s:%d/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	sep := "?"
	if cfg.DialTimeout > 0 {
		dsn += fmt.Sprintf("%sdial_timeout=%v", sep, cfg.DialTimeout)
		sep = "&"
	}
	if cfg.ReadTimeout > 0 {
		dsn += fmt.Sprintf("%sread_timeout=%v", sep, cfg.ReadTimeout)
	}
	return dsn
}

// QuoteTableSource reads a multi-field staging table shaped like
// stg_yahoo: one row per symbol and day carrying open, high, low,
// close and volume. Each field becomes its own suffixed series.
type QuoteTableSource struct {
	client *Client
	table  string
}

// NewQuoteTableSource creates a source over the named staging table.
func NewQuoteTableSource(client *Client, table string) *QuoteTableSource {
	return &QuoteTableSource{client: client, table: table}
}

// Name implements FactSource.
func (s *QuoteTableSource) Name() string {
	return s.table
}

// Facts implements FactSource.
func (s *QuoteTableSource) Facts(ctx context.Context) ([]domain.Fact, error) {
	start := time.Now()
	query := fmt.Sprintf(
		"SELECT date, symbol, open, high, low, close, volume FROM %s ORDER BY symbol, date", s.table)

	rows, err := s.client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.FatalIO(s.table, err)
	}
	defer rows.Close()

	var facts []domain.Fact
	for rows.Next() {
		var (
			day    time.Time
			symbol string
			fields = make([]sql.NullFloat64, 5)
		)
		if err := rows.Scan(&day, &symbol, &fields[0], &fields[1], &fields[2], &fields[3], &fields[4]); err != nil {
			return nil, apperrors.FatalIO(s.table, err)
		}
		for i, field := range quoteFields {
			if !fields[i].Valid {
				continue
			}
			facts = append(facts, domain.Fact{
				Date:   day,
				Series: SeriesName(symbol, field),
				Value:  fields[i].Float64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.FatalIO(s.table, err)
	}

	slog.InfoContext(ctx, "read staging table",
		slog.String("table", s.table),
		slog.Int("facts", len(facts)),
		slog.Duration("elapsed", time.Since(start)))
	return facts, nil
}

var quoteFields = []string{"open", "high", "low", "close", "volume"}

// MetricTableSource reads a symbol+metric+value staging table
// shaped like stg_fred or stg_baker. A metric of "value" maps to
// the bare symbol name; anything else is suffixed.
type MetricTableSource struct {
	client *Client
	table  string
}

// NewMetricTableSource creates a source over the named staging table.
func NewMetricTableSource(client *Client, table string) *MetricTableSource {
	return &MetricTableSource{client: client, table: table}
}

// Name implements FactSource.
func (s *MetricTableSource) Name() string {
	return s.table
}

// Facts implements FactSource.
func (s *MetricTableSource) Facts(ctx context.Context) ([]domain.Fact, error) {
	start := time.Now()
	query := fmt.Sprintf(
		"SELECT date, symbol, metric, value FROM %s ORDER BY symbol, metric, date", s.table)

	rows, err := s.client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.FatalIO(s.table, err)
	}
	defer rows.Close()

	var facts []domain.Fact
	for rows.Next() {
		var (
			day            time.Time
			symbol, metric string
			value          sql.NullFloat64
		)
		if err := rows.Scan(&day, &symbol, &metric, &value); err != nil {
			return nil, apperrors.FatalIO(s.table, err)
		}
		if !value.Valid {
			continue
		}
		facts = append(facts, domain.Fact{
			Date:   day,
			Series: SeriesName(symbol, metric),
			Value:  value.Float64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.FatalIO(s.table, err)
	}

	slog.InfoContext(ctx, "read staging table",
		slog.String("table", s.table),
		slog.Int("facts", len(facts)),
		slog.Duration("elapsed", time.Since(start)))
	return facts, nil
}

// ClickHouseCatalog stores symbol metadata in an append-only table.
type ClickHouseCatalog struct {
	client *Client
	table  string
}

// NewClickHouseCatalog creates a catalog over the named table.
func NewClickHouseCatalog(client *Client, table string) *ClickHouseCatalog {
	return &ClickHouseCatalog{client: client, table: table}
}

// Exists implements CatalogStore.
func (c *ClickHouseCatalog) Exists(ctx context.Context, symbol string) (bool, error) {
	query := fmt.Sprintf("SELECT count() FROM %s WHERE symbol = ?", c.table)
	var n uint64
	if err := c.client.db.QueryRowContext(ctx, query, symbol).Scan(&n); err != nil {
		return false, apperrors.FatalIO(c.table, err)
	}
	return n > 0, nil
}

// Get implements CatalogStore.
func (c *ClickHouseCatalog) Get(ctx context.Context, symbol string) (domain.SymbolRecord, bool, error) {
	query := fmt.Sprintf(
		"SELECT symbol, source, description, unit FROM %s WHERE symbol = ? LIMIT 1", c.table)
	var rec domain.SymbolRecord
	err := c.client.db.QueryRowContext(ctx, query, symbol).
		Scan(&rec.Symbol, &rec.Source, &rec.Description, &rec.Unit)
	if err == sql.ErrNoRows {
		return domain.SymbolRecord{}, false, nil
	}
	if err != nil {
		return domain.SymbolRecord{}, false, apperrors.FatalIO(c.table, err)
	}
	return rec, true, nil
}

// Append implements CatalogStore.
func (c *ClickHouseCatalog) Append(ctx context.Context, rec domain.SymbolRecord) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (symbol, source, description, unit) VALUES (?, ?, ?, ?)", c.table)
	if _, err := c.client.db.ExecContext(ctx, query,
		rec.Symbol, rec.Source, rec.Description, rec.Unit); err != nil {
		return apperrors.FatalIO(c.table, err)
	}
	return nil
}

// Symbols implements CatalogStore.
func (c *ClickHouseCatalog) Symbols(ctx context.Context) ([]domain.SymbolRecord, error) {
	query := fmt.Sprintf(
		"SELECT symbol, source, description, unit FROM %s ORDER BY symbol", c.table)
	rows, err := c.client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.FatalIO(c.table, err)
	}
	defer rows.Close()

	var records []domain.SymbolRecord
	for rows.Next() {
		var rec domain.SymbolRecord
		if err := rows.Scan(&rec.Symbol, &rec.Source, &rec.Description, &rec.Unit); err != nil {
			return nil, apperrors.FatalIO(c.table, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.FatalIO(c.table, err)
	}
	return records, nil
}
