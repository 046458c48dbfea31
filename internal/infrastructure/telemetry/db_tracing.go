package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQuery = 200 * time.Millisecond

// DBTracingConfig controls the spans recorded around gorm statements
type DBTracingConfig struct {
	Enabled bool
	// QueryVariables puts bind values into db.statement. Development only.
	QueryVariables bool
	SlowQuery      time.Duration
	DBSystem       string
	// Provider overrides the global tracer provider
	Provider trace.TracerProvider
}

func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{SlowQuery: defaultSlowQuery, DBSystem: "sqlite"}
}

// DBSystemForDriver maps a config driver name to its db.system value
func DBSystemForDriver(driver string) string {
	if driver == "postgres" {
		return "postgresql"
	}
	return driver
}

// DBTracingPlugin installs otelgorm on a gorm.DB and adds row counts, table
// names and slow query markers to its spans.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQuery <= 0 {
		cfg.SlowQuery = defaultSlowQuery
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

func (p *DBTracingPlugin) otelOptions() []otelgorm.Option {
	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
		otelgorm.WithAttributes(attribute.String("db.system", p.config.DBSystem)),
	}
	if p.config.Provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.config.Provider))
	}
	if !p.config.QueryVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	return opts
}

// Register is a no-op while tracing is disabled
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}
	if err := db.Use(otelgorm.NewPlugin(p.otelOptions()...)); err != nil {
		return err
	}
	if err := p.hook(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.String("db_system", p.config.DBSystem),
		zap.Duration("slow_query", p.config.SlowQuery),
		zap.Bool("query_variables", p.config.QueryVariables),
	)
	return nil
}

type register func(name string, fn func(*gorm.DB)) error

// hook wraps each gorm processor. The after hook runs ahead of otelgorm's,
// which ends the span.
func (p *DBTracingPlugin) hook(db *gorm.DB) error {
	cb := db.Callback()
	ops := []struct {
		name          string
		before, after register
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Before("otel:after_create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Before("otel:after_query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Before("otel:after_update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Before("otel:after_delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Before("otel:after_row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Before("otel:after_raw").Register},
	}
	for _, op := range ops {
		if err := op.before("storefront:start_"+op.name, stampStart); err != nil {
			return err
		}
		if err := op.after("storefront:annotate_"+op.name, p.afterQuery); err != nil {
			return err
		}
	}
	return nil
}

type startedAtKey struct{}

func stampStart(db *gorm.DB) {
	if ctx := db.Statement.Context; ctx != nil {
		db.Statement.Context = context.WithValue(ctx, startedAtKey{}, time.Now())
	}
}

// afterQuery annotates the statement's span
func (p *DBTracingPlugin) afterQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	var attrs []attribute.KeyValue
	if rows := db.Statement.RowsAffected; rows >= 0 {
		attrs = append(attrs, attribute.Int64("db.rows_affected", rows))
	}
	if table := db.Statement.Table; table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", table))
	}
	if started, ok := ctx.Value(startedAtKey{}).(time.Time); ok {
		if took := time.Since(started); took > p.config.SlowQuery {
			attrs = append(attrs,
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", took.Milliseconds()))
			Event(span, "slow_query_warning",
				attribute.Int64("duration_ms", took.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQuery.Milliseconds()))
		}
	}
	span.SetAttributes(attrs...)

	if err := db.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		Fail(span, err)
	}
}
