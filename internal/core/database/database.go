package database

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/datamodel"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// sqlx driver names registered by pgx stdlib and go-sqlite3.
	sqlxPostgres = "pgx"
	sqlxSQLite   = "sqlite3"
)

// DB bundles the GORM handle used by repositories with the sqlx handle used
// for hand-written aggregate queries. Both share one connection pool.
type DB struct {
	Gorm   *gorm.DB
	SQLX   *sqlx.DB
	Driver string
}

// Open connects to the configured database. SQLite databases are migrated
// with AutoMigrate; Postgres schemas are owned by the goose migrations.
func Open(cfg internal.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return openSQLite(cfg.Source, cfg.MaxOpenConns)
	case "", DriverPostgres:
		return openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openPostgres(cfg internal.DatabaseConfig) (*DB, error) {
	dbConn, err := sqlx.Connect(sqlxPostgres, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return &DB{Gorm: gormDB, SQLX: dbConn, Driver: DriverPostgres}, nil
}

func openSQLite(source string, maxOpen int) (*DB, error) {
	gormDB, err := gorm.Open(sqlite.Open(source), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// every new connection to ":memory:" is a fresh empty database
	if source == ":memory:" || maxOpen <= 0 {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)

	if err := gormDB.AutoMigrate(datamodel.Models()...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	return &DB{Gorm: gormDB, SQLX: sqlx.NewDb(sqlDB, sqlxSQLite), Driver: DriverSQLite}, nil
}

// NewInMemory returns a migrated in-memory SQLite database.
func NewInMemory() (*DB, error) {
	return openSQLite(":memory:", 1)
}

func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := internal.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.SQLX.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.SQLX.Close()
}

// Exists reports whether model's table has a row with id.
func Exists(ctx context.Context, db *gorm.DB, model interface{}, id int64) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ResetSequence advances table's id sequence past its highest id after rows
// were inserted with explicit ids. SQLite needs nothing.
func ResetSequence(ctx context.Context, db *gorm.DB, table string) error {
	if db.Dialector.Name() != DriverPostgres {
		return nil
	}
	q := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)`, table)
	return db.WithContext(ctx).Exec(q).Error
}

// MonthExpr returns a SQL expression rendering column as YYYY-MM.
func (d *DB) MonthExpr(column string) string {
	if d.Driver == DriverSQLite {
		return fmt.Sprintf("strftime('%%Y-%%m', %s)", column)
	}
	return fmt.Sprintf("to_char(%s, 'YYYY-MM')", column)
}
