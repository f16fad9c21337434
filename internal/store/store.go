// Package store persists the platform schema in SQLite. It loads the
// editable columns of a product or course into a form and writes them back,
// which is the server-side half of the editing flow.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-courseform/pkg/form"
)

//go:embed migrations/*.sql
var migrations embed.FS

const driverName = "sqlite"

var (
	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("store: not found")
	// ErrUnknownEntity is returned for tables without editable content.
	ErrUnknownEntity = errors.New("store: unknown entity")
	// ErrNoFields is returned when a save carries no editable column.
	ErrNoFields = errors.New("store: no editable fields")
)

// Option configures a Store.
type Option func(*Store)

// WithLogger routes store and migration logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store wraps the database handle.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open connects to the SQLite database at dsn (":memory:" works for tests)
// and enables foreign keys.
func Open(ctx context.Context, dsn string, options ...Option) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("store: dsn is required")
	}
	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	// SQLite serializes writers; one connection also keeps in-memory
	// databases alive across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}
	return New(db, options...), nil
}

// New wraps an existing handle.
func New(db *sqlx.DB, options ...Option) *Store {
	s := &Store{db: db, logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// DB exposes the underlying handle.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies all pending migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.prepareGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, s.db.DB, "migrations"); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	return nil
}

// Rollback reverts the most recent migration.
func (s *Store) Rollback(ctx context.Context) error {
	if err := s.prepareGoose(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, s.db.DB, "migrations"); err != nil {
		return fmt.Errorf("store: rollback migration: %w", err)
	}
	return nil
}

// Version reports the current schema version.
func (s *Store) Version(ctx context.Context) (int64, error) {
	if err := s.prepareGoose(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, s.db.DB)
	if err != nil {
		return 0, fmt.Errorf("store: schema version: %w", err)
	}
	return version, nil
}

func (s *Store) prepareGoose() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger: s.logger.Sugar()})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set dialect: %w", err)
	}
	return nil
}

// LoadFields reads the editable columns of one row into a form. Structured
// columns are flagged so the editing session formats and binds them; NULL
// columns load as empty fields.
func (s *Store) LoadFields(ctx context.Context, entity Entity, id int64) (*form.Form, error) {
	schema, err := schemaFor(entity)
	if err != nil {
		return nil, err
	}
	columns := schema.columns()
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", strings.Join(columns, ", "), schema.table)

	values, err := s.db.QueryRowxContext(ctx, query, id).SliceScan()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %d", ErrNotFound, schema.table, id)
		}
		return nil, fmt.Errorf("store: load %s %d: %w", schema.table, id, err)
	}

	f := form.New()
	for idx, column := range columns {
		text := textOf(values[idx])
		if schema.structured(column) {
			f.SetStructured(column, text)
			continue
		}
		f.Set(column, text)
	}
	return f, nil
}

// SaveFields writes every editable column present in f. Alias field names
// posted by the web form map onto their column; the canonical name wins
// when both are present. Blank columns other than title are stored as NULL.
func (s *Store) SaveFields(ctx context.Context, entity Entity, id int64, f *form.Form) error {
	schema, err := schemaFor(entity)
	if err != nil {
		return err
	}
	return s.saveFields(ctx, s.db, schema, id, f.Map())
}

type namedExecer interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

func (s *Store) saveFields(ctx context.Context, exec namedExecer, schema entitySchema, id int64, values map[string]string) error {
	resolved := schema.resolve(values)
	if len(resolved) == 0 {
		return fmt.Errorf("%w: %s %d", ErrNoFields, schema.table, id)
	}

	args := map[string]any{"id": id}
	sets := make([]string, 0, len(resolved)+1)
	for _, column := range schema.columns() {
		value, ok := resolved[column]
		if !ok {
			continue
		}
		sets = append(sets, column+" = :"+column)
		if column != "title" && strings.TrimSpace(value) == "" {
			args[column] = nil
			continue
		}
		args[column] = value
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", schema.table, strings.Join(sets, ", "))
	res, err := exec.NamedExecContext(ctx, query, args)
	if err != nil {
		return fmt.Errorf("store: save %s %d: %w", schema.table, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: save %s %d: %w", schema.table, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, schema.table, id)
	}
	s.logger.Debug("store: fields saved",
		zap.String("table", schema.table),
		zap.Int64("id", id),
		zap.Int("columns", len(resolved)),
	)
	return nil
}

// Listing is one row of a table listing.
type Listing struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
	Slug  string `db:"slug"`
}

// List returns every row of entity ordered by id.
func (s *Store) List(ctx context.Context, entity Entity) ([]Listing, error) {
	schema, err := schemaFor(entity)
	if err != nil {
		return nil, err
	}
	var out []Listing
	query := fmt.Sprintf("SELECT id, title, COALESCE(slug, '') AS slug FROM %s ORDER BY id", schema.table)
	if err := s.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("store: list %s: %w", schema.table, err)
	}
	return out, nil
}

// Product is the insert payload for a product row. Fields carries the
// editable text columns keyed by column name.
type Product struct {
	Title       string
	Slug        string
	Description string
	Price       float64
	IsFeatured  bool
	Fields      map[string]string
}

// CreateProduct inserts a product and returns its id.
func (s *Store) CreateProduct(ctx context.Context, p Product) (int64, error) {
	return s.create(ctx, EntityProduct, map[string]any{
		"title":       p.Title,
		"slug":        nullable(p.Slug),
		"description": p.Description,
		"price":       p.Price,
		"is_featured": p.IsFeatured,
	}, p.Fields)
}

// Course is the insert payload for a course row.
type Course struct {
	Title          string
	Slug           string
	Description    string
	Price          float64
	HasCertificate bool
	Fields         map[string]string
}

// CreateCourse inserts a course and returns its id.
func (s *Store) CreateCourse(ctx context.Context, c Course) (int64, error) {
	return s.create(ctx, EntityCourse, map[string]any{
		"title":           c.Title,
		"slug":            nullable(c.Slug),
		"description":     c.Description,
		"price":           c.Price,
		"has_certificate": c.HasCertificate,
	}, c.Fields)
}

func (s *Store) create(ctx context.Context, entity Entity, row map[string]any, fields map[string]string) (int64, error) {
	schema, err := schemaFor(entity)
	if err != nil {
		return 0, err
	}
	if title, _ := row["title"].(string); strings.TrimSpace(title) == "" {
		return 0, fmt.Errorf("store: %s title is required", schema.table)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	names := make([]string, 0, len(row))
	for _, column := range insertOrder {
		if _, ok := row[column]; ok {
			names = append(names, column)
		}
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)",
		schema.table, strings.Join(names, ", "), strings.Join(names, ", :"))
	res, err := tx.NamedExecContext(ctx, query, row)
	if err != nil {
		return 0, fmt.Errorf("store: insert %s: %w", schema.table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert %s: %w", schema.table, err)
	}

	if len(fields) > 0 {
		if err := s.saveFields(ctx, tx, schema, id, fields); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	s.logger.Info("store: row created", zap.String("table", schema.table), zap.Int64("id", id))
	return id, nil
}

var insertOrder = []string{"title", "slug", "description", "price", "is_featured", "has_certificate"}

func nullable(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func textOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// gooseLogger adapts zap to the printf-style logger goose expects.
type gooseLogger struct {
	logger *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, args ...any) {
	l.logger.Infof(strings.TrimSuffix(format, "\n"), args...)
}

func (l gooseLogger) Fatalf(format string, args ...any) {
	l.logger.Fatalf(strings.TrimSuffix(format, "\n"), args...)
}
