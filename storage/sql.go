package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	currency "github.com/malusev998/currency-board"
)

const MySQLTimeFormat = "2006-01-02 15:04:05"

var ErrNotEnoughBytesInGenerator = errors.New("id generator must return at least 16 bytes")

type (
	IDGenerator interface {
		Generate() []byte
	}

	uuidGenerator struct{}

	// Dialect holds what differs between the SQL databases.
	Dialect struct {
		Name        string
		Placeholder func(n int) string
		CreateTable string
	}

	sqlStorage struct {
		ctx         context.Context
		db          *sql.DB
		dialect     Dialect
		idGenerator IDGenerator
		tableName   string
	}
)

var (
	MySQLDialect = Dialect{
		Name:        string(MySQL),
		Placeholder: questionMark,
		CreateTable: "CREATE TABLE IF NOT EXISTS %s(id CHAR(36) NOT NULL PRIMARY KEY, base VARCHAR(8) NOT NULL UNIQUE, provider VARCHAR(50) NOT NULL, rates TEXT NOT NULL, fetched_at DATETIME(6) NOT NULL);",
	}

	PostgresDialect = Dialect{
		Name: string(Postgres),
		Placeholder: func(n int) string {
			return fmt.Sprintf("$%d", n)
		},
		CreateTable: "CREATE TABLE IF NOT EXISTS %s(id UUID NOT NULL PRIMARY KEY, base VARCHAR(8) NOT NULL UNIQUE, provider VARCHAR(50) NOT NULL, rates TEXT NOT NULL, fetched_at TIMESTAMPTZ NOT NULL);",
	}

	SQLiteDialect = Dialect{
		Name:        string(SQLite),
		Placeholder: questionMark,
		CreateTable: "CREATE TABLE IF NOT EXISTS %s(id TEXT NOT NULL PRIMARY KEY, base TEXT NOT NULL UNIQUE, provider TEXT NOT NULL, rates TEXT NOT NULL, fetched_at TIMESTAMP NOT NULL);",
	}
)

func questionMark(int) string {
	return "?"
}

func (uuidGenerator) Generate() []byte {
	id := uuid.New()
	return id[:]
}

// NewSQLStorage keeps one row per base currency in tableName.
func NewSQLStorage(ctx context.Context, db *sql.DB, dialect Dialect, idGenerator IDGenerator, tableName string, migrate bool) (currency.Storage, error) {
	if idGenerator == nil {
		idGenerator = uuidGenerator{}
	}

	if ctx == nil {
		ctx = context.Background()
	}

	storage := sqlStorage{
		ctx:         ctx,
		db:          db,
		dialect:     dialect,
		idGenerator: idGenerator,
		tableName:   tableName,
	}

	if migrate {
		if err := storage.Migrate(); err != nil {
			return nil, err
		}
	}

	return storage, nil
}

func (s sqlStorage) placeholders(n int) []interface{} {
	result := make([]interface{}, 0, n)

	for i := 1; i <= n; i++ {
		result = append(result, s.dialect.Placeholder(i))
	}

	return result
}

func (s sqlStorage) generateID() (uuid.UUID, error) {
	bytes := s.idGenerator.Generate()

	if len(bytes) < 16 {
		return uuid.Nil, ErrNotEnoughBytesInGenerator
	}

	return uuid.FromBytes(bytes[:16])
}

// Store replaces the snapshot kept for the base, no history is kept.
func (s sqlStorage) Store(ctx context.Context, snapshot currency.Snapshot) (currency.SnapshotWithID, error) {
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now()
	}

	snapshot.FetchedAt = snapshot.FetchedAt.UTC()

	id, err := s.generateID()
	if err != nil {
		return currency.SnapshotWithID{}, err
	}

	rates, err := json.Marshal(snapshot.Rates)
	if err != nil {
		return currency.SnapshotWithID{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return currency.SnapshotWithID{}, err
	}

	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE base = %s;", s.tableName, s.dialect.Placeholder(1))

	if _, err := tx.ExecContext(ctx, deleteSQL, snapshot.Base.String()); err != nil {
		_ = tx.Rollback()
		return currency.SnapshotWithID{}, err
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s(id, base, provider, rates, fetched_at) VALUES (%s,%s,%s,%s,%s);",
		append([]interface{}{s.tableName}, s.placeholders(5)...)...)

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return currency.SnapshotWithID{}, err
	}

	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, id.String(), snapshot.Base.String(), string(snapshot.Provider), string(rates), snapshot.FetchedAt); err != nil {
		_ = tx.Rollback()
		return currency.SnapshotWithID{}, err
	}

	if err := tx.Commit(); err != nil {
		return currency.SnapshotWithID{}, err
	}

	return currency.SnapshotWithID{
		Snapshot: snapshot,
		ID:       id,
	}, nil
}

func (s sqlStorage) Latest(ctx context.Context, base currency.Code) (currency.SnapshotWithID, error) {
	query := fmt.Sprintf("SELECT id, provider, rates, fetched_at FROM %s WHERE base = %s LIMIT 1;", s.tableName, s.dialect.Placeholder(1))

	var (
		id, provider, rates string
		fetchedAt           time.Time
	)

	err := s.db.QueryRowContext(ctx, query, base.String()).Scan(&id, &provider, &rates, &fetchedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return currency.SnapshotWithID{}, fmt.Errorf("%w: %s", currency.ErrSnapshotNotFound, base)
	}

	if err != nil {
		return currency.SnapshotWithID{}, err
	}

	snapshot := currency.Snapshot{
		Base:      base,
		Rates:     currency.Rates{},
		Provider:  currency.Provider(provider),
		FetchedAt: fetchedAt,
	}

	if err := json.Unmarshal([]byte(rates), &snapshot.Rates); err != nil {
		return currency.SnapshotWithID{}, fmt.Errorf("decoding rates for %s: %w", base, err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return currency.SnapshotWithID{}, err
	}

	return currency.SnapshotWithID{Snapshot: snapshot, ID: parsedID}, nil
}

func (s sqlStorage) GetStorageProviderName() string {
	return s.dialect.Name
}

func (s sqlStorage) Migrate() error {
	_, err := s.db.ExecContext(s.ctx, fmt.Sprintf(s.dialect.CreateTable, s.tableName))
	return err
}

func (s sqlStorage) Drop() error {
	_, err := s.db.ExecContext(s.ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", s.tableName))
	return err
}

func (s sqlStorage) Close() error {
	return s.db.Close()
}
