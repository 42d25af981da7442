package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// OpenDB creates the MySQL connection pool and verifies it with a ping.
func OpenDB(ctx context.Context, dsn string, log *zap.Logger) (*sql.DB, error) {
	// 1. Open a new connection pool.
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// 2. Configure the connection pool settings.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 3. Ping the database to verify the connection.
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql ping failed: %w", err)
	}

	log.Info("database connection pool established")
	return db, nil
}

// MySQLStore keeps visitor state in the storefront_kv table.
type MySQLStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewMySQLStore(db *sql.DB, ttl time.Duration) *MySQLStore {
	return &MySQLStore{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}
}

func (s *MySQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT v FROM storefront_kv
		WHERE k = ? AND (expires_at IS NULL OR expires_at > ?)`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key, s.now()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mysql get failed: %w", err)
	}
	return value, nil
}

func (s *MySQLStore) Set(ctx context.Context, key string, value []byte) error {
	now := s.now()
	var expiresAt sql.NullTime
	if exp := expiry(now, s.ttl); !exp.IsZero() {
		expiresAt = sql.NullTime{Time: exp, Valid: true}
	}

	// Upsert: one row per key.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO storefront_kv (k, v, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			v = VALUES(v),
			expires_at = VALUES(expires_at),
			updated_at = VALUES(updated_at)`,
		key, value, expiresAt, now)
	if err != nil {
		return fmt.Errorf("mysql set failed: %w", err)
	}
	return nil
}

func (s *MySQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM storefront_kv WHERE k = ?", key); err != nil {
		return fmt.Errorf("mysql delete failed: %w", err)
	}
	return nil
}

// PurgeExpired deletes rows whose TTL has passed.
func (s *MySQLStore) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM storefront_kv WHERE expires_at IS NOT NULL AND expires_at <= ?", s.now())
	if err != nil {
		return 0, fmt.Errorf("mysql purge failed: %w", err)
	}
	return result.RowsAffected()
}
