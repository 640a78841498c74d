package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TB_telegram_miniapp/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrReferralCodeTaken = errors.New("referral code already taken")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrConflict          = errors.New("row changed concurrently")
	ErrReferenced        = errors.New("row is still referenced")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

const defaultQueryTimeout = 5 * time.Second

type Repository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return classify(r.db.PingContext(ctx))
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// Transaction runs t inside a read committed transaction bounded by the
// configured query timeout. Any error from t rolls everything back.
func (r *Repository) Transaction(ctx context.Context, t func(tx *sqlx.Tx) error) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return classify(err)
	}
	err = t(tx)
	if err != nil {
		txErr := tx.Rollback()
		if txErr != nil && !errors.Is(txErr, sql.ErrTxDone) {
			return errors.Wrapf(classify(err), "rollback error: %v", txErr)
		}
		return classify(err)
	}
	return classify(tx.Commit())
}

type Config struct {
	Host         string        `json:"host"`
	Port         string        `json:"port"`
	User         string        `json:"user"`
	Password     string        `json:"password"`
	Name         string        `json:"name"`
	SSLMode      string        `json:"sslMode"`
	MaxOpenConns int           `json:"maxOpenConns"`
	MaxIdleConns int           `json:"maxIdleConns"`
	QueryTimeout time.Duration `json:"queryTimeout"`
}

func New(cfg Config) (*Repository, error) {
	url := cfg.GetDatabaseURL()
	db, err := sqlx.Connect("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Logger().Info("Connected to database successfully")

	return NewWithDB(db, cfg.QueryTimeout), nil
}

// NewWithDB wraps an open connection. A non-positive timeout falls back to
// the default query timeout.
func NewWithDB(db *sqlx.DB, timeout time.Duration) *Repository {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Repository{
		db:      db,
		timeout: timeout,
	}
}

func (c *Config) GetDatabaseURL() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		sslMode,
	)
}
