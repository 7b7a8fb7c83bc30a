package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/heartframe/internal/domain/errors"
	"github.com/polkiloo/heartframe/internal/domain/model"
	"github.com/polkiloo/heartframe/internal/domain/repository"
	"github.com/polkiloo/heartframe/internal/pkg/token"
)

const (
	uniqueViolation = "23505"
	createAttempts  = 3
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
	issuer token.Issuer
}

type orderRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, issuer token.Issuer, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger, issuer: issuer}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Orders returns the order repository.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            token TEXT UNIQUE NOT NULL,
            share_token TEXT UNIQUE,
            recipient TEXT NOT NULL,
            date TEXT NOT NULL,
            mood TEXT NOT NULL,
            core_sentence TEXT NOT NULL,
            name TEXT,
            keywords TEXT,
            poem_text TEXT,
            image_url TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            price_plan TEXT,
            payment_session_id TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            paid_at TIMESTAMPTZ
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status, updated_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, token, share_token, recipient, date, mood, core_sentence, name, keywords,
                      poem_text, image_url, status, price_plan, payment_session_id, created_at, updated_at, paid_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.Token, &o.ShareToken, &o.Recipient, &o.Date, &o.Mood, &o.CoreSentence, &o.Name, &o.Keywords,
		&o.PoemText, &o.ImageURL, &o.Status, &o.PricePlan, &o.PaymentSessionID, &o.CreatedAt, &o.UpdatedAt, &o.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, input model.OrderInput) (*model.Order, error) {
	const query = `INSERT INTO orders (id, token, recipient, date, mood, core_sentence, name, keywords, status)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   RETURNING created_at, updated_at`

	for attempt := 1; ; attempt++ {
		tok, err := r.storage.issuer.NewToken()
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
		order := &model.Order{
			ID:           r.storage.issuer.NewID(),
			Token:        tok,
			Recipient:    input.Recipient,
			Date:         input.Date,
			Mood:         input.Mood,
			CoreSentence: input.CoreSentence,
			Name:         input.Name,
			Keywords:     input.Keywords,
			Status:       model.OrderStatusPending,
		}
		err = r.storage.pool.QueryRow(ctx, query,
			order.ID, order.Token, order.Recipient, order.Date, order.Mood, order.CoreSentence,
			order.Name, order.Keywords, string(order.Status),
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err == nil {
			return order, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && attempt < createAttempts {
			r.storage.logger.Warn("order token collision, reissuing", slog.Int("attempt", attempt))
			continue
		}
		return nil, err
	}
}

func (r *orderRepository) GetByToken(ctx context.Context, tok string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE token=$1 OR share_token=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, tok))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Update(ctx context.Context, tok string, patch model.OrderPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	sets, args := assignments(patch)
	args = append(args, tok)
	query := fmt.Sprintf(`UPDATE orders SET %s WHERE token=$%d`, strings.Join(sets, ", "), len(args))
	if _, err := r.storage.pool.Exec(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

func (r *orderRepository) Transition(ctx context.Context, tok string, from model.OrderStatus, patch model.OrderPatch) (bool, error) {
	sets, args := assignments(patch)
	args = append(args, tok, string(from))
	query := fmt.Sprintf(`UPDATE orders SET %s WHERE token=$%d AND status=$%d`, strings.Join(sets, ", "), len(args)-1, len(args))
	tag, err := r.storage.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) EnsureShareToken(ctx context.Context, tok, candidate string) (string, error) {
	const query = `UPDATE orders SET share_token = COALESCE(share_token, $1), updated_at = NOW()
                   WHERE token=$2 RETURNING share_token`
	var share string
	if err := r.storage.pool.QueryRow(ctx, query, candidate, tok).Scan(&share); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domainErrors.ErrNotFound
		}
		return "", err
	}
	return share, nil
}

func (r *orderRepository) ListByStatus(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status=$1 ORDER BY updated_at LIMIT $2`
	rows, err := r.storage.pool.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// assignments renders SET clauses for patch, always bumping updated_at.
func assignments(patch model.OrderPatch) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.Content != nil {
		add("poem_text", patch.Content.PoemText)
		add("image_url", patch.Content.ImageURL)
	}
	if patch.PricePlan != nil {
		add("price_plan", string(*patch.PricePlan))
	}
	if patch.PaymentSessionID != nil {
		add("payment_session_id", *patch.PaymentSessionID)
	}
	if patch.ShareToken != nil {
		add("share_token", *patch.ShareToken)
	}
	if patch.PaidAt != nil {
		add("paid_at", *patch.PaidAt)
	}
	sets = append(sets, "updated_at=NOW()")
	return sets, args
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
