package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	domainErrors "github.com/polkiloo/heartframe/internal/domain/errors"
	"github.com/polkiloo/heartframe/internal/domain/model"
	"github.com/polkiloo/heartframe/internal/domain/repository"
	"github.com/polkiloo/heartframe/internal/pkg/token"
)

const createAttempts = 3

// Store provides SQLite-backed persistence for orders.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	issuer token.Issuer
	now    func() time.Time
}

type orderRepository struct {
	store *Store
}

// Open opens the database file at path and migrates it.
func Open(ctx context.Context, path string, issuer token.Issuer, logger *slog.Logger) (*Store, error) {
	path = strings.TrimPrefix(path, "sqlite://")
	if path == "" {
		return nil, fmt.Errorf("open sqlite: path is empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer keeps SQLite from returning SQLITE_BUSY under concurrent workers
	db.SetMaxOpenConns(1)

	store, err := New(db, issuer, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New returns a Store bound to an existing database handle.
func New(db *sql.DB, issuer token.Issuer, logger *slog.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Store{db: db, logger: logger, issuer: issuer, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Migrate ensures the orders table exists.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			token TEXT UNIQUE NOT NULL,
			share_token TEXT UNIQUE NULL,
			recipient TEXT NOT NULL,
			date TEXT NOT NULL,
			mood TEXT NOT NULL,
			core_sentence TEXT NOT NULL,
			name TEXT NULL,
			keywords TEXT NULL,
			poem_text TEXT NULL,
			image_url TEXT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			price_plan TEXT NULL,
			payment_session_id TEXT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			paid_at TEXT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status, updated_at);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// Orders returns the order repository.
func (s *Store) Orders() repository.OrderRepository {
	return &orderRepository{store: s}
}

// HealthCheck verifies the database handle is usable.
func (s *Store) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Store) timestamp() string {
	return s.now().Format(time.RFC3339Nano)
}

const orderColumns = `id, token, share_token, recipient, date, mood, core_sentence, name, keywords,
	poem_text, image_url, status, price_plan, payment_session_id, created_at, updated_at, paid_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	var share, name, keywords, poem, image, plan, session, paidAt sql.NullString
	var status, createdAt, updatedAt string
	err := row.Scan(
		&o.ID, &o.Token, &share, &o.Recipient, &o.Date, &o.Mood, &o.CoreSentence, &name, &keywords,
		&poem, &image, &status, &plan, &session, &createdAt, &updatedAt, &paidAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = model.OrderStatus(status)
	o.ShareToken = nullString(share)
	o.Name = nullString(name)
	o.Keywords = nullString(keywords)
	o.PoemText = nullString(poem)
	o.ImageURL = nullString(image)
	o.PaymentSessionID = nullString(session)
	if plan.Valid {
		p := model.PricePlan(plan.String)
		o.PricePlan = &p
	}

	if o.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if o.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if paidAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, paidAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse paid_at: %w", err)
		}
		o.PaidAt = &t
	}
	return &o, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func optional(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func (r *orderRepository) Create(ctx context.Context, input model.OrderInput) (*model.Order, error) {
	const query = `INSERT INTO orders (id, token, recipient, date, mood, core_sentence, name, keywords, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for attempt := 1; ; attempt++ {
		tok, err := r.store.issuer.NewToken()
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
		now := r.store.now()
		order := &model.Order{
			ID:           r.store.issuer.NewID(),
			Token:        tok,
			Recipient:    input.Recipient,
			Date:         input.Date,
			Mood:         input.Mood,
			CoreSentence: input.CoreSentence,
			Name:         input.Name,
			Keywords:     input.Keywords,
			Status:       model.OrderStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		stamp := now.Format(time.RFC3339Nano)
		_, err = r.store.db.ExecContext(ctx, query,
			order.ID, order.Token, order.Recipient, order.Date, order.Mood, order.CoreSentence,
			optional(order.Name), optional(order.Keywords), string(order.Status), stamp, stamp,
		)
		if err == nil {
			return order, nil
		}
		if isUniqueViolation(err) && attempt < createAttempts {
			r.store.logger.Warn("order token collision, reissuing", slog.Int("attempt", attempt))
			continue
		}
		return nil, fmt.Errorf("create order: insert: %w", err)
	}
}

func (r *orderRepository) GetByToken(ctx context.Context, tok string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE token = ? OR share_token = ?`
	order, err := scanOrder(r.store.db.QueryRowContext(ctx, query, tok, tok))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	order, err := scanOrder(r.store.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) Update(ctx context.Context, tok string, patch model.OrderPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	sets, args := r.store.assignments(patch)
	args = append(args, tok)
	query := `UPDATE orders SET ` + strings.Join(sets, ", ") + ` WHERE token = ?`
	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (r *orderRepository) Transition(ctx context.Context, tok string, from model.OrderStatus, patch model.OrderPatch) (bool, error) {
	sets, args := r.store.assignments(patch)
	args = append(args, tok, string(from))
	query := `UPDATE orders SET ` + strings.Join(sets, ", ") + ` WHERE token = ? AND status = ?`
	result, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("transition order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition order: rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *orderRepository) EnsureShareToken(ctx context.Context, tok, candidate string) (string, error) {
	const query = `UPDATE orders SET share_token = COALESCE(share_token, ?), updated_at = ?
		WHERE token = ? RETURNING share_token`
	var share string
	if err := r.store.db.QueryRowContext(ctx, query, candidate, r.store.timestamp(), tok).Scan(&share); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domainErrors.ErrNotFound
		}
		return "", fmt.Errorf("ensure share token: %w", err)
	}
	return share, nil
}

func (r *orderRepository) ListByStatus(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = ? ORDER BY updated_at LIMIT ?`
	rows, err := r.store.db.QueryContext(ctx, query, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: scan: %w", err)
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return result, nil
}

func (s *Store) assignments(patch model.OrderPatch) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
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
		add("paid_at", patch.PaidAt.UTC().Format(time.RFC3339Nano))
	}
	add("updated_at", s.timestamp())
	return sets, args
}
