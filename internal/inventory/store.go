package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	category    TEXT NOT NULL,
	price       REAL NOT NULL CHECK (price >= 0),
	quantity    INTEGER NOT NULL CHECK (quantity >= 0),
	location    TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	product_id TEXT NOT NULL,
	quantity   INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_product ON transactions(product_id);

CREATE TABLE IF NOT EXISTS transaction_processes (
	id             TEXT PRIMARY KEY,
	transaction_id TEXT NOT NULL,
	process_type   TEXT NOT NULL,
	status         TEXT NOT NULL,
	quantity       INTEGER NOT NULL,
	unit_price     REAL NOT NULL,
	total_amount   REAL NOT NULL,
	supplier       TEXT NOT NULL DEFAULT '',
	customer       TEXT NOT NULL DEFAULT '',
	notes          TEXT NOT NULL DEFAULT '',
	processed_by   TEXT NOT NULL,
	processed_at   DATETIME NOT NULL,
	completed_at   DATETIME
);
`

// Store persists inventory data in SQLite.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open opens (creating if needed) the SQLite database at path and applies
// the schema. Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000"
	}
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (*User, error) {
	u := &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (:id, :email, :name, :password_hash, :created_at)`, u)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, t *Transaction) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO transactions (id, type, product_id, quantity, created_at)
		VALUES (:id, :type, :product_id, :quantity, :created_at)`, t)
	return err
}

// withTx runs fn inside a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// CreateProduct stores a validated product and records an ADD transaction
// for its initial quantity.
func (s *Store) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	now := s.now()
	p := &Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Location:    in.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO products (id, name, description, category, price, quantity, location, created_at, updated_at)
			VALUES (:id, :name, :description, :category, :price, :quantity, :location, :created_at, :updated_at)`, p)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return insertTransaction(ctx, tx, &Transaction{
			ID:        uuid.NewString(),
			Type:      TransactionAdd,
			ProductID: p.ID,
			Quantity:  p.Quantity,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	products := []Product{}
	if err := s.db.SelectContext(ctx, &products, `SELECT * FROM products ORDER BY created_at, name`); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := s.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func getProductTx(ctx context.Context, tx *sqlx.Tx, id string) (*Product, error) {
	var p Product
	err := tx.GetContext(ctx, &p, `SELECT * FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func setQuantityTx(ctx context.Context, tx *sqlx.Tx, p *Product, quantity int, now time.Time) error {
	_, err := tx.ExecContext(ctx, `UPDATE products SET quantity = ?, updated_at = ? WHERE id = ?`, quantity, now, p.ID)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	p.Quantity = quantity
	p.UpdatedAt = now
	return nil
}

// UpdateStock sets a product's quantity and records an ADJUST transaction
// holding the signed difference.
func (s *Store) UpdateStock(ctx context.Context, id string, quantity int) (*Product, error) {
	if quantity < 0 {
		return nil, invalid("quantity", "Quantity cannot be negative")
	}
	var product *Product
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		p, err := getProductTx(ctx, tx, id)
		if err != nil {
			return err
		}
		now := s.now()
		delta := quantity - p.Quantity
		if err := setQuantityTx(ctx, tx, p, quantity, now); err != nil {
			return err
		}
		product = p
		return insertTransaction(ctx, tx, &Transaction{
			ID:        uuid.NewString(),
			Type:      TransactionAdjust,
			ProductID: p.ID,
			Quantity:  delta,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// RecordMovement applies an ADD or REMOVE of quantity units to a product
// and records it. Removing more than is in stock fails with
// ErrInsufficientStock.
func (s *Store) RecordMovement(ctx context.Context, productID string, kind TransactionType, quantity int) (*Transaction, error) {
	if kind != TransactionAdd && kind != TransactionRemove {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransaction, kind)
	}
	if quantity <= 0 {
		return nil, invalid("quantity", "Quantity must be positive")
	}

	var t *Transaction
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		p, err := getProductTx(ctx, tx, productID)
		if err != nil {
			return err
		}
		next := p.Quantity + quantity
		if kind == TransactionRemove {
			if p.Quantity < quantity {
				return ErrInsufficientStock
			}
			next = p.Quantity - quantity
		}
		now := s.now()
		if err := setQuantityTx(ctx, tx, p, next, now); err != nil {
			return err
		}
		t = &Transaction{
			ID:          uuid.NewString(),
			Type:        kind,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    quantity,
			CreatedAt:   now,
		}
		return insertTransaction(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTransactions returns the movement history, newest first, with the
// product name when the product still exists.
func (s *Store) ListTransactions(ctx context.Context) ([]Transaction, error) {
	transactions := []Transaction{}
	err := s.db.SelectContext(ctx, &transactions, `
		SELECT t.id, t.type, t.product_id, COALESCE(p.name, '') AS product_name, t.quantity, t.created_at
		FROM transactions t
		LEFT JOIN products p ON p.id = t.product_id
		ORDER BY t.created_at DESC, t.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}
