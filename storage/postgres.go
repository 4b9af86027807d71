package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Aashish23092/statement-parser/dto"
)

// DB is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implements Store on top of a pgx pool.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS statements (
	id               BIGSERIAL PRIMARY KEY,
	user_id          UUID NOT NULL REFERENCES users(id),
	issuer           TEXT NOT NULL,
	card_variant     TEXT NOT NULL DEFAULT '',
	card_last_4      TEXT NOT NULL DEFAULT '',
	billing_cycle    TEXT NOT NULL DEFAULT '',
	payment_due_date TEXT NOT NULL DEFAULT '',
	total_amount_due DOUBLE PRECISION,
	parsed_at        TEXT NOT NULL DEFAULT '',
	pdf_path         TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transactions (
	id           BIGSERIAL PRIMARY KEY,
	statement_id BIGINT NOT NULL REFERENCES statements(id) ON DELETE CASCADE,
	date         TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	amount       DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS idx_statements_user ON statements(user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_statement ON transactions(statement_id);
`

// EnsureSchema creates the tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := s.db.QueryRow(ctx, query, user.ID, user.Email, user.PasswordHash).Scan(&user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1`

	user := &User{}
	err := s.db.QueryRow(ctx, query, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// SaveStatement inserts the statement and its transactions in one
// transaction and fills in the generated IDs.
func (s *PostgresStore) SaveStatement(ctx context.Context, stmt *Statement) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertStmt := `
		INSERT INTO statements (user_id, issuer, card_variant, card_last_4, billing_cycle,
			payment_due_date, total_amount_due, parsed_at, pdf_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	rec := stmt.Record
	err = tx.QueryRow(ctx, insertStmt,
		stmt.UserID,
		rec.Issuer,
		rec.CardVariant,
		rec.CardLast4,
		rec.BillingCycle,
		rec.PaymentDueDate,
		rec.TotalAmountDue,
		rec.ParsedAt,
		stmt.PDFPath,
	).Scan(&stmt.ID, &stmt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert statement: %w", err)
	}

	insertTxn := `
		INSERT INTO transactions (statement_id, date, description, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for i := range stmt.Record.Transactions {
		t := &stmt.Record.Transactions[i]
		if err := tx.QueryRow(ctx, insertTxn, stmt.ID, t.Date, t.Description, t.Amount).Scan(&t.ID); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListStatements returns a user's statements newest first, without their
// transactions.
func (s *PostgresStore) ListStatements(ctx context.Context, userID uuid.UUID) ([]*Statement, error) {
	query := `
		SELECT id, user_id, issuer, card_variant, card_last_4, billing_cycle,
			payment_due_date, total_amount_due, parsed_at, pdf_path, created_at
		FROM statements
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	defer rows.Close()

	var stmts []*Statement
	for rows.Next() {
		stmt, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, rows.Err()
}

// GetStatement loads one statement with its transactions.
func (s *PostgresStore) GetStatement(ctx context.Context, userID uuid.UUID, id int64) (*Statement, error) {
	query := `
		SELECT id, user_id, issuer, card_variant, card_last_4, billing_cycle,
			payment_due_date, total_amount_due, parsed_at, pdf_path, created_at
		FROM statements
		WHERE id = $1 AND user_id = $2`

	stmt, err := scanStatement(s.db.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}

	txnQuery := `
		SELECT id, date, description, amount
		FROM transactions
		WHERE statement_id = $1
		ORDER BY id`

	rows, err := s.db.Query(ctx, txnQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer rows.Close()

	stmt.Record.Transactions = []dto.Transaction{}
	for rows.Next() {
		var t dto.Transaction
		if err := rows.Scan(&t.ID, &t.Date, &t.Description, &t.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		stmt.Record.Transactions = append(stmt.Record.Transactions, t)
	}
	return stmt, rows.Err()
}

func scanStatement(row pgx.Row) (*Statement, error) {
	stmt := &Statement{}
	var createdAt time.Time
	err := row.Scan(
		&stmt.ID,
		&stmt.UserID,
		&stmt.Record.Issuer,
		&stmt.Record.CardVariant,
		&stmt.Record.CardLast4,
		&stmt.Record.BillingCycle,
		&stmt.Record.PaymentDueDate,
		&stmt.Record.TotalAmountDue,
		&stmt.Record.ParsedAt,
		&stmt.PDFPath,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	stmt.CreatedAt = createdAt
	return stmt, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
