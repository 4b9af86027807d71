// Package storage persists users and parsed statements in PostgreSQL.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Aashish23092/statement-parser/dto"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is an account row.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Statement is a persisted parse result together with its upload metadata.
type Statement struct {
	ID        int64
	UserID    uuid.UUID
	PDFPath   string
	CreatedAt time.Time
	Record    dto.StatementRecord
}

// Store is the persistence boundary of the service.
type Store interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	SaveStatement(ctx context.Context, stmt *Statement) error
	ListStatements(ctx context.Context, userID uuid.UUID) ([]*Statement, error)
	GetStatement(ctx context.Context, userID uuid.UUID, id int64) (*Statement, error)
}
