package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor hands out database handles to usecases. Repositories take the
// handle per call, so the same repository works inside and outside a
// transaction.
type Transactor interface {
	DB(ctx context.Context) *gorm.DB
	// WithinTransaction runs fn in one transaction, committing when fn
	// returns nil and rolling back otherwise.
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
