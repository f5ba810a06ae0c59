package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

// insertBatchSize bounds the rows of one multi-row INSERT
const insertBatchSize = 500

// Store implements domain.Store on MySQL through gorm
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store over an open connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Transactions() domain.TransactionRepository { return s }
func (s *Store) Accounts() domain.AccountRepository         { return s }
func (s *Store) Matches() domain.MatchRepository            { return s }
func (s *Store) Rules() domain.RuleRepository               { return s }
func (s *Store) Imports() domain.ImportRepository           { return s }

// WithinTx runs fn inside a database transaction; nested calls become
// savepoints
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// notFound maps gorm.ErrRecordNotFound to domain.ErrNotFound
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	return fmt.Errorf("loading %s: %w", what, err)
}

// exists tells a lost conditional update from a missing row
func (s *Store) exists(ctx context.Context, model any, id string) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// conditionalUpdateError explains why an update guarded by a state
// predicate changed no row
func (s *Store) conditionalUpdateError(ctx context.Context, model any, what, id, conflict string) error {
	ok, err := s.exists(ctx, model, id)
	if err != nil {
		return fmt.Errorf("checking %s %s: %w", what, id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, what, id)
	}
	return fmt.Errorf("%w: %s %s %s", domain.ErrStateConflict, what, id, conflict)
}
