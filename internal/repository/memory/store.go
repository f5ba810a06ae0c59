package memory

import (
	"context"
	"sync"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

// tables is the whole dataset. Values are stored by value and pointer
// fields are replaced, never mutated in place, so a shallow copy of each map
// is an independent snapshot.
type tables struct {
	transactions map[string]domain.BankTransaction
	txnOrder     []string
	fitids       map[string]string // company_id + fitid -> transaction id

	accounts map[domain.AccountRef]domain.Account

	matches    map[string]domain.Match
	matchOrder []string

	rules   []domain.CategorizationRule
	imports map[string]domain.ImportRecord
}

func newTables() *tables {
	return &tables{
		transactions: make(map[string]domain.BankTransaction),
		fitids:       make(map[string]string),
		accounts:     make(map[domain.AccountRef]domain.Account),
		matches:      make(map[string]domain.Match),
		imports:      make(map[string]domain.ImportRecord),
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		transactions: make(map[string]domain.BankTransaction, len(t.transactions)),
		txnOrder:     append([]string(nil), t.txnOrder...),
		fitids:       make(map[string]string, len(t.fitids)),
		accounts:     make(map[domain.AccountRef]domain.Account, len(t.accounts)),
		matches:      make(map[string]domain.Match, len(t.matches)),
		matchOrder:   append([]string(nil), t.matchOrder...),
		rules:        append([]domain.CategorizationRule(nil), t.rules...),
		imports:      make(map[string]domain.ImportRecord, len(t.imports)),
	}
	for k, v := range t.transactions {
		c.transactions[k] = v
	}
	for k, v := range t.fitids {
		c.fitids[k] = v
	}
	for k, v := range t.accounts {
		c.accounts[k] = v
	}
	for k, v := range t.matches {
		c.matches[k] = v
	}
	for k, v := range t.imports {
		c.imports[k] = v
	}
	return c
}

// Store implements domain.Store in process memory. It serves tests, the
// CLI and deployments with STORE_DRIVER=memory.
type Store struct {
	mu *sync.RWMutex
	t  *tables

	// set on the view handed to WithinTx, which already holds mu
	inTx bool
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		mu: &sync.RWMutex{},
		t:  newTables(),
	}
}

func (s *Store) Transactions() domain.TransactionRepository { return s }
func (s *Store) Accounts() domain.AccountRepository         { return s }
func (s *Store) Matches() domain.MatchRepository            { return s }
func (s *Store) Rules() domain.RuleRepository               { return s }
func (s *Store) Imports() domain.ImportRepository           { return s }

// WithinTx runs fn against a snapshot and publishes it only when fn
// succeeds. Writers are serialized for the duration.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.t.clone()
	if err := fn(&Store{mu: s.mu, t: snapshot, inTx: true}); err != nil {
		return err
	}

	s.t = snapshot
	return nil
}

func (s *Store) read(fn func(t *tables)) {
	if !s.inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn(s.t)
}

func (s *Store) write(fn func(t *tables) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.t)
}
