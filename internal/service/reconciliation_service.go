package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

// DefaultAutoConfirmThreshold is used when a caller passes no threshold
const DefaultAutoConfirmThreshold = 90

// ReconciliationService moves matches through suggested, confirmed and
// rejected, and keeps transactions and accounts consistent with them
type ReconciliationService struct {
	store     domain.Store
	matcher   domain.TransactionMatcher
	threshold int
	log       zerolog.Logger
	now       func() time.Time
}

// NewReconciliationService creates a new ReconciliationService. A threshold
// outside 1..100 falls back to DefaultAutoConfirmThreshold.
func NewReconciliationService(
	store domain.Store,
	matcher domain.TransactionMatcher,
	threshold int,
	log zerolog.Logger,
) *ReconciliationService {
	if threshold < 1 || threshold > 100 {
		threshold = DefaultAutoConfirmThreshold
	}

	return &ReconciliationService{
		store:     store,
		matcher:   matcher,
		threshold: threshold,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AutoMatchRequest selects what RunAutoMatch scores. An empty TransactionID
// means every unreconciled transaction of the company; a zero Threshold
// means the service default.
type AutoMatchRequest struct {
	CompanyID     string
	TransactionID string
	Threshold     int
}

// RunAutoMatch scores open accounts for one transaction or the whole
// unreconciled set, records the surviving candidates and confirms the best
// one when it reaches the threshold. Each transaction is its own unit of
// work.
func (s *ReconciliationService) RunAutoMatch(ctx context.Context, req AutoMatchRequest) (domain.AutoMatchResult, error) {
	threshold := req.Threshold
	if threshold == 0 {
		threshold = s.threshold
	}
	if threshold < 1 || threshold > 100 {
		return domain.AutoMatchResult{}, fmt.Errorf("%w: auto confirm threshold %d outside 1..100", domain.ErrInvalidInput, threshold)
	}

	txns, err := s.autoMatchScope(ctx, req)
	if err != nil {
		return domain.AutoMatchResult{}, err
	}

	log := s.log.With().Str("company_id", req.CompanyID).Int("threshold", threshold).Logger()

	result := domain.AutoMatchResult{Matches: make([]domain.Match, 0)}
	for _, txn := range txns {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		matches, confirmed, err := s.matchTransaction(ctx, txn, threshold)
		if err != nil {
			// a sweep moves past transactions settled concurrently
			if req.TransactionID == "" && errors.Is(err, domain.ErrStateConflict) {
				log.Warn().Err(err).Str("transaction_id", txn.ID).Msg("transaction skipped")
				continue
			}
			return result, fmt.Errorf("matching transaction %s: %w", txn.ID, err)
		}

		if confirmed {
			rejectReported(result.Matches, matches[0])
			result.AutoConfirmed++
		}
		result.TotalMatches += len(matches)
		result.Matches = append(result.Matches, matches...)
	}

	log.Info().
		Int("transactions", len(txns)).
		Int("total_matches", result.TotalMatches).
		Int("auto_confirmed", result.AutoConfirmed).
		Msg("auto match finished")

	return result, nil
}

// rejectReported mirrors settle on matches already held by the caller: the
// suggestions sharing confirmed's transaction or account are now rejected
func rejectReported(matches []domain.Match, confirmed domain.Match) {
	ref := confirmed.AccountRef()
	for i := range matches {
		m := &matches[i]
		if m.ID == confirmed.ID || m.Status != domain.MatchSuggested {
			continue
		}
		if m.TransactionID == confirmed.TransactionID || m.AccountRef() == ref {
			m.Status = domain.MatchRejected
		}
	}
}

func (s *ReconciliationService) autoMatchScope(ctx context.Context, req AutoMatchRequest) ([]domain.BankTransaction, error) {
	if req.TransactionID == "" {
		txns, err := s.store.Transactions().ListUnreconciledTransactions(ctx, req.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("listing unreconciled transactions: %w", err)
		}
		return txns, nil
	}

	txn, err := s.store.Transactions().GetTransaction(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if txn.CompanyID != req.CompanyID {
		return nil, fmt.Errorf("%w: transaction %s belongs to another company", domain.ErrForbidden, txn.ID)
	}
	if txn.Reconciled {
		return nil, nil
	}
	return []domain.BankTransaction{txn}, nil
}

// matchTransaction records new candidates for txn and confirms the top one
// if it reaches threshold, all in one unit of work
func (s *ReconciliationService) matchTransaction(ctx context.Context, txn domain.BankTransaction, threshold int) ([]domain.Match, bool, error) {
	kind, ok := txn.CandidateKind()
	if !ok {
		return nil, false, nil
	}

	var (
		created   []domain.Match
		confirmed bool
	)

	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		created, confirmed = nil, false

		accounts, err := tx.Accounts().ListOpenAccounts(ctx, txn.CompanyID, kind)
		if err != nil {
			return fmt.Errorf("listing open accounts: %w", err)
		}

		candidates := s.matcher.FindCandidates(txn, accounts)
		if len(candidates) == 0 {
			return nil
		}

		existing, err := tx.Matches().ListMatches(ctx, domain.MatchFilter{CompanyID: txn.CompanyID, TransactionID: txn.ID})
		if err != nil {
			return fmt.Errorf("listing existing matches: %w", err)
		}
		known := make(map[domain.AccountRef]bool, len(existing))
		for _, m := range existing {
			known[m.AccountRef()] = true
		}

		now := s.now()
		for i, c := range candidates {
			if known[c.Account.Ref()] {
				continue
			}

			m := domain.NewMatch(uuid.NewString(), txn.CompanyID, txn.ID, c.Account.Ref())
			m.Type = c.Type
			m.Score = c.Score
			m.Details = domain.NewMatchDetails(txn, c.Account, c.Reasons)
			m.Status = domain.MatchSuggested
			m.CreatedAt = now

			if i == 0 && c.Score >= threshold {
				actor := domain.SystemActor
				m.Status = domain.MatchConfirmed
				m.ConfirmedAt = &now
				m.ConfirmedBy = &actor
			}
			created = append(created, m)
		}

		if len(created) == 0 {
			return nil
		}
		if err := tx.Matches().CreateMatches(ctx, created); err != nil {
			return fmt.Errorf("creating matches: %w", err)
		}

		if top := created[0]; top.Status == domain.MatchConfirmed {
			if err := s.settle(ctx, tx, top, domain.SystemActor, now); err != nil {
				return err
			}
			rejectReported(created[1:], top)
			confirmed = true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if confirmed {
		s.log.Info().
			Str("match_id", created[0].ID).
			Str("transaction_id", txn.ID).
			Str("account", created[0].AccountRef().String()).
			Int("score", created[0].Score).
			Msg("match auto confirmed")
	}

	return created, confirmed, nil
}

// ConfirmMatch confirms a suggested match and reconciles both sides. A
// match that is no longer suggested yields domain.ErrStateConflict.
func (s *ReconciliationService) ConfirmMatch(ctx context.Context, companyID, matchID, userID string) (domain.Match, error) {
	var confirmed domain.Match

	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		m, err := s.tenantMatch(ctx, tx, companyID, matchID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := tx.Matches().UpdateMatchStatus(ctx, m.ID, domain.MatchSuggested, domain.MatchConfirmed, &userID, now); err != nil {
			return err
		}
		if err := s.settle(ctx, tx, m, userID, now); err != nil {
			return err
		}

		confirmed, err = tx.Matches().GetMatch(ctx, m.ID)
		return err
	})
	if err != nil {
		return domain.Match{}, err
	}

	s.log.Info().Str("match_id", matchID).Str("user_id", userID).Msg("match confirmed")
	return confirmed, nil
}

// RejectMatch rejects a suggested match. Transactions and accounts are left
// untouched.
func (s *ReconciliationService) RejectMatch(ctx context.Context, companyID, matchID, userID string) (domain.Match, error) {
	var rejected domain.Match

	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		m, err := s.tenantMatch(ctx, tx, companyID, matchID)
		if err != nil {
			return err
		}

		if err := tx.Matches().UpdateMatchStatus(ctx, m.ID, domain.MatchSuggested, domain.MatchRejected, nil, s.now()); err != nil {
			return err
		}

		rejected, err = tx.Matches().GetMatch(ctx, m.ID)
		return err
	})
	if err != nil {
		return domain.Match{}, err
	}

	s.log.Info().Str("match_id", matchID).Str("user_id", userID).Msg("match rejected")
	return rejected, nil
}

// CreateManualMatch records a confirmed manual match with score 100 and
// reconciles both sides
func (s *ReconciliationService) CreateManualMatch(ctx context.Context, companyID, transactionID string, ref domain.AccountRef, userID string) (domain.Match, error) {
	return s.link(ctx, companyID, transactionID, ref, userID)
}

// LinkTransactionToAccount links a transaction to an account directly, with
// the same guarantees as CreateManualMatch
func (s *ReconciliationService) LinkTransactionToAccount(ctx context.Context, companyID, transactionID string, ref domain.AccountRef, userID string) (domain.Match, error) {
	return s.link(ctx, companyID, transactionID, ref, userID)
}

// LinkRequest is one item of a bulk link
type LinkRequest struct {
	TransactionID string
	Account       domain.AccountRef
}

// LinkResult is the outcome of one bulk link item
type LinkResult struct {
	TransactionID string
	Account       domain.AccountRef
	Match         *domain.Match
	Err           error
}

// LinkTransactions links each item in its own unit of work; one failing
// item does not affect the others
func (s *ReconciliationService) LinkTransactions(ctx context.Context, companyID string, links []LinkRequest, userID string) []LinkResult {
	results := make([]LinkResult, 0, len(links))

	for _, l := range links {
		r := LinkResult{TransactionID: l.TransactionID, Account: l.Account}

		m, err := s.link(ctx, companyID, l.TransactionID, l.Account, userID)
		if err != nil {
			r.Err = err
		} else {
			r.Match = &m
		}
		results = append(results, r)
	}

	return results
}

func (s *ReconciliationService) link(ctx context.Context, companyID, transactionID string, ref domain.AccountRef, userID string) (domain.Match, error) {
	var created domain.Match

	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		txn, err := tx.Transactions().GetTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		if txn.CompanyID != companyID {
			return fmt.Errorf("%w: transaction %s belongs to another company", domain.ErrForbidden, transactionID)
		}

		account, err := tx.Accounts().GetAccount(ctx, ref)
		if err != nil {
			return err
		}
		if account.CompanyID != companyID {
			return fmt.Errorf("%w: account %s belongs to another company", domain.ErrForbidden, ref)
		}

		if kind, ok := txn.CandidateKind(); !ok || kind != ref.Kind {
			return fmt.Errorf("%w: transaction %s cannot settle a %s", domain.ErrInvalidInput, transactionID, ref.Kind)
		}

		now := s.now()
		created = domain.NewMatch(uuid.NewString(), companyID, txn.ID, ref)
		created.Type = domain.MatchManual
		created.Score = 100
		created.Details = domain.NewMatchDetails(txn, account, []string{"linked manually"})
		created.Status = domain.MatchConfirmed
		created.ConfirmedAt = &now
		created.ConfirmedBy = &userID
		created.CreatedAt = now

		if err := tx.Matches().CreateMatches(ctx, []domain.Match{created}); err != nil {
			return fmt.Errorf("creating match: %w", err)
		}
		return s.settle(ctx, tx, created, userID, now)
	})
	if err != nil {
		return domain.Match{}, err
	}

	s.log.Info().
		Str("match_id", created.ID).
		Str("transaction_id", transactionID).
		Str("account", ref.String()).
		Str("user_id", userID).
		Msg("transaction linked")
	return created, nil
}

// settle reconciles the transaction and the account of a confirmed match
// and rejects the suggestions it makes obsolete
func (s *ReconciliationService) settle(ctx context.Context, tx domain.Store, m domain.Match, by string, at time.Time) error {
	ref := m.AccountRef()

	if err := tx.Transactions().MarkTransactionReconciled(ctx, m.TransactionID, by, at); err != nil {
		return fmt.Errorf("reconciling transaction %s: %w", m.TransactionID, err)
	}
	if err := tx.Accounts().LinkAccount(ctx, ref, m.TransactionID, at); err != nil {
		return fmt.Errorf("linking account %s: %w", ref, err)
	}

	rejected, err := tx.Matches().RejectSuggestedMatches(ctx, m.CompanyID, m.TransactionID, ref, m.ID)
	if err != nil {
		return fmt.Errorf("rejecting sibling matches: %w", err)
	}
	if rejected > 0 {
		s.log.Debug().Str("match_id", m.ID).Int64("rejected", rejected).Msg("sibling suggestions rejected")
	}
	return nil
}

func (s *ReconciliationService) tenantMatch(ctx context.Context, tx domain.Store, companyID, matchID string) (domain.Match, error) {
	m, err := tx.Matches().GetMatch(ctx, matchID)
	if err != nil {
		return domain.Match{}, err
	}
	if m.CompanyID != companyID {
		return domain.Match{}, fmt.Errorf("%w: match %s belongs to another company", domain.ErrForbidden, matchID)
	}
	return m, nil
}

// ListMatches returns the company's matches narrowed by filter
func (s *ReconciliationService) ListMatches(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error) {
	if filter.CompanyID == "" {
		return nil, fmt.Errorf("%w: company id is required", domain.ErrInvalidInput)
	}
	return s.store.Matches().ListMatches(ctx, filter)
}

// Stats recomputes the company's reconciliation figures
func (s *ReconciliationService) Stats(ctx context.Context, companyID string) (domain.ReconciliationStats, error) {
	total, orphans, err := s.store.Transactions().CountTransactions(ctx, companyID)
	if err != nil {
		return domain.ReconciliationStats{}, fmt.Errorf("counting transactions: %w", err)
	}

	counts, err := s.store.Matches().CountMatchesByStatus(ctx, companyID)
	if err != nil {
		return domain.ReconciliationStats{}, fmt.Errorf("counting matches: %w", err)
	}

	confirmed := counts[domain.MatchConfirmed]
	return domain.ReconciliationStats{
		TotalTransactions:  total,
		Reconciled:         total - orphans,
		Orphans:            orphans,
		ConfirmedMatches:   confirmed,
		SuggestedMatches:   counts[domain.MatchSuggested],
		RejectedMatches:    counts[domain.MatchRejected],
		ReconciliationRate: domain.ReconciliationRate(confirmed, orphans),
	}, nil
}
