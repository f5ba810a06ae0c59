package domain

// AutoMatchResult contains the result of an auto-match run
type AutoMatchResult struct {
	TotalMatches  int
	AutoConfirmed int
	Matches       []Match
}

// ReconciliationStats is recomputed on demand and never stored
type ReconciliationStats struct {
	TotalTransactions  int64
	Reconciled         int64
	Orphans            int64 // unreconciled transactions
	ConfirmedMatches   int64
	SuggestedMatches   int64
	RejectedMatches    int64
	ReconciliationRate float64
}

// ReconciliationRate is confirmed / (confirmed + orphans) * 100, or zero
// when both are zero
func ReconciliationRate(confirmed, orphans int64) float64 {
	if confirmed+orphans == 0 {
		return 0
	}
	return float64(confirmed) / float64(confirmed+orphans) * 100
}
