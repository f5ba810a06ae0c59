package domain

import "time"

// Period is the date range covered by an import. Both ends are nil when no
// row parsed.
type Period struct {
	Start *time.Time
	End   *time.Time
}

// Include widens the period to cover d
func (p *Period) Include(d time.Time) {
	if p.Start == nil || d.Before(*p.Start) {
		start := d
		p.Start = &start
	}
	if p.End == nil || d.After(*p.End) {
		end := d
		p.End = &end
	}
}

// ImportResult summarizes one statement ingestion
type ImportResult struct {
	ImportID   string
	Format     string
	Total      int
	Imported   int
	Ignored    int
	Duplicates int
	Period     Period
}

// ImportRecord is the persisted audit row of an ingestion
type ImportRecord struct {
	ID         string
	CompanyID  string
	FileName   string
	Format     string
	Total      int
	Imported   int
	Ignored    int
	Duplicates int
	Period     Period
	ArchiveURI string
	CreatedAt  time.Time
}
