package domain

import "strings"

// CategorizationRule assigns Category to transactions whose description
// contains Pattern, case-insensitively
type CategorizationRule struct {
	ID        string
	CompanyID string
	Name      string
	Pattern   string
	Category  string
	Priority  int
	Active    bool
}

// Matches reports whether the rule applies to description
func (r CategorizationRule) Matches(description string) bool {
	if !r.Active || strings.TrimSpace(r.Pattern) == "" {
		return false
	}
	return strings.Contains(strings.ToLower(description), strings.ToLower(r.Pattern))
}
