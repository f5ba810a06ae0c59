package ingest

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

// FITIDLength is the number of hex characters kept from the identity hash
const FITIDLength = 32

// IdentityFunc derives the deduplication key of a parsed row
type IdentityFunc func(txn domain.CanonicalTransaction) string

// ContentHash hashes "date_description_amount" with the ISO date and the
// signed amount at two decimals
func ContentHash(txn domain.CanonicalTransaction) string {
	key := txn.Date.Format("2006-01-02") + "_" + txn.Description + "_" + txn.SignedAmount().StringFixed(2)
	return truncatedHash(key)
}

// NativeOrContentHash prefers an id supplied by the bank layout and falls
// back to ContentHash
func NativeOrContentHash(txn domain.CanonicalTransaction) string {
	if txn.ExternalID != "" {
		return truncatedHash("native_" + txn.ExternalID)
	}
	return ContentHash(txn)
}

func truncatedHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:FITIDLength]
}
