package fileutil

import (
	"fmt"

	"github.com/tirasundara/bpo-reconciliation/pkg/locale"
)

// HeaderIndex maps each expected column to its position in header, comparing
// case- and accent-insensitively
func HeaderIndex(header []string, expected []string) (map[string]int, error) {
	columnMap := make(map[string]int, len(expected))

	for _, column := range expected {
		found := false
		for i, field := range header {
			if locale.Fold(column) == locale.Fold(field) {
				columnMap[column] = i
				found = true
				break
			}
		}

		if !found {
			return nil, fmt.Errorf("required field '%s' not found in header", column)
		}
	}

	return columnMap, nil
}
