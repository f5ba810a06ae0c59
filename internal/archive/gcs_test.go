package archive_test

import (
	"testing"
	"time"

	"github.com/tirasundara/bpo-reconciliation/internal/archive"
)

func TestObjectName(t *testing.T) {
	at := time.Date(2024, time.March, 10, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		prefix   string
		fileName string
		expected string
	}{
		{"plain", "statements", "extrato.xlsx", "statements/acme/2024/03/abc-extrato.xlsx"},
		{"no prefix", "", "extrato.csv", "acme/2024/03/abc-extrato.csv"},
		{"slashes in prefix", "/raw/statements/", "extrato.csv", "raw/statements/acme/2024/03/abc-extrato.csv"},
		{"directory in file name", "raw", "C:\\Users\\ana\\extrato março.xls", "raw/acme/2024/03/abc-extrato_março.xls"},
		{"empty file name", "raw", "", "raw/acme/2024/03/abc-statement"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := archive.ObjectName(tt.prefix, "acme", "abc", tt.fileName, at)
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}
