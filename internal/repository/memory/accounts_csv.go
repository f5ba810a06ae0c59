package memory

import (
	"fmt"
	"io"
	"strings"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
	"github.com/tirasundara/bpo-reconciliation/pkg/locale"
)

var accountHeaderFields = []string{"kind", "id", "descricao", "valor", "vencimento"}

const documentField = "documento"

// LoadAccountsCSV reads open payables and receivables for companyID from a
// comma separated file with the header kind,id,descricao,valor,vencimento
// and an optional documento column
func LoadAccountsCSV(r io.Reader, companyID string) ([]domain.Account, error) {
	reader := fileutil.NewCSVReader(r, ',')

	header, err := reader.ReadHeader()
	if err != nil {
		return nil, fmt.Errorf("reading accounts header: %w", err)
	}

	columnMap, err := fileutil.HeaderIndex(header, accountHeaderFields)
	if err != nil {
		return nil, fmt.Errorf("mapping accounts columns: %w", err)
	}

	docIndex := -1
	if docMap, err := fileutil.HeaderIndex(header, []string{documentField}); err == nil {
		docIndex = docMap[documentField]
	}

	// Find the highest column index needed
	maxIndex := -1
	for _, idx := range columnMap {
		maxIndex = max(maxIndex, idx)
	}

	var accounts []domain.Account
	line := 1
	var rowProcessorFn = func(row []string) error {
		line++

		if len(row) <= maxIndex {
			return fmt.Errorf("line %d: expected %d fields, got %d", line, maxIndex+1, len(row))
		}

		kind, err := domain.ParseAccountKind(strings.TrimSpace(row[columnMap["kind"]]))
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		amount, ok := locale.ParseCurrency(row[columnMap["valor"]])
		if !ok {
			return fmt.Errorf("line %d: %w: invalid valor %q", line, domain.ErrInvalidInput, row[columnMap["valor"]])
		}

		dueDate, ok := locale.ParseDate(strings.TrimSpace(row[columnMap["vencimento"]]))
		if !ok {
			return fmt.Errorf("line %d: %w: invalid vencimento %q", line, domain.ErrInvalidInput, row[columnMap["vencimento"]])
		}

		account := domain.Account{
			Kind:        kind,
			ID:          strings.TrimSpace(row[columnMap["id"]]),
			CompanyID:   companyID,
			Description: strings.TrimSpace(row[columnMap["descricao"]]),
			Amount:      amount,
			DueDate:     dueDate,
			Status:      domain.AccountStatusPending,
		}
		if docIndex >= 0 && docIndex < len(row) {
			account.BeneficiaryDocument = locale.Digits(row[docIndex])
		}

		accounts = append(accounts, account)
		return nil
	}

	if err := reader.ReadAndProcessByRow(rowProcessorFn); err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}

	return accounts, nil
}
