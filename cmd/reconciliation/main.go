package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tirasundara/bpo-reconciliation/internal/archive"
	"github.com/tirasundara/bpo-reconciliation/internal/config"
	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/internal/ingest"
	"github.com/tirasundara/bpo-reconciliation/internal/logger"
	"github.com/tirasundara/bpo-reconciliation/internal/matcher"
	"github.com/tirasundara/bpo-reconciliation/internal/report"
	"github.com/tirasundara/bpo-reconciliation/internal/repository"
	"github.com/tirasundara/bpo-reconciliation/internal/repository/memory"
	"github.com/tirasundara/bpo-reconciliation/internal/service"
)

// accountSaver is implemented by both stores
type accountSaver interface {
	SaveAccounts(ctx context.Context, accounts []domain.Account) error
}

type store interface {
	domain.Store
	accountSaver
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(fmt.Sprintf("Invalid configuration: %v", err))
	}

	// Command-line flags
	var (
		statementFile string
		accountsFile  string
		companyID     string
		storeDriver   string
		dsn           string
		threshold     int
		workers       int
		batchSize     int
		archiveBucket string
		skipMatch     bool
		outputFormat  string
		outputFile    string
		prettyPrint   bool
		logLevel      string
	)

	flag.StringVar(&statementFile, "file", "", "Path to the bank statement (.xlsx, .xls or .csv)")
	flag.StringVar(&accountsFile, "accounts", "", "Optional CSV of open payables/receivables to seed (kind,id,descricao,valor,vencimento,documento)")
	flag.StringVar(&companyID, "company", "", "Company (tenant) id the statement belongs to")
	flag.StringVar(&storeDriver, "store", config.StoreMemory, "Store driver: memory or mysql")
	flag.StringVar(&dsn, "dsn", "", "MySQL DSN (defaults to the DB_* environment)")
	flag.IntVar(&threshold, "threshold", cfg.AutoConfirmThreshold, "Auto confirm threshold (1-100)")
	flag.IntVar(&workers, "workers", cfg.IngestWorkers, "Number of row parsing workers")
	flag.IntVar(&batchSize, "batch-size", cfg.IngestBatchSize, "Rows per parsing batch")
	flag.StringVar(&archiveBucket, "archive-bucket", cfg.ArchiveBucket, "GCS bucket for the raw statement (empty disables archival)")
	flag.BoolVar(&skipMatch, "skip-match", false, "Import only, do not run auto match")
	flag.StringVar(&outputFormat, "format", "json", "Output format: json only for now")
	flag.StringVar(&outputFile, "output", "", "Path to output file (if empty, writes to stdout)")
	flag.BoolVar(&prettyPrint, "pretty", true, "Pretty print JSON output")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level written to stderr")

	flag.Parse()

	// Validate required flags
	if statementFile == "" {
		exitWithError("Statement file path is required")
	}
	if companyID == "" {
		exitWithError("Company id is required")
	}
	if threshold < 1 || threshold > 100 {
		exitWithError(fmt.Sprintf("Threshold must be within 1..100, got %d", threshold))
	}

	log, err := logger.Configure(os.Stderr, logLevel, logger.FormatConsole)
	if err != nil {
		exitWithError(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, storeDriver, dsn, cfg, log)
	if err != nil {
		exitWithError(err.Error())
	}

	if accountsFile != "" {
		n, err := seedAccounts(ctx, st, accountsFile, companyID)
		if err != nil {
			exitWithError(fmt.Sprintf("Failed to seed accounts: %v", err))
		}
		log.Info().Int("accounts", n).Msg("accounts seeded")
	}

	data, err := os.ReadFile(statementFile)
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to read statement: %v", err))
	}

	opts := ingest.Options{Workers: workers, BatchSize: batchSize}
	if archiveBucket != "" {
		archiver, err := archive.NewGCSArchiver(ctx, archiveBucket, cfg.ArchivePrefix)
		if err != nil {
			exitWithError(fmt.Sprintf("Failed to set up archival: %v", err))
		}
		defer archiver.Close()
		opts.Archiver = archiver
	}

	imported, err := ingest.NewService(st, opts, log).Import(ctx, ingest.Request{
		CompanyID: companyID,
		FileName:  filepath.Base(statementFile),
		Data:      data,
	})
	if err != nil {
		exitWithError(fmt.Sprintf("Import failed: %v", err))
	}

	reconciliationService := service.NewReconciliationService(st, matcher.NewScoringMatcher(), threshold, log)

	var matched *domain.AutoMatchResult
	if !skipMatch {
		result, err := reconciliationService.RunAutoMatch(ctx, service.AutoMatchRequest{CompanyID: companyID})
		if err != nil {
			exitWithError(fmt.Sprintf("Auto match failed: %v", err))
		}
		matched = &result
	}

	stats, err := reconciliationService.Stats(ctx, companyID)
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to compute stats: %v", err))
	}

	// Format the output
	var formatter report.OutputFormatter
	switch outputFormat {
	case "json":
		formatter = report.NewJSONFormatter(prettyPrint)
	default:
		exitWithError(fmt.Sprintf("Unsupported output format: %s", outputFormat))
		return
	}

	output, err := formatter.Format(report.NewReport(&imported, matched, stats))
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to format output: %v", err))
	}

	if outputFile == "" {
		fmt.Println(string(output))
		return
	}

	// If no extension is provided, add the formatter's default extension
	if !strings.Contains(filepath.Base(outputFile), ".") {
		outputFile = fmt.Sprintf("%s.%s", outputFile, formatter.FileExtension())
	}
	if err := os.WriteFile(outputFile, output, 0644); err != nil {
		exitWithError(fmt.Sprintf("Failed to write output file: %v", err))
	}
}

func openStore(ctx context.Context, driver, dsn string, cfg config.Config, log zerolog.Logger) (store, error) {
	switch driver {
	case config.StoreMemory:
		return memory.NewStore(), nil
	case config.StoreMySQL:
		if dsn == "" {
			dsn = cfg.MySQLDSN()
		}
		db, err := repository.Open(ctx, dsn, log)
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(db); err != nil {
			return nil, err
		}
		return repository.NewStore(db), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}

func seedAccounts(ctx context.Context, st accountSaver, path, companyID string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	accounts, err := memory.LoadAccountsCSV(f, companyID)
	if err != nil {
		return 0, err
	}
	if err := st.SaveAccounts(ctx, accounts); err != nil {
		return 0, err
	}
	return len(accounts), nil
}

func exitWithError(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	fmt.Fprintf(os.Stderr, "Run with -h flag for usage information.\n")
	os.Exit(1)
}
