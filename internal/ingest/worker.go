package ingest

import (
	"context"
	"sync"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/internal/parser"
	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
)

// rowOutcome is the parse result of one sheet row
type rowOutcome struct {
	line int
	txn  domain.CanonicalTransaction
	ok   bool
}

type rowBatch struct {
	index int
	rows  []fileutil.Row
}

type outcomeBatch struct {
	index    int
	outcomes []rowOutcome
}

// parseRows parses every row with p. With more than one worker the rows are
// split into batches handled by a pool; outcomes always come back in sheet
// order.
func parseRows(ctx context.Context, p parser.Parser, rows []fileutil.Row, numWorkers, batchSize int) ([]rowOutcome, error) {
	if numWorkers <= 1 || len(rows) <= batchSize {
		return parseBatch(p, rows), nil
	}
	if batchSize <= 0 {
		batchSize = len(rows)
	}

	numBatches := (len(rows) + batchSize - 1) / batchSize

	// Set up concurrent processing
	jobs := make(chan rowBatch, numWorkers)
	results := make(chan outcomeBatch, numWorkers)

	// Start the worker pool
	var wg sync.WaitGroup
	startWorkers(numWorkers, &wg, p, jobs, results)

	// Start a goroutine to close results channel when all workers are done
	go func() {
		wg.Wait()
		close(results)
	}()

	// Distribute batches of rows to workers
	go func() {
		defer close(jobs)

		for i := 0; i < numBatches; i++ {
			end := min((i+1)*batchSize, len(rows))
			select {
			case jobs <- rowBatch{index: i, rows: rows[i*batchSize : end]}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return collectResults(ctx, results, numBatches)
}

// startWorkers creates a pool of worker goroutines to parse batches of rows
func startWorkers(numWorkers int, wg *sync.WaitGroup, p parser.Parser, jobs <-chan rowBatch, results chan<- outcomeBatch) {
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for batch := range jobs {
				results <- outcomeBatch{index: batch.index, outcomes: parseBatch(p, batch.rows)}
			}
		}()
	}
}

// collectResults reassembles worker output in batch order
func collectResults(ctx context.Context, results <-chan outcomeBatch, numBatches int) ([]rowOutcome, error) {
	batches := make([][]rowOutcome, numBatches)

	for batch := range results {
		batches[batch.index] = batch.outcomes
	}

	// the distributor stops early on cancellation, leaving gaps
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var outcomes []rowOutcome
	for _, b := range batches {
		outcomes = append(outcomes, b...)
	}
	return outcomes, nil
}

func parseBatch(p parser.Parser, rows []fileutil.Row) []rowOutcome {
	outcomes := make([]rowOutcome, 0, len(rows))
	for _, row := range rows {
		txn, ok := p.Parse(row)
		outcomes = append(outcomes, rowOutcome{line: row.Line, txn: txn, ok: ok})
	}
	return outcomes
}
