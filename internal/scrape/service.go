package scrape

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bankinfo/internal"
	"bankinfo/internal/branches"
	"bankinfo/internal/config"
	"bankinfo/internal/export"
	"bankinfo/internal/logger"
	"bankinfo/internal/storage"
	"bankinfo/internal/util"
)

type Service struct {
	db     *storage.DB
	cfg    config.Config
	client *Client

	// FailFast aborts the run on the first failing branch instead of
	// recording it and moving on.
	FailFast bool
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg, client: NewClient(cfg), FailFast: cfg.ScrapeFailFast}
}

type RunSummary struct {
	RunID    string
	Total    int
	Written  int
	Failures []internal.RunFailure
}

func (r RunSummary) counts() map[string]int {
	return map[string]int{"total": r.Total, "ok": r.Written, "failed": len(r.Failures)}
}

// Run scrapes numbers one at a time, in order, writing a CSV line to sink for
// every branch whose address was found. Each branch's outcome is stored under
// the run id.
func (s *Service) Run(ctx context.Context, source string, numbers []string, sink *export.CSVWriter) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString(), Total: len(numbers)}
	if err := s.db.InsertRun(summary.RunID, source); err != nil {
		return summary, err
	}
	finish := func() {
		if err := s.db.FinishRun(summary.RunID, summary.counts()); err != nil {
			logger.Warn("finish run %s: %v", summary.RunID, err)
		}
		if err := s.db.SetMetadata(storage.MetaLastRun, summary.RunID); err != nil {
			logger.Warn("record last run %s: %v", summary.RunID, err)
		}
	}
	defer finish()

	for i, number := range numbers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		logger.Debug("[%d/%d] branch %s", i+1, len(numbers), number)

		row, scrapeErr := s.ScrapeOne(ctx, summary.RunID, number)
		if scrapeErr != nil && ctx.Err() != nil {
			return summary, ctx.Err()
		}
		if scrapeErr == nil {
			n := internal.BranchNumber{Institution: row.Institution, Branch: row.Branch}
			if err := sink.WriteAddressLine(n, row.Line); err != nil {
				return summary, fmt.Errorf("write csv line: %w", err)
			}
			summary.Written++
		}
		if err := s.db.InsertAddress(row); err != nil {
			return summary, err
		}
		if scrapeErr != nil {
			logger.Error("%v", scrapeErr)
			summary.Failures = append(summary.Failures, internal.RunFailure{Number: number, Error: scrapeErr.Error()})
			if s.FailFast {
				return summary, scrapeErr
			}
		}
	}

	logger.Info("run %s done total=%d ok=%d failed=%d", summary.RunID, summary.Total, summary.Written, len(summary.Failures))
	return summary, nil
}

// ScrapeOne fetches and extracts a single branch. The returned row is filled
// in as far as processing got, with status failed when err is non-nil.
func (s *Service) ScrapeOne(ctx context.Context, runID, number string) (internal.AddressRow, error) {
	row := internal.AddressRow{RunID: runID, Number: number, Status: internal.AddressFailed}
	fail := func(err error) (internal.AddressRow, error) {
		err = fmt.Errorf("branch %s: %w", number, err)
		row.Error = util.StringPtr(err.Error())
		return row, err
	}

	n, err := branches.ParseBranchNumber(number)
	if err != nil {
		return fail(err)
	}
	row.Institution, row.Branch = n.Institution, n.Branch

	pageURL, err := branches.BuildURL(s.cfg.LookupBaseURL(), number)
	if err != nil {
		return fail(err)
	}
	row.URL = pageURL

	body, err := s.client.FetchPage(ctx, pageURL)
	if err != nil {
		return fail(err)
	}

	addr, err := ExtractAddress(string(body))
	if err != nil {
		return fail(err)
	}

	row.BranchName = addr.BranchName
	row.Address = addr.Address
	row.Line = addr.Line()
	row.Status = internal.AddressOK
	return row, nil
}
