package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bankinfo/internal/branches"
	"bankinfo/internal/config"
	"bankinfo/internal/export"
	"bankinfo/internal/logger"
	"bankinfo/internal/scrape"
	"bankinfo/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logger.SetVerbose(cfg.LogVerbose)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "branches:dedupe":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "branch-info.json", "raw branch records (json array)")
		output := fs.String("output", "branch-info-processed.json", "deduplicated output path")
		numbers := fs.String("numbers", "", "optional path for the branch number list")
		_ = fs.Parse(os.Args[2:])
		records, res, err := branches.DedupeFile(*input, *output)
		must(err)
		if strings.TrimSpace(*numbers) != "" {
			written, err := branches.WriteNumbers(*numbers, records)
			must(err)
			fmt.Printf("wrote %d branch numbers to %s\n", written, *numbers)
		}
		fmt.Printf("dedupe done read=%d kept=%d dropped=%d output=%s\n", res.Read, res.Kept, res.Dropped, *output)
	case "branches:url":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		number := fs.String("number", "", "8-digit branch number")
		_ = fs.Parse(os.Args[2:])
		u, err := branches.BuildURL(cfg.LookupBaseURL(), *number)
		must(err)
		fmt.Println(u)
	case "branches:scrape":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "branch number list")
		inType := fs.String("type", "auto", "auto|text|json|xlsx|pdf|eml")
		out := fs.String("out", "", "csv output path (default stdout)")
		failFast := fs.Bool("fail-fast", cfg.ScrapeFailFast, "stop at the first failing branch")
		verbose := fs.Bool("verbose", cfg.LogVerbose, "log every branch")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		logger.SetVerbose(*verbose)

		numbers, err := branches.LoadNumbers(*inType, *input)
		must(err)
		if len(numbers) == 0 {
			must(fmt.Errorf("no branch numbers in %s", *input))
		}

		sinkFile := os.Stdout
		if strings.TrimSpace(*out) != "" {
			sinkFile, err = os.Create(*out)
			must(err)
			defer sinkFile.Close()
		}

		db := openDB(cfg)
		defer db.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		svc := scrape.NewService(db, cfg)
		svc.FailFast = *failFast
		summary, err := svc.Run(ctx, *input, numbers, export.NewCSVWriter(sinkFile))
		fmt.Fprintf(os.Stderr, "scrape run=%s total=%d ok=%d failed=%d\n", summary.RunID, summary.Total, summary.Written, len(summary.Failures))
		for _, f := range summary.Failures {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Number, f.Error)
		}
		must(err)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.String("run", "latest", "run id or latest")
		out := fs.String("out", "", "output xlsx path (default OUTPUT_DIR/addresses-<run>.xlsx)")
		_ = fs.Parse(os.Args[2:])
		db := openDB(cfg)
		defer db.Close()
		id, err := db.ResolveRunID(*runID)
		must(err)
		if strings.TrimSpace(*out) == "" {
			*out = cfg.OutputPath("addresses-" + id + ".xlsx")
		}
		rows, err := db.MustAddresses(id)
		must(err)
		must(export.ExportRowsToXLSX(rows, *out))
		fmt.Printf("exported %d rows of run=%s to %s\n", len(rows), id, *out)
	case "export:csv":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.String("run", "latest", "run id or latest")
		out := fs.String("out", "", "output csv path (default stdout)")
		_ = fs.Parse(os.Args[2:])
		db := openDB(cfg)
		defer db.Close()
		id, err := db.ResolveRunID(*runID)
		must(err)
		rows, err := db.MustAddresses(id)
		must(err)
		w := os.Stdout
		if strings.TrimSpace(*out) != "" {
			w, err = os.Create(*out)
			must(err)
			defer w.Close()
		}
		written, err := export.ExportRowsToCSV(rows, w)
		must(err)
		fmt.Fprintf(os.Stderr, "exported %d rows of run=%s\n", written, id)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs")
		_ = fs.Parse(os.Args[2:])
		db := openDB(cfg)
		defer db.Close()
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			finished := "running"
			if r.FinishedAt != nil {
				finished = *r.FinishedAt
			}
			fmt.Printf("%s started=%s finished=%s source=%s ok=%d failed=%d\n",
				r.TraceID, r.StartedAt, finished, r.Source, r.Counts["ok"], r.Counts["failed"])
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: bankinfo <command>")
	fmt.Println("commands:")
	fmt.Println("  branches:dedupe --input=branch-info.json --output=branch-info-processed.json [--numbers=branches.txt]")
	fmt.Println("  branches:scrape --input=branches.txt [--type=auto|text|json|xlsx|pdf|eml] [--out=bank-branches.csv] [--fail-fast] [--verbose]")
	fmt.Println("  branches:url --number=00109980")
	fmt.Println("  export:xlsx [--run=latest] [--out=./out/addresses.xlsx]")
	fmt.Println("  export:csv [--run=latest] [--out=bank-branches.csv]")
	fmt.Println("  runs:list [--limit=20]")
}

func openDB(cfg config.Config) *storage.DB {
	must(cfg.Require("DB_PATH", cfg.DBPath))
	db, err := storage.Open(cfg.DBPath)
	must(err)
	return db
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
