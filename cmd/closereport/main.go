package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/microschoolhq/finance-engine/internal/checklist"
	"github.com/microschoolhq/finance-engine/internal/logger"
	"github.com/microschoolhq/finance-engine/internal/report"
	"github.com/microschoolhq/finance-engine/internal/repository"
	"github.com/microschoolhq/finance-engine/internal/service"
)

const feedDateFormat = "2006-01-02"

func main() {
	// Command-line flags
	var (
		feedFile       string
		statementFiles string
		outputFile     string
		prettyPrint    bool
	)

	flag.StringVar(&feedFile, "feed-file", "", "Path to activity feed CSV file")
	flag.StringVar(&statementFiles, "statement-files", "", "Comma-separated paths to statement CSV files")
	flag.StringVar(&outputFile, "output", "", "Path to output file (if empty, writes to stdout)")
	flag.BoolVar(&prettyPrint, "pretty", true, "Pretty print JSON output")

	flag.Parse()

	if feedFile == "" {
		exitWithError("Activity feed file path is required")
	}

	log := logger.NewWithWriter(os.Stderr)
	store := repository.NewMemoryStore()
	feedRepo := repository.NewCSVFeedRepository(feedDateFormat, log)

	// Load the activity feed
	txns, err := feedRepo.LoadTransactions(feedFile)
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to load activity feed: %v", err))
	}
	for _, txn := range txns {
		if err := store.PutTransaction(txn); err != nil {
			exitWithError(fmt.Sprintf("Failed to store transaction: %v", err))
		}
	}

	// Load statements, if any
	for _, stmtFile := range strings.Split(statementFiles, ",") {
		stmtFile = strings.TrimSpace(stmtFile)
		if stmtFile == "" {
			continue
		}

		stmt, err := feedRepo.LoadStatement(stmtFile)
		if err != nil {
			exitWithError(fmt.Sprintf("Failed to load statement %s: %v", stmtFile, err))
		}
		if err := store.PutStatement(stmt); err != nil {
			exitWithError(fmt.Sprintf("Failed to store statement: %v", err))
		}
	}

	for _, step := range checklist.DefaultSteps() {
		if err := store.PutStep(step); err != nil {
			exitWithError(fmt.Sprintf("Failed to seed checklist: %v", err))
		}
	}

	cl := checklist.NewChecklist(store)
	activity := service.NewActivityService(store, store, cl)

	feed, err := activity.ActivityFeed()
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to build activity feed: %v", err))
	}

	steps, err := cl.Steps()
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to load checklist: %v", err))
	}

	readiness, err := activity.CloseReadiness()
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to compute close readiness: %v", err))
	}

	closeReport := report.CloseReport{
		Summary:   feed.Summary,
		Progress:  checklist.ComputeProgress(steps),
		Readiness: readiness,
	}

	formatter := report.NewJSONFormatter(prettyPrint)

	output, err := formatter.Format(closeReport)
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to format output: %v", err))
	}

	// Output the result
	if outputFile != "" {
		// If no extension is provided, add the formatter's default extension
		if !strings.Contains(outputFile, ".") {
			outputFile = fmt.Sprintf("%s.%s", outputFile, formatter.FileExtension())
		}

		if err := os.WriteFile(outputFile, output, 0644); err != nil {
			exitWithError(fmt.Sprintf("Failed to write output file: %v", err))
		}

	} else {
		fmt.Println(string(output))
	}
}

func exitWithError(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	fmt.Fprintf(os.Stderr, "Run with -h flag for usage information.\n")
	os.Exit(1)
}
