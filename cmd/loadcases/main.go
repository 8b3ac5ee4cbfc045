package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/sanketexe/legal-chatbot/internal/bootstrap"
	"github.com/sanketexe/legal-chatbot/internal/config"
)

func main() {
	var (
		filePath  = flag.String("file", "data/all_cases.json", "case corpus file (JSON array or JSONL)")
		batchSize = flag.Int("batch", 0, "embedding batch size (0 = configured default)")
		reset     = flag.Bool("reset", false, "drop the existing index before loading")
	)
	flag.Parse()

	cfg := config.Load()

	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Unable to bootstrap application: %v", err)
	}
	defer container.Close()

	bold := color.New(color.Bold)
	bold.Printf("Loading cases from %s into the %s index...\n", *filePath, cfg.Store.Backend)
	if *reset {
		color.Yellow("Resetting existing index first")
	}

	report, err := container.LoaderService.LoadFromFile(context.Background(), *filePath, *batchSize, *reset)
	if err != nil {
		color.Red("Load failed: %v", err)
		os.Exit(1)
	}

	bold.Println("\nLoad report")
	color.Green("  indexed:            %d / %d", report.TotalIndexed, report.TotalInput)
	if report.TotalSkippedDuplicate > 0 {
		color.Yellow("  duplicate ids:      %d (last write wins)", report.TotalSkippedDuplicate)
	}
	if len(report.FailedIDs) > 0 {
		color.Red("  failed:             %d", len(report.FailedIDs))
		for _, id := range report.FailedIDs {
			color.Red("    - %s", id)
		}
	}
	bold.Printf("  elapsed:            %s\n", report.Elapsed.Round(time.Millisecond))

	if len(report.FailedIDs) > 0 {
		os.Exit(2)
	}
}
