// Command spark is a dev CLI for maintenance and debugging tasks.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/browser"

	"github.com/spark-rms/spark/internal/classifier"
	"github.com/spark-rms/spark/internal/config"
	"github.com/spark-rms/spark/internal/fetch"
	"github.com/spark-rms/spark/internal/genai/providers"
	"github.com/spark-rms/spark/internal/scheduler"
	"github.com/spark-rms/spark/internal/scoring"
	"github.com/spark-rms/spark/internal/store"
	"github.com/spark-rms/spark/internal/syncer"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sync-now":
		runSyncNow()
	case "score":
		runScore(os.Args[2:])
	case "open":
		if len(os.Args) < 3 {
			fmt.Println("Usage: spark open <config|cache|data>")
			os.Exit(1)
		}
		runOpen(os.Args[2])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: spark <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  sync-now      Run one sync pass over all connected users")
	fmt.Println("  score         Compute a relationship score from interaction stats")
	fmt.Println("  open config   Open config file in default editor")
	fmt.Println("  open cache    Open cache directory in file explorer")
	fmt.Println("  open data     Open data directory in file explorer")
}

func runSyncNow() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbPath, err := config.DBPath()
	if err != nil {
		log.Fatalf("Failed to resolve database path: %v", err)
	}
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	var cls syncer.ImportanceClassifier
	if cfg.Sync.ClassifyImportance {
		client, err := providers.New(cfg.AI)
		if err != nil {
			log.Fatalf("Failed to create AI client: %v", err)
		}
		cls = classifier.New(client)
	}

	fetcher := fetch.NewGmailFetcher(cfg.Google)
	sy := syncer.New(st, st, st, fetcher, cls, nil, syncer.Options{
		LookbackDays:       cfg.Sync.LookbackDays,
		BatchSize:          cfg.Sync.BatchSize,
		ClassifyImportance: cfg.Sync.ClassifyImportance,
	})

	sched, err := scheduler.New(cfg.Digest.Timezone)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Same job the daemon schedules, run once with the scheduled timeout
	var result *syncer.BatchResult
	err = sched.RunNow("sync", func(ctx context.Context) error {
		r, err := sy.SyncAllUsers(ctx)
		result = r
		return err
	})
	if err != nil {
		log.Fatalf("Sync failed: %v", err)
	}

	fmt.Printf("Processed %d activities (%d linkedin, %d facebook)\n",
		result.Processed, result.LinkedIn, result.Facebook)
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
}

func runScore(args []string) {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	frequency := fs.Float64("frequency", 0, "interactions per month")
	response := fs.Float64("response", 0, "response rate percentage (0-100)")
	topics := fs.Int("topics", 0, "number of common topics")
	days := fs.Float64("days", 0, "days since last interaction")
	referrals := fs.Int("referrals", 0, "referrals given or received")
	fs.Parse(args)

	result := scoring.CalculateRelationshipScore(scoring.Inputs{
		InteractionFrequency: *frequency,
		ResponseRate:         *response,
		CommonTopics:         *topics,
		LastInteractionDays:  *days,
		ReferralCount:        *referrals,
	})

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}

func runOpen(target string) {
	var path string
	var err error

	switch target {
	case "config":
		path, err = config.ConfigPath()
	case "cache":
		path, err = config.CacheDir()
	case "data":
		path, err = config.DataDir()
	default:
		fmt.Printf("Unknown target: %s\n", target)
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Failed to get path: %v", err)
	}

	if err := browser.OpenFile(path); err != nil {
		log.Fatalf("Failed to open: %v", err)
	}
}
