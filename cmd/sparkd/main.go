// Command sparkd is the relationship engine daemon: it periodically syncs
// platform notifications for all connected users and sends outreach
// digests.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spark-rms/spark/internal/app"
	"github.com/spark-rms/spark/internal/classifier"
	"github.com/spark-rms/spark/internal/config"
	"github.com/spark-rms/spark/internal/digest"
	"github.com/spark-rms/spark/internal/fetch"
	"github.com/spark-rms/spark/internal/genai/providers"
	"github.com/spark-rms/spark/internal/matcher"
	"github.com/spark-rms/spark/internal/notifier"
	"github.com/spark-rms/spark/internal/planner"
	"github.com/spark-rms/spark/internal/scheduler"
	"github.com/spark-rms/spark/internal/store"
	"github.com/spark-rms/spark/internal/syncer"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load or create configuration
	cfg, err := config.Load()
	if err != nil {
		if os.IsNotExist(err) {
			// First run - create default config
			cfg = config.Default()
			if err := cfg.Save(); err != nil {
				log.Printf("Warning: could not save default config: %v", err)
			} else {
				path, _ := config.ConfigPath()
				log.Printf("Created default config at: %s", path)
			}
		} else {
			log.Printf("Warning: could not load config: %v (using defaults)", err)
			cfg = config.Default()
		}
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

	client, err := providers.New(cfg.AI)
	if err != nil {
		log.Fatalf("Failed to create AI client: %v", err)
	}

	// Email is optional; without it the daemon still syncs, it just
	// cannot alert or send digests.
	var mailer *notifier.Notifier
	if cfg.Email.SMTPHost != "" {
		mailer, err = notifier.NewFromConfig(cfg.Email)
		if err != nil {
			log.Fatalf("Failed to create notifier: %v", err)
		}
	} else {
		log.Println("No SMTP host configured, alerts and digests disabled")
	}

	var alerts syncer.AlertSink
	if mailer != nil {
		alerts = mailer
	}

	fetcher := fetch.NewGmailFetcher(cfg.Google)
	sy := syncer.New(st, st, st, fetcher, classifier.New(client), alerts, syncer.Options{
		LookbackDays:       cfg.Sync.LookbackDays,
		BatchSize:          cfg.Sync.BatchSize,
		ClassifyImportance: cfg.Sync.ClassifyImportance,
	})

	digests, err := digest.New(cfg.Digest.MaxItems)
	if err != nil {
		log.Fatalf("Failed to create digest builder: %v", err)
	}

	a := app.New(cfg, st, sy, matcher.New(client), planner.New(client), digests, mailer)

	sched, err := scheduler.New(cfg.Digest.Timezone)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := sched.AddSyncJob(cfg.Sync.IntervalHours, a.RunSyncPass); err != nil {
		log.Fatalf("Failed to schedule sync job: %v", err)
	}
	if mailer != nil {
		if err := sched.AddDigestJob("digest", cfg.Digest.SendTime, a.SendDigests); err != nil {
			log.Fatalf("Failed to schedule digest job: %v", err)
		}
	}

	log.Println("sparkd starting...")
	sched.Start()

	// Run an initial pass immediately so a fresh install has data
	if err := a.RunSyncPass(context.Background()); err != nil {
		log.Printf("Initial sync pass failed: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for s := range sig {
		if s != syscall.SIGHUP {
			break
		}
		log.Println("SIGHUP received, reloading configuration")
		if err := a.ReloadConfig(); err != nil {
			log.Printf("Config reload failed: %v", err)
		}
	}

	log.Println("sparkd shutting down...")
	<-sched.Stop().Done()
}
