// Package app wires the engine's components behind the operations the
// daemon and CLI expose: sync passes, outreach digests, and outreach
// planning.
package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/spark-rms/spark/internal/config"
	"github.com/spark-rms/spark/internal/digest"
	"github.com/spark-rms/spark/internal/genai/providers"
	"github.com/spark-rms/spark/internal/matcher"
	"github.com/spark-rms/spark/internal/notifier"
	"github.com/spark-rms/spark/internal/planner"
	"github.com/spark-rms/spark/internal/store"
	"github.com/spark-rms/spark/internal/syncer"
	"github.com/spark-rms/spark/internal/types"
)

// App holds the application state.
type App struct {
	mu    sync.RWMutex
	store *store.Store // immutable after creation

	// Mutable fields - use getSnapshot() for concurrent access.
	config  *config.Config
	syncer  *syncer.Syncer
	matcher *matcher.Matcher
	planner *planner.Planner
	digests *digest.Builder
	mailer  *notifier.Notifier
}

// snapshot holds fields that may be replaced by ReloadConfig.
// Use getSnapshot() to obtain a consistent, point-in-time copy.
type snapshot struct {
	config  *config.Config
	syncer  *syncer.Syncer
	matcher *matcher.Matcher
	planner *planner.Planner
	digests *digest.Builder
	mailer  *notifier.Notifier
}

// getSnapshot returns a snapshot of mutable fields under read lock.
func (a *App) getSnapshot() snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return snapshot{
		config:  a.config,
		syncer:  a.syncer,
		matcher: a.matcher,
		planner: a.planner,
		digests: a.digests,
		mailer:  a.mailer,
	}
}

// New creates a new App instance.
func New(cfg *config.Config, st *store.Store, sy *syncer.Syncer, m *matcher.Matcher, p *planner.Planner, d *digest.Builder, n *notifier.Notifier) *App {
	return &App{
		config:  cfg,
		store:   st,
		syncer:  sy,
		matcher: m,
		planner: p,
		digests: d,
		mailer:  n,
	}
}

// RunSyncPass ingests notifications for every connected user.
func (a *App) RunSyncPass(ctx context.Context) error {
	s := a.getSnapshot()

	result, err := s.syncer.SyncAllUsers(ctx)
	if err != nil {
		return err
	}

	for _, e := range result.Errors {
		log.Printf("Sync error: %s", e)
	}
	return nil
}

// SendDigests builds and sends the outreach digest for every connected
// user with a notification address. A user with nothing important to
// report simply gets no email.
func (a *App) SendDigests(ctx context.Context) error {
	s := a.getSnapshot()
	if s.mailer == nil {
		log.Println("No mailer configured, skipping digests")
		return nil
	}

	conns, err := a.store.ListActiveConnections(store.ProviderGoogle)
	if err != nil {
		return fmt.Errorf("failed to list connections: %w", err)
	}

	for _, conn := range conns {
		if conn.NotifyEmail == "" {
			continue
		}
		if err := a.sendUserDigest(s, conn.UserID, conn.NotifyEmail); err != nil {
			log.Printf("Digest for user %s failed: %v", conn.UserID, err)
		}
	}
	return nil
}

func (a *App) sendUserDigest(s snapshot, userID, toAddr string) error {
	activities, err := a.store.ListImportantActivities(userID, s.config.Sync.LookbackDays, s.config.Digest.MaxItems)
	if err != nil {
		return err
	}
	if len(activities) == 0 {
		log.Printf("No important activities for user %s, skipping digest", userID)
		return nil
	}

	d, err := s.digests.Build(activities)
	if err != nil {
		return err
	}

	if err := s.mailer.SendDigest(d, toAddr); err != nil {
		return err
	}
	log.Printf("Digest sent to %s (%d items)", toAddr, len(d.ActivityIDs))
	return nil
}

// Outreach is a fully prepared response to one contact activity: the
// ranked story candidates and a plan built around the best one.
type Outreach struct {
	Matches []types.MatchResult
	Plan    types.ConversationPlan
}

// PlanOutreach matches the user's story library against an activity and
// plans a conversation with the given contact on the given platform. The
// chosen story's usage counter is advanced.
func (a *App) PlanOutreach(ctx context.Context, userID string, activity types.Activity, contactID string, platform types.Platform) (*Outreach, error) {
	s := a.getSnapshot()

	contact, err := a.store.GetContact(contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}
	if contact == nil {
		return nil, fmt.Errorf("contact %s not found", contactID)
	}

	stories, err := a.store.ListStories(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}

	matches := s.matcher.MatchStories(ctx, activity, stories)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no matching stories for this activity")
	}

	best := matches[0].Story
	plan := s.planner.PlanConversation(ctx, *contact, best, platform)

	if err := a.store.RecordUsage(best.ID); err != nil {
		log.Printf("Failed to record story usage: %v", err)
	}

	return &Outreach{Matches: matches, Plan: plan}, nil
}

// ReloadConfig reloads the configuration from disk and rebuilds the
// AI-backed components.
func (a *App) ReloadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := providers.New(cfg.AI)
	if err != nil {
		return err
	}

	digests, err := digest.New(cfg.Digest.MaxItems)
	if err != nil {
		return err
	}

	var mailer *notifier.Notifier
	if cfg.Email.SMTPHost != "" {
		mailer, err = notifier.NewFromConfig(cfg.Email)
		if err != nil {
			return err
		}
	}

	a.mu.Lock()
	a.config = cfg
	a.matcher = matcher.New(client)
	a.planner = planner.New(client)
	a.digests = digests
	a.mailer = mailer
	a.mu.Unlock()

	log.Println("Configuration reloaded")
	return nil
}
