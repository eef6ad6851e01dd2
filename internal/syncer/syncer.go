// Package syncer orchestrates ingestion of platform notifications for all
// connected users: token refresh, fetching, deduplicated persistence, and
// optional importance classification.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/spark-rms/spark/internal/classifier"
	"github.com/spark-rms/spark/internal/fetch"
	"github.com/spark-rms/spark/internal/store"
	"github.com/spark-rms/spark/internal/types"
)

// ErrReconnectRequired is returned when a connection's token is expired
// and no refresh token is available; the user must redo the OAuth flow.
var ErrReconnectRequired = errors.New("reconnect required")

// tokenExpirySkew refreshes tokens that expire within this window, so a
// token never dies mid-fetch.
const tokenExpirySkew = 5 * time.Minute

// syncPlatforms are the platforms ingested through each mail connection
var syncPlatforms = []types.Platform{types.PlatformLinkedIn, types.PlatformFacebook}

// Connections is the slice of the store the syncer reads and advances
type Connections interface {
	ListActiveConnections(provider string) ([]store.Connection, error)
	UpdateConnectionTokens(userID, provider, accessToken, refreshToken string, expiresAt time.Time) error
	UpdateLastSynced(userID, provider string, t time.Time) error
}

// Activities persists ingested activities
type Activities interface {
	InsertActivity(a *types.Activity) error
}

// AuditLog records completed sync passes
type AuditLog interface {
	RecordSyncRun(r *store.SyncRun) error
}

// Fetcher pulls notification items for one platform from a mail account
type Fetcher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	FetchSince(ctx context.Context, token *oauth2.Token, platform types.Platform, since time.Time) ([]fetch.Item, error)
}

// ImportanceClassifier flags activities worth proactive outreach
type ImportanceClassifier interface {
	Classify(ctx context.Context, content string) (*classifier.Classification, bool)
}

// AlertSink delivers important-activity alerts to the user
type AlertSink interface {
	SendAlert(to, subject, body string) error
}

// UserResult summarizes one user's sync
type UserResult struct {
	Processed int
	LinkedIn  int
	Facebook  int
	Errors    []string
}

// BatchResult aggregates a full pass over all connected users
type BatchResult struct {
	Processed int
	LinkedIn  int
	Facebook  int
	Errors    []string
}

// Options tune a Syncer. Zero values fall back to defaults.
type Options struct {
	LookbackDays       int  // default 7
	BatchSize          int  // parallel users per batch, default 5
	ClassifyImportance bool // run the importance classifier on new activities
}

// Syncer runs sync passes over all connected users
type Syncer struct {
	connections Connections
	activities  Activities
	audit       AuditLog
	fetcher     Fetcher
	classifier  ImportanceClassifier
	alerts      AlertSink
	opts        Options
}

// New creates a syncer. classifier and alerts may be nil, disabling
// importance classification and alerting respectively.
func New(connections Connections, activities Activities, audit AuditLog, fetcher Fetcher, cls ImportanceClassifier, alerts AlertSink, opts Options) *Syncer {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 7
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	return &Syncer{
		connections: connections,
		activities:  activities,
		audit:       audit,
		fetcher:     fetcher,
		classifier:  cls,
		alerts:      alerts,
		opts:        opts,
	}
}

// SyncAllUsers runs one full pass: every active connection is synced, up
// to BatchSize users in parallel. One user's failure never aborts the
// pass; it is recorded in the aggregate result instead.
func (s *Syncer) SyncAllUsers(ctx context.Context) (*BatchResult, error) {
	started := time.Now()

	conns, err := s.connections.ListActiveConnections(store.ProviderGoogle)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	// An empty pass still falls through so the audit row below records it.
	result := &BatchResult{}
	if len(conns) == 0 {
		log.Printf("No active connections to sync")
	} else {
		log.Printf("Syncing %d connected users (batch size %d)", len(conns), s.opts.BatchSize)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BatchSize)

	for _, conn := range conns {
		conn := conn
		g.Go(func() error {
			userResult, err := s.SyncUser(gctx, &conn)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", conn.UserID, err))
				return nil
			}
			result.Processed += userResult.Processed
			result.LinkedIn += userResult.LinkedIn
			result.Facebook += userResult.Facebook
			result.Errors = append(result.Errors, userResult.Errors...)
			return nil
		})
	}
	// Goroutines report failures through the shared result, never an error
	_ = g.Wait()

	log.Printf("Sync pass complete: %d activities (%d linkedin, %d facebook), %d errors",
		result.Processed, result.LinkedIn, result.Facebook, len(result.Errors))

	if s.audit != nil {
		run := &store.SyncRun{
			StartedAt:  started,
			FinishedAt: time.Now(),
			Processed:  result.Processed,
			LinkedIn:   result.LinkedIn,
			Facebook:   result.Facebook,
			Errors:     len(result.Errors),
		}
		if err := s.audit.RecordSyncRun(run); err != nil {
			log.Printf("Failed to record sync run: %v", err)
		}
	}

	return result, nil
}

// SyncUser ingests one user's notifications from both platforms. Returns
// ErrReconnectRequired when the token is dead and cannot be refreshed.
// Individual message failures are collected into the result, not returned.
func (s *Syncer) SyncUser(ctx context.Context, conn *store.Connection) (*UserResult, error) {
	token, err := s.ensureToken(ctx, conn)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -s.opts.LookbackDays)
	result := &UserResult{}

	for _, platform := range syncPlatforms {
		items, err := s.fetcher.FetchSince(ctx, token, platform, since)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", platform, err))
		}

		for _, item := range items {
			inserted, err := s.ingest(ctx, conn, item)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %v", platform, item.NativeID, err))
				continue
			}
			if !inserted {
				continue
			}
			result.Processed++
			switch platform {
			case types.PlatformLinkedIn:
				result.LinkedIn++
			case types.PlatformFacebook:
				result.Facebook++
			}
		}
	}

	if err := s.connections.UpdateLastSynced(conn.UserID, conn.Provider, time.Now()); err != nil {
		log.Printf("Failed to update sync watermark for user %s: %v", conn.UserID, err)
	}

	return result, nil
}

// ensureToken returns a usable access token, refreshing when the stored
// one is expired or expires within the skew window.
func (s *Syncer) ensureToken(ctx context.Context, conn *store.Connection) (*oauth2.Token, error) {
	if conn.ExpiresAt.After(time.Now().Add(tokenExpirySkew)) {
		return &oauth2.Token{
			AccessToken:  conn.AccessToken,
			RefreshToken: conn.RefreshToken,
			Expiry:       conn.ExpiresAt,
		}, nil
	}

	if conn.RefreshToken == "" {
		return nil, ErrReconnectRequired
	}

	log.Printf("Token expired for user %s, refreshing", conn.UserID)
	token, err := s.fetcher.Refresh(ctx, conn.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = conn.RefreshToken
	}
	if err := s.connections.UpdateConnectionTokens(conn.UserID, conn.Provider, token.AccessToken, refreshToken, token.Expiry); err != nil {
		log.Printf("Failed to persist refreshed token for user %s: %v", conn.UserID, err)
	}

	return token, nil
}

// ingest persists one fetched item as an activity. Re-ingesting a message
// the user already has is a silent no-op, reported as not inserted.
func (s *Syncer) ingest(ctx context.Context, conn *store.Connection, item fetch.Item) (bool, error) {
	activity := &types.Activity{
		ID:        uuid.NewString(),
		UserID:    conn.UserID,
		Platform:  item.Platform,
		Type:      item.Type,
		Content:   item.Content,
		URL:       item.URL,
		NativeID:  item.NativeID,
		Timestamp: item.Timestamp,
	}

	if s.opts.ClassifyImportance && s.classifier != nil {
		if c, important := s.classifier.Classify(ctx, item.Content); important {
			activity.Importance = &types.Importance{
				Score:           c.Importance,
				Reason:          c.Reason,
				SuggestedAction: c.SuggestedAction,
			}
		}
	}

	err := s.activities.InsertActivity(activity)
	if errors.Is(err, store.ErrDuplicateActivity) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if activity.Importance != nil && s.alerts != nil && conn.NotifyEmail != "" {
		subject := fmt.Sprintf("Important update on %s: %s", item.Platform, activity.Importance.Reason)
		body := fmt.Sprintf("%s\n\nSuggested action: %s\n%s",
			item.Content, activity.Importance.SuggestedAction, item.URL)
		if err := s.alerts.SendAlert(conn.NotifyEmail, subject, body); err != nil {
			log.Printf("Failed to send alert for user %s: %v", conn.UserID, err)
		}
	}

	return true, nil
}
