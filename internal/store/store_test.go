package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spark-rms/spark/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestContactCRUD(t *testing.T) {
	s := newTestStore(t)

	contact := &types.Contact{
		UserID:   "u1",
		Name:     "Amy Chen",
		Title:    "CTO",
		Company:  "Acme",
		Industry: "fintech",
		Handles:  map[types.Platform]string{types.PlatformLinkedIn: "amychen"},
	}
	require.NoError(t, s.CreateContact(contact))
	require.NotEmpty(t, contact.ID)

	got, err := s.GetContact(contact.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Amy Chen", got.Name)
	assert.Equal(t, "amychen", got.Handles[types.PlatformLinkedIn])

	got.Company = "NewCo"
	require.NoError(t, s.UpdateContact(got))

	updated, err := s.GetContact(contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "NewCo", updated.Company)

	require.NoError(t, s.DeleteContact(contact.ID))
	gone, err := s.GetContact(contact.ID)
	require.NoError(t, err)
	assert.Nil(t, gone, "deleted contact should return nil, not an error")
}

func TestInsertActivityDeduplication(t *testing.T) {
	s := newTestStore(t)

	activity := &types.Activity{
		ID:        "a1",
		UserID:    "u1",
		Platform:  types.PlatformLinkedIn,
		Type:      types.ActivityPost,
		Content:   "original content",
		NativeID:  "gmail-msg-1",
		Timestamp: time.Now(),
	}
	require.NoError(t, s.InsertActivity(activity))

	// Same user, platform, and native id: rejected as duplicate even with
	// a different row id and content.
	dup := &types.Activity{
		ID:        "a2",
		UserID:    "u1",
		Platform:  types.PlatformLinkedIn,
		Type:      types.ActivityPost,
		Content:   "changed content",
		NativeID:  "gmail-msg-1",
		Timestamp: time.Now(),
	}
	err := s.InsertActivity(dup)
	assert.True(t, errors.Is(err, ErrDuplicateActivity), "got %v", err)

	// Same native id for a different user is fine
	other := &types.Activity{
		ID:        "a3",
		UserID:    "u2",
		Platform:  types.PlatformLinkedIn,
		Type:      types.ActivityPost,
		Content:   "other user",
		NativeID:  "gmail-msg-1",
		Timestamp: time.Now(),
	}
	assert.NoError(t, s.InsertActivity(other))

	activities, err := s.ListRecentActivities("u1", 7)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "original content", activities[0].Content)
}

func TestListImportantActivities(t *testing.T) {
	s := newTestStore(t)

	plain := &types.Activity{
		ID: "a1", UserID: "u1", Platform: types.PlatformLinkedIn,
		Type: types.ActivityPost, NativeID: "n1", Timestamp: time.Now(),
	}
	flagged := &types.Activity{
		ID: "a2", UserID: "u1", Platform: types.PlatformFacebook,
		Type: types.ActivityPost, NativeID: "n2", Timestamp: time.Now(),
		Importance: &types.Importance{Score: 90, Reason: "promotion", SuggestedAction: "congratulate"},
	}
	lower := &types.Activity{
		ID: "a3", UserID: "u1", Platform: types.PlatformFacebook,
		Type: types.ActivityPost, NativeID: "n3", Timestamp: time.Now(),
		Importance: &types.Importance{Score: 75, Reason: "award", SuggestedAction: "congratulate"},
	}
	require.NoError(t, s.InsertActivity(plain))
	require.NoError(t, s.InsertActivity(flagged))
	require.NoError(t, s.InsertActivity(lower))

	important, err := s.ListImportantActivities("u1", 7, 10)
	require.NoError(t, err)
	require.Len(t, important, 2)
	assert.Equal(t, "a2", important[0].ID, "highest importance first")
	assert.Equal(t, 90, important[0].Importance.Score)
	assert.Equal(t, "promotion", important[0].Importance.Reason)
}

func TestStoryUsageAndOutcomes(t *testing.T) {
	s := newTestStore(t)

	domain := &types.ValueDomain{UserID: "u1", Name: "Leadership"}
	require.NoError(t, s.CreateDomain(domain))

	story := &types.Story{
		DomainID: domain.ID,
		UserID:   "u1",
		Title:    "Scaling the team",
		Content:  "How we grew from 5 to 50",
		Tags:     []string{"leadership", "hiring"},
	}
	require.NoError(t, s.CreateStory(story))

	require.NoError(t, s.RecordUsage(story.ID))
	require.NoError(t, s.RecordUsage(story.ID))

	got, err := s.GetStory(story.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsageCount)
	require.NotNil(t, got.LastUsedAt)

	// Two successes out of three outcomes
	require.NoError(t, s.RecordOutcome(story.ID, true))
	require.NoError(t, s.RecordOutcome(story.ID, true))
	require.NoError(t, s.RecordOutcome(story.ID, false))

	got, err = s.GetStory(story.ID)
	require.NoError(t, err)
	assert.InDelta(t, 66.67, got.SuccessRate, 0.01)

	byDomain, err := s.ListStoriesByDomain(domain.ID)
	require.NoError(t, err)
	require.Len(t, byDomain, 1)
	assert.Equal(t, []string{"leadership", "hiring"}, byDomain[0].Tags)
}

func TestConnectionLifecycle(t *testing.T) {
	s := newTestStore(t)

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	conn := &Connection{
		UserID:       "u1",
		Provider:     ProviderGoogle,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    expires,
		NotifyEmail:  "amy@example.com",
	}
	require.NoError(t, s.UpsertConnection(conn))

	got, err := s.GetConnection("u1", ProviderGoogle)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "access-1", got.AccessToken)
	assert.Nil(t, got.LastSyncedAt)

	// Upsert replaces tokens, not the watermark
	conn.AccessToken = "access-2"
	require.NoError(t, s.UpsertConnection(conn))

	newExpiry := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, s.UpdateConnectionTokens("u1", ProviderGoogle, "access-3", "refresh-2", newExpiry))
	require.NoError(t, s.UpdateLastSynced("u1", ProviderGoogle, time.Now()))

	got, err = s.GetConnection("u1", ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "access-3", got.AccessToken)
	assert.Equal(t, "refresh-2", got.RefreshToken)
	require.NotNil(t, got.LastSyncedAt)

	conns, err := s.ListActiveConnections(ProviderGoogle)
	require.NoError(t, err)
	assert.Len(t, conns, 1)

	missing, err := s.GetConnection("nobody", ProviderGoogle)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRecordSyncRun(t *testing.T) {
	s := newTestStore(t)

	started := time.Now().Add(-2 * time.Second)
	require.NoError(t, s.RecordSyncRun(&SyncRun{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Processed:  12,
		LinkedIn:   7,
		Facebook:   5,
		Errors:     1,
	}))
}
