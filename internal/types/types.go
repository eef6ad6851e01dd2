package types

import "time"

// Platform identifies where an activity happened or where an outreach
// message will be delivered.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformLine      Platform = "line"
	PlatformWeChat    Platform = "wechat"
	PlatformEmail     Platform = "email"
)

// ActivityType classifies a normalized external activity.
type ActivityType string

const (
	ActivityPost        ActivityType = "post"
	ActivityComment     ActivityType = "comment"
	ActivityMention     ActivityType = "mention"
	ActivityLike        ActivityType = "like"
	ActivityConnection  ActivityType = "connection"
	ActivityProfileView ActivityType = "profile_view"
	ActivityBirthday    ActivityType = "birthday"
	ActivityOther       ActivityType = "other"
)

// Tone is the suggested voice for an outreach message.
type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
)

// RelationshipLevel is the qualitative stage derived from the numeric
// relationship score.
type RelationshipLevel string

const (
	LevelStranger     RelationshipLevel = "stranger"
	LevelAcquaintance RelationshipLevel = "acquaintance"
	LevelFriend       RelationshipLevel = "friend"
	LevelPartner      RelationshipLevel = "partner"
	LevelAdvocate     RelationshipLevel = "advocate"
)

// Contact is a person in the user's network.
type Contact struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	Name        string              `json:"name"`
	Title       string              `json:"title"`
	Company     string              `json:"company"`
	Industry    string              `json:"industry"`
	LastContact string              `json:"last_contact"` // free text, user maintained
	Birthday    *time.Time          `json:"birthday,omitempty"`
	Handles     map[Platform]string `json:"handles,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ValueDomain is a user-defined thematic bucket grouping related stories.
type ValueDomain struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Story is a reusable personal anecdote with usage and success tracking.
// SuccessRate is derived from recorded outcomes and is only written by the
// recomputation routine; UsageCount only increases.
type Story struct {
	ID          string     `json:"id"`
	DomainID    string     `json:"domain_id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	UsageCount  int        `json:"usage_count"`
	SuccessRate float64    `json:"success_rate"` // 0-100
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Importance is the stored result of a positive importance classification.
type Importance struct {
	Score           int    `json:"score"` // 0-100
	Reason          string `json:"reason"`
	SuggestedAction string `json:"suggested_action"`
}

// Activity is a normalized external social event attributable to a contact.
// NativeID is the platform-native message identifier; (UserID, Platform,
// NativeID) is unique, so re-ingesting the same external message does not
// create a second row.
type Activity struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	ContactID  *string      `json:"contact_id,omitempty"` // may be unresolved at ingestion time
	Platform   Platform     `json:"platform"`
	Type       ActivityType `json:"activity_type"`
	Content    string       `json:"content"`
	URL        string       `json:"url,omitempty"`
	NativeID   string       `json:"native_id"`
	Importance *Importance  `json:"importance,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
	CreatedAt  time.Time    `json:"created_at"`
}

// MatchResult pairs a story with a relevance score for one activity.
// Produced fresh on every matching call, never persisted.
type MatchResult struct {
	Story            Story   `json:"story"`
	Score            float64 `json:"score"` // 0-100
	Reason           string  `json:"reason"`
	SuggestedMessage string  `json:"suggested_message,omitempty"`
}

// ConversationPlan is a platform-tuned outreach plan built from a contact
// and a chosen story.
type ConversationPlan struct {
	Contact          Contact  `json:"contact"`
	Story            Story    `json:"story"`
	Platform         Platform `json:"platform"`
	SuggestedMessage string   `json:"suggested_message"`
	Tone             Tone     `json:"tone"`
	ExpectedOutcome  string   `json:"expected_outcome"`
	Alternatives     []string `json:"alternatives"`
}
