package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spark-rms/spark/internal/types"
)

type fakeClient struct {
	response string
	err      error
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

func testContact() types.Contact {
	return types.Contact{Name: "Amy Chen", Title: "CTO", Company: "Acme", Industry: "fintech"}
}

func longStory() types.Story {
	return types.Story{
		ID:          "s1",
		Title:       "Migration war story",
		Content:     strings.Repeat("We migrated the payment stack over one weekend. ", 10),
		SuccessRate: 75.4,
	}
}

func TestPlanConversationAIPath(t *testing.T) {
	client := &fakeClient{
		response: `{"suggested_message": "Hi Amy!", "tone": "friendly", "expected_outcome": "a reply", "alternatives": ["shorter version"]}`,
	}
	p := New(client)

	plan := p.PlanConversation(context.Background(), testContact(), longStory(), types.PlatformLinkedIn)

	if plan.SuggestedMessage != "Hi Amy!" {
		t.Errorf("SuggestedMessage = %q", plan.SuggestedMessage)
	}
	if plan.Tone != types.ToneFriendly {
		t.Errorf("Tone = %s, want friendly", plan.Tone)
	}
	if len(plan.Alternatives) != 1 {
		t.Errorf("Alternatives = %v", plan.Alternatives)
	}
	if plan.Platform != types.PlatformLinkedIn || plan.Story.ID != "s1" {
		t.Error("plan should carry the input platform and story")
	}
}

func TestPlanConversationInvalidToneDefaultsToProfessional(t *testing.T) {
	client := &fakeClient{
		response: `{"suggested_message": "m", "tone": "sarcastic", "expected_outcome": "o"}`,
	}
	p := New(client)

	plan := p.PlanConversation(context.Background(), testContact(), longStory(), types.PlatformLinkedIn)
	if plan.Tone != types.ToneProfessional {
		t.Errorf("Tone = %s, want professional default", plan.Tone)
	}
	if plan.Alternatives == nil {
		t.Error("Alternatives should be empty, not nil")
	}
}

func TestFallbackPlanTones(t *testing.T) {
	p := New(&fakeClient{err: errors.New("quota exceeded")})

	tests := []struct {
		platform types.Platform
		want     types.Tone
	}{
		{types.PlatformLinkedIn, types.ToneProfessional},
		{types.PlatformFacebook, types.ToneFriendly},
		{types.PlatformLine, types.ToneCasual},
		{types.PlatformWeChat, types.ToneCasual},
		{types.PlatformEmail, types.ToneFormal},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			plan := p.PlanConversation(context.Background(), testContact(), longStory(), tt.platform)
			if plan.Tone != tt.want {
				t.Errorf("Tone = %s, want %s", plan.Tone, tt.want)
			}
			if !strings.Contains(plan.SuggestedMessage, "Amy Chen") {
				t.Error("fallback message should address the contact by name")
			}
			if len(plan.Alternatives) != 2 {
				t.Errorf("got %d alternatives, want 2", len(plan.Alternatives))
			}
		})
	}
}

func TestFallbackPlanExcerptLengths(t *testing.T) {
	p := New(&fakeClient{err: errors.New("down")})
	story := longStory()

	linkedin := p.PlanConversation(context.Background(), testContact(), story, types.PlatformLinkedIn)
	if strings.Contains(linkedin.SuggestedMessage, story.Content) {
		t.Error("linkedin fallback should truncate the story")
	}

	line := p.PlanConversation(context.Background(), testContact(), story, types.PlatformLine)
	if strings.Contains(line.SuggestedMessage, story.Content) {
		t.Error("line fallback should truncate the story")
	}

	// Email carries the full story
	email := p.PlanConversation(context.Background(), testContact(), story, types.PlatformEmail)
	if !strings.Contains(email.SuggestedMessage, story.Content) {
		t.Error("email fallback should carry the full story content")
	}
}

func TestGenerateConversationStartersAIPath(t *testing.T) {
	client := &fakeClient{
		response: `{"starters": ["one", "two", "three"]}`,
	}
	p := New(client)

	starters := p.GenerateConversationStarters(context.Background(), testContact(), "")
	if len(starters) != 3 || starters[0] != "one" {
		t.Errorf("starters = %v", starters)
	}
}

func TestGenerateConversationStartersFallback(t *testing.T) {
	p := New(&fakeClient{err: errors.New("down")})

	starters := p.GenerateConversationStarters(context.Background(), testContact(), "")
	if len(starters) != 5 {
		t.Fatalf("got %d starters, want 5", len(starters))
	}
	if !strings.Contains(starters[0], "Acme") {
		t.Errorf("first starter should mention the company: %q", starters[0])
	}
	if !strings.Contains(starters[1], "fintech") {
		t.Errorf("second starter should mention the industry: %q", starters[1])
	}
}

func TestGenerateConversationStartersFallbackDefaults(t *testing.T) {
	p := New(&fakeClient{err: errors.New("down")})

	starters := p.GenerateConversationStarters(context.Background(), types.Contact{Name: "Bo"}, "")
	if !strings.Contains(starters[0], "work") {
		t.Errorf("empty company should default to work: %q", starters[0])
	}
	if !strings.Contains(starters[1], "your field") {
		t.Errorf("empty industry should default to your field: %q", starters[1])
	}
}
