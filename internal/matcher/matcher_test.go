package matcher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spark-rms/spark/internal/types"
)

// fakeClient is a canned AI client for exercising both response paths
type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.response, f.err
}

func testStories() []types.Story {
	return []types.Story{
		{ID: "s1", Title: "Scaling the team", Content: "How we grew engineering from 5 to 50", Tags: []string{"leadership", "hiring"}, SuccessRate: 80},
		{ID: "s2", Title: "Product pivot", Content: "The pivot that saved our startup", Tags: []string{"startup", "strategy"}, SuccessRate: 60},
		{ID: "s3", Title: "Marathon training", Content: "Lessons from running my first marathon", Tags: []string{"fitness"}, SuccessRate: 90},
	}
}

func TestMatchStoriesEmptyLibrary(t *testing.T) {
	client := &fakeClient{}
	m := New(client)

	got := m.MatchStories(context.Background(), types.Activity{Content: "anything"}, nil)
	if got != nil {
		t.Errorf("expected nil for empty library, got %v", got)
	}
	if client.calls != 0 {
		t.Errorf("AI client called %d times for an empty library, want 0", client.calls)
	}
}

func TestMatchStoriesAIPath(t *testing.T) {
	client := &fakeClient{
		response: `Here are the matches: {"matches": [
			{"story_id": "s2", "score": 70, "reason": "startup topic", "suggested_message": "hi"},
			{"story_id": "s1", "score": 90, "reason": "leadership topic", "suggested_message": "hello"},
			{"story_id": "missing", "score": 99, "reason": "hallucinated", "suggested_message": "x"}
		]}`,
	}
	m := New(client)

	matches := m.MatchStories(context.Background(), types.Activity{Content: "we are hiring"}, testStories())

	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2 (unresolvable id dropped): %v", len(matches), matches)
	}
	if matches[0].Story.ID != "s1" || matches[1].Story.ID != "s2" {
		t.Errorf("matches not sorted by score desc: %s, %s", matches[0].Story.ID, matches[1].Story.ID)
	}
	if matches[0].Score != 90 {
		t.Errorf("top score = %v, want 90", matches[0].Score)
	}
}

// Some models drop the {"matches": ...} wrapper and reply with the bare
// array; the parser accepts both shapes.
func TestMatchStoriesBareArrayResponse(t *testing.T) {
	client := &fakeClient{
		response: `[
			{"story_id": "s1", "score": 90, "reason": "leadership topic", "suggested_message": "hello"},
			{"story_id": "s2", "score": 70, "reason": "startup topic", "suggested_message": "hi"}
		]`,
	}
	m := New(client)

	matches := m.MatchStories(context.Background(), types.Activity{Content: "we are hiring"}, testStories())
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %v", len(matches), matches)
	}
	if matches[0].Story.ID != "s1" || matches[0].Score != 90 {
		t.Errorf("top match = %s (%v), want s1 (90)", matches[0].Story.ID, matches[0].Score)
	}
}

// Scores are a 0-100 scale; a model reporting outside it is clamped, not
// trusted.
func TestMatchStoriesAIScoresClamped(t *testing.T) {
	client := &fakeClient{
		response: `{"matches": [
			{"story_id": "s1", "score": 150, "reason": "overenthusiastic"},
			{"story_id": "s2", "score": -5, "reason": "negative"}
		]}`,
	}
	m := New(client)

	matches := m.MatchStories(context.Background(), types.Activity{Content: "x"}, testStories())
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %v", len(matches), matches)
	}
	if matches[0].Score != 100 {
		t.Errorf("top score = %v, want clamped 100", matches[0].Score)
	}
	if matches[1].Score != 0 {
		t.Errorf("bottom score = %v, want clamped 0", matches[1].Score)
	}
}

func TestMatchStoriesTruncatedToFive(t *testing.T) {
	var stories []types.Story
	response := `{"matches": [`
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("s%d", i)
		stories = append(stories, types.Story{ID: id, Title: id, Content: "c"})
		if i > 0 {
			response += ","
		}
		response += fmt.Sprintf(`{"story_id": %q, "score": %d, "reason": "r"}`, id, 10*i)
	}
	response += `]}`

	m := New(&fakeClient{response: response})
	matches := m.MatchStories(context.Background(), types.Activity{Content: "x"}, stories)

	if len(matches) != 5 {
		t.Fatalf("got %d matches, want 5", len(matches))
	}
	if matches[0].Story.ID != "s7" {
		t.Errorf("top match = %s, want s7", matches[0].Story.ID)
	}
}

func TestMatchStoriesFallbackOnAIError(t *testing.T) {
	m := New(&fakeClient{err: errors.New("model overloaded")})

	activity := types.Activity{Type: types.ActivityPost, Content: "excited about our startup hiring push"}
	matches := m.MatchStories(context.Background(), activity, testStories())

	if len(matches) == 0 {
		t.Fatal("fallback produced no matches")
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted desc at %d", i)
		}
	}
}

func TestFallbackScoring(t *testing.T) {
	activity := types.Activity{Type: types.ActivityPost, Content: "hiring leadership lessons"}
	stories := []types.Story{
		{ID: "a", Title: "hiring", Content: "leadership", SuccessRate: 100},
		{ID: "b", Title: "nothing relevant", Content: "gardening", SuccessRate: 0},
	}

	matches := fallbackMatching(activity, stories)

	// Story b has no keyword overlap and no success bonus, so it scores
	// zero and is dropped.
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %v", len(matches), matches)
	}
	// 2 keyword hits (+40) plus success bonus (100*0.2)
	if matches[0].Score != 60 {
		t.Errorf("score = %v, want 60", matches[0].Score)
	}
}

func TestFallbackScoreClampedTo100(t *testing.T) {
	activity := types.Activity{Content: "alpha beta gamma delta epsilon zeta"}
	story := types.Story{ID: "a", Content: "alpha beta gamma delta epsilon zeta", SuccessRate: 100}

	matches := fallbackMatching(activity, []types.Story{story})
	if len(matches) != 1 || matches[0].Score != 100 {
		t.Errorf("score = %v, want clamped 100", matches)
	}
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "english with stopwords",
			content: "the team is hiring a new role",
			want:    []string{"team", "hiring", "new", "role"},
		},
		{
			name:    "chinese with stopwords and punctuation",
			content: "我們的團隊在招聘，歡迎加入！",
			want:    []string{"我們的團隊在招聘", "歡迎加入"},
		},
		{
			name:    "single rune tokens dropped",
			content: "a b go run",
			want:    []string{"go", "run"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractKeywords(tt.content)
			if len(got) != len(tt.want) {
				t.Fatalf("extractKeywords(%q) = %v, want %v", tt.content, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("keyword %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractKeywordsCapped(t *testing.T) {
	content := ""
	for i := 0; i < 30; i++ {
		content += fmt.Sprintf("word%d ", i)
	}
	if got := extractKeywords(content); len(got) != 10 {
		t.Errorf("got %d keywords, want cap of 10", len(got))
	}
}

func TestTopStories(t *testing.T) {
	stories := []types.Story{
		{ID: "low", SuccessRate: 10, UsageCount: 100},
		{ID: "high", SuccessRate: 90, UsageCount: 1},
		{ID: "tie-heavy", SuccessRate: 50, UsageCount: 10},
		{ID: "tie-light", SuccessRate: 50, UsageCount: 2},
	}

	top := TopStories(stories, 3)
	if len(top) != 3 {
		t.Fatalf("got %d stories, want 3", len(top))
	}
	wantOrder := []string{"high", "tie-heavy", "tie-light"}
	for i, want := range wantOrder {
		if top[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, top[i].ID, want)
		}
	}
}
