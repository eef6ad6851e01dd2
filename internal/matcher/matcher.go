// Package matcher ranks a user's stories by relevance to one contact
// activity. The primary path asks the AI collaborator for ranked matches;
// any AI or parse failure falls back to deterministic keyword overlap, so
// MatchStories never propagates an error.
package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/spark-rms/spark/internal/genai"
	"github.com/spark-rms/spark/internal/types"
)

const (
	maxMatches        = 5
	storyExcerptChars = 500
)

// Matcher matches stories against contact activities
type Matcher struct {
	client genai.Client
}

// New creates a new matcher backed by the given AI client
func New(client genai.Client) *Matcher {
	return &Matcher{client: client}
}

// MatchStories returns at most 5 stories ranked by relevance to the
// activity, highest score first. An empty story library returns nil without
// calling the AI collaborator.
func (m *Matcher) MatchStories(ctx context.Context, activity types.Activity, stories []types.Story) []types.MatchResult {
	if len(stories) == 0 {
		return nil
	}

	prompt := buildMatchingPrompt(activity, stories)

	response, err := m.client.GenerateContent(ctx, prompt)
	if err != nil {
		log.Printf("Story matching AI call failed, using keyword fallback: %v", err)
		return fallbackMatching(activity, stories)
	}

	matches, err := parseMatchResponse(response, stories)
	if err != nil {
		log.Printf("Story matching response unparsable, using keyword fallback: %v", err)
		return fallbackMatching(activity, stories)
	}

	sortMatches(matches)
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}

// buildMatchingPrompt embeds the activity and a bounded summary of every
// story into the matching prompt
func buildMatchingPrompt(activity types.Activity, stories []types.Story) string {
	var sb strings.Builder

	sb.WriteString("You are a professional networking advisor. Analyze the contact activity below and recommend the most relevant stories from the user's library.\n\n")

	sb.WriteString("## Contact Activity\n")
	sb.WriteString(fmt.Sprintf("Type: %s\n", activity.Type))
	sb.WriteString(fmt.Sprintf("Platform: %s\n", activity.Platform))
	sb.WriteString(fmt.Sprintf("Content: %s\n", activity.Content))

	sb.WriteString("\n## Story Library\n\n")
	for i, s := range stories {
		sb.WriteString(fmt.Sprintf("### Story %d (ID: %s)\n", i+1, s.ID))
		sb.WriteString(fmt.Sprintf("Title: %s\n", s.Title))
		sb.WriteString(fmt.Sprintf("Content: %s\n", excerpt(s.Content, storyExcerptChars)))
		sb.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(s.Tags, ", ")))
		sb.WriteString(fmt.Sprintf("Success rate: %.0f%%\n\n", s.SuccessRate))
	}

	sb.WriteString("## Task\n\n")
	sb.WriteString("Evaluate each story on topical relevance (30%), situational fit (25%), value offered (25%), and success rate (20%).\n")
	sb.WriteString("Return the top 5 matches as a JSON object in exactly this shape:\n")
	sb.WriteString(`{"matches": [{"story_id": "...", "score": 85, "reason": "why this story fits", "suggested_message": "a reply or comment under 50 words"}]}`)
	sb.WriteString("\n\nIMPORTANT: Respond with ONLY the JSON object. No markdown, no explanation.\n")

	return sb.String()
}

// matchResponse is the expected JSON shape of the AI reply
type matchResponse struct {
	Matches []struct {
		StoryID          string  `json:"story_id"`
		Score            float64 `json:"score"`
		Reason           string  `json:"reason"`
		SuggestedMessage string  `json:"suggested_message"`
	} `json:"matches"`
}

// parseMatchResponse extracts the match list from the AI reply and resolves
// story ids against the input library. Unresolvable ids are dropped.
func parseMatchResponse(response string, stories []types.Story) ([]types.MatchResult, error) {
	var parsed matchResponse

	objStart := strings.IndexByte(response, '{')
	arrStart := strings.IndexByte(response, '[')
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		// Some models drop the {"matches": ...} wrapper and reply with the
		// bare array.
		jsonText := genai.ExtractJSONArray(response)
		if jsonText == "" {
			return nil, fmt.Errorf("no JSON found in response")
		}
		if err := json.Unmarshal([]byte(jsonText), &parsed.Matches); err != nil {
			return nil, fmt.Errorf("failed to parse match response: %w", err)
		}
	} else {
		jsonText := genai.ExtractJSONObject(response)
		if jsonText == "" {
			return nil, fmt.Errorf("no JSON object found in response")
		}
		if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse match response: %w", err)
		}
	}

	byID := make(map[string]types.Story, len(stories))
	for _, s := range stories {
		byID[s.ID] = s
	}

	var matches []types.MatchResult
	for _, m := range parsed.Matches {
		story, ok := byID[m.StoryID]
		if !ok {
			continue
		}
		score := m.Score
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		matches = append(matches, types.MatchResult{
			Story:            story,
			Score:            score,
			Reason:           m.Reason,
			SuggestedMessage: m.SuggestedMessage,
		})
	}

	return matches, nil
}

// fallbackMatching scores stories by keyword overlap when the AI path
// fails: +20 per activity keyword found in the story text, plus a success
// rate bonus, clamped to 100. Stories scoring zero are excluded.
func fallbackMatching(activity types.Activity, stories []types.Story) []types.MatchResult {
	keywords := extractKeywords(activity.Content)

	var matches []types.MatchResult
	for _, story := range stories {
		storyText := strings.ToLower(story.Title + " " + story.Content + " " + strings.Join(story.Tags, " "))

		score := 0.0
		for _, keyword := range keywords {
			if strings.Contains(storyText, strings.ToLower(keyword)) {
				score += 20
			}
		}
		score += story.SuccessRate * 0.2

		if score <= 0 {
			continue
		}
		if score > 100 {
			score = 100
		}

		matches = append(matches, types.MatchResult{
			Story:            story,
			Score:            score,
			Reason:           "Keyword overlap with the activity",
			SuggestedMessage: fmt.Sprintf("About that %s, I have a similar experience to share...", activity.Type),
		})
	}

	sortMatches(matches)
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}

func sortMatches(matches []types.MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}

// TopStories returns the best performing stories: success rate first,
// usage count as tiebreaker.
func TopStories(stories []types.Story, limit int) []types.Story {
	sorted := make([]types.Story, len(stories))
	copy(sorted, stories)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SuccessRate != sorted[j].SuccessRate {
			return sorted[i].SuccessRate > sorted[j].SuccessRate
		}
		return sorted[i].UsageCount > sorted[j].UsageCount
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// RecentStories returns the most recently used stories; stories never used
// are excluded.
func RecentStories(stories []types.Story, limit int) []types.Story {
	var used []types.Story
	for _, s := range stories {
		if s.LastUsedAt != nil {
			used = append(used, s)
		}
	}
	sort.SliceStable(used, func(i, j int) bool {
		return used[i].LastUsedAt.After(*used[j].LastUsedAt)
	})
	if len(used) > limit {
		used = used[:limit]
	}
	return used
}

// excerpt truncates s to at most n bytes, dropping any rune split by the cut
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}
