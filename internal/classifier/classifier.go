// Package classifier decides whether a social activity is a noteworthy
// life or career event worth proactive outreach. AI-assisted with an
// ordered keyword-pattern fallback.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spark-rms/spark/internal/genai"
)

// minContentLength is the threshold below which an activity is skipped
// outright, never classified.
const minContentLength = 10

// importanceThreshold is the minimum AI-reported importance for an
// activity to be flagged.
const importanceThreshold = 60

// Classification is the result of a positive importance decision.
type Classification struct {
	Importance      int    `json:"importance"` // 0-100
	Reason          string `json:"reason"`
	Category        string `json:"category"` // career/personal/achievement/milestone/other
	SuggestedAction string `json:"suggested_action"`
}

// Classifier flags noteworthy activities
type Classifier struct {
	client genai.Client
}

// New creates a new classifier backed by the given AI client
func New(client genai.Client) *Classifier {
	return &Classifier{client: client}
}

// Classify analyzes activity content and reports whether it is important.
// Content shorter than 10 characters is skipped. AI failures fall back to
// keyword patterns; an unmatched activity is simply not important. The
// second return value is false when the activity should not be flagged.
func (c *Classifier) Classify(ctx context.Context, content string) (*Classification, bool) {
	if len([]rune(content)) < minContentLength {
		return nil, false
	}

	prompt := buildClassificationPrompt(content)

	response, err := c.client.GenerateContent(ctx, prompt)
	if err != nil {
		log.Printf("Importance classification AI call failed, using keyword fallback: %v", err)
		return fallbackDetection(content)
	}

	result, ok, err := parseClassification(response)
	if err != nil {
		log.Printf("Importance classification response unparsable, using keyword fallback: %v", err)
		return fallbackDetection(content)
	}
	if !ok {
		return nil, false
	}
	return result, true
}

func buildClassificationPrompt(content string) string {
	var sb strings.Builder

	sb.WriteString("You are a professional networking advisor. Analyze the social media activity below and judge whether it is a noteworthy event.\n\n")
	sb.WriteString("## Activity Content\n\"\"\"\n")
	sb.WriteString(content)
	sb.WriteString("\n\"\"\"\n\n")
	sb.WriteString("## Judging Criteria\n\n")
	sb.WriteString("Important:\n")
	sb.WriteString("1. Career milestones (promotion, new job, founding a company, retirement)\n")
	sb.WriteString("2. Personal milestones (marriage, childbirth, graduation, engagement)\n")
	sb.WriteString("3. Professional achievements (award, certification, publication, project success)\n")
	sb.WriteString("4. Major life events (relocation, recovery from serious illness, anniversary)\n\n")
	sb.WriteString("Not important:\n")
	sb.WriteString("1. Routine daily shares\n")
	sb.WriteString("2. Reposted articles\n")
	sb.WriteString("3. Generic work reflections\n")
	sb.WriteString("4. Travel photos\n\n")
	sb.WriteString("Return a JSON object in exactly this shape:\n")
	sb.WriteString(`{"is_important": true, "importance": 85, "reason": "why it matters (or does not)", "category": "career|personal|achievement|milestone|other", "suggested_action": "how to engage, e.g. comment congratulations, send a private message"}`)
	sb.WriteString("\n\nIMPORTANT: Respond with ONLY the JSON object. No markdown, no explanation.\n")

	return sb.String()
}

// classificationResponse is the expected JSON shape of the AI reply
type classificationResponse struct {
	IsImportant     bool   `json:"is_important"`
	Importance      int    `json:"importance"`
	Reason          string `json:"reason"`
	Category        string `json:"category"`
	SuggestedAction string `json:"suggested_action"`
}

func parseClassification(response string) (*Classification, bool, error) {
	jsonText := genai.ExtractJSONObject(response)
	if jsonText == "" {
		return nil, false, fmt.Errorf("no JSON object found in response")
	}

	var parsed classificationResponse
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, false, fmt.Errorf("failed to parse classification: %w", err)
	}

	if !parsed.IsImportant || parsed.Importance < importanceThreshold {
		return nil, false, nil
	}

	return &Classification{
		Importance:      parsed.Importance,
		Reason:          parsed.Reason,
		Category:        parsed.Category,
		SuggestedAction: parsed.SuggestedAction,
	}, true, nil
}
