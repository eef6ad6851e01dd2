// Package planner turns a contact, a chosen story, and a target platform
// into a concrete outreach plan. AI-assisted with a deterministic template
// fallback; PlanConversation always returns a usable plan.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spark-rms/spark/internal/genai"
	"github.com/spark-rms/spark/internal/types"
)

// Planner builds conversation plans and starters
type Planner struct {
	client genai.Client
}

// New creates a new planner backed by the given AI client
func New(client genai.Client) *Planner {
	return &Planner{client: client}
}

// platformContexts describe each platform's culture for the AI prompt
var platformContexts = map[types.Platform]string{
	types.PlatformLinkedIn: `- Professional business platform
- Tone: professional, polished but warm
- Length: concise (100-150 words)
- Format: clear paragraphs, bullet points acceptable
- Goal: build a professional image, share value`,
	types.PlatformFacebook: `- Social platform
- Tone: friendly, relaxed, can be personal
- Length: medium (150-200 words)
- Format: flexible, emoji acceptable
- Goal: build connection, keep it light`,
	types.PlatformLine: `- Instant messaging platform
- Tone: warm, personal, immediate
- Length: short (50-100 words)
- Format: conversational, stickers and emoji are fine
- Goal: quick interaction, maintain the relationship`,
	types.PlatformWeChat: `- Instant messaging platform (similar to LINE)
- Tone: warm, personal, immediate
- Length: short (50-100 words)
- Format: conversational
- Goal: quick interaction, maintain the relationship`,
	types.PlatformEmail: `- Formal channel
- Tone: professional and courteous
- Length: can run longer (200-300 words)
- Format: complete email structure (greeting, body, sign-off)
- Goal: deeper communication, deliver value`,
}

// fallbackTones is the fixed platform-to-tone table used when the AI path
// fails or omits the tone.
var fallbackTones = map[types.Platform]types.Tone{
	types.PlatformLinkedIn: types.ToneProfessional,
	types.PlatformFacebook: types.ToneFriendly,
	types.PlatformLine:     types.ToneCasual,
	types.PlatformWeChat:   types.ToneCasual,
	types.PlatformEmail:    types.ToneFormal,
}

// PlanConversation produces a platform-tuned outreach plan. AI and parse
// failures fall back to a fixed per-platform template; no error escapes.
func (p *Planner) PlanConversation(ctx context.Context, contact types.Contact, story types.Story, platform types.Platform) types.ConversationPlan {
	prompt := buildPlanningPrompt(contact, story, platform)

	response, err := p.client.GenerateContent(ctx, prompt)
	if err != nil {
		log.Printf("Conversation planning AI call failed, using template fallback: %v", err)
		return fallbackPlan(contact, story, platform)
	}

	plan, err := parsePlanResponse(response, contact, story, platform)
	if err != nil {
		log.Printf("Conversation plan response unparsable, using template fallback: %v", err)
		return fallbackPlan(contact, story, platform)
	}
	return plan
}

func buildPlanningPrompt(contact types.Contact, story types.Story, platform types.Platform) string {
	var sb strings.Builder

	sb.WriteString("You are a professional networking advisor. Plan an effective outreach based on the information below.\n\n")

	sb.WriteString("## Contact\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", contact.Name))
	sb.WriteString(fmt.Sprintf("Title: %s\n", orUnknown(contact.Title)))
	sb.WriteString(fmt.Sprintf("Company: %s\n", orUnknown(contact.Company)))
	sb.WriteString(fmt.Sprintf("Industry: %s\n", orUnknown(contact.Industry)))

	sb.WriteString("\n## Selected Story\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", story.Title))
	sb.WriteString(fmt.Sprintf("Content: %s\n", story.Content))
	sb.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(story.Tags, ", ")))
	sb.WriteString(fmt.Sprintf("Success rate: %.0f%%\n", story.SuccessRate))

	sb.WriteString("\n## Platform\n")
	sb.WriteString(string(platform) + "\n")
	sb.WriteString(platformContexts[platform] + "\n")

	sb.WriteString("\n## Task\n\n")
	sb.WriteString("Weigh the platform culture, the contact's professional background, and the story's fit. Return a JSON object in exactly this shape:\n")
	sb.WriteString(`{"suggested_message": "the main message, tuned to the platform", "tone": "formal|casual|friendly|professional", "expected_outcome": "what this outreach should achieve", "alternatives": ["a different angle", "a different tone"]}`)
	sb.WriteString("\n\nIMPORTANT: Respond with ONLY the JSON object. No markdown, no explanation.\n")

	return sb.String()
}

// planResponse is the expected JSON shape of the AI reply
type planResponse struct {
	SuggestedMessage string   `json:"suggested_message"`
	Tone             string   `json:"tone"`
	ExpectedOutcome  string   `json:"expected_outcome"`
	Alternatives     []string `json:"alternatives"`
}

func parsePlanResponse(response string, contact types.Contact, story types.Story, platform types.Platform) (types.ConversationPlan, error) {
	jsonText := genai.ExtractJSONObject(response)
	if jsonText == "" {
		return types.ConversationPlan{}, fmt.Errorf("no JSON object found in response")
	}

	var parsed planResponse
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return types.ConversationPlan{}, fmt.Errorf("failed to parse plan response: %w", err)
	}

	tone := types.Tone(parsed.Tone)
	switch tone {
	case types.ToneFormal, types.ToneCasual, types.ToneFriendly, types.ToneProfessional:
	default:
		tone = types.ToneProfessional
	}

	alternatives := parsed.Alternatives
	if alternatives == nil {
		alternatives = []string{}
	}

	return types.ConversationPlan{
		Contact:          contact,
		Story:            story,
		Platform:         platform,
		SuggestedMessage: parsed.SuggestedMessage,
		Tone:             tone,
		ExpectedOutcome:  parsed.ExpectedOutcome,
		Alternatives:     alternatives,
	}, nil
}

// fallbackPlan interpolates the contact and a truncated story excerpt into
// a fixed per-platform template. Chat platforms get short excerpts; email
// carries the full story.
func fallbackPlan(contact types.Contact, story types.Story, platform types.Platform) types.ConversationPlan {
	var message string
	switch platform {
	case types.PlatformLinkedIn:
		message = fmt.Sprintf("Hi %s,\n\nYour recent update reminded me of an experience worth sharing.\n\n%s\n\nHope it helps!", contact.Name, excerpt(story.Content, 100))
	case types.PlatformFacebook:
		message = fmt.Sprintf("%s, your post made me think of this:\n\n%s\n\nHope it's useful!", contact.Name, excerpt(story.Content, 100))
	case types.PlatformLine, types.PlatformWeChat:
		message = fmt.Sprintf("%s,\n\nJust saw your message and it reminded me of this:\n\n%s", contact.Name, excerpt(story.Content, 80))
	case types.PlatformEmail:
		message = fmt.Sprintf("Dear %s,\n\nHope this email finds you well. I came across your recent update and thought this experience might be relevant.\n\n%s\n\nPlease let me know if you'd like to discuss further.\n\nBest regards", contact.Name, story.Content)
	default:
		message = fmt.Sprintf("Hi %s, your recent activity reminded me of this:\n\n%s", contact.Name, excerpt(story.Content, 100))
	}

	tone, ok := fallbackTones[platform]
	if !ok {
		tone = types.ToneProfessional
	}

	return types.ConversationPlan{
		Contact:          contact,
		Story:            story,
		Platform:         platform,
		SuggestedMessage: message,
		Tone:             tone,
		ExpectedOutcome:  "Reconnect and share something of value",
		Alternatives: []string{
			"Share the experience directly without much lead-in",
			"Ask a question first to understand their needs, then share the story",
		},
	}
}

// GenerateConversationStarters asks the AI for exactly 5 short opener lines
// personalized to the contact; on any failure it returns 5 fixed templates.
func (p *Planner) GenerateConversationStarters(ctx context.Context, contact types.Contact, extra string) []string {
	var sb strings.Builder
	sb.WriteString("Generate 5 conversation starters for the contact below.\n\n")
	sb.WriteString("## Contact\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", contact.Name))
	sb.WriteString(fmt.Sprintf("Title: %s\n", orUnknown(contact.Title)))
	sb.WriteString(fmt.Sprintf("Company: %s\n", orUnknown(contact.Company)))
	sb.WriteString(fmt.Sprintf("Industry: %s\n", orUnknown(contact.Industry)))
	if extra != "" {
		sb.WriteString(fmt.Sprintf("\nAdditional context: %s\n", extra))
	}
	sb.WriteString("\nEach starter should feel natural, relate to the contact's professional background, and run 20-40 characters.\n")
	sb.WriteString("Return a JSON object in exactly this shape:\n")
	sb.WriteString(`{"starters": ["...", "...", "...", "...", "..."]}`)
	sb.WriteString("\n")

	response, err := p.client.GenerateContent(ctx, sb.String())
	if err == nil {
		if jsonText := genai.ExtractJSONObject(response); jsonText != "" {
			var parsed struct {
				Starters []string `json:"starters"`
			}
			if err := json.Unmarshal([]byte(jsonText), &parsed); err == nil && len(parsed.Starters) > 0 {
				return parsed.Starters
			}
		}
	} else {
		log.Printf("Conversation starter AI call failed, using templates: %v", err)
	}

	company := contact.Company
	if company == "" {
		company = "work"
	}
	industry := contact.Industry
	if industry == "" {
		industry = "your field"
	}

	return []string{
		fmt.Sprintf("%s, how have things been going at %s lately?", contact.Name, company),
		fmt.Sprintf("Hi %s, I saw your recent take on %s and found it inspiring", contact.Name, industry),
		fmt.Sprintf("%s, any new projects or plans on your side?", contact.Name),
		fmt.Sprintf("It's been a while, %s. How is everything?", contact.Name),
		fmt.Sprintf("%s, anything I can help with or support you on?", contact.Name),
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// excerpt truncates s to at most n bytes, dropping any rune split by the cut
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "") + "..."
}
