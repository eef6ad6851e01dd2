// Package scoring computes the deterministic 0-100 relationship-strength
// score. It is a pure function over interaction metadata: no I/O, no state,
// and it never fails. Out-of-range inputs are clamped, not rejected.
package scoring

import (
	"math"

	"github.com/spark-rms/spark/internal/types"
)

// Inputs are the five weighted signals feeding the score.
type Inputs struct {
	// InteractionFrequency is interactions per month.
	InteractionFrequency float64 `json:"interaction_frequency"`
	// ResponseRate is a percentage, 0-100.
	ResponseRate float64 `json:"response_rate"`
	// CommonTopics is the number of shared topics.
	CommonTopics int `json:"common_topics"`
	// LastInteractionDays is days since the last interaction. Negative
	// values (future-dated or clock-skewed last-contact data) are clamped
	// to zero rather than silently landing in the most favorable bucket.
	LastInteractionDays float64 `json:"last_interaction_days"`
	// ReferralCount is referrals given or received.
	ReferralCount int `json:"referral_count"`
}

// Breakdown holds the independently rounded sub-scores.
type Breakdown struct {
	InteractionFrequency int `json:"interaction_frequency"`
	ResponseRate         int `json:"response_rate"`
	CommonTopics         int `json:"common_topics"`
	Recency              int `json:"recency"`
	Referrals            int `json:"referrals"`
}

// Result is the computed relationship score. Recomputed on demand; callers
// may cache it for display but never as source of truth.
type Result struct {
	Score       int                     `json:"score"`
	Level       types.RelationshipLevel `json:"level"`
	Breakdown   Breakdown               `json:"breakdown"`
	Suggestions []string                `json:"suggestions"`
}

// Weights of each signal in the total score.
const (
	weightFrequency = 0.25
	weightResponse  = 0.30
	weightTopics    = 0.20
	weightRecency   = 0.10
	weightReferrals = 0.15
)

// CalculateRelationshipScore computes the weighted relationship score, its
// qualitative level, the per-signal breakdown, and improvement suggestions.
func CalculateRelationshipScore(inputs Inputs) Result {
	interactionScore := interactionScore(inputs.InteractionFrequency)
	responseScore := responseScore(inputs.ResponseRate)
	topicsScore := topicsScore(inputs.CommonTopics)
	recencyScore := recencyScore(inputs.LastInteractionDays)
	referralScore := referralScore(inputs.ReferralCount)

	total := interactionScore*weightFrequency +
		responseScore*weightResponse +
		topicsScore*weightTopics +
		recencyScore*weightRecency +
		referralScore*weightReferrals

	return Result{
		Score: int(math.Round(total)),
		Level: DetermineLevel(total),
		Breakdown: Breakdown{
			InteractionFrequency: int(math.Round(interactionScore)),
			ResponseRate:         int(math.Round(responseScore)),
			CommonTopics:         int(math.Round(topicsScore)),
			Recency:              int(math.Round(recencyScore)),
			Referrals:            int(math.Round(referralScore)),
		},
		Suggestions: generateSuggestions(inputs, total),
	}
}

// interactionScore maps interactions per month to a 0-100 sub-score
func interactionScore(frequency float64) float64 {
	switch {
	case frequency >= 8: // 2+ times per week
		return 100
	case frequency >= 4: // 1+ times per week
		return 80
	case frequency >= 2: // 1+ times every 2 weeks
		return 60
	case frequency >= 1: // 1+ times per month
		return 40
	case frequency >= 0.5: // 1+ times per 2 months
		return 20
	default:
		return 10
	}
}

// responseScore maps the response percentage directly, clamped to 0-100
func responseScore(rate float64) float64 {
	return math.Max(0, math.Min(100, rate))
}

// topicsScore maps the count of common topics to a 0-100 sub-score
func topicsScore(count int) float64 {
	switch {
	case count >= 5:
		return 100
	case count >= 4:
		return 80
	case count >= 3:
		return 60
	case count >= 2:
		return 40
	case count >= 1:
		return 20
	default:
		return 0
	}
}

// recencyScore maps days since last interaction to a 0-100 sub-score
func recencyScore(days float64) float64 {
	if days < 0 {
		days = 0
	}
	switch {
	case days <= 7: // within a week
		return 100
	case days <= 14: // within 2 weeks
		return 80
	case days <= 30: // within a month
		return 60
	case days <= 60: // within 2 months
		return 40
	case days <= 90: // within 3 months
		return 20
	default:
		return 10
	}
}

// referralScore maps the referral count to a 0-100 sub-score
func referralScore(count int) float64 {
	switch {
	case count >= 5:
		return 100
	case count >= 3:
		return 80
	case count >= 2:
		return 60
	case count >= 1:
		return 40
	default:
		return 0
	}
}

// DetermineLevel maps an unrounded weighted total to a relationship level
func DetermineLevel(score float64) types.RelationshipLevel {
	switch {
	case score >= 80:
		return types.LevelAdvocate
	case score >= 60:
		return types.LevelPartner
	case score >= 40:
		return types.LevelFriend
	case score >= 20:
		return types.LevelAcquaintance
	default:
		return types.LevelStranger
	}
}

// generateSuggestions evaluates each raw input against fixed thresholds in a
// fixed order, then appends one holistic suggestion keyed off the final
// level. Suggestions are additive, never mutually exclusive.
func generateSuggestions(inputs Inputs, score float64) []string {
	var suggestions []string

	if inputs.InteractionFrequency < 2 {
		suggestions = append(suggestions, "Increase contact frequency; aim for at least one touchpoint a week")
	}
	if inputs.ResponseRate < 60 {
		suggestions = append(suggestions, "Improve your response rate with more engaging conversation openers")
	}
	if inputs.CommonTopics < 3 {
		suggestions = append(suggestions, "Find more common topics; dig into their professional interests")
	}
	if inputs.LastInteractionDays > 30 {
		suggestions = append(suggestions, "It has been a while; reach out with a quick hello")
	}
	if inputs.ReferralCount == 0 && score >= 60 {
		suggestions = append(suggestions, "The relationship is solid; consider introducing each other to your networks")
	}

	switch {
	case score >= 80:
		suggestions = append(suggestions, "Excellent relationship; keep the current rhythm and look for ways to collaborate")
	case score >= 60:
		suggestions = append(suggestions, "Good relationship; try deeper conversations")
	case score >= 40:
		suggestions = append(suggestions, "Relationship is developing; stay in touch regularly")
	default:
		suggestions = append(suggestions, "Relationship is just starting; look for chances to interact")
	}

	return suggestions
}
