package scoring

import (
	"reflect"
	"testing"

	"github.com/spark-rms/spark/internal/types"
)

func TestCalculateRelationshipScore(t *testing.T) {
	tests := []struct {
		name      string
		inputs    Inputs
		wantScore int
		wantLevel types.RelationshipLevel
	}{
		{
			name: "perfect inputs",
			inputs: Inputs{
				InteractionFrequency: 10,
				ResponseRate:         100,
				CommonTopics:         6,
				LastInteractionDays:  1,
				ReferralCount:        5,
			},
			wantScore: 100,
			wantLevel: types.LevelAdvocate,
		},
		{
			name: "dormant relationship",
			inputs: Inputs{
				InteractionFrequency: 0,
				ResponseRate:         0,
				CommonTopics:         0,
				LastInteractionDays:  9999,
				ReferralCount:        0,
			},
			wantScore: 4, // 10*0.25 + 10*0.10
			wantLevel: types.LevelStranger,
		},
		{
			name: "mid-range relationship",
			inputs: Inputs{
				InteractionFrequency: 4,
				ResponseRate:         70,
				CommonTopics:         3,
				LastInteractionDays:  10,
				ReferralCount:        1,
			},
			// 80*0.25 + 70*0.30 + 60*0.20 + 80*0.10 + 40*0.15
			wantScore: 67,
			wantLevel: types.LevelPartner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRelationshipScore(tt.inputs)
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("Level = %s, want %s", got.Level, tt.wantLevel)
			}
			if len(got.Suggestions) == 0 {
				t.Error("Suggestions should never be empty")
			}
		})
	}
}

// The score must be a pure function: same inputs, same result.
func TestCalculateRelationshipScoreDeterministic(t *testing.T) {
	inputs := Inputs{
		InteractionFrequency: 3.5,
		ResponseRate:         62,
		CommonTopics:         2,
		LastInteractionDays:  45,
		ReferralCount:        1,
	}

	first := CalculateRelationshipScore(inputs)
	for i := 0; i < 10; i++ {
		if got := CalculateRelationshipScore(inputs); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced a different result: %+v vs %+v", i, got, first)
		}
	}
}

// Future-dated last interactions must score like today, not better.
func TestNegativeRecencyClampedToZero(t *testing.T) {
	base := Inputs{
		InteractionFrequency: 4,
		ResponseRate:         80,
		CommonTopics:         3,
		ReferralCount:        2,
	}

	today := base
	today.LastInteractionDays = 0
	future := base
	future.LastInteractionDays = -3

	if got, want := CalculateRelationshipScore(future), CalculateRelationshipScore(today); !reflect.DeepEqual(got, want) {
		t.Errorf("negative days scored %+v, want same as zero days %+v", got, want)
	}
}

func TestResponseRateClamped(t *testing.T) {
	over := CalculateRelationshipScore(Inputs{ResponseRate: 150})
	exact := CalculateRelationshipScore(Inputs{ResponseRate: 100})
	if over.Breakdown.ResponseRate != exact.Breakdown.ResponseRate {
		t.Errorf("response rate over 100 scored %d, want %d",
			over.Breakdown.ResponseRate, exact.Breakdown.ResponseRate)
	}

	under := CalculateRelationshipScore(Inputs{ResponseRate: -10})
	if under.Breakdown.ResponseRate != 0 {
		t.Errorf("negative response rate scored %d, want 0", under.Breakdown.ResponseRate)
	}
}

func TestDetermineLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  types.RelationshipLevel
	}{
		{0, types.LevelStranger},
		{19.99, types.LevelStranger},
		{20, types.LevelAcquaintance},
		{39.99, types.LevelAcquaintance},
		{40, types.LevelFriend},
		{59.99, types.LevelFriend},
		{60, types.LevelPartner},
		{79.99, types.LevelPartner},
		{80, types.LevelAdvocate},
		{100, types.LevelAdvocate},
	}

	for _, tt := range tests {
		if got := DetermineLevel(tt.score); got != tt.want {
			t.Errorf("DetermineLevel(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestSuggestionsMatchWeakSignals(t *testing.T) {
	result := CalculateRelationshipScore(Inputs{
		InteractionFrequency: 1,
		ResponseRate:         30,
		CommonTopics:         1,
		LastInteractionDays:  90,
		ReferralCount:        0,
	})

	// Four per-signal suggestions plus the holistic one
	if len(result.Suggestions) != 5 {
		t.Errorf("got %d suggestions, want 5: %v", len(result.Suggestions), result.Suggestions)
	}
}
