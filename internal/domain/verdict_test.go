package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerdict(t *testing.T) {
	v := NewVerdict(DecisionDefenseWins, 85, ConsensusStrong)

	require.NotEmpty(t, v.ID)
	assert.Equal(t, DecisionDefenseWins, v.Decision)
	assert.Equal(t, 85, v.Confidence)
	assert.Equal(t, ConsensusStrong, v.Consensus)
	assert.False(t, v.Timestamp.IsZero())

	other := NewVerdict(DecisionRefusal, 0, ConsensusConflict)
	assert.NotEqual(t, v.ID, other.ID, "verdict IDs must be unique")
}

func TestDecisionMarker(t *testing.T) {
	tests := []struct {
		decision Decision
		want     string
	}{
		{decision: DecisionDefenseWins, want: "VERDICT: DEFENSE WINS"},
		{decision: DecisionProsecutionWins, want: "VERDICT: PROSECUTION WINS"},
		{decision: DecisionRefusal, want: "REFUSAL: NEW SESSION ORDERED"},
		{decision: Decision("bogus"), want: ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.decision), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.decision.Marker())
		})
	}
}
