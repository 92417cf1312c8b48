package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateNarrative(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		limit         int
		want          string
		wantTruncated bool
	}{
		{
			name:  "under the limit",
			text:  "  Short text.  ",
			limit: 580,
			want:  "Short text.",
		},
		{
			name:          "cuts at sentence end",
			text:          "First sentence here. Second one is longer and goes on.",
			limit:         30,
			want:          "First sentence here.",
			wantTruncated: true,
		},
		{
			name:          "sentence end too early falls back to space",
			text:          "Hi. this is a long run of words",
			limit:         20,
			want:          "Hi. this is a...",
			wantTruncated: true,
		},
		{
			name:          "cuts at last space",
			text:          "alpha beta gamma delta epsilon",
			limit:         12,
			want:          "alpha...",
			wantTruncated: true,
		},
		{
			name:          "hard cut",
			text:          "abcdefghijklmnop",
			limit:         5,
			want:          "abcde",
			wantTruncated: true,
		},
		{
			name:  "no limit",
			text:  "anything",
			limit: 0,
			want:  "anything",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := TruncateNarrative(tt.text, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantTruncated, truncated)
		})
	}
}

func TestTruncateNarrative_CountsRunes(t *testing.T) {
	text := strings.Repeat("é", 600)

	got, truncated := TruncateNarrative(text, MaxNarrativeChars)
	assert.True(t, truncated)
	assert.Equal(t, MaxNarrativeChars, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func TestGenerateAudioRequest_Validate(t *testing.T) {
	req := GenerateAudioRequest{Narrative: "Tony snaps.", MovieTitle: "Avengers: Endgame"}
	assert.NoError(t, req.Validate())

	req = GenerateAudioRequest{Narrative: " ", MovieTitle: "Avengers: Endgame"}
	assert.EqualError(t, req.Validate(), "validation error: narrative is required")

	req = GenerateAudioRequest{Narrative: "Tony snaps."}
	assert.EqualError(t, req.Validate(), "validation error: movieTitle is required")
}

func TestAudioResult_Validate(t *testing.T) {
	assert.NoError(t, (&AudioResult{AudioURL: "https://cdn.example.com/a.wav"}).Validate())
	assert.NoError(t, (&AudioResult{AudioBase64: "UklGRg=="}).Validate())
	assert.Error(t, (&AudioResult{}).Validate())
	assert.Error(t, (&AudioResult{AudioURL: "https://cdn.example.com/a.wav", AudioBase64: "UklGRg=="}).Validate())
}
