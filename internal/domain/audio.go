package domain

import (
	"context"
	"strings"
	"unicode/utf8"
)

//go:generate mockgen -destination mocks/mock_tts_client.go -package mocks github.com/CinePrep/cineprep/internal/domain TTSClient
//go:generate mockgen -destination mocks/mock_audio_service.go -package mocks github.com/CinePrep/cineprep/internal/domain AudioService
//go:generate mockgen -destination mocks/mock_audio_store.go -package mocks github.com/CinePrep/cineprep/internal/domain AudioStore

const MaxNarrativeChars = 580

type GenerateAudioRequest struct {
	Narrative  string `json:"narrative"`
	MovieTitle string `json:"movieTitle"`
	Voice      string `json:"voice,omitempty"`
}

func (r *GenerateAudioRequest) Validate() error {
	if strings.TrimSpace(r.Narrative) == "" {
		return NewValidationError("narrative is required")
	}
	if strings.TrimSpace(r.MovieTitle) == "" {
		return NewValidationError("movieTitle is required")
	}
	return nil
}

// AudioFormat is the encoding of the generated speech.
type AudioFormat string

const (
	AudioFormatWAV AudioFormat = "wav"
	AudioFormatMP3 AudioFormat = "mp3"
)

// AudioResult is the single response schema of POST /api/audio/generate.
// Exactly one of AudioURL and AudioBase64 is set.
type AudioResult struct {
	AudioURL    string      `json:"audio_url,omitempty"`
	AudioBase64 string      `json:"audio_base64,omitempty"`
	Format      AudioFormat `json:"format"`
	Voice       string      `json:"voice"`
	Characters  int         `json:"characters"`
	Truncated   bool        `json:"truncated"`
	MovieTitle  string      `json:"movie_title"`
	Remaining   int         `json:"remaining_audio"`
}

func (r *AudioResult) Validate() error {
	hasURL := r.AudioURL != ""
	hasData := r.AudioBase64 != ""
	if hasURL == hasData {
		return NewValidationError("audio result must carry exactly one of audio_url and audio_base64")
	}
	return nil
}

// SpeechRequest is what the TTS client sends upstream.
type SpeechRequest struct {
	Text  string
	Voice string
}

// Speech is the normalised TTS output. Either URL or Data is set.
type Speech struct {
	URL    string
	Data   []byte
	Format AudioFormat
}

type TTSClient interface {
	Synthesize(ctx context.Context, req SpeechRequest) (*Speech, error)
}

// AudioStore re-hosts generated audio and returns a time-limited URL.
type AudioStore interface {
	Put(ctx context.Context, key string, data []byte, format AudioFormat) (string, error)
}

type AudioService interface {
	Generate(ctx context.Context, userID string, req GenerateAudioRequest) (*AudioResult, error)
}

// TruncateNarrative shortens text to at most limit characters, cutting at the
// last sentence end when one exists in the second half of the window, then at
// the last space, and finally hard. The boolean reports whether text changed.
func TruncateNarrative(text string, limit int) (string, bool) {
	text = strings.TrimSpace(text)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}

	runes := []rune(text)
	window := string(runes[:limit])

	if idx := strings.LastIndexAny(window, ".!?"); idx >= 0 && utf8.RuneCountInString(window[:idx]) >= limit/2 {
		return strings.TrimSpace(window[:idx+1]), true
	}
	if limit > 3 {
		short := string(runes[:limit-3])
		if idx := strings.LastIndex(short, " "); idx > 0 {
			return strings.TrimSpace(short[:idx]) + "...", true
		}
	}
	return window, true
}
