package client

import (
	"context"
	"net/http"

	"github.com/CinePrep/cineprep/internal/domain"
)

// Audio requests narrations. Narratives are truncated before sending, with
// the same rule the server applies.
type Audio struct {
	c        *Client
	maxChars int
}

func (a *Audio) Generate(ctx context.Context, req domain.GenerateAudioRequest) (*domain.AudioResult, error) {
	req.Narrative, _ = domain.TruncateNarrative(req.Narrative, a.maxChars)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var result domain.AudioResult
	if err := a.c.do(ctx, http.MethodPost, "/api/audio/generate", req, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}
