package service

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"

	"github.com/CinePrep/cineprep/internal/domain"
)

const loreSystemPrompt = "You are a film historian who writes spoiler-free recaps. " +
	"You never reveal anything about the plot of the movie the viewer is about to watch. " +
	"You always answer with a single JSON object and nothing else."

const loreUserTemplate = `The viewer is about to watch "{{ current.title }}"{% if current.year > 0 %} ({{ current.year }}){% endif %} (TMDB id {{ current.id }}).
{% if current.overview != "" %}Official synopsis, for context only: {{ current.overview }}
{% endif %}
They need to know what happened in these earlier movies:
{% for movie in previous %}- "{{ movie.title }}"{% if movie.year > 0 %} ({{ movie.year }}){% endif %}, TMDB id {{ movie.id }}{% if movie.overview != "" %}: {{ movie.overview }}{% endif %}
{% endfor %}
For each earlier movie that matters for understanding "{{ current.title }}", write a recap in {{ language }} with a {{ tone }} tone.
{% if detail == "brief" %}Keep each narrative to two or three sentences.{% elsif detail == "detailed" %}Give each narrative up to eight sentences and cover every major character arc.{% else %}Keep each narrative between four and six sentences.{% endif %}
Narratives are read aloud, so each one must stay under {{ max_chars }} characters.
Do not mention events of "{{ current.title }}" itself.

Answer with JSON only, using exactly this shape:
{
  "movie_id": {{ current.id }},
  "movie_title": "{{ current.title }}",
  "required_movies": [
    {
      "movie_id": 0,
      "title": "",
      "year": 0,
      "narrative": "",
      "key_facts": [""],
      "emotional_beats": [""],
      "tone": "{{ tone }}"
    }
  ],
  "summary": ""
}`

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ja": "Japanese",
	"zh": "Chinese",
}

// LorePromptBuilder renders the chat messages of a lore generation.
// The output is deterministic for a given request and preferences.
type LorePromptBuilder struct {
	engine *liquid.Engine
}

func NewLorePromptBuilder() *LorePromptBuilder {
	return &LorePromptBuilder{engine: liquid.NewEngine()}
}

func (b *LorePromptBuilder) Build(req domain.GenerateLoreRequest, prefs *domain.Preferences) ([]domain.ChatMessage, error) {
	if prefs == nil {
		prefs = domain.DefaultPreferences("")
	}

	previous := make([]map[string]interface{}, 0, len(req.PreviousMovies))
	for _, m := range req.PreviousMovies {
		previous = append(previous, promptMovie(m))
	}

	language, ok := languageNames[prefs.Language]
	if !ok {
		language = languageNames["en"]
	}

	bindings := map[string]interface{}{
		"current":   promptMovie(req.CurrentMovie),
		"previous":  previous,
		"language":  language,
		"tone":      prefs.Tone,
		"detail":    prefs.DetailLevel,
		"max_chars": domain.MaxNarrativeChars,
	}

	out, err := b.engine.ParseAndRenderString(loreUserTemplate, bindings)
	if err != nil {
		return nil, fmt.Errorf("failed to render lore prompt: %w", err)
	}

	return []domain.ChatMessage{
		{Role: "system", Content: loreSystemPrompt},
		{Role: "user", Content: strings.TrimSpace(out)},
	}, nil
}

func promptMovie(m domain.Movie) map[string]interface{} {
	return map[string]interface{}{
		"id":       m.ID,
		"title":    strings.TrimSpace(m.Title),
		"year":     m.ReleaseYear(),
		"overview": strings.TrimSpace(m.Overview),
	}
}
