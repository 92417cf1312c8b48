package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/CinePrep/cineprep/internal/domain"
)

const defaultLoreTone = "neutral"

// ParseQwenResponse extracts the lore document from raw model output. Missing
// narrative, key_facts, emotional_beats and tone are patched with defaults and
// ids, titles and years are filled from the request. Entries naming the
// current movie are dropped; when nothing usable remains the request's
// previous movies stand in. It fails only when no JSON object can be found or
// required_movies is missing, not an array or empty.
func ParseQwenResponse(content string, req domain.GenerateLoreRequest) (*domain.LoreDocument, error) {
	raw, ok := extractJSONObject(stripCodeFences(content))
	if !ok || !gjson.Valid(raw) {
		return nil, malformedLore(errors.New("no JSON object in model output"))
	}

	parsed := gjson.Parse(raw)
	movies := parsed.Get("required_movies")
	if !movies.IsArray() {
		return nil, malformedLore(errors.New("required_movies is missing or not an array"))
	}
	items := movies.Array()
	if len(items) == 0 {
		return nil, malformedLore(errors.New("required_movies is empty"))
	}

	doc := &domain.LoreDocument{
		MovieID:        req.CurrentMovie.ID,
		MovieTitle:     strings.TrimSpace(req.CurrentMovie.Title),
		RequiredMovies: make([]domain.RequiredMovie, 0, len(items)),
		Summary:        strings.TrimSpace(parsed.Get("summary").String()),
	}

	for i, item := range items {
		if !item.IsObject() {
			continue
		}
		rm := domain.RequiredMovie{
			MovieID:        int(item.Get("movie_id").Int()),
			Title:          strings.TrimSpace(item.Get("title").String()),
			Year:           int(item.Get("year").Int()),
			Narrative:      strings.TrimSpace(item.Get("narrative").String()),
			KeyFacts:       stringList(item.Get("key_facts")),
			EmotionalBeats: stringList(item.Get("emotional_beats")),
			Tone:           strings.TrimSpace(item.Get("tone").String()),
		}
		fillFromRequest(&rm, i, req.PreviousMovies)

		if rm.MovieID == req.CurrentMovie.ID ||
			(rm.MovieID == 0 && strings.EqualFold(rm.Title, doc.MovieTitle)) {
			continue
		}
		doc.RequiredMovies = append(doc.RequiredMovies, withLoreDefaults(rm, doc.MovieTitle))
	}

	if len(doc.RequiredMovies) == 0 {
		for _, m := range req.PreviousMovies {
			if m.ID == req.CurrentMovie.ID {
				continue
			}
			doc.RequiredMovies = append(doc.RequiredMovies, withLoreDefaults(domain.RequiredMovie{
				MovieID: m.ID,
				Title:   strings.TrimSpace(m.Title),
				Year:    m.ReleaseYear(),
			}, doc.MovieTitle))
		}
	}
	if len(doc.RequiredMovies) == 0 {
		return nil, malformedLore(errors.New("required_movies has no usable entry"))
	}
	return doc, nil
}

func withLoreDefaults(rm domain.RequiredMovie, currentTitle string) domain.RequiredMovie {
	if rm.Tone == "" {
		rm.Tone = defaultLoreTone
	}
	if rm.Narrative == "" {
		rm.Narrative = fmt.Sprintf("Watch %s before continuing with %s.", rm.Title, currentTitle)
	}
	if rm.KeyFacts == nil {
		rm.KeyFacts = []string{}
	}
	if rm.EmotionalBeats == nil {
		rm.EmotionalBeats = []string{}
	}
	return rm
}

func malformedLore(err error) error {
	return &domain.ErrUpstream{Service: "qwen", Err: fmt.Errorf("malformed lore response: %w", err)}
}

// fillFromRequest completes an entry from the matching previous movie, matched
// by id, then by title, then by position.
func fillFromRequest(rm *domain.RequiredMovie, index int, previous []domain.Movie) {
	var match *domain.Movie
	for i := range previous {
		if rm.MovieID != 0 && previous[i].ID == rm.MovieID {
			match = &previous[i]
			break
		}
	}
	if match == nil && rm.Title != "" {
		for i := range previous {
			if strings.EqualFold(strings.TrimSpace(previous[i].Title), rm.Title) {
				match = &previous[i]
				break
			}
		}
	}
	if match == nil && rm.MovieID == 0 && rm.Title == "" && index < len(previous) {
		match = &previous[index]
	}
	if match == nil {
		return
	}

	if rm.MovieID == 0 {
		rm.MovieID = match.ID
	}
	if rm.Title == "" {
		rm.Title = strings.TrimSpace(match.Title)
	}
	if rm.Year == 0 {
		rm.Year = match.ReleaseYear()
	}
}

func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.Exists() {
		return out
	}
	if !v.IsArray() {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, item := range v.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// stripCodeFences removes the markdown fences models wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// extractJSONObject returns the first balanced {...} block, ignoring braces
// inside string literals.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
