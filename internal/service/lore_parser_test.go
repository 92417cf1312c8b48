package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/internal/domain"
)

func testLoreRequest() domain.GenerateLoreRequest {
	return domain.GenerateLoreRequest{
		CurrentMovie: domain.Movie{ID: 299534, Title: "Avengers: Endgame", ReleaseDate: "2019-04-24"},
		PreviousMovies: []domain.Movie{
			{ID: 24428, Title: "The Avengers", ReleaseDate: "2012-04-25"},
			{ID: 299536, Title: "Avengers: Infinity War", Year: 2018},
		},
	}
}

func TestParseQwenResponse(t *testing.T) {
	req := testLoreRequest()

	t.Run("complete document", func(t *testing.T) {
		content := `{
			"movie_id": 299534,
			"required_movies": [
				{"movie_id": 24428, "title": "The Avengers", "year": 2012, "narrative": "Earth's heroes unite.",
				 "key_facts": ["Loki leads the Chitauri"], "emotional_beats": ["Coulson's death"], "tone": "dramatic"}
			],
			"summary": "Two films to catch up on."
		}`

		doc, err := ParseQwenResponse(content, req)
		require.NoError(t, err)
		assert.Equal(t, 299534, doc.MovieID)
		assert.Equal(t, "Avengers: Endgame", doc.MovieTitle)
		assert.Equal(t, "Two films to catch up on.", doc.Summary)
		require.Len(t, doc.RequiredMovies, 1)
		assert.Equal(t, domain.RequiredMovie{
			MovieID:        24428,
			Title:          "The Avengers",
			Year:           2012,
			Narrative:      "Earth's heroes unite.",
			KeyFacts:       []string{"Loki leads the Chitauri"},
			EmotionalBeats: []string{"Coulson's death"},
			Tone:           "dramatic",
		}, doc.RequiredMovies[0])
	})

	t.Run("missing optional fields are patched", func(t *testing.T) {
		content := `{"required_movies": [{"title": "Avengers: Infinity War", "narrative": "Thanos collects the stones."}]}`

		doc, err := ParseQwenResponse(content, req)
		require.NoError(t, err)
		require.Len(t, doc.RequiredMovies, 1)
		rm := doc.RequiredMovies[0]
		assert.Equal(t, 299536, rm.MovieID)
		assert.Equal(t, 2018, rm.Year)
		assert.Equal(t, []string{}, rm.KeyFacts)
		assert.Equal(t, []string{}, rm.EmotionalBeats)
		assert.Equal(t, "neutral", rm.Tone)
	})

	t.Run("entries without id or title are matched by position", func(t *testing.T) {
		content := `{"required_movies": [{"narrative": "First."}, {"narrative": "Second."}]}`

		doc, err := ParseQwenResponse(content, req)
		require.NoError(t, err)
		require.Len(t, doc.RequiredMovies, 2)
		assert.Equal(t, "The Avengers", doc.RequiredMovies[0].Title)
		assert.Equal(t, 2012, doc.RequiredMovies[0].Year)
		assert.Equal(t, 299536, doc.RequiredMovies[1].MovieID)
	})

	t.Run("missing narrative gets a default", func(t *testing.T) {
		doc, err := ParseQwenResponse(`{"required_movies": [{"movie_id": 24428}]}`, req)
		require.NoError(t, err)
		assert.Equal(t, "Watch The Avengers before continuing with Avengers: Endgame.", doc.RequiredMovies[0].Narrative)
	})

	t.Run("markdown fences and chatter", func(t *testing.T) {
		content := "```json\n{\"required_movies\": [{\"movie_id\": 24428, \"narrative\": \"A {bracketed} recap.\"}]}\n```"

		doc, err := ParseQwenResponse(content, req)
		require.NoError(t, err)
		assert.Equal(t, "A {bracketed} recap.", doc.RequiredMovies[0].Narrative)

		content = `Here is your recap: {"required_movies": [{"movie_id": 24428, "narrative": "Quote \" inside."}]} Enjoy!`
		doc, err = ParseQwenResponse(content, req)
		require.NoError(t, err)
		assert.Equal(t, `Quote " inside.`, doc.RequiredMovies[0].Narrative)
	})

	t.Run("string fields in place of lists", func(t *testing.T) {
		doc, err := ParseQwenResponse(`{"required_movies": [{"movie_id": "24428", "key_facts": "One fact"}]}`, req)
		require.NoError(t, err)
		assert.Equal(t, 24428, doc.RequiredMovies[0].MovieID)
		assert.Equal(t, []string{"One fact"}, doc.RequiredMovies[0].KeyFacts)
	})

	t.Run("current movie is dropped", func(t *testing.T) {
		content := `{"required_movies": [
			{"movie_id": 299534, "narrative": "Spoilers."},
			{"movie_id": 24428, "narrative": "Fine."}
		]}`

		doc, err := ParseQwenResponse(content, req)
		require.NoError(t, err)
		require.Len(t, doc.RequiredMovies, 1)
		assert.Equal(t, 24428, doc.RequiredMovies[0].MovieID)
	})

	t.Run("previous movies stand in when nothing usable remains", func(t *testing.T) {
		for _, content := range []string{
			`{"required_movies": [{"movie_id": 299534, "narrative": "Thanos is defeated."}]}`,
			`{"required_movies": ["The Avengers"]}`,
		} {
			doc, err := ParseQwenResponse(content, req)
			require.NoError(t, err)
			require.Len(t, doc.RequiredMovies, 2)

			first := doc.RequiredMovies[0]
			assert.Equal(t, 24428, first.MovieID)
			assert.Equal(t, "The Avengers", first.Title)
			assert.Equal(t, 2012, first.Year)
			assert.Equal(t, "neutral", first.Tone)
			assert.Equal(t, "Watch The Avengers before continuing with Avengers: Endgame.", first.Narrative)
			assert.Empty(t, first.KeyFacts)
			assert.Empty(t, first.EmotionalBeats)
			assert.NotContains(t, first.Narrative, "Thanos")

			assert.Equal(t, 299536, doc.RequiredMovies[1].MovieID)
			assert.Equal(t, 2018, doc.RequiredMovies[1].Year)
		}
	})

	failures := map[string]string{
		"no json":                   "I cannot help with that.",
		"truncated json":            `{"required_movies": [{"movie_id": 1}`,
		"required_movies missing":   `{"summary": "nothing"}`,
		"required_movies not array": `{"required_movies": {"movie_id": 24428}}`,
		"required_movies empty":     `{"required_movies": []}`,
	}
	for name, content := range failures {
		t.Run(name, func(t *testing.T) {
			doc, err := ParseQwenResponse(content, req)
			assert.Nil(t, doc)
			var upstream *domain.ErrUpstream
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, "qwen", upstream.Service)
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	obj, ok := extractJSONObject(`prefix {"a": {"b": "}"}} {"c": 1}`)
	assert.True(t, ok)
	assert.Equal(t, `{"a": {"b": "}"}}`, obj)

	_, ok = extractJSONObject("no braces")
	assert.False(t, ok)
}

func TestLorePromptBuilder(t *testing.T) {
	builder := NewLorePromptBuilder()
	req := testLoreRequest()
	req.PreviousMovies[0].Overview = "Nick Fury assembles a team."

	prefs := domain.DefaultPreferences("user-1")
	prefs.Language = "fr"
	prefs.Tone = "dramatic"
	prefs.DetailLevel = "brief"

	messages, err := builder.Build(req, prefs)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "user", messages[1].Role)

	prompt := messages[1].Content
	assert.Contains(t, prompt, `"Avengers: Endgame" (2019) (TMDB id 299534)`)
	assert.Contains(t, prompt, `- "The Avengers" (2012), TMDB id 24428: Nick Fury assembles a team.`)
	assert.Contains(t, prompt, `- "Avengers: Infinity War" (2018), TMDB id 299536`)
	assert.Contains(t, prompt, "in French with a dramatic tone")
	assert.Contains(t, prompt, "two or three sentences")
	assert.Contains(t, prompt, "under 580 characters")
	assert.Contains(t, prompt, `"required_movies": [`)

	again, err := builder.Build(req, prefs)
	require.NoError(t, err)
	assert.Equal(t, messages, again)

	defaults, err := builder.Build(req, nil)
	require.NoError(t, err)
	assert.Contains(t, defaults[1].Content, "in English with a neutral tone")
	assert.Contains(t, defaults[1].Content, "between four and six sentences")
}
