package service

import (
	"testing"

	"palearn_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackMaterialsDeterministic(t *testing.T) {
	first := FallbackMaterials("music theory & harmony")
	second := FallbackMaterials("music theory & harmony")

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, model.MaterialVideo, first[0].Type)
	assert.Equal(t, model.MaterialBlog, first[1].Type)
	assert.Contains(t, first[0].URL, "youtube.com/results?search_query=music+theory+%26+harmony")
	assert.Contains(t, first[1].URL, "google.com/search?q=music+theory+%26+harmony")
}

func TestFilterMaterialsDropsPlaceholders(t *testing.T) {
	in := []model.MaterialItem{
		{Title: "real", URL: "https://blog.golang.org/slices"},
		{Title: "fake", URL: "https://example.com/course"},
		{Title: "fake2", URL: "https://www.EXAMPLE.org/x"},
		{Title: "empty", URL: ""},
	}

	out := FilterMaterials(in)
	require.Len(t, out, 1)
	assert.Equal(t, "real", out[0].Title)
}

func TestFilterMaterialsScrubsLinkDescriptions(t *testing.T) {
	in := []model.MaterialItem{
		{Title: "a", URL: "https://go.dev/tour", Description: "Visit https://go.dev for more"},
		{Title: "b", URL: "https://go.dev/blog", Description: "see [this](link) post"},
		{Title: "c", URL: "https://go.dev/doc", Description: "A plain description."},
	}

	out := FilterMaterials(in)
	require.Len(t, out, 3)
	assert.Empty(t, out[0].Description)
	assert.Empty(t, out[1].Description)
	assert.Equal(t, "A plain description.", out[2].Description)
}

func TestMaterialsForTopicUsesBackendResults(t *testing.T) {
	gen := &fakeGenerator{response: `{"materials": [
		{"title": "Go slices", "type": "blog", "url": "https://go.dev/blog/slices", "description": "Deep dive into slices."}
	]}`}

	s := NewMaterialService(gen, nil)
	related, review := s.MaterialsForTopic(t.Context(), "go slices")

	require.Len(t, related, 1)
	assert.Equal(t, "Go slices", related[0].Title)
	assert.Equal(t, related, review)
}

func TestMaterialsForTopicFallsBack(t *testing.T) {
	cases := map[string]*fakeGenerator{
		"backend error":    {err: assert.AnError},
		"no json":          {response: "cannot help"},
		"only placeholder": {response: `{"materials": [{"title": "x", "url": "https://example.com"}]}`},
	}

	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			s := NewMaterialService(gen, nil)
			related, review := s.MaterialsForTopic(t.Context(), "go slices")

			assert.Equal(t, FallbackMaterials("go slices"), related)
			assert.Equal(t, related, review)
		})
	}
}
