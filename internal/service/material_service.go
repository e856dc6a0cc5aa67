package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"palearn_backend/internal/model"
	"palearn_backend/internal/util"
	"palearn_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// placeholderToken marks fabricated URLs (example.com and friends)
	// that must never reach a learner.
	placeholderToken = "example"

	maxMaterialsPerTopic = 4
	materialCacheTTL     = 24 * time.Hour
)

// descriptionLinkTokens are forbidden inside material descriptions:
// descriptions must explain the resource, not smuggle in links.
var descriptionLinkTokens = []string{"http", "www.", ".com", ".org", "youtu", "]("}

// MaterialService attaches supplementary study materials to topics.
// Lookups go through the generative backend; any failure degrades to
// deterministic search links, never to an error.
type MaterialService struct {
	ai  TextGenerator
	rdb *redis.Client
}

func NewMaterialService(ai TextGenerator, rdb *redis.Client) *MaterialService {
	return &MaterialService{ai: ai, rdb: rdb}
}

type topicMaterials struct {
	Related []model.MaterialItem `json:"related_materials"`
	Review  []model.MaterialItem `json:"review_materials"`
}

// MaterialsForTopic returns related and review materials for one task
// topic. This function never fails past its own boundary.
func (s *MaterialService) MaterialsForTopic(ctx context.Context, topic string) ([]model.MaterialItem, []model.MaterialItem) {
	if cached, ok := s.cacheGet(ctx, topic); ok {
		return cached.Related, cached.Review
	}

	materials, err := s.lookup(ctx, topic)
	if err != nil || len(materials) == 0 {
		logger.Log.Info("material lookup failed, using fallback links",
			zap.String("topic", topic), zap.Error(err))
		fallback := FallbackMaterials(topic)
		return fallback, fallback
	}

	result := topicMaterials{Related: materials, Review: materials}
	s.cacheSet(ctx, topic, result)
	return result.Related, result.Review
}

func (s *MaterialService) lookup(ctx context.Context, topic string) ([]model.MaterialItem, error) {
	raw, err := s.ai.Generate(ctx, materialPrompt(topic))
	if err != nil {
		return nil, err
	}

	doc, err := util.ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Materials []model.MaterialItem `json:"materials"`
	}
	if err := json.Unmarshal(doc, &payload); err != nil {
		return nil, err
	}

	materials := FilterMaterials(payload.Materials)
	if len(materials) > maxMaterialsPerTopic {
		materials = materials[:maxMaterialsPerTopic]
	}
	return materials, nil
}

// FilterMaterials drops candidates with placeholder URLs and scrubs
// link tokens out of descriptions.
func FilterMaterials(in []model.MaterialItem) []model.MaterialItem {
	out := make([]model.MaterialItem, 0, len(in))
	for _, m := range in {
		if m.URL == "" || strings.Contains(strings.ToLower(m.URL), placeholderToken) {
			continue
		}
		if containsLinkToken(m.Description) {
			m.Description = ""
		}
		out = append(out, m)
	}
	return out
}

func containsLinkToken(description string) bool {
	lower := strings.ToLower(description)
	for _, token := range descriptionLinkTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// FallbackMaterials builds deterministic search links for a topic:
// one video query and one blog query. Same topic, same URLs.
func FallbackMaterials(topic string) []model.MaterialItem {
	query := url.QueryEscape(topic)
	return []model.MaterialItem{
		{
			Title:       topic + " - video lectures",
			Type:        model.MaterialVideo,
			URL:         "https://www.youtube.com/results?search_query=" + query,
			Description: "Search YouTube for lectures on this topic.",
		},
		{
			Title:       topic + " - articles",
			Type:        model.MaterialBlog,
			URL:         "https://www.google.com/search?q=" + query + "+tutorial",
			Description: "Search for written tutorials on this topic.",
		},
	}
}

func (s *MaterialService) cacheGet(ctx context.Context, topic string) (topicMaterials, bool) {
	var result topicMaterials
	if s.rdb == nil {
		return result, false
	}
	data, err := s.rdb.Get(ctx, materialCacheKey(topic)).Bytes()
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, len(result.Related) > 0
}

func (s *MaterialService) cacheSet(ctx context.Context, topic string, result topicMaterials) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, materialCacheKey(topic), data, materialCacheTTL).Err(); err != nil {
		logger.Log.Warn("material cache write failed", zap.Error(err))
	}
}

func materialCacheKey(topic string) string {
	return "materials:" + strings.ToLower(strings.TrimSpace(topic))
}

func materialPrompt(topic string) string {
	return fmt.Sprintf(`[SYSTEM]
You are a study material curator. Find supplementary learning materials for the topic %q.

Strict rules:
- Never use example.com, example.org or any placeholder URL.
- Only real, reachable detail pages: individual videos, blog posts, official docs, course pages.
- No search-result, tag, category, channel or playlist pages.
- Never put a URL, domain or markdown link inside "description".

Respond with ONE JSON object only, no markdown fences, no prose:
{
  "materials": [
    {"title": "...", "type": "video", "url": "https://...", "description": "1-2 sentences, no links"},
    {"title": "...", "type": "blog", "url": "https://...", "description": "1-2 sentences, no links"}
  ]
}

Recommend 3-4 materials of mixed type (video, blog, course).`, topic)
}
