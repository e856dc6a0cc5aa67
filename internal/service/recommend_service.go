package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"palearn_backend/internal/model"
	"palearn_backend/internal/repository"
	"palearn_backend/internal/util"
	"palearn_backend/pkg/logger"

	"go.uber.org/zap"
)

const maxRecommendedCourses = 3

// recommendationStore is the persistence collaborator for
// recommendation records, satisfied by
// repository.RecommendationRepository.
type recommendationStore interface {
	Create(rec *model.Recommendation) error
	FindByUserID(userID uint, limit int) ([]*model.Recommendation, error)
}

// RecommendService suggests courses for a skill and level. Like plan
// generation, it degrades to a deterministic catalog instead of
// failing when the backend is unusable.
type RecommendService struct {
	recRepo recommendationStore
	ai      TextGenerator
	status  *StatusService
}

func NewRecommendService(recRepo *repository.RecommendationRepository, ai TextGenerator, status *StatusService) *RecommendService {
	return &RecommendService{recRepo: recRepo, ai: ai, status: status}
}

// RecommendCourses produces up to three course suggestions and records
// the run.
func (s *RecommendService) RecommendCourses(ctx context.Context, userID uint, skill string, level model.Level) (*model.Recommendation, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		skill = "general"
	}

	s.status.Begin()
	defer s.status.Done()
	s.status.Set(PhaseSearching)

	courses, reasoning := s.generateCourses(ctx, skill, level)
	if len(courses) == 0 {
		courses = FallbackCourses(skill)
		reasoning = "Curated starting points with search links for " + skill + "."
	}

	rec := &model.Recommendation{
		UserID:    userID,
		Skill:     skill,
		Level:     level,
		Courses:   courses,
		Reasoning: reasoning,
	}
	if err := s.recRepo.Create(rec); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *RecommendService) generateCourses(ctx context.Context, skill string, level model.Level) ([]model.Course, string) {
	raw, err := s.ai.Generate(ctx, recommendPrompt(skill, level))
	if err != nil {
		logger.Log.Warn("course recommendation backend failed", zap.String("skill", skill), zap.Error(err))
		return nil, ""
	}

	span, err := util.ExtractJSONObject(raw)
	if err != nil {
		return nil, ""
	}

	var payload struct {
		Courses   []model.Course `json:"courses"`
		Reasoning string         `json:"reasoning"`
	}
	if err := json.Unmarshal(span, &payload); err != nil {
		return nil, ""
	}

	courses := make([]model.Course, 0, maxRecommendedCourses)
	for _, course := range payload.Courses {
		if course.Title == "" {
			continue
		}
		if course.URL != "" && strings.Contains(strings.ToLower(course.URL), placeholderToken) {
			course.URL = ""
		}
		course.ID = fmt.Sprintf("course-%d", len(courses)+1)
		courses = append(courses, course)
		if len(courses) == maxRecommendedCourses {
			break
		}
	}
	return courses, payload.Reasoning
}

func (s *RecommendService) History(userID uint, limit int) ([]*model.Recommendation, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.recRepo.FindByUserID(userID, limit)
}

// FallbackCourses builds a deterministic catalog of search entry
// points for the skill.
func FallbackCourses(skill string) []model.Course {
	query := url.QueryEscape(skill)
	return []model.Course{
		{
			ID:       "course-1",
			Title:    "Introductory " + skill + " course",
			Provider: "Coursera",
			Weeks:    4,
			Free:     true,
			Summary:  "A structured beginner course covering the fundamentals of " + skill + ".",
			Syllabus: []string{"Fundamentals", "Core concepts", "Guided practice", "Small project"},
			URL:      "https://www.coursera.org/search?query=" + query,
		},
		{
			ID:       "course-2",
			Title:    skill + " video crash course",
			Provider: "YouTube",
			Weeks:    2,
			Free:     true,
			Summary:  "Free video lectures walking through " + skill + " step by step.",
			Syllabus: []string{"Getting started", "Hands-on walkthrough"},
			URL:      "https://www.youtube.com/results?search_query=" + query + "+course",
		},
		{
			ID:       "course-3",
			Title:    "Project-based " + skill + " course",
			Provider: "Udemy",
			Weeks:    4,
			Free:     false,
			Summary:  "Build working projects while learning " + skill + " in depth.",
			Syllabus: []string{"Setup", "Core skills", "Projects", "Review"},
			URL:      "https://www.udemy.com/courses/search/?q=" + query,
		},
	}
}

func recommendPrompt(skill string, level model.Level) string {
	return fmt.Sprintf(`[SYSTEM]
You are a course advisor. Recommend exactly %d real online courses or books for learning %q at the %s level.

Rules:
- Only real, currently available courses from known providers (Coursera, edX, Udemy, official docs, YouTube series, published books).
- Never use example.com or any placeholder URL; omit "url" if unsure.
- "syllabus" lists 3-6 ordered study units.

Respond with ONE JSON object only, no markdown fences, no prose:
{
  "courses": [
    {"title": "...", "provider": "...", "weeks": 4, "free": true, "summary": "...", "syllabus": ["...", "..."], "url": "https://..."}
  ],
  "reasoning": "one short paragraph on why these fit the learner"
}`, maxRecommendedCourses, skill, level)
}
