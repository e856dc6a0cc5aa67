package service

import (
	"testing"

	"palearn_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackCoursesDeterministic(t *testing.T) {
	first := FallbackCourses("machine learning")
	second := FallbackCourses("machine learning")

	assert.Equal(t, first, second)
	require.Len(t, first, maxRecommendedCourses)
	for i, course := range first {
		assert.NotEmpty(t, course.Title)
		assert.NotEmpty(t, course.URL)
		assert.NotContains(t, course.URL, "example")
		assert.NotEmpty(t, course.Syllabus)
		assert.Equal(t, i == 0 || i == 1, course.Free)
	}
	assert.Contains(t, first[0].URL, "machine+learning")
}

func TestGenerateCoursesFiltersAndCaps(t *testing.T) {
	gen := &fakeGenerator{response: `{"courses": [
		{"title": "A", "provider": "Coursera", "url": "https://www.coursera.org/learn/a"},
		{"title": "", "provider": "skipped"},
		{"title": "B", "provider": "Udemy", "url": "https://example.com/b"},
		{"title": "C", "provider": "edX", "url": "https://www.edx.org/c"},
		{"title": "D", "provider": "extra", "url": "https://www.edx.org/d"}
	], "reasoning": "fits"}`}

	s := &RecommendService{ai: gen}
	courses, reasoning := s.generateCourses(t.Context(), "go", model.LevelBeginner)

	require.Len(t, courses, maxRecommendedCourses)
	assert.Equal(t, "fits", reasoning)
	assert.Equal(t, "A", courses[0].Title)
	assert.Equal(t, "course-1", courses[0].ID)
	assert.Empty(t, courses[1].URL, "placeholder URLs are cleared")
	assert.Equal(t, "C", courses[2].Title)
}

func TestGenerateCoursesFallsBackOnError(t *testing.T) {
	s := &RecommendService{ai: &fakeGenerator{err: assert.AnError}}
	courses, _ := s.generateCourses(t.Context(), "go", model.LevelBeginner)
	assert.Nil(t, courses)
}

type fakeRecommendationStore struct {
	recs      []*model.Recommendation
	createErr error
}

func (f *fakeRecommendationStore) Create(rec *model.Recommendation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.recs = append(f.recs, rec)
	return nil
}

func (f *fakeRecommendationStore) FindByUserID(uint, int) ([]*model.Recommendation, error) {
	return f.recs, nil
}

func TestRecommendCoursesPersistsFallback(t *testing.T) {
	store := &fakeRecommendationStore{}
	s := &RecommendService{recRepo: store, ai: &fakeGenerator{err: assert.AnError}, status: NewStatusService()}

	rec, err := s.RecommendCourses(t.Context(), 1, "go", model.LevelBeginner)
	require.NoError(t, err)

	assert.Equal(t, FallbackCourses("go"), rec.Courses)
	require.Len(t, store.recs, 1)
	assert.Equal(t, PhaseDone, s.status.Current())
}

func TestRecommendCoursesStatusDoneAfterStoreFailure(t *testing.T) {
	store := &fakeRecommendationStore{createErr: assert.AnError}
	s := &RecommendService{recRepo: store, ai: &fakeGenerator{err: assert.AnError}, status: NewStatusService()}

	_, err := s.RecommendCourses(t.Context(), 1, "go", model.LevelBeginner)
	assert.Error(t, err)
	assert.Equal(t, PhaseDone, s.status.Current())
}
