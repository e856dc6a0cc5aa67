package service

import (
	"testing"

	"palearn_backend/internal/model"
	"palearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func oxItems(keys ...string) []model.QuizItem {
	items := make([]model.QuizItem, len(keys))
	for i, key := range keys {
		items[i] = model.QuizItem{
			ID:        i + 1,
			Type:      model.QuizOX,
			Question:  "statement",
			Options:   []string{"O", "X"},
			AnswerKey: key,
		}
	}
	return items
}

func TestScoreAnswersEightOfTen(t *testing.T) {
	items := oxItems("O", "X", "O", "X", "O", "X", "O", "X", "O", "X")
	answers := []string{"O", "X", "O", "X", "O", "X", "O", "X", "X", "O"}

	correct, detail := ScoreAnswers(items, answers)

	assert.Equal(t, 8, correct)
	require.Len(t, detail, 10)
	assert.False(t, detail[8])
	assert.False(t, detail[9])
	assert.Equal(t, model.LevelAdvanced, ClassifyLevel(float64(correct)/float64(len(items))))
}

func TestScoreAnswersIgnoresCaseAndWhitespace(t *testing.T) {
	items := oxItems("O", "x")
	correct, detail := ScoreAnswers(items, []string{" o ", "X"})

	assert.Equal(t, 2, correct)
	assert.Equal(t, []bool{true, true}, detail)
}

func TestClassifyLevelBoundaries(t *testing.T) {
	cases := []struct {
		rate float64
		want model.Level
	}{
		{1.0, model.LevelAdvanced},
		{0.8, model.LevelAdvanced},
		{0.79, model.LevelIntermediate},
		{0.6, model.LevelIntermediate},
		{0.59, model.LevelBeginner},
		{0.0, model.LevelBeginner},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyLevel(tc.rate), "rate %v", tc.rate)
	}
}

func TestFallbackOXBank(t *testing.T) {
	items := fallbackOXBank("guitar")

	require.Len(t, items, quizItemCount)
	for i, item := range items {
		assert.Equal(t, i+1, item.ID)
		assert.Equal(t, model.QuizOX, item.Type)
		assert.Contains(t, item.Question, "guitar")
		assert.Contains(t, []string{"O", "X"}, item.AnswerKey)
	}
}

func TestGenerateItemsParsesBackendOutput(t *testing.T) {
	gen := &fakeGenerator{response: `Here you go:
{"items": [
  {"question": "q1", "answerKey": "O"},
  {"question": "q2", "answerKey": "X"},
  {"question": "q3", "answerKey": "O"},
  {"question": "q4", "answerKey": "X"},
  {"question": "q5", "answerKey": "O"},
  {"question": "", "answerKey": "O"},
  {"question": "q6", "answerKey": "X"},
  {"question": "q7", "answerKey": "O"},
  {"question": "q8", "answerKey": "X"},
  {"question": "q9", "answerKey": "O"},
  {"question": "q10", "answerKey": "X"}
]}`}

	s := &QuizService{ai: gen}
	items := s.generateItems(t.Context(), "go", model.LevelBeginner, FormatOX)

	require.Len(t, items, quizItemCount)
	for i, item := range items {
		assert.Equal(t, i+1, item.ID)
		assert.Equal(t, model.QuizOX, item.Type)
		assert.NotEmpty(t, item.Question)
	}
}

func TestGenerateItemsRejectsShortQuizzes(t *testing.T) {
	gen := &fakeGenerator{response: `{"items": [{"question": "q1", "answerKey": "O"}]}`}

	s := &QuizService{ai: gen}
	assert.Nil(t, s.generateItems(t.Context(), "go", model.LevelBeginner, FormatOX))
}

func TestFallbackMixedBank(t *testing.T) {
	items := fallbackMixedBank("guitar")
	require.Len(t, items, quizItemCount)

	counts := map[model.QuizType]int{}
	for i, item := range items {
		counts[item.Type]++
		assert.Equal(t, i+1, item.ID)
		assert.NotEmpty(t, item.AnswerKey)
		if item.Type == model.QuizMulti {
			assert.Contains(t, item.Options, item.AnswerKey)
		}
	}
	assert.Equal(t, 3, counts[model.QuizOX])
	assert.Equal(t, 4, counts[model.QuizMulti])
	assert.Equal(t, 3, counts[model.QuizShort])
}

func TestParseQuizFormat(t *testing.T) {
	assert.Equal(t, FormatMixed, ParseQuizFormat(" Mixed "))
	assert.Equal(t, FormatOX, ParseQuizFormat("ox"))
	assert.Equal(t, FormatOX, ParseQuizFormat("anything else"))
}

type fakeQuizStore struct {
	session *model.QuizSession
	results []*model.QuizResult
}

func (f *fakeQuizStore) CreateSession(session *model.QuizSession) error {
	f.session = session
	return nil
}

func (f *fakeQuizStore) FindLatestSession(uint) (*model.QuizSession, error) {
	if f.session == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.session, nil
}

func (f *fakeQuizStore) FindSessionByID(_, userID uint) (*model.QuizSession, error) {
	return f.FindLatestSession(userID)
}

func (f *fakeQuizStore) CreateResult(result *model.QuizResult) error {
	f.results = append(f.results, result)
	return nil
}

func (f *fakeQuizStore) FindResultsByUserID(uint, int) ([]*model.QuizResult, error) {
	return f.results, nil
}

func TestGradeAnswerCountMismatch(t *testing.T) {
	store := &fakeQuizStore{session: &model.QuizSession{Items: oxItems("O", "X", "O")}}
	s := &QuizService{quizRepo: store}

	_, err := s.Grade(1, 0, []string{"O"})
	assert.ErrorIs(t, err, util.ErrAnswerCountMismatch)
	assert.Empty(t, store.results, "no result is recorded for a rejected submission")
}

func TestGradeSessionNotFound(t *testing.T) {
	s := &QuizService{quizRepo: &fakeQuizStore{}}

	_, err := s.Grade(1, 0, []string{"O"})
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestGradeRecordsResult(t *testing.T) {
	store := &fakeQuizStore{session: &model.QuizSession{Items: oxItems("O", "X")}}
	s := &QuizService{quizRepo: store}

	result, err := s.Grade(1, 0, []string{" o ", "O"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Correct)
	assert.InDelta(t, 0.5, result.Rate, 1e-9)
	assert.Equal(t, model.LevelBeginner, result.Level)
	assert.Equal(t, []bool{true, false}, result.Detail)
	require.Len(t, store.results, 1)
}

func TestSanitizedItemsHideAnswers(t *testing.T) {
	session := &model.QuizSession{Items: []model.QuizItem{
		{ID: 1, Question: "q", AnswerKey: "O", Explanation: "because"},
	}}

	sanitized := session.SanitizedItems()
	require.Len(t, sanitized, 1)
	assert.Empty(t, sanitized[0].AnswerKey)
	assert.Empty(t, sanitized[0].Explanation)
	assert.Equal(t, "O", session.Items[0].AnswerKey)
}
