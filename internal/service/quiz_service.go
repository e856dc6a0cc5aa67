package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"palearn_backend/internal/model"
	"palearn_backend/internal/repository"
	"palearn_backend/internal/util"
	"palearn_backend/pkg/logger"
	"palearn_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	quizItemCount = 10

	// Tier cutoffs over the correctness rate.
	advancedThreshold     = 0.8
	intermediateThreshold = 0.6
)

// quizStore is the persistence collaborator for quiz sessions and
// results, satisfied by repository.QuizRepository.
type quizStore interface {
	CreateSession(session *model.QuizSession) error
	FindLatestSession(userID uint) (*model.QuizSession, error)
	FindSessionByID(id, userID uint) (*model.QuizSession, error)
	CreateResult(result *model.QuizResult) error
	FindResultsByUserID(userID uint, limit int) ([]*model.QuizResult, error)
}

// QuizService generates placement quizzes and grades submissions.
// Answer keys are persisted with the session and never leave the
// service unsanitized.
type QuizService struct {
	quizRepo quizStore
	ai       TextGenerator
}

func NewQuizService(quizRepo *repository.QuizRepository, ai TextGenerator) *QuizService {
	return &QuizService{quizRepo: quizRepo, ai: ai}
}

// QuizFormat selects the question mix: a pure O/X quiz or a mixed one
// with multiple-choice and short-answer questions.
type QuizFormat string

const (
	FormatOX    QuizFormat = "ox"
	FormatMixed QuizFormat = "mixed"
)

func ParseQuizFormat(s string) QuizFormat {
	if QuizFormat(strings.ToLower(strings.TrimSpace(s))) == FormatMixed {
		return FormatMixed
	}
	return FormatOX
}

// GenerateQuiz creates a 10-question placement quiz for the skill and
// stores the full session, answer keys included. The returned session
// is the stored one; callers present SanitizedItems.
func (s *QuizService) GenerateQuiz(ctx context.Context, userID uint, skill string, level model.Level, format QuizFormat) (*model.QuizSession, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		skill = "general"
	}

	path := "generated"
	items := s.generateItems(ctx, skill, level, format)
	if len(items) == 0 {
		path = "fallback"
		if format == FormatMixed {
			items = fallbackMixedBank(skill)
		} else {
			items = fallbackOXBank(skill)
		}
	}
	monitoring.PlanGenerations.WithLabelValues("quiz", path).Inc()

	session := &model.QuizSession{
		UserID: userID,
		Skill:  skill,
		Level:  level,
		Items:  items,
	}
	if err := s.quizRepo.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *QuizService) generateItems(ctx context.Context, skill string, level model.Level, format QuizFormat) []model.QuizItem {
	raw, err := s.ai.Generate(ctx, quizPrompt(skill, level, format))
	if err != nil {
		logger.Log.Warn("quiz generation backend failed", zap.String("skill", skill), zap.Error(err))
		return nil
	}

	span, err := util.ExtractJSONObject(raw)
	if err != nil {
		logger.Log.Warn("quiz generation output had no JSON object", zap.String("skill", skill))
		return nil
	}

	var payload struct {
		Items []model.QuizItem `json:"items"`
	}
	if err := json.Unmarshal(span, &payload); err != nil {
		return nil
	}

	items := make([]model.QuizItem, 0, quizItemCount)
	for _, item := range payload.Items {
		if item.Question == "" || item.AnswerKey == "" {
			continue
		}
		item.ID = len(items) + 1
		if item.Type == "" {
			item.Type = model.QuizOX
		}
		items = append(items, item)
		if len(items) == quizItemCount {
			break
		}
	}

	if len(items) < quizItemCount {
		return nil
	}
	return items
}

// GradeResult is the learner-facing grading summary.
type GradeResult struct {
	Total   int         `json:"total"`
	Correct int         `json:"correct"`
	Rate    float64     `json:"rate"`
	Level   model.Level `json:"level"`
	Detail  []bool      `json:"detail"`
}

// Grade scores a submission against the stored session. With sessionID
// zero the latest session is graded. Answers are compared to keys
// trimmed and case-insensitively, one answer per question in order.
func (s *QuizService) Grade(userID, sessionID uint, answers []string) (*GradeResult, error) {
	var (
		session *model.QuizSession
		err     error
	)
	if sessionID == 0 {
		session, err = s.quizRepo.FindLatestSession(userID)
	} else {
		session, err = s.quizRepo.FindSessionByID(sessionID, userID)
	}
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(answers) != len(session.Items) {
		return nil, util.ErrAnswerCountMismatch
	}

	correct, detail := ScoreAnswers(session.Items, answers)

	rate := 0.0
	if len(session.Items) > 0 {
		rate = float64(correct) / float64(len(session.Items))
	}

	result := &model.QuizResult{
		UserID:    userID,
		SessionID: session.ID,
		Total:     len(session.Items),
		Correct:   correct,
		Rate:      rate,
		Level:     ClassifyLevel(rate),
		Detail:    detail,
	}
	if err := s.quizRepo.CreateResult(result); err != nil {
		return nil, err
	}

	return &GradeResult{
		Total:   result.Total,
		Correct: result.Correct,
		Rate:    result.Rate,
		Level:   result.Level,
		Detail:  result.Detail,
	}, nil
}

func (s *QuizService) Results(userID uint, limit int) ([]*model.QuizResult, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.quizRepo.FindResultsByUserID(userID, limit)
}

// ScoreAnswers compares answers to keys positionally, trimmed and
// case-insensitively. answers must be the same length as items.
func ScoreAnswers(items []model.QuizItem, answers []string) (int, []bool) {
	detail := make([]bool, len(items))
	correct := 0
	for i, item := range items {
		if answerMatches(answers[i], item.AnswerKey) {
			detail[i] = true
			correct++
		}
	}
	return correct, detail
}

func answerMatches(answer, key string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(key))
}

// ClassifyLevel maps a correctness rate to a learner tier.
func ClassifyLevel(rate float64) model.Level {
	switch {
	case rate >= advancedThreshold:
		return model.LevelAdvanced
	case rate >= intermediateThreshold:
		return model.LevelIntermediate
	default:
		return model.LevelBeginner
	}
}

// fallbackOXBank is the deterministic quiz used when generation fails.
// Every question is answerable with O or X regardless of the skill.
func fallbackOXBank(skill string) []model.QuizItem {
	statements := []struct {
		question string
		answer   string
	}{
		{fmt.Sprintf("Practicing %s a little every day beats one long session a week.", skill), "O"},
		{fmt.Sprintf("You must master every fundamental of %s before building anything.", skill), "X"},
		{fmt.Sprintf("Reviewing yesterday's %s material helps move it into long-term memory.", skill), "O"},
		{fmt.Sprintf("Mistakes while learning %s mean you lack talent for it.", skill), "X"},
		{fmt.Sprintf("Explaining a %s concept to someone else is a good test of understanding.", skill), "O"},
		{fmt.Sprintf("Copying examples without changing them is the fastest way to learn %s.", skill), "X"},
		{fmt.Sprintf("Setting a fixed daily time slot makes a %s habit easier to keep.", skill), "O"},
		{fmt.Sprintf("Rest days slow down progress in %s and should be avoided.", skill), "X"},
		{fmt.Sprintf("Small projects are a good way to apply %s fundamentals.", skill), "O"},
		{fmt.Sprintf("If a %s topic feels hard, it is best to skip it permanently.", skill), "X"},
	}

	items := make([]model.QuizItem, 0, len(statements))
	for i, s := range statements {
		items = append(items, model.QuizItem{
			ID:        i + 1,
			Type:      model.QuizOX,
			Question:  s.question,
			Options:   []string{"O", "X"},
			AnswerKey: s.answer,
		})
	}
	return items
}

// fallbackMixedBank is the deterministic mixed quiz: 3 O/X, 4
// multiple-choice, 3 short-answer. Short answers are single words so
// trimmed case-insensitive grading stays meaningful.
func fallbackMixedBank(skill string) []model.QuizItem {
	items := []model.QuizItem{
		{Type: model.QuizOX, Question: fmt.Sprintf("Spaced repetition helps retain %s knowledge longer than cramming.", skill), Options: []string{"O", "X"}, AnswerKey: "O"},
		{Type: model.QuizOX, Question: fmt.Sprintf("You should study %s only when you feel motivated.", skill), Options: []string{"O", "X"}, AnswerKey: "X"},
		{Type: model.QuizOX, Question: fmt.Sprintf("Testing yourself on %s material works better than rereading it.", skill), Options: []string{"O", "X"}, AnswerKey: "O"},
		{Type: model.QuizMulti, Question: fmt.Sprintf("What is the best first step when a %s topic is confusing?", skill), Options: []string{"Skip it forever", "Break it into smaller parts", "Study something unrelated", "Give up"}, AnswerKey: "Break it into smaller parts"},
		{Type: model.QuizMulti, Question: "How often should you review previously studied material?", Options: []string{"Never", "Only before exams", "At increasing intervals", "Every hour"}, AnswerKey: "At increasing intervals"},
		{Type: model.QuizMulti, Question: fmt.Sprintf("Which habit most supports steady %s progress?", skill), Options: []string{"Irregular marathon sessions", "A fixed daily time slot", "Studying only at night", "Multitasking"}, AnswerKey: "A fixed daily time slot"},
		{Type: model.QuizMulti, Question: "What should you do right after completing a study task?", Options: []string{"Forget about it", "Mark it complete and note questions", "Delete your notes", "Restart it"}, AnswerKey: "Mark it complete and note questions"},
		{Type: model.QuizShort, Question: "Reviewing material at growing intervals is called spaced ____.", AnswerKey: "repetition"},
		{Type: model.QuizShort, Question: "Recalling an answer from memory instead of rereading is called active ____.", AnswerKey: "recall"},
		{Type: model.QuizShort, Question: "A scheduled day with no study tasks is called a ____ day.", AnswerKey: "rest"},
	}
	for i := range items {
		items[i].ID = i + 1
	}
	return items
}

func quizPrompt(skill string, level model.Level, format QuizFormat) string {
	if format == FormatMixed {
		return fmt.Sprintf(`[SYSTEM]
You are a placement quiz writer. Write exactly %d questions probing practical knowledge of %q for a learner who self-reports as %s: 3 of type "OX" (true/false, options ["O","X"]), 4 of type "MULTI" (4 options, answerKey equals one option verbatim), 3 of type "SHORT" (one-word answer).

Respond with ONE JSON object only, no markdown fences, no prose:
{
  "items": [
    {"id": 1, "type": "OX", "question": "...", "options": ["O", "X"], "answerKey": "O", "explanation": "..."},
    {"id": 2, "type": "MULTI", "question": "...", "options": ["...", "...", "...", "..."], "answerKey": "...", "explanation": "..."},
    {"id": 3, "type": "SHORT", "question": "...", "options": [], "answerKey": "...", "explanation": "..."}
  ]
}`, quizItemCount, skill, level)
	}

	return fmt.Sprintf(`[SYSTEM]
You are a placement quiz writer. Write exactly %d O/X (true or false) questions probing practical knowledge of %q for a learner who self-reports as %s.

Rules:
- Each question is a single factual statement answerable with "O" (true) or "X" (false).
- Roughly half the answers should be "O" and half "X".
- Include a one-sentence explanation per question.

Respond with ONE JSON object only, no markdown fences, no prose:
{
  "items": [
    {"id": 1, "type": "OX", "question": "...", "options": ["O", "X"], "answerKey": "O", "explanation": "..."}
  ]
}`, quizItemCount, skill, level)
}
