package model

type QuizType string

const (
	QuizOX    QuizType = "OX"
	QuizMulti QuizType = "MULTI"
	QuizShort QuizType = "SHORT"
)

// QuizItem is one question. AnswerKey stays server-side; learner-facing
// responses go through Sanitized.
type QuizItem struct {
	ID          int      `json:"id"`
	Type        QuizType `json:"type"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerKey   string   `json:"answerKey,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// Sanitized returns a copy with the answer key and explanation removed.
func (q QuizItem) Sanitized() QuizItem {
	q.AnswerKey = ""
	q.Explanation = ""
	return q
}

// QuizSession stores a generated quiz with its hidden answer keys.
// swagger:model QuizSession
type QuizSession struct {
	BaseModel
	UserID uint       `gorm:"index" json:"userId"`
	Skill  string     `gorm:"size:255" json:"skill"`
	Level  Level      `gorm:"size:20" json:"level"`
	Items  []QuizItem `gorm:"type:json;serializer:json" json:"items"`
}

func (QuizSession) TableName() string {
	return "quiz_sessions"
}

// SanitizedItems strips answer keys for the learner-facing view.
func (s *QuizSession) SanitizedItems() []QuizItem {
	out := make([]QuizItem, 0, len(s.Items))
	for _, item := range s.Items {
		out = append(out, item.Sanitized())
	}
	return out
}

// QuizResult is an append-only grading record.
// swagger:model QuizResult
type QuizResult struct {
	BaseModel
	UserID    uint    `gorm:"index" json:"userId"`
	SessionID uint    `gorm:"index" json:"sessionId"`
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
	Rate      float64 `json:"rate"`
	Level     Level   `gorm:"size:20" json:"level"`
	Detail    []bool  `gorm:"type:json;serializer:json" json:"detail"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
