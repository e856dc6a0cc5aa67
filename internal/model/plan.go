package model

import (
	"strings"
	"time"
)

// DateLayout is the wire and document format for schedule dates.
const DateLayout = "2006-01-02"

// PlanHorizonDays is the fixed schedule window: startDate + 0..27.
const PlanHorizonDays = 28

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// ParseLevel normalizes a learner-supplied level string. Unknown
// values degrade to beginner rather than failing the request.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelIntermediate:
		return LevelIntermediate
	case LevelAdvanced:
		return LevelAdvanced
	default:
		return LevelBeginner
	}
}

type MaterialType string

const (
	MaterialVideo  MaterialType = "video"
	MaterialBlog   MaterialType = "blog"
	MaterialCourse MaterialType = "course"
	MaterialOther  MaterialType = "other"
)

// MaterialItem is one supplementary study resource attached to a task.
type MaterialItem struct {
	Title       string       `json:"title"`
	Type        MaterialType `json:"type"`
	URL         string       `json:"url"`
	Description string       `json:"description,omitempty"`
	Duration    string       `json:"duration,omitempty"`
}

// Task is owned by exactly one ScheduleDay. The ID is assigned on
// generation (or during repair) and stable afterwards.
type Task struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Duration         string         `json:"duration,omitempty"`
	Completed        bool           `json:"completed"`
	RelatedMaterials []MaterialItem `json:"related_materials,omitempty"`
	ReviewMaterials  []MaterialItem `json:"review_materials,omitempty"`
}

// ScheduleDay holds the tasks of one calendar date, unique within a plan.
type ScheduleDay struct {
	Date  string `json:"date"`
	Tasks []Task `json:"tasks"`
}

type WeeklyGoal struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tasks       []string `json:"tasks,omitempty"`
}

type MonthlyMilestone struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Goals       []string `json:"goals,omitempty"`
}

// Plan is a user's generated multi-week study schedule. The schedule
// document is stored as JSON columns; a user accumulates plans over
// time and the most recently created one is the current plan.
// swagger:model Plan
type Plan struct {
	BaseModel
	UserID            uint               `gorm:"index" json:"userId"`
	PlanName          string             `gorm:"size:255" json:"plan_name"`
	Skill             string             `gorm:"size:255;not null" json:"skill"`
	Level             Level              `gorm:"size:20" json:"level"`
	HourPerDay        string             `gorm:"size:20" json:"hourPerDay"`
	StartDate         string             `gorm:"size:10" json:"startDate"`
	TotalDuration     string             `gorm:"size:20" json:"total_duration"`
	RestDays          []string           `gorm:"type:json;serializer:json" json:"restDays"`
	DailySchedule     []ScheduleDay      `gorm:"type:json;serializer:json" json:"daily_schedule"`
	WeeklyGoals       []WeeklyGoal       `gorm:"type:json;serializer:json" json:"weekly_goals,omitempty"`
	MonthlyMilestones []MonthlyMilestone `gorm:"type:json;serializer:json" json:"monthly_milestones,omitempty"`
}

func (Plan) TableName() string {
	return "plans"
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// IsRestDay reports whether the date's weekday appears in restDays.
// Unrecognized weekday names never match; they are tolerated no-ops.
func IsRestDay(restDays []string, date time.Time) bool {
	for _, name := range restDays {
		if wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]; ok && wd == date.Weekday() {
			return true
		}
	}
	return false
}
