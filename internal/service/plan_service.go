package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"palearn_backend/internal/model"
	"palearn_backend/internal/repository"
	"palearn_backend/internal/util"
	"palearn_backend/pkg/logger"
	"palearn_backend/pkg/monitoring"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// enrichWorkers bounds concurrent material lookups per plan; each
// lookup may block on the external backend.
const enrichWorkers = 4

// planStore is the persistence collaborator for plans, satisfied by
// repository.PlanRepository.
type planStore interface {
	Create(plan *model.Plan) error
	FindByUserID(userID uint) ([]*model.Plan, error)
	FindCurrent(userID uint) (*model.Plan, error)
	Save(plan *model.Plan) error
}

// PlanService owns the plan generation pipeline: validate the request,
// attempt generation through the text backend, repair what comes back,
// synthesize deterministically when generation is unusable, enrich
// every task with materials, then persist. Generation never fails from
// the learner's point of view; only malformed requests do.
type PlanService struct {
	planRepo  planStore
	materials *MaterialService
	ai        TextGenerator
	status    *StatusService
	locks     userLocks
}

func NewPlanService(planRepo *repository.PlanRepository, materials *MaterialService, ai TextGenerator, status *StatusService) *PlanService {
	return &PlanService{
		planRepo:  planRepo,
		materials: materials,
		ai:        ai,
		status:    status,
	}
}

// userLocks serializes plan appends per user so concurrent creations
// for the same user both survive.
type userLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func (l *userLocks) lock(userID uint) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uint]*sync.Mutex)
	}
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

type PlanGenerateRequest struct {
	Skill      string   `json:"skill" binding:"required"`
	SelfLevel  string   `json:"selfLevel"`
	HourPerDay string   `json:"hourPerDay"`
	StartDate  string   `json:"startDate" binding:"required"`
	RestDays   []string `json:"restDays"`
}

// normalize validates the request. Only an unparseable start date is an
// error; every other irregularity is silently normalized (empty skill
// becomes "general", unknown levels degrade to beginner, unknown rest
// day names simply never match a date).
func (r *PlanGenerateRequest) normalize() (time.Time, model.Level, error) {
	r.Skill = strings.TrimSpace(r.Skill)
	if r.Skill == "" {
		r.Skill = "general"
	}
	if strings.TrimSpace(r.HourPerDay) == "" {
		r.HourPerDay = "1"
	}

	datePart := r.StartDate
	if i := strings.IndexAny(datePart, "T "); i > 0 {
		// Tolerate ISO8601 timestamps by truncating to the date part.
		datePart = datePart[:i]
	}
	start, err := time.Parse(model.DateLayout, datePart)
	if err != nil {
		return time.Time{}, "", util.ErrInvalidStartDate
	}

	return start, model.ParseLevel(r.SelfLevel), nil
}

// planDocument is the validated shape of a generated schedule. Backend
// output is parsed into this before repair so the enforcer only ever
// operates on a known structure.
type planDocument struct {
	PlanName          string                   `json:"plan_name"`
	TotalDuration     string                   `json:"total_duration"`
	DailySchedule     []model.ScheduleDay      `json:"daily_schedule"`
	WeeklyGoals       []model.WeeklyGoal       `json:"weekly_goals"`
	MonthlyMilestones []model.MonthlyMilestone `json:"monthly_milestones"`
}

// GeneratePlan runs the full pipeline and appends the resulting plan
// to the user's plan list.
func (s *PlanService) GeneratePlan(ctx context.Context, userID uint, req PlanGenerateRequest) (*model.Plan, error) {
	start, level, err := req.normalize()
	if err != nil {
		return nil, err
	}

	s.status.Begin()
	defer s.status.Done()

	doc, path := s.generateDocument(ctx, planPrompt(req, level), start, req.RestDays)
	if path == "fallback" {
		doc = s.fallbackDocument(req.Skill, req.HourPerDay, start, req.RestDays)
	}
	monitoring.PlanGenerations.WithLabelValues("plan", path).Inc()

	s.status.Set(PhaseSearching)
	s.enrich(ctx, doc.DailySchedule)

	plan := s.buildPlan(userID, req.Skill, level, req.HourPerDay, start, req.RestDays, doc)
	unlock := s.locks.lock(userID)
	defer unlock()
	if err := s.planRepo.Create(plan); err != nil {
		return nil, err
	}

	logger.Log.Info("plan generated",
		zap.Uint("userId", userID),
		zap.String("skill", req.Skill),
		zap.String("path", path),
		zap.Int("days", len(plan.DailySchedule)))
	return plan, nil
}

type ApplyRecommendationRequest struct {
	Skill          string       `json:"skill" binding:"required"`
	HourPerDay     string       `json:"hourPerDay"`
	StartDate      string       `json:"startDate" binding:"required"`
	RestDays       []string     `json:"restDays"`
	QuizLevel      string       `json:"quiz_level"`
	SelectedCourse model.Course `json:"selected_course"`
}

// ApplyRecommendation generates a plan shaped around a selected
// course's syllabus, through the same repair/fallback pipeline.
func (s *PlanService) ApplyRecommendation(ctx context.Context, userID uint, req ApplyRecommendationRequest) (*model.Plan, error) {
	base := PlanGenerateRequest{
		Skill:      req.Skill,
		SelfLevel:  req.QuizLevel,
		HourPerDay: req.HourPerDay,
		StartDate:  req.StartDate,
		RestDays:   req.RestDays,
	}
	start, level, err := base.normalize()
	if err != nil {
		return nil, err
	}

	s.status.Begin()
	defer s.status.Done()

	doc, path := s.generateDocument(ctx, coursePlanPrompt(base, level, req.SelectedCourse), start, base.RestDays)
	if path == "fallback" {
		doc = s.fallbackDocument(base.Skill, base.HourPerDay, start, base.RestDays)
	}
	monitoring.PlanGenerations.WithLabelValues("plan_apply", path).Inc()

	s.status.Set(PhaseSearching)
	s.enrich(ctx, doc.DailySchedule)

	plan := s.buildPlan(userID, base.Skill, level, base.HourPerDay, start, base.RestDays, doc)
	if req.SelectedCourse.Title != "" {
		plan.PlanName = req.SelectedCourse.Title + " study plan"
	}
	unlock := s.locks.lock(userID)
	defer unlock()
	if err := s.planRepo.Create(plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// generateDocument attempts the backend path once: generate, extract,
// parse, repair. There is no retry; any failure means fallback.
func (s *PlanService) generateDocument(ctx context.Context, prompt string, start time.Time, restDays []string) (planDocument, string) {
	var doc planDocument

	raw, err := s.ai.Generate(ctx, prompt)
	if err != nil {
		logger.Log.Warn("plan generation backend failed", zap.Error(err))
		return doc, "fallback"
	}

	span, err := util.ExtractJSONObject(raw)
	if err != nil {
		logger.Log.Warn("plan generation output had no JSON object", zap.Int("len", len(raw)))
		return doc, "fallback"
	}

	var candidate planDocument
	if err := json.Unmarshal(span, &candidate); err != nil || len(candidate.DailySchedule) == 0 {
		return doc, "fallback"
	}

	candidate.DailySchedule = RepairSchedule(candidate.DailySchedule, start, restDays)
	if len(candidate.DailySchedule) == 0 {
		return doc, "fallback"
	}
	return candidate, "generated"
}

func (s *PlanService) fallbackDocument(skill, hourPerDay string, start time.Time, restDays []string) planDocument {
	return planDocument{
		PlanName:      skill + " study plan",
		TotalDuration: "4 weeks",
		DailySchedule: FallbackSchedule(skill, hourPerDay, start, restDays),
	}
}

func (s *PlanService) buildPlan(userID uint, skill string, level model.Level, hourPerDay string, start time.Time, restDays []string, doc planDocument) *model.Plan {
	planName := doc.PlanName
	if planName == "" {
		planName = skill + " study plan"
	}
	totalDuration := doc.TotalDuration
	if totalDuration == "" {
		totalDuration = "4 weeks"
	}
	if restDays == nil {
		restDays = []string{}
	}
	return &model.Plan{
		UserID:            userID,
		PlanName:          planName,
		Skill:             skill,
		Level:             level,
		HourPerDay:        hourPerDay,
		StartDate:         start.Format(model.DateLayout),
		TotalDuration:     totalDuration,
		RestDays:          restDays,
		DailySchedule:     doc.DailySchedule,
		WeeklyGoals:       doc.WeeklyGoals,
		MonthlyMilestones: doc.MonthlyMilestones,
	}
}

// enrich attaches materials to every task that lacks them. Lookups are
// independent, so they run on a bounded pool; each result is written
// back to its originating task before the plan is persisted.
func (s *PlanService) enrich(ctx context.Context, days []model.ScheduleDay) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichWorkers)

	for di := range days {
		for ti := range days[di].Tasks {
			task := &days[di].Tasks[ti]
			if task.RelatedMaterials != nil && task.ReviewMaterials != nil {
				continue
			}
			g.Go(func() error {
				related, review := s.materials.MaterialsForTopic(ctx, task.Title)
				task.RelatedMaterials = related
				task.ReviewMaterials = review
				return nil
			})
		}
	}

	g.Wait()
}

// RepairSchedule normalizes a schedule extracted from backend output.
// It assigns missing task identifiers, drops days outside the 28-day
// horizon, on rest days, with unparseable dates or duplicated dates,
// and sorts ascending. Applying it twice yields the identical result:
// identifiers are only assigned where absent.
func RepairSchedule(days []model.ScheduleDay, start time.Time, restDays []string) []model.ScheduleDay {
	end := start.AddDate(0, 0, model.PlanHorizonDays-1)
	seen := make(map[string]bool, len(days))
	kept := make([]model.ScheduleDay, 0, len(days))

	for _, day := range days {
		date, err := time.Parse(model.DateLayout, day.Date)
		if err != nil {
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		if model.IsRestDay(restDays, date) || seen[day.Date] {
			continue
		}
		seen[day.Date] = true

		for i := range day.Tasks {
			if day.Tasks[i].ID == "" {
				day.Tasks[i].ID = model.GenerateUUID()
			}
		}
		kept = append(kept, day)
	}

	// YYYY-MM-DD sorts chronologically as a string.
	sort.Slice(kept, func(i, j int) bool { return kept[i].Date < kept[j].Date })
	return kept
}

// FallbackSchedule synthesizes a schedule with no external dependency:
// one task per non-rest day across the horizon, titled with a running
// day counter. This path cannot fail.
func FallbackSchedule(skill, hourPerDay string, start time.Time, restDays []string) []model.ScheduleDay {
	days := make([]model.ScheduleDay, 0, model.PlanHorizonDays)

	for i := 0; i < model.PlanHorizonDays; i++ {
		date := start.AddDate(0, 0, i)
		if model.IsRestDay(restDays, date) {
			continue
		}

		title := fmt.Sprintf("%s Study Day %d", skill, len(days)+1)
		days = append(days, model.ScheduleDay{
			Date: date.Format(model.DateLayout),
			Tasks: []model.Task{
				{
					ID:          model.GenerateUUID(),
					Title:       title,
					Description: fmt.Sprintf("Keep working through %s at your own pace.", skill),
					Duration:    hourPerDay + " hours",
					Completed:   false,
				},
			},
		})
	}

	return days
}

func (s *PlanService) ListPlans(userID uint) ([]*model.Plan, error) {
	return s.planRepo.FindByUserID(userID)
}

func (s *PlanService) CurrentPlan(userID uint) (*model.Plan, error) {
	plan, err := s.planRepo.FindCurrent(userID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrPlanNotFound
	}
	return plan, err
}

// PlanByDate returns the schedule of one date in the current plan.
func (s *PlanService) PlanByDate(userID uint, date string) (*model.ScheduleDay, string, error) {
	plan, err := s.CurrentPlan(userID)
	if err != nil {
		return nil, "", err
	}
	for i := range plan.DailySchedule {
		if plan.DailySchedule[i].Date == date {
			return &plan.DailySchedule[i], plan.PlanName, nil
		}
	}
	return nil, plan.PlanName, util.ErrDayNotFound
}

// UpdateTaskCompletion toggles one task's completed flag in the
// current plan. The write is serialized per user.
func (s *PlanService) UpdateTaskCompletion(userID uint, date, taskID string, completed bool) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	plan, err := s.CurrentPlan(userID)
	if err != nil {
		return err
	}

	for di := range plan.DailySchedule {
		if plan.DailySchedule[di].Date != date {
			continue
		}
		for ti := range plan.DailySchedule[di].Tasks {
			if plan.DailySchedule[di].Tasks[ti].ID == taskID {
				plan.DailySchedule[di].Tasks[ti].Completed = completed
				return s.planRepo.Save(plan)
			}
		}
	}

	return util.ErrTaskNotFound
}

// TasksForScope collects task titles from the plan whose date falls in
// the requested scope relative to today: the same date (daily), the
// Monday-to-Sunday week containing today (weekly), or the same
// calendar month (monthly).
func TasksForScope(plan *model.Plan, scope string, today time.Time) []string {
	titles := []string{}

	weekStart := startOfWeek(today)
	weekEnd := weekStart.AddDate(0, 0, 6)

	for _, day := range plan.DailySchedule {
		date, err := time.Parse(model.DateLayout, day.Date)
		if err != nil {
			continue
		}

		var in bool
		switch scope {
		case "weekly":
			in = !date.Before(weekStart) && !date.After(weekEnd)
		case "monthly":
			in = date.Year() == today.Year() && date.Month() == today.Month()
		default: // daily
			in = sameDate(date, today)
		}
		if !in {
			continue
		}
		for _, task := range day.Tasks {
			titles = append(titles, task.Title)
		}
	}

	return titles
}

// DayProgress is the completion summary of one date.
type DayProgress struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// TodayProgress computes completion over today's tasks. An empty day
// reports zero percent, not a division fault.
func TodayProgress(plan *model.Plan, today time.Time) DayProgress {
	var p DayProgress
	todayStr := today.Format(model.DateLayout)

	for _, day := range plan.DailySchedule {
		if day.Date != todayStr {
			continue
		}
		for _, task := range day.Tasks {
			p.Total++
			if task.Completed {
				p.Completed++
			}
		}
	}

	if p.Total > 0 {
		p.Percentage = int(float64(p.Completed)/float64(p.Total)*100 + 0.5)
	}
	return p
}

// YesterdayReview reports yesterday's completed topics and their
// stored review materials (first two), or deterministic search links
// when none were stored.
type YesterdayReview struct {
	HasReview bool                 `json:"has_review"`
	Topics    []string             `json:"topics"`
	Materials []model.MaterialItem `json:"materials"`
}

func (s *PlanService) ReviewForYesterday(userID uint, today time.Time) (*YesterdayReview, error) {
	plan, err := s.CurrentPlan(userID)
	if err != nil {
		return nil, err
	}

	yesterday := today.AddDate(0, 0, -1).Format(model.DateLayout)
	review := &YesterdayReview{Topics: []string{}, Materials: []model.MaterialItem{}}

	for _, day := range plan.DailySchedule {
		if day.Date != yesterday {
			continue
		}
		for _, task := range day.Tasks {
			if !task.Completed {
				continue
			}
			review.Topics = append(review.Topics, task.Title)
			if len(review.Materials) == 0 && len(task.ReviewMaterials) > 0 {
				materials := task.ReviewMaterials
				if len(materials) > 2 {
					materials = materials[:2]
				}
				review.Materials = materials
			}
		}
	}

	if len(review.Topics) == 0 {
		return review, nil
	}

	review.HasReview = true
	if len(review.Materials) == 0 {
		review.Materials = FallbackMaterials(review.Topics[0])
	}
	return review, nil
}

func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday belongs to the week it ends
		weekday = 7
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -(weekday - 1))
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func planPrompt(req PlanGenerateRequest, level model.Level) string {
	restDays := "none"
	if len(req.RestDays) > 0 {
		restDays = strings.Join(req.RestDays, ", ")
	}

	return fmt.Sprintf(`[SYSTEM]
You are a personal study planner. Design a 4-week (28 day) study schedule and output ONLY one JSON object.

Input:
- skill: %q
- hours per day: %s
- start date: %s
- rest days: %s
- learner level: %s

Rules:
1. Dates run from the start date across 28 days at most, format "YYYY-MM-DD", ascending, no duplicates.
2. Never schedule anything on a rest day.
3. Each day carries 1-3 concrete tasks; the sum of their durations must not exceed %s hours.
4. Every task has "id" (unique string), "title", "description" (1-2 sentences), "duration" (human readable, e.g. "30 minutes"), "completed": false.
5. Progress from fundamentals in week 1 to applied practice and a small project by week 4, appropriate for a %s learner.

Schema:
{
  "plan_name": "...",
  "total_duration": "4 weeks",
  "daily_schedule": [
    {"date": "YYYY-MM-DD", "tasks": [{"id": "...", "title": "...", "description": "...", "duration": "...", "completed": false}]}
  ]
}

No markdown fences, no text outside the JSON object.`,
		req.Skill, req.HourPerDay, req.StartDate, restDays, level, req.HourPerDay, level)
}

func coursePlanPrompt(req PlanGenerateRequest, level model.Level, course model.Course) string {
	restDays := "none"
	if len(req.RestDays) > 0 {
		restDays = strings.Join(req.RestDays, ", ")
	}

	return fmt.Sprintf(`[SYSTEM]
Build a study schedule around the selected course. Output ONLY one JSON object.

Course: %q
Syllabus: %s
Skill: %q
Hours per day: %s
Start date: %s
Rest days: %s
Learner level: %s

Follow the same rules as a regular plan: dates "YYYY-MM-DD" within 28 days of the start date, ascending, none on rest days, 1-3 tasks per day with id/title/description/duration/completed=false, daily durations within the hour budget. Walk through the syllabus in order.

Schema:
{
  "plan_name": "...",
  "total_duration": "4 weeks",
  "daily_schedule": [
    {"date": "YYYY-MM-DD", "tasks": [{"id": "...", "title": "...", "description": "...", "duration": "...", "completed": false}]}
  ]
}`,
		course.Title, strings.Join(course.Syllabus, "; "), req.Skill, req.HourPerDay, req.StartDate, restDays, level)
}
