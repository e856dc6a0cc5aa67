package service

import (
	"strconv"
	"testing"
	"time"

	"palearn_backend/internal/model"
	"palearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestFallbackScheduleSkipsRestDays(t *testing.T) {
	// 2024-01-01 is a Monday; four Sundays fall in the 28-day window.
	start := mustDate(t, "2024-01-01")
	days := FallbackSchedule("guitar", "2", start, []string{"Sunday"})

	require.Len(t, days, 24)
	for i, day := range days {
		date := mustDate(t, day.Date)
		assert.NotEqual(t, time.Sunday, date.Weekday())

		require.Len(t, day.Tasks, 1)
		task := day.Tasks[0]
		assert.Equal(t, "guitar Study Day "+strconv.Itoa(i+1), task.Title)
		assert.NotEmpty(t, task.ID)
		assert.False(t, task.Completed)
		assert.Equal(t, "2 hours", task.Duration)
	}

	assert.Equal(t, "2024-01-01", days[0].Date)
	// 2024-01-28 is the fourth Sunday, so the horizon ends a day early.
	assert.Equal(t, "2024-01-27", days[len(days)-1].Date)
}

func TestFallbackScheduleNoRestDays(t *testing.T) {
	start := mustDate(t, "2024-03-15")
	days := FallbackSchedule("korean", "1", start, nil)

	require.Len(t, days, model.PlanHorizonDays)
	assert.Equal(t, "2024-03-15", days[0].Date)
	assert.Equal(t, "2024-04-11", days[len(days)-1].Date)
}

func TestFallbackScheduleUnknownRestDayIgnored(t *testing.T) {
	start := mustDate(t, "2024-01-01")
	days := FallbackSchedule("piano", "1", start, []string{"Funday", ""})
	assert.Len(t, days, model.PlanHorizonDays)
}

func TestRepairScheduleDropsOutOfHorizonAndRestDays(t *testing.T) {
	start := mustDate(t, "2024-01-01")
	input := []model.ScheduleDay{
		{Date: "2024-01-03", Tasks: []model.Task{{Title: "keep"}}},
		{Date: "2023-12-31", Tasks: []model.Task{{Title: "before start"}}},
		{Date: "2024-01-29", Tasks: []model.Task{{Title: "past horizon"}}},
		{Date: "2024-01-07", Tasks: []model.Task{{Title: "sunday"}}}, // rest day
		{Date: "not-a-date", Tasks: []model.Task{{Title: "garbage"}}},
		{Date: "2024-01-03", Tasks: []model.Task{{Title: "duplicate"}}},
		{Date: "2024-01-02", Tasks: []model.Task{{Title: "keep too"}}},
	}

	repaired := RepairSchedule(input, start, []string{"sunday"})

	require.Len(t, repaired, 2)
	assert.Equal(t, "2024-01-02", repaired[0].Date)
	assert.Equal(t, "2024-01-03", repaired[1].Date)
	assert.Equal(t, "keep", repaired[1].Tasks[0].Title)
}

func TestRepairScheduleAssignsIDsAndIsIdempotent(t *testing.T) {
	start := mustDate(t, "2024-01-01")
	input := []model.ScheduleDay{
		{Date: "2024-01-05", Tasks: []model.Task{{Title: "a"}, {ID: "fixed", Title: "b"}}},
	}

	once := RepairSchedule(input, start, nil)
	require.Len(t, once, 1)
	assert.NotEmpty(t, once[0].Tasks[0].ID)
	assert.Equal(t, "fixed", once[0].Tasks[1].ID)

	twice := RepairSchedule(once, start, nil)
	assert.Equal(t, once, twice)
}

func TestRepairScheduleSortsAscending(t *testing.T) {
	start := mustDate(t, "2024-01-01")
	input := []model.ScheduleDay{
		{Date: "2024-01-10"},
		{Date: "2024-01-02"},
		{Date: "2024-01-25"},
	}

	repaired := RepairSchedule(input, start, nil)
	require.Len(t, repaired, 3)
	for i := 1; i < len(repaired); i++ {
		assert.Less(t, repaired[i-1].Date, repaired[i].Date)
	}
}

func TestNormalizeRejectsOnlyBadDates(t *testing.T) {
	req := PlanGenerateRequest{Skill: "", SelfLevel: "wizard", StartDate: "2024-01-01"}
	start, level, err := req.normalize()
	require.NoError(t, err)
	assert.Equal(t, "general", req.Skill)
	assert.Equal(t, "1", req.HourPerDay)
	assert.Equal(t, model.LevelBeginner, level)
	assert.Equal(t, "2024-01-01", start.Format(model.DateLayout))

	bad := PlanGenerateRequest{Skill: "go", StartDate: "January first"}
	_, _, err = bad.normalize()
	assert.ErrorIs(t, err, util.ErrInvalidStartDate)
}

func TestNormalizeTruncatesTimestamps(t *testing.T) {
	req := PlanGenerateRequest{Skill: "go", StartDate: "2024-05-01T09:30:00Z"}
	start, _, err := req.normalize()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", start.Format(model.DateLayout))
}

func TestTasksForScope(t *testing.T) {
	plan := &model.Plan{
		DailySchedule: []model.ScheduleDay{
			{Date: "2024-01-10", Tasks: []model.Task{{Title: "today 1"}, {Title: "today 2"}}},
			{Date: "2024-01-08", Tasks: []model.Task{{Title: "monday"}}},
			{Date: "2024-01-14", Tasks: []model.Task{{Title: "sunday"}}},
			{Date: "2024-01-15", Tasks: []model.Task{{Title: "next week"}}},
			{Date: "2024-02-01", Tasks: []model.Task{{Title: "next month"}}},
		},
	}
	// Wednesday, in the week 2024-01-08 .. 2024-01-14.
	today := mustDate(t, "2024-01-10")

	assert.Equal(t, []string{"today 1", "today 2"}, TasksForScope(plan, "daily", today))
	assert.ElementsMatch(t,
		[]string{"today 1", "today 2", "monday", "sunday"},
		TasksForScope(plan, "weekly", today))
	assert.ElementsMatch(t,
		[]string{"today 1", "today 2", "monday", "sunday", "next week"},
		TasksForScope(plan, "monthly", today))
}

func TestTodayProgress(t *testing.T) {
	plan := &model.Plan{
		DailySchedule: []model.ScheduleDay{
			{Date: "2024-01-10", Tasks: []model.Task{
				{Title: "a", Completed: true},
				{Title: "b", Completed: true},
				{Title: "c", Completed: false},
			}},
		},
	}
	today := mustDate(t, "2024-01-10")

	p := TodayProgress(plan, today)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 2, p.Completed)
	assert.Equal(t, 67, p.Percentage)
}

func TestTodayProgressEmptyDay(t *testing.T) {
	plan := &model.Plan{DailySchedule: []model.ScheduleDay{}}
	p := TodayProgress(plan, mustDate(t, "2024-01-10"))
	assert.Zero(t, p.Total)
	assert.Zero(t, p.Percentage)
}

type fakePlanStore struct {
	plans     []*model.Plan
	createErr error
}

func (f *fakePlanStore) Create(plan *model.Plan) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.plans = append(f.plans, plan)
	return nil
}

func (f *fakePlanStore) FindByUserID(uint) ([]*model.Plan, error) {
	return f.plans, nil
}

func (f *fakePlanStore) FindCurrent(uint) (*model.Plan, error) {
	if len(f.plans) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return f.plans[len(f.plans)-1], nil
}

func (f *fakePlanStore) Save(*model.Plan) error {
	return nil
}

func newTestPlanService(store planStore, gen TextGenerator) *PlanService {
	return &PlanService{
		planRepo:  store,
		materials: NewMaterialService(gen, nil),
		ai:        gen,
		status:    NewStatusService(),
	}
}

func TestGeneratePlanPersistsFallback(t *testing.T) {
	store := &fakePlanStore{}
	s := newTestPlanService(store, &fakeGenerator{err: assert.AnError})

	plan, err := s.GeneratePlan(t.Context(), 1, PlanGenerateRequest{
		Skill:     "guitar",
		StartDate: "2024-01-01",
		RestDays:  []string{"Sunday"},
	})
	require.NoError(t, err)

	require.Len(t, store.plans, 1)
	assert.Len(t, plan.DailySchedule, 24)
	assert.NotEmpty(t, plan.DailySchedule[0].Tasks[0].RelatedMaterials)
	assert.Equal(t, PhaseDone, s.status.Current())
}

func TestGeneratePlanStatusDoneAfterStoreFailure(t *testing.T) {
	store := &fakePlanStore{createErr: assert.AnError}
	s := newTestPlanService(store, &fakeGenerator{err: assert.AnError})

	_, err := s.GeneratePlan(t.Context(), 1, PlanGenerateRequest{
		Skill:     "guitar",
		StartDate: "2024-01-01",
	})
	assert.Error(t, err)
	assert.Equal(t, PhaseDone, s.status.Current())
}

func TestUpdateTaskCompletionToggleTwice(t *testing.T) {
	store := &fakePlanStore{plans: []*model.Plan{{
		DailySchedule: []model.ScheduleDay{{
			Date:  "2024-01-02",
			Tasks: []model.Task{{ID: "t1", Title: "chords"}},
		}},
	}}}
	s := &PlanService{planRepo: store}

	task := &store.plans[0].DailySchedule[0].Tasks[0]
	require.False(t, task.Completed)

	require.NoError(t, s.UpdateTaskCompletion(1, "2024-01-02", "t1", true))
	assert.True(t, task.Completed)

	require.NoError(t, s.UpdateTaskCompletion(1, "2024-01-02", "t1", false))
	assert.False(t, task.Completed)
}

func TestUpdateTaskCompletionNotFound(t *testing.T) {
	store := &fakePlanStore{plans: []*model.Plan{{
		DailySchedule: []model.ScheduleDay{{Date: "2024-01-02", Tasks: []model.Task{{ID: "t1"}}}},
	}}}
	s := &PlanService{planRepo: store}

	assert.ErrorIs(t, s.UpdateTaskCompletion(1, "2024-01-02", "missing", true), util.ErrTaskNotFound)
	assert.ErrorIs(t, s.UpdateTaskCompletion(1, "2024-01-03", "t1", true), util.ErrTaskNotFound)

	empty := &PlanService{planRepo: &fakePlanStore{}}
	assert.ErrorIs(t, empty.UpdateTaskCompletion(1, "2024-01-02", "t1", true), util.ErrPlanNotFound)
}

func TestGenerateDocumentFallsBackOnBadOutput(t *testing.T) {
	start := mustDate(t, "2024-01-01")

	cases := map[string]*fakeGenerator{
		"backend error": {err: assert.AnError},
		"no json":       {response: "sorry, I cannot help"},
		"empty days":    {response: `{"plan_name": "x", "daily_schedule": []}`},
		"all days out of horizon": {
			response: `{"plan_name": "x", "daily_schedule": [{"date": "2030-01-01", "tasks": []}]}`,
		},
	}

	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			s := &PlanService{ai: gen}
			_, path := s.generateDocument(t.Context(), "prompt", start, nil)
			assert.Equal(t, "fallback", path)
		})
	}
}

func TestGenerateDocumentAcceptsRepairedOutput(t *testing.T) {
	start := mustDate(t, "2024-01-01")
	gen := &fakeGenerator{response: "```json\n" + `{
		"plan_name": "Guitar basics",
		"total_duration": "4 weeks",
		"daily_schedule": [
			{"date": "2024-01-02", "tasks": [{"title": "chords"}]},
			{"date": "2030-01-01", "tasks": [{"title": "dropped"}]}
		]
	}` + "\n```"}

	s := &PlanService{ai: gen}
	doc, path := s.generateDocument(t.Context(), "prompt", start, nil)

	assert.Equal(t, "generated", path)
	assert.Equal(t, "Guitar basics", doc.PlanName)
	require.Len(t, doc.DailySchedule, 1)
	assert.NotEmpty(t, doc.DailySchedule[0].Tasks[0].ID)
}
