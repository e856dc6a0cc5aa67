package controller

import (
	"time"

	"palearn_backend/internal/service"
	"palearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PlanController struct {
	planService     *service.PlanService
	materialService *service.MaterialService
}

func NewPlanController(planService *service.PlanService, materialService *service.MaterialService) *PlanController {
	return &PlanController{planService: planService, materialService: materialService}
}

// Generate godoc
// @Summary Generate a new study plan
// @Tags plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.PlanGenerateRequest true "plan parameters"
// @Success 201 {object} util.Response
// @Router /plans/generate [post]
func (ctrl *PlanController) Generate(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.PlanGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	plan, err := ctrl.planService.GeneratePlan(c.Request.Context(), claims.UserID, req)
	if err == util.ErrInvalidStartDate {
		util.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Created(c, plan)
}

// List godoc
// @Summary List all plans of the user
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /plans [get]
func (ctrl *PlanController) List(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	plans, err := ctrl.planService.ListPlans(claims.UserID)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, plans)
}

// Current godoc
// @Summary Get the most recent plan
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /plans/current [get]
func (ctrl *PlanController) Current(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	plan, err := ctrl.planService.CurrentPlan(claims.UserID)
	if err == util.ErrPlanNotFound {
		util.NotFound(c, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, plan)
}

// ByDate godoc
// @Summary Get the schedule of one date in the current plan
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Param date path string true "date (YYYY-MM-DD)"
// @Success 200 {object} util.Response
// @Router /plans/date/{date} [get]
func (ctrl *PlanController) ByDate(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	day, planName, err := ctrl.planService.PlanByDate(claims.UserID, c.Param("date"))
	if err == util.ErrPlanNotFound {
		util.NotFound(c, err.Error())
		return
	}
	if err == util.ErrDayNotFound {
		util.Success(c, gin.H{
			"plan_name": planName,
			"date":      c.Param("date"),
			"tasks":     []string{},
		})
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, gin.H{
		"plan_name": planName,
		"date":      day.Date,
		"tasks":     day.Tasks,
	})
}

type updateTaskRequest struct {
	Date      string `json:"date" binding:"required"`
	TaskID    string `json:"task_id" binding:"required"`
	Completed bool   `json:"completed"`
}

// UpdateTask godoc
// @Summary Toggle a task's completed flag
// @Tags plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateTaskRequest true "task reference"
// @Success 200 {object} util.Response
// @Router /plans/task/update [post]
func (ctrl *PlanController) UpdateTask(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	err := ctrl.planService.UpdateTaskCompletion(claims.UserID, req.Date, req.TaskID, req.Completed)
	if err == util.ErrPlanNotFound || err == util.ErrTaskNotFound {
		util.NotFound(c, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, gin.H{"updated": true})
}

// Tasks godoc
// @Summary List task titles for a scope
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Param scope query string false "daily, weekly or monthly" default(daily)
// @Success 200 {object} util.Response
// @Router /plans/tasks [get]
func (ctrl *PlanController) Tasks(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	plan, err := ctrl.planService.CurrentPlan(claims.UserID)
	if err == util.ErrPlanNotFound {
		util.Success(c, gin.H{"tasks": []string{}})
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	scope := c.DefaultQuery("scope", "daily")
	titles := service.TasksForScope(plan, scope, time.Now())
	util.Success(c, gin.H{"scope": scope, "tasks": titles})
}

// Progress godoc
// @Summary Today's completion summary
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /plans/progress/today [get]
func (ctrl *PlanController) Progress(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	plan, err := ctrl.planService.CurrentPlan(claims.UserID)
	if err == util.ErrPlanNotFound {
		util.Success(c, service.DayProgress{})
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, service.TodayProgress(plan, time.Now()))
}

// YesterdayReview godoc
// @Summary Yesterday's completed topics with review materials
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /plans/yesterday_review [get]
func (ctrl *PlanController) YesterdayReview(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	review, err := ctrl.planService.ReviewForYesterday(claims.UserID, time.Now())
	if err == util.ErrPlanNotFound {
		util.Success(c, service.YesterdayReview{Topics: []string{}})
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, review)
}

// RelatedMaterials godoc
// @Summary Look up study materials for a topic
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Param topic query string true "topic to search materials for"
// @Success 200 {object} util.Response
// @Router /plans/related_materials [get]
func (ctrl *PlanController) RelatedMaterials(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	topic := c.Query("topic")
	if topic == "" {
		util.BadRequest(c, "topic is required")
		return
	}

	related, review := ctrl.materialService.MaterialsForTopic(c.Request.Context(), topic)
	util.Success(c, gin.H{
		"related_materials": related,
		"review_materials":  review,
	})
}
