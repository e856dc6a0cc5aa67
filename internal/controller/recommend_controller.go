package controller

import (
	"palearn_backend/internal/model"
	"palearn_backend/internal/service"
	"palearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RecommendController struct {
	recommendService *service.RecommendService
	planService      *service.PlanService
	statusService    *service.StatusService
}

func NewRecommendController(recommendService *service.RecommendService, planService *service.PlanService, statusService *service.StatusService) *RecommendController {
	return &RecommendController{
		recommendService: recommendService,
		planService:      planService,
		statusService:    statusService,
	}
}

type recommendRequest struct {
	Skill string `json:"skill" binding:"required"`
	Level string `json:"level"`
}

// Recommend godoc
// @Summary Recommend courses for a skill
// @Tags recommend
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body recommendRequest true "skill and level"
// @Success 200 {object} util.Response
// @Router /recommend [post]
func (ctrl *RecommendController) Recommend(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	rec, err := ctrl.recommendService.RecommendCourses(c.Request.Context(), claims.UserID, req.Skill, model.ParseLevel(req.Level))
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, rec)
}

// Apply godoc
// @Summary Build a plan from a selected course
// @Tags recommend
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ApplyRecommendationRequest true "course and plan parameters"
// @Success 201 {object} util.Response
// @Router /recommend/apply [post]
func (ctrl *RecommendController) Apply(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.ApplyRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	plan, err := ctrl.planService.ApplyRecommendation(c.Request.Context(), claims.UserID, req)
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

// History godoc
// @Summary List past recommendation runs
// @Tags recommend
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /recommend/history [get]
func (ctrl *RecommendController) History(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	recs, err := ctrl.recommendService.History(claims.UserID, 10)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, recs)
}

// SearchStatus godoc
// @Summary Current generation phase for polling clients
// @Tags recommend
// @Produce json
// @Success 200 {object} util.Response
// @Router /recommend/search_status [get]
func (ctrl *RecommendController) SearchStatus(c *gin.Context) {
	util.Success(c, gin.H{"status": ctrl.statusService.Current()})
}
