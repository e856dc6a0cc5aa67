package controller

import (
	"palearn_backend/internal/model"
	"palearn_backend/internal/service"
	"palearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	quizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{quizService: quizService}
}

type generateQuizRequest struct {
	Skill  string `json:"skill" binding:"required"`
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Generate godoc
// @Summary Generate a placement quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body generateQuizRequest true "quiz parameters"
// @Success 201 {object} util.Response
// @Router /quiz/generate [post]
func (ctrl *QuizController) Generate(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req generateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	session, err := ctrl.quizService.GenerateQuiz(c.Request.Context(), claims.UserID, req.Skill, model.ParseLevel(req.Level), service.ParseQuizFormat(req.Format))
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Created(c, gin.H{
		"session_id": session.ID,
		"skill":      session.Skill,
		"items":      session.SanitizedItems(),
	})
}

type gradeQuizRequest struct {
	SessionID uint     `json:"session_id"`
	Answers   []string `json:"answers" binding:"required"`
}

// Grade godoc
// @Summary Grade a quiz submission
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body gradeQuizRequest true "answers in question order"
// @Success 200 {object} util.Response
// @Router /quiz/grade [post]
func (ctrl *QuizController) Grade(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req gradeQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	result, err := ctrl.quizService.Grade(claims.UserID, req.SessionID, req.Answers)
	if err == util.ErrSessionNotFound {
		util.NotFound(c, err.Error())
		return
	}
	if err == util.ErrAnswerCountMismatch {
		util.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, result)
}

// Results godoc
// @Summary List past grading results
// @Tags quiz
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /quiz/results [get]
func (ctrl *QuizController) Results(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	results, err := ctrl.quizService.Results(claims.UserID, 20)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, results)
}
