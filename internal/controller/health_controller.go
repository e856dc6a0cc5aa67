package controller

import (
	"context"
	"time"

	"palearn_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{db: db, rdb: rdb}
}

// Check godoc
// @Summary Liveness and dependency status
// @Tags health
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (ctrl *HealthController) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "up"
	if sqlDB, err := ctrl.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbStatus = "down"
	}

	redisStatus := "up"
	if ctrl.rdb == nil || ctrl.rdb.Ping(ctx).Err() != nil {
		redisStatus = "down"
	}

	util.Success(c, gin.H{
		"status":   "ok",
		"database": dbStatus,
		"redis":    redisStatus,
	})
}
