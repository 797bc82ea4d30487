package main

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"wordle-results/internal/logging"
	"wordle-results/internal/service"
	"wordle-results/internal/types"
)

// submitHandler records a player's result for today and returns today's bucket.
func (app *App) submitHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var in types.Submission
	if err := c.ShouldBindJSON(&in); err != nil {
		logging.WarnCtx(ctx, "Failed to parse submission: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorInvalidBody})
		return
	}

	bucket, err := app.Service.Submit(ctx, &in)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrorStorage})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": MessageSubmitted,
		"data":    bucket,
	})
}

// resultsHandler returns every record for ?date=YYYY-MM-DD, defaulting to today.
func (app *App) resultsHandler(c *gin.Context) {
	bucket := app.Service.Results(c.Request.Context(), c.Query("date"))
	c.JSON(http.StatusOK, bucket)
}

// clearHandler drops all stored results.
func (app *App) clearHandler(c *gin.Context) {
	if err := app.Service.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrorClearFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MessageCleared})
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"env":       envName(app.Config.IsProduction),
		"uptime":    formatUptime(time.Since(app.StartTime)),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"data_file": app.Store.Path(),
	})
}

// debugHandler dumps storage internals. Only registered when ENABLE_DEBUG is set.
func (app *App) debugHandler(c *gin.Context) {
	ctx := c.Request.Context()
	snap := app.Store.Inspect()
	data := app.Store.Load()
	today := app.Service.Today()

	players := lo.Keys(data[today])
	slices.Sort(players)

	logging.InfoCtx(ctx, "Debug snapshot requested (%d dates stored)", len(data))
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"data_dir":      snap.DataDir,
		"data_file":     snap.DataFile,
		"file_exists":   snap.FileExists,
		"file_size":     snap.FileSize,
		"file_mode":     snap.FileMode,
		"files":         snap.Files,
		"today":         today,
		"players_today": players,
		"data":          data,
	})
}
