package backend

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmiodice/strava-garmin-sync/internal/state"
	"github.com/nmiodice/strava-garmin-sync/internal/syncer"
)

// runner is what the routes need from the sync engine.
type runner interface {
	Run(ctx context.Context, days int) (*syncer.Report, error)
	LastReport() *syncer.Report
}

const (
	ResponseError      = "Error"
	ResponseReport     = "Report"
	ResponseState      = "State"
	ResponseStateSince = "StateSince"
	ResponseLastReport = "LastReport"
	ResponseStatus     = "status"
	QueryParamDays     = "days"
)

type HttpRoutes struct {
	SyncRoute    gin.HandlerFunc
	StatusRoute  gin.HandlerFunc
	HealthRoute  gin.HandlerFunc
	MetricsRoute gin.HandlerFunc
}

func GetRoutes(config *Config, deps *Dependencies) *HttpRoutes {
	return &HttpRoutes{
		SyncRoute:    getSyncRoute(config.Sync, deps.Engine),
		StatusRoute:  getStatusRoute(deps.Tracker, deps.Engine),
		HealthRoute:  getHealthRoute(),
		MetricsRoute: gin.WrapH(promhttp.Handler()),
	}
}

// getSyncRoute triggers a run and blocks until it finishes, so the
// caller gets the full report in the response.
var getSyncRoute = func(syncConfig SyncConfig, engine runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		days := syncConfig.Days
		if raw := c.Query(QueryParamDays); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(400, gin.H{
					ResponseError: "days must be a positive integer",
				})
				return
			}
			days = parsed
		}

		report, err := engine.Run(c.Request.Context(), days)
		if errors.Is(err, syncer.ErrRunInProgress) {
			c.JSON(409, gin.H{
				ResponseError: err.Error(),
			})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{
				ResponseError: err.Error(),
			})
			return
		}

		status := 200
		if report.Aborted {
			status = 502
		}
		c.JSON(status, gin.H{
			ResponseReport: report,
		})
	}
}

var getStatusRoute = func(tracker *state.Tracker, engine runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, since := tracker.Current()
		c.JSON(200, gin.H{
			ResponseState:      current,
			ResponseStateSince: since,
			ResponseLastReport: engine.LastReport(),
		})
	}
}

var getHealthRoute = func() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			ResponseStatus: "ok",
		})
	}
}
