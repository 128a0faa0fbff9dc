package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"files-manager-api/internal/application/ports"
)

type OpsController struct {
	statusService ports.StatusService
	logger        *zap.Logger
}

func NewOpsController(
	r *gin.Engine,
	statusService ports.StatusService,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *OpsController {
	oc := &OpsController{
		statusService: statusService,
		logger:        logger,
	}

	r.GET(RouteStatus, oc.StatusHandler)
	r.GET(RouteStats, oc.StatsHandler)
	r.GET(RouteHealth, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET(RouteMetrics, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return oc
}

func (oc *OpsController) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, oc.statusService.Health(c.Request.Context()))
}

func (oc *OpsController) StatsHandler(c *gin.Context) {
	stats, err := oc.statusService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, oc.logger, "Stats()", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
