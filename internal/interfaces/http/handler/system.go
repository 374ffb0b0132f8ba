package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	apiName    = "VRM Backend API"
	apiVersion = "1.0.0"
)

// SystemHandler serves the operational endpoints used by monitoring and
// smoke tests.
type SystemHandler struct {
	BaseHandler
	env       string
	startTime time.Time
}

// NewSystemHandler creates a SystemHandler reporting the given deployment
// environment (development, testing, production).
func NewSystemHandler(env string) *SystemHandler {
	return &SystemHandler{env: env, startTime: time.Now()}
}

// RegisterRoutes registers system routes on the given group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
		system.GET("/ping", h.Ping)
	}
}

// SystemInfoResponse identifies the running service.
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name        string `json:"name" example:"VRM Backend API"`
	Version     string `json:"version" example:"1.0.0"`
	Environment string `json:"environment" example:"production"`
	GoVersion   string `json:"go_version" example:"go1.25.5"`
	Uptime      string `json:"uptime" example:"1h30m45s"`
	Goroutines  int    `json:"goroutines" example:"12"`
}

// GetSystemInfo godoc
// @ID           systemInfo
// @Summary      Get system information
// @Description  Service identity, environment, and uptime for monitoring
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:        apiName,
		Version:     apiVersion,
		Environment: h.env,
		GoVersion:   runtime.Version(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Goroutines:  runtime.NumGoroutine(),
	})
}

// PingResponse carries the round-trip timestamp.
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           systemPing
// @Summary      Ping the API
// @Description  Liveness check that returns the server clock
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
