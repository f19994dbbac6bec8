package handler

import (
	"net/http"
	"time"

	"github.com/haatos/freestyle-multibranch/internal"
	"github.com/haatos/freestyle-multibranch/internal/criteria"
	"github.com/haatos/freestyle-multibranch/internal/steps"
	"github.com/labstack/echo/v4"
)

func SetupAppRoutes(g *echo.Group, registry *steps.Registry, configPath string) {
	h := NewAppHandler(registry, configPath)
	g.GET("/steps", h.GetSteps)
	g.GET("/criteria", GetCriteriaTags)
	g.GET("/config", GetConfig)
	g.PUT("/config", h.PutConfig)
}

type AppHandler struct {
	registry   *steps.Registry
	configPath string
}

func NewAppHandler(registry *steps.Registry, configPath string) *AppHandler {
	if registry == nil {
		registry = steps.Default
	}
	return &AppHandler{registry, configPath}
}

// GetSteps lists the registered step kinds, optionally filtered by
// capability.
func (h *AppHandler) GetSteps(c echo.Context) error {
	sp := new(StepListParams)
	if err := c.Bind(sp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid capability")
	}
	capabilities := []steps.Capability{
		steps.CapabilityWrapper,
		steps.CapabilityBuilder,
		steps.CapabilityPublisher,
	}
	if sp.Capability != "" {
		capabilities = []steps.Capability{sp.Capability}
	}
	descriptors := make([]steps.Descriptor, 0)
	for _, capability := range capabilities {
		descriptors = append(descriptors, h.registry.Descriptors(capability)...)
	}
	return c.JSON(http.StatusOK, descriptors)
}

func GetCriteriaTags(c echo.Context) error {
	return c.JSON(http.StatusOK, criteria.Tags())
}

func GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, internal.Config)
}

func (h *AppHandler) PutConfig(c echo.Context) error {
	cp := new(ConfigParams)
	if err := c.Bind(cp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid config data")
	}
	if cp.CleanupHour > 23 {
		return newError(c, nil, http.StatusBadRequest, "cleanup_hour must be between 0 and 23")
	}
	if cp.LeaseWaitSeconds < 0 || cp.RateLimit < 0 {
		return newError(c, nil, http.StatusBadRequest, "negative values are not allowed")
	}

	config := &internal.Configuration{
		CleanupHour:       cp.CleanupHour,
		DefaultMarkerFile: cp.DefaultMarkerFile,
		LeaseWait: internal.SecondsDuration(
			time.Duration(cp.LeaseWaitSeconds * float64(time.Second)),
		),
		RateLimit: cp.RateLimit,
	}
	if config.DefaultMarkerFile == "" {
		config.DefaultMarkerFile = internal.DefaultMarkerFile
	}

	if err := internal.UpdateConfiguration(h.configPath, config); err != nil {
		return newError(
			c, err,
			http.StatusInternalServerError,
			"unable to update configuration file",
		)
	}
	return c.JSON(http.StatusOK, config)
}
