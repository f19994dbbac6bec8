package handler

import (
	"net/http"

	"github.com/haatos/freestyle-multibranch/internal/service"
	"github.com/labstack/echo/v4"
)

func SetupBuildRoutes(g *echo.Group, buildService service.BuildServicer) {
	h := NewBuildHandler(buildService)
	g.POST("/projects/:project/jobs/:job/builds", h.PostBuild)
	g.GET("/projects/:project/jobs/:job/builds", h.GetJobBuilds)
	g.GET("/builds", h.GetRunningBuilds)
	g.POST("/builds/:build_id/finish", h.PostFinishBuild)
	g.POST("/builds/:build_id/cancel", h.PostCancelBuild)
}

type BuildHandler struct {
	buildService service.BuildServicer
}

func NewBuildHandler(buildService service.BuildServicer) *BuildHandler {
	return &BuildHandler{buildService}
}

type RunningBuildView struct {
	Build     BuildView `json:"build"`
	Branch    string    `json:"branch"`
	Workspace string    `json:"workspace"`
	LeaseID   string    `json:"lease_id"`
}

func newRunningBuildView(rb *service.RunningBuild) RunningBuildView {
	return RunningBuildView{
		Build:     newBuildView(rb.Build),
		Branch:    rb.Branch.Name,
		Workspace: rb.Lease.Path,
		LeaseID:   rb.Lease.ID.String(),
	}
}

// PostBuild blocks until the job's workspace on the node is free, or the
// request is cancelled.
func (h *BuildHandler) PostBuild(c echo.Context) error {
	bp := new(BuildParams)
	if err := c.Bind(bp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid build data")
	}
	if bp.Node == "" {
		return newError(c, nil, http.StatusBadRequest, "node is required")
	}

	rb, err := h.buildService.StartBuild(c.Request().Context(), bp.Project, bp.Job, bp.Node)
	if err != nil {
		return domainError(c, err, http.StatusServiceUnavailable, "unable to start build")
	}
	return c.JSON(http.StatusCreated, newRunningBuildView(rb))
}

func (h *BuildHandler) GetJobBuilds(c echo.Context) error {
	jp := new(JobParams)
	if err := c.Bind(jp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid job")
	}
	builds, err := h.buildService.ListJobBuilds(c.Request().Context(), jp.Project, jp.Job)
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to list builds")
	}
	views := make([]BuildView, len(builds))
	for i, b := range builds {
		views[i] = newBuildView(b)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *BuildHandler) GetRunningBuilds(c echo.Context) error {
	running := h.buildService.RunningBuilds()
	views := make([]RunningBuildView, len(running))
	for i, rb := range running {
		views[i] = newRunningBuildView(rb)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *BuildHandler) PostFinishBuild(c echo.Context) error {
	bp := new(BuildIDParams)
	if err := c.Bind(bp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid build data")
	}
	if err := h.buildService.FinishBuild(c.Request().Context(), bp.BuildID, bp.Passed); err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to finish build")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BuildHandler) PostCancelBuild(c echo.Context) error {
	bp := new(BuildIDParams)
	if err := c.Bind(bp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid build")
	}
	if err := h.buildService.CancelBuild(c.Request().Context(), bp.BuildID); err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to cancel build")
	}
	return c.NoContent(http.StatusNoContent)
}
