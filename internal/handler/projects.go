package handler

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/service"
	"github.com/haatos/freestyle-multibranch/internal/steps"
	"github.com/labstack/echo/v4"
)

func SetupProjectRoutes(
	g *echo.Group,
	projectService service.ProjectServicer,
	nodeService service.NodeServicer,
	registry *steps.Registry,
) {
	h := NewProjectHandler(projectService, nodeService, registry)
	projects := g.Group("/projects")
	projects.GET("", h.GetProjects)
	projects.POST("", h.PostProject)
	projects.GET("/:project", h.GetProject)
	projects.DELETE("/:project", h.DeleteProject)
	projects.PUT("/:project/criteria", h.PutCriteria)
	projects.GET("/:project/template", h.GetTemplate)
	projects.PUT("/:project/template", h.PutTemplate)
	projects.POST("/:project/reconcile", h.PostReconcile)
	projects.GET("/:project/jobs", h.GetJobs)
	projects.GET("/:project/jobs/:job", h.GetJob)
	projects.POST("/:project/jobs/:job/disable", h.PostDisableJob)
	projects.POST("/:project/jobs/:job/enable", h.PostEnableJob)
	projects.POST("/:project/jobs/:job/resync", h.PostResyncJob)
}

type ProjectHandler struct {
	projectService service.ProjectServicer
	nodeService    service.NodeServicer
	registry       *steps.Registry
}

func NewProjectHandler(
	projectService service.ProjectServicer,
	nodeService service.NodeServicer,
	registry *steps.Registry,
) *ProjectHandler {
	if registry == nil {
		registry = steps.Default
	}
	return &ProjectHandler{projectService, nodeService, registry}
}

func (h *ProjectHandler) GetProjects(c echo.Context) error {
	projects, err := h.projectService.ListProjects(c.Request().Context())
	if err != nil {
		return newError(c, err, http.StatusInternalServerError, "unable to list projects")
	}
	views := make([]ProjectView, len(projects))
	for i, p := range projects {
		views[i] = newProjectView(p)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *ProjectHandler) PostProject(c echo.Context) error {
	pp := new(ProjectParams)
	if err := c.Bind(pp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid project data")
	}
	pp.Name = strings.TrimSpace(pp.Name)
	if pp.Name == "" {
		return newError(c, nil, http.StatusBadRequest, "project name is required")
	}

	p, err := h.projectService.CreateProject(c.Request().Context(), pp.Name, strings.TrimSpace(pp.Description))
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to create project")
	}
	return c.JSON(http.StatusCreated, newProjectView(p))
}

func (h *ProjectHandler) GetProject(c echo.Context) error {
	pp := new(ProjectParams)
	if err := c.Bind(pp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid project")
	}
	p, err := h.projectService.GetProject(c.Request().Context(), pp.Project)
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to get project")
	}
	return c.JSON(http.StatusOK, newProjectView(p))
}

func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	pp := new(ProjectParams)
	if err := c.Bind(pp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid project")
	}
	if err := h.projectService.DeleteProject(c.Request().Context(), pp.Project); err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to delete project")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProjectHandler) PutCriteria(c echo.Context) error {
	cp := new(CriteriaParams)
	if err := c.Bind(cp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid criteria data")
	}
	changed, err := h.projectService.SetCriteria(c.Request().Context(), cp.Project, cp.Tag, cp.Form)
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to save criteria")
	}
	return c.JSON(http.StatusOK, map[string]bool{"changed": changed})
}

func (h *ProjectHandler) GetTemplate(c echo.Context) error {
	pp := new(ProjectParams)
	if err := c.Bind(pp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid project")
	}
	p, err := h.projectService.GetProject(c.Request().Context(), pp.Project)
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to get project")
	}
	snap, err := p.NewProjectFactory().Template().Snapshot()
	if err != nil {
		return newError(c, err, http.StatusInternalServerError, "unable to read template")
	}
	return c.JSON(http.StatusOK, newTemplateView(snap.Wrappers, snap.Builders, snap.Publishers))
}

func (h *ProjectHandler) PutTemplate(c echo.Context) error {
	tp := new(TemplateParams)
	if err := c.Bind(tp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid template data")
	}
	wrappers, err := h.decodeSteps(tp.Wrappers)
	if err != nil {
		return domainError(c, err, http.StatusBadRequest, "invalid wrapper")
	}
	builders, err := h.decodeSteps(tp.Builders)
	if err != nil {
		return domainError(c, err, http.StatusBadRequest, "invalid builder")
	}
	publishers, err := h.decodeSteps(tp.Publishers)
	if err != nil {
		return domainError(c, err, http.StatusBadRequest, "invalid publisher")
	}

	if err := h.projectService.ReplaceTemplate(
		c.Request().Context(),
		tp.Project,
		wrappers, builders, publishers,
	); err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to replace template")
	}
	return c.JSON(http.StatusOK, newTemplateView(wrappers, builders, publishers))
}

func (h *ProjectHandler) decodeSteps(params []StepParams) ([]steps.Step, error) {
	items := make([]steps.Step, 0, len(params))
	for _, sp := range params {
		s, err := h.registry.DecodeSpec(sp.Kind, sp.Spec)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}

func (h *ProjectHandler) PostReconcile(c echo.Context) error {
	rp := new(ReconcileParams)
	if err := c.Bind(rp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid branch data")
	}
	ctx := c.Request().Context()
	candidates, closers, err := h.openCandidates(ctx, rp.Branches)
	defer func() {
		for _, cl := range closers {
			if err := cl.Close(); err != nil {
				log.Printf("err closing probe: %+v\n", err)
			}
		}
	}()
	if err != nil {
		return domainError(c, err, http.StatusBadGateway, "unable to probe branch")
	}

	result, err := h.projectService.Reconcile(ctx, rp.Project, candidates)
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to reconcile project")
	}
	return c.JSON(http.StatusOK, result)
}

func (h *ProjectHandler) openCandidates(
	ctx context.Context,
	params []CandidateParams,
) ([]service.Candidate, []io.Closer, error) {
	candidates := make([]service.Candidate, 0, len(params))
	closers := make([]io.Closer, 0)
	for _, cp := range params {
		cand := service.Candidate{Branch: scm.NewBranch(cp.Name, cp.Head, cp.SCM, cp.Properties...)}
		cand.Branch.Dead = cp.Dead
		if cp.Node != "" && cp.Checkout != "" {
			probe, closer, err := h.nodeService.OpenProbe(ctx, cp.Node, cp.Head, cp.Checkout)
			if err != nil {
				return nil, closers, err
			}
			closers = append(closers, closer)
			cand.Probe = probe
		}
		candidates = append(candidates, cand)
	}
	return candidates, closers, nil
}

func (h *ProjectHandler) GetJobs(c echo.Context) error {
	pp := new(ProjectParams)
	if err := c.Bind(pp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid project")
	}
	p, err := h.projectService.GetProject(c.Request().Context(), pp.Project)
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to get project")
	}
	jobs := p.Items()
	views := make([]JobView, len(jobs))
	for i, j := range jobs {
		views[i] = newJobView(j)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *ProjectHandler) GetJob(c echo.Context) error {
	jp := new(JobParams)
	if err := c.Bind(jp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid job")
	}
	j, err := h.projectService.GetJob(c.Request().Context(), jp.Project, jp.Job)
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to get job")
	}
	return c.JSON(http.StatusOK, newJobView(j))
}

func (h *ProjectHandler) PostDisableJob(c echo.Context) error {
	return h.setJobDisabled(c, true)
}

func (h *ProjectHandler) PostEnableJob(c echo.Context) error {
	return h.setJobDisabled(c, false)
}

func (h *ProjectHandler) setJobDisabled(c echo.Context, disabled bool) error {
	jp := new(JobParams)
	if err := c.Bind(jp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid job")
	}
	ctx := c.Request().Context()
	if err := h.projectService.SetJobDisabled(ctx, jp.Project, jp.Job, disabled); err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to update job")
	}
	j, err := h.projectService.GetJob(ctx, jp.Project, jp.Job)
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to get job")
	}
	return c.JSON(http.StatusOK, newJobView(j))
}

func (h *ProjectHandler) PostResyncJob(c echo.Context) error {
	jp := new(JobParams)
	if err := c.Bind(jp); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid job")
	}
	ctx := c.Request().Context()
	if err := h.projectService.ResyncJob(ctx, jp.Project, jp.Job); err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to resync job")
	}
	j, err := h.projectService.GetJob(ctx, jp.Project, jp.Job)
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to get job")
	}
	return c.JSON(http.StatusOK, newJobView(j))
}
