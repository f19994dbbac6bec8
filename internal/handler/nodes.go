package handler

import (
	"net/http"
	"strings"

	"github.com/haatos/freestyle-multibranch/internal/service"
	"github.com/labstack/echo/v4"
)

func SetupNodeRoutes(g *echo.Group, nodeService service.NodeServicer) {
	h := NewNodeHandler(nodeService)
	nodes := g.Group("/nodes")
	nodes.GET("", h.GetNodes)
	nodes.POST("", h.PostNode)
	nodes.GET("/:node", h.GetNode)
	nodes.PATCH("/:node", h.PatchNode)
	nodes.DELETE("/:node", h.DeleteNode)
	nodes.POST("/:node/test-connection", h.PostTestNodeConnection)
}

type NodeHandler struct {
	nodeService service.NodeServicer
}

func NewNodeHandler(nodeService service.NodeServicer) *NodeHandler {
	return &NodeHandler{nodeService}
}

func (h *NodeHandler) GetNodes(c echo.Context) error {
	nodes, err := h.nodeService.ListNodes(c.Request().Context())
	if err != nil {
		return newError(c, err, http.StatusInternalServerError, "unable to list nodes")
	}
	views := make([]NodeView, len(nodes))
	for i, n := range nodes {
		views[i] = newNodeView(n)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *NodeHandler) PostNode(c echo.Context) error {
	np := new(NodeParams)
	if err := c.Bind(np); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid node data")
	}
	np.trim()
	if np.Name == "" || np.Hostname == "" || np.Workspace == "" {
		return newError(c, nil, http.StatusBadRequest, "name, hostname and workspace are required")
	}

	n, err := h.nodeService.CreateNode(
		c.Request().Context(),
		np.Name,
		np.Hostname,
		np.Workspace,
		np.Username,
		np.SSHPrivateKey,
		np.Description,
	)
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to create node")
	}
	return c.JSON(http.StatusCreated, newNodeView(n))
}

func (h *NodeHandler) GetNode(c echo.Context) error {
	np := new(NodeParams)
	if err := c.Bind(np); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid node")
	}
	n, err := h.nodeService.GetNode(c.Request().Context(), np.Node)
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to get node")
	}
	return c.JSON(http.StatusOK, newNodeView(n))
}

// PatchNode updates the node's connection data. The online flag is changed
// only when present in the request.
func (h *NodeHandler) PatchNode(c echo.Context) error {
	np := new(NodeParams)
	if err := c.Bind(np); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid node data")
	}
	np.trim()
	ctx := c.Request().Context()

	if np.Hostname != "" || np.Workspace != "" {
		if err := h.nodeService.UpdateNode(
			ctx,
			np.Node,
			np.Hostname,
			np.Workspace,
			np.Username,
			np.SSHPrivateKey,
			np.Description,
		); err != nil {
			return domainError(c, err, http.StatusInternalServerError, "unable to update node")
		}
	}
	if np.Online != nil {
		if err := h.nodeService.SetNodeOnline(ctx, np.Node, *np.Online); err != nil {
			return domainError(c, err, http.StatusInternalServerError, "unable to update node")
		}
	}

	n, err := h.nodeService.GetNode(ctx, np.Node)
	if err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to get node")
	}
	return c.JSON(http.StatusOK, newNodeView(n))
}

func (h *NodeHandler) DeleteNode(c echo.Context) error {
	np := new(NodeParams)
	if err := c.Bind(np); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid node")
	}
	if err := h.nodeService.DeleteNode(c.Request().Context(), np.Node); err != nil {
		return domainError(c, err, http.StatusInternalServerError, "unable to delete node")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NodeHandler) PostTestNodeConnection(c echo.Context) error {
	np := new(NodeParams)
	if err := c.Bind(np); err != nil {
		return newError(c, err, http.StatusBadRequest, "invalid node")
	}
	if err := h.nodeService.TestNodeConnection(c.Request().Context(), np.Node); err != nil {
		return domainError(c, err, http.StatusBadGateway, "unable to connect to node")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "connection ok"})
}

func (np *NodeParams) trim() {
	np.Name = strings.TrimSpace(np.Name)
	np.Hostname = strings.TrimSpace(np.Hostname)
	np.Workspace = strings.TrimSpace(np.Workspace)
	np.Username = strings.TrimSpace(np.Username)
	np.Description = strings.TrimSpace(np.Description)
}
