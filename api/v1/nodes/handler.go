package nodes

import (
	"errors"
	"strconv"

	"watchtower/internal/dto"
	"watchtower/internal/httpx"
	"watchtower/internal/inventory"

	"github.com/gin-gonic/gin"
)

// ListRequest represents list nodes query
type ListRequest struct {
	ClusterID *int `form:"cluster_id" binding:"omitempty,min=1"`
}

// Handler handles nodes API
type Handler struct {
	service *inventory.Service
}

// NewHandler creates a new nodes handler
func NewHandler(service *inventory.Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/nodes
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrQuery(err))
		return
	}

	nodes, err := h.service.ListNodes(c.Request.Context(), inventory.NodeFilter{ClusterID: req.ClusterID})
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError(err))
		return
	}

	httpx.OK(c, dto.NewNodeDTOs(nodes))
}

// Create handles POST /api/nodes
func (h *Handler) Create(c *gin.Context) {
	var req dto.NodeCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrBinding(err))
		return
	}

	node := req.ToModel()
	if err := h.service.CreateNode(c.Request.Context(), &node); err != nil {
		fail(c, err)
		return
	}

	httpx.Created(c, dto.NewNodeDTO(&node))
}

// Get handles GET /api/nodes/:node_id
func (h *Handler) Get(c *gin.Context) {
	id, ok := nodeID(c)
	if !ok {
		return
	}

	node, err := h.service.GetNode(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	httpx.OK(c, dto.NewNodeDTO(node))
}

// Update handles PUT /api/nodes/:node_id
func (h *Handler) Update(c *gin.Context) {
	id, ok := nodeID(c)
	if !ok {
		return
	}

	var req dto.NodeUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrBinding(err))
		return
	}

	node, err := h.service.UpdateNode(c.Request.Context(), id, req.Changes())
	if err != nil {
		fail(c, err)
		return
	}

	httpx.OK(c, dto.NewNodeDTO(node))
}

// Delete handles DELETE /api/nodes/:node_id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := nodeID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteNode(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	httpx.OKMsg(c, "Node deleted successfully")
}

func nodeID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("node_id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrPathParam("node_id", "value is not a valid integer"))
		return 0, false
	}
	return id, true
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, inventory.ErrNodeNotFound):
		httpx.FailErr(c, httpx.ErrNotFound("Node not found"))
	case errors.Is(err, inventory.ErrClusterNotFound):
		httpx.FailErr(c, httpx.ErrNotFound("Cluster not found"))
	default:
		httpx.FailErr(c, httpx.ErrDatabaseError(err))
	}
}
