package clusters

import (
	"errors"
	"strconv"

	"watchtower/internal/dto"
	"watchtower/internal/httpx"
	"watchtower/internal/inventory"

	"github.com/gin-gonic/gin"
)

// Handler handles clusters API
type Handler struct {
	service *inventory.Service
}

// NewHandler creates a new clusters handler
func NewHandler(service *inventory.Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/clusters
func (h *Handler) List(c *gin.Context) {
	clusters, err := h.service.ListClusters(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError(err))
		return
	}

	httpx.OK(c, dto.NewClusterDTOs(clusters))
}

// Create handles POST /api/clusters
func (h *Handler) Create(c *gin.Context) {
	var req dto.ClusterCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrBinding(err))
		return
	}

	cluster := req.ToModel()
	if err := h.service.CreateCluster(c.Request.Context(), &cluster); err != nil {
		fail(c, err)
		return
	}

	httpx.Created(c, dto.NewClusterDTO(&cluster))
}

// Get handles GET /api/clusters/:cluster_id
func (h *Handler) Get(c *gin.Context) {
	id, ok := clusterID(c)
	if !ok {
		return
	}

	cluster, err := h.service.GetCluster(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	httpx.OK(c, dto.NewClusterDTO(cluster))
}

// Delete handles DELETE /api/clusters/:cluster_id. Member nodes go with it.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := clusterID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCluster(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	httpx.OKMsg(c, "Cluster deleted successfully")
}

func clusterID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("cluster_id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrPathParam("cluster_id", "value is not a valid integer"))
		return 0, false
	}
	return id, true
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, inventory.ErrClusterNotFound):
		httpx.FailErr(c, httpx.ErrNotFound("Cluster not found"))
	case errors.Is(err, inventory.ErrClusterNameExists):
		httpx.FailErr(c, httpx.ErrAlreadyExists("Cluster name already exists"))
	default:
		httpx.FailErr(c, httpx.ErrDatabaseError(err))
	}
}
