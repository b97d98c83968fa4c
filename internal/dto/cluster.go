package dto

import (
	"time"

	"watchtower/internal/model"
)

// ClusterCreate is the payload of POST /api/clusters
type ClusterCreate struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
}

// ToModel builds a new cluster row from the payload
func (r ClusterCreate) ToModel() model.Cluster {
	return model.Cluster{
		Name:        r.Name,
		Description: r.Description,
	}
}

// ClusterDTO represents a cluster in API responses
type ClusterDTO struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Nodes       []NodeDTO `json:"nodes"`
}

// NewClusterDTO converts a cluster and its loaded nodes
func NewClusterDTO(c *model.Cluster) ClusterDTO {
	return ClusterDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Nodes:       NewNodeDTOs(c.Nodes),
	}
}

// NewClusterDTOs converts a list of clusters
func NewClusterDTOs(clusters []model.Cluster) []ClusterDTO {
	items := make([]ClusterDTO, len(clusters))
	for i := range clusters {
		items[i] = NewClusterDTO(&clusters[i])
	}
	return items
}
