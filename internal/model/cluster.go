package model

// Cluster is a named logical grouping of machines. It owns its nodes.
type Cluster struct {
	BaseModel
	Name        string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`

	// Relations
	Nodes []Node `gorm:"foreignKey:ClusterID;constraint:OnDelete:CASCADE" json:"nodes"`
}

// TableName specifies the table name for Cluster model
func (Cluster) TableName() string {
	return "clusters"
}
