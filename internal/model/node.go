package model

import "time"

// DefaultSSHPort is used when a node is created without an explicit port
const DefaultSSHPort = 22

// Node represents a single managed machine with SSH and health metadata
type Node struct {
	BaseModel
	Name      string  `gorm:"type:varchar(255);index;not null" json:"name"`
	IPAddress *string `gorm:"column:ip_address;type:varchar(64);index" json:"ip_address"`
	Hostname  *string `gorm:"type:varchar(255);index" json:"hostname"`

	// SSH connectivity
	SSHReachable bool    `gorm:"column:ssh_reachable;not null;default:false" json:"ssh_reachable"`
	SSHPort      int     `gorm:"column:ssh_port;not null;default:22" json:"ssh_port"`
	SSHUsername  *string `gorm:"column:ssh_username;type:varchar(255)" json:"ssh_username"`
	SSHKeyPath   *string `gorm:"column:ssh_key_path;type:varchar(1024)" json:"ssh_key_path"`

	// Health status. PassingUnitTests carries no store default: gorm would
	// skip an explicit false on insert.
	IsAlive          bool       `gorm:"not null;default:false" json:"is_alive"`
	PassingUnitTests bool       `gorm:"not null" json:"passing_unit_tests"`
	LastHealthCheck  *time.Time `json:"last_health_check"`

	// Additional attributes
	OperatingSystem *string `gorm:"type:varchar(255)" json:"operating_system"`
	CPUInfo         *string `gorm:"column:cpu_info;type:varchar(255)" json:"cpu_info"`
	MemoryInfo      *string `gorm:"type:varchar(255)" json:"memory_info"`
	DiskInfo        *string `gorm:"type:varchar(255)" json:"disk_info"`
	Notes           *string `gorm:"type:text" json:"notes"`

	ClusterID int `gorm:"not null;index" json:"cluster_id"`
}

// TableName specifies the table name for Node model
func (Node) TableName() string {
	return "nodes"
}

// NewNode returns a node carrying the column defaults
func NewNode(name string, clusterID int) Node {
	return Node{
		Name:             name,
		SSHPort:          DefaultSSHPort,
		PassingUnitTests: true,
		ClusterID:        clusterID,
	}
}
