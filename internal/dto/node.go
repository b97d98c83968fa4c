package dto

import (
	"time"

	"watchtower/internal/model"
)

// NodeCreate is the payload of POST /api/nodes
type NodeCreate struct {
	Name             string     `json:"name" binding:"required,max=255"`
	IPAddress        *string    `json:"ip_address" binding:"omitempty,ip"`
	Hostname         *string    `json:"hostname" binding:"omitempty,max=255"`
	SSHReachable     *bool      `json:"ssh_reachable"`
	SSHPort          *int       `json:"ssh_port" binding:"omitempty,min=1,max=65535"`
	SSHUsername      *string    `json:"ssh_username" binding:"omitempty,max=255"`
	SSHKeyPath       *string    `json:"ssh_key_path" binding:"omitempty,max=1024"`
	IsAlive          *bool      `json:"is_alive"`
	PassingUnitTests *bool      `json:"passing_unit_tests"`
	LastHealthCheck  *time.Time `json:"last_health_check"`
	OperatingSystem  *string    `json:"operating_system" binding:"omitempty,max=255"`
	CPUInfo          *string    `json:"cpu_info" binding:"omitempty,max=255"`
	MemoryInfo       *string    `json:"memory_info" binding:"omitempty,max=255"`
	DiskInfo         *string    `json:"disk_info" binding:"omitempty,max=255"`
	Notes            *string    `json:"notes"`
	ClusterID        int        `json:"cluster_id" binding:"required,min=1"`
}

// ToModel builds a new node row, filling defaults for omitted fields
func (r NodeCreate) ToModel() model.Node {
	node := model.NewNode(r.Name, r.ClusterID)
	node.IPAddress = r.IPAddress
	node.Hostname = r.Hostname
	node.SSHUsername = r.SSHUsername
	node.SSHKeyPath = r.SSHKeyPath
	node.LastHealthCheck = r.LastHealthCheck
	node.OperatingSystem = r.OperatingSystem
	node.CPUInfo = r.CPUInfo
	node.MemoryInfo = r.MemoryInfo
	node.DiskInfo = r.DiskInfo
	node.Notes = r.Notes

	if r.SSHReachable != nil {
		node.SSHReachable = *r.SSHReachable
	}
	if r.SSHPort != nil {
		node.SSHPort = *r.SSHPort
	}
	if r.IsAlive != nil {
		node.IsAlive = *r.IsAlive
	}
	if r.PassingUnitTests != nil {
		node.PassingUnitTests = *r.PassingUnitTests
	}

	return node
}

// NodeUpdate is the payload of PUT /api/nodes/{node_id}. Only fields
// present in the body are applied.
type NodeUpdate struct {
	Name             Optional[string]    `json:"name" binding:"omitempty,min=1,max=255"`
	IPAddress        Nullable[string]    `json:"ip_address" binding:"omitempty,ip"`
	Hostname         Nullable[string]    `json:"hostname" binding:"omitempty,max=255"`
	SSHReachable     Optional[bool]      `json:"ssh_reachable"`
	SSHPort          Optional[int]       `json:"ssh_port" binding:"omitempty,min=1,max=65535"`
	SSHUsername      Nullable[string]    `json:"ssh_username" binding:"omitempty,max=255"`
	SSHKeyPath       Nullable[string]    `json:"ssh_key_path" binding:"omitempty,max=1024"`
	IsAlive          Optional[bool]      `json:"is_alive"`
	PassingUnitTests Optional[bool]      `json:"passing_unit_tests"`
	LastHealthCheck  Nullable[time.Time] `json:"last_health_check"`
	OperatingSystem  Nullable[string]    `json:"operating_system" binding:"omitempty,max=255"`
	CPUInfo          Nullable[string]    `json:"cpu_info" binding:"omitempty,max=255"`
	MemoryInfo       Nullable[string]    `json:"memory_info" binding:"omitempty,max=255"`
	DiskInfo         Nullable[string]    `json:"disk_info" binding:"omitempty,max=255"`
	Notes            Nullable[string]    `json:"notes"`
	ClusterID        Optional[int]       `json:"cluster_id" binding:"omitempty,min=1"`
}

// Changes returns the column assignments for the fields present in the
// request, keyed by column name.
func (r NodeUpdate) Changes() map[string]interface{} {
	changes := make(map[string]interface{})

	setOptional(changes, "name", r.Name)
	setNullable(changes, "ip_address", r.IPAddress)
	setNullable(changes, "hostname", r.Hostname)
	setOptional(changes, "ssh_reachable", r.SSHReachable)
	setOptional(changes, "ssh_port", r.SSHPort)
	setNullable(changes, "ssh_username", r.SSHUsername)
	setNullable(changes, "ssh_key_path", r.SSHKeyPath)
	setOptional(changes, "is_alive", r.IsAlive)
	setOptional(changes, "passing_unit_tests", r.PassingUnitTests)
	setNullable(changes, "last_health_check", r.LastHealthCheck)
	setNullable(changes, "operating_system", r.OperatingSystem)
	setNullable(changes, "cpu_info", r.CPUInfo)
	setNullable(changes, "memory_info", r.MemoryInfo)
	setNullable(changes, "disk_info", r.DiskInfo)
	setNullable(changes, "notes", r.Notes)
	setOptional(changes, "cluster_id", r.ClusterID)

	return changes
}

func setOptional[T any](changes map[string]interface{}, column string, o Optional[T]) {
	if o.Set {
		changes[column] = o.Value
	}
}

func setNullable[T any](changes map[string]interface{}, column string, n Nullable[T]) {
	if n.Set {
		// a typed nil pointer is written as NULL
		changes[column] = n.Ptr()
	}
}

// NodeDTO represents a node in API responses
type NodeDTO struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	IPAddress        *string    `json:"ip_address"`
	Hostname         *string    `json:"hostname"`
	SSHReachable     bool       `json:"ssh_reachable"`
	SSHPort          int        `json:"ssh_port"`
	SSHUsername      *string    `json:"ssh_username"`
	SSHKeyPath       *string    `json:"ssh_key_path"`
	IsAlive          bool       `json:"is_alive"`
	PassingUnitTests bool       `json:"passing_unit_tests"`
	LastHealthCheck  *time.Time `json:"last_health_check"`
	OperatingSystem  *string    `json:"operating_system"`
	CPUInfo          *string    `json:"cpu_info"`
	MemoryInfo       *string    `json:"memory_info"`
	DiskInfo         *string    `json:"disk_info"`
	Notes            *string    `json:"notes"`
	ClusterID        int        `json:"cluster_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewNodeDTO converts a node row
func NewNodeDTO(n *model.Node) NodeDTO {
	return NodeDTO{
		ID:               n.ID,
		Name:             n.Name,
		IPAddress:        n.IPAddress,
		Hostname:         n.Hostname,
		SSHReachable:     n.SSHReachable,
		SSHPort:          n.SSHPort,
		SSHUsername:      n.SSHUsername,
		SSHKeyPath:       n.SSHKeyPath,
		IsAlive:          n.IsAlive,
		PassingUnitTests: n.PassingUnitTests,
		LastHealthCheck:  n.LastHealthCheck,
		OperatingSystem:  n.OperatingSystem,
		CPUInfo:          n.CPUInfo,
		MemoryInfo:       n.MemoryInfo,
		DiskInfo:         n.DiskInfo,
		Notes:            n.Notes,
		ClusterID:        n.ClusterID,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
	}
}

// NewNodeDTOs converts a list of nodes; the result is never nil
func NewNodeDTOs(nodes []model.Node) []NodeDTO {
	items := make([]NodeDTO, len(nodes))
	for i := range nodes {
		items[i] = NewNodeDTO(&nodes[i])
	}
	return items
}

// MessageDTO is the body of delete confirmations
type MessageDTO struct {
	Message string `json:"message"`
}
