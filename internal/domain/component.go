package domain

import "time"

// ComponentStatus represents the operational status of a component.
type ComponentStatus string

// Component statuses.
const (
	ComponentStatusOperational ComponentStatus = "operational"
	ComponentStatusDegraded    ComponentStatus = "degraded_performance"
	ComponentStatusPartial     ComponentStatus = "partial_outage"
	ComponentStatusMajor       ComponentStatus = "major_outage"
	ComponentStatusMaintenance ComponentStatus = "under_maintenance"
)

// IsValid checks if the component status is valid.
func (s ComponentStatus) IsValid() bool {
	switch s {
	case ComponentStatusOperational, ComponentStatusDegraded,
		ComponentStatusPartial, ComponentStatusMajor,
		ComponentStatusMaintenance:
		return true
	}
	return false
}

// Component represents a status-page component.
type Component struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Status      ComponentStatus `json:"status"`
	Group       bool            `json:"group,omitempty"`
	GroupID     *string         `json:"group_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ComponentSnapshot is a component as embedded inside an incident record.
// It may drift from the live component until projection re-synchronizes it.
type ComponentSnapshot struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Status ComponentStatus `json:"status"`
}
