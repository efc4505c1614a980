package domain

import "time"

// IncidentStatus represents the current status of an incident.
type IncidentStatus string

// Incident statuses.
const (
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusIdentified    IncidentStatus = "identified"
	IncidentStatusMonitoring    IncidentStatus = "monitoring"
	IncidentStatusResolved      IncidentStatus = "resolved"
	IncidentStatusPostmortem    IncidentStatus = "postmortem"
)

// IsValid checks if the incident status is valid.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusInvestigating, IncidentStatusIdentified,
		IncidentStatusMonitoring, IncidentStatusResolved,
		IncidentStatusPostmortem:
		return true
	}
	return false
}

// IsClosed reports whether the status represents a closed incident.
// Closed incidents never contribute to component status projection.
func (s IncidentStatus) IsClosed() bool {
	return s == IncidentStatusResolved || s == IncidentStatusPostmortem
}

// IncidentImpact represents the impact level of an incident.
type IncidentImpact string

// Impact levels.
const (
	ImpactNone     IncidentImpact = "none"
	ImpactMinor    IncidentImpact = "minor"
	ImpactMajor    IncidentImpact = "major"
	ImpactCritical IncidentImpact = "critical"
)

// IsValid checks if the impact is valid.
func (i IncidentImpact) IsValid() bool {
	return i == ImpactNone || i == ImpactMinor || i == ImpactMajor || i == ImpactCritical
}

// Incident represents an incident together with its affected component
// snapshots and its append-mostly update log.
type Incident struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Status          IncidentStatus      `json:"status"`
	Impact          IncidentImpact      `json:"impact"`
	Components      []ComponentSnapshot `json:"components"`
	ComponentIDs    []string            `json:"component_ids"`
	IncidentUpdates []IncidentUpdate    `json:"incident_updates"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// IsOpen reports whether the incident contributes to projection.
func (i *Incident) IsOpen() bool {
	return !i.Status.IsClosed()
}

// IncidentUpdate is a single entry in an incident's update log.
// Entries are append-only except that Body and DisplayAt may be edited
// in place; Status and CreatedAt are immutable once written.
type IncidentUpdate struct {
	ID        string         `json:"id"`
	Status    IncidentStatus `json:"status"`
	Body      string         `json:"body"`
	DisplayAt time.Time      `json:"display_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
