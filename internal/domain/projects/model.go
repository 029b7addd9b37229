package projects

import (
	"time"

	"agency-platform/internal/domain/users"
)

const (
	StatusNotStarted = "not_started"
	StatusActive     = "active"
	StatusPaused     = "paused"
	StatusCompleted  = "completed"
)

const (
	StageDiscovery   = "Discovery"
	StageDesign      = "Design"
	StageDevelopment = "Development"
	StageTesting     = "Testing"
	StageLaunch      = "Launch"
)

var Stages = []string{StageDiscovery, StageDesign, StageDevelopment, StageTesting, StageLaunch}

func ValidStage(stage string) bool {
	for _, s := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

type Project struct {
	ID      uint `gorm:"primaryKey"`
	OrderID uint `gorm:"uniqueIndex;not null"`
	UserID  uint `gorm:"index;not null"`
	User    users.User

	Name  string
	Stage string `gorm:"type:varchar(20);not null;default:'Discovery'"`
	Notes string `gorm:"type:text"`

	StartDate     time.Time
	DueDate       time.Time
	Status        string `gorm:"type:varchar(20);not null;default:'not_started'"`
	TimelineWeeks int    `gorm:"not null;default:4"`

	ProgressPercent int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusTransitionAllowed guards user-visible project status changes.
// active and paused flip freely; completed is terminal.
func StatusTransitionAllowed(from, to string) bool {
	switch from {
	case StatusNotStarted:
		return to == StatusActive
	case StatusActive:
		return to == StatusPaused || to == StatusCompleted
	case StatusPaused:
		return to == StatusActive || to == StatusCompleted
	default:
		return false
	}
}
