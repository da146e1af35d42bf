package models

import (
	"time"
)

type IssueStatus string
type IssueCategory string

const (
	StatusPending    IssueStatus = "Pending"
	StatusInProgress IssueStatus = "In Progress"
	StatusResolved   IssueStatus = "Resolved"
)

const (
	CategoryRoad          IssueCategory = "Road"
	CategoryWater         IssueCategory = "Water"
	CategoryGarbage       IssueCategory = "Garbage"
	CategoryElectricity   IssueCategory = "Electricity"
	CategoryManholes      IssueCategory = "Manholes"
	CategoryWaterShortage IssueCategory = "Water Shortage"
	CategoryStreetLights  IssueCategory = "Street Lights"
	CategoryOther         IssueCategory = "Other"
)

// Issue is one reported civic problem. Upvotes only ever grow through the
// API; status may be overwritten with any of the three values at any time.
type Issue struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	UserID      uint          `json:"userId" gorm:"not null"`
	Reporter    User          `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	UserName    string        `json:"userName" gorm:"-"`
	Title       string        `json:"title" gorm:"not null"`
	Description string        `json:"description" gorm:"type:text;not null"`
	Category    IssueCategory `json:"category" gorm:"not null"`
	Status      IssueStatus   `json:"status" gorm:"not null;default:'Pending'"`
	Location    string        `json:"location" gorm:"not null"`
	Latitude    *float64      `json:"latitude,omitempty" gorm:"type:decimal(9,6)"`
	Longitude   *float64      `json:"longitude,omitempty" gorm:"type:decimal(9,6)"`
	ImageURL    *string       `json:"imageUrl,omitempty"`
	Upvotes     int           `json:"upvotes" gorm:"not null;default:0"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (Issue) TableName() string {
	return "issues"
}

// ValidCategory reports whether c is one of the fixed reporting categories.
func ValidCategory(c IssueCategory) bool {
	switch c {
	case CategoryRoad, CategoryWater, CategoryGarbage, CategoryElectricity,
		CategoryManholes, CategoryWaterShortage, CategoryStreetLights, CategoryOther:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the three lifecycle states.
func ValidStatus(s IssueStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}
