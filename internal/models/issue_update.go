package models

import (
	"time"
)

// IssueUpdate is an append-only audit record of a status change. Rows are
// written exactly once and never modified. UpdatedBy is nulled out if the
// updating user is later deleted.
type IssueUpdate struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	IssueID   uint        `json:"issueId" gorm:"not null"`
	Issue     Issue       `json:"-" gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE"`
	UpdatedBy *uint       `json:"updatedBy"`
	Updater   *User       `json:"-" gorm:"foreignKey:UpdatedBy;constraint:OnDelete:SET NULL"`
	Status    IssueStatus `json:"status" gorm:"not null"`
	Message   *string     `json:"message,omitempty" gorm:"type:text"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (IssueUpdate) TableName() string {
	return "issue_updates"
}
