package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Issue struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Key         string     `gorm:"uniqueIndex;not null;size:50" json:"key"`
	Title       string     `gorm:"not null;size:255" json:"title"`
	Description *string    `json:"description,omitempty"`
	Type        IssueType  `gorm:"not null;size:20;check:chk_issues_type,type IN ('TASK','BUG','SUBTASK')" json:"type"`
	Priority    Priority   `gorm:"not null;size:20;check:chk_issues_priority,priority IN ('LOWEST','LOW','MEDIUM','HIGH','HIGHEST')" json:"priority"`
	Status      Status     `gorm:"not null;size:20;index;check:chk_issues_status,status IN ('TODO','IN_PROGRESS','IN_REVIEW','DONE')" json:"status"`
	AssigneeID  *uuid.UUID `gorm:"type:uuid;index" json:"assignee_id,omitempty"`
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Project  *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Assignee *User    `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Labels   []Label  `gorm:"many2many:issue_labels;constraint:OnDelete:CASCADE" json:"labels"`
}

func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// LabelIDs returns the ids of the issue's labels in their current order.
func (i *Issue) LabelIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(i.Labels))
	for n, l := range i.Labels {
		ids[n] = l.ID
	}
	return ids
}
