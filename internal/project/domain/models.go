// Package domain contains the woodworking project model. Project mutations
// run behind the premium gate; reads never do.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("project_not_found")

type ProjectStatus string

const (
	StatusDraft      ProjectStatus = "draft"
	StatusInProgress ProjectStatus = "in_progress"
	StatusDelivered  ProjectStatus = "delivered"
)

// Project is one commissioned piece of work for a client.
type Project struct {
	ID         snowflake.ID  `gorm:"primaryKey"`
	CompanyID  snowflake.ID  `gorm:"not null;index"`
	Name       string        `gorm:"type:text;not null"`
	ClientName *string       `gorm:"type:text"`
	Status     ProjectStatus `gorm:"type:text;not null;default:draft"`
	Notes      *string       `gorm:"type:text"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, project *Project) error
	Update(ctx context.Context, db *gorm.DB, project *Project) error
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Project, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]Project, error)
}
