package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	projectdomain "github.com/timberbase/timberbase/internal/project/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() projectdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, project *projectdomain.Project) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO projects (
			id, company_id, name, client_name, status, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.CompanyID,
		project.Name,
		project.ClientName,
		project.Status,
		project.Notes,
		project.CreatedAt,
		project.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, project *projectdomain.Project) error {
	return db.WithContext(ctx).Exec(
		`UPDATE projects
		 SET name = ?, client_name = ?, status = ?, notes = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		project.Name,
		project.ClientName,
		project.Status,
		project.Notes,
		project.UpdatedAt,
		project.CompanyID,
		project.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM projects WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*projectdomain.Project, error) {
	var project projectdomain.Project
	err := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, projectdomain.ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]projectdomain.Project, error) {
	var projects []projectdomain.Project
	err := db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}
