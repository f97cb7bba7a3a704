package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/timberbase/timberbase/internal/clock"
	projectdomain "github.com/timberbase/timberbase/internal/project/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  projectdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  projectdomain.Repository
}

func NewService(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("project.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

type CreateRequest struct {
	Name       string  `json:"name" binding:"required"`
	ClientName *string `json:"client_name"`
	Notes      *string `json:"notes"`
}

type UpdateRequest struct {
	Name       string                      `json:"name" binding:"required"`
	ClientName *string                     `json:"client_name"`
	Status     projectdomain.ProjectStatus `json:"status"`
	Notes      *string                     `json:"notes"`
}

func (s *Service) Create(ctx context.Context, companyID snowflake.ID, req CreateRequest) (*projectdomain.Project, error) {
	now := s.clock.Now()
	project := &projectdomain.Project{
		ID:         s.genID.Generate(),
		CompanyID:  companyID,
		Name:       strings.TrimSpace(req.Name),
		ClientName: req.ClientName,
		Status:     projectdomain.StatusDraft,
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Service) Update(ctx context.Context, companyID, id snowflake.ID, req UpdateRequest) (*projectdomain.Project, error) {
	project, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return nil, err
	}

	project.Name = strings.TrimSpace(req.Name)
	project.ClientName = req.ClientName
	if req.Status != "" {
		project.Status = req.Status
	}
	project.Notes = req.Notes
	project.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Service) Delete(ctx context.Context, companyID, id snowflake.ID) error {
	if _, err := s.repo.FindByID(ctx, s.db, companyID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, companyID, id)
}

func (s *Service) Get(ctx context.Context, companyID, id snowflake.ID) (*projectdomain.Project, error) {
	return s.repo.FindByID(ctx, s.db, companyID, id)
}

func (s *Service) List(ctx context.Context, companyID snowflake.ID) ([]projectdomain.Project, error) {
	return s.repo.List(ctx, s.db, companyID)
}
