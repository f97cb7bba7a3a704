package project

import (
	"github.com/timberbase/timberbase/internal/project/repository"
	"github.com/timberbase/timberbase/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
