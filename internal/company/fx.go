package company

import (
	"github.com/timberbase/timberbase/internal/company/repository"
	"github.com/timberbase/timberbase/internal/company/service"
	"go.uber.org/fx"
)

var Module = fx.Module("company.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
