package subscription

import (
	"github.com/timberbase/timberbase/internal/subscription/repository"
	"github.com/timberbase/timberbase/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
