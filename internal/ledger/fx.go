package ledger

import (
	"github.com/timberbase/timberbase/internal/ledger/repository"
	"github.com/timberbase/timberbase/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
