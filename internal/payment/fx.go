package payment

import (
	companydomain "github.com/timberbase/timberbase/internal/company/domain"
	"github.com/timberbase/timberbase/internal/config"
	"github.com/timberbase/timberbase/internal/payment/lastlink"
	"github.com/timberbase/timberbase/internal/payment/resolver"
	"github.com/timberbase/timberbase/internal/payment/webhook"
	subscriptiondomain "github.com/timberbase/timberbase/internal/subscription/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(func(cfg config.Config) *lastlink.Adapter {
		return lastlink.NewAdapter(cfg.WebhookToken)
	}),
	fx.Provide(func(links subscriptiondomain.Repository, companies companydomain.Repository) *resolver.Resolver {
		return resolver.New(links, companies)
	}),
	fx.Provide(webhook.NewService),
)
