// Package resolver decides which company a webhook event belongs to. The
// precedence is fixed: an existing subscription link is authoritative even if
// the buyer email has since changed; email is only the bootstrap fallback for
// first activations. Ambiguity is failure, never a guess.
package resolver

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/timberbase/timberbase/internal/company/domain"
	paymentdomain "github.com/timberbase/timberbase/internal/payment/domain"
	subscriptiondomain "github.com/timberbase/timberbase/internal/subscription/domain"
	"gorm.io/gorm"
)

// LinkFinder is the slice of the subscription repository the resolver needs.
type LinkFinder interface {
	FindBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID string) (*subscriptiondomain.SubscriptionLink, error)
}

// CompanyFinder is the slice of the company repository the resolver needs.
type CompanyFinder interface {
	FindByBillingEmail(ctx context.Context, db *gorm.DB, email string) (*companydomain.Company, error)
}

type Resolver struct {
	links     LinkFinder
	companies CompanyFinder
}

func New(links LinkFinder, companies CompanyFinder) *Resolver {
	return &Resolver{links: links, companies: companies}
}

// Resolve returns the company id an event belongs to, or ErrUnresolvedTenant.
func (r *Resolver) Resolve(ctx context.Context, db *gorm.DB, event *paymentdomain.MappedEvent) (snowflake.ID, error) {
	if event == nil {
		return 0, paymentdomain.ErrUnresolvedTenant
	}

	if event.SubscriptionID != "" {
		link, err := r.links.FindBySubscriptionID(ctx, db, event.SubscriptionID)
		if err == nil {
			return link.CompanyID, nil
		}
		if !errors.Is(err, subscriptiondomain.ErrLinkNotFound) {
			return 0, err
		}
	}

	if event.BuyerEmail != "" {
		company, err := r.companies.FindByBillingEmail(ctx, db, event.BuyerEmail)
		if err == nil {
			return company.ID, nil
		}
		if !errors.Is(err, companydomain.ErrNotFound) {
			return 0, err
		}
	}

	return 0, paymentdomain.ErrUnresolvedTenant
}
