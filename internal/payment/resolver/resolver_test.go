package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	companydomain "github.com/timberbase/timberbase/internal/company/domain"
	paymentdomain "github.com/timberbase/timberbase/internal/payment/domain"
	subscriptiondomain "github.com/timberbase/timberbase/internal/subscription/domain"
	"gorm.io/gorm"
)

type fakeLinks struct {
	links map[string]snowflake.ID
	err   error
}

func (f *fakeLinks) FindBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID string) (*subscriptiondomain.SubscriptionLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	if companyID, ok := f.links[subscriptionID]; ok {
		return &subscriptiondomain.SubscriptionLink{SubscriptionID: subscriptionID, CompanyID: companyID}, nil
	}
	return nil, subscriptiondomain.ErrLinkNotFound
}

type fakeCompanies struct {
	byEmail map[string]snowflake.ID
	err     error
}

func (f *fakeCompanies) FindByBillingEmail(ctx context.Context, db *gorm.DB, email string) (*companydomain.Company, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id, ok := f.byEmail[email]; ok {
		return &companydomain.Company{ID: id, BillingEmail: email}, nil
	}
	return nil, companydomain.ErrNotFound
}

func TestResolvePrefersLinkOverEmail(t *testing.T) {
	companyA := snowflake.ID(1001)
	companyB := snowflake.ID(2002)

	r := New(
		&fakeLinks{links: map[string]snowflake.ID{"S1": companyA}},
		&fakeCompanies{byEmail: map[string]snowflake.ID{"b@x.com": companyB}},
	)

	// the link targets A even though the buyer email belongs to B
	got, err := r.Resolve(context.Background(), nil, &paymentdomain.MappedEvent{
		SubscriptionID: "S1",
		BuyerEmail:     "b@x.com",
	})
	require.NoError(t, err)
	require.Equal(t, companyA, got)
}

func TestResolveEmailFallback(t *testing.T) {
	companyB := snowflake.ID(2002)

	r := New(
		&fakeLinks{links: map[string]snowflake.ID{}},
		&fakeCompanies{byEmail: map[string]snowflake.ID{"b@x.com": companyB}},
	)

	got, err := r.Resolve(context.Background(), nil, &paymentdomain.MappedEvent{
		SubscriptionID: "S-new",
		BuyerEmail:     "b@x.com",
	})
	require.NoError(t, err)
	require.Equal(t, companyB, got)
}

func TestResolveUnresolved(t *testing.T) {
	r := New(&fakeLinks{links: map[string]snowflake.ID{}}, &fakeCompanies{byEmail: map[string]snowflake.ID{}})

	_, err := r.Resolve(context.Background(), nil, &paymentdomain.MappedEvent{
		SubscriptionID: "S-unknown",
		BuyerEmail:     "nobody@x.com",
	})
	require.ErrorIs(t, err, paymentdomain.ErrUnresolvedTenant)

	_, err = r.Resolve(context.Background(), nil, &paymentdomain.MappedEvent{})
	require.ErrorIs(t, err, paymentdomain.ErrUnresolvedTenant)

	_, err = r.Resolve(context.Background(), nil, nil)
	require.ErrorIs(t, err, paymentdomain.ErrUnresolvedTenant)
}

func TestResolvePropagatesStorageErrors(t *testing.T) {
	boom := errors.New("connection reset")

	r := New(&fakeLinks{err: boom}, &fakeCompanies{})
	_, err := r.Resolve(context.Background(), nil, &paymentdomain.MappedEvent{SubscriptionID: "S1"})
	require.ErrorIs(t, err, boom)

	r = New(&fakeLinks{links: map[string]snowflake.ID{}}, &fakeCompanies{err: boom})
	_, err = r.Resolve(context.Background(), nil, &paymentdomain.MappedEvent{SubscriptionID: "S1", BuyerEmail: "a@x.com"})
	require.ErrorIs(t, err, boom)
}
