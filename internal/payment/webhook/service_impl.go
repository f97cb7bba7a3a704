package webhook

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	ledgerdomain "github.com/timberbase/timberbase/internal/ledger/domain"
	obsmetrics "github.com/timberbase/timberbase/internal/observability/metrics"
	paymentdomain "github.com/timberbase/timberbase/internal/payment/domain"
	"github.com/timberbase/timberbase/internal/payment/lastlink"
	"github.com/timberbase/timberbase/internal/payment/resolver"
	subscriptiondomain "github.com/timberbase/timberbase/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	Adapter         *lastlink.Adapter
	Resolver        *resolver.Resolver
	LedgerSvc       ledgerdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	ObsMetrics      *obsmetrics.Metrics `optional:"true"`
}

// Service orchestrates one webhook delivery: verify, normalize, resolve,
// ledger, apply. The ledger write is best-effort; the state transition is not.
type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	adapter         *lastlink.Adapter
	resolver        *resolver.Resolver
	ledgerSvc       ledgerdomain.Service
	subscriptionSvc subscriptiondomain.Service
	obsMetrics      *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("payment.webhook"),
		adapter:         p.Adapter,
		resolver:        p.Resolver,
		ledgerSvc:       p.LedgerSvc,
		subscriptionSvc: p.SubscriptionSvc,
		obsMetrics:      p.ObsMetrics,
	}
}

func (s *Service) IngestWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	if err := s.adapter.Verify(ctx, headers); err != nil {
		s.obsMetrics.RecordWebhookEvent("unverified", "rejected")
		return err
	}

	event, err := s.adapter.Parse(ctx, payload)
	if err != nil {
		// malformed deliveries are rejected without an audit row
		s.obsMetrics.RecordWebhookEvent("malformed", "rejected")
		return err
	}

	// delivery id ties every log line for one delivery together; the
	// provider's own event id repeats across redeliveries
	log := s.log.With(
		zap.String("delivery_id", uuid.NewString()),
		zap.String("provider_event_id", event.ProviderEventID),
		zap.String("event_type", event.RawType),
	)

	companyID, resolveErr := s.resolver.Resolve(ctx, s.db, event)
	if resolveErr != nil && resolveErr != paymentdomain.ErrUnresolvedTenant {
		return resolveErr
	}

	s.recordLedger(ctx, event, companyID, payload)

	if event.Kind == paymentdomain.KindUnknown {
		log.Info("ignoring unknown webhook event type")
		s.obsMetrics.RecordWebhookEvent(string(event.Kind), "ignored")
		return nil
	}

	if event.SubscriptionID == "" {
		s.obsMetrics.RecordWebhookEvent(string(event.Kind), "rejected")
		return paymentdomain.ErrUnresolvedSubscription
	}

	if resolveErr != nil {
		// nothing was mutated, so a provider retry is safe
		log.Warn("webhook event did not resolve to a company",
			zap.String("subscription_id", event.SubscriptionID),
		)
		s.obsMetrics.RecordWebhookEvent(string(event.Kind), "unresolved")
		return paymentdomain.ErrUnresolvedTenant
	}

	if err := s.apply(ctx, companyID, event); err != nil {
		s.obsMetrics.RecordWebhookEvent(string(event.Kind), "failed")
		return err
	}

	s.obsMetrics.RecordWebhookEvent(string(event.Kind), "applied")
	return nil
}

func (s *Service) apply(ctx context.Context, companyID snowflake.ID, event *paymentdomain.MappedEvent) error {
	switch event.Kind {
	case paymentdomain.KindActivation:
		if event.ProductID == "" {
			// audited above; without a product id there is nothing to activate
			s.log.Warn("activation event without a resolvable product id",
				zap.String("subscription_id", event.SubscriptionID),
				zap.String("provider_event_id", event.ProviderEventID),
			)
			return nil
		}
		err := s.subscriptionSvc.Activate(ctx, companyID, subscriptiondomain.Activation{
			SubscriptionID: event.SubscriptionID,
			ProductID:      event.ProductID,
			PeriodEnd:      event.PeriodEnd,
		})
		return wrapPersistence(err)
	case paymentdomain.KindPaymentFailed:
		return wrapPersistence(s.subscriptionSvc.MarkPastDue(ctx, companyID, event.SubscriptionID))
	case paymentdomain.KindCanceled:
		return wrapPersistence(s.subscriptionSvc.Cancel(ctx, companyID, event.SubscriptionID))
	case paymentdomain.KindExpired:
		return wrapPersistence(s.subscriptionSvc.Expire(ctx, companyID, event.SubscriptionID))
	default:
		return nil
	}
}

// recordLedger appends the audit row. Losing an audit row is acceptable;
// losing a state transition is not, so failures are logged and dropped.
func (s *Service) recordLedger(ctx context.Context, event *paymentdomain.MappedEvent, companyID snowflake.ID, payload []byte) {
	entry := ledgerdomain.Entry{
		ProviderEventID: event.ProviderEventID,
		EventType:       event.RawType,
		Payload:         payload,
	}
	if companyID != 0 {
		id := companyID
		entry.CompanyID = &id
	}
	if event.SubscriptionID != "" {
		sid := event.SubscriptionID
		entry.SubscriptionID = &sid
	}

	if err := s.ledgerSvc.Record(ctx, entry); err != nil {
		s.log.Warn("webhook ledger write failed",
			zap.String("provider_event_id", event.ProviderEventID),
			zap.Error(err),
		)
		s.obsMetrics.RecordLedgerFailure()
	}
}

func wrapPersistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", paymentdomain.ErrTransitionPersistence, err)
}
