// Package lastlink adapts Lastlink checkout webhooks into the internal
// provider-agnostic event shape.
package lastlink

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	paymentdomain "github.com/timberbase/timberbase/internal/payment/domain"
)

// HeaderToken carries the shared secret configured on the Lastlink side.
const HeaderToken = "X-Lastlink-Token"

type Adapter struct {
	token string
}

func NewAdapter(token string) *Adapter {
	return &Adapter{token: strings.TrimSpace(token)}
}

// Verify checks the shared-secret token header. A missing or wrong token is
// terminal for the delivery; retries indicate misconfiguration, not transport
// trouble.
func (a *Adapter) Verify(ctx context.Context, headers http.Header) error {
	if a.token == "" {
		return paymentdomain.ErrInvalidToken
	}
	got := strings.TrimSpace(headers.Get(HeaderToken))
	if got == "" || !hmac.Equal([]byte(got), []byte(a.token)) {
		return paymentdomain.ErrInvalidToken
	}
	return nil
}

type rawEvent struct {
	ID        string   `json:"Id"`
	Event     *string  `json:"Event"`
	CreatedAt string   `json:"CreatedAt"`
	Data      *rawData `json:"Data"`
}

type rawData struct {
	Buyer         rawBuyer          `json:"Buyer"`
	Subscriptions []rawSubscription `json:"Subscriptions"`
	Offer         rawOffer          `json:"Offer"`
	Products      []rawProduct      `json:"Products"`
}

type rawBuyer struct {
	ID    string `json:"Id"`
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

type rawSubscription struct {
	ID          string `json:"Id"`
	ProductID   string `json:"ProductId"`
	ExpiredDate string `json:"ExpiredDate"`
}

type rawOffer struct {
	ID  string `json:"Id"`
	URL string `json:"Url"`
}

type rawProduct struct {
	ID string `json:"Id"`
}

// offerPathPattern extracts the product code from a checkout offer URL,
// e.g. https://lastlink.com/p/ABC123/checkout-buy.
var offerPathPattern = regexp.MustCompile(`/p/([A-Z0-9]+)`)

// Parse maps a raw webhook body into a MappedEvent. Lastlink delivers either
// a single event object or an array wrapping one; the first element wins.
func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.MappedEvent, error) {
	event, err := decode(payload)
	if err != nil {
		return nil, err
	}
	if event.Event == nil || strings.TrimSpace(*event.Event) == "" || event.Data == nil {
		return nil, paymentdomain.ErrMalformedPayload
	}

	rawType := strings.TrimSpace(*event.Event)
	mapped := &paymentdomain.MappedEvent{
		ProviderEventID: strings.TrimSpace(event.ID),
		RawType:         rawType,
		Kind:            mapKind(rawType),
		BuyerEmail:      strings.TrimSpace(event.Data.Buyer.Email),
	}

	if len(event.Data.Subscriptions) > 0 {
		first := event.Data.Subscriptions[0]
		mapped.SubscriptionID = strings.TrimSpace(first.ID)
		mapped.ProductID = strings.TrimSpace(first.ProductID)
		mapped.PeriodEnd = parseExpiredDate(first.ExpiredDate)
	}
	if mapped.ProductID == "" {
		if m := offerPathPattern.FindStringSubmatch(event.Data.Offer.URL); m != nil {
			mapped.ProductID = m[1]
		}
	}

	return mapped, nil
}

func decode(payload []byte) (*rawEvent, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return nil, paymentdomain.ErrMalformedPayload
	}

	if strings.HasPrefix(trimmed, "[") {
		var events []rawEvent
		if err := json.Unmarshal(payload, &events); err != nil || len(events) == 0 {
			return nil, paymentdomain.ErrMalformedPayload
		}
		return &events[0], nil
	}

	var event rawEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrMalformedPayload
	}
	return &event, nil
}

// mapKind is the fixed event-type table. Comparison is case-insensitive with
// `-` and `_` treated as the same separator, so "order-confirmed" and
// "Purchase_Order_Confirmed" land in the same bucket.
func mapKind(rawType string) paymentdomain.EventKind {
	switch canonical(rawType) {
	case "purchase_order_confirmed", "order_confirmed",
		"recurrent_payment_succeeded", "recurring_payment_succeeded":
		return paymentdomain.KindActivation
	case "payment_request_expired", "purchase_request_expired":
		return paymentdomain.KindPaymentFailed
	case "subscription_canceled":
		return paymentdomain.KindCanceled
	case "subscription_expired":
		return paymentdomain.KindExpired
	default:
		return paymentdomain.KindUnknown
	}
}

func canonical(rawType string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(rawType)), "-", "_")
}

func parseExpiredDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			parsed = parsed.UTC()
			return &parsed
		}
	}
	return nil
}
