package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/polkiloo/heartframe/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newStripeTestProvider(t *testing.T, handler http.HandlerFunc) *StripeProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	backends := &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	return NewStripeProvider("sk_test_123", "whsec_test", backends, testLogger())
}

func TestStripeProviderCreateCheckoutSession(t *testing.T) {
	var (
		mu   sync.Mutex
		form url.Values
		path string
	)
	provider := newStripeTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		path = r.URL.Path
		_ = r.ParseForm()
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	})

	details, _ := model.LookupPlan(model.PricePlanPlus)
	session, err := provider.CreateCheckoutSession(context.Background(), CheckoutRequest{
		OrderToken: "tok",
		Plan:       model.PricePlanPlus,
		Details:    details,
		SuccessURL: "https://heartframe.example/complete?token=tok",
		CancelURL:  "https://heartframe.example/preview?token=tok",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ID != "cs_test_1" || session.URL != "https://checkout.stripe.com/c/pay/cs_test_1" {
		t.Fatalf("unexpected session %+v", session)
	}

	mu.Lock()
	defer mu.Unlock()
	if path != "/v1/checkout/sessions" {
		t.Fatalf("unexpected path %q", path)
	}
	expect := map[string]string{
		"mode":                                          "payment",
		"success_url":                                   "https://heartframe.example/complete?token=tok",
		"cancel_url":                                    "https://heartframe.example/preview?token=tok",
		"metadata[order_token]":                         "tok",
		"metadata[plan]":                                "plus",
		"line_items[0][quantity]":                       "1",
		"line_items[0][price_data][currency]":           "krw",
		"line_items[0][price_data][unit_amount]":        "14900",
		"line_items[0][price_data][product_data][name]": "HeartFrame Plus",
	}
	for key, want := range expect {
		if got := form.Get(key); got != want {
			t.Errorf("expected %s=%q, got %q", key, want, got)
		}
	}
}

func TestStripeProviderCreateCheckoutSessionError(t *testing.T) {
	provider := newStripeTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad"}}`))
	})

	if _, err := provider.CreateCheckoutSession(context.Background(), CheckoutRequest{OrderToken: "tok"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestStripeProviderParseWebhook(t *testing.T) {
	provider := NewStripeProvider("sk_test_123", "whsec_test", nil, testLogger())

	cases := []struct {
		name      string
		payload   string
		wantType  EventType
		wantToken string
	}{
		{
			name:      "completed",
			payload:   `{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","object":"checkout.session","metadata":{"order_token":"tok","plan":"basic"}}}}`,
			wantType:  EventCheckoutCompleted,
			wantToken: "tok",
		},
		{
			name:      "async failed",
			payload:   `{"id":"evt_2","object":"event","type":"checkout.session.async_payment_failed","data":{"object":{"id":"cs_2","object":"checkout.session","metadata":{"order_token":"tok2"}}}}`,
			wantType:  EventAsyncPaymentFailed,
			wantToken: "tok2",
		},
		{
			name:     "ignored type",
			payload:  `{"id":"evt_3","object":"event","type":"charge.succeeded","data":{"object":{"id":"ch_1","object":"charge"}}}`,
			wantType: EventType("charge.succeeded"),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
				Payload: []byte(tc.payload),
				Secret:  "whsec_test",
			})
			event, err := provider.ParseWebhook(signed.Payload, signed.Header)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if event.Type != tc.wantType || event.OrderToken != tc.wantToken {
				t.Fatalf("unexpected event %+v", event)
			}
		})
	}
}

func TestStripeProviderRejectsInvalidSignature(t *testing.T) {
	provider := NewStripeProvider("sk_test_123", "whsec_test", nil, testLogger())
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: "whsec_other"})
	if _, err := provider.ParseWebhook(payload, signed.Header); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if _, err := provider.ParseWebhook(payload, ""); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for missing header, got %v", err)
	}
}
