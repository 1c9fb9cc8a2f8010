package api_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	stripewebhook "github.com/stripe/stripe-go/v79/webhook"

	"github.com/thefiredev-cloud/vortis/modules/api"
	"github.com/thefiredev-cloud/vortis/pkg/metrics"
	"github.com/thefiredev-cloud/vortis/pkg/ratelimit"
	"github.com/thefiredev-cloud/vortis/pkg/webhook"
	"github.com/thefiredev-cloud/vortis/svc/auth"
	"github.com/thefiredev-cloud/vortis/svc/checkout"
	"github.com/thefiredev-cloud/vortis/svc/events"
	"github.com/thefiredev-cloud/vortis/svc/subscription"
)

const stripeSecret = "whsec_stripe_test_secret"

var clerkSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("clerk-test-secret"))

// tokenVerifier accepts "token-<user>" as a session for <user>.
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, token string) (*auth.Claims, error) {
	user, ok := strings.CutPrefix(token, "token-")
	if !ok || user == "" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: user}}, nil
}

type sessionCreator struct{ mock.Mock }

func (m *sessionCreator) CreateSession(ctx context.Context, req checkout.Request) (checkout.Session, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(checkout.Session), args.Error(1)
}

type eventApplier struct{ mock.Mock }

func (m *eventApplier) Apply(ctx context.Context, ev events.Event) (subscription.Result, error) {
	args := m.Called(ctx, ev)
	res, _ := args.Get(0).(subscription.Result)
	return res, args.Error(1)
}

type fixture struct {
	server  *httptest.Server
	store   *subscription.MemoryStore
	metrics *metrics.Metrics
}

type fixtureOption func(*api.Options)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	plans := subscription.DefaultPlans()
	for i := range plans {
		plans[i].PriceID = "price_" + plans[i].ID
	}
	catalog, err := subscription.NewCatalog(context.Background(), subscription.NewInMemSource(plans...))
	require.NoError(t, err)

	ratestore := ratelimit.NewMemoryStore()
	t.Cleanup(func() { _ = ratestore.Close() })
	limiter, err := ratelimit.NewLimiter(ratestore, ratelimit.DefaultRules())
	require.NoError(t, err)

	store := subscription.NewMemoryStore()
	m := metrics.New(metrics.Config{ServiceName: "vortis", Environment: "test"})
	log := slog.New(slog.DiscardHandler)
	accounts := subscription.NewService(store, catalog, subscription.WithLogger(log))

	o := api.Options{
		Config: api.Config{
			ClerkWebhookSecret:  clerkSecret,
			StripeWebhookSecret: stripeSecret,
			WebhookTolerance:    5 * time.Minute,
		},
		Logger:   log,
		Limiter:  limiter,
		Events:   subscription.NewSynchronizer(store, catalog, subscription.WithLogger(log)),
		Verifier: tokenVerifier{},
		Quota:    accounts,
		Account:  accounts,
		Metrics:  m,
	}
	for _, opt := range opts {
		opt(&o)
	}

	srv := httptest.NewServer(api.Router(o))
	t.Cleanup(srv.Close)
	return &fixture{server: srv, store: store, metrics: m}
}

type requestOption func(*http.Request)

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func withToken(user string) requestOption {
	return withHeader("Authorization", "Bearer token-"+user)
}

func (f *fixture) post(t *testing.T, path, contentType string, body []byte, opts ...requestOption) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, f.server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	return f.do(t, req, contentType, opts...)
}

func (f *fixture) get(t *testing.T, path string, opts ...requestOption) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, f.server.URL+path, nil)
	require.NoError(t, err)
	return f.do(t, req, "", opts...)
}

func (f *fixture) do(t *testing.T, req *http.Request, contentType string, opts ...requestOption) (*http.Response, map[string]any) {
	t.Helper()

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func analyzeBody(ticker string) []byte {
	return []byte(fmt.Sprintf(`{"ticker":%q}`, ticker))
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("returns analysis for valid ticker", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		resp, body := f.post(t, "/api/analyze", "application/json", analyzeBody(" aapl "),
			withHeader("X-Forwarded-For", "203.0.113.1"))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "AAPL", data["ticker"])
		assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
	})

	t.Run("rejects invalid ticker", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		resp, body := f.post(t, "/api/analyze", "application/json", analyzeBody("aapl123"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid ticker symbol", body["error"])
	})

	t.Run("rejects missing ticker", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		resp, _ := f.post(t, "/api/analyze", "application/json", []byte(`{}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		resp, body := f.post(t, "/api/analyze", "application/json", []byte(`{"ticker":`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid JSON body", body["error"])
	})

	t.Run("rejects non json content type", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		resp, _ := f.post(t, "/api/analyze", "text/plain", analyzeBody("AAPL"))
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("limits anonymous callers per address", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		for i := range 10 {
			resp, _ := f.post(t, "/api/analyze", "application/json", analyzeBody("MSFT"),
				withHeader("X-Forwarded-For", "198.51.100.7"))
			require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i+1)
		}

		resp, body := f.post(t, "/api/analyze", "application/json", analyzeBody("MSFT"),
			withHeader("X-Forwarded-For", "198.51.100.7"))
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, false, body["success"])
		retry, ok := body["retryAfter"].(float64)
		require.True(t, ok)
		assert.Greater(t, retry, 0.0)
		assert.NotEmpty(t, resp.Header.Get("Retry-After"))

		other, _ := f.post(t, "/api/analyze", "application/json", analyzeBody("MSFT"),
			withHeader("X-Forwarded-For", "198.51.100.8"))
		assert.Equal(t, http.StatusOK, other.StatusCode)
	})

	t.Run("limits signed-in callers by user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		for range 10 {
			resp, _ := f.post(t, "/api/analyze", "application/json", analyzeBody("MSFT"), withToken("user_rl"))
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}
		resp, _ := f.post(t, "/api/analyze", "application/json", analyzeBody("MSFT"), withToken("user_rl"))
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

		anon, _ := f.post(t, "/api/analyze", "application/json", analyzeBody("MSFT"))
		assert.Equal(t, http.StatusOK, anon.StatusCode)
	})

	t.Run("enforces plan quota", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		now := time.Now().UTC()
		require.NoError(t, f.store.UpsertUsage(context.Background(), subscription.Usage{
			UserID:        "user_q",
			PlanName:      subscription.PlanStarter,
			AnalysesUsed:  100,
			AnalysesLimit: 100,
			PeriodStart:   now.Add(-time.Hour),
			PeriodEnd:     now.Add(2 * time.Hour),
		}))

		resp, body := f.post(t, "/api/analyze", "application/json", analyzeBody("AAPL"), withToken("user_q"))
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "Analysis quota exceeded for current plan", body["error"])
		retry, ok := body["retryAfter"].(float64)
		require.True(t, ok)
		assert.InDelta(t, 7200, retry, 60)
	})

	t.Run("counts usage for tracked users", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		now := time.Now().UTC()
		require.NoError(t, f.store.UpsertUsage(context.Background(), subscription.Usage{
			UserID:        "user_u",
			PlanName:      subscription.PlanStarter,
			AnalysesLimit: 100,
			PeriodStart:   now,
			PeriodEnd:     now.Add(subscription.UsagePeriod),
		}))

		resp, _ := f.post(t, "/api/analyze", "application/json", analyzeBody("AAPL"), withToken("user_u"))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		u, err := f.store.GetUsage(context.Background(), "user_u")
		require.NoError(t, err)
		assert.EqualValues(t, 1, u.AnalysesUsed)
	})
}

func TestCheckout(t *testing.T) {
	t.Parallel()

	t.Run("requires a session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		resp, body := f.post(t, "/api/stripe/checkout", "application/json", []byte(`{"planName":"pro"}`))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Unauthorized", body["error"])
	})

	t.Run("rejects unknown plan", func(t *testing.T) {
		t.Parallel()
		creator := &sessionCreator{}
		creator.On("CreateSession", mock.Anything, checkout.Request{UserID: "user_1", PlanName: "gold"}).
			Return(checkout.Session{}, fmt.Errorf("plan gold: %w", checkout.ErrUnknownPlan))
		f := newFixture(t, func(o *api.Options) { o.Checkout = creator })

		resp, body := f.post(t, "/api/stripe/checkout", "application/json", []byte(`{"planName":"gold"}`), withToken("user_1"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid plan", body["error"])
		creator.AssertExpectations(t)
	})

	t.Run("rejects missing plan", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		resp, _ := f.post(t, "/api/stripe/checkout", "application/json", []byte(`{}`), withToken("user_1"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("returns session", func(t *testing.T) {
		t.Parallel()
		creator := &sessionCreator{}
		creator.On("CreateSession", mock.Anything, checkout.Request{UserID: "user_1", Email: "ada@example.com", PlanName: "pro"}).
			Return(checkout.Session{ID: "cs_1", URL: "https://checkout.stripe.com/c/pay/cs_1"}, nil)
		f := newFixture(t, func(o *api.Options) { o.Checkout = creator })

		resp, body := f.post(t, "/api/stripe/checkout", "application/json",
			[]byte(`{"planName":"pro","email":"ada@example.com"}`), withToken("user_1"))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "cs_1", body["sessionId"])
		assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_1", body["url"])
		creator.AssertExpectations(t)
	})

	t.Run("provider failure is internal", func(t *testing.T) {
		t.Parallel()
		creator := &sessionCreator{}
		creator.On("CreateSession", mock.Anything, mock.Anything).
			Return(checkout.Session{}, fmt.Errorf("%w: boom", checkout.ErrProvider))
		f := newFixture(t, func(o *api.Options) { o.Checkout = creator })

		resp, body := f.post(t, "/api/stripe/checkout", "application/json", []byte(`{"planName":"pro"}`), withToken("user_1"))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal server error", body["error"])
	})
}

func stripeEvent(id, typ string, created time.Time, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"created":%d,"data":{"object":%s}}`,
		id, typ, created.Unix(), object))
}

func (f *fixture) postStripe(t *testing.T, payload []byte) (*http.Response, map[string]any) {
	t.Helper()
	signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   payload,
		Secret:    stripeSecret,
		Timestamp: time.Now(),
	})
	return f.post(t, "/api/stripe/webhook", "application/json", payload,
		withHeader(webhook.StripeSignatureHeader, signed.Header))
}

func TestStripeWebhook(t *testing.T) {
	t.Parallel()

	checkoutObject := `{"id":"cs_1","object":"checkout.session","client_reference_id":"user_1",` +
		`"metadata":{"user_id":"user_1","plan_name":"pro"},"customer":"cus_1","subscription":"sub_1"}`

	t.Run("checkout then cancel", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		start := time.Now().Add(-time.Hour)

		resp, body := f.postStripe(t, stripeEvent("evt_1", events.StripeCheckoutSessionCompleted, start, checkoutObject))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["received"])

		sub, err := f.store.GetSubscription(ctx, "sub_1")
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, sub.Status)
		assert.Equal(t, subscription.PlanPro, sub.PlanName)

		usage, err := f.store.GetUsage(ctx, "user_1")
		require.NoError(t, err)
		assert.EqualValues(t, 1000, usage.AnalysesLimit)

		resp, _ = f.postStripe(t, stripeEvent("evt_2", events.StripeSubscriptionDeleted, start.Add(time.Minute),
			`{"id":"sub_1","object":"subscription","status":"canceled","customer":"cus_1"}`))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		sub, err = f.store.GetSubscription(ctx, "sub_1")
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusCanceled, sub.Status)
	})

	t.Run("unhandled event type is acknowledged", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		resp, body := f.postStripe(t, stripeEvent("evt_3", "customer.created", time.Now(), `{"id":"cus_1","object":"customer"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["received"])
	})

	t.Run("missing signature", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		resp, body := f.post(t, "/api/stripe/webhook", "application/json",
			stripeEvent("evt_4", events.StripeSubscriptionDeleted, time.Now(), `{"id":"sub_1","object":"subscription"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Missing webhook signature", body["error"])
	})

	t.Run("invalid signature", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		payload := stripeEvent("evt_5", events.StripeSubscriptionDeleted, time.Now(), `{"id":"sub_1","object":"subscription"}`)
		signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
			Payload:   payload,
			Secret:    "whsec_someone_else",
			Timestamp: time.Now(),
		})
		resp, body := f.post(t, "/api/stripe/webhook", "application/json", payload,
			withHeader(webhook.StripeSignatureHeader, signed.Header))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid webhook signature", body["error"])
	})

	t.Run("malformed event", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		resp, body := f.postStripe(t, stripeEvent("evt_6", events.StripeSubscriptionDeleted, time.Now(), `{"object":"subscription"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Malformed webhook event", body["error"])
	})

	t.Run("store failure is retried by the provider", func(t *testing.T) {
		t.Parallel()
		applier := &eventApplier{}
		applier.On("Apply", mock.Anything, mock.AnythingOfType("events.SubscriptionDeleted")).
			Return(nil, errors.New("connection refused"))
		f := newFixture(t, func(o *api.Options) { o.Events = applier })

		resp, body := f.postStripe(t, stripeEvent("evt_7", events.StripeSubscriptionDeleted, time.Now(),
			`{"id":"sub_1","object":"subscription","status":"canceled"}`))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal server error", body["error"])
		applier.AssertExpectations(t)
	})

	t.Run("missing secret is internal", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, func(o *api.Options) { o.Config.StripeWebhookSecret = "" })

		resp, _ := f.postStripe(t, stripeEvent("evt_8", events.StripeSubscriptionDeleted, time.Now(), `{"id":"sub_1"}`))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func clerkUserCreated(userID string, at time.Time) []byte {
	return []byte(fmt.Sprintf(`{"type":"user.created","object":"event","timestamp":%d,"data":{`+
		`"id":%q,"first_name":"Ada","last_name":"Lovelace","image_url":"https://img.example.com/ada.png",`+
		`"primary_email_address_id":"idn_1","email_addresses":[{"id":"idn_1","email_address":"ada@example.com"}]}}`,
		at.UnixMilli(), userID))
}

func (f *fixture) postClerk(t *testing.T, secret, id string, at time.Time, payload []byte, opts ...requestOption) (*http.Response, map[string]any) {
	t.Helper()
	sig, err := webhook.Sign(secret, id, at.Unix(), payload)
	require.NoError(t, err)
	opts = append([]requestOption{
		withHeader(webhook.HeaderID, id),
		withHeader(webhook.HeaderTimestamp, strconv.FormatInt(at.Unix(), 10)),
		withHeader(webhook.HeaderSignature, sig),
	}, opts...)
	return f.post(t, "/api/webhooks/clerk", "application/json", payload, opts...)
}

func TestClerkWebhook(t *testing.T) {
	t.Parallel()

	t.Run("creates profile", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		now := time.Now()

		resp, body := f.postClerk(t, clerkSecret, "msg_1", now, clerkUserCreated("user_1", now))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])

		p, ok := f.store.GetProfile("user_1")
		require.True(t, ok)
		assert.Equal(t, "ada@example.com", p.Email)
		assert.Equal(t, "Ada", p.FirstName)
	})

	t.Run("deletes user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		now := time.Now()

		resp, _ := f.postClerk(t, clerkSecret, "msg_1", now, clerkUserCreated("user_2", now))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		deleted := []byte(fmt.Sprintf(`{"type":"user.deleted","object":"event","timestamp":%d,"data":{"id":"user_2","deleted":true}}`, now.UnixMilli()))
		resp, _ = f.postClerk(t, clerkSecret, "msg_2", now, deleted)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		_, ok := f.store.GetProfile("user_2")
		assert.False(t, ok)
	})

	t.Run("bad signature", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		now := time.Now()

		other := "whsec_" + base64.StdEncoding.EncodeToString([]byte("another-secret"))
		resp, body := f.postClerk(t, other, "msg_1", now, clerkUserCreated("user_1", now))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid webhook signature", body["error"])

		_, ok := f.store.GetProfile("user_1")
		assert.False(t, ok)
	})

	t.Run("stale delivery", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		then := time.Now().Add(-time.Hour)

		resp, _ := f.postClerk(t, clerkSecret, "msg_1", then, clerkUserCreated("user_1", then))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing headers", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		resp, body := f.post(t, "/api/webhooks/clerk", "application/json", clerkUserCreated("user_1", time.Now()))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Missing webhook signature", body["error"])
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, func(o *api.Options) { o.Config.ClerkWebhookSecret = "" })
		now := time.Now()

		resp, body := f.postClerk(t, clerkSecret, "msg_1", now, clerkUserCreated("user_1", now))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "Webhook secret not configured", body["error"])
	})

	t.Run("rate limited per address", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		now := time.Now()

		for i := range 100 {
			resp, _ := f.postClerk(t, clerkSecret, fmt.Sprintf("msg_%d", i), now, clerkUserCreated("user_1", now),
				withHeader("X-Forwarded-For", "192.0.2.10"))
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}
		resp, _ := f.postClerk(t, clerkSecret, "msg_last", now, clerkUserCreated("user_1", now),
			withHeader("X-Forwarded-For", "192.0.2.10"))
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	})
}

func TestOperationalEndpoints(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "/health/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	analyze, _ := f.post(t, "/api/analyze", "application/json", analyzeBody("AAPL"))
	require.Equal(t, http.StatusOK, analyze.StatusCode)

	resp, err = http.Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `preset="analyze"`)
}
