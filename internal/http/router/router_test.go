package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/cargolink-backend/internal/app"
	"github.com/ignatzorin/cargolink-backend/internal/config"
	"github.com/ignatzorin/cargolink-backend/internal/goroutine"
	"github.com/ignatzorin/cargolink-backend/internal/http/middleware"
	"github.com/ignatzorin/cargolink-backend/internal/http/router"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/signature"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/service"
	"github.com/ignatzorin/cargolink-backend/internal/ws"
)

type testServer struct {
	engine *gin.Engine
	runner *goroutine.RecoveryHandler
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func newTestServer(t *testing.T, env string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Silence()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Env:             env,
		RateLimitLimit:  1000,
		RateLimitPeriod: time.Minute,
	}
	deps := app.Deps{
		Tokens: service.NewTokenManager("test-secret-test-secret-test-secret", time.Hour),
		Signer: signature.NewMockSigner(
			signature.WithLatency(0, 0),
			signature.WithRandom(func() float64 { return 0 }),
		),
		Hub:      ws.NewHub(),
		Runner:   goroutine.NewRecoveryHandler(logger.Log),
		Storage:  config.StorageDriverMemory,
		DevLogin: env == config.EnvDevelopment,
	}
	go deps.Hub.Run(ctx)

	store, err := middleware.NewRateLimitStore("")
	require.NoError(t, err)

	repos := app.MemoryRepositories(memory.NewStore())
	engine := router.SetupRouter(cfg, app.NewHandlers(repos, deps), deps.Tokens, store)
	return &testServer{engine: engine, runner: deps.Runner}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type loginData struct {
	AccessToken string `json:"accessToken"`
	User        struct {
		ID   uuid.UUID `json:"id"`
		Role string    `json:"role"`
	} `json:"user"`
}

func (s *testServer) login(t *testing.T, email, role string) loginData {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/dev/login", "", map[string]any{
		"email": email,
		"role":  role,
		"iin":   "990101300123",
	})
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, code)
	return decode[loginData](t, env)
}

type idStatus struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func TestDealLifecycle(t *testing.T) {
	s := newTestServer(t, config.EnvDevelopment)
	shipper := s.login(t, "shipper@example.kz", "shipper")
	carrier := s.login(t, "carrier@example.kz", "carrier")

	// Груз
	code, env := s.do(t, http.MethodPost, "/api/cargo", shipper.AccessToken, map[string]any{
		"title":        "Пшеница",
		"category":     "Зерно",
		"origin":       "Астана",
		"destination":  "Алматы",
		"weight":       20,
		"price":        450000,
		"pickupDate":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"deliveryDate": time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, code, env)
	cargo := decode[idStatus](t, env)
	assert.Equal(t, "active", cargo.Status)

	code, env = s.do(t, http.MethodGet, "/api/cargo?status=active", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]idStatus](t, env), 1)

	// Ставка и её принятие
	code, env = s.do(t, http.MethodPost, "/api/bids", carrier.AccessToken, map[string]any{
		"cargoId":      cargo.ID,
		"bidAmount":    400000,
		"deliveryTime": "2 дня",
		"vehicleType":  "Фура",
	})
	require.Equal(t, http.StatusCreated, code, env)
	bid := decode[idStatus](t, env)

	code, env = s.do(t, http.MethodPatch, "/api/bids/"+bid.ID.String()+"/status", shipper.AccessToken, map[string]any{"status": "accepted"})
	require.Equal(t, http.StatusOK, code, env)
	decided := decode[struct {
		Bid         idStatus  `json:"bid"`
		Transaction *idStatus `json:"transaction"`
	}](t, env)
	assert.Equal(t, "accepted", decided.Bid.Status)
	require.NotNil(t, decided.Transaction)
	txID := decided.Transaction.ID.String()

	code, env = s.do(t, http.MethodPatch, "/api/bids/"+bid.ID.String()+"/status", shipper.AccessToken, map[string]any{"status": "accepted"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	// Подтверждение сделки создаёт е-ТТН
	code, env = s.do(t, http.MethodPatch, "/api/transactions/"+txID+"/status", shipper.AccessToken, map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, code, env)

	code, env = s.do(t, http.MethodGet, "/api/transactions/"+txID+"/ettn", carrier.AccessToken, nil)
	require.Equal(t, http.StatusOK, code, env)
	doc := decode[idStatus](t, env)
	assert.Equal(t, "pending_signature", doc.Status)

	// Подписи в любом порядке: сначала перевозчик
	code, env = s.do(t, http.MethodPatch, "/api/ettn/"+doc.ID.String()+"/sign", carrier.AccessToken, nil)
	require.Equal(t, http.StatusOK, code, env)
	assert.Equal(t, "partially_signed", decode[idStatus](t, env).Status)

	code, env = s.do(t, http.MethodPatch, "/api/ettn/"+doc.ID.String()+"/sign", carrier.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, env = s.do(t, http.MethodPatch, "/api/ettn/"+doc.ID.String()+"/sign", shipper.AccessToken, nil)
	require.Equal(t, http.StatusOK, code, env)
	assert.Equal(t, "fully_signed", decode[idStatus](t, env).Status)

	code, env = s.do(t, http.MethodGet, "/api/ettn/"+doc.ID.String()+"/signatures", shipper.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]json.RawMessage](t, env), 2)

	code, env = s.do(t, http.MethodGet, "/api/ettn/"+doc.ID.String()+"/verify", shipper.AccessToken, nil)
	require.Equal(t, http.StatusOK, code, env)
	assert.True(t, decode[struct {
		Demo bool `json:"demo"`
	}](t, env).Demo)

	code, env = s.do(t, http.MethodGet, "/api/transactions/"+txID, carrier.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "in_transit", decode[idStatus](t, env).Status)

	// Доставка и завершение
	code, env = s.do(t, http.MethodPatch, "/api/transactions/"+txID+"/status", carrier.AccessToken, map[string]any{"status": "delivered"})
	require.Equal(t, http.StatusOK, code, env)
	code, env = s.do(t, http.MethodPatch, "/api/transactions/"+txID+"/status", shipper.AccessToken, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, code, env)
	assert.Equal(t, "completed", decode[idStatus](t, env).Status)

	// Оценка перевозчика
	code, env = s.do(t, http.MethodPost, "/api/rws", shipper.AccessToken, map[string]any{
		"userId":         carrier.User.ID,
		"transactionId":  txID,
		"onTimeDelivery": 5,
		"cargoCondition": 5,
		"communication":  4,
		"documentation":  5,
	})
	require.Equal(t, http.StatusCreated, code, env)
	submitted := decode[struct {
		RWSScore int `json:"rwsScore"`
	}](t, env)

	code, env = s.do(t, http.MethodGet, "/api/rws/"+carrier.User.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, code)
	profile := decode[struct {
		RWSScore int               `json:"rwsScore"`
		Metrics  []json.RawMessage `json:"metrics"`
	}](t, env)
	assert.Equal(t, submitted.RWSScore, profile.RWSScore)
	assert.Len(t, profile.Metrics, 1)

	// Сообщения и уведомления
	code, env = s.do(t, http.MethodPost, "/api/messages", carrier.AccessToken, map[string]any{
		"transactionId": txID,
		"content":       "Груз доставлен, спасибо",
	})
	require.Equal(t, http.StatusCreated, code, env)

	code, env = s.do(t, http.MethodGet, "/api/messages/"+txID, shipper.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]json.RawMessage](t, env), 1)

	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.runner.Wait(waitCtx))

	code, env = s.do(t, http.MethodGet, "/api/notifications", shipper.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	notifications := decode[struct {
		Items       []json.RawMessage `json:"items"`
		UnreadCount int               `json:"unreadCount"`
	}](t, env)
	assert.NotEmpty(t, notifications.Items)
	assert.Equal(t, len(notifications.Items), notifications.UnreadCount)

	code, _ = s.do(t, http.MethodPatch, "/api/notifications/read-all", shipper.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/dashboard", shipper.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	summary := decode[struct {
		CompletedCargo      int `json:"completedCargo"`
		TotalTransactions   int `json:"totalTransactions"`
		UnreadNotifications int `json:"unreadNotifications"`
	}](t, env)
	assert.Equal(t, 1, summary.CompletedCargo)
	assert.Equal(t, 1, summary.TotalTransactions)
	assert.Equal(t, 0, summary.UnreadNotifications)
}

func TestRouter_AccessErrors(t *testing.T) {
	s := newTestServer(t, config.EnvDevelopment)
	shipper := s.login(t, "shipper@example.kz", "shipper")
	carrier := s.login(t, "carrier@example.kz", "carrier")

	t.Run("без токена", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/api/cargo", "", map[string]any{})
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	})

	t.Run("невалидный токен", func(t *testing.T) {
		code, _ := s.do(t, http.MethodGet, "/api/transactions", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("некорректный UUID", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/api/cargo/not-a-uuid", "", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code)
	})

	t.Run("груз не найден", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/api/cargo/"+uuid.NewString(), "", nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})

	t.Run("перевозчик не создаёт грузы", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/api/cargo", carrier.AccessToken, map[string]any{
			"title":       "Груз",
			"category":    "Прочее",
			"origin":      "A",
			"destination": "B",
			"pickupDate":  time.Now().Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})

	t.Run("ошибки валидации по полям", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/api/cargo", shipper.AccessToken, map[string]any{
			"title":       "Груз",
			"category":    "Прочее",
			"origin":      "A",
			"destination": "B",
			"pickupDate":  time.Now().Format(time.RFC3339),
			"weight":      -5,
		})
		assert.Equal(t, http.StatusBadRequest, code)
		require.NotNil(t, env.Error)
	})

	t.Run("репутация неизвестного пользователя", func(t *testing.T) {
		code, _ := s.do(t, http.MethodGet, "/api/rws/"+uuid.NewString(), "", nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestRouter_DevLoginOnlyInDevelopment(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)
	code, _ := s.do(t, http.MethodPost, "/api/dev/login", "", map[string]any{"email": "a@b.kz", "role": "shipper"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t, config.EnvDevelopment)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storage":"memory"`)

	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cargolink_http_request_duration_seconds")
}

type profileData struct {
	ID    uuid.UUID `json:"id"`
	Role  string    `json:"role"`
	Phone *string   `json:"phone"`
	IIN   *string   `json:"iin"`
	BIN   *string   `json:"bin"`
}

func TestRouter_ProfileAndRoles(t *testing.T) {
	s := newTestServer(t, config.EnvDevelopment)
	code, env := s.do(t, http.MethodPost, "/api/dev/login", "", map[string]any{"email": "new@example.kz", "role": "carrier"})
	require.Equal(t, http.StatusCreated, code, env)
	user := decode[loginData](t, env)
	admin := s.login(t, "admin@example.kz", "admin")

	code, env = s.do(t, http.MethodGet, "/api/auth/user", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, code, env)
	assert.Nil(t, decode[profileData](t, env).IIN)

	code, env = s.do(t, http.MethodPatch, "/api/auth/user/profile", user.AccessToken, map[string]any{
		"companyName": "ИП Сейткали",
		"phone":       "+77051234567",
		"iin":         "910315350112",
	})
	require.Equal(t, http.StatusOK, code, env)

	code, env = s.do(t, http.MethodGet, "/api/auth/user", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, code, env)
	profile := decode[profileData](t, env)
	require.NotNil(t, profile.IIN)
	assert.Equal(t, "910315350112", *profile.IIN)
	require.NotNil(t, profile.Phone)

	code, env = s.do(t, http.MethodPatch, "/api/auth/user/profile", user.AccessToken, map[string]any{"bin": "12"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "bin")

	code, env = s.do(t, http.MethodPatch, "/api/auth/user/change-role", user.AccessToken, map[string]any{"role": "shipper"})
	require.Equal(t, http.StatusOK, code, env)
	assert.Equal(t, "shipper", decode[profileData](t, env).Role)

	code, _ = s.do(t, http.MethodPatch, "/api/auth/user/change-role", user.AccessToken, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPatch, "/api/auth/user/role", user.AccessToken, map[string]any{"targetUserId": admin.User.ID, "role": "carrier"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPatch, "/api/auth/user/role", admin.AccessToken, map[string]any{"targetUserId": user.User.ID, "role": "carrier"})
	require.Equal(t, http.StatusOK, code, env)
	assert.Equal(t, "carrier", decode[profileData](t, env).Role)
}

func TestRouter_CargoUpdateAndMyBidsAlias(t *testing.T) {
	s := newTestServer(t, config.EnvDevelopment)
	shipper := s.login(t, "shipper@example.kz", "shipper")
	carrier := s.login(t, "carrier@example.kz", "carrier")

	code, env := s.do(t, http.MethodPost, "/api/cargo", shipper.AccessToken, map[string]any{
		"title":       "Уголь",
		"category":    "Сырьё",
		"origin":      "Экибастуз",
		"destination": "Караганда",
		"weight":      30,
		"price":       300000,
		"pickupDate":  time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, code, env)
	cargo := decode[idStatus](t, env)

	code, env = s.do(t, http.MethodPatch, "/api/cargo/"+cargo.ID.String(), shipper.AccessToken, map[string]any{"price": 320000})
	require.Equal(t, http.StatusOK, code, env)
	assert.Equal(t, 320000.0, decode[struct {
		Price float64 `json:"price"`
	}](t, env).Price)

	code, _ = s.do(t, http.MethodPatch, "/api/cargo/"+cargo.ID.String(), carrier.AccessToken, map[string]any{"price": 1})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPost, "/api/bids", carrier.AccessToken, map[string]any{
		"cargoId":      cargo.ID,
		"bidAmount":    290000,
		"deliveryTime": "1 день",
		"vehicleType":  "Самосвал",
	})
	require.Equal(t, http.StatusCreated, code, env)

	for _, path := range []string{"/api/bids/my", "/api/bids/my-bids"} {
		code, env = s.do(t, http.MethodGet, path, carrier.AccessToken, nil)
		require.Equal(t, http.StatusOK, code, env)
		assert.Len(t, decode[[]idStatus](t, env), 1, path)
	}
}
