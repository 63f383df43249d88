package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Silence()
}

type mockTokenParser struct {
	mock.Mock
}

func (m *mockTokenParser) ParseAccess(token string) (uuid.UUID, valueobject.UserRole, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Get(1).(valueobject.UserRole), args.Error(2)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	tokens := new(mockTokenParser)
	tokens.On("ParseAccess", "good").Return(userID, valueobject.RoleCarrier, nil)
	tokens.On("ParseAccess", "bad").Return(uuid.Nil, valueobject.UserRole(""), errors.New("expired"))

	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId": c.MustGet(ContextUserIDKey),
			"role":   c.MustGet(ContextRoleKey),
		})
	})

	t.Run("валидный токен", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := serve(r, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), `"role":"carrier"`)
	})

	t.Run("невалидный токен", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer bad")
		w := serve(r, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("без заголовка", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	tokens.AssertExpectations(t)
}

func TestRateLimitMiddleware(t *testing.T) {
	store, err := NewRateLimitStore("")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/ping", RateLimitMiddleware(store, 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestNewRateLimitStore_InvalidRedisURL(t *testing.T) {
	_, err := NewRateLimitStore("not-a-redis-url")
	assert.Error(t, err)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := serve(r, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorHandler_RendersUnwrittenError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/conflict", func(c *gin.Context) {
		_ = c.Error(apperror.ErrAlreadySigned)
	})
	r.GET("/internal", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "вы уже подписали эту е-ТТН")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/internal", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestUUIDValidator(t *testing.T) {
	r := gin.New()
	r.GET("/cargo/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/cargo/"+uuid.NewString(), nil)).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, httptest.NewRequest(http.MethodGet, "/cargo/123", nil)).Code)
}
