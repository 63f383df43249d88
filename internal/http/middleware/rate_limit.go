package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/ignatzorin/cargolink-backend/internal/interface/http/response"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
)

const rateLimitPrefix = "cargolink:limiter"

// NewRateLimitStore выбирает хранилище счётчиков: Redis, если задан redisURL,
// иначе память процесса.
func NewRateLimitStore(redisURL string) (limiter.Store, error) {
	if redisURL == "" {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix}), nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	return redisstore.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix})
}

// RateLimitMiddleware создаёт middleware для ограничения количества запросов.
// По умолчанию: 10 запросов в минуту с одного IP.
func RateLimitMiddleware(store limiter.Store, limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = 1 * time.Minute
	}

	instance := limiter.New(store, limiter.Rate{
		Period: period,
		Limit:  limit,
	})

	return func(c *gin.Context) {
		lctx, err := instance.Get(c, c.ClientIP())
		if err != nil {
			// хранилище недоступно: запрос пропускается
			logger.Log.WithError(err).Warn("rate limit: хранилище недоступно")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			response.TooManyRequests(c, "слишком много запросов, попробуйте позже")
			c.Abort()
			return
		}

		c.Next()
	}
}
