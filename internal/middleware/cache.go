package middleware

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tigertix/event-ticketing/internal/config"
)

// bodyCapture tees the response body into a buffer while forwarding it
// to the client, up to a size limit.  Oversized responses are forwarded
// but not cached.
type bodyCapture struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	size     int64
	limit    int64
	overflow bool
}

func (w *bodyCapture) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.size += int64(len(b))
	if w.size > w.limit {
		w.overflow = true
	} else {
		w.buf.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// CacheGET returns a middleware that serves GET responses from Redis.
// Only 200 responses are stored, keyed by route + raw query; the entry
// carries the content type in its first line so the replay matches the
// original response.  Disabled (or redis-less) configurations pass
// everything through.
func CacheGET(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
			key := fmt.Sprintf("%s:%x", cfg.Prefix, sum)

			ctx := c.Request().Context()
			if cached, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if i := bytes.IndexByte(cached, '\n'); i >= 0 {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(http.StatusOK, string(cached[:i]), cached[i+1:])
				}
			}

			w := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
			c.Response().Writer = w
			if err := next(c); err != nil {
				return err
			}

			if w.status == http.StatusOK && !w.overflow {
				ctype := c.Response().Header().Get(echo.HeaderContentType)
				entry := append([]byte(ctype+"\n"), w.buf.Bytes()...)
				// Best effort; a failed SET only costs the next request a DB read.
				_ = rdb.Set(ctx, key, entry, ttl).Err()
			}
			return nil
		}
	}
}
