package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/daily-stamp/internal/config"
)

var errShortEntry = errors.New("cache entry truncated")

// cachedResponse is what a cache hit replays.  On the wire it is
// [status u32][header length u32][header JSON][body].
type cachedResponse struct {
    Status int
    Header http.Header
    Body   []byte
}

func (r cachedResponse) MarshalBinary() ([]byte, error) {
    hdr, err := json.Marshal(r.Header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8, 8+len(hdr)+len(r.Body))
    binary.BigEndian.PutUint32(out[0:4], uint32(r.Status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
    out = append(out, hdr...)
    return append(out, r.Body...), nil
}

func (r *cachedResponse) UnmarshalBinary(bs []byte) error {
    if len(bs) < 8 {
        return errShortEntry
    }
    hlen := uint64(binary.BigEndian.Uint32(bs[4:8]))
    if 8+hlen > uint64(len(bs)) {
        return errShortEntry
    }
    r.Header = http.Header{}
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &r.Header); err != nil {
            return err
        }
    }
    r.Status = int(binary.BigEndian.Uint32(bs[0:4]))
    r.Body = bs[8+hlen:]
    return nil
}

// replay writes a stored response.  Content-Length is left to echo.
func (r cachedResponse) replay(c echo.Context) {
    h := c.Response().Header()
    for k, vals := range r.Header {
        if strings.EqualFold(k, echo.HeaderContentLength) {
            continue
        }
        h[k] = append([]string(nil), vals...)
    }
    h.Set("X-Cache", "HIT")
    c.Response().WriteHeader(r.Status)
    _, _ = c.Response().Write(r.Body)
}

// recorder tees the response body while it is below limit.  overflow is
// set once the body no longer fits; such responses are never stored.
type recorder struct {
    http.ResponseWriter
    status   int
    body     bytes.Buffer
    limit    int64
    overflow bool
}

func (w *recorder) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(b []byte) (int, error) {
    if !w.overflow {
        if w.limit > 0 && int64(w.body.Len()+len(b)) > w.limit {
            w.overflow = true
            w.body.Reset()
        } else {
            w.body.Write(b)
        }
    }
    return w.ResponseWriter.Write(b)
}

// cacheKeyFrom hashes method, concrete path and query, so each username
// gets its own entry.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    sum := sha1.Sum([]byte(r.Method + " " + r.URL.Path + "?" + r.URL.RawQuery))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum)
}

// NewRedisCache caches 200 responses to anonymous requests.  Requests
// carrying an Authorization header always reach the handler and are never
// stored, so the unlocked history view stays out of the cache.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            if !cfg.Methods[strings.ToUpper(req.Method)] || req.Header.Get(echo.HeaderAuthorization) != "" {
                return next(c)
            }
            key := cacheKeyFrom(cfg, c)

            if raw, err := rdb.Get(req.Context(), key).Bytes(); err == nil {
                var hit cachedResponse
                if hit.UnmarshalBinary(raw) == nil {
                    hit.replay(c)
                    return nil
                }
            }

            rec := &recorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK || rec.overflow {
                return nil
            }

            entry := cachedResponse{Status: rec.status, Header: c.Response().Header().Clone(), Body: rec.body.Bytes()}
            entry.Header.Del("X-Cache")
            if payload, err := entry.MarshalBinary(); err == nil {
                // The request context may already be cancelled by now.
                _ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
            }
            return nil
        }
    }
}
