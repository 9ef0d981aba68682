package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// cachedPage is one stored response, replayable as-is.
type cachedPage struct {
	status int
	header http.Header
	body   []byte
}

// teeWriter copies everything written to the client into a buffer so the
// response can be cached after the handler ran.
type teeWriter struct {
	gin.ResponseWriter
	tee bytes.Buffer
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.tee.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteString(s string) (int, error) {
	w.tee.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache replays successful GET responses from an in-memory store, keyed by
// request URI. Anything but GET passes straight through.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if hit, ok := store.Get(key); ok {
			page := hit.(cachedPage)
			for k, v := range page.header {
				c.Writer.Header()[k] = v
			}
			c.Writer.WriteHeader(page.status)
			c.Writer.Write(page.body)
			c.Abort()
			return
		}

		w := &teeWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		if w.Status() >= 200 && w.Status() < 300 {
			store.Set(key, cachedPage{
				status: w.Status(),
				header: w.Header().Clone(),
				body:   w.tee.Bytes(),
			}, ttl)
		}
	}
}
