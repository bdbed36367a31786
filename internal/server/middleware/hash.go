package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/and161185/sysfs-stats/internal/config"
	"github.com/and161185/sysfs-stats/internal/utils"
)

// VerifyHashMiddleware rejects requests whose HashSHA256 header does not
// match the body. Verification is skipped when no key is configured or
// the agent sent no hash.
func VerifyHashMiddleware(cfg *config.ServerConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Key == "" {
				next.ServeHTTP(w, r)
				return
			}

			bodyBytes, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "bad body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			headerHashSHA256 := r.Header.Get("HashSHA256")
			if headerHashSHA256 != "" && headerHashSHA256 != utils.CalculateHash(bodyBytes, cfg.Key) {
				http.Error(w, "invalid hash", http.StatusBadRequest)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			w.Header().Set("HashSHA256", utils.CalculateHash(capture.body.Bytes(), cfg.Key))
			if capture.status != 0 {
				w.WriteHeader(capture.status)
			}
			_, _ = w.Write(capture.body.Bytes())
		})
	}
}

// responseCapture buffers the response so the hash header can be set
// before any body bytes reach the client.
type responseCapture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
}

func (r *responseCapture) Write(b []byte) (int, error) {
	return r.body.Write(b)
}
