package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	apperrors "resort/pkg/errors"
	httputil "resort/pkg/http"
	"resort/pkg/logger"
)

// timeoutWriter buffers headers so the handler goroutine never touches the
// real header map after the deadline has answered the client.
type timeoutWriter struct {
	w          http.ResponseWriter
	header     http.Header
	mu         sync.Mutex
	timedOut   bool
	written    bool
	statusCode int
}

func newTimeoutWriter(w http.ResponseWriter) *timeoutWriter {
	return &timeoutWriter{w: w, header: make(http.Header)}
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	if tw.timedOut || tw.written {
		return
	}
	dst := tw.w.Header()
	for k, v := range tw.header {
		dst[k] = v
	}
	tw.statusCode = code
	tw.written = true
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.writeHeaderLocked(http.StatusOK)
	return tw.w.Write(b)
}

// expire marks the writer dead and reports whether the client still needs
// an answer.
func (tw *timeoutWriter) expire() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timedOut = true
	return !tw.written
}

// RequestTimeout bounds every request by timeout. A handler still running at
// the deadline gets a cancelled context and the client a 504. Requests whose
// client went away are not answered.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := newTimeoutWriter(w)
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if !tw.expire() || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return
				}
				logger.FromContext(r.Context(), logger.Discard()).Warn("Request timed out",
					"request_id", requestIDFrom(r),
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout,
				)
				_ = httputil.WriteError(w, apperrors.Timeout("Request timed out"))
			}
		})
	}
}
