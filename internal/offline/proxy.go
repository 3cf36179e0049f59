package offline

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"

	apperrors "cakebook/internal/errors"
)

// Transport adapts a Worker to http.RoundTripper so an *http.Client or a
// reverse proxy can route requests through the cache.
type Transport struct {
	Worker *Worker
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.Worker.Fetch(req)
}

var _ http.RoundTripper = (*Transport)(nil)

// NewProxy returns a handler that forwards shell requests to the worker's
// origin through the worker. Requests the worker cannot resolve are answered
// with 502 Bad Gateway.
func NewProxy(w *Worker) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(w.origin)
			pr.Out.Host = w.origin.Host
		},
		Transport: &Transport{Worker: w},
		ErrorHandler: func(rw http.ResponseWriter, r *http.Request, err error) {
			w.log.Warnw("shell request failed", "method", r.Method, "path", r.URL.Path, "error", err)
			appErr := apperrors.ErrBadGateway
			rw.Header().Set("Content-Type", "application/json; charset=utf-8")
			rw.WriteHeader(appErr.StatusCode)
			_ = json.NewEncoder(rw).Encode(map[string]any{
				"error": map[string]string{"code": appErr.Code, "message": appErr.Message},
			})
		},
	}
}
