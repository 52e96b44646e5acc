package api

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"io"
	"net/http"

	// Local Packages
	config "tanda-go/config"
	errors "tanda-go/errors"
	models "tanda-go/models"
	results "tanda-go/services/results"

	// External Packages
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Reconciler interface {
	Handle(ctx context.Context, kind string, n models.Notification, raw []byte) (any, error)
}

// Handler receives Tanda result callbacks over HTTP. A nil registry
// disables /metrics.
type Handler struct {
	reconciler Reconciler
	logger     *zap.Logger
	metrics    *metrics
	registry   *prometheus.Registry
}

func NewHandler(reconciler Reconciler, logger *zap.Logger, registry *prometheus.Registry) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{reconciler: reconciler, logger: logger, metrics: newMetrics(registry), registry: registry}
}

// Routes mounts one POST endpoint per callback kind on the paths the
// callback URLs were built from. When two kinds share a path the first one
// listed keeps it.
func (h *Handler) Routes(conf config.Tanda) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	callbacks := [][2]string{
		{models.CallbackPayout, conf.ResultURL},
		{models.CallbackC2B, conf.C2BResultURL},
		{models.CallbackP2P, conf.P2PResultURL},
		{models.CallbackIPN, conf.IPNURL},
	}
	mounted := make(map[string]string, len(callbacks))
	for _, cb := range callbacks {
		kind, raw := cb[0], cb[1]
		if raw == "" {
			h.logger.Warn("callback route not mounted, no path configured", zap.String("kind", kind))
			continue
		}
		path := config.RoutePath(raw)
		if owner, ok := mounted[path]; ok {
			h.logger.Error("callback path already mounted", zap.String("kind", kind),
				zap.String("path", path), zap.String("mounted_for", owner))
			continue
		}
		mounted[path] = kind
		r.Post(path, h.Callback(kind))
	}

	r.Get("/healthz", h.Healthz)
	if h.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Callback decodes the body and hands it to the reconciler. Unmatched
// callbacks answer 404 so the provider can tell them apart.
func (h *Handler) Callback(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			h.metrics.observe(kind, "invalid")
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot read body"})
			return
		}

		n, err := results.Decode(kind, raw)
		if err != nil {
			h.metrics.observe(kind, "invalid")
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		rec, err := h.reconciler.Handle(r.Context(), kind, n, raw)
		switch {
		case err != nil:
			h.metrics.observe(kind, "error")
			h.logger.Error("callback failed", zap.String("kind", kind), zap.Error(err))
			writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		case rec == nil:
			h.metrics.observe(kind, "unmatched")
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no matching record"})
		default:
			h.metrics.observe(kind, "reconciled")
			writeJSON(w, http.StatusOK, rec)
		}
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Info("http request", zap.String("method", r.Method), zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()), zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func statusFor(err error) int {
	switch errors.KindOf(err) {
	case errors.Invalid:
		return http.StatusBadRequest
	case errors.NotFound:
		return http.StatusNotFound
	case errors.Conflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
