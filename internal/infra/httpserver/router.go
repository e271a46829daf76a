package httpserver

import (
    "database/sql"
    "encoding/json"
    "errors"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/cors"

    appanalysis "github.com/msetiadi/leadintel/internal/application/analysis"
    appprofiles "github.com/msetiadi/leadintel/internal/application/profiles"
    domanalysis "github.com/msetiadi/leadintel/internal/domain/analysis"
    domprofiles "github.com/msetiadi/leadintel/internal/domain/profiles"
    "github.com/msetiadi/leadintel/internal/middleware"
)

type Options struct {
    JWTSecret           []byte
    RateLimitCapacity   int
    RateLimitRefillRate int
    HealthCheckers      map[string]middleware.HealthChecker
}

type Router struct {
    analysisSvc *appanalysis.Service
    adminSvc    *appprofiles.Service
}

func NewRouter(analysisSvc *appanalysis.Service, adminSvc *appprofiles.Service, opts Options) http.Handler {
    if opts.RateLimitCapacity <= 0 {
        opts.RateLimitCapacity = 10
    }
    if opts.RateLimitRefillRate <= 0 {
        opts.RateLimitRefillRate = 1
    }

    r := &Router{analysisSvc: analysisSvc, adminSvc: adminSvc}
    mux := chi.NewRouter()

    mux.Use(cors.Handler(cors.Options{
        AllowedOrigins: []string{"*"},
        AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
        AllowedHeaders: []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
    }))
    mux.Use(middleware.LoggingMiddleware)
    mux.Use(middleware.MetricsMiddleware)

    mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
    mux.Get("/metrics", middleware.MetricsHandler)

    // Health probe: no auth, no body. Reports the active model so a client
    // can verify deployment and configuration in one call.
    mux.Get("/analyze", r.handleProbe)

    auth := middleware.BearerAuth(opts.JWTSecret)

    mux.Group(func(g chi.Router) {
        g.Use(auth)
        g.Use(middleware.RateLimitMiddleware(opts.RateLimitCapacity, opts.RateLimitRefillRate))
        g.Post("/analyze", r.wrap(r.handleAnalyze))
    })

    mux.Route("/v1/admin", func(rt chi.Router) {
        rt.Use(auth)
        rt.Use(r.requireAdmin)
        rt.Get("/users", r.wrap(r.handleListUsers))
        rt.Post("/users/{id}/reset", r.wrap(r.handleResetUsage))
        rt.Put("/users/{id}/limit", r.wrap(r.handleSetLimit))
        rt.Get("/reports", r.wrap(r.handleListReports))
    })

    return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain failures onto the stable client-facing payloads. Every
// failure leaves this boundary as {"error": "<message>"} with one of a small
// set of status codes.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
    return func(w http.ResponseWriter, req *http.Request) {
        err := h(w, req)
        if err == nil {
            return
        }
        switch {
        case errors.Is(err, domanalysis.ErrUnauthenticated):
            writeError(w, http.StatusUnauthorized, "Authentication required. Please login to use this tool.")
        case errors.Is(err, domanalysis.ErrQuotaExceeded):
            middleware.IncrementQuotaDenials()
            writeError(w, http.StatusPaymentRequired, "Quota Exceeded")
        case errors.Is(err, domanalysis.ErrInvalidInput):
            writeError(w, http.StatusBadRequest, "Input text is required")
        case errors.Is(err, domprofiles.ErrNotFound):
            log.Printf("profile lookup failed: %v", err)
            writeError(w, http.StatusInternalServerError, "User profile not found. Please contact support.")
        case errors.Is(err, domanalysis.ErrEmptyResponse),
            errors.Is(err, domanalysis.ErrMalformedResponse),
            errors.Is(err, domanalysis.ErrSchemaViolation):
            log.Printf("model response rejected: %v", err)
            writeError(w, http.StatusInternalServerError, "Failed to analyze content. Please try again.")
        case errors.Is(err, sql.ErrNoRows):
            writeError(w, http.StatusNotFound, "not found")
        default:
            writeError(w, http.StatusInternalServerError, err.Error())
        }
    }
}

func writeError(w http.ResponseWriter, status int, msg string) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) error {
    w.Header().Set("Content-Type", "application/json")
    return json.NewEncoder(w).Encode(v)
}

// requireAdmin gates the admin console routes on the profile's role.
func (r *Router) requireAdmin(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
        principal := middleware.GetUserFromContext(req.Context())
        if principal == "" {
            writeError(w, http.StatusUnauthorized, "Authentication required. Please login to use this tool.")
            return
        }
        ok, err := r.adminSvc.IsAdmin(req.Context(), principal)
        if err != nil {
            if errors.Is(err, domprofiles.ErrNotFound) {
                writeError(w, http.StatusForbidden, "insufficient privileges")
                return
            }
            writeError(w, http.StatusInternalServerError, err.Error())
            return
        }
        if !ok {
            writeError(w, http.StatusForbidden, "insufficient privileges")
            return
        }
        next.ServeHTTP(w, req)
    })
}

// GET /analyze
func (r *Router) handleProbe(w http.ResponseWriter, req *http.Request) {
    _ = writeJSON(w, map[string]string{
        "status":    "online",
        "timestamp": time.Now().UTC().Format(time.RFC3339),
        "model":     r.analysisSvc.Model(),
    })
}

// POST /analyze
// Body: {"text": "<merged lead content>"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
    principal := middleware.GetUserFromContext(req.Context())

    var body struct {
        Text string `json:"text"`
    }
    if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
        return domanalysis.ErrInvalidInput
    }

    middleware.IncrementAnalyses()
    result, err := r.analysisSvc.Analyze(req.Context(), principal, body.Text)
    if err != nil {
        middleware.IncrementAnalysesFailed()
        return err
    }

    return writeJSON(w, result)
}

// GET /v1/admin/users?page=&page_size=
func (r *Router) handleListUsers(w http.ResponseWriter, req *http.Request) error {
    page, _ := strconv.Atoi(req.URL.Query().Get("page"))
    size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

    list, err := r.adminSvc.List(req.Context(), page, size)
    if err != nil {
        return err
    }
    return writeJSON(w, list)
}

// POST /v1/admin/users/{id}/reset
func (r *Router) handleResetUsage(w http.ResponseWriter, req *http.Request) error {
    id := chi.URLParam(req, "id")
    if err := r.adminSvc.ResetUsage(req.Context(), id); err != nil {
        return err
    }
    return writeJSON(w, map[string]string{"status": "reset", "id": id})
}

// PUT /v1/admin/users/{id}/limit
// Body: {"usage_limit": N}
func (r *Router) handleSetLimit(w http.ResponseWriter, req *http.Request) error {
    id := chi.URLParam(req, "id")
    var body struct {
        UsageLimit int `json:"usage_limit"`
    }
    if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
        return err
    }
    if err := r.adminSvc.SetLimit(req.Context(), id, body.UsageLimit); err != nil {
        return err
    }
    return writeJSON(w, map[string]any{"status": "updated", "id": id, "usage_limit": body.UsageLimit})
}

// GET /v1/admin/reports?page=&page_size=
func (r *Router) handleListReports(w http.ResponseWriter, req *http.Request) error {
    page, _ := strconv.Atoi(req.URL.Query().Get("page"))
    size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

    list, err := r.adminSvc.ListReports(req.Context(), page, size)
    if err != nil {
        return err
    }
    return writeJSON(w, list)
}
