package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/realtime-catalog/internal/auth"
	"github.com/fairyhunter13/realtime-catalog/internal/catalog"
	"github.com/fairyhunter13/realtime-catalog/internal/config"
	"github.com/fairyhunter13/realtime-catalog/internal/events"
	httpopenapi "github.com/fairyhunter13/realtime-catalog/internal/http/openapi"
	"github.com/fairyhunter13/realtime-catalog/internal/obs"
	"github.com/fairyhunter13/realtime-catalog/internal/queue"
)

type App struct {
	Cfg     config.Config
	Auth    *auth.Service
	Catalog *catalog.Service
	Hub     *events.Hub
	Worker  *queue.Worker
	closing atomic.Bool
	started time.Time
}

func NewApp(cfg config.Config, au *auth.Service, svc *catalog.Service, hub *events.Hub, w *queue.Worker) *App {
	return &App{Cfg: cfg, Auth: au, Catalog: svc, Hub: hub, Worker: w, started: time.Now()}
}

// StartShutdown is called from the signal goroutine while requests are
// still being served, so the flag is atomic.
func (a *App) StartShutdown() {
	a.closing.Store(true)
	a.Worker.CloseIntake()
}

func (a *App) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *App) registerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var req registerRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "email, username, and password are required")
		return
	}
	sess, err := a.Auth.Register(req.Email, req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(sess)
	obs.Logger.Info("user_registered", "user_id", sess.User.ID, "request_id", RequestIDFromContext(r.Context()))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var req loginRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	sess, err := a.Auth.Login(req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sess)
}

// productsHandler serves the collection route: list and create.
func (a *App) productsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		listing, err := a.Catalog.List(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(listing)
	case http.MethodPost:
		if a.closing.Load() || a.Worker.IsShuttingDown() {
			WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
			return
		}
		actorID, ok := a.requireActor(w, r)
		if !ok {
			return
		}
		var in catalog.CreateInput
		if !a.decodeJSON(w, r, &in) {
			return
		}
		if err := in.Validate(); err != nil {
			WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		p, err := a.Catalog.Create(r.Context(), in, actorID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(p)
		obs.Logger.Info("product_created",
			"product_id", p.ID,
			"actor_id", actorID,
			"request_id", RequestIDFromContext(r.Context()),
		)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

// productHandler serves the item route: get, update, delete.
func (a *App) productHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/products/")
	if id == "" || strings.Contains(id, "/") {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := a.Catalog.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	case http.MethodPut:
		actorID, ok := a.requireActor(w, r)
		if !ok {
			return
		}
		var in catalog.UpdateInput
		if !a.decodeJSON(w, r, &in) {
			return
		}
		if err := in.Validate(); err != nil {
			WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		p, err := a.Catalog.Update(r.Context(), id, in, actorID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	case http.MethodDelete:
		actorID, ok := a.requireActor(w, r)
		if !ok {
			return
		}
		if err := a.Catalog.Remove(r.Context(), id, actorID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	enq, proc, failed, backlog, depth := a.Worker.QueueMetrics()
	m := map[string]any{
		"jobs_enqueued":     enq,
		"jobs_processed":    proc,
		"jobs_failed":       failed,
		"backlog_size":      backlog,
		"queue_depth":       depth,
		"worker_count":      a.Worker.WorkerCount(),
		"connected_clients": a.Hub.ConnectedCount(),
		"uptime_sec":        time.Since(a.started).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
