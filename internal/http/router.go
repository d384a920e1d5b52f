package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Board         *BoardHandler
	Sessions      *SessionHandler
	Schedule      *ScheduleHandler
	Admin         *AdminHandler
	Notifications *NotificationHandler
	Ratings       *RatingHandler
	Health        *HealthHandler
	// SyncLimit wraps POST /sync.
	SyncLimit  func(http.Handler) http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Board != nil {
		mux.HandleFunc("/board", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Board.Get(w, r)
		})

		var sync http.Handler = http.HandlerFunc(cfg.Board.Sync)
		if cfg.SyncLimit != nil {
			sync = cfg.SyncLimit(sync)
		}
		mux.HandleFunc("/sync", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			sync.ServeHTTP(w, r)
		})
	}

	if cfg.Sessions != nil {
		mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				cfg.Sessions.Login(w, r)
			case http.MethodDelete:
				cfg.Sessions.Logout(w, r)
			default:
				methodNotAllowed(w, http.MethodPost, http.MethodDelete)
			}
		})
		mux.HandleFunc("/admin-view", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				cfg.Sessions.OpenAdminView(w, r)
			case http.MethodDelete:
				cfg.Sessions.CloseAdminView(w, r)
			default:
				methodNotAllowed(w, http.MethodPost, http.MethodDelete)
			}
		})
	}

	if cfg.Schedule != nil {
		mux.HandleFunc("/schedule", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Schedule.List(w, r)
			case http.MethodPost:
				cfg.Schedule.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/schedule/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/schedule/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithClassID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Schedule.Update(w, r)
			case http.MethodDelete:
				cfg.Schedule.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Admin != nil {
		mux.HandleFunc("/header", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			cfg.Admin.UpdateHeader(w, r)
		})
		mux.HandleFunc("/permissions/", func(w http.ResponseWriter, r *http.Request) {
			email := strings.TrimPrefix(r.URL.Path, "/permissions/")
			if email == "" || strings.Contains(email, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithTargetEmail(r.Context(), email))
			switch r.Method {
			case http.MethodPut:
				cfg.Admin.Grant(w, r)
			case http.MethodDelete:
				cfg.Admin.Revoke(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Notifications != nil {
		mux.HandleFunc("/notifications", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Notifications.List(w, r)
			case http.MethodPost:
				cfg.Notifications.Broadcast(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}

	if cfg.Ratings != nil {
		mux.HandleFunc("/ratings", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Ratings.Feed(w, r)
			case http.MethodPost:
				cfg.Ratings.Submit(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}

	if cfg.Health != nil {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Health.Check(w, r)
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
