package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gily0tina/smart-planner/internal/planner"
)

// Handler maps the core planner operations onto REST routes. Transport only:
// every decision lives in the planner package.
type Handler struct {
	session *planner.Session
	log     *zap.Logger
}

func New(session *planner.Session, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{session: session, log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.listTasks(w, r)
		case http.MethodPost:
			h.createTask(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			h.deleteTask(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/plan/generate", h.postOnly(h.generatePlan))
	mux.HandleFunc("/api/plan/regenerate", h.postOnly(h.regeneratePlan))

	mux.HandleFunc("/api/plan/update", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			h.updatePlan(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/sources", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.listSources(w, r)
	})

	mux.HandleFunc("/api/sources/", h.postOnly(h.untrustSource))

	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.getProfile(w, r)
	})
}

func (h *Handler) postOnly(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			fn(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// ----------------------
//     TASK HANDLERS
// ----------------------

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title    string `json:"title"`
		Category string `json:"category"`
		Mood     string `json:"mood"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	task, err := h.session.AddTask(r.Context(), body.Title, body.Category, body.Mood)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.session.Tasks(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []planner.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	if id == "" {
		http.Error(w, "task id is required", http.StatusBadRequest)
		return
	}
	if err := h.session.DeleteTask(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

// ----------------------
//     PLAN HANDLERS
// ----------------------

func (h *Handler) generatePlan(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.session.Tasks(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	plan, err := h.session.Generate(r.Context(), tasks)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.dayPlanView(plan, tasks))
}

func (h *Handler) regeneratePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.session.Regenerate(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	_, tasks, _ := h.session.CurrentPlan()
	writeJSON(w, http.StatusOK, h.dayPlanView(plan, tasks))
}

func (h *Handler) updatePlan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskID   string `json:"task_id"`
		NewBlock string `json:"new_time_block"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	block, err := planner.ParseTimeBlock(body.NewBlock)
	if err != nil {
		h.writeError(w, err)
		return
	}

	plan, err := h.session.ApplyOverride(r.Context(), body.TaskID, block)
	if err != nil {
		h.writeError(w, err)
		return
	}
	_, tasks, _ := h.session.CurrentPlan()
	writeJSON(w, http.StatusOK, h.dayPlanView(plan, tasks))
}

// ----------------------
//   SOURCES / PROFILE
// ----------------------

func (h *Handler) listSources(w http.ResponseWriter, _ *http.Request) {
	sources := h.session.Sources()
	if sources == nil {
		sources = []planner.Source{}
	}
	writeJSON(w, http.StatusOK, sources)
}

func (h *Handler) untrustSource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sources/")
	id, ok := strings.CutSuffix(rest, "/untrust")
	if !ok || id == "" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err := h.session.MarkUntrusted(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "source marked untrusted"})
}

func (h *Handler) getProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, profileView(h.session.Profile()))
}

// ----------------------
//        HELPERS
// ----------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var pe *planner.Error
	if !errors.As(err, &pe) {
		h.log.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "internal",
			"message": "internal error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch pe.Kind {
	case planner.KindValidation, planner.KindEmptyTaskSet:
		status = http.StatusBadRequest
	case planner.KindNotFound:
		status = http.StatusNotFound
	}

	body := map[string]string{
		"error":   string(pe.Kind),
		"message": pe.Message,
	}
	if pe.Field != "" {
		body["field"] = pe.Field
	}
	writeJSON(w, status, body)
}
