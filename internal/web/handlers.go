package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"alias-heaven-calculator/internal/buildinfo"
	"alias-heaven-calculator/internal/constants"
	"alias-heaven-calculator/internal/models"
	"alias-heaven-calculator/internal/roles"
	"alias-heaven-calculator/internal/session"
	errs "alias-heaven-calculator/pkg/errors"
	"alias-heaven-calculator/pkg/logging"
	"alias-heaven-calculator/pkg/metrics"
)

const (
	AppName    = "Alias' Heaven Calculator"
	cookieName = "ahc_session"
)

// Handler is the HTTP front end of the calculator. It owns no role state:
// every request reads the current calculator from the provider and the
// caller's input from the session store.
type Handler struct {
	calc      *roles.Provider
	sessions  *session.Store
	templates *Templates
	logger    *logging.Logger
	basePath  string
	build     buildinfo.Info

	mCalcs *metrics.Counter
}

// Options configures NewHandler
type Options struct {
	Provider  *roles.Provider
	Sessions  *session.Store
	Templates *Templates
	Logger    *logging.Logger
	Metrics   *metrics.Registry
	BasePath  string
	Build     buildinfo.Info
}

func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Default
	}
	if opts.BasePath == "" {
		opts.BasePath = "/"
	}
	return &Handler{
		calc:      opts.Provider,
		sessions:  opts.Sessions,
		templates: opts.Templates,
		logger:    opts.Logger.WithComponent("web"),
		basePath:  opts.BasePath,
		build:     opts.Build,
		mCalcs:    opts.Metrics.Counter("role_calculations_total", "Total number of role calculations served"),
	}
}

// Register mounts the calculator routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/", h.pageHandler).Methods("GET")
	r.HandleFunc("/", h.submitHandler).Methods("POST")
	r.HandleFunc("/reset", h.resetHandler).Methods("POST")
	r.HandleFunc("/info", h.infoHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/calculate", h.calculateHandler).Methods("POST")
	api.HandleFunc("/session", h.getSessionHandler).Methods("GET")
	api.HandleFunc("/session", h.patchSessionHandler).Methods("PATCH")
	api.HandleFunc("/session", h.deleteSessionHandler).Methods("DELETE")
	api.HandleFunc("/roles", h.rolesHandler).Methods("GET")
	api.HandleFunc("/info", h.apiInfoHandler).Methods("GET")
}

func (h *Handler) compute(in models.Input) roles.Result {
	h.mCalcs.Inc(1)
	return h.calc.Calculator().Compute(in)
}

// sessionFor returns the caller's session id, starting a new session (and
// setting the cookie) when the cookie is missing or points at a swept session.
func (h *Handler) sessionFor(w http.ResponseWriter, r *http.Request) (string, models.Input) {
	if c, err := r.Cookie(cookieName); err == nil {
		if in, ok := h.sessions.Get(c.Value); ok {
			return c.Value, in
		}
	}
	id := h.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     h.basePath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, models.Input{}
}

type pageData struct {
	AppName  string
	BasePath string
	Input    models.Input
	Result   roles.Result
	Roles    roles.Config
	Build    buildinfo.Info
	Error    string
}

func (h *Handler) pageHandler(w http.ResponseWriter, r *http.Request) {
	_, in := h.sessionFor(w, r)
	calc := h.calc.Calculator()
	h.mCalcs.Inc(1)
	data := pageData{
		AppName:  AppName,
		BasePath: h.basePath,
		Input:    in,
		Result:   calc.Compute(in),
		Roles:    calc.Config(),
	}
	if err := h.templates.render(w, "calculator.tmpl", data); err != nil {
		h.logger.ErrorContext(r.Context(), "render calculator page", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

// submitHandler takes the whole form. Unchecked checkboxes are absent from
// the form, so both flags are always written.
func (h *Handler) submitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	patch, err := patchFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, _ := h.sessionFor(w, r)
	h.sessions.Update(id, func(in *models.Input) { in.Apply(patch) })
	http.Redirect(w, r, h.basePath, http.StatusSeeOther)
}

func (h *Handler) resetHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := h.sessionFor(w, r)
	h.sessions.Update(id, func(in *models.Input) { *in = models.Input{} })
	http.Redirect(w, r, h.basePath, http.StatusSeeOther)
}

func (h *Handler) infoHandler(w http.ResponseWriter, r *http.Request) {
	data := pageData{AppName: AppName, BasePath: h.basePath, Build: h.build}
	if err := h.templates.render(w, "info.tmpl", data); err != nil {
		h.logger.ErrorContext(r.Context(), "render info page", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

type calculationResponse struct {
	SessionID string       `json:"session_id,omitempty"`
	Input     models.Input `json:"input"`
	Result    roles.Result `json:"result"`
	Lines     []string     `json:"lines"`
}

func (h *Handler) respond(w http.ResponseWriter, id string, in models.Input) {
	res := h.compute(in)
	writeJSON(w, http.StatusOK, calculationResponse{SessionID: id, Input: in, Result: res, Lines: res.Lines()})
}

// calculateHandler is stateless: the body is an Input, negatives are clamped.
func (h *Handler) calculateHandler(w http.ResponseWriter, r *http.Request) {
	var in models.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.respond(w, "", in.Clamp())
}

func (h *Handler) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	id, in := h.sessionFor(w, r)
	h.respond(w, id, in)
}

func (h *Handler) patchSessionHandler(w http.ResponseWriter, r *http.Request) {
	var p models.Patch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, _ := h.sessionFor(w, r)
	in, _ := h.sessions.Update(id, func(in *models.Input) { in.Apply(p) })
	h.respond(w, id, in)
}

func (h *Handler) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(cookieName); err == nil {
		h.sessions.Delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: h.basePath, MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) rolesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.calc.Calculator().Config())
}

func (h *Handler) apiInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":     AppName,
		"build":    h.build,
		"built_on": h.build.BuiltOn(),
	})
}

var intFields = []string{"general_messages", "counting_messages", "quacks", "negacies_converted", "negacies_earned"}

func patchFromForm(r *http.Request) (models.Patch, error) {
	vals := make(map[string]*int64, len(intFields))
	for _, name := range intFields {
		raw := strings.TrimSpace(r.PostForm.Get(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return models.Patch{}, errs.NewValidation("web.patchFromForm", name+" must be a whole number", err)
		}
		vals[name] = &v
	}
	secret := r.PostForm.Get("secret_area") != ""
	toNegacy := r.PostForm.Get("legacy_to_negacy") != ""
	return models.Patch{
		GeneralMessages:   vals["general_messages"],
		CountingMessages:  vals["counting_messages"],
		Quacks:            vals["quacks"],
		NegaciesConverted: vals["negacies_converted"],
		NegaciesEarned:    vals["negacies_earned"],
		SecretArea:        &secret,
		LegacyToNegacy:    &toNegacy,
	}, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, constants.MaxJSONBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.NewValidation("web.decodeJSON", "invalid JSON body", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"status": "error", "message": err.Error()})
}
