package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/reminder"
	"github.com/manav03panchal/babyreminder/internal/service"
)

const maxBodySize = 64 << 10

// pathVar returns a decoded route variable. The router matches on the
// encoded path so names containing a slash still route.
func pathVar(r *http.Request, key string) string {
	v := mux.Vars(r)[key]
	if dec, err := url.PathUnescape(v); err == nil {
		return dec
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to write response", logging.KeyError, err)
	}
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrRuleNotFound),
		errors.Is(err, errors.ErrDeviceNotFound),
		errors.Is(err, errors.ErrWebhookNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrDaemonNotRunning):
		return http.StatusServiceUnavailable
	case errors.IsUserError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		logging.ErrorContext(r.Context(), "api request failed",
			"path", r.URL.Path, logging.KeyError, err)
	}
	writeJSON(w, status, service.NewErrorResponse(err))
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewUserError("Invalid request body: "+err.Error(), "Send a JSON object")
	}
	return nil
}

func (a *API) getHealth(w http.ResponseWriter, r *http.Request) {
	if a.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		return
	}
	writeJSON(w, http.StatusOK, a.health())
}

func (a *API) getMetrics(w http.ResponseWriter, r *http.Request) {
	if a.metrics == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, a.metrics())
}

func (a *API) getStatus(w http.ResponseWriter, r *http.Request) {
	st, err := a.backend.Status(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) postEvent(w http.ResponseWriter, r *http.Request) {
	var req service.EventRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	kind, err := reminder.ParseEventKind(req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ev := reminder.Event{Kind: kind, Device: req.Device, At: time.Now(), Source: "http"}
	if err := a.backend.Submit(r.Context(), ev); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"accepted": ev.String()})
}

func (a *API) postAction(w http.ResponseWriter, r *http.Request) {
	kind, err := reminder.ParseEventKind(pathVar(r, "action"))
	if err == nil && !kind.IsAction() {
		err = errors.InvalidInput(errors.ErrUnknownAction, "action", string(kind))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	ev := reminder.Event{Kind: kind, At: time.Now(), Source: "http"}
	if err := a.backend.Submit(r.Context(), ev); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"accepted": ev.String()})
}

func (a *API) listDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := a.backend.Devices(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if devices == nil {
		devices = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"devices": devices})
}

func (a *API) addDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.backend.AddDevice(r.Context(), req.Name); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) removeDevice(w http.ResponseWriter, r *http.Request) {
	if err := a.backend.RemoveDevice(r.Context(), pathVar(r, "name")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := a.backend.Rules(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

func (a *API) addRule(w http.ResponseWriter, r *http.Request) {
	var req service.RuleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rule, err := a.backend.AddRule(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (a *API) deleteRule(w http.ResponseWriter, r *http.Request) {
	rule, err := a.backend.DeleteRule(r.Context(), pathVar(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (a *API) migrateRules(w http.ResponseWriter, r *http.Request) {
	n, err := a.backend.MigrateRules(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"migrated": n})
}

func (a *API) checkWindow(w http.ResponseWriter, r *http.Request) {
	var at time.Time
	if s := r.URL.Query().Get("at"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, r, errors.InvalidInput(errors.ErrInvalidTime, "at", s))
			return
		}
		at = t.Local()
	}
	in, err := a.backend.CheckWindow(r.Context(), at)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"in_window": in})
}

func (a *API) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := a.backend.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) updateSettings(w http.ResponseWriter, r *http.Request) {
	var patch service.SettingsPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Language != nil && *patch.Language != "" {
		if _, err := service.ParseSetting("language", *patch.Language); err != nil {
			writeError(w, r, err)
			return
		}
	}
	s, err := a.backend.UpdateSettings(r.Context(), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) listWebhooks(w http.ResponseWriter, r *http.Request) {
	hooks, err := a.backend.Webhooks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"webhooks": hooks})
}

func (a *API) addWebhook(w http.ResponseWriter, r *http.Request) {
	var req service.WebhookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	wh, err := a.backend.AddWebhook(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wh)
}

func (a *API) removeWebhook(w http.ResponseWriter, r *http.Request) {
	if err := a.backend.RemoveWebhook(r.Context(), pathVar(r, "name")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) enableWebhook(w http.ResponseWriter, r *http.Request) {
	a.setWebhookEnabled(w, r, true)
}

func (a *API) disableWebhook(w http.ResponseWriter, r *http.Request) {
	a.setWebhookEnabled(w, r, false)
}

func (a *API) setWebhookEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	if err := a.backend.SetWebhookEnabled(r.Context(), pathVar(r, "name"), enabled); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) testWebhook(w http.ResponseWriter, r *http.Request) {
	res, err := a.backend.TestWebhook(r.Context(), pathVar(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
