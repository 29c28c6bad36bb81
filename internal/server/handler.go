package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/benpsk/items-service/internal/item"
	"github.com/benpsk/items-service/internal/web/pages"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	msgInternal       = "Internal server error"
	msgNotFound       = "Item not found"
	msgNameRequired   = "Name is required"
	msgInvalidBody    = "Invalid request body"
	msgBodyTooLarge   = "Request body too large"
	msgRateLimited    = "Rate limit exceeded"
	healthHealthy     = "healthy"
	healthUnhealthy   = "unhealthy"
	databaseConnected = "connected"
	databaseDown      = "disconnected"
)

type handler struct {
	items   *item.Service
	appName string
	version string
	debug   bool
}

func newHandler(items *item.Service, appName, version string, debug bool) handler {
	return handler{items: items, appName: appName, version: version, debug: debug}
}

type rootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Docs    string `json:"docs"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version"`
}

type routeDoc struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var routeDocs = []routeDoc{
	{Method: http.MethodGet, Path: "/", Description: "Service descriptor"},
	{Method: http.MethodGet, Path: "/health", Description: "Database connectivity and version"},
	{Method: http.MethodGet, Path: "/metrics", Description: "Prometheus metrics"},
	{Method: http.MethodGet, Path: "/items", Description: "List items, newest first"},
	{Method: http.MethodPost, Path: "/items", Description: `Create an item from {"name", "description"}`},
	{Method: http.MethodDelete, Path: "/items/{id}", Description: "Delete an item"},
	{Method: http.MethodGet, Path: "/app", Description: "Browser client"},
}

func (h handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Message: h.appName,
		Status:  "running",
		Docs:    "/docs",
	})
}

func (h handler) docs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"routes": routeDocs})
}

// health always answers 200; the body carries the verdict for monitors that
// scrape it.
func (h handler) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: healthUnhealthy, Database: databaseDown, Version: h.version}
	if h.items.Healthy(r.Context()) {
		resp.Status = healthHealthy
		resp.Database = databaseConnected
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list items", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h handler) createItem(w http.ResponseWriter, r *http.Request) {
	var in item.CreateInput
	if err := decodeJSONWithLimit(w, r, &in, defaultRequestBodyLimitBytes); err != nil {
		switch {
		case isRequestBodyTooLarge(err):
			writeErrorJSON(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		case errors.Is(err, io.EOF):
			// An empty body has no name.
			writeErrorJSON(w, http.StatusBadRequest, msgNameRequired)
		default:
			writeErrorJSON(w, http.StatusBadRequest, msgInvalidBody)
		}
		return
	}

	created, err := h.items.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, item.ErrValidation) {
			writeErrorJSON(w, http.StatusBadRequest, validationMessage(err))
			return
		}
		h.internalError(w, r, "create item", err)
		return
	}

	log.Printf("Created item: %d - %s", created.ID, created.Name)
	writeJSON(w, http.StatusCreated, created)
}

func (h handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(chi.URLParam(r, "id"))
	if err != nil {
		// No row can have a non-numeric id.
		writeErrorJSON(w, http.StatusNotFound, msgNotFound)
		return
	}

	if err := h.items.Delete(r.Context(), id); err != nil {
		if errors.Is(err, item.ErrNotFound) {
			writeErrorJSON(w, http.StatusNotFound, msgNotFound)
			return
		}
		h.internalError(w, r, "delete item", err)
		return
	}

	log.Printf("Deleted item: %s", formatItemID(id))
	w.WriteHeader(http.StatusNoContent)
}

func (h handler) appPage(w http.ResponseWriter, r *http.Request) {
	model := pages.ItemsPageModel{AppName: h.appName, Version: h.version}
	items, err := h.items.List(r.Context())
	if err != nil {
		log.Printf("[%s] render app page: %v", middleware.GetReqID(r.Context()), err)
		model.Error = "Could not load items."
	}
	model.Items = items
	h.renderPage(w, r, pages.ItemsPage(model))
}

func (h handler) renderPage(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

// internalError logs err and hides it from the client. Driver text can carry
// hosts and SQL, so it is only logged in debug mode.
func (h handler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	reqID := middleware.GetReqID(r.Context())
	if h.debug {
		log.Printf("[%s] Error %s (%s %s): %v", reqID, op, r.Method, r.URL.Path, err)
	} else {
		log.Printf("[%s] Error %s: %s", reqID, op, errorClass(err))
	}
	writeErrorJSON(w, http.StatusInternalServerError, msgInternal)
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, item.ErrStorageUnavailable):
		return "storage unavailable"
	case errors.Is(err, item.ErrStorage):
		return "storage error"
	default:
		return "unexpected error"
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, item.ErrNameRequired):
		return msgNameRequired
	case errors.Is(err, item.ErrNameTooLong):
		return fmt.Sprintf("Name must be at most %d characters", item.MaxNameLength)
	case errors.Is(err, item.ErrDescriptionTooLong):
		return fmt.Sprintf("Description must be at most %d characters", item.MaxDescriptionLength)
	default:
		return "Invalid item"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
