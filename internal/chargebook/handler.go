package chargebook

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/avaldivia/document-routing/internal"
	"github.com/avaldivia/document-routing/internal/transport"
	"github.com/avaldivia/document-routing/pkg/logger"
)

type ServiceAPI interface {
	GetEntries(actor internal.Actor, limit, offset int) ([]*Entry, error)
	GetEntryByID(id int64, actor internal.Actor) (*Entry, error)
	DeleteEntry(id int64, actor internal.Actor) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)
	entries, err := h.Service.GetEntries(actor, limit, offset)
	if err != nil {
		h.Logger.Error("ListEntries: service error", "error", err)
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	entry, err := h.Service.GetEntryByID(id, actor)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	if err := h.Service.DeleteEntry(id, actor); err != nil {
		h.Logger.Error("DeleteEntry: service error", "error", err, "entry_id", id)
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case ErrEntryNotFound:
		h.WriteError(w, http.StatusNotFound, "charge book entry not found")
	case ErrNotOwnerDepartment:
		h.WriteError(w, http.StatusForbidden, err.Error())
	case ErrDeleteWindowClosed:
		h.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.HandleServiceError(w, err)
	}
}

func (h *Handler) idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
