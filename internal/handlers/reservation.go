package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bookline/apiserver/internal/apperr"
	"github.com/bookline/apiserver/internal/services"
	"github.com/bookline/apiserver/internal/store"
	"github.com/bookline/apiserver/internal/validate"
	"github.com/bookline/apiserver/types"
)

// ReservationHandler provides HTTP handlers for reservations. Every route
// here sits behind the token guard; the owner for each operation is the
// authenticated caller and nothing else.
type ReservationHandler struct {
	reservations *services.ReservationService
	log          *zap.Logger
}

// NewReservationHandler constructs a handler with the provided service.
func NewReservationHandler(reservations *services.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, log: log}
}

// ReservationRouter registers reservation routes on the given router.
func ReservationRouter(r chi.Router, reservations *services.ReservationService, log *zap.Logger) {
	handler := NewReservationHandler(reservations, log)

	r.Post("/", handler.Create)
	r.Get("/", handler.List)
	r.Route("/{reservationID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
	})
}

// ListMeta is the page metadata returned alongside a listing.
type ListMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ReservationListResponse is the paginated list payload.
type ReservationListResponse struct {
	Items []types.Reservation `json:"items"`
	Meta  ListMeta            `json:"meta"`
}

// DeletedResponse confirms a deletion.
type DeletedResponse struct {
	ID int `json:"id"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid token"))
		return
	}

	var req validate.ReservationCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, h.log, err)
		return
	}

	created, err := h.reservations.Create(r.Context(), identity.UserID, req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	writeData(w, http.StatusCreated, created)
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid token"))
		return
	}

	query, err := validate.ParseListQuery(r.URL.Query())
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	filter := store.ListFilter{
		OwnerID:   identity.UserID,
		Status:    query.Status,
		Email:     query.Email,
		Search:    query.Q,
		StartFrom: query.FromTime(),
		StartTo:   query.ToTime(),
		EndFrom:   query.EndFromTime(),
		EndTo:     query.EndToTime(),
		Page:      query.Page,
		Limit:     query.Limit,
		Sort:      query.Sort,
	}

	items, total, err := h.reservations.List(r.Context(), filter)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, ReservationListResponse{
		Items: items,
		Meta: ListMeta{
			Page:  query.Page,
			Limit: query.Limit,
			Total: total,
			Pages: store.Pages(total, query.Limit),
		},
	})
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid token"))
		return
	}

	id, err := parseReservationID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	reservation, err := h.reservations.Get(r.Context(), id, identity.UserID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, reservation)
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid token"))
		return
	}

	id, err := parseReservationID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var patch validate.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := patch.Validate(); err != nil {
		respondError(w, h.log, err)
		return
	}

	updated, err := h.reservations.Update(r.Context(), id, identity.UserID, patch)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, updated)
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		respondError(w, h.log, apperr.New(apperr.KindUnauthorized, "Invalid token"))
		return
	}

	id, err := parseReservationID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	if _, err := h.reservations.Delete(r.Context(), id, identity.UserID); err != nil {
		respondError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, DeletedResponse{ID: id})
}

// parseReservationID treats a malformed id the same as a missing record:
// an attacker probing with garbage ids learns nothing either way.
func parseReservationID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "reservationID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, apperr.New(apperr.KindNotFound, "Reservation not found")
	}
	return id, nil
}
