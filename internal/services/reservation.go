package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/bookline/apiserver/internal/apperr"
	"github.com/bookline/apiserver/internal/events"
	"github.com/bookline/apiserver/internal/store"
	"github.com/bookline/apiserver/internal/validate"
	"github.com/bookline/apiserver/types"
)

// ReservationRepository defines persistence operations for reservations.
// Every operation is scoped by the owning user.
type ReservationRepository interface {
	List(ctx context.Context, filter store.ListFilter) ([]types.Reservation, int, error)
	Get(ctx context.Context, id, ownerID int) (types.Reservation, error)
	Create(ctx context.Context, res types.Reservation) (types.Reservation, error)
	Update(ctx context.Context, res types.Reservation) (types.Reservation, error)
	Delete(ctx context.Context, id, ownerID int) error
}

// ReservationService encapsulates reservation use-cases. When a publisher
// is configured, lifecycle changes are announced best-effort after the
// store write succeeds.
type ReservationService struct {
	repo      ReservationRepository
	publisher events.Publisher
	log       *zap.Logger
}

func NewReservationService(repo ReservationRepository, publisher events.Publisher, log *zap.Logger) *ReservationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationService{repo: repo, publisher: publisher, log: log}
}

func (s *ReservationService) List(ctx context.Context, filter store.ListFilter) ([]types.Reservation, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *ReservationService) Get(ctx context.Context, id, ownerID int) (types.Reservation, error) {
	res, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Reservation{}, apperr.New(apperr.KindNotFound, "Reservation not found")
		}
		return types.Reservation{}, err
	}
	return res, nil
}

// Create persists a new reservation owned by ownerID. The owner comes from
// the authenticated identity only; the request schema has no owner field,
// so nothing the client sends can influence it.
func (s *ReservationService) Create(ctx context.Context, ownerID int, req validate.ReservationCreate) (types.Reservation, error) {
	status := types.ReservationStatus(req.Status)
	if status == "" {
		status = types.StatusPending
	}

	res := types.Reservation{
		Name:            req.Name,
		Email:           normalizeEmail(req.Email),
		Phone:           req.Phone,
		ItemType:        req.ItemType,
		ItemName:        req.ItemName,
		ItemDescription: req.ItemDescription,
		StartAt:         req.StartTime(),
		EndAt:           req.EndTime(),
		Status:          status,
		Notes:           req.Notes,
		CreatedBy:       ownerID,
	}

	created, err := s.repo.Create(ctx, res)
	if err != nil {
		return types.Reservation{}, err
	}

	s.publish(ctx, events.ActionCreated, created)
	return created, nil
}

// Update applies a partial patch to an owned reservation. Instants are
// merged over the current record first, and the window rule end_at >
// start_at is re-checked against the merged values, not just the patch.
func (s *ReservationService) Update(ctx context.Context, id, ownerID int, patch validate.ReservationUpdate) (types.Reservation, error) {
	current, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Reservation{}, apperr.New(apperr.KindNotFound, "Reservation not found")
		}
		return types.Reservation{}, err
	}

	merged := applyPatch(current, patch)
	if !merged.EndAt.After(merged.StartAt) {
		return types.Reservation{}, validate.Issue("end_at", "must be after start_at")
	}

	updated, err := s.repo.Update(ctx, merged)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Reservation{}, apperr.New(apperr.KindNotFound, "Reservation not found")
		}
		return types.Reservation{}, err
	}

	s.publish(ctx, events.ActionUpdated, updated)
	return updated, nil
}

// Delete permanently removes an owned reservation and returns its last
// state.
func (s *ReservationService) Delete(ctx context.Context, id, ownerID int) (types.Reservation, error) {
	current, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Reservation{}, apperr.New(apperr.KindNotFound, "Reservation not found")
		}
		return types.Reservation{}, err
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Reservation{}, apperr.New(apperr.KindNotFound, "Reservation not found")
		}
		return types.Reservation{}, err
	}

	s.publish(ctx, events.ActionDeleted, current)
	return current, nil
}

func (s *ReservationService) publish(ctx context.Context, action events.Action, res types.Reservation) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, events.ReservationEvent{Action: action, Reservation: res}); err != nil {
		s.log.Warn("event publish failed",
			zap.String("action", string(action)),
			zap.Int("reservation_id", res.ID),
			zap.Error(err),
		)
	}
}

func applyPatch(res types.Reservation, patch validate.ReservationUpdate) types.Reservation {
	if patch.Name != nil {
		res.Name = *patch.Name
	}
	if patch.Email != nil {
		res.Email = normalizeEmail(*patch.Email)
	}
	if patch.Phone != nil {
		res.Phone = *patch.Phone
	}
	if patch.ItemType != nil {
		res.ItemType = *patch.ItemType
	}
	if patch.ItemName != nil {
		res.ItemName = *patch.ItemName
	}
	if patch.ItemDescription != nil {
		res.ItemDescription = *patch.ItemDescription
	}
	if t := patch.StartTime(); t != nil {
		res.StartAt = *t
	}
	if t := patch.EndTime(); t != nil {
		res.EndAt = *t
	}
	if patch.Status != nil {
		res.Status = types.ReservationStatus(*patch.Status)
	}
	if patch.Notes != nil {
		res.Notes = *patch.Notes
	}
	return res
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
