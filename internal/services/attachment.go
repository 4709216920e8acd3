package services

import (
	"context"
	"errors"
	"io"
	"path"

	"go.uber.org/zap"

	"github.com/bookline/apiserver/internal/apperr"
	"github.com/bookline/apiserver/internal/storage"
	"github.com/bookline/apiserver/internal/store"
	"github.com/bookline/apiserver/types"
)

// AttachmentRepository defines persistence operations for attachment
// metadata rows.
type AttachmentRepository interface {
	Create(ctx context.Context, att types.Attachment) (types.Attachment, error)
	Get(ctx context.Context, id, reservationID int) (types.Attachment, error)
	ListByReservation(ctx context.Context, reservationID int) ([]types.Attachment, error)
	Delete(ctx context.Context, id, reservationID int) error
}

// AttachmentService stores reservation attachments: metadata in the
// relational store, contents in object storage. Access always goes through
// the owning reservation, so attachments inherit its ownership scoping.
type AttachmentService struct {
	attachments  AttachmentRepository
	reservations ReservationRepository
	files        *storage.Storage
	log          *zap.Logger
}

func NewAttachmentService(
	attachments AttachmentRepository,
	reservations ReservationRepository,
	files *storage.Storage,
	log *zap.Logger,
) *AttachmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AttachmentService{
		attachments:  attachments,
		reservations: reservations,
		files:        files,
		log:          log,
	}
}

// Enabled reports whether an object-storage backend is configured.
func (s *AttachmentService) Enabled() bool {
	return s.files != nil
}

func (s *AttachmentService) ownedReservation(ctx context.Context, reservationID, ownerID int) error {
	if _, err := s.reservations.Get(ctx, reservationID, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "Reservation not found")
		}
		return err
	}
	return nil
}

// Upload stores the file contents and records the metadata row. The object
// is removed again when the row cannot be written.
func (s *AttachmentService) Upload(
	ctx context.Context,
	reservationID, ownerID int,
	fileName, contentType string,
	r io.Reader,
	size int64,
) (types.Attachment, error) {
	if err := s.ownedReservation(ctx, reservationID, ownerID); err != nil {
		return types.Attachment{}, err
	}

	key := storage.AttachmentKey(reservationID, fileName)
	if err := s.files.Put(ctx, key, r, size, contentType); err != nil {
		return types.Attachment{}, err
	}

	att, err := s.attachments.Create(ctx, types.Attachment{
		ReservationID: reservationID,
		FileName:      path.Base(fileName),
		ContentType:   contentType,
		SizeBytes:     size,
		ObjectKey:     key,
	})
	if err != nil {
		if cleanupErr := s.files.Delete(ctx, key); cleanupErr != nil {
			s.log.Warn("orphaned attachment object", zap.String("key", key), zap.Error(cleanupErr))
		}
		return types.Attachment{}, err
	}
	return att, nil
}

// List returns the attachments of an owned reservation.
func (s *AttachmentService) List(ctx context.Context, reservationID, ownerID int) ([]types.Attachment, error) {
	if err := s.ownedReservation(ctx, reservationID, ownerID); err != nil {
		return nil, err
	}
	return s.attachments.ListByReservation(ctx, reservationID)
}

// Open returns the metadata and a reader over the file contents of one
// attachment of an owned reservation. The caller closes the reader.
func (s *AttachmentService) Open(ctx context.Context, attachmentID, reservationID, ownerID int) (types.Attachment, io.ReadCloser, error) {
	if err := s.ownedReservation(ctx, reservationID, ownerID); err != nil {
		return types.Attachment{}, nil, err
	}

	att, err := s.attachments.Get(ctx, attachmentID, reservationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Attachment{}, nil, apperr.New(apperr.KindNotFound, "Attachment not found")
		}
		return types.Attachment{}, nil, err
	}

	reader, err := s.files.Get(ctx, att.ObjectKey)
	if err != nil {
		return types.Attachment{}, nil, err
	}
	return att, reader, nil
}

// Delete removes the metadata row and then the stored object. A failed
// object delete is logged, not surfaced: the row is gone and the blob is an
// operator cleanup concern.
func (s *AttachmentService) Delete(ctx context.Context, attachmentID, reservationID, ownerID int) error {
	if err := s.ownedReservation(ctx, reservationID, ownerID); err != nil {
		return err
	}

	att, err := s.attachments.Get(ctx, attachmentID, reservationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "Attachment not found")
		}
		return err
	}

	if err := s.attachments.Delete(ctx, attachmentID, reservationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "Attachment not found")
		}
		return err
	}

	if err := s.files.Delete(ctx, att.ObjectKey); err != nil {
		s.log.Warn("orphaned attachment object", zap.String("key", att.ObjectKey), zap.Error(err))
	}
	return nil
}
