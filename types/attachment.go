package types

import "time"

// Attachment represents a file stored alongside a reservation, for example
// a signed form or a photo of the reserved item. The file contents live in
// object storage under ObjectKey; this record is the metadata row.
//
// Attachments have no ownership of their own: access is always scoped
// through the owning reservation.
type Attachment struct {
	// ID is the unique identifier of the attachment.
	ID int `json:"id" db:"id"`

	// ReservationID is the identifier of the reservation this file
	// belongs to.
	ReservationID int `json:"reservation_id" db:"reservation_id"`

	// FileName is the client-supplied name of the uploaded file.
	FileName string `json:"file_name" db:"file_name"`

	// ContentType is the MIME type reported at upload time.
	ContentType string `json:"content_type" db:"content_type"`

	// SizeBytes is the size of the stored object in bytes.
	SizeBytes int64 `json:"size_bytes" db:"size_bytes"`

	// ObjectKey is the key of the file in object storage.
	// It is never exposed in API responses.
	ObjectKey string `json:"-" db:"object_key"`

	// CreatedAt is the timestamp at which the attachment was uploaded.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
