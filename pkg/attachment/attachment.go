// Package attachment defines the attachment model shared by the codec, the
// conversion service and the storage backends.
package attachment

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Attachment is a binary or text artifact bound to a test asset. Data
// crosses the wire as base64 text inside JSON; raw bytes are never placed in
// JSON envelopes. Conversion never mutates an attachment: it produces a new
// one with a fresh id.
type Attachment struct {
	ID          string    `json:"id" bson:"_id"`
	OwnerID     string    `json:"ownerId" bson:"ownerId"`
	FileName    string    `json:"fileName" bson:"fileName"`
	ContentType string    `json:"contentType" bson:"contentType"`
	Size        int64     `json:"size" bson:"size"`
	Data        string    `json:"data" bson:"data"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// New creates an attachment with a fresh id, encoding the payload and
// keeping the size invariant (Size == len(decoded data)).
func New(ownerID, fileName, contentType string, payload []byte) Attachment {
	return Attachment{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(payload)),
		Data:        base64.StdEncoding.EncodeToString(payload),
		CreatedAt:   time.Now().UTC(),
	}
}

// Decoded returns the raw payload bytes. A decode failure is fatal for the
// attachment's conversion: there is no safe fallback for corrupt binary
// data.
func (a *Attachment) Decoded() ([]byte, error) {
	payload, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("error decoding attachment %s data: %w", a.ID, err)
	}
	return payload, nil
}
