package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/geocoder89/libraryhub/internal/domain/job"
)

func EncodePayload(t JobType, payload any) ([]byte, error) {
	if err := ValidatePayload(t, payload); err != nil {
		return nil, err
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals j.Payload into the typed payload for j.Type.
func DecodePayload(j job.Job) (any, error) {
	t := JobType(j.Type)
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch t {
	case JobCatalogSnapshot:
		var p CatalogSnapshotPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}

// NewCatalogSnapshotRequest builds the coalesced snapshot job request.
func NewCatalogSnapshotRequest(reason, requestID string) (job.CreateRequest, error) {
	payload := CatalogSnapshotPayload{
		Reason:      reason,
		RequestedAt: time.Now().UTC(),
		RequestID:   requestID,
	}

	b, err := EncodePayload(JobCatalogSnapshot, payload)
	if err != nil {
		return job.CreateRequest{}, err
	}

	key := CatalogSnapshotKey

	return job.CreateRequest{
		Type:           string(JobCatalogSnapshot),
		Payload:        b,
		MaxAttempts:    5,
		IdempotencyKey: &key,
	}, nil
}
