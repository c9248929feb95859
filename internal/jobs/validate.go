package jobs

import "strings"

// ValidatePayload performs minimal validation on payloads before encoding.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	switch t {
	case JobCatalogSnapshot:
		var p CatalogSnapshotPayload
		switch v := payload.(type) {
		case CatalogSnapshotPayload:
			p = v
		case *CatalogSnapshotPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if strings.TrimSpace(p.Reason) == "" || p.RequestedAt.IsZero() {
			return ErrInvalidJobPayload
		}
		return nil

	default:
		return ErrInvalidJobType
	}
}
