package persistence

import (
	"encoding/json"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// jsonbOrNil marshals a block for a jsonb column; a nil block stays NULL so
// the COALESCE upsert keeps the stored value.
func jsonbOrNil(block any) (any, error) {
	if block == nil {
		return nil, nil
	}
	buf, err := json.Marshal(block)
	if err != nil {
		return nil, gerrors.Wrap(err, "marshal block")
	}
	return buf, nil
}

// decodeJSONB unmarshals a nullable jsonb column into dst, leaving dst
// untouched for NULL.
func decodeJSONB(src []byte, dst any) error {
	if len(src) == 0 {
		return nil
	}
	return json.Unmarshal(src, dst)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
