package api

import (
	"encoding/json/v2"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/filter"
)

// decodeFilter parses the JSON-encoded filter query parameter into the
// entity's criteria struct. An empty string yields the zero filter.
func decodeFilter[F any](raw string) (F, error) {
	var f F
	if raw == "" {
		return f, nil
	}
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return f, huma.Error400BadRequest("Invalid filter JSON", err)
	}
	return f, nil
}

// parseKey parses a path key in "id" or "id:instanceId" form. A bare ID is a
// wildcard-instance key matching the entity in any source.
func parseKey(raw string) (domain.EntityKey, error) {
	if raw == "" {
		return domain.EntityKey{}, huma.Error400BadRequest("Missing entity key")
	}
	keys, _ := filter.ParseCompositeValues([]string{raw})
	return keys[0], nil
}
