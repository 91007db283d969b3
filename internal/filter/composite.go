package filter

import (
	"strings"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
)

// ParseCompositeValues parses filter values that may reference entities in
// "id" or "id:instanceId" form. Only the first colon separates the two
// parts, so instance identifiers containing colons survive intact. The bool
// result reports whether any value carried an explicit instance qualifier; a
// bare value parses to a wildcard-instance key.
func ParseCompositeValues(values []string) ([]domain.EntityKey, bool) {
	keys := make([]domain.EntityKey, 0, len(values))
	hasInstanceIDs := false
	for _, v := range values {
		id, instanceID, found := strings.Cut(v, ":")
		if found && instanceID != "" {
			hasInstanceIDs = true
			keys = append(keys, domain.EntityKey{ID: id, InstanceID: instanceID})
			continue
		}
		keys = append(keys, domain.EntityKey{ID: id})
	}
	return keys, hasInstanceIDs
}
