package domain

import "time"

// RestrictionMode selects how a restriction's entity set is applied.
type RestrictionMode string

// Restriction modes. INCLUDE rules act as whitelists and are always applied
// before EXCLUDE rules, regardless of storage order.
const (
	RestrictionInclude RestrictionMode = "INCLUDE"
	RestrictionExclude RestrictionMode = "EXCLUDE"
)

// RestrictableTypes lists the entity types a restriction may target.
var RestrictableTypes = []EntityType{
	EntityTag, EntityStudio, EntityPerformer, EntityGroup, EntityGallery,
}

// ContentRestriction is a per-user visibility rule. EntityIDs are bare remote
// IDs; a rule matches an entity in any source instance.
//
// RestrictEmpty only has meaning on EXCLUDE rules for tags: entities carrying
// no tags at all cannot be positively matched against the excluded set, so
// they are conservatively hidden too.
type ContentRestriction struct {
	ID            string
	UserID        string
	EntityType    EntityType
	Mode          RestrictionMode
	EntityIDs     []string
	RestrictEmpty bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IDSet returns the rule's entity IDs as a set keyed by bare ID.
func (r *ContentRestriction) IDSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.EntityIDs))
	for _, id := range r.EntityIDs {
		set[id] = struct{}{}
	}
	return set
}
