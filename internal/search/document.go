// Package search provides full-text search across the mirrored catalog
// using Bleve. All entity types share one index with type discrimination,
// so a single query can surface scenes, performers, studios and the rest.
package search

import (
	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeScene     DocType = "scene"
	DocTypePerformer DocType = "performer"
	DocTypeStudio    DocType = "studio"
	DocTypeTag       DocType = "tag"
	DocTypeGroup     DocType = "group"
	DocTypeGallery   DocType = "gallery"
	DocTypeImage     DocType = "image"
)

// Document is the unified document structure for the Bleve index.
// Studio and performer names are denormalized into scene documents so one
// query matches "scenes by this performer" without a join at search time.
type Document struct {
	// DocID (type:id:instance) is the Bleve key; ID and InstanceID
	// reconstruct the entity key for detail lookups.
	ID         string  `json:"id"`
	InstanceID string  `json:"instance_id"`
	Type       DocType `json:"type"`

	// Primary searchable text: title for scenes/galleries/images, name
	// for everything else.
	Name string `json:"name"`

	Details string `json:"details,omitempty"`

	// Denormalized relation names.
	Studio     string   `json:"studio,omitempty"`
	Performers []string `json:"performers,omitempty"`
	Tags       []string `json:"tags,omitempty"`

	// Numeric fields for range queries and sorting.
	Rating   int     `json:"rating,omitempty"`
	Duration float64 `json:"duration,omitempty"` // seconds, scenes only

	// Timestamps for sorting. Unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// DocID returns the Bleve document key. Composite because the same remote
// ID may exist in several source instances.
func (d *Document) DocID() string {
	return string(d.Type) + ":" + d.ID + ":" + d.InstanceID
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":          d.ID,
		"instance_id": d.InstanceID,
		"type":        string(d.Type),
		"name":        d.Name,
		"created_at":  d.CreatedAt,
		"updated_at":  d.UpdatedAt,
	}

	if d.Details != "" {
		m["details"] = d.Details
	}
	if d.Studio != "" {
		m["studio"] = d.Studio
	}
	if len(d.Performers) > 0 {
		m["performers"] = d.Performers
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}
	if d.Duration > 0 {
		m["duration"] = d.Duration
	}

	return m
}

func tagNames(tags []*domain.Tag) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Name != "" {
			names = append(names, t.Name)
		}
	}
	return names
}

func performerNames(performers []*domain.Performer) []string {
	if len(performers) == 0 {
		return nil
	}
	names := make([]string, 0, len(performers))
	for _, p := range performers {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names
}

// SceneToDocument converts a scene, with its loaded relations, to a Document.
func SceneToDocument(s *domain.Scene) *Document {
	doc := &Document{
		ID:         s.ID,
		InstanceID: s.InstanceID,
		Type:       DocTypeScene,
		Name:       s.Title,
		Details:    s.Details,
		Performers: performerNames(s.Performers),
		Tags:       tagNames(s.Tags),
		Duration:   s.Duration,
		CreatedAt:  s.CreatedAt.UnixMilli(),
		UpdatedAt:  s.UpdatedAt.UnixMilli(),
	}
	if s.Studio != nil {
		doc.Studio = s.Studio.Name
	}
	if s.Rating != nil {
		doc.Rating = *s.Rating
	}
	return doc
}

// PerformerToDocument converts a performer to a Document.
func PerformerToDocument(p *domain.Performer) *Document {
	doc := &Document{
		ID:         p.ID,
		InstanceID: p.InstanceID,
		Type:       DocTypePerformer,
		Name:       p.Name,
		Details:    p.Details,
		Tags:       tagNames(p.Tags),
		CreatedAt:  p.CreatedAt.UnixMilli(),
		UpdatedAt:  p.UpdatedAt.UnixMilli(),
	}
	if p.Rating != nil {
		doc.Rating = *p.Rating
	}
	return doc
}

// StudioToDocument converts a studio to a Document.
func StudioToDocument(s *domain.Studio) *Document {
	doc := &Document{
		ID:         s.ID,
		InstanceID: s.InstanceID,
		Type:       DocTypeStudio,
		Name:       s.Name,
		Details:    s.Details,
		Tags:       tagNames(s.Tags),
		CreatedAt:  s.CreatedAt.UnixMilli(),
		UpdatedAt:  s.UpdatedAt.UnixMilli(),
	}
	if s.Rating != nil {
		doc.Rating = *s.Rating
	}
	return doc
}

// TagToDocument converts a tag to a Document.
func TagToDocument(t *domain.Tag) *Document {
	return &Document{
		ID:         t.ID,
		InstanceID: t.InstanceID,
		Type:       DocTypeTag,
		Name:       t.Name,
		Details:    t.Description,
		CreatedAt:  t.CreatedAt.UnixMilli(),
		UpdatedAt:  t.UpdatedAt.UnixMilli(),
	}
}

// GroupToDocument converts a group to a Document.
func GroupToDocument(g *domain.Group) *Document {
	doc := &Document{
		ID:         g.ID,
		InstanceID: g.InstanceID,
		Type:       DocTypeGroup,
		Name:       g.Name,
		Details:    g.Synopsis,
		Tags:       tagNames(g.Tags),
		CreatedAt:  g.CreatedAt.UnixMilli(),
		UpdatedAt:  g.UpdatedAt.UnixMilli(),
	}
	if g.Studio != nil {
		doc.Studio = g.Studio.Name
	}
	if g.Rating != nil {
		doc.Rating = *g.Rating
	}
	return doc
}

// GalleryToDocument converts a gallery to a Document.
func GalleryToDocument(g *domain.Gallery) *Document {
	doc := &Document{
		ID:         g.ID,
		InstanceID: g.InstanceID,
		Type:       DocTypeGallery,
		Name:       g.Title,
		Details:    g.Details,
		Performers: performerNames(g.Performers),
		Tags:       tagNames(g.Tags),
		CreatedAt:  g.CreatedAt.UnixMilli(),
		UpdatedAt:  g.UpdatedAt.UnixMilli(),
	}
	if g.Studio != nil {
		doc.Studio = g.Studio.Name
	}
	if g.Rating != nil {
		doc.Rating = *g.Rating
	}
	return doc
}

// ImageToDocument converts an image to a Document.
func ImageToDocument(img *domain.Image) *Document {
	doc := &Document{
		ID:         img.ID,
		InstanceID: img.InstanceID,
		Type:       DocTypeImage,
		Name:       img.Title,
		Performers: performerNames(img.Performers),
		Tags:       tagNames(img.Tags),
		CreatedAt:  img.CreatedAt.UnixMilli(),
		UpdatedAt:  img.UpdatedAt.UnixMilli(),
	}
	if img.Studio != nil {
		doc.Studio = img.Studio.Name
	}
	if img.Rating != nil {
		doc.Rating = *img.Rating
	}
	return doc
}
