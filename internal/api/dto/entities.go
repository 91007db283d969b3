package dto

import (
	"time"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
)

// Key renders an entity key in "id:instanceId" form, or the bare ID when the
// instance is the wildcard.
func Key(k domain.EntityKey) string {
	if k.InstanceID == "" {
		return k.ID
	}
	return k.ID + ":" + k.InstanceID
}

// RefResponse is a shallow reference to a related entity. Full records are
// available through the entity's own endpoints.
type RefResponse struct {
	ID         string `json:"id" doc:"Entity ID within its source instance"`
	InstanceID string `json:"instance_id,omitempty" doc:"Source instance ID"`
	Key        string `json:"key" doc:"Composite key (\"id:instanceId\")"`
	Name       string `json:"name,omitempty" doc:"Display name"`
}

func newRef(k domain.EntityKey, name string) RefResponse {
	return RefResponse{ID: k.ID, InstanceID: k.InstanceID, Key: Key(k), Name: name}
}

func tagRefs(tags []*domain.Tag) []RefResponse {
	refs := make([]RefResponse, 0, len(tags))
	for _, t := range tags {
		refs = append(refs, newRef(t.Key(), t.Name))
	}
	return refs
}

func performerRefs(performers []*domain.Performer) []RefResponse {
	refs := make([]RefResponse, 0, len(performers))
	for _, p := range performers {
		refs = append(refs, newRef(p.Key(), p.Name))
	}
	return refs
}

func groupRefs(groups []*domain.Group) []RefResponse {
	refs := make([]RefResponse, 0, len(groups))
	for _, g := range groups {
		refs = append(refs, newRef(g.Key(), g.Name))
	}
	return refs
}

func galleryRefs(galleries []*domain.Gallery) []RefResponse {
	refs := make([]RefResponse, 0, len(galleries))
	for _, g := range galleries {
		refs = append(refs, newRef(g.Key(), g.Title))
	}
	return refs
}

func sceneRefs(scenes []*domain.Scene) []RefResponse {
	refs := make([]RefResponse, 0, len(scenes))
	for _, sc := range scenes {
		refs = append(refs, newRef(sc.Key(), sc.Title))
	}
	return refs
}

func studioRef(studio *domain.Studio) *RefResponse {
	if studio == nil {
		return nil
	}
	ref := newRef(studio.Key(), studio.Name)
	return &ref
}

// OverlayResponse carries the requesting user's private data for an entity.
type OverlayResponse struct {
	Rating    *int      `json:"rating,omitempty" doc:"Personal rating (0-100)"`
	Favorite  bool      `json:"favorite" doc:"Personal favorite flag"`
	ViewCount int       `json:"view_count" doc:"Personal view count"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last overlay update time"`
}

// NewOverlayResponse converts an overlay to its API shape.
func NewOverlayResponse(o *domain.Overlay) *OverlayResponse {
	if o == nil {
		return nil
	}
	return &OverlayResponse{
		Rating:    o.Rating,
		Favorite:  o.Favorite,
		ViewCount: o.ViewCount,
		UpdatedAt: o.UpdatedAt,
	}
}

// SceneResponse contains scene data in API responses.
type SceneResponse struct {
	ID         string     `json:"id" doc:"Scene ID within its source instance"`
	InstanceID string     `json:"instance_id" doc:"Source instance ID"`
	Key        string     `json:"key" doc:"Composite key (\"id:instanceId\")"`
	Title      string     `json:"title" doc:"Scene title"`
	Details    string     `json:"details,omitempty" doc:"Scene details (markdown)"`
	Date       *time.Time `json:"date,omitempty" doc:"Release date"`
	Rating     *int       `json:"rating,omitempty" doc:"Catalog rating (0-100)"`
	Organized  bool       `json:"organized" doc:"Remote organized flag"`
	Duration   float64    `json:"duration,omitempty" doc:"Duration in seconds"`
	URL        string     `json:"url,omitempty" doc:"Remote catalog URL"`

	Studio     *RefResponse  `json:"studio,omitempty" doc:"Owning studio"`
	Tags       []RefResponse `json:"tags" doc:"Attached tags"`
	Performers []RefResponse `json:"performers" doc:"Attached performers"`
	Groups     []RefResponse `json:"groups" doc:"Containing groups"`
	Galleries  []RefResponse `json:"galleries" doc:"Linked galleries"`

	Overlay   *OverlayResponse `json:"overlay,omitempty" doc:"Your personal data for this scene"`
	CreatedAt time.Time        `json:"created_at" doc:"First sync time"`
	UpdatedAt time.Time        `json:"updated_at" doc:"Last sync time"`
}

// NewSceneResponse converts a scene to its API shape.
func NewSceneResponse(sc *domain.Scene) SceneResponse {
	return SceneResponse{
		ID:         sc.ID,
		InstanceID: sc.InstanceID,
		Key:        Key(sc.Key()),
		Title:      sc.Title,
		Details:    sc.Details,
		Date:       sc.Date,
		Rating:     sc.Rating,
		Organized:  sc.Organized,
		Duration:   sc.Duration,
		URL:        sc.URL,
		Studio:     studioRef(sc.Studio),
		Tags:       tagRefs(sc.Tags),
		Performers: performerRefs(sc.Performers),
		Groups:     groupRefs(sc.Groups),
		Galleries:  galleryRefs(sc.Galleries),
		Overlay:    NewOverlayResponse(sc.Overlay),
		CreatedAt:  sc.CreatedAt,
		UpdatedAt:  sc.UpdatedAt,
	}
}

// ImageResponse contains image data in API responses.
type ImageResponse struct {
	ID         string     `json:"id" doc:"Image ID within its source instance"`
	InstanceID string     `json:"instance_id" doc:"Source instance ID"`
	Key        string     `json:"key" doc:"Composite key (\"id:instanceId\")"`
	Title      string     `json:"title" doc:"Image title"`
	Date       *time.Time `json:"date,omitempty" doc:"Release date"`
	Rating     *int       `json:"rating,omitempty" doc:"Catalog rating (0-100)"`
	Organized  bool       `json:"organized" doc:"Remote organized flag"`

	Studio     *RefResponse  `json:"studio,omitempty" doc:"Owning studio"`
	Tags       []RefResponse `json:"tags" doc:"Attached tags"`
	Performers []RefResponse `json:"performers" doc:"Attached performers"`
	Galleries  []RefResponse `json:"galleries" doc:"Containing galleries"`

	Overlay   *OverlayResponse `json:"overlay,omitempty" doc:"Your personal data for this image"`
	CreatedAt time.Time        `json:"created_at" doc:"First sync time"`
	UpdatedAt time.Time        `json:"updated_at" doc:"Last sync time"`
}

// NewImageResponse converts an image to its API shape.
func NewImageResponse(img *domain.Image) ImageResponse {
	return ImageResponse{
		ID:         img.ID,
		InstanceID: img.InstanceID,
		Key:        Key(img.Key()),
		Title:      img.Title,
		Date:       img.Date,
		Rating:     img.Rating,
		Organized:  img.Organized,
		Studio:     studioRef(img.Studio),
		Tags:       tagRefs(img.Tags),
		Performers: performerRefs(img.Performers),
		Galleries:  galleryRefs(img.Galleries),
		Overlay:    NewOverlayResponse(img.Overlay),
		CreatedAt:  img.CreatedAt,
		UpdatedAt:  img.UpdatedAt,
	}
}

// GalleryResponse contains gallery data in API responses.
type GalleryResponse struct {
	ID         string     `json:"id" doc:"Gallery ID within its source instance"`
	InstanceID string     `json:"instance_id" doc:"Source instance ID"`
	Key        string     `json:"key" doc:"Composite key (\"id:instanceId\")"`
	Title      string     `json:"title" doc:"Gallery title"`
	Details    string     `json:"details,omitempty" doc:"Gallery details (markdown)"`
	Date       *time.Time `json:"date,omitempty" doc:"Release date"`
	Rating     *int       `json:"rating,omitempty" doc:"Catalog rating (0-100)"`
	Organized  bool       `json:"organized" doc:"Remote organized flag"`
	ImageCount int        `json:"image_count" doc:"Remote-reported image count"`

	Studio     *RefResponse  `json:"studio,omitempty" doc:"Owning studio"`
	Tags       []RefResponse `json:"tags" doc:"Attached tags"`
	Performers []RefResponse `json:"performers" doc:"Attached performers"`
	Scenes     []RefResponse `json:"scenes" doc:"Linked scenes"`

	Overlay   *OverlayResponse `json:"overlay,omitempty" doc:"Your personal data for this gallery"`
	CreatedAt time.Time        `json:"created_at" doc:"First sync time"`
	UpdatedAt time.Time        `json:"updated_at" doc:"Last sync time"`
}

// NewGalleryResponse converts a gallery to its API shape.
func NewGalleryResponse(g *domain.Gallery) GalleryResponse {
	return GalleryResponse{
		ID:         g.ID,
		InstanceID: g.InstanceID,
		Key:        Key(g.Key()),
		Title:      g.Title,
		Details:    g.Details,
		Date:       g.Date,
		Rating:     g.Rating,
		Organized:  g.Organized,
		ImageCount: g.ImageCount,
		Studio:     studioRef(g.Studio),
		Tags:       tagRefs(g.Tags),
		Performers: performerRefs(g.Performers),
		Scenes:     sceneRefs(g.Scenes),
		Overlay:    NewOverlayResponse(g.Overlay),
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

// PerformerResponse contains performer data in API responses.
type PerformerResponse struct {
	ID             string     `json:"id" doc:"Performer ID within its source instance"`
	InstanceID     string     `json:"instance_id" doc:"Source instance ID"`
	Key            string     `json:"key" doc:"Composite key (\"id:instanceId\")"`
	Name           string     `json:"name" doc:"Performer name"`
	Disambiguation string     `json:"disambiguation,omitempty" doc:"Disambiguation for same-named performers"`
	Details        string     `json:"details,omitempty" doc:"Performer details (markdown)"`
	Birthdate      *time.Time `json:"birthdate,omitempty" doc:"Date of birth"`
	Rating         *int       `json:"rating,omitempty" doc:"Catalog rating (0-100)"`
	Favorite       bool       `json:"favorite" doc:"Remote favorite flag"`
	SceneCount     int        `json:"scene_count" doc:"Remote-reported scene count"`
	ImageCount     int        `json:"image_count" doc:"Remote-reported image count"`
	GalleryCount   int        `json:"gallery_count" doc:"Remote-reported gallery count"`

	Tags []RefResponse `json:"tags" doc:"Attached tags"`

	Overlay   *OverlayResponse `json:"overlay,omitempty" doc:"Your personal data for this performer"`
	CreatedAt time.Time        `json:"created_at" doc:"First sync time"`
	UpdatedAt time.Time        `json:"updated_at" doc:"Last sync time"`
}

// NewPerformerResponse converts a performer to its API shape.
func NewPerformerResponse(p *domain.Performer) PerformerResponse {
	return PerformerResponse{
		ID:             p.ID,
		InstanceID:     p.InstanceID,
		Key:            Key(p.Key()),
		Name:           p.Name,
		Disambiguation: p.Disambiguation,
		Details:        p.Details,
		Birthdate:      p.Birthdate,
		Rating:         p.Rating,
		Favorite:       p.Favorite,
		SceneCount:     p.SceneCount,
		ImageCount:     p.ImageCount,
		GalleryCount:   p.GalleryCount,
		Tags:           tagRefs(p.Tags),
		Overlay:        NewOverlayResponse(p.Overlay),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// StudioResponse contains studio data in API responses.
type StudioResponse struct {
	ID         string `json:"id" doc:"Studio ID within its source instance"`
	InstanceID string `json:"instance_id" doc:"Source instance ID"`
	Key        string `json:"key" doc:"Composite key (\"id:instanceId\")"`
	Name       string `json:"name" doc:"Studio name"`
	Details    string `json:"details,omitempty" doc:"Studio details (markdown)"`
	Rating     *int   `json:"rating,omitempty" doc:"Catalog rating (0-100)"`
	Favorite   bool   `json:"favorite" doc:"Remote favorite flag"`
	URL        string `json:"url,omitempty" doc:"Remote catalog URL"`
	SceneCount int    `json:"scene_count" doc:"Remote-reported scene count"`
	ImageCount int    `json:"image_count" doc:"Remote-reported image count"`

	Parent *RefResponse  `json:"parent,omitempty" doc:"Parent studio"`
	Tags   []RefResponse `json:"tags" doc:"Attached tags"`

	Overlay   *OverlayResponse `json:"overlay,omitempty" doc:"Your personal data for this studio"`
	CreatedAt time.Time        `json:"created_at" doc:"First sync time"`
	UpdatedAt time.Time        `json:"updated_at" doc:"Last sync time"`
}

// NewStudioResponse converts a studio to its API shape.
func NewStudioResponse(st *domain.Studio) StudioResponse {
	return StudioResponse{
		ID:         st.ID,
		InstanceID: st.InstanceID,
		Key:        Key(st.Key()),
		Name:       st.Name,
		Details:    st.Details,
		Rating:     st.Rating,
		Favorite:   st.Favorite,
		URL:        st.URL,
		SceneCount: st.SceneCount,
		ImageCount: st.ImageCount,
		Parent:     studioRef(st.Parent),
		Tags:       tagRefs(st.Tags),
		Overlay:    NewOverlayResponse(st.Overlay),
		CreatedAt:  st.CreatedAt,
		UpdatedAt:  st.UpdatedAt,
	}
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID          string `json:"id" doc:"Tag ID within its source instance"`
	InstanceID  string `json:"instance_id" doc:"Source instance ID"`
	Key         string `json:"key" doc:"Composite key (\"id:instanceId\")"`
	Name        string `json:"name" doc:"Tag name"`
	Description string `json:"description,omitempty" doc:"Tag description"`
	Favorite    bool   `json:"favorite" doc:"Remote favorite flag"`
	SceneCount  int    `json:"scene_count" doc:"Remote-reported scene count"`
	ImageCount  int    `json:"image_count" doc:"Remote-reported image count"`

	Parents []RefResponse `json:"parents" doc:"Parent tags"`

	Overlay   *OverlayResponse `json:"overlay,omitempty" doc:"Your personal data for this tag"`
	CreatedAt time.Time        `json:"created_at" doc:"First sync time"`
	UpdatedAt time.Time        `json:"updated_at" doc:"Last sync time"`
}

// NewTagResponse converts a tag to its API shape.
func NewTagResponse(t *domain.Tag) TagResponse {
	return TagResponse{
		ID:          t.ID,
		InstanceID:  t.InstanceID,
		Key:         Key(t.Key()),
		Name:        t.Name,
		Description: t.Description,
		Favorite:    t.Favorite,
		SceneCount:  t.SceneCount,
		ImageCount:  t.ImageCount,
		Parents:     tagRefs(t.Parents),
		Overlay:     NewOverlayResponse(t.Overlay),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// GroupResponse contains group data in API responses.
type GroupResponse struct {
	ID         string     `json:"id" doc:"Group ID within its source instance"`
	InstanceID string     `json:"instance_id" doc:"Source instance ID"`
	Key        string     `json:"key" doc:"Composite key (\"id:instanceId\")"`
	Name       string     `json:"name" doc:"Group name"`
	Synopsis   string     `json:"synopsis,omitempty" doc:"Group synopsis (markdown)"`
	Date       *time.Time `json:"date,omitempty" doc:"Release date"`
	Rating     *int       `json:"rating,omitempty" doc:"Catalog rating (0-100)"`
	SceneCount int        `json:"scene_count" doc:"Remote-reported scene count"`

	Studio     *RefResponse  `json:"studio,omitempty" doc:"Owning studio"`
	Tags       []RefResponse `json:"tags" doc:"Attached tags"`
	Containing []RefResponse `json:"containing" doc:"Groups containing this group"`

	Overlay   *OverlayResponse `json:"overlay,omitempty" doc:"Your personal data for this group"`
	CreatedAt time.Time        `json:"created_at" doc:"First sync time"`
	UpdatedAt time.Time        `json:"updated_at" doc:"Last sync time"`
}

// NewGroupResponse converts a group to its API shape.
func NewGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{
		ID:         g.ID,
		InstanceID: g.InstanceID,
		Key:        Key(g.Key()),
		Name:       g.Name,
		Synopsis:   g.Synopsis,
		Date:       g.Date,
		Rating:     g.Rating,
		SceneCount: g.SceneCount,
		Studio:     studioRef(g.Studio),
		Tags:       tagRefs(g.Tags),
		Containing: groupRefs(g.Containing),
		Overlay:    NewOverlayResponse(g.Overlay),
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

// RestrictionResponse contains a content restriction rule in API responses.
type RestrictionResponse struct {
	ID            string    `json:"id" doc:"Rule ID"`
	EntityType    string    `json:"entity_type" doc:"Restricted entity type"`
	Mode          string    `json:"mode" doc:"INCLUDE or EXCLUDE"`
	EntityIDs     []string  `json:"entity_ids" doc:"Bare entity IDs the rule targets"`
	RestrictEmpty bool      `json:"restrict_empty" doc:"Hide entities with no tags (EXCLUDE tag rules only)"`
	CreatedAt     time.Time `json:"created_at" doc:"Rule creation time"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last rule update time"`
}

// NewRestrictionResponse converts a restriction rule to its API shape.
func NewRestrictionResponse(r *domain.ContentRestriction) RestrictionResponse {
	return RestrictionResponse{
		ID:            r.ID,
		EntityType:    string(r.EntityType),
		Mode:          string(r.Mode),
		EntityIDs:     r.EntityIDs,
		RestrictEmpty: r.RestrictEmpty,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// UserResponse contains user account data in API responses.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Name      string    `json:"name" doc:"Display name"`
	IsAdmin   bool      `json:"is_admin" doc:"Admin flag"`
	CreatedAt time.Time `json:"created_at" doc:"Account creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// NewUserResponse converts a user to its API shape.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
