package store

import "github.com/mirrorboxapp/mirrorbox-server/internal/filter"

// SceneFilter carries the optional criteria of a scene list query. Nil fields
// impose no constraint. MyRating, MyFavorite and ViewCount apply to the
// requesting user's overlay; Rating applies to the remote catalog rating.
type SceneFilter struct {
	Title   *filter.StringCriterion `json:"title,omitempty"`
	Details *filter.StringCriterion `json:"details,omitempty"`
	URL     *filter.StringCriterion `json:"url,omitempty"`

	Date      *filter.DateCriterion `json:"date,omitempty"`
	Rating    *filter.IntCriterion  `json:"rating,omitempty"`
	Duration  *filter.IntCriterion  `json:"duration,omitempty"`
	Organized *bool                 `json:"organized,omitempty"`

	MyRating   *filter.IntCriterion `json:"my_rating,omitempty"`
	MyFavorite *bool                `json:"my_favorite,omitempty"`
	ViewCount  *filter.IntCriterion `json:"view_count,omitempty"`

	Tags          *filter.MultiCriterion `json:"tags,omitempty"`
	Performers    *filter.MultiCriterion `json:"performers,omitempty"`
	PerformerTags *filter.MultiCriterion `json:"performer_tags,omitempty"`
	Groups        *filter.MultiCriterion `json:"groups,omitempty"`
	Galleries     *filter.MultiCriterion `json:"galleries,omitempty"`
	Studios       *filter.MultiCriterion `json:"studios,omitempty"`
}

// ImageFilter carries the optional criteria of an image list query.
type ImageFilter struct {
	Title *filter.StringCriterion `json:"title,omitempty"`

	Date      *filter.DateCriterion `json:"date,omitempty"`
	Rating    *filter.IntCriterion  `json:"rating,omitempty"`
	Organized *bool                 `json:"organized,omitempty"`

	MyRating   *filter.IntCriterion `json:"my_rating,omitempty"`
	MyFavorite *bool                `json:"my_favorite,omitempty"`
	ViewCount  *filter.IntCriterion `json:"view_count,omitempty"`

	Tags          *filter.MultiCriterion `json:"tags,omitempty"`
	Performers    *filter.MultiCriterion `json:"performers,omitempty"`
	PerformerTags *filter.MultiCriterion `json:"performer_tags,omitempty"`
	Galleries     *filter.MultiCriterion `json:"galleries,omitempty"`
	Studios       *filter.MultiCriterion `json:"studios,omitempty"`
}

// GalleryFilter carries the optional criteria of a gallery list query.
type GalleryFilter struct {
	Title   *filter.StringCriterion `json:"title,omitempty"`
	Details *filter.StringCriterion `json:"details,omitempty"`

	Date      *filter.DateCriterion `json:"date,omitempty"`
	Rating    *filter.IntCriterion  `json:"rating,omitempty"`
	Organized *bool                 `json:"organized,omitempty"`

	MyRating   *filter.IntCriterion `json:"my_rating,omitempty"`
	MyFavorite *bool                `json:"my_favorite,omitempty"`

	Tags          *filter.MultiCriterion `json:"tags,omitempty"`
	Performers    *filter.MultiCriterion `json:"performers,omitempty"`
	PerformerTags *filter.MultiCriterion `json:"performer_tags,omitempty"`
	Scenes        *filter.MultiCriterion `json:"scenes,omitempty"`
	Studios       *filter.MultiCriterion `json:"studios,omitempty"`
}

// PerformerFilter carries the optional criteria of a performer list query.
type PerformerFilter struct {
	Name    *filter.StringCriterion `json:"name,omitempty"`
	Details *filter.StringCriterion `json:"details,omitempty"`

	Birthdate *filter.DateCriterion `json:"birthdate,omitempty"`
	Rating    *filter.IntCriterion  `json:"rating,omitempty"`

	MyRating   *filter.IntCriterion `json:"my_rating,omitempty"`
	MyFavorite *bool                `json:"my_favorite,omitempty"`

	Tags *filter.MultiCriterion `json:"tags,omitempty"`
}

// StudioFilter carries the optional criteria of a studio list query.
type StudioFilter struct {
	Name    *filter.StringCriterion `json:"name,omitempty"`
	Details *filter.StringCriterion `json:"details,omitempty"`
	URL     *filter.StringCriterion `json:"url,omitempty"`

	Rating *filter.IntCriterion `json:"rating,omitempty"`

	MyRating   *filter.IntCriterion `json:"my_rating,omitempty"`
	MyFavorite *bool                `json:"my_favorite,omitempty"`

	Tags    *filter.MultiCriterion `json:"tags,omitempty"`
	Parents *filter.MultiCriterion `json:"parents,omitempty"`
}

// TagFilter carries the optional criteria of a tag list query.
type TagFilter struct {
	Name        *filter.StringCriterion `json:"name,omitempty"`
	Description *filter.StringCriterion `json:"description,omitempty"`

	MyFavorite *bool `json:"my_favorite,omitempty"`

	Parents *filter.MultiCriterion `json:"parents,omitempty"`
}

// GroupFilter carries the optional criteria of a group list query.
type GroupFilter struct {
	Name     *filter.StringCriterion `json:"name,omitempty"`
	Synopsis *filter.StringCriterion `json:"synopsis,omitempty"`

	Date   *filter.DateCriterion `json:"date,omitempty"`
	Rating *filter.IntCriterion  `json:"rating,omitempty"`

	MyRating   *filter.IntCriterion `json:"my_rating,omitempty"`
	MyFavorite *bool                `json:"my_favorite,omitempty"`

	Tags       *filter.MultiCriterion `json:"tags,omitempty"`
	Scenes     *filter.MultiCriterion `json:"scenes,omitempty"`
	Containing *filter.MultiCriterion `json:"containing,omitempty"`
	Studios    *filter.MultiCriterion `json:"studios,omitempty"`
}
