// Package dto provides request and response types for the MirrorBox API.
// These types are used by huma to generate OpenAPI documentation and perform
// validation.
package dto

import (
	"strings"

	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

// ListResponse is a generic paginated list response.
type ListResponse[T any] struct {
	Items   []T  `json:"items" doc:"List of items"`
	Total   int  `json:"total" doc:"Total count across all pages"`
	Page    int  `json:"page" doc:"Current page number"`
	PerPage int  `json:"per_page" doc:"Items per page"`
	HasMore bool `json:"has_more" doc:"Whether more pages exist"`
}

// NewListResponse builds a page response from store results, mapping each
// item through convert.
func NewListResponse[D, T any](result *store.ListResult[D], params store.ListParams, convert func(D) T) ListResponse[T] {
	items := make([]T, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, convert(item))
	}
	return ListResponse[T]{
		Items:   items,
		Total:   result.Total,
		Page:    params.Page,
		PerPage: params.PerPage,
		HasMore: params.Offset()+len(result.Items) < result.Total,
	}
}

// ListQuery defines the query parameters shared by every entity list
// endpoint. Filter carries the JSON-encoded criteria object for the entity
// type; entity references inside it use "id" or "id:instanceId" form.
type ListQuery struct {
	Page      int    `query:"page" validate:"omitempty,gte=1" doc:"Page number (1-indexed)"`
	PerPage   int    `query:"per_page" validate:"omitempty,gte=1,lte=250" doc:"Items per page"`
	Sort      string `query:"sort" validate:"omitempty,max=50" doc:"Sort field, or \"random\""`
	Direction string `query:"direction" validate:"omitempty,oneof=asc desc ASC DESC" doc:"Sort direction"`
	Seed      uint64 `query:"seed" doc:"Random-sort seed; omit for a per-user day-stable default"`
	Filter    string `query:"filter" validate:"omitempty,max=8192" doc:"JSON-encoded filter criteria"`
}

// ListParams converts the query to store paging parameters.
func (q ListQuery) ListParams() store.ListParams {
	params := store.DefaultListParams()
	if q.Page > 0 {
		params.Page = q.Page
	}
	if q.PerPage > 0 {
		params.PerPage = q.PerPage
	}
	params.Sort = q.Sort
	if strings.EqualFold(q.Direction, "desc") {
		params.Direction = store.SortDesc
	}
	params.RandomSeed = q.Seed
	return params
}

// KeyParam is a path parameter for composite entity keys in "id" or
// "id:instanceId" form.
type KeyParam struct {
	Key string `path:"key" doc:"Entity key (\"id\" or \"id:instanceId\")"`
}

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for huma.
type MessageOutput struct {
	Body MessageResponse
}
