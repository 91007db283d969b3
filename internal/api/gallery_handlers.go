package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/api/dto"
	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

func (s *Server) registerGalleryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGalleries",
		Method:      http.MethodGet,
		Path:        "/api/v1/galleries",
		Summary:     "List galleries",
		Description: "Returns a page of galleries visible to the current user, filtered by the optional criteria",
		Tags:        []string{"Galleries"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleListGalleries)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGallery",
		Method:      http.MethodGet,
		Path:        "/api/v1/galleries/{key}",
		Summary:     "Get gallery",
		Description: "Returns a gallery by key (\"id\" or \"id:instanceId\")",
		Tags:        []string{"Galleries"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetGallery)
}

// ListGalleriesInput contains parameters for listing galleries.
type ListGalleriesInput struct {
	dto.ListQuery
}

// ListGalleriesOutput wraps a page of galleries for huma.
type ListGalleriesOutput struct {
	Body dto.ListResponse[dto.GalleryResponse]
}

// GetGalleryInput contains parameters for getting a gallery.
type GetGalleryInput struct {
	dto.KeyParam
}

// GalleryOutput wraps a single gallery for huma.
type GalleryOutput struct {
	Body dto.GalleryResponse
}

func (s *Server) handleListGalleries(ctx context.Context, input *ListGalleriesInput) (*ListGalleriesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	f, err := decodeFilter[store.GalleryFilter](input.Filter)
	if err != nil {
		return nil, err
	}

	params := input.ListParams()
	result, err := s.services.Browse.ListGalleries(ctx, userID, f, params)
	if err != nil {
		return nil, err
	}

	return &ListGalleriesOutput{Body: dto.NewListResponse(result, params, dto.NewGalleryResponse)}, nil
}

func (s *Server) handleGetGallery(ctx context.Context, input *GetGalleryInput) (*GalleryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	key, err := parseKey(input.Key)
	if err != nil {
		return nil, err
	}

	galleries, err := s.services.Browse.GetGalleries(ctx, userID, []domain.EntityKey{key})
	if err != nil {
		return nil, err
	}
	if len(galleries) == 0 {
		return nil, huma.Error404NotFound("Gallery not found")
	}

	return &GalleryOutput{Body: dto.NewGalleryResponse(galleries[0])}, nil
}
