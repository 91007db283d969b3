package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/api/dto"
	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

func (s *Server) registerImageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listImages",
		Method:      http.MethodGet,
		Path:        "/api/v1/images",
		Summary:     "List images",
		Description: "Returns a page of images visible to the current user, filtered by the optional criteria",
		Tags:        []string{"Images"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleListImages)

	huma.Register(s.api, huma.Operation{
		OperationID: "getImage",
		Method:      http.MethodGet,
		Path:        "/api/v1/images/{key}",
		Summary:     "Get image",
		Description: "Returns an image by key (\"id\" or \"id:instanceId\")",
		Tags:        []string{"Images"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetImage)
}

// ListImagesInput contains parameters for listing images.
type ListImagesInput struct {
	dto.ListQuery
}

// ListImagesOutput wraps a page of images for huma.
type ListImagesOutput struct {
	Body dto.ListResponse[dto.ImageResponse]
}

// GetImageInput contains parameters for getting an image.
type GetImageInput struct {
	dto.KeyParam
}

// ImageOutput wraps a single image for huma.
type ImageOutput struct {
	Body dto.ImageResponse
}

func (s *Server) handleListImages(ctx context.Context, input *ListImagesInput) (*ListImagesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	f, err := decodeFilter[store.ImageFilter](input.Filter)
	if err != nil {
		return nil, err
	}

	params := input.ListParams()
	result, err := s.services.Browse.ListImages(ctx, userID, f, params)
	if err != nil {
		return nil, err
	}

	return &ListImagesOutput{Body: dto.NewListResponse(result, params, dto.NewImageResponse)}, nil
}

func (s *Server) handleGetImage(ctx context.Context, input *GetImageInput) (*ImageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	key, err := parseKey(input.Key)
	if err != nil {
		return nil, err
	}

	images, err := s.services.Browse.GetImages(ctx, userID, []domain.EntityKey{key})
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, huma.Error404NotFound("Image not found")
	}

	return &ImageOutput{Body: dto.NewImageResponse(images[0])}, nil
}
