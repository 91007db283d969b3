package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/api/dto"
	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/service"
)

func (s *Server) registerSyncRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "startSyncRun",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/runs",
		Summary:     "Start sync run",
		Description: "Begins a sync pass for one remote instance (admin only)",
		Tags:        []string{"Sync"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleStartSyncRun)

	huma.Register(s.api, huma.Operation{
		OperationID: "ingestScenes",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/runs/{id}/scenes",
		Summary:     "Ingest scenes",
		Description: "Upserts one batch of scenes from the remote feed (admin only)",
		Tags:        []string{"Sync"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleIngestScenes)

	huma.Register(s.api, huma.Operation{
		OperationID: "ingestImages",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/runs/{id}/images",
		Summary:     "Ingest images",
		Description: "Upserts one batch of images from the remote feed (admin only)",
		Tags:        []string{"Sync"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleIngestImages)

	huma.Register(s.api, huma.Operation{
		OperationID: "ingestGalleries",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/runs/{id}/galleries",
		Summary:     "Ingest galleries",
		Description: "Upserts one batch of galleries from the remote feed (admin only)",
		Tags:        []string{"Sync"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleIngestGalleries)

	huma.Register(s.api, huma.Operation{
		OperationID: "ingestPerformers",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/runs/{id}/performers",
		Summary:     "Ingest performers",
		Description: "Upserts one batch of performers from the remote feed (admin only)",
		Tags:        []string{"Sync"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleIngestPerformers)

	huma.Register(s.api, huma.Operation{
		OperationID: "ingestStudios",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/runs/{id}/studios",
		Summary:     "Ingest studios",
		Description: "Upserts one batch of studios from the remote feed (admin only)",
		Tags:        []string{"Sync"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleIngestStudios)

	huma.Register(s.api, huma.Operation{
		OperationID: "ingestTags",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/runs/{id}/tags",
		Summary:     "Ingest tags",
		Description: "Upserts one batch of tags from the remote feed (admin only)",
		Tags:        []string{"Sync"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleIngestTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "ingestGroups",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/runs/{id}/groups",
		Summary:     "Ingest groups",
		Description: "Upserts one batch of groups from the remote feed (admin only)",
		Tags:        []string{"Sync"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleIngestGroups)

	huma.Register(s.api, huma.Operation{
		OperationID: "finishSyncRun",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/runs/{id}/finish",
		Summary:     "Finish sync run",
		Description: "Soft-deletes records the remote no longer reports and closes the run (admin only)",
		Tags:        []string{"Sync"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleFinishSyncRun)
}

// runRegistry tracks the sync runs currently accepting batches. Runs live in
// memory only; a restart abandons them without marking anything deleted.
type runRegistry struct {
	mu   sync.Mutex
	runs map[string]*service.Run
}

func newRunRegistry() *runRegistry {
	return &runRegistry{runs: make(map[string]*service.Run)}
}

func (r *runRegistry) add(run *service.Run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
}

func (r *runRegistry) get(id string) (*service.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, huma.Error404NotFound("Sync run not found")
	}
	return run, nil
}

func (r *runRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, id)
}

// === DTOs ===

// StartSyncRunRequest is the request body for starting a sync run.
type StartSyncRunRequest struct {
	InstanceID string `json:"instance_id" validate:"required,min=1,max=100" doc:"Remote instance ID this run mirrors"`
}

// StartSyncRunInput wraps the start sync run request for huma.
type StartSyncRunInput struct {
	Body StartSyncRunRequest
}

// SyncRunResponse describes an open sync run.
type SyncRunResponse struct {
	ID         string    `json:"id" doc:"Run ID, used in batch URLs"`
	InstanceID string    `json:"instance_id" doc:"Remote instance ID"`
	StartedAt  time.Time `json:"started_at" doc:"Run start time"`
}

// SyncRunOutput wraps a sync run for huma.
type SyncRunOutput struct {
	Body SyncRunResponse
}

// SyncRunIDInput contains parameters for run-scoped operations.
type SyncRunIDInput struct {
	ID string `path:"id" doc:"Sync run ID"`
}

// SyncSceneRequest is one scene record from the remote feed. Details may
// contain HTML; it is converted to markdown on ingest. Related entity IDs are
// bare remote IDs within the run's instance.
type SyncSceneRequest struct {
	ID           string     `json:"id" validate:"required" doc:"Remote scene ID"`
	Title        string     `json:"title" doc:"Scene title"`
	Details      string     `json:"details,omitempty" doc:"Scene details (HTML or markdown)"`
	Date         *time.Time `json:"date,omitempty" doc:"Release date"`
	Rating       *int       `json:"rating,omitempty" validate:"omitempty,gte=0,lte=100" doc:"Catalog rating (0-100)"`
	Organized    bool       `json:"organized,omitempty" doc:"Remote organized flag"`
	Duration     float64    `json:"duration,omitempty" doc:"Duration in seconds"`
	URL          string     `json:"url,omitempty" doc:"Remote catalog URL"`
	StudioID     string     `json:"studio_id,omitempty" doc:"Owning studio ID"`
	TagIDs       []string   `json:"tag_ids,omitempty" doc:"Attached tag IDs"`
	PerformerIDs []string   `json:"performer_ids,omitempty" doc:"Attached performer IDs"`
	GroupIDs     []string   `json:"group_ids,omitempty" doc:"Containing group IDs"`
	GalleryIDs   []string   `json:"gallery_ids,omitempty" doc:"Linked gallery IDs"`
}

// IngestScenesInput wraps a scene batch for huma.
type IngestScenesInput struct {
	ID   string `path:"id" doc:"Sync run ID"`
	Body struct {
		Items []SyncSceneRequest `json:"items" validate:"required,min=1,max=1000,dive" doc:"Scene batch"`
	}
}

// SyncImageRequest is one image record from the remote feed.
type SyncImageRequest struct {
	ID           string     `json:"id" validate:"required" doc:"Remote image ID"`
	Title        string     `json:"title" doc:"Image title"`
	Date         *time.Time `json:"date,omitempty" doc:"Release date"`
	Rating       *int       `json:"rating,omitempty" validate:"omitempty,gte=0,lte=100" doc:"Catalog rating (0-100)"`
	Organized    bool       `json:"organized,omitempty" doc:"Remote organized flag"`
	StudioID     string     `json:"studio_id,omitempty" doc:"Owning studio ID"`
	TagIDs       []string   `json:"tag_ids,omitempty" doc:"Attached tag IDs"`
	PerformerIDs []string   `json:"performer_ids,omitempty" doc:"Attached performer IDs"`
	GalleryIDs   []string   `json:"gallery_ids,omitempty" doc:"Containing gallery IDs"`
}

// IngestImagesInput wraps an image batch for huma.
type IngestImagesInput struct {
	ID   string `path:"id" doc:"Sync run ID"`
	Body struct {
		Items []SyncImageRequest `json:"items" validate:"required,min=1,max=1000,dive" doc:"Image batch"`
	}
}

// SyncGalleryRequest is one gallery record from the remote feed.
type SyncGalleryRequest struct {
	ID           string     `json:"id" validate:"required" doc:"Remote gallery ID"`
	Title        string     `json:"title" doc:"Gallery title"`
	Details      string     `json:"details,omitempty" doc:"Gallery details (HTML or markdown)"`
	Date         *time.Time `json:"date,omitempty" doc:"Release date"`
	Rating       *int       `json:"rating,omitempty" validate:"omitempty,gte=0,lte=100" doc:"Catalog rating (0-100)"`
	Organized    bool       `json:"organized,omitempty" doc:"Remote organized flag"`
	ImageCount   int        `json:"image_count,omitempty" doc:"Remote-reported image count"`
	StudioID     string     `json:"studio_id,omitempty" doc:"Owning studio ID"`
	TagIDs       []string   `json:"tag_ids,omitempty" doc:"Attached tag IDs"`
	PerformerIDs []string   `json:"performer_ids,omitempty" doc:"Attached performer IDs"`
	SceneIDs     []string   `json:"scene_ids,omitempty" doc:"Linked scene IDs"`
}

// IngestGalleriesInput wraps a gallery batch for huma.
type IngestGalleriesInput struct {
	ID   string `path:"id" doc:"Sync run ID"`
	Body struct {
		Items []SyncGalleryRequest `json:"items" validate:"required,min=1,max=1000,dive" doc:"Gallery batch"`
	}
}

// SyncPerformerRequest is one performer record from the remote feed.
type SyncPerformerRequest struct {
	ID             string     `json:"id" validate:"required" doc:"Remote performer ID"`
	Name           string     `json:"name" validate:"required" doc:"Performer name"`
	Disambiguation string     `json:"disambiguation,omitempty" doc:"Disambiguation for same-named performers"`
	Details        string     `json:"details,omitempty" doc:"Performer details (HTML or markdown)"`
	Birthdate      *time.Time `json:"birthdate,omitempty" doc:"Date of birth"`
	Rating         *int       `json:"rating,omitempty" validate:"omitempty,gte=0,lte=100" doc:"Catalog rating (0-100)"`
	Favorite       bool       `json:"favorite,omitempty" doc:"Remote favorite flag"`
	SceneCount     int        `json:"scene_count,omitempty" doc:"Remote-reported scene count"`
	ImageCount     int        `json:"image_count,omitempty" doc:"Remote-reported image count"`
	GalleryCount   int        `json:"gallery_count,omitempty" doc:"Remote-reported gallery count"`
	TagIDs         []string   `json:"tag_ids,omitempty" doc:"Attached tag IDs"`
}

// IngestPerformersInput wraps a performer batch for huma.
type IngestPerformersInput struct {
	ID   string `path:"id" doc:"Sync run ID"`
	Body struct {
		Items []SyncPerformerRequest `json:"items" validate:"required,min=1,max=1000,dive" doc:"Performer batch"`
	}
}

// SyncStudioRequest is one studio record from the remote feed.
type SyncStudioRequest struct {
	ID         string   `json:"id" validate:"required" doc:"Remote studio ID"`
	Name       string   `json:"name" validate:"required" doc:"Studio name"`
	Details    string   `json:"details,omitempty" doc:"Studio details (HTML or markdown)"`
	Rating     *int     `json:"rating,omitempty" validate:"omitempty,gte=0,lte=100" doc:"Catalog rating (0-100)"`
	Favorite   bool     `json:"favorite,omitempty" doc:"Remote favorite flag"`
	URL        string   `json:"url,omitempty" doc:"Remote catalog URL"`
	SceneCount int      `json:"scene_count,omitempty" doc:"Remote-reported scene count"`
	ImageCount int      `json:"image_count,omitempty" doc:"Remote-reported image count"`
	ParentID   string   `json:"parent_id,omitempty" doc:"Parent studio ID"`
	TagIDs     []string `json:"tag_ids,omitempty" doc:"Attached tag IDs"`
}

// IngestStudiosInput wraps a studio batch for huma.
type IngestStudiosInput struct {
	ID   string `path:"id" doc:"Sync run ID"`
	Body struct {
		Items []SyncStudioRequest `json:"items" validate:"required,min=1,max=1000,dive" doc:"Studio batch"`
	}
}

// SyncTagRequest is one tag record from the remote feed.
type SyncTagRequest struct {
	ID          string   `json:"id" validate:"required" doc:"Remote tag ID"`
	Name        string   `json:"name" validate:"required" doc:"Tag name"`
	Description string   `json:"description,omitempty" doc:"Tag description (HTML or markdown)"`
	Favorite    bool     `json:"favorite,omitempty" doc:"Remote favorite flag"`
	SceneCount  int      `json:"scene_count,omitempty" doc:"Remote-reported scene count"`
	ImageCount  int      `json:"image_count,omitempty" doc:"Remote-reported image count"`
	ParentIDs   []string `json:"parent_ids,omitempty" doc:"Parent tag IDs"`
}

// IngestTagsInput wraps a tag batch for huma.
type IngestTagsInput struct {
	ID   string `path:"id" doc:"Sync run ID"`
	Body struct {
		Items []SyncTagRequest `json:"items" validate:"required,min=1,max=1000,dive" doc:"Tag batch"`
	}
}

// SyncGroupRequest is one group record from the remote feed.
type SyncGroupRequest struct {
	ID            string     `json:"id" validate:"required" doc:"Remote group ID"`
	Name          string     `json:"name" validate:"required" doc:"Group name"`
	Synopsis      string     `json:"synopsis,omitempty" doc:"Group synopsis (HTML or markdown)"`
	Date          *time.Time `json:"date,omitempty" doc:"Release date"`
	Rating        *int       `json:"rating,omitempty" validate:"omitempty,gte=0,lte=100" doc:"Catalog rating (0-100)"`
	SceneCount    int        `json:"scene_count,omitempty" doc:"Remote-reported scene count"`
	StudioID      string     `json:"studio_id,omitempty" doc:"Owning studio ID"`
	TagIDs        []string   `json:"tag_ids,omitempty" doc:"Attached tag IDs"`
	ContainingIDs []string   `json:"containing_ids,omitempty" doc:"IDs of groups containing this group"`
}

// IngestGroupsInput wraps a group batch for huma.
type IngestGroupsInput struct {
	ID   string `path:"id" doc:"Sync run ID"`
	Body struct {
		Items []SyncGroupRequest `json:"items" validate:"required,min=1,max=1000,dive" doc:"Group batch"`
	}
}

// FinishSyncRunResponse reports the outcome of a completed run.
type FinishSyncRunResponse struct {
	ID         string `json:"id" doc:"Run ID"`
	InstanceID string `json:"instance_id" doc:"Remote instance ID"`
	DurationMs int64  `json:"duration_ms" doc:"Run duration in milliseconds"`
}

// FinishSyncRunOutput wraps the finish response for huma.
type FinishSyncRunOutput struct {
	Body FinishSyncRunResponse
}

// === Stub builders ===
//
// Remote feeds reference related entities by bare ID within the run's
// instance. The store only persists ref keys, so stubs carry nothing else.

func tagStubs(ids []string, instanceID string) []*domain.Tag {
	if len(ids) == 0 {
		return nil
	}
	stubs := make([]*domain.Tag, 0, len(ids))
	for _, id := range ids {
		stubs = append(stubs, &domain.Tag{ID: id, InstanceID: instanceID})
	}
	return stubs
}

func performerStubs(ids []string, instanceID string) []*domain.Performer {
	if len(ids) == 0 {
		return nil
	}
	stubs := make([]*domain.Performer, 0, len(ids))
	for _, id := range ids {
		stubs = append(stubs, &domain.Performer{ID: id, InstanceID: instanceID})
	}
	return stubs
}

func groupStubs(ids []string, instanceID string) []*domain.Group {
	if len(ids) == 0 {
		return nil
	}
	stubs := make([]*domain.Group, 0, len(ids))
	for _, id := range ids {
		stubs = append(stubs, &domain.Group{ID: id, InstanceID: instanceID})
	}
	return stubs
}

func galleryStubs(ids []string, instanceID string) []*domain.Gallery {
	if len(ids) == 0 {
		return nil
	}
	stubs := make([]*domain.Gallery, 0, len(ids))
	for _, id := range ids {
		stubs = append(stubs, &domain.Gallery{ID: id, InstanceID: instanceID})
	}
	return stubs
}

func sceneStubs(ids []string, instanceID string) []*domain.Scene {
	if len(ids) == 0 {
		return nil
	}
	stubs := make([]*domain.Scene, 0, len(ids))
	for _, id := range ids {
		stubs = append(stubs, &domain.Scene{ID: id, InstanceID: instanceID})
	}
	return stubs
}

func studioStub(id, instanceID string) *domain.Studio {
	if id == "" {
		return nil
	}
	return &domain.Studio{ID: id, InstanceID: instanceID}
}

// === Handlers ===

func (s *Server) handleStartSyncRun(ctx context.Context, input *StartSyncRunInput) (*SyncRunOutput, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	run := s.services.Sync.StartRun(input.Body.InstanceID)
	s.syncRuns.add(run)

	return &SyncRunOutput{
		Body: SyncRunResponse{
			ID:         run.ID,
			InstanceID: run.InstanceID,
			StartedAt:  run.StartedAt,
		},
	}, nil
}

func (s *Server) syncRun(ctx context.Context, runID string) (*service.Run, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.syncRuns.get(runID)
}

func (s *Server) handleIngestScenes(ctx context.Context, input *IngestScenesInput) (*dto.MessageOutput, error) {
	run, err := s.syncRun(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	scenes := make([]*domain.Scene, 0, len(input.Body.Items))
	for _, item := range input.Body.Items {
		scenes = append(scenes, &domain.Scene{
			ID:         item.ID,
			Title:      item.Title,
			Details:    item.Details,
			Date:       item.Date,
			Rating:     item.Rating,
			Organized:  item.Organized,
			Duration:   item.Duration,
			URL:        item.URL,
			Studio:     studioStub(item.StudioID, run.InstanceID),
			Tags:       tagStubs(item.TagIDs, run.InstanceID),
			Performers: performerStubs(item.PerformerIDs, run.InstanceID),
			Groups:     groupStubs(item.GroupIDs, run.InstanceID),
			Galleries:  galleryStubs(item.GalleryIDs, run.InstanceID),
		})
	}

	if err := s.services.Sync.IngestScenes(ctx, run, scenes); err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Batch accepted"}}, nil
}

func (s *Server) handleIngestImages(ctx context.Context, input *IngestImagesInput) (*dto.MessageOutput, error) {
	run, err := s.syncRun(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	images := make([]*domain.Image, 0, len(input.Body.Items))
	for _, item := range input.Body.Items {
		images = append(images, &domain.Image{
			ID:         item.ID,
			Title:      item.Title,
			Date:       item.Date,
			Rating:     item.Rating,
			Organized:  item.Organized,
			Studio:     studioStub(item.StudioID, run.InstanceID),
			Tags:       tagStubs(item.TagIDs, run.InstanceID),
			Performers: performerStubs(item.PerformerIDs, run.InstanceID),
			Galleries:  galleryStubs(item.GalleryIDs, run.InstanceID),
		})
	}

	if err := s.services.Sync.IngestImages(ctx, run, images); err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Batch accepted"}}, nil
}

func (s *Server) handleIngestGalleries(ctx context.Context, input *IngestGalleriesInput) (*dto.MessageOutput, error) {
	run, err := s.syncRun(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	galleries := make([]*domain.Gallery, 0, len(input.Body.Items))
	for _, item := range input.Body.Items {
		galleries = append(galleries, &domain.Gallery{
			ID:         item.ID,
			Title:      item.Title,
			Details:    item.Details,
			Date:       item.Date,
			Rating:     item.Rating,
			Organized:  item.Organized,
			ImageCount: item.ImageCount,
			Studio:     studioStub(item.StudioID, run.InstanceID),
			Tags:       tagStubs(item.TagIDs, run.InstanceID),
			Performers: performerStubs(item.PerformerIDs, run.InstanceID),
			Scenes:     sceneStubs(item.SceneIDs, run.InstanceID),
		})
	}

	if err := s.services.Sync.IngestGalleries(ctx, run, galleries); err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Batch accepted"}}, nil
}

func (s *Server) handleIngestPerformers(ctx context.Context, input *IngestPerformersInput) (*dto.MessageOutput, error) {
	run, err := s.syncRun(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	performers := make([]*domain.Performer, 0, len(input.Body.Items))
	for _, item := range input.Body.Items {
		performers = append(performers, &domain.Performer{
			ID:             item.ID,
			Name:           item.Name,
			Disambiguation: item.Disambiguation,
			Details:        item.Details,
			Birthdate:      item.Birthdate,
			Rating:         item.Rating,
			Favorite:       item.Favorite,
			SceneCount:     item.SceneCount,
			ImageCount:     item.ImageCount,
			GalleryCount:   item.GalleryCount,
			Tags:           tagStubs(item.TagIDs, run.InstanceID),
		})
	}

	if err := s.services.Sync.IngestPerformers(ctx, run, performers); err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Batch accepted"}}, nil
}

func (s *Server) handleIngestStudios(ctx context.Context, input *IngestStudiosInput) (*dto.MessageOutput, error) {
	run, err := s.syncRun(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	studios := make([]*domain.Studio, 0, len(input.Body.Items))
	for _, item := range input.Body.Items {
		studios = append(studios, &domain.Studio{
			ID:         item.ID,
			Name:       item.Name,
			Details:    item.Details,
			Rating:     item.Rating,
			Favorite:   item.Favorite,
			URL:        item.URL,
			SceneCount: item.SceneCount,
			ImageCount: item.ImageCount,
			Parent:     studioStub(item.ParentID, run.InstanceID),
			Tags:       tagStubs(item.TagIDs, run.InstanceID),
		})
	}

	if err := s.services.Sync.IngestStudios(ctx, run, studios); err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Batch accepted"}}, nil
}

func (s *Server) handleIngestTags(ctx context.Context, input *IngestTagsInput) (*dto.MessageOutput, error) {
	run, err := s.syncRun(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	tags := make([]*domain.Tag, 0, len(input.Body.Items))
	for _, item := range input.Body.Items {
		tags = append(tags, &domain.Tag{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Favorite:    item.Favorite,
			SceneCount:  item.SceneCount,
			ImageCount:  item.ImageCount,
			Parents:     tagStubs(item.ParentIDs, run.InstanceID),
		})
	}

	if err := s.services.Sync.IngestTags(ctx, run, tags); err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Batch accepted"}}, nil
}

func (s *Server) handleIngestGroups(ctx context.Context, input *IngestGroupsInput) (*dto.MessageOutput, error) {
	run, err := s.syncRun(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	groups := make([]*domain.Group, 0, len(input.Body.Items))
	for _, item := range input.Body.Items {
		groups = append(groups, &domain.Group{
			ID:         item.ID,
			Name:       item.Name,
			Synopsis:   item.Synopsis,
			Date:       item.Date,
			Rating:     item.Rating,
			SceneCount: item.SceneCount,
			Studio:     studioStub(item.StudioID, run.InstanceID),
			Tags:       tagStubs(item.TagIDs, run.InstanceID),
			Containing: groupStubs(item.ContainingIDs, run.InstanceID),
		})
	}

	if err := s.services.Sync.IngestGroups(ctx, run, groups); err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Batch accepted"}}, nil
}

func (s *Server) handleFinishSyncRun(ctx context.Context, input *SyncRunIDInput) (*FinishSyncRunOutput, error) {
	run, err := s.syncRun(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Sync.Finish(ctx, run); err != nil {
		return nil, err
	}
	s.syncRuns.remove(run.ID)

	return &FinishSyncRunOutput{
		Body: FinishSyncRunResponse{
			ID:         run.ID,
			InstanceID: run.InstanceID,
			DurationMs: time.Since(run.StartedAt).Milliseconds(),
		},
	}, nil
}
