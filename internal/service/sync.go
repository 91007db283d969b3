package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/uuid"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/ratelimit"
	"github.com/mirrorboxapp/mirrorbox-server/internal/search"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

// SyncService is the ingest boundary for the catalog mirror. It consumes
// batches of already-fetched remote records, normalizes them, persists them
// through the catalog writer and keeps the search index in step. Fetching
// from the remote instance itself is the transport layer's job.
type SyncService struct {
	catalog store.CatalogWriter
	library store.LibraryReader
	search  *search.Index
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// NewSyncService creates a new sync service.
func NewSyncService(
	catalog store.CatalogWriter,
	library store.LibraryReader,
	searchIndex *search.Index,
	limiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		catalog: catalog,
		library: library,
		search:  searchIndex,
		limiter: limiter,
		logger:  logger,
	}
}

// Run tracks one sync pass against a single remote instance. Every entity
// key ingested during the pass is recorded so Finish can soft-delete the
// records the remote no longer reports.
type Run struct {
	ID         string
	InstanceID string
	StartedAt  time.Time

	seen map[domain.EntityType][]domain.EntityKey
}

// StartRun begins a sync pass for the given remote instance.
func (s *SyncService) StartRun(instanceID string) *Run {
	run := &Run{
		ID:         uuid.NewString(),
		InstanceID: instanceID,
		StartedAt:  time.Now(),
		seen:       make(map[domain.EntityType][]domain.EntityKey),
	}

	s.logger.Info("sync run started", "run_id", run.ID, "instance_id", instanceID)
	return run
}

func (r *Run) record(t domain.EntityType, id string) {
	r.seen[t] = append(r.seen[t], domain.EntityKey{ID: id, InstanceID: r.InstanceID})
}

// IngestScenes upserts one batch of scenes from the remote instance.
func (s *SyncService) IngestScenes(ctx context.Context, run *Run, scenes []*domain.Scene) error {
	if len(scenes) == 0 {
		return nil
	}
	if err := s.limiter.Wait(ctx, run.InstanceID); err != nil {
		return err
	}

	docs := make([]*search.Document, 0, len(scenes))
	for _, sc := range scenes {
		sc.InstanceID = run.InstanceID
		sc.Details = htmlToMarkdown(sc.Details)
		run.record(domain.EntityScene, sc.ID)
		docs = append(docs, search.SceneToDocument(sc))
	}

	if err := s.catalog.UpsertScenes(ctx, scenes); err != nil {
		return fmt.Errorf("upsert scenes: %w", err)
	}
	if err := s.search.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index scenes: %w", err)
	}
	return nil
}

// IngestImages upserts one batch of images.
func (s *SyncService) IngestImages(ctx context.Context, run *Run, images []*domain.Image) error {
	if len(images) == 0 {
		return nil
	}
	if err := s.limiter.Wait(ctx, run.InstanceID); err != nil {
		return err
	}

	docs := make([]*search.Document, 0, len(images))
	for _, img := range images {
		img.InstanceID = run.InstanceID
		run.record(domain.EntityImage, img.ID)
		docs = append(docs, search.ImageToDocument(img))
	}

	if err := s.catalog.UpsertImages(ctx, images); err != nil {
		return fmt.Errorf("upsert images: %w", err)
	}
	if err := s.search.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index images: %w", err)
	}
	return nil
}

// IngestGalleries upserts one batch of galleries.
func (s *SyncService) IngestGalleries(ctx context.Context, run *Run, galleries []*domain.Gallery) error {
	if len(galleries) == 0 {
		return nil
	}
	if err := s.limiter.Wait(ctx, run.InstanceID); err != nil {
		return err
	}

	docs := make([]*search.Document, 0, len(galleries))
	for _, g := range galleries {
		g.InstanceID = run.InstanceID
		g.Details = htmlToMarkdown(g.Details)
		run.record(domain.EntityGallery, g.ID)
		docs = append(docs, search.GalleryToDocument(g))
	}

	if err := s.catalog.UpsertGalleries(ctx, galleries); err != nil {
		return fmt.Errorf("upsert galleries: %w", err)
	}
	if err := s.search.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index galleries: %w", err)
	}
	return nil
}

// IngestPerformers upserts one batch of performers.
func (s *SyncService) IngestPerformers(ctx context.Context, run *Run, performers []*domain.Performer) error {
	if len(performers) == 0 {
		return nil
	}
	if err := s.limiter.Wait(ctx, run.InstanceID); err != nil {
		return err
	}

	docs := make([]*search.Document, 0, len(performers))
	for _, p := range performers {
		p.InstanceID = run.InstanceID
		p.Details = htmlToMarkdown(p.Details)
		run.record(domain.EntityPerformer, p.ID)
		docs = append(docs, search.PerformerToDocument(p))
	}

	if err := s.catalog.UpsertPerformers(ctx, performers); err != nil {
		return fmt.Errorf("upsert performers: %w", err)
	}
	if err := s.search.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index performers: %w", err)
	}
	return nil
}

// IngestStudios upserts one batch of studios.
func (s *SyncService) IngestStudios(ctx context.Context, run *Run, studios []*domain.Studio) error {
	if len(studios) == 0 {
		return nil
	}
	if err := s.limiter.Wait(ctx, run.InstanceID); err != nil {
		return err
	}

	docs := make([]*search.Document, 0, len(studios))
	for _, st := range studios {
		st.InstanceID = run.InstanceID
		st.Details = htmlToMarkdown(st.Details)
		run.record(domain.EntityStudio, st.ID)
		docs = append(docs, search.StudioToDocument(st))
	}

	if err := s.catalog.UpsertStudios(ctx, studios); err != nil {
		return fmt.Errorf("upsert studios: %w", err)
	}
	if err := s.search.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index studios: %w", err)
	}
	return nil
}

// IngestTags upserts one batch of tags.
func (s *SyncService) IngestTags(ctx context.Context, run *Run, tags []*domain.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	if err := s.limiter.Wait(ctx, run.InstanceID); err != nil {
		return err
	}

	docs := make([]*search.Document, 0, len(tags))
	for _, t := range tags {
		t.InstanceID = run.InstanceID
		t.Description = htmlToMarkdown(t.Description)
		run.record(domain.EntityTag, t.ID)
		docs = append(docs, search.TagToDocument(t))
	}

	if err := s.catalog.UpsertTags(ctx, tags); err != nil {
		return fmt.Errorf("upsert tags: %w", err)
	}
	if err := s.search.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index tags: %w", err)
	}
	return nil
}

// IngestGroups upserts one batch of groups.
func (s *SyncService) IngestGroups(ctx context.Context, run *Run, groups []*domain.Group) error {
	if len(groups) == 0 {
		return nil
	}
	if err := s.limiter.Wait(ctx, run.InstanceID); err != nil {
		return err
	}

	docs := make([]*search.Document, 0, len(groups))
	for _, g := range groups {
		g.InstanceID = run.InstanceID
		g.Synopsis = htmlToMarkdown(g.Synopsis)
		run.record(domain.EntityGroup, g.ID)
		docs = append(docs, search.GroupToDocument(g))
	}

	if err := s.catalog.UpsertGroups(ctx, groups); err != nil {
		return fmt.Errorf("upsert groups: %w", err)
	}
	if err := s.search.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index groups: %w", err)
	}
	return nil
}

// Finish completes a sync pass: entities of the instance not seen during the
// run are soft-deleted, and when anything was removed the search index is
// rebuilt from the surviving mirror.
func (s *SyncService) Finish(ctx context.Context, run *Run) error {
	removed := 0
	for _, t := range []domain.EntityType{
		domain.EntityScene, domain.EntityImage, domain.EntityGallery,
		domain.EntityPerformer, domain.EntityStudio, domain.EntityTag,
		domain.EntityGroup,
	} {
		n, err := s.catalog.SoftDeleteMissing(ctx, t, run.InstanceID, run.seen[t])
		if err != nil {
			return fmt.Errorf("soft delete %s: %w", t, err)
		}
		removed += n
	}

	if removed > 0 {
		if err := s.Reindex(ctx); err != nil {
			return err
		}
	}

	s.logger.Info("sync run finished",
		"run_id", run.ID,
		"instance_id", run.InstanceID,
		"removed", removed,
		"duration", time.Since(run.StartedAt),
	)
	return nil
}

// Reindex rebuilds the search index from the current mirror contents.
func (s *SyncService) Reindex(ctx context.Context) error {
	if err := s.search.Rebuild(); err != nil {
		return fmt.Errorf("rebuild search index: %w", err)
	}

	var docs []*search.Document

	scenes, err := s.library.ListAllScenes(ctx)
	if err != nil {
		return fmt.Errorf("load scenes: %w", err)
	}
	for _, sc := range scenes {
		docs = append(docs, search.SceneToDocument(sc))
	}

	images, err := s.library.ListAllImages(ctx)
	if err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	for _, img := range images {
		docs = append(docs, search.ImageToDocument(img))
	}

	galleries, err := s.library.ListAllGalleries(ctx)
	if err != nil {
		return fmt.Errorf("load galleries: %w", err)
	}
	for _, g := range galleries {
		docs = append(docs, search.GalleryToDocument(g))
	}

	performers, err := s.library.ListAllPerformers(ctx)
	if err != nil {
		return fmt.Errorf("load performers: %w", err)
	}
	for _, p := range performers {
		docs = append(docs, search.PerformerToDocument(p))
	}

	studios, err := s.library.ListAllStudios(ctx)
	if err != nil {
		return fmt.Errorf("load studios: %w", err)
	}
	for _, st := range studios {
		docs = append(docs, search.StudioToDocument(st))
	}

	tags, err := s.library.ListAllTags(ctx)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	for _, t := range tags {
		docs = append(docs, search.TagToDocument(t))
	}

	groups, err := s.library.ListAllGroups(ctx)
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}
	for _, g := range groups {
		docs = append(docs, search.GroupToDocument(g))
	}

	if err := s.search.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	s.logger.Info("search index rebuilt", "documents", len(docs))
	return nil
}

// htmlTagPattern matches common HTML tags to detect markup in remote
// description fields.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// htmlToMarkdown converts HTML description text to Markdown. Plain text
// passes through unchanged, as does anything the converter rejects.
func htmlToMarkdown(s string) string {
	if s == "" || !htmlTagPattern.MatchString(strings.ToLower(s)) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
