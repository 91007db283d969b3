// Package main provides a tool to seed the database with a demo catalog.
//
// It creates an admin and a demo user, then ingests a small fixed library
// through the sync service as instance "demo", so the browse endpoints,
// restriction rules and search all have material to work with.
//
// Usage:
//
//	DB_PATH=~/mirrorbox/mirrorbox.db go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/ratelimit"
	"github.com/mirrorboxapp/mirrorbox-server/internal/search"
	"github.com/mirrorboxapp/mirrorbox-server/internal/service"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store/sqlite"
	"github.com/mirrorboxapp/mirrorbox-server/internal/util"
)

const demoInstance = "demo"

var createUsers = flag.Bool("create-users", true, "Create the admin and demo accounts")

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/mirrorbox/mirrorbox.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	idx, err := search.NewIndex(search.Options{
		IndexPath: filepath.Join(filepath.Dir(dbPath), "search.bleve"),
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()

	if *createUsers {
		seedUsers(ctx, st)
	}

	sync := service.NewSyncService(st, st, idx, ratelimit.New(100, 100), logger)
	run := sync.StartRun(demoInstance)

	if err := seedCatalog(ctx, sync, run); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	if err := sync.Finish(ctx, run); err != nil {
		log.Fatalf("Failed to finish sync run: %v", err)
	}

	count, _ := idx.DocumentCount()
	fmt.Printf("Seed complete: %d documents indexed\n", count)
}

func seedUsers(ctx context.Context, st *sqlite.Store) {
	users := []*domain.User{
		{ID: "admin", Name: "Admin", IsAdmin: true},
		{ID: "demo", Name: "Demo User"},
	}
	for _, u := range users {
		if err := st.CreateUser(ctx, u); err != nil {
			fmt.Printf("Skipping user %s: %v\n", u.ID, err)
			continue
		}
		fmt.Printf("Created user %s\n", u.ID)
	}
}

// tag builds a demo tag with a slug ID derived from its name.
func tag(name string, parents ...*domain.Tag) *domain.Tag {
	return &domain.Tag{ID: util.Slugify(name), Name: name, Parents: parents}
}

func seedCatalog(ctx context.Context, sync *service.SyncService, run *service.Run) error {
	action := tag("Action")
	stunts := tag("Stunts", action)
	drama := tag("Drama")
	documentary := tag("Documentary")
	tags := []*domain.Tag{action, stunts, drama, documentary}

	studios := []*domain.Studio{
		{ID: util.Slugify("Northern Lights"), Name: "Northern Lights"},
		{ID: util.Slugify("Harbor Films"), Name: "Harbor Films"},
	}
	studios = append(studios, &domain.Studio{
		ID: util.Slugify("Harbor Shorts"), Name: "Harbor Shorts", Parent: studios[1],
	})

	performers := []*domain.Performer{
		{ID: util.Slugify("Maya Lindgren"), Name: "Maya Lindgren", Tags: []*domain.Tag{drama}},
		{ID: util.Slugify("Tom Okafor"), Name: "Tom Okafor", Tags: []*domain.Tag{action}},
		{ID: util.Slugify("Ines Castro"), Name: "Ines Castro"},
	}

	rating := func(v int) *int { return &v }
	scenes := []*domain.Scene{
		{
			ID: util.Slugify("Winter Crossing"), Title: "Winter Crossing",
			Details: "<p>A long trek over the <b>frozen</b> strait.</p>",
			Rating:  rating(82), Duration: 2400,
			Studio:     studios[0],
			Tags:       []*domain.Tag{documentary},
			Performers: []*domain.Performer{performers[0]},
		},
		{
			ID: util.Slugify("Rooftop Run"), Title: "Rooftop Run",
			Rating: rating(74), Duration: 1500,
			Studio:     studios[1],
			Tags:       []*domain.Tag{action, stunts},
			Performers: []*domain.Performer{performers[1], performers[2]},
		},
		{
			ID: util.Slugify("Quiet Harbor"), Title: "Quiet Harbor",
			Rating: rating(65), Duration: 1800,
			Studio:     studios[2],
			Tags:       []*domain.Tag{drama},
			Performers: []*domain.Performer{performers[0], performers[2]},
		},
	}

	galleries := []*domain.Gallery{
		{
			ID: util.Slugify("Harbor Stills"), Title: "Harbor Stills",
			Studio: studios[1], Tags: []*domain.Tag{drama},
			Scenes: []*domain.Scene{scenes[2]},
		},
	}

	images := []*domain.Image{
		{
			ID: util.Slugify("Harbor Dawn"), Title: "Harbor Dawn",
			Studio: studios[1], Tags: []*domain.Tag{drama},
			Galleries: []*domain.Gallery{galleries[0]},
		},
	}

	groups := []*domain.Group{
		{
			ID: util.Slugify("City Trilogy"), Name: "City Trilogy",
			Studio: studios[1], Tags: []*domain.Tag{action},
		},
	}

	if err := sync.IngestTags(ctx, run, tags); err != nil {
		return err
	}
	if err := sync.IngestStudios(ctx, run, studios); err != nil {
		return err
	}
	if err := sync.IngestPerformers(ctx, run, performers); err != nil {
		return err
	}
	if err := sync.IngestScenes(ctx, run, scenes); err != nil {
		return err
	}
	if err := sync.IngestGalleries(ctx, run, galleries); err != nil {
		return err
	}
	if err := sync.IngestImages(ctx, run, images); err != nil {
		return err
	}
	return sync.IngestGroups(ctx, run, groups)
}
