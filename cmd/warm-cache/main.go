// Quick tool to pull a range of upstream posts into the local store
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"Postbridge/internal/config"
	"Postbridge/internal/core/posts"
	"Postbridge/internal/db/sqldb"
	"Postbridge/internal/upstream"
)

func main() {
	from := flag.Int64("from", 1, "first post id to fetch")
	to := flag.Int64("to", 100, "last post id to fetch (inclusive)")
	flag.Parse()

	if *from < 1 || *to < *from {
		log.Fatalf("Invalid range: -from=%d -to=%d", *from, *to)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Connecting to database...")
	db, err := sqldb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := sqldb.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	client := upstream.NewClient(cfg.UpstreamBaseURL, upstream.WithTimeout(cfg.UpstreamTimeout))
	service := posts.NewPostService(
		sqldb.NewPostRepository(db),
		client,
		posts.NewValidator(cfg.MinTitleWords, cfg.MinBodyLength),
	)

	// GetPost stores whatever it has to fetch, so a plain read warms the cache
	log.Printf("Fetching posts %d..%d from %s", *from, *to, cfg.UpstreamBaseURL)
	warmed, failed := 0, 0
	for id := *from; id <= *to; id++ {
		if ctx.Err() != nil {
			log.Printf("Interrupted at id=%d", id)
			break
		}
		if _, err := service.GetPost(ctx, id); err != nil {
			log.Printf("Warning: post %d not cached: %v", id, err)
			failed++
			continue
		}
		warmed++
	}

	log.Printf("Done: %d posts available locally, %d failed", warmed, failed)
}
