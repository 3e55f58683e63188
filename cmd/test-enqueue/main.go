// Command test-enqueue stores a log file in Redis and queues a render job for
// it, so the worker can be exercised without the API.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/ascension-log/internal/config"
	"github.com/jwebster45206/ascension-log/internal/logger"
	"github.com/jwebster45206/ascension-log/internal/queue"
	"github.com/jwebster45206/ascension-log/internal/storage"
	"github.com/jwebster45206/ascension-log/pkg/ingest"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: test-enqueue <log file> [format...]")
	}
	path := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg := logger.Setup(cfg)

	base, err := cfg.TimelineOptions()
	if err != nil {
		log.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("Failed to read log file:", err)
	}
	doc, parseErrs, err := ingest.Parse(data, ingest.FormatFromPath(path))
	if err != nil {
		log.Fatal("Failed to parse log file:", err)
	}
	st, rep := ingest.Apply(doc, base)
	rep.Errors = append(parseErrs, rep.Errors...)
	for _, msg := range rep.Messages() {
		fmt.Printf("⚠️  %s\n", msg)
	}
	if err := st.CreateSummary(); err != nil {
		log.Fatal("Log cannot be reconstructed:", err)
	}
	canonical, err := doc.JSON()
	if err != nil {
		log.Fatal("Failed to encode log:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.LogTTL, cfg.RenderCacheTTL, lg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Ping(ctx); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	rec := &storage.LogRecord{ID: uuid.New(), Name: st.Name(), Document: canonical}
	if err := store.SaveLog(ctx, rec); err != nil {
		log.Fatal("Failed to save log:", err)
	}
	fmt.Printf("✅ Stored log %q as %s (%d records accepted)\n", rec.Name, rec.ID, rep.Accepted)

	client, err := queue.NewClient(cfg.RedisURL, lg)
	if err != nil {
		log.Fatal("Failed to create queue client:", err)
	}
	defer func() { _ = client.Close() }()
	jobs := queue.NewRenderQueue(client)

	job := queue.NewRenderJob(rec.ID, os.Args[2:])
	if err := jobs.Enqueue(ctx, job); err != nil {
		log.Fatal("Failed to enqueue render job:", err)
	}
	fmt.Printf("✅ Enqueued render job: %s\n", job.JobID)

	depth, err := jobs.Depth(ctx)
	if err != nil {
		log.Fatal("Failed to get queue depth:", err)
	}
	fmt.Printf("\n📊 Queue depth: %d jobs\n", depth)
	fmt.Println("\n💡 Now start the worker to render this log!")
	fmt.Println("   Run: go run cmd/worker/main.go")
	fmt.Printf("   Then: curl 'localhost:%s/v1/logs/%s/text'\n", cfg.Port, rec.ID)
}
