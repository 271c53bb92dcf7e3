package service_test

import (
	"context"
	"testing"
	"time"

	"vireo.social/vireo/internal/repository"
	"vireo.social/vireo/internal/service"
)

func TestGetTrendsTopThree(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := seedUser(t, db, "ada")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	contents := []string{
		"gophers gophers gophers love concurrency",
		"Concurrency, concurrency!",
		"#golang is fun, gophers agree",
		"so is it ok", // every token shorter than three characters or filtered
	}
	for i, content := range contents {
		seedStatus(t, db, author.ID, content, base.Add(time.Duration(i)*time.Minute))
	}

	trends := service.NewTrendService(repository.NewStatusRepository(db), newMemoryCache(), time.Hour)

	got, err := trends.GetTrends(ctx)
	if err != nil {
		t.Fatalf("GetTrends: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 trends, got %d: %+v", len(got), got)
	}
	if got[0].Word != "gophers" || got[0].Count != 4 {
		t.Fatalf("expected gophers x4 first, got %+v", got[0])
	}
	if got[1].Word != "concurrency" || got[1].Count != 3 {
		t.Fatalf("expected concurrency x3 second, got %+v", got[1])
	}
	for i := 1; i < len(got); i++ {
		if got[i].Count > got[i-1].Count {
			t.Fatalf("trends not sorted by count: %+v", got)
		}
	}
	for _, trend := range got {
		if len(trend.Word) < 3 {
			t.Fatalf("short word %q leaked into trends", trend.Word)
		}
	}
}

func TestGetTrendsKeepsHashtags(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := seedUser(t, db, "ada")
	seedStatus(t, db, author.ID, "#launch day! #launch is here", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	trends := service.NewTrendService(repository.NewStatusRepository(db), newMemoryCache(), time.Hour)

	got, err := trends.GetTrends(ctx)
	if err != nil {
		t.Fatalf("GetTrends: %v", err)
	}
	if len(got) == 0 || got[0].Word != "#launch" || got[0].Count != 2 {
		t.Fatalf("expected #launch x2 first, got %+v", got)
	}
}

func TestGetTrendsServedFromCache(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := seedUser(t, db, "ada")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedStatus(t, db, author.ID, "gophers gophers gophers", base)

	cache := newMemoryCache()
	trends := service.NewTrendService(repository.NewStatusRepository(db), cache, time.Hour)

	first, err := trends.GetTrends(ctx)
	if err != nil {
		t.Fatalf("first GetTrends: %v", err)
	}
	if cache.setCount() != 1 {
		t.Fatalf("expected one cache write, got %d", cache.setCount())
	}

	// New content must not surface until the cache entry expires.
	seedStatus(t, db, author.ID, "ferrets ferrets ferrets ferrets", base.Add(time.Minute))

	second, err := trends.GetTrends(ctx)
	if err != nil {
		t.Fatalf("second GetTrends: %v", err)
	}
	if cache.setCount() != 1 {
		t.Fatalf("expected the cached page, saw a recompute (writes=%d)", cache.setCount())
	}
	if len(second) != len(first) || second[0].Word != first[0].Word {
		t.Fatalf("cached result diverged: first=%+v second=%+v", first, second)
	}
}

func TestGetTrendsSurvivesCallerCancellation(t *testing.T) {
	db := newTestDB(t)

	author := seedUser(t, db, "ada")
	seedStatus(t, db, author.ID, "gophers gophers gophers", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	trends := service.NewTrendService(repository.NewStatusRepository(db), newMemoryCache(), time.Hour)

	// The recompute is shared across collapsed callers, so the winning
	// caller's cancellation must not poison it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := trends.GetTrends(ctx)
	if err != nil {
		t.Fatalf("GetTrends with canceled caller: %v", err)
	}
	if len(got) == 0 || got[0].Word != "gophers" {
		t.Fatalf("unexpected trends %+v", got)
	}
}

func TestGetTrendsEmptyCorpus(t *testing.T) {
	db := newTestDB(t)

	trends := service.NewTrendService(repository.NewStatusRepository(db), newMemoryCache(), time.Hour)

	got, err := trends.GetTrends(context.Background())
	if err != nil {
		t.Fatalf("GetTrends: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no trends for an empty corpus, got %+v", got)
	}
}
