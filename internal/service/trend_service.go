package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"vireo.social/vireo/internal/repository"
	"vireo.social/vireo/pkg/apperror"
)

const (
	trendCacheKey    = "trends"
	trendSampleSize  = 100
	trendResultSize  = 3
	trendMinWordSize = 3
)

// Trend is one frequently used term from recent statuses.
type Trend struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type TrendService interface {
	// GetTrends returns the top 3 terms across the most recent statuses,
	// cached for the configured TTL.
	GetTrends(ctx context.Context) ([]Trend, error)
}

type trendService struct {
	statusRepo repository.StatusRepository
	cache      Cache
	ttl        time.Duration
	group      singleflight.Group
}

func NewTrendService(statusRepo repository.StatusRepository, cache Cache, ttl time.Duration) TrendService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &trendService{
		statusRepo: statusRepo,
		cache:      cache,
		ttl:        ttl,
	}
}

func (s *trendService) GetTrends(ctx context.Context) ([]Trend, error) {
	if cached, ok, err := s.cache.Get(ctx, trendCacheKey); err == nil && ok {
		var trends []Trend
		if err := json.Unmarshal(cached, &trends); err == nil {
			return trends, nil
		}
		// Unparsable cache entry falls through to a recompute.
	} else if err != nil {
		log.Printf("trend cache read failed: %v", err)
	}

	// Concurrent misses collapse into one backing-store read. The read runs
	// detached so one canceled request cannot fail every collapsed caller.
	result, err, _ := s.group.Do(trendCacheKey, func() (interface{}, error) {
		return s.recompute(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return result.([]Trend), nil
}

func (s *trendService) recompute(ctx context.Context) ([]Trend, error) {
	contents, err := s.statusRepo.RecentContents(ctx, trendSampleSize)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching recent statuses: %v", apperror.ErrUpstream, err)
	}

	trends := wordFrequencies(contents)

	if payload, err := json.Marshal(trends); err == nil {
		if err := s.cache.Set(ctx, trendCacheKey, payload, s.ttl); err != nil {
			log.Printf("trend cache write failed: %v", err)
		}
	}

	return trends, nil
}

// nonWordPattern strips punctuation but keeps hashtags and whitespace.
var nonWordPattern = regexp.MustCompile(`[^\w\s#]`)

// wordFrequencies tokenizes the texts and returns the top 3 terms by count.
// Ties keep first-seen order; the ordering of equal counts is not part of the
// contract.
func wordFrequencies(texts []string) []Trend {
	counts := make(map[string]int)
	var seen []string

	for _, text := range texts {
		cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), "")
		for _, word := range strings.Fields(cleaned) {
			if len(word) < trendMinWordSize {
				continue
			}
			if _, ok := counts[word]; !ok {
				seen = append(seen, word)
			}
			counts[word]++
		}
	}

	sort.SliceStable(seen, func(i, j int) bool {
		return counts[seen[i]] > counts[seen[j]]
	})

	if len(seen) > trendResultSize {
		seen = seen[:trendResultSize]
	}

	trends := make([]Trend, 0, len(seen))
	for _, word := range seen {
		trends = append(trends, Trend{Word: word, Count: counts[word]})
	}
	return trends
}
