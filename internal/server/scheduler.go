package server

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/lumina-ai/lumina/internal/ingest"
	"github.com/lumina-ai/lumina/internal/store"
)

// Scheduler periodically re-ingests registered sources whose refresh cron is
// due. A Redis lock keeps multiple replicas from re-ingesting the same source.
type Scheduler struct {
	Store    *store.Store
	Pipeline *ingest.Pipeline
	Rdb      *redis.Client
	Interval time.Duration
	Stop     chan struct{}
	Logger   *log.Logger
}

func (s *Scheduler) Start() {
	if s.Interval <= 0 {
		s.Interval = time.Hour
	}
	if s.Logger == nil {
		s.Logger = log.New(log.Writer(), "[SCHED] ", log.LstdFlags)
	}
	ticker := time.NewTicker(s.Interval)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	sources, err := s.Store.ListSources(ctx)
	if err != nil {
		s.Logger.Printf("listing sources: %v", err)
		return
	}
	for _, src := range sources {
		var last *time.Time
		if src.LastIngestedAt.Valid {
			t := src.LastIngestedAt.Time
			last = &t
		}
		if !isDue(src.RefreshCron, last) {
			continue
		}

		if s.Rdb != nil {
			lockKey := "sched:lock:" + src.ID
			ok, _ := s.Rdb.SetNX(ctx, lockKey, "1", 2*time.Minute).Result()
			if !ok {
				continue
			}
		}

		go func(src store.Source) {
			// jitter to avoid stampedes
			time.Sleep(time.Duration(250+int64(time.Now().UnixNano()%250)) * time.Millisecond)
			if _, err := s.Pipeline.IngestURL(ctx, src.URL, src.ClientID); err != nil {
				s.Logger.Printf("re-ingest %s failed: %v", src.URL, err)
				return
			}
			if err := s.Store.TouchSource(ctx, src.ID); err != nil {
				s.Logger.Printf("touch source %s: %v", src.ID, err)
			}
		}(src)
	}
}

// isDue determines if a source with cronSpec should refresh now given its
// last ingestion time. Supports "@daily", "@hourly", and standard cron
// expressions.
func isDue(cronSpec string, last *time.Time) bool {
	now := time.Now()
	switch cronSpec {
	case "@daily":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			if last == nil {
				return true
			}
			return now.Sub(*last) >= 24*time.Hour
		}
		if last == nil {
			return true
		}
		next := expr.Next(*last)
		return !next.After(now)
	}
}
