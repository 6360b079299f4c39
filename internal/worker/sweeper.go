package worker

import (
	"ImageHub/internal/service"
	"context"
	"log"
	"time"
)

// RunSweeper reclaims expired images on a fixed interval until the context
// is cancelled. Running on a timer instead of on access keeps staleness
// bounded regardless of traffic.
func RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := service.ReclaimExpired(time.Now())
			if err != nil {
				log.Printf("sweeper: reclaim failed: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("sweeper: reclaimed %d expired images", count)
			}
		}
	}
}
