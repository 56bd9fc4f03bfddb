// Package gallery enriches car listings with their image galleries.
//
// Image fetches run with bounded concurrency: cars are partitioned into
// consecutive batches, every fetch in a batch runs in parallel, batches run
// sequentially with a short pause in between so the backend is not hammered.
// A failed fetch marks only its own car; siblings keep their images.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"motorline.org/motorline-web/internal/marketplace"
)

const (
	// DefaultConcurrency bounds in-flight image fetches per batch.
	DefaultConcurrency = 8
	// DefaultPause is the courtesy delay between batches.
	DefaultPause = 50 * time.Millisecond
)

// FetchImages loads the image URLs for one car.
type FetchImages func(ctx context.Context, sellerID, carID int64) ([]string, error)

// Listing is a car enriched with its gallery. ImagesError carries a short
// diagnostic when the image fetch for this car failed; the car is still
// shown.
type Listing struct {
	marketplace.Car
	Images      []string
	ImagesError string
}

// Enricher schedules the per-car image fetches.
type Enricher struct {
	Fetch       FetchImages
	Concurrency int
	Pause       time.Duration
}

// Enrich fetches images for every car and returns listings in input order.
// Results are accumulated by input index, never by arrival order. When ctx is
// cancelled, remaining fetches are abandoned and the partial result is
// discarded: the caller gets ctx's error and must not commit any state.
func (e Enricher) Enrich(ctx context.Context, cars []marketplace.Car) ([]Listing, error) {
	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	pause := e.Pause
	if pause <= 0 {
		pause = DefaultPause
	}

	out := make([]Listing, len(cars))
	for start := 0; start < len(cars); start += concurrency {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + concurrency
		if end > len(cars) {
			end = len(cars)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				out[i] = e.enrichOne(ctx, cars[i])
			}(i)
		}
		wg.Wait()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if end < len(cars) {
			select {
			case <-time.After(pause):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return out, nil
}

func (e Enricher) enrichOne(ctx context.Context, car marketplace.Car) Listing {
	urls, err := e.Fetch(ctx, car.SellerID, car.ID)
	if err != nil {
		return Listing{Car: car, ImagesError: errorHint(err)}
	}
	return Listing{Car: car, Images: urls}
}

// errorHint compresses a fetch failure into the short per-card diagnostic:
// the HTTP status when the backend answered, otherwise the failure message.
func errorHint(err error) string {
	var apiErr *marketplace.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("HTTP %d", apiErr.Status)
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
