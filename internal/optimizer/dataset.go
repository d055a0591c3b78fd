package optimizer

import (
	"sort"
	"time"

	"github.com/dotcommander/recall/internal/models"
)

// review is the training representation of a single review event.
type review struct {
	rating      models.Rating
	elapsedDays float64   // days since the previous review (0 for the first)
	label       float64   // 0 if Again, 1 otherwise
	reviewedAt  time.Time // original timestamp, for engine replay
}

// formatEvents groups a user's review events by item and sorts each group
// by time. Items with fewer than two events carry no interval signal and
// are discarded.
func formatEvents(events []models.ReviewEvent) map[string][]review {
	if len(events) == 0 {
		return nil
	}

	groups := make(map[string][]models.ReviewEvent)
	for _, ev := range events {
		groups[ev.ItemID] = append(groups[ev.ItemID], ev)
	}

	result := make(map[string][]review, len(groups))
	for itemID, itemEvents := range groups {
		if len(itemEvents) < 2 {
			continue
		}
		sort.Slice(itemEvents, func(i, j int) bool {
			return itemEvents[i].ReviewedAt.Before(itemEvents[j].ReviewedAt)
		})

		reviews := make([]review, len(itemEvents))
		for i, ev := range itemEvents {
			var elapsed float64
			if i > 0 {
				elapsed = ev.ReviewedAt.Sub(itemEvents[i-1].ReviewedAt).Hours() / 24.0
			}
			label := 1.0
			if ev.Rating == models.Again {
				label = 0.0
			}
			reviews[i] = review{
				rating:      ev.Rating,
				elapsedDays: elapsed,
				label:       label,
				reviewedAt:  ev.ReviewedAt,
			}
		}
		result[itemID] = reviews
	}
	return result
}

// countCrossDayReviews counts reviews with elapsed_days >= 1. Same-day
// repeats carry no forgetting-curve signal and are excluded from the loss.
func countCrossDayReviews(data map[string][]review) int {
	count := 0
	for _, reviews := range data {
		for _, r := range reviews {
			if r.elapsedDays >= 1.0 {
				count++
			}
		}
	}
	return count
}
