// Package stats turns raw session history into display-ready summaries.
// Everything here is a pure function over the caller's slices.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/mfcarvalho/flashdeck-api/models"
)

// Result is a finished session reduced to the fields a PerformanceRecord
// carries.
type Result struct {
	Accuracy       int
	CompletionTime int
	CorrectAnswers int
	TotalQuestions int
	CardErrors     []string
}

// Summary is the best-ever view over a class's history. Accuracy and time
// are independent extremes, not taken from the same record.
type Summary struct {
	BestAccuracy  int `json:"bestAccuracy"`
	BestTime      int `json:"bestTime"`
	TotalSessions int `json:"totalSessions"`
}

// CardError pairs a live flashcard with how many sessions missed it.
type CardError struct {
	Card       models.Flashcard `json:"card"`
	ErrorCount int              `json:"errorCount"`
}

// Accuracy is the whole-percentage score for a session. The denominator is
// the deck size at session start, not the count actually answered, so the
// value stays correct even if a session is ever finalized early.
func Accuracy(correctAnswers, deckSize int) int {
	if deckSize <= 0 {
		return 0
	}
	return int(math.Round(float64(correctAnswers) / float64(deckSize) * 100))
}

// Finalize reduces a completed session to a Result.
func Finalize(correctAnswers, deckSize int, cardErrors []string, elapsed time.Duration) Result {
	return Result{
		Accuracy:       Accuracy(correctAnswers, deckSize),
		CompletionTime: int(elapsed.Seconds()),
		CorrectAnswers: correctAnswers,
		TotalQuestions: deckSize,
		CardErrors:     cardErrors,
	}
}

// Best returns the best accuracy, best (lowest) completion time and session
// count over a class's history, or nil when there is none.
func Best(records []models.PerformanceRecord) *Summary {
	if len(records) == 0 {
		return nil
	}

	summary := Summary{
		BestAccuracy:  records[0].Accuracy,
		BestTime:      records[0].CompletionTime,
		TotalSessions: len(records),
	}
	for _, record := range records[1:] {
		if record.Accuracy > summary.BestAccuracy {
			summary.BestAccuracy = record.Accuracy
		}
		if record.CompletionTime < summary.BestTime {
			summary.BestTime = record.CompletionTime
		}
	}
	return &summary
}

// CardErrorRanking counts how many sessions missed each card and ranks the
// cards by that count, highest first. Ties keep first-encounter order.
// Error entries pointing at cards that no longer exist are dropped.
func CardErrorRanking(records []models.PerformanceRecord, liveCards []models.Flashcard) []CardError {
	counts := make(map[string]int)
	var order []string
	for _, record := range records {
		for _, cardID := range record.CardErrors {
			if _, seen := counts[cardID]; !seen {
				order = append(order, cardID)
			}
			counts[cardID]++
		}
	}

	cardsByID := make(map[string]models.Flashcard, len(liveCards))
	for _, card := range liveCards {
		cardsByID[card.PublicID] = card
	}

	ranking := make([]CardError, 0, len(order))
	for _, cardID := range order {
		card, live := cardsByID[cardID]
		if !live {
			continue
		}
		ranking = append(ranking, CardError{Card: card, ErrorCount: counts[cardID]})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].ErrorCount > ranking[j].ErrorCount
	})
	return ranking
}
