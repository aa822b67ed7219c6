package answer

import (
	"time"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/search/mode"
)

// Record is the outcome of one answer request and the only value handed back to callers.
type Record struct {
	ID           string
	Answer       string
	ResponseTime time.Duration
	Verdict      Verdict
	ModelUsed    string
	Usage        domain.TokenUsage
	EvalUsage    domain.TokenUsage
	Cost         float64
	Category     string
	Mode         mode.Mode
	CreatedAt    time.Time
}

// NoResults is the record returned when author filtering leaves nothing to answer from.
// Nothing was generated or judged, so every counter is zero.
func NoResults(author, modelID string) Record {
	return Record{
		Answer:    "No relevant results found for this query & author (" + author + ")",
		ModelUsed: modelID,
		Verdict: Verdict{
			Label:       NonRelevant,
			Explanation: "All search results not relevant to chosen author " + author,
			Outcome:     Skipped,
		},
	}
}

// ResponseSeconds returns the generation latency in seconds.
func (r *Record) ResponseSeconds() float64 {
	return r.ResponseTime.Seconds()
}
