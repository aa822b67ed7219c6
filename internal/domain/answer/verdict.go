package answer

// Label is the relevance grade assigned by the judge model.
type Label string

// Relevance labels.
const (
	Relevant       Label = "RELEVANT"
	PartlyRelevant Label = "PARTLY_RELEVANT"
	NonRelevant    Label = "NON_RELEVANT"
	Unknown        Label = "UNKNOWN"
)

// IsGraded reports whether the label is one of the three judge grades.
func (l Label) IsGraded() bool {
	return l == Relevant || l == PartlyRelevant || l == NonRelevant
}

// Outcome tells how a verdict was obtained from raw judge output.
type Outcome string

// Parse outcomes.
const (
	// Structured means the judge returned valid JSON with a known label.
	Structured Outcome = "structured"
	// HeuristicMatch means a label token was found in otherwise unparsable text.
	HeuristicMatch Outcome = "heuristic"
	// Unparseable means no label could be recovered.
	Unparseable Outcome = "unparseable"
	// Skipped means the judge was not consulted (empty context).
	Skipped Outcome = "skipped"
)

// Verdict is the judge's grade of an answer.
type Verdict struct {
	Label       Label
	Explanation string
	Outcome     Outcome
}
