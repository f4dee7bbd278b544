package types

// Verdict is the outcome of content classification.
type Verdict string

const (
	VerdictValid         Verdict = "valid"
	VerdictSpam          Verdict = "spam"
	VerdictInappropriate Verdict = "inappropriate"
)

// ClassificationResult is derived per message and never persisted.
type ClassificationResult struct {
	IsSpam          bool
	IsInappropriate bool
	IsGamingRelated bool
	// Priority is in [0, 10] and forced to 0 for rejected messages.
	Priority int
	Reason   Verdict
	// Rule names the first heuristic that fired, empty for valid messages.
	Rule string
}

// Rejected reports whether the message should be dropped.
func (c ClassificationResult) Rejected() bool {
	return c.Reason != VerdictValid
}
