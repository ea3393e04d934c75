package dto

// FailureBucket classifies a failed message for bulk-retry tooling.
type FailureBucket string

const (
	BucketRetryable      FailureBucket = "retryable"
	BucketNonRetryable   FailureBucket = "non_retryable"
	BucketRequiresAction FailureBucket = "requires_action"
)

// FailureGroup aggregates failed messages sharing one distinct error text.
type FailureGroup struct {
	ErrorMessage string   `json:"errorMessage"`
	Count        int      `json:"count"`
	MessageIDs   []string `json:"messageIds"`
}

// FailureReport is the operator-facing view of a session's failures,
// grouped per bucket and per distinct error text.
type FailureReport struct {
	Retryable      []FailureGroup `json:"retryable"`
	NonRetryable   []FailureGroup `json:"nonRetryable"`
	RequiresAction []FailureGroup `json:"requiresAction"`
}

func (r *FailureReport) Total() int {
	n := 0
	for _, groups := range [][]FailureGroup{r.Retryable, r.NonRetryable, r.RequiresAction} {
		for _, g := range groups {
			n += g.Count
		}
	}
	return n
}

// RetryRequest selects failed messages to requeue. An empty MessageIDs
// means every failed message of the session.
type RetryRequest struct {
	MessageIDs []string `json:"messageIds,omitempty"`
}

type SkippedMessage struct {
	MessageID string `json:"messageId"`
	Reason    string `json:"reason"`
}

// RetryReport is best-effort: skipped items did not abort the rest.
type RetryReport struct {
	Requeued int              `json:"requeued"`
	Skipped  []SkippedMessage `json:"skipped,omitempty"`
}
