package ports

import "context"

// The classifier and summarizer are external language-model collaborators.
// Both are untrusted: implementations validate responses at the boundary and
// return an error for anything that does not fully conform, never a
// partially-filled result.

// CategoryInput describes one category bucket handed to the classifier
type CategoryInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// EntryInput is the snapshot of a vault entry handed to the classifier
type EntryInput struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags"`
	Category string   `json:"category,omitempty"`
	Strength int      `json:"strength"`
}

// ClassificationRequest is the bounded working set for one discovery pass
type ClassificationRequest struct {
	Categories     []CategoryInput `json:"categories"`
	DeltaEntries   []EntryInput    `json:"delta_entries"`
	ContextEntries []EntryInput    `json:"context_entries"`
}

// TopicProposal groups delta entries under a shared topic
type TopicProposal struct {
	Topic      string   `json:"topic"`
	Category   string   `json:"category"`
	EntryIDs   []string `json:"entry_ids"`
	Tags       []string `json:"tags"`
	Importance int      `json:"importance"`
}

// SynapseProposal suggests a link between two entries. SourceID must belong
// to the delta set; TargetID may be any entry.
type SynapseProposal struct {
	SourceID string  `json:"source_id"`
	TargetID string  `json:"target_id"`
	Reason   string  `json:"reason"`
	Strength float64 `json:"strength"`
}

// ClassificationResult is the classifier's full response for one pass
type ClassificationResult struct {
	Topics   []TopicProposal   `json:"topics"`
	Synapses []SynapseProposal `json:"synapses"`
}

// Classifier proposes topics and links over a bounded working set of entries
type Classifier interface {
	// Classify returns proposals for the given working set. Any error,
	// including a malformed model response, means the caller must skip the
	// whole discovery step for this cycle.
	Classify(ctx context.Context, req ClassificationRequest) (*ClassificationResult, error)
}

// SummaryRequest asks for a distilled summary of a topic cluster's texts
type SummaryRequest struct {
	Topic      string   `json:"topic"`
	Category   string   `json:"category"`
	EntryTexts []string `json:"entry_texts"`
}

// SummaryResult is the summarizer's response for one cluster
type SummaryResult struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Summarizer distills a topic cluster's texts into a long-term summary
type Summarizer interface {
	// Summarize returns the distilled summary. Failure aborts only the
	// calling cluster's consolidation, not the whole cycle.
	Summarize(ctx context.Context, req SummaryRequest) (*SummaryResult, error)
}
