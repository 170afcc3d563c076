package ai

import (
	"context"
	"strings"

	"neurovault/application/ports"
)

// StaticClassifier is the development fallback when no classifier endpoint
// is configured. It proposes nothing, so discovery degrades to consolidation
// of already-analyzed entries.
type StaticClassifier struct{}

// NewStaticClassifier creates a no-op classifier
func NewStaticClassifier() *StaticClassifier {
	return &StaticClassifier{}
}

// Classify returns an empty proposal set
func (c *StaticClassifier) Classify(ctx context.Context, req ports.ClassificationRequest) (*ports.ClassificationResult, error) {
	return &ports.ClassificationResult{}, nil
}

// StaticSummarizer is the development fallback summarizer: it joins the
// first few source texts instead of distilling them.
type StaticSummarizer struct{}

// NewStaticSummarizer creates a naive concatenating summarizer
func NewStaticSummarizer() *StaticSummarizer {
	return &StaticSummarizer{}
}

// Summarize joins up to three source texts
func (s *StaticSummarizer) Summarize(ctx context.Context, req ports.SummaryRequest) (*ports.SummaryResult, error) {
	texts := req.EntryTexts
	if len(texts) > 3 {
		texts = texts[:3]
	}
	return &ports.SummaryResult{
		Summary: strings.Join(texts, " "),
	}, nil
}
