package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neurovault/application/ports"
)

func completionWith(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":` + content + `}}]}`
}

func TestClassifier_CallBoundedByTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Hung endpoint: far slower than the configured timeout
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	classifier, err := NewClassifier("test-key", server.URL+"/v1", "test-model", 50*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	start := time.Now()
	_, err = classifier.Classify(context.Background(), ports.ClassificationRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClassifier_FastResponseWithinTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionWith(`"{\"topics\":[],\"synapses\":[]}"`)))
	}))
	defer server.Close()

	classifier, err := NewClassifier("test-key", server.URL+"/v1", "test-model", time.Second, zap.NewNop())
	require.NoError(t, err)

	result, err := classifier.Classify(context.Background(), ports.ClassificationRequest{})
	require.NoError(t, err)
	assert.Empty(t, result.Topics)
	assert.Empty(t, result.Synapses)
}

func TestSummarizer_CallBoundedByTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	summarizer, err := NewSummarizer("test-key", server.URL+"/v1", "test-model", 50*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	start := time.Now()
	_, err = summarizer.Summarize(context.Background(), ports.SummaryRequest{Topic: "sleep"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClassifier_DefaultsTimeoutWhenUnset(t *testing.T) {
	classifier, err := NewClassifier("test-key", "", "", 0, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, defaultCallTimeout, classifier.timeout)
}
