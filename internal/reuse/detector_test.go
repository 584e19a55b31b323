package reuse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(threshold float64) *Detector {
	return NewDetector(NewShingleJaccard(), threshold)
}

func TestFindMatches_EmptyCorpus(t *testing.T) {
	d := newTestDetector(30)
	matches, err := d.FindMatches(context.Background(), "anything at all", nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.NotNil(t, matches)
}

func TestFindMatches_ExactMatchScores100(t *testing.T) {
	d := newTestDetector(30)
	text := "students must not share exam answers with other students"
	corpus := []CorpusDoc{
		{Name: "policy.txt", Fingerprint: "f1", Signature: d.Signature(text)},
	}

	matches, err := d.FindMatches(context.Background(), text, corpus)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "policy.txt", matches[0].Name)
	assert.Equal(t, 100.0, matches[0].Similarity)
}

func TestFindMatches_BelowThresholdExcluded(t *testing.T) {
	d := newTestDetector(90)
	corpus := []CorpusDoc{
		{Name: "a", Fingerprint: "f1", Signature: d.Signature("the quick brown fox jumps over the lazy dog")},
	}

	matches, err := d.FindMatches(context.Background(), "the quick brown fox sleeps under a different dog entirely", corpus)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindMatches_OrderedBySimilarityDesc(t *testing.T) {
	d := newTestDetector(1)
	text := "alpha beta gamma delta epsilon zeta eta theta"
	corpus := []CorpusDoc{
		{Name: "weak", Fingerprint: "f1", Signature: d.Signature("alpha beta gamma unrelated words follow here now then")},
		{Name: "strong", Fingerprint: "f2", Signature: d.Signature("alpha beta gamma delta epsilon zeta eta theta")},
	}

	matches, err := d.FindMatches(context.Background(), text, corpus)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "strong", matches[0].Name)
	assert.Equal(t, "weak", matches[1].Name)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
}

func TestFindMatches_TiesKeepInsertionOrder(t *testing.T) {
	d := newTestDetector(1)
	text := "one two three four five six"
	sig := d.Signature(text)
	corpus := []CorpusDoc{
		{Name: "first", Fingerprint: "f1", Signature: sig},
		{Name: "second", Fingerprint: "f2", Signature: sig},
	}

	matches, err := d.FindMatches(context.Background(), text, corpus)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "first", matches[0].Name)
	assert.Equal(t, "second", matches[1].Name)
}

func TestFindMatches_CancelledContext(t *testing.T) {
	d := newTestDetector(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	corpus := make([]CorpusDoc, 1000)
	for i := range corpus {
		corpus[i] = CorpusDoc{Name: "n", Fingerprint: "f", Signature: d.Signature("some corpus text")}
	}

	// Either every goroutine ran before observing cancellation or the scan
	// aborted; both are acceptable, but an abort must surface the ctx error.
	if _, err := d.FindMatches(ctx, "some corpus text", corpus); err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
