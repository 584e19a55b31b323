package reuse

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// CorpusDoc is the searchable projection of a stored document: identifying
// metadata plus its precomputed signature. Plaintext and ciphertext never
// enter the detector.
type CorpusDoc struct {
	Name        string
	Fingerprint string
	Signature   Signature
}

// Match reports one corpus document whose similarity to the candidate text
// met the detector threshold. Similarity is a percentage in [0, 100].
// Matches are ephemeral: computed per request, never persisted.
type Match struct {
	Name        string  `json:"document"`
	Fingerprint string  `json:"fingerprint"`
	Similarity  float64 `json:"similarity"`
}

// Detector scores candidate text against a corpus of signatures.
type Detector struct {
	strategy  Strategy
	threshold float64 // percent, inclusive lower bound
}

// NewDetector wraps a Strategy with a similarity threshold in percent.
// Matches strictly below the threshold are excluded.
func NewDetector(strategy Strategy, threshold float64) *Detector {
	return &Detector{strategy: strategy, threshold: threshold}
}

// Signature exposes the underlying strategy so callers can compute the
// stored signature at upload time with the same algorithm used for checks.
func (d *Detector) Signature(text string) Signature {
	return d.strategy.Signature(text)
}

// FindMatches scores text against every corpus document and returns matches
// at or above the threshold, highest similarity first. Ties keep corpus
// order, so earlier-inserted documents come first. An empty corpus yields an
// empty result, never an error.
func (d *Detector) FindMatches(ctx context.Context, text string, corpus []CorpusDoc) ([]Match, error) {
	candidate := d.strategy.Signature(text)

	scores := make([]float64, len(corpus))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range corpus {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scores[i] = d.strategy.Similarity(candidate, corpus[i].Signature)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := make([]Match, 0)
	for i, doc := range corpus {
		pct := math.Round(scores[i]*1000) / 10
		if pct < d.threshold {
			continue
		}
		matches = append(matches, Match{
			Name:        doc.Name,
			Fingerprint: doc.Fingerprint,
			Similarity:  pct,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches, nil
}
