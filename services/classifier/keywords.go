package classifier

import (
	"context"
	"strings"
)

// Bucket is a topic label and the words that suggest it.
type Bucket struct {
	Label    string
	Keywords []string
}

// DefaultBuckets are checked in order; earlier buckets win ties.
var DefaultBuckets = []Bucket{
	{Label: "anxiety", Keywords: []string{"anxiety", "stress", "panic", "overwhelm", "worry"}},
	{Label: "depression", Keywords: []string{"depression", "sad", "low", "hopeless", "down"}},
	{Label: "relationships", Keywords: []string{"relationship", "friends", "family", "breakup", "peer"}},
	{Label: "academics", Keywords: []string{"exam", "study", "academic", "grades", "deadline"}},
	{Label: "sleep", Keywords: []string{"sleep", "insomnia", "tired"}},
}

// KeywordClassifier labels text by counting which bucket has the most of its
// keywords present. It backs the service's own /api/classify endpoint and can
// be used in-process in place of a Client.
type KeywordClassifier struct {
	buckets []Bucket
}

// NewKeywordClassifier uses DefaultBuckets when buckets is empty.
func NewKeywordClassifier(buckets []Bucket) *KeywordClassifier {
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}
	return &KeywordClassifier{buckets: buckets}
}

// Label returns the best bucket label for text, or "" when nothing matches.
func (k *KeywordClassifier) Label(text string) string {
	lower := strings.ToLower(text)
	best, bestHits := "", 0
	for _, b := range k.buckets {
		hits := 0
		for _, kw := range b.Keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = b.Label, hits
		}
	}
	return best
}

// Classify implements ranking.Classifier.
func (k *KeywordClassifier) Classify(_ context.Context, text string) (string, error) {
	return k.Label(text), nil
}
