package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifierLabel(t *testing.T) {
	k := NewKeywordClassifier(nil)

	cases := map[string]string{
		"Constant worry and panic attacks before class":  "anxiety",
		"I feel hopeless and sad most days":              "depression",
		"my breakup with my partner and family pressure": "relationships",
		"grades are slipping and the exam deadline":      "academics",
		"INSOMNIA every night":                           "sleep",
		"nothing in particular":                          "",
	}
	for text, want := range cases {
		assert.Equal(t, want, k.Label(text), text)
	}
}

func TestKeywordClassifierTieGoesToEarlierBucket(t *testing.T) {
	k := NewKeywordClassifier(nil)
	// one anxiety keyword, one sleep keyword
	assert.Equal(t, "anxiety", k.Label("stress keeps me from sleep"))
}

func TestKeywordClassifierCustomBuckets(t *testing.T) {
	k := NewKeywordClassifier([]Bucket{{Label: "career", Keywords: []string{"job", "internship"}}})

	label, err := k.Classify(context.Background(), "worried about my internship")
	assert.NoError(t, err)
	assert.Equal(t, "career", label)
}
