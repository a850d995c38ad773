package transform

import (
	"math/rand/v2"
	"time"
)

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// referenceSuffixLen is the length of the random part of an external reference ID.
const referenceSuffixLen = 6

// NewReferenceID builds "{yyyymmdd}-{6 chars A-Z0-9}" for the given instant.
func NewReferenceID(now time.Time, rng *rand.Rand) string {
	suffix := make([]byte, referenceSuffixLen)
	for i := range suffix {
		suffix[i] = referenceAlphabet[rng.IntN(len(referenceAlphabet))]
	}
	return now.UTC().Format("20060102") + "-" + string(suffix)
}
