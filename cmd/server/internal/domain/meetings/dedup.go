package meetings

import (
	"strings"

	"github.com/go-dedup/simhash"
)

// simhashThreshold is the Hamming distance at or below which two
// sentences from the same speaker count as the same utterance.
const simhashThreshold = 3

// dedupWindow bounds how far back near-duplicate detection looks.
// Streaming providers re-send recent sentences, not ancient ones.
const dedupWindow = 8

// dedupTimestampSlack is the max timestamp gap, in seconds, for two
// near-identical sentences to count as one delivery. A speaker saying
// the same thing again later must still be recorded.
const dedupTimestampSlack = 2.0

// sentenceFeatureSet implements simhash.FeatureSet over word shingles.
type sentenceFeatureSet struct {
	text string
}

func (s sentenceFeatureSet) GetFeatures() []simhash.Feature {
	words := strings.Fields(strings.ToLower(s.text))
	if len(words) == 0 {
		return []simhash.Feature{}
	}

	features := make([]simhash.Feature, 0, len(words))
	if len(words) == 1 {
		features = append(features, simhash.NewFeature([]byte(words[0])))
		return features
	}
	// Word bigrams keep short transcript sentences distinguishable
	// while tolerating punctuation and casing jitter.
	for i := 0; i < len(words)-1; i++ {
		features = append(features, simhash.NewFeature([]byte(words[i]+" "+words[i+1])))
	}
	return features
}

func sentenceFingerprint(text string) uint64 {
	sh := simhash.NewSimhash()
	return sh.GetSimhash(sentenceFeatureSet{text: text})
}

func hammingDistance(a, b uint64) int {
	x := a ^ b
	count := 0
	for x != 0 {
		count++
		x &= x - 1
	}
	return count
}

// isDuplicateEntry reports whether entry repeats something already in
// transcript: an exact replay anywhere, or a near-identical sentence
// from the same speaker within the recent window.
func isDuplicateEntry(transcript []TranscriptEntry, entry TranscriptEntry) bool {
	for _, existing := range transcript {
		if existing.Speaker == entry.Speaker && existing.Text == entry.Text && existing.Timestamp == entry.Timestamp {
			return true
		}
	}

	fp := sentenceFingerprint(entry.Text)
	start := len(transcript) - dedupWindow
	if start < 0 {
		start = 0
	}
	for _, existing := range transcript[start:] {
		if existing.Speaker != entry.Speaker {
			continue
		}
		gap := entry.Timestamp - existing.Timestamp
		if gap < 0 {
			gap = -gap
		}
		if gap > dedupTimestampSlack {
			continue
		}
		if hammingDistance(fp, sentenceFingerprint(existing.Text)) <= simhashThreshold {
			return true
		}
	}
	return false
}
