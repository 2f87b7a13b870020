package match

import (
	"strings"

	"github.com/agext/levenshtein"

	"github.com/verdict-engine/verdict/internal/normalize"
)

// fieldSimilarity scores two field names in [0,1]. Names are folded to
// canonical keys first, so case and separator differences never dilute
// the score. A token-containment bonus stops short compound renamings
// ("unit_price" vs "price") from scoring below the arbitration band on
// edit distance alone.
func fieldSimilarity(a, b string) float64 {
	ka := normalize.CanonicalKey(a)
	kb := normalize.CanonicalKey(b)
	if ka == kb {
		return 1.0
	}

	score := levenshtein.Similarity(ka, kb, nil)

	if tokenContains(ka, kb) || tokenContains(kb, ka) {
		const containmentFloor = 0.6
		if score < containmentFloor {
			score = containmentFloor
		}
	}
	return score
}

// tokenContains reports whether every underscore token of needle appears
// among haystack's tokens.
func tokenContains(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	hay := strings.Split(haystack, "_")
	for _, tok := range strings.Split(needle, "_") {
		found := false
		for _, h := range hay {
			if h == tok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
