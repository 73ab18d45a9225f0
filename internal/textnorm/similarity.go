package textnorm

// Similarity returns the trigram Dice coefficient between the normalized
// forms of a and b, in [0, 1]. Identical normalized strings score 1;
// strings with no trigrams in common score 0.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	ta := trigrams(na)
	tb := trigrams(nb)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var shared int
	for g := range ta {
		if _, ok := tb[g]; ok {
			shared++
		}
	}

	return 2 * float64(shared) / float64(len(ta)+len(tb))
}

// trigrams returns the set of letter trigrams of s, padded so that short
// strings still produce at least one gram.
func trigrams(s string) map[string]struct{} {
	padded := "  " + s + " "
	grams := make(map[string]struct{})
	for i := 0; i+3 <= len(padded); i++ {
		grams[padded[i:i+3]] = struct{}{}
	}
	return grams
}
