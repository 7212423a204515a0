package lingua

// HasAll reports whether every stem of phrase appears among the stems of
// text. An empty phrase never matches.
func HasAll(st Stemmer, locale, text, phrase string) bool {
	want := st.Stem(locale, phrase)
	if len(want) == 0 {
		return false
	}
	have := stemSet(st, locale, text)
	for _, w := range want {
		if _, ok := have[w]; !ok {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one stem of phrase appears among the
// stems of text.
func HasAny(st Stemmer, locale, text, phrase string) bool {
	want := st.Stem(locale, phrase)
	if len(want) == 0 {
		return false
	}
	have := stemSet(st, locale, text)
	for _, w := range want {
		if _, ok := have[w]; ok {
			return true
		}
	}
	return false
}

func stemSet(st Stemmer, locale, text string) map[string]struct{} {
	stems := st.Stem(locale, text)
	set := make(map[string]struct{}, len(stems))
	for _, s := range stems {
		set[s] = struct{}{}
	}
	return set
}
