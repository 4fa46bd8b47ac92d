// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textutil

// stopwords are common English function words, apostrophes removed to
// match Clean. Contractions that collide with real words once the
// apostrophe is gone ("we'll", "she'll") are left out.
var stopwords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are", "arent", "as", "at",
	"be", "because", "been", "before", "being", "below", "between", "both", "but", "by", "cant", "cannot", "could",
	"couldnt", "did", "didnt", "do", "does", "doesnt", "doing", "dont", "down", "during", "each", "few", "for",
	"from", "further", "had", "hadnt", "has", "hasnt", "have", "havent", "having", "he", "hed", "hes",
	"her", "here", "heres", "hers", "herself", "him", "himself", "his", "how", "hows", "i", "im",
	"ive", "if", "in", "into", "is", "isnt", "it", "its", "itself", "lets", "me", "more", "most", "mustnt",
	"my", "myself", "no", "nor", "not", "of", "off", "on", "once", "only", "or", "other", "ought", "our", "ours",
	"ourselves", "out", "over", "own", "same", "shant", "she", "shes", "should", "shouldnt",
	"so", "some", "such", "than", "that", "thats", "the", "their", "theirs", "them", "themselves", "then", "there",
	"theres", "these", "they", "theyd", "theyll", "theyre", "theyve", "this", "those", "through", "to", "too",
	"under", "until", "up", "very", "was", "wasnt", "we", "were", "weve", "werent",
	"what", "whats", "when", "whens", "where", "wheres", "which", "while", "who", "whos", "whom", "why", "whys",
	"with", "wont", "would", "wouldnt", "you", "youd", "youll", "youre", "youve", "your", "yours", "yourself",
	"yourselves",
)

// IsStopword reports whether w (already cleaned) is a stopword.
func IsStopword(w string) bool {
	return stopwords[w]
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
