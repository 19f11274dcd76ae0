package sanpo

import "strings"

// KeywordSet is an immutable, ordered list of keywords.
type KeywordSet struct {
	words []string
}

// NewKeywordSet returns a set of the given keywords. Empty keywords are
// ignored since they would match every string.
func NewKeywordSet(words ...string) KeywordSet {
	s := KeywordSet{words: make([]string, 0, len(words))}
	for _, w := range words {
		if w != "" {
			s.words = append(s.words, w)
		}
	}
	return s
}

// Words returns a copy of the keywords.
func (s KeywordSet) Words() []string {
	return append([]string(nil), s.words...)
}

// Match reports whether text contains at least one keyword as a substring.
func (s KeywordSet) Match(text string) bool {
	for _, w := range s.words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Filter returns the elements of texts matched by the set, in order.
// The result is never nil.
func (s KeywordSet) Filter(texts []string) []string {
	out := []string{}
	for _, t := range texts {
		if s.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Keywords groups the keyword sets used for paragraph classification.
type Keywords struct {
	Risk     KeywordSet
	Cost     KeywordSet
	Operator KeywordSet
}

// DefaultKeywords returns the fixed Japanese keyword sets for risk
// ("caution", "risk", "disadvantage", "trouble", "danger"), cost ("cost",
// "fee", "initial cost", "commission", "price") and operator ("company",
// "operation", "management", "business operator", "corporation").
func DefaultKeywords() Keywords {
	return Keywords{
		Risk:     NewKeywordSet("注意", "リスク", "デメリット", "トラブル", "危険"),
		Cost:     NewKeywordSet("費用", "料金", "初期費用", "手数料", "価格"),
		Operator: NewKeywordSet("会社", "運営", "管理", "事業者", "法人"),
	}
}

// Classify tags paragraphs into the risk, cost and operator buckets.
// Buckets are computed independently over the same paragraphs.
func (k Keywords) Classify(paragraphs []string) Semantic {
	return Semantic{
		Risks:        k.Risk.Filter(paragraphs),
		Costs:        k.Cost.Filter(paragraphs),
		OperatorInfo: k.Operator.Filter(paragraphs),
	}
}
