package usecase

import "strings"

// defaultLegalTerms is the compiled-in legal/real-estate vocabulary the
// query enhancer scans for. Conversational questions and statute text
// differ sharply in register; prepending the matched terms as a synthetic
// title line biases the query embedding toward document-chunk phrasing.
var defaultLegalTerms = []string{
	"임대차", "전세", "월세", "보증금", "계약갱신", "갱신요구", "묵시적갱신",
	"전입신고", "확정일자", "우선변제", "대항력", "임차권", "전세권",
	"등기", "저당권", "근저당", "가압류", "중개보수", "중개수수료",
	"양도소득세", "취득세", "재산세", "종합부동산세", "분양", "청약",
	"재개발", "재건축", "위약금", "계약해지", "손해배상", "과태료",
}

// particleSuffixes are the postposition endings accepted after a term
// when matching whitespace tokens, e.g. "보증금을", "등기의".
var particleSuffixes = []string{
	"에", "의", "을", "를", "은", "는", "이", "가", "도", "만",
	"로", "으로", "에서", "과", "와", "까지", "부터", "에는", "에도",
}

const maxEnhanceTerms = 3

// QueryEnhancer rewrites a conversational question into a form closer to
// the embedding space of legal-document chunks. Pure; no failure mode.
type QueryEnhancer struct {
	terms []string
}

func NewQueryEnhancer(terms []string) *QueryEnhancer {
	if len(terms) == 0 {
		terms = defaultLegalTerms
	}
	return &QueryEnhancer{terms: terms}
}

// Enhance collects up to three distinct known terms in first-seen order
// and prepends them as a title line. Queries without a known term pass
// through unchanged.
func (e *QueryEnhancer) Enhance(query string) string {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return query
	}

	matched := make([]string, 0, maxEnhanceTerms)
	seen := make(map[string]struct{}, maxEnhanceTerms)
	for _, token := range tokens {
		if len(matched) == maxEnhanceTerms {
			break
		}
		term, ok := e.matchToken(token)
		if !ok {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		matched = append(matched, term)
	}

	if len(matched) == 0 {
		return query
	}
	return strings.Join(matched, " ") + "\n" + query
}

func (e *QueryEnhancer) matchToken(token string) (string, bool) {
	token = strings.Trim(token, "?!.,·()[]\"'“”‘’")
	if token == "" {
		return "", false
	}
	for _, term := range e.terms {
		if token == term {
			return term, true
		}
		if !strings.HasPrefix(token, term) {
			continue
		}
		rest := token[len(term):]
		for _, suffix := range particleSuffixes {
			if rest == suffix {
				return term, true
			}
		}
	}
	return "", false
}
