package usecase

import (
	"fmt"
	"regexp"
	"strings"
)

// citationPattern matches explicit citations like "주택임대차보호법 제7조"
// or "민법 제618조의2". The law title is everything before the first
// 제N조 group.
var citationPattern = regexp.MustCompile(`^\s*(.+?)\s*제\s*(\d+)\s*조(?:\s*의\s*(\d+))?`)

// parseCitation extracts (law title, article number) from a citation
// query. The article number is normalized to the stored "제N조" /
// "제N조의M" form. A query that does not parse is not an error: specific
// mode answers it with an empty result set.
func parseCitation(query string) (lawTitle, articleNo string, ok bool) {
	m := citationPattern.FindStringSubmatch(query)
	if m == nil {
		return "", "", false
	}

	lawTitle = strings.TrimSpace(m[1])
	if lawTitle == "" {
		return "", "", false
	}

	if m[3] != "" {
		articleNo = fmt.Sprintf("제%s조의%s", m[2], m[3])
	} else {
		articleNo = fmt.Sprintf("제%s조", m[2])
	}
	return lawTitle, articleNo, true
}
