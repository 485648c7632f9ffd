package submit

import (
	"regexp"
	"strings"
)

var (
	modernArxivID = regexp.MustCompile(`^[0-9]{4}\.[0-9]{4,5}(?:v[0-9]+)?$`)
	legacyArxivID = regexp.MustCompile(`^[a-z\-]+(?:\.[A-Z]{2})?/[0-9]{7}(?:v[0-9]+)?$`)
)

// normalizeURL expands bare arXiv identifiers such as "2301.00001" or "arXiv:hep-th/9901001"
// into abstract page URLs. Anything else is passed through for the service to judge.
func normalizeURL(input string) string {
	id := strings.TrimSpace(input)
	if len(id) > len("arxiv:") && strings.EqualFold(id[:len("arxiv:")], "arxiv:") {
		id = strings.TrimSpace(id[len("arxiv:"):])
	}
	if modernArxivID.MatchString(id) || legacyArxivID.MatchString(id) {
		return "https://arxiv.org/abs/" + id
	}
	return input
}
