package sheet

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Header grammar:
//
//	header  = [ prefix ] label [ "[" code "]" ]
//	prefix  = ("compare" | "comp") ":"      (case-insensitive)
//	code    = 3 digits
//
// The prefix forces a column into comparison data; the code binds the column
// to a SurveyQuestion.
var headerPattern = regexp.MustCompile(`^(?i:(compare|comp)\s*:)?\s*(.*?)\s*(?:\[(\d{3})\])?\s*$`)

var codeSuffix = regexp.MustCompile(`\[(\d{3})\]\s*$`)

// Header is a parsed column header.
type Header struct {
	Raw     string
	Key     string // Raw without the compare prefix; used as comparison data key
	Label   string // Key without the code suffix and trailing colons
	Code    string // "" when uncoded
	Compare bool
}

func ParseHeader(raw string) Header {
	h := Header{Raw: raw, Key: strings.TrimSpace(raw)}
	m := headerPattern.FindStringSubmatch(raw)
	if m == nil {
		h.Label = trimLabel(h.Key)
		return h
	}
	if m[1] != "" {
		h.Compare = true
		h.Key = strings.TrimSpace(raw[strings.Index(raw, ":")+1:])
	}
	h.Label = trimLabel(m[2])
	h.Code = m[3]
	return h
}

// CodeOf returns the trailing question code of a header, or "".
func CodeOf(header string) string {
	m := codeSuffix.FindStringSubmatch(header)
	if m == nil {
		return ""
	}
	return m[1]
}

// LabelOf strips the code suffix and trailing colons from a header.
func LabelOf(header string) string {
	return ParseHeader(header).Label
}

// NormalizeKey is the fuzzy-match form of a header: label only, case-folded.
func NormalizeKey(header string) string {
	return fold(ParseHeader(header).Label)
}

// Lookup returns the first non-empty value among row columns whose normalized
// key equals one of the candidates, trying candidates in order. Compare-prefixed
// columns never match.
func Lookup(row Row, candidates ...string) (string, bool) {
	keys := make([]string, 0, len(row))
	for k := range row {
		if !ParseHeader(k).Compare {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, c := range candidates {
		want := fold(trimLabel(c))
		for _, k := range keys {
			if v := row[k]; NormalizeKey(k) == want && !IsEmpty(v) {
				return strings.TrimSpace(v), true
			}
		}
	}
	return "", false
}

func trimLabel(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ":"))
}

func fold(s string) string {
	return strings.TrimSpace(cases.Fold().String(s))
}
