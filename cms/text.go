package cms

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const wordsPerMinute = 200

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	entityPattern = regexp.MustCompile(`&[^;\s]+;`)
)

// StripHTML drops tags, turns entities into spaces and trims the result.
func StripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = entityPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ReadTime estimates reading time for rendered HTML, never less than a minute.
func ReadTime(html string) string {
	words := len(strings.Fields(StripHTML(html)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return strconv.Itoa(minutes) + " min read"
}

// postDate trims a WordPress timestamp to its YYYY-MM-DD day. Anything it
// cannot parse is returned unchanged.
func postDate(s string) string {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
