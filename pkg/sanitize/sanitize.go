package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	strict *bluemonday.Policy
)

// Text strips all markup from user-supplied text and collapses surrounding
// whitespace. Notification titles and messages pass through here before
// persistence so the stored value never contains executable markup.
func Text(value string) string {
	once.Do(func() {
		strict = bluemonday.StrictPolicy()
	})

	cleaned := strict.Sanitize(value)
	// bluemonday escapes entities that survive tag stripping; store the
	// plain-text form, not the escaped one.
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
