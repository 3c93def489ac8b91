// Package locale turns provider timestamps into the human readable form shown
// in the views, picking the layout from the negotiated language.
package locale

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

type layout struct {
	tag    language.Tag
	format string
}

// The first entry is the fallback when nothing matches.
var layouts = []layout{
	{language.AmericanEnglish, "1/2/2006, 3:04:05 PM"},
	{language.BritishEnglish, "02/01/2006, 15:04:05"},
	{language.Swedish, "2006-01-02 15:04:05"},
	{language.German, "2.1.2006, 15:04:05"},
	{language.French, "02/01/2006 15:04:05"},
}

var matcher = language.NewMatcher(supportedTags())

func supportedTags() []language.Tag {
	tags := make([]language.Tag, len(layouts))
	for i, l := range layouts {
		tags[i] = l.tag
	}
	return tags
}

// Accepted input layouts, most specific first. A date-time without a zone is
// wall clock time in the display location; a bare date is UTC midnight.
var inputLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05Z0700", false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02", false},
}

// Formatter formats instants for one language in one time zone.
type Formatter struct {
	layout   string
	location *time.Location
}

// New returns a Formatter for the closest supported match of tag.
func New(tag language.Tag, location *time.Location) Formatter {
	if location == nil {
		location = time.Local
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		index = 0
	}
	return Formatter{
		layout:   layouts[index].format,
		location: location,
	}
}

func (f Formatter) Format(t time.Time) string {
	return t.In(f.location).Format(f.layout)
}

// Reformat parses value as a provider timestamp and formats it. ok is false
// when value is not a recognised timestamp; value is then returned unchanged.
func (f Formatter) Reformat(value string) (string, bool) {
	t, ok := Parse(value, f.location)
	if !ok {
		return value, false
	}
	return f.Format(t), true
}

// Parse reads a provider timestamp. Zone-less date-times are taken to be in
// location.
func Parse(value string, location *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, in := range inputLayouts {
		loc := time.UTC
		if in.local && location != nil {
			loc = location
		}
		if t, err := time.ParseInLocation(in.layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResolveTag picks the language from the Accept-Language header, falling back
// to fallback when the header is missing or unusable.
func ResolveTag(r *http.Request, fallback language.Tag) language.Tag {
	if r == nil {
		return fallback
	}
	accept := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if accept == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	tag, _, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	return tag
}

type contextKey struct{}

func NewContext(ctx context.Context, f Formatter) context.Context {
	return context.WithValue(ctx, contextKey{}, f)
}

// FromContext returns the request's Formatter, or fallback when none was set.
func FromContext(ctx context.Context, fallback Formatter) Formatter {
	if f, ok := ctx.Value(contextKey{}).(Formatter); ok {
		return f
	}
	return fallback
}
