package config

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// DisplayConfig controls how provider timestamps are shown when the browser
// does not ask for a supported language.
type DisplayConfig interface {
	GetLocale() language.Tag
	GetLocation() *time.Location
}

type Display struct {
	Locale   string `env:"LOCALE" envDefault:"en-US"`
	TimeZone string `env:"DISPLAY_TZ"`
}

var _ DisplayConfig = Display{}

func (d Display) validate() error {
	if _, err := language.Parse(d.Locale); err != nil {
		return fmt.Errorf("invalid LOCALE %q: %w", d.Locale, err)
	}
	if d.TimeZone != "" {
		if _, err := time.LoadLocation(d.TimeZone); err != nil {
			return fmt.Errorf("invalid DISPLAY_TZ %q: %w", d.TimeZone, err)
		}
	}
	return nil
}

func (d Display) GetLocale() language.Tag {
	tag, err := language.Parse(d.Locale)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

func (d Display) GetLocation() *time.Location {
	if d.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}
