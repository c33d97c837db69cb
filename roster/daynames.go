package roster

import (
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/he"
)

// =============================================================================
// DAY NAMES - Presentation-time locale rendering of weekdays
// =============================================================================

// DefaultLocale is used when a requested locale is unknown.
const DefaultLocale = "en"

var translators = map[string]locales.Translator{
	"en": en.New(),
	"he": he.New(),
}

// DayName renders weekday in the given locale ("en", "he"), falling back to
// English for unknown locales.
func DayName(weekday time.Weekday, locale string) string {
	t, ok := translators[locale]
	if !ok {
		t = translators[DefaultLocale]
	}
	return t.WeekdayWide(weekday)
}

// SupportedLocale reports whether DayName has names for locale.
func SupportedLocale(locale string) bool {
	_, ok := translators[locale]
	return ok
}
