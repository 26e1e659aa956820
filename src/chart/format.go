package chart

import (
	"fmt"
	"strings"
	"time"

	"market-watchlist/src/models"
)

var monthAbbrev = map[string][12]string{
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	"fr": {"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
}

// -----------------------------------------------------------------------------

// Formatter turns candle times into axis and tooltip labels. Output depends
// only on the time, the timeframe and the two fields, never on process locale
// or the host time zone.
type Formatter struct {
	Locale   string
	Location *time.Location
}

// NewFormatter normalizes locale ("fr-FR" becomes "fr"); unknown locales and
// a nil location fall back to en and UTC.
func NewFormatter(locale string, loc *time.Location) Formatter {
	lang := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if _, ok := monthAbbrev[lang]; !ok {
		lang = "en"
	}
	if loc == nil {
		loc = time.UTC
	}
	return Formatter{Locale: lang, Location: loc}
}

// -----------------------------------------------------------------------------

// Axis formats t for the x axis of a timeframe chart:
// M1 mm:ss, H1 HH:mm, D1 "DD Mon", W1 "Mon YY".
func (f Formatter) Axis(t time.Time, tf models.MTimeframe) string {
	t = t.In(f.location())
	switch tf {
	case models.TimeframeM1:
		return fmt.Sprintf("%02d:%02d", t.Minute(), t.Second())
	case models.TimeframeH1:
		return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
	case models.TimeframeW1:
		return fmt.Sprintf("%s %02d", f.month(t.Month()), t.Year()%100)
	default:
		return fmt.Sprintf("%02d %s", t.Day(), f.month(t.Month()))
	}
}

// Tooltip formats t as "DD Mon YYYY HH:mm".
func (f Formatter) Tooltip(t time.Time) string {
	t = t.In(f.location())
	return fmt.Sprintf("%02d %s %d %02d:%02d", t.Day(), f.month(t.Month()), t.Year(), t.Hour(), t.Minute())
}

// -----------------------------------------------------------------------------

func (f Formatter) month(m time.Month) string {
	names, ok := monthAbbrev[f.Locale]
	if !ok {
		names = monthAbbrev["en"]
	}
	return names[m-1]
}

func (f Formatter) location() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}
