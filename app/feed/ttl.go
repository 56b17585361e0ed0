package feed

import (
	"strings"
)

const (
	minute = 60
	hour   = 60 * minute
	day    = 24 * hour
	week   = 7 * day
	month  = 30 * day
	year   = 31557600
)

var synPeriods = map[string]int{
	"hourly":  hour,
	"daily":   day,
	"weekly":  week,
	"monthly": month,
	"yearly":  year,
}

var spanUnits = map[string]int{
	"second": 1,
	"minute": minute,
	"hour":   hour,
	"day":    day,
	"week":   week,
	"month":  month,
	"year":   year,
}

// synPeriodSeconds defaults to hourly, as the syndication module does.
func synPeriodSeconds(period string) int {
	if seconds, ok := synPeriods[strings.ToLower(strings.TrimSpace(period))]; ok {
		return seconds
	}
	return hour
}

// spanSeconds understands singular and plural unit names. Unknown or
// missing units are minutes.
func spanSeconds(span string) int {
	unit := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(span)), "s")
	if seconds, ok := spanUnits[unit]; ok {
		return seconds
	}
	return minute
}

// scaleTTL multiplies count by unit, saturating at ±maxTTL so the
// product cannot wrap.
func scaleTTL(count, unit, maxTTL int) int {
	limit := maxTTL / unit
	switch {
	case count > limit:
		return maxTTL
	case count < -limit:
		return -maxTTL
	}
	return count * unit
}

func clampTTL(ttl, maxTTL int) int {
	if ttl < 0 {
		return 0
	}
	if ttl > maxTTL {
		return maxTTL
	}
	return ttl
}

// resolveTTL tries the syndication module, then ttl, then the CDF
// schedule.
func (f *Feed) resolveTTL() int {
	roots := f.roots(ownerRoots)
	settings := f.engine.settings

	if frequency, ok := f.engine.extractInt(feedFields["syn_frequency"], roots); ok {
		period, _ := f.engine.value(roots, feedFields["syn_period"].Paths...)
		return clampTTL(scaleTTL(frequency, synPeriodSeconds(period), settings.MaxTTL), settings.MaxTTL)
	}

	if ttl, ok := f.engine.extractInt(feedFields["ttl"], roots); ok {
		span, _ := f.engine.value(roots, feedFields["ttl_span"].Paths...)
		return clampTTL(scaleTTL(ttl, spanSeconds(span), settings.MaxTTL), settings.MaxTTL)
	}

	days, _ := f.engine.extractInt(feedFields["schedule_day"], roots)
	hours, _ := f.engine.extractInt(feedFields["schedule_hour"], roots)
	minutes, _ := f.engine.extractInt(feedFields["schedule_min"], roots)
	seconds, _ := f.engine.extractInt(feedFields["schedule_sec"], roots)
	total := scaleTTL(seconds, 1, settings.MaxTTL) +
		scaleTTL(minutes, minute, settings.MaxTTL) +
		scaleTTL(hours, hour, settings.MaxTTL) +
		scaleTTL(days, day, settings.MaxTTL)
	if total > 0 {
		return clampTTL(total, settings.MaxTTL)
	}

	return clampTTL(settings.DefaultTTL, settings.MaxTTL)
}
