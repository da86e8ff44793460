package recurrence

import (
	"slices"

	"github.com/samber/mo"
)

// IsDueOn reports whether p produces an occurrence on day. It is the
// single predicate every other occurrence query is built on.
func IsDueOn(p Pattern, day Day) bool {
	if p.interval < 1 || day.Before(p.startDate) {
		return false
	}
	daysSinceStart := day.Sub(p.startDate)

	switch p.frequency {
	case Daily:
		return daysSinceStart%p.interval == 0

	case Weekly:
		if len(p.daysOfWeek) == 0 {
			return false
		}
		if (daysSinceStart/7)%p.interval != 0 {
			return false
		}
		return slices.Contains(p.daysOfWeek, day.Weekday())

	case Monthly:
		if p.monthly.IsZero() {
			return false
		}
		if monthsBetween(p.startDate, day)%p.interval != 0 {
			return false
		}
		return p.monthly.matches(day)

	default:
		return false
	}
}

// IsDueOn is shorthand for IsDueOn(p, day).
func (p Pattern) IsDueOn(day Day) bool { return IsDueOn(p, day) }

// NextOccurrenceAfter returns the first day from after (inclusive) on
// which p is due, looking at most Horizon days ahead.
func NextOccurrenceAfter(p Pattern, after Day) mo.Option[Day] {
	d := after
	for i := 0; i < Horizon; i++ {
		if IsDueOn(p, d) {
			return mo.Some(d)
		}
		d = d.AddDays(1)
	}
	return mo.None[Day]()
}

// HasOccurrenceInRange reports whether p is due on any day of the
// inclusive range [start, start+days]. Negative days is an empty range.
func HasOccurrenceInRange(p Pattern, start Day, days int) bool {
	for i := 0; i <= days; i++ {
		if IsDueOn(p, start.AddDays(i)) {
			return true
		}
	}
	return false
}

// Occurrences lists the days in [start, start+days] on which p is due.
func Occurrences(p Pattern, start Day, days int) []Day {
	var out []Day
	for i := 0; i <= days; i++ {
		d := start.AddDays(i)
		if IsDueOn(p, d) {
			out = append(out, d)
		}
	}
	return out
}

// Engine provides the recurrence queries with optional memoization.
// The package-level functions are the uncached equivalents.
type Engine struct {
	cache  *RecurrenceCache
	config EngineConfig
}

// NewEngine creates an engine with DefaultEngineConfig.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

// IsDueOn is never cached; a single predicate evaluation is cheaper than
// the cache key.
func (e *Engine) IsDueOn(p Pattern, day Day) bool {
	return IsDueOn(p, day)
}

func (e *Engine) NextOccurrenceAfter(p Pattern, after Day) mo.Option[Day] {
	if e.cache == nil {
		return NextOccurrenceAfter(p, after)
	}
	if v, ok := e.cache.Get(opNextOccurrence, p, after, Horizon); ok {
		if next, ok := v.(mo.Option[Day]); ok {
			return next
		}
	}
	next := NextOccurrenceAfter(p, after)
	e.cache.Set(opNextOccurrence, p, after, Horizon, next)
	return next
}

// HasOccurrenceInRange checks the whole of [start, start+days]. Ranges
// longer than config.MaxRangeDays bypass the cache.
func (e *Engine) HasOccurrenceInRange(p Pattern, start Day, days int) bool {
	if e.cache == nil || (e.config.MaxRangeDays > 0 && days > e.config.MaxRangeDays) {
		return HasOccurrenceInRange(p, start, days)
	}
	if v, ok := e.cache.Get(opHasOccurrence, p, start, days); ok {
		if has, ok := v.(bool); ok {
			return has
		}
	}
	has := HasOccurrenceInRange(p, start, days)
	e.cache.Set(opHasOccurrence, p, start, days, has)
	return has
}

// Close releases the engine's cache, if any.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// CacheStats reports cache occupancy; zero when caching is disabled.
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}
