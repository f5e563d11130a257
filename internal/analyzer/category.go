package analyzer

import (
	"gonum.org/v1/gonum/stat"

	"github.com/rfswitch/rfswitch/internal/pulse"
)

// category groups pulses of one level whose durations cluster within
// ±tolerancePercent of a running weighted average. Matching uses the
// running average (cheap, incremental); samples are retained so the
// final proposed timing can be reported from a proper mean.
type category struct {
	level   pulse.Level
	avg     float64
	min     uint32
	max     uint32
	samples []float64
}

func newCategory(level pulse.Level, duration uint32) *category {
	return &category{
		level:   level,
		avg:     float64(duration),
		min:     duration,
		max:     duration,
		samples: []float64{float64(duration)},
	}
}

// matches reports whether a pulse at this level and duration belongs in
// the category, within ±tolerancePercent of the running average.
func (c *category) matches(level pulse.Level, duration uint32, tolerancePercent float64) bool {
	if level != c.level {
		return false
	}
	tol := c.avg * tolerancePercent / 100
	d := float64(duration)
	return d >= c.avg-tol && d <= c.avg+tol
}

// add folds duration into the running average and min/max, and records
// the sample for the final reported mean.
func (c *category) add(duration uint32) {
	n := float64(len(c.samples))
	c.avg = (c.avg*n + float64(duration)) / (n + 1)
	if duration < c.min {
		c.min = duration
	}
	if duration > c.max {
		c.max = duration
	}
	c.samples = append(c.samples, float64(duration))
}

// mean returns the category's mean duration computed from its retained
// samples, used only for the final reported proposal, not for matching.
func (c *category) mean() float64 {
	if len(c.samples) == 0 {
		return c.avg
	}
	return stat.Mean(c.samples, nil)
}

// collection is a fixed-capacity, overflow-counted set of categories.
type collection struct {
	categories []*category
	capacity   int
	overflow   int
}

func newCollection(capacity int) *collection {
	return &collection{capacity: capacity}
}

// put finds an existing category for (level, duration) or creates one if
// room remains; otherwise drops the pulse and counts an overflow.
func (c *collection) put(level pulse.Level, duration uint32, tolerancePercent float64) {
	for _, cat := range c.categories {
		if cat.matches(level, duration, tolerancePercent) {
			cat.add(duration)
			return
		}
	}
	if len(c.categories) < c.capacity {
		c.categories = append(c.categories, newCategory(level, duration))
		return
	}
	c.overflow++
}

func (c *collection) len() int { return len(c.categories) }
