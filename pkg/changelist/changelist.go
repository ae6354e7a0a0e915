// Package changelist renders a bounded, time-stamped list of per-block
// scalar changes into a sample-accurate output vector with a configurable
// linear glide that survives across block boundaries.
//
// The shape mirrors the teacher's parameter smoother
// (pkg/framework/param.Smoother: current/target/step, LinearSmoothing)
// generalized from "one target per parameter" to "N time-stamped targets
// per block", and its per-sample stepping loop is the same style as the
// teacher's ADSR envelope (pkg/dsp/envelope.ADSR.Next).
package changelist

// change is one pending (time, value) entry within the current block.
type change struct {
	time  int
	value float64
}

// ChangeList is a per-parameter insertion queue rendered to a sample
// buffer with glide. Insertions must be monotonic in time; glide state
// (currentValue, glideEndValue, glideCounter) is retained across
// clearChanges() / block boundaries, not reset by them.
type ChangeList struct {
	changes   []change
	numPend   int
	lastTime  int
	hasLast   bool
	maxPerBlk int

	sampleRate float64
	glideTime  float64

	glideInSamples    int
	invGlideInSamples float64

	currentValue   float64
	glideStartVal  float64
	glideEndVal    float64
	glideCounter   int
}

// New creates a ChangeList sized for at most maxChangesPerBlock changes
// in a single block (spec's "one change per sample" worst case).
func New(maxChangesPerBlock int) *ChangeList {
	if maxChangesPerBlock < 1 {
		maxChangesPerBlock = 1
	}
	return &ChangeList{
		changes:   make([]change, maxChangesPerBlock),
		maxPerBlk: maxChangesPerBlock,
	}
}

// SetDims reallocates the per-block change capacity.
func (c *ChangeList) SetDims(maxChangesPerBlock int) {
	if maxChangesPerBlock < 1 {
		maxChangesPerBlock = 1
	}
	c.changes = make([]change, maxChangesPerBlock)
	c.maxPerBlk = maxChangesPerBlock
	c.numPend = 0
	c.hasLast = false
}

// SetSampleRate sets the sample rate used to convert glideTime (seconds)
// into glideInSamples; recomputes glide coefficients.
func (c *ChangeList) SetSampleRate(sr float64) {
	c.sampleRate = sr
	c.recalcGlide()
}

// SetGlideTime sets the glide time in seconds; recomputes glide
// coefficients. glideTime == 0 makes changes apply as a step function.
func (c *ChangeList) SetGlideTime(seconds float64) {
	c.glideTime = seconds
	c.recalcGlide()
}

func (c *ChangeList) recalcGlide() {
	samples := int(c.sampleRate * c.glideTime)
	c.glideInSamples = samples
	if samples > 0 {
		c.invGlideInSamples = 1.0 / float64(samples)
	} else {
		c.invGlideInSamples = 0
	}
}

// AddChange appends a (value, time) pair. Dropped silently, per spec
// §7, if time is less than the previous change's time in this block or
// if the per-block capacity is exceeded.
func (c *ChangeList) AddChange(value float64, time int) {
	if c.hasLast && time < c.lastTime {
		return
	}
	if c.numPend >= c.maxPerBlk {
		return
	}
	c.changes[c.numPend] = change{time: time, value: value}
	c.numPend++
	c.lastTime = time
	c.hasLast = true
}

// ClearChanges drops the pending change queue for the next block but
// retains currentValue, glideStartVal, glideEndVal and glideCounter —
// an in-flight glide carries over the block boundary.
func (c *ChangeList) ClearChanges() {
	c.numPend = 0
	c.hasLast = false
}

// Zero forces all state, including any in-flight glide, to zero.
func (c *ChangeList) Zero() {
	c.numPend = 0
	c.hasLast = false
	c.currentValue = 0
	c.glideStartVal = 0
	c.glideEndVal = 0
	c.glideCounter = 0
}

// CurrentValue returns the last rendered sample value without advancing
// state; useful for testing final-sample invariants across voices.
func (c *ChangeList) CurrentValue() float64 { return c.currentValue }

// WriteToSignal renders frames samples into out[offset:offset+frames],
// consuming all pending changes in time order and advancing glide state.
// A change with time == frames-1 affects only the block's last sample
// (the target itself with no glide, otherwise the first glide step
// toward it); the remainder of the glide continues next block (glide
// state is retained, not reset, across calls). The pending queue is
// empty once WriteToSignal returns.
func (c *ChangeList) WriteToSignal(out []float64, offset, frames int) {
	next := 0
	for i := 0; i < frames; i++ {
		for next < c.numPend && c.changes[next].time == i {
			c.setGlideTarget(c.changes[next].value)
			next++
		}

		if c.glideCounter > 0 {
			if c.glideInSamples > 0 {
				c.currentValue += (c.glideEndVal - c.glideStartVal) * c.invGlideInSamples
			}
			c.glideCounter--
			if c.glideCounter == 0 {
				c.currentValue = c.glideEndVal
			}
		}

		out[offset+i] = c.currentValue
	}
	c.numPend = 0
	c.hasLast = false
}

// setGlideTarget starts a new glide toward target. glideInSamples == 0
// applies the target instantaneously (step function), matching spec
// §4.1's edge-case policy.
func (c *ChangeList) setGlideTarget(target float64) {
	if c.glideInSamples <= 0 {
		c.currentValue = target
		c.glideEndVal = target
		c.glideStartVal = target
		c.glideCounter = 0
		return
	}
	c.glideStartVal = c.currentValue
	c.glideEndVal = target
	c.glideCounter = c.glideInSamples
}
