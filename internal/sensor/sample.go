package sensor

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Keys under which the synthetic input and output are stored.
//
// The input index is kept as a tag so the store indexes it alongside
// the measured value, matching how field gateways tag their readings.
const (
	TagKey   = "x"
	FieldKey = "value"
)

// Sample is a single synthetic sensor reading.
//
// X is the scaled sample index (i/10) and doubles as the tag value;
// Y is the measured quantity, sin(X). Timestamps strictly increase
// across successive samples from one Emitter run.
type Sample struct {
	Series string
	Index  uint64
	X      float64
	Y      float64
	Time   time.Time
}

// NewSample computes the sample for index i at time now.
func NewSample(series string, i uint64, now time.Time) Sample {
	x := float64(i) / 10.0
	return Sample{
		Series: series,
		Index:  i,
		X:      x,
		Y:      math.Sin(x),
		Time:   now,
	}
}

// Tags returns the sample's tag set in the store's string form.
func (s Sample) Tags() map[string]string {
	return map[string]string{
		TagKey: strconv.FormatFloat(s.X, 'g', -1, 64),
	}
}

// Fields returns the sample's field set.
func (s Sample) Fields() map[string]interface{} {
	return map[string]interface{}{
		FieldKey: s.Y,
	}
}

// String renders the sample in the human-readable echo format used on stdout.
func (s Sample) String() string {
	return fmt.Sprintf("%s %s %s=%g %s=%g",
		s.Series,
		s.Time.Format(time.RFC3339Nano),
		TagKey, s.X,
		FieldKey, s.Y,
	)
}

// Reading is a stored point as returned by the engine on read-back.
//
// The tag value comes back with the record; it is deliberately not
// filtered out of the result shape.
type Reading struct {
	Series string
	Time   time.Time
	Field  string
	Value  interface{}
	Tags   map[string]string
}

// String renders the reading in the same style as the sample echo.
func (r Reading) String() string {
	out := fmt.Sprintf("%s %s", r.Series, r.Time.Format(time.RFC3339Nano))
	for k, v := range r.Tags {
		out += fmt.Sprintf(" %s=%s", k, v)
	}
	return out + fmt.Sprintf(" %s=%v", r.Field, r.Value)
}
