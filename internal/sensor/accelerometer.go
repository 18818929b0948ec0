package sensor

import (
	"errors"
	"math"

	"lantern/internal/channel"
	"lantern/internal/notify"
)

// MinGravity is the smallest vector magnitude (m/s²) accepted as a reading.
// Anything weaker is treated as free fall or noise and ignored.
const MinGravity = 4.0

// ErrWeakReading is returned for readings below MinGravity.
var ErrWeakReading = errors.New("reading below minimum gravity")

// Accelerometer publishes the direction the lantern is pointing.
type Accelerometer struct {
	subject *notify.Subject[channel.Direction]
}

// NewAccelerometer starts out pointing at initial.
func NewAccelerometer(initial channel.Direction) *Accelerometer {
	return &Accelerometer{subject: notify.NewSubject(initial)}
}

// Direction returns the current direction.
func (a *Accelerometer) Direction() channel.Direction {
	return a.subject.Get()
}

// SetDirection publishes d if it differs from the current direction.
func (a *Accelerometer) SetDirection(d channel.Direction) {
	if d == a.subject.Get() {
		return
	}
	a.subject.Set(d)
}

// Update classifies a raw reading and publishes the result. It reports
// whether the reading was usable.
func (a *Accelerometer) Update(x, y, z float64) bool {
	d, ok := Classify(x, y, z)
	if !ok {
		return false
	}
	a.SetDirection(d)
	return true
}

// Subscribe registers listener for direction changes.
func (a *Accelerometer) Subscribe(listener func(channel.Direction)) *notify.Subscription {
	return a.subject.Subscribe(listener)
}

// Unsubscribe removes a listener.
func (a *Accelerometer) Unsubscribe(sub *notify.Subscription) {
	a.subject.Unsubscribe(sub)
}

// Classify maps a gravity vector in device coordinates to the direction
// the projector lens faces. The dominant axis wins; +z is up, +y north,
// +x east.
func Classify(x, y, z float64) (channel.Direction, bool) {
	if math.Sqrt(x*x+y*y+z*z) < MinGravity {
		return "", false
	}
	ax, ay, az := math.Abs(x), math.Abs(y), math.Abs(z)
	switch {
	case az >= ax && az >= ay:
		if z > 0 {
			return channel.DirectionUp, true
		}
		return channel.DirectionDown, true
	case ay >= ax:
		if y > 0 {
			return channel.DirectionNorth, true
		}
		return channel.DirectionSouth, true
	default:
		if x > 0 {
			return channel.DirectionEast, true
		}
		return channel.DirectionWest, true
	}
}
