package display

// Positions is the number of digit positions on the clock face
const Positions = 6

// Sink receives digit values from the scheduler
type Sink interface {
	// SetDigit shows value (0-9) at position (0-5)
	SetDigit(position, value int)
}

// Flusher is implemented by sinks that redraw once per complete frame
type Flusher interface {
	Flush()
}

// SinkFunc adapts a plain function to the Sink interface
type SinkFunc func(position, value int)

// SetDigit calls f(position, value)
func (f SinkFunc) SetDigit(position, value int) {
	f(position, value)
}

// Multi forwards every update to each of its sinks in order
type Multi []Sink

// SetDigit implements Sink
func (m Multi) SetDigit(position, value int) {
	for _, s := range m {
		s.SetDigit(position, value)
	}
}

// Flush implements Flusher, flushing every sink that supports it
func (m Multi) Flush() {
	for _, s := range m {
		if f, ok := s.(Flusher); ok {
			f.Flush()
		}
	}
}

// Flush flushes s if it implements Flusher
func Flush(s Sink) {
	if f, ok := s.(Flusher); ok {
		f.Flush()
	}
}
