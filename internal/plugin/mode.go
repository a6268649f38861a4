package plugin

import "context"

// Mode selects between the real and the demo universe.
type Mode int

const (
	// ModeReal talks to actual backends.
	ModeReal Mode = iota

	// ModeDemo talks to mock backends with isolated state.
	ModeDemo
)

// String returns "real" or "demo".
func (m Mode) String() string {
	if m == ModeDemo {
		return "demo"
	}
	return "real"
}

type modeKey struct{}

// WithMode returns a context carrying mode m.
func WithMode(ctx context.Context, m Mode) context.Context {
	return context.WithValue(ctx, modeKey{}, m)
}

// ModeFrom returns the mode carried by ctx, or ModeReal if none.
func ModeFrom(ctx context.Context) Mode {
	if m, ok := ctx.Value(modeKey{}).(Mode); ok {
		return m
	}
	return ModeReal
}
