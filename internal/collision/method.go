package collision

import (
	"errors"
	"fmt"
)

// Method selects how a contacting pair exchanges velocity.
type Method uint8

const (
	// Simple swaps the angular velocities. Exact only for equal masses at
	// equal metric.
	Simple Method = iota
	// ParallelTransport carries one velocity to the other's position, applies
	// the 1-D elastic exchange there and carries the result back.
	ParallelTransport
	// Geodesic rewinds the pair to the moment of touch, exchanges as
	// ParallelTransport and re-integrates over the rewound interval.
	Geodesic
)

var ErrUnknownMethod = errors.New("collision: unknown method")

var methodNames = [...]string{
	Simple:            "simple",
	ParallelTransport: "parallel_transport",
	Geodesic:          "geodesic",
}

// Methods lists every method in declaration order.
func Methods() []Method {
	return []Method{Simple, ParallelTransport, Geodesic}
}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

func (m Method) Valid() bool {
	return int(m) < len(methodNames)
}

// Verified reports whether resolutions with m are checked against the
// conservation tolerance.
func (m Method) Verified() bool {
	return m == ParallelTransport || m == Geodesic
}

func ParseMethod(s string) (Method, error) {
	for i, name := range methodNames {
		if s == name {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

func (m Method) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
