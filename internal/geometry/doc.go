// Package geometry provides the differential geometry of the ellipse that
// carries the particles.
//
// The curve is parametrised by the angle φ as γ(φ) = (A cos φ, B sin φ) with
// A >= B > 0. Everything else is derived from the induced metric:
//
//   - [Ellipse.Metric]: g(φ) = A² sin²φ + B² cos²φ
//   - [Ellipse.Christoffel]: Γ(φ) = g'(φ) / 2g(φ), the geodesic force is −Γ φ̇²
//   - [Ellipse.Curvature]: κ(φ) = AB / g^{3/2}
//   - [Ellipse.ParallelTransport]: carries an angular velocity along the curve
//   - [Ellipse.ArcLength]: intrinsic distance along the shorter path
//
// # Thread Safety
//
// An [Ellipse] is an immutable value. Its quadrature rule is computed once in
// [New] and only read afterwards, so an Ellipse may be shared freely between
// goroutines.
package geometry
