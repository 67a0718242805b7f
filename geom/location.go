// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package geom holds the 3-axis geometric primitives the controller loop
// and planner operate on: the Location vector type and the circle-stepping
// decision table.
package geom

import "math"

// Numeric is the set of types a Location can be parameterised over:
// integer step counts, or floating-point millimetres.
type Numeric interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Location is a 3-vector over x, y, z. Instances are value objects: they
// are freely copied and never aliased.
type Location[T Numeric] struct {
	X, Y, Z T
}

// New builds a Location from its three components.
func New[T Numeric](x, y, z T) Location[T] {
	return Location[T]{X: x, Y: y, Z: z}
}

// Add returns the component-wise sum.
func (l Location[T]) Add(o Location[T]) Location[T] {
	return Location[T]{l.X + o.X, l.Y + o.Y, l.Z + o.Z}
}

// Sub returns the component-wise difference.
func (l Location[T]) Sub(o Location[T]) Location[T] {
	return Location[T]{l.X - o.X, l.Y - o.Y, l.Z - o.Z}
}

// Mul returns the component-wise product.
func (l Location[T]) Mul(o Location[T]) Location[T] {
	return Location[T]{l.X * o.X, l.Y * o.Y, l.Z * o.Z}
}

// Div returns the component-wise quotient.
func (l Location[T]) Div(o Location[T]) Location[T] {
	return Location[T]{l.X / o.X, l.Y / o.Y, l.Z / o.Z}
}

// Scale multiplies every component by a scalar.
func (l Location[T]) Scale(s T) Location[T] {
	return Location[T]{l.X * s, l.Y * s, l.Z * s}
}

// Abs returns the component-wise absolute value.
func (l Location[T]) Abs() Location[T] {
	return Location[T]{abs(l.X), abs(l.Y), abs(l.Z)}
}

func abs[T Numeric](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// Min returns the component-wise minimum.
func (l Location[T]) Min(o Location[T]) Location[T] {
	return Location[T]{min(l.X, o.X), min(l.Y, o.Y), min(l.Z, o.Z)}
}

// Max returns the component-wise maximum.
func (l Location[T]) Max(o Location[T]) Location[T] {
	return Location[T]{max(l.X, o.X), max(l.Y, o.Y), max(l.Z, o.Z)}
}

func min[T Numeric](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func max[T Numeric](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// SqDist returns the squared Euclidean distance between two locations,
// as a float64 regardless of T, to avoid overflow on integer step counts.
func (l Location[T]) SqDist(o Location[T]) float64 {
	dx := float64(l.X - o.X)
	dy := float64(l.Y - o.Y)
	dz := float64(l.Z - o.Z)
	return dx*dx + dy*dy + dz*dz
}

// Dist returns the Euclidean distance between two locations.
func (l Location[T]) Dist(o Location[T]) float64 {
	return math.Sqrt(l.SqDist(o))
}

// RotateCW90 rotates the (X, Y) components 90 degrees clockwise around Z,
// leaving Z untouched. In the step-space convention used by the circle
// stepper, clockwise is (x, y) -> (y, -x).
func (l Location[T]) RotateCW90() Location[T] {
	return Location[T]{l.Y, -l.X, l.Z}
}

// RotateCCW90 rotates the (X, Y) components 90 degrees counter-clockwise
// around Z: (x, y) -> (-y, x).
func (l Location[T]) RotateCCW90() Location[T] {
	return Location[T]{-l.Y, l.X, l.Z}
}

// ToSteps converts a millimetre location to an integer step-count location
// given a per-axis step size (millimetres per step).
func ToSteps(mm Location[float64], stepSize Location[float64]) Location[int64] {
	return Location[int64]{
		X: int64(math.Round(mm.X / stepSize.X)),
		Y: int64(math.Round(mm.Y / stepSize.Y)),
		Z: int64(math.Round(mm.Z / stepSize.Z)),
	}
}

// ToMM converts an integer step-count location to millimetres given a
// per-axis step size.
func ToMM(steps Location[int64], stepSize Location[float64]) Location[float64] {
	return Location[float64]{
		X: float64(steps.X) * stepSize.X,
		Y: float64(steps.Y) * stepSize.Y,
		Z: float64(steps.Z) * stepSize.Z,
	}
}
