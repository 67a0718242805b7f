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

package geom

// CircleStepDir is the single-pulse direction a circle stepper asks an axis
// to move in: Left/Right step the X axis, Up/Down step the Y axis.
type CircleStepDir int

const (
	Left CircleStepDir = iota
	Right
	Up
	Down
)

func (d CircleStepDir) String() string {
	switch d {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Up:
		return "Up"
	case Down:
		return "Down"
	default:
		return "Unknown"
	}
}

// CircleStep is the result of one quadrant decision: Main is the step that
// must always be taken, Opt is the step taken only when it reduces the
// radius error (see ShouldTakeOptionalStep).
type CircleStep struct {
	Main, Opt CircleStepDir
}

// StepCW returns the main/optional step directions for one Bresenham tick
// of a clockwise circle, given the current position relative to the circle
// center (in step units).
//
// The decision is made in a frame rotated 90 degrees clockwise so that the
// same quadrant logic applies regardless of which octant the tool is
// currently in.
func StepCW(relToCenter Location[int64]) CircleStep {
	turned := relToCenter.RotateCW90()
	absX, absY := abs(turned.X), abs(turned.Y)

	if turned.X >= 0 {
		switch {
		case turned.Y < 0 && absX < absY:
			return CircleStep{Main: Down, Opt: Right}
		case turned.Y > 0 && absX <= absY:
			return CircleStep{Main: Up, Opt: Right}
		case turned.Y < 0:
			return CircleStep{Main: Right, Opt: Down}
		default:
			return CircleStep{Main: Right, Opt: Up}
		}
	}
	switch {
	case turned.Y > 0 && absX < absY:
		return CircleStep{Main: Up, Opt: Left}
	case turned.Y < 0 && absX <= absY:
		return CircleStep{Main: Down, Opt: Left}
	case turned.Y > 0:
		return CircleStep{Main: Left, Opt: Up}
	default:
		return CircleStep{Main: Left, Opt: Down}
	}
}

// StepCCW is StepCW's counterclockwise counterpart, rotated the other way
// and with the tie-breaking `<=` swapped to the opposite branch in each
// quadrant (asymmetric by design: the two turn directions trace mirrored
// but distinct octant boundaries).
func StepCCW(relToCenter Location[int64]) CircleStep {
	turned := relToCenter.RotateCCW90()
	absX, absY := abs(turned.X), abs(turned.Y)

	if turned.X >= 0 {
		switch {
		case turned.Y < 0 && absX <= absY:
			return CircleStep{Main: Down, Opt: Right}
		case turned.Y > 0 && absX < absY:
			return CircleStep{Main: Up, Opt: Right}
		case turned.Y <= 0:
			return CircleStep{Main: Right, Opt: Down}
		default:
			return CircleStep{Main: Right, Opt: Up}
		}
	}
	switch {
	case turned.Y > 0 && absX <= absY:
		return CircleStep{Main: Up, Opt: Left}
	case turned.Y < 0 && absX < absY:
		return CircleStep{Main: Down, Opt: Left}
	case turned.Y >= 0:
		return CircleStep{Main: Left, Opt: Up}
	default:
		return CircleStep{Main: Left, Opt: Down}
	}
}

// Unit returns the (dx, dy) unit step for a CircleStepDir, X/Y only.
func (d CircleStepDir) Unit() (dx, dy int64) {
	switch d {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Up:
		return 0, 1
	case Down:
		return 0, -1
	default:
		return 0, 0
	}
}

// Apply returns pos moved by one step in direction d.
func Apply(pos Location[int64], d CircleStepDir) Location[int64] {
	dx, dy := d.Unit()
	return Location[int64]{X: pos.X + dx, Y: pos.Y + dy, Z: pos.Z}
}

// RadiusErrorSq returns radiusSq minus the squared distance of pos from
// center, with the X/Y offsets scaled by stepSizes (so that non-square step
// sizes on the two axes are accounted for before comparing to radiusSq).
// The result is signed: positive inside the circle, negative outside.
func RadiusErrorSq(pos, center Location[int64], stepSizes Location[float64], radiusSq float64) float64 {
	rel := pos.Sub(center)
	sx := float64(rel.X) * stepSizes.X
	sy := float64(rel.Y) * stepSizes.Y
	return radiusSq - (sx*sx + sy*sy)
}

// ShouldTakeOptionalStep decides whether the optional step of a CircleStep
// should also be taken this tick: it is taken when doing so brings the
// tool strictly closer to the ideal radius than skipping it would.
func ShouldTakeOptionalStep(pos, center Location[int64], stepSizes Location[float64], radiusSq float64, opt CircleStepDir) bool {
	before := RadiusErrorSq(pos, center, stepSizes, radiusSq)
	after := RadiusErrorSq(Apply(pos, opt), center, stepSizes, radiusSq)
	return absF(before) > absF(after)
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
