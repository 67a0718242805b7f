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

package instr

import "github.com/cncforge/motioncore/geom"

// InstructionCurve is a circular arc in the XY plane, stepped by
// geom.StepCW/StepCCW at a cadence gated by StepDelay (seconds between
// steps). Center is relative to the position the instruction started at;
// the controller loop adds its own start position to recover the
// absolute arc center.
type InstructionCurve struct {
	Center        geom.Location[int64]
	RadiusSq      float64
	StepSizes     geom.Location[float64]
	TurnDirection CircleDirection
	VMax          float64 // speed at which a close-to-destination rescue Line finishes
	StepDelay     float64 // seconds between steps
	PEnd          geom.Location[int64]
}

// NewInstructionCurve builds a curve instruction.
func NewInstructionCurve(center geom.Location[int64], radiusSq float64, stepSizes geom.Location[float64], dir CircleDirection, vMax, stepDelay float64, pEnd geom.Location[int64]) *InstructionCurve {
	return &InstructionCurve{
		Center:        center,
		RadiusSq:      radiusSq,
		StepSizes:     stepSizes,
		TurnDirection: dir,
		VMax:          vMax,
		StepDelay:     stepDelay,
		PEnd:          pEnd,
	}
}

// Step computes the primary and optional step directions for the current
// position relative to the absolute arc center. Whether the optional step
// is taken is decided separately, by geom.ShouldTakeOptionalStep.
func (c *InstructionCurve) Step(relToCenter geom.Location[int64]) geom.CircleStep {
	if c.TurnDirection == CW {
		return geom.StepCW(relToCenter)
	}
	return geom.StepCCW(relToCenter)
}

// CloseProximitySq is the squared-distance threshold (within 25 steps)
// at which the close-to-destination rescue logic engages.
const CloseProximitySq = 625
