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

package control

import (
	"time"

	"github.com/cncforge/motioncore/geom"
	"github.com/cncforge/motioncore/instr"
)

// curveState is the loop-local sub-state a Curve instruction accumulates
// across ticks: how many steps have been taken (gating StepDelay), and
// the close-to-destination rescue tracking.
type curveState struct {
	stepsDone              int64
	closeToDestination     bool
	lastDistanceSq         float64
}

func newCurveState() curveState {
	return curveState{lastDistanceSq: 100}
}

// axisCalState is the per-axis calibration sub-state for the Middle
// phase machine.
type axisCalState struct {
	phase     int // Middle: 0=seek-left, 1=seek-right, 2=return-to-mid
	pos1      int64
	target    int64
	done      bool
	stepsDone int64
}

// opState is the controller loop's entire mutable state, never shared
// outside the loop goroutine.
type opState struct {
	shutdown bool

	lastTelemetry time.Time

	waitFor *instr.ToolChange

	toolID     int
	toolLength *float64

	startTime time.Time
	startPos  geom.Location[int64]

	curve curveState
	calX, calY, calZ axisCalState

	preState instr.MachineState

	// spindleIssued/spindleSettle track the in-flight On/Off settling
	// delay so the loop blocks the next instruction without stalling the
	// whole cycle (the duration is sleeping in wall-clock time, not a
	// synchronous thread sleep).
	spindleIssued bool
	spindleSettle time.Duration
}

func newOpState() opState {
	return opState{curve: newCurveState()}
}

func (s *opState) resetCalibration() {
	s.calX = axisCalState{}
	s.calY = axisCalState{}
	s.calZ = axisCalState{}
}
