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

	"github.com/cncforge/motioncore/gpio"
	"github.com/cncforge/motioncore/instr"
	"github.com/cncforge/motioncore/stepper"
)

// execCalibrate runs the three independent per-axis calibration phase
// machines for one tick each, and completes the Calibrate instruction
// once all three report done.
func (l *Loop) execCalibrate() {
	if l.op.startTime.IsZero() {
		return
	}
	l.setState(instr.Calibrate)
	elapsed := time.Since(l.op.startTime)
	l.calibrateAxis(&l.op.calX, l.hw.x, l.current.CalibrateX, elapsed, nil)
	l.calibrateAxis(&l.op.calY, l.hw.y, l.current.CalibrateY, elapsed, nil)
	l.calibrateAxis(&l.op.calZ, l.hw.z, l.current.CalibrateZ, elapsed, l.hw.zProbe)

	if l.op.calX.done && l.op.calY.done && l.op.calZ.done {
		l.op.resetCalibration()
		l.current = nil
	}
}

func (l *Loop) calibrateAxis(st *axisCalState, axis *stepper.Axis, typ instr.CalibrateType, elapsed time.Duration, zProbe *gpio.Switch) {
	if st.done {
		return
	}
	if typ == instr.CalibrateNone {
		st.done = true
		return
	}
	if typ == instr.CalibrateContactPin && zProbe == nil {
		// No contact pin wired for this axis: complete immediately rather
		// than drive the table indefinitely looking for a probe that
		// doesn't exist.
		st.done = true
		return
	}
	tick := calibrateSweepTick
	if typ == instr.CalibrateContactPin {
		tick = calibrateContactTick
	}
	if time.Duration(st.stepsDone)*tick > elapsed {
		return
	}
	st.stepsDone++

	switch typ {
	case instr.CalibrateMin:
		if err := axis.Step(instr.Left); err != nil {
			st.done = true
		}
	case instr.CalibrateMax:
		if err := axis.Step(instr.Right); err != nil {
			st.done = true
		}
	case instr.CalibrateMiddle:
		l.calibrateMiddle(st, axis)
	case instr.CalibrateContactPin:
		if zProbe.IsClosed() {
			st.done = true
			return
		}
		if err := axis.Step(instr.Right); err != nil {
			st.done = true
		}
	}
}

func (l *Loop) calibrateMiddle(st *axisCalState, axis *stepper.Axis) {
	switch st.phase {
	case 0:
		if err := axis.Step(instr.Left); err != nil {
			st.pos1 = axis.Pos()
			st.phase = 1
		}
	case 1:
		if err := axis.Step(instr.Right); err != nil {
			st.target = st.pos1 + (axis.Pos()-st.pos1)/2
			st.phase = 2
		}
	case 2:
		if axis.Pos() <= st.target {
			st.done = true
			return
		}
		if err := axis.Step(instr.Left); err != nil {
			st.done = true
		}
	}
}
