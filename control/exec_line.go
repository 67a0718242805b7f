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
	"log"
	"time"

	"github.com/cncforge/motioncore/instr"
	"github.com/cncforge/motioncore/stepper"
)

// execLine advances the current Line instruction by at most one step per
// axis, computing the expected position from elapsed time and stepping
// whichever axes lag it. Completion is tested before moving, to avoid
// ever overshooting p_end.
func (l *Loop) execLine() {
	if l.op.startTime.IsZero() {
		return
	}
	line := l.current.Line
	alreadyMoved := l.pos().Sub(l.op.startPos)
	if line.IsComplete(alreadyMoved) {
		l.current = nil
		return
	}
	elapsed := time.Since(l.op.startTime)
	expected := line.ExpectedDelta(float64(elapsed.Nanoseconds()))
	delta := expected.Sub(alreadyMoved)
	l.stepAxis(l.hw.x, delta.X)
	l.stepAxis(l.hw.y, delta.Y)
	l.stepAxis(l.hw.z, delta.Z)
}

// stepAxis steps axis once in the direction indicated by the sign of
// delta, if nonzero. A blocked axis is logged, not fatal: the
// instruction keeps running on the remaining axes.
func (l *Loop) stepAxis(axis *stepper.Axis, delta int64) {
	if delta == 0 {
		return
	}
	dir := instr.Right
	if delta < 0 {
		dir = instr.Left
	}
	if err := axis.Step(dir); err != nil {
		log.Printf("control: axis %s blocked: %v", axis.Name, err)
		l.sendError("blocked_axis", axis.Name)
	}
}
