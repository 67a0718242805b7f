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

// execCurve advances the current Curve instruction by one Bresenham
// tick, gated by the curve's own StepDelay. Curve.Center is relative to
// the position the instruction started at; Curve.PEnd is absolute.
func (l *Loop) execCurve() {
	if l.op.startTime.IsZero() {
		return
	}
	curve := l.current.Curve
	elapsed := time.Since(l.op.startTime)
	if float64(l.op.curve.stepsDone)*curve.StepDelay > elapsed.Seconds() {
		return
	}
	l.op.curve.stepsDone++

	absCenter := l.op.startPos.Add(curve.Center)
	relToCenter := l.pos().Sub(absCenter)
	step := curve.Step(relToCenter)

	l.stepCircleDir(step.Main)

	if geom.ShouldTakeOptionalStep(l.pos(), absCenter, curve.StepSizes, curve.RadiusSq, step.Opt) {
		l.stepCircleDir(step.Opt)
	}

	distToDestSq := l.pos().SqDist(curve.PEnd)

	if distToDestSq < instr.CloseProximitySq && !l.op.curve.closeToDestination {
		l.op.curve.closeToDestination = true
	}

	switch {
	case l.op.curve.closeToDestination && distToDestSq > l.op.curve.lastDistanceSq:
		// The stepper would otherwise orbit past the target: rescue with
		// a straight finish.
		rescue := instr.Instruction{
			Kind: instr.KindLine,
			Line: instr.CreateLineWithoutRamps(l.pos(), curve.PEnd, curve.VMax),
		}
		l.current = &rescue
		l.op.curve.closeToDestination = false
		l.op.curve.lastDistanceSq = 100
		l.op.startTime = time.Now()
		l.op.startPos = l.pos()
		return
	case l.op.curve.closeToDestination:
		l.op.curve.lastDistanceSq = distToDestSq
	}

	if distToDestSq == 0 {
		l.op.curve.closeToDestination = false
		l.op.curve.lastDistanceSq = 100
		l.current = nil
	}
}

func (l *Loop) stepCircleDir(d geom.CircleStepDir) {
	switch d {
	case geom.Right:
		l.stepAxis(l.hw.x, 1)
	case geom.Left:
		l.stepAxis(l.hw.x, -1)
	case geom.Up:
		l.stepAxis(l.hw.y, 1)
	case geom.Down:
		l.stepAxis(l.hw.y, -1)
	}
}
