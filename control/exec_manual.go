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
	"math"
	"time"

	"github.com/cncforge/motioncore/geom"
	"github.com/cncforge/motioncore/instr"
)

// execManualMovement steps each axis toward velocity*elapsed, at most a
// handful of steps per tick since it runs once per loop iteration and
// velocities are bounded by configuration.
func (l *Loop) execManualMovement() {
	v := l.current.ManualVelocity
	if v.X == 0 && v.Y == 0 && v.Z == 0 {
		l.setState(instr.Idle)
		l.current = nil
		return
	}
	l.setState(instr.Manual)
	if l.op.startTime.IsZero() {
		return
	}
	elapsedNs := float64(time.Since(l.op.startTime).Nanoseconds())
	target := geom.Location[int64]{
		X: int64(math.Round(v.X * elapsedNs)),
		Y: int64(math.Round(v.Y * elapsedNs)),
		Z: int64(math.Round(v.Z * elapsedNs)),
	}
	alreadyMoved := l.pos().Sub(l.op.startPos)
	delta := target.Sub(alreadyMoved)
	l.stepAxis(l.hw.x, delta.X)
	l.stepAxis(l.hw.y, delta.Y)
	l.stepAxis(l.hw.z, delta.Z)
}
