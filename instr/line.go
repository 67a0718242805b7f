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

// InstructionLine is a fully pre-computed trapezoidal move: every phase
// boundary is derived once at construction so the controller loop only
// ever evaluates a cheap piecewise formula per tick.
//
// All speeds are expressed in steps per nanosecond, so speed*dt[ns]
// yields a step count directly.
type InstructionLine struct {
	PStart, PEnd geom.Location[float64]

	VStart, VMax, VEnd float64
	AAcc, ADec         float64

	TRampUp      float64 // ns
	PVMaxStart   geom.Location[float64]
	TRampDown    float64 // ns
	PVEndStart   geom.Location[float64]
	TAtMaxSpeed  float64 // ns
	TTotal       float64 // ns

	direction geom.Location[float64] // unit vector p_end - p_start, zero if degenerate
	distance  float64
}

// NewInstructionLine builds an InstructionLine from start/end positions
// (integer step units) and the three-phase velocity profile. A
// degenerate input (zero distance or zero max speed) yields a line that
// reports complete on the very first evaluation.
func NewInstructionLine(pStart, pEnd geom.Location[int64], vStart, vMax, vEnd, aAcc, aDec float64) *InstructionLine {
	start := geom.Location[float64]{X: float64(pStart.X), Y: float64(pStart.Y), Z: float64(pStart.Z)}
	end := geom.Location[float64]{X: float64(pEnd.X), Y: float64(pEnd.Y), Z: float64(pEnd.Z)}
	return buildLine(start, end, vStart, vMax, vEnd, aAcc, aDec)
}

func buildLine(start, end geom.Location[float64], vStart, vMax, vEnd, aAcc, aDec float64) *InstructionLine {
	l := &InstructionLine{
		PStart: start, PEnd: end,
		VStart: vStart, VMax: vMax, VEnd: vEnd,
		AAcc: aAcc, ADec: aDec,
	}

	delta := end.Sub(start)
	dist := start.Dist(end)
	l.distance = dist
	if dist > 0 {
		l.direction = delta.Scale(1 / dist)
	}

	if dist == 0 || vMax == 0 {
		l.TTotal = 0
		l.PVMaxStart = start
		l.PVEndStart = end
		return l
	}

	if aAcc > 0 && vMax > vStart {
		l.TRampUp = (vMax - vStart) / aAcc
	}
	l.PVMaxStart = start.Add(l.direction.Scale((vMax + vStart) / 2 * l.TRampUp))

	if aDec > 0 && vMax > vEnd {
		l.TRampDown = (vMax - vEnd) / aDec
	}
	l.PVEndStart = end.Sub(l.direction.Scale((vMax + vEnd) / 2 * l.TRampDown))

	midDist := l.PVEndStart.Dist(l.PVMaxStart)
	if vMax > 0 {
		l.TAtMaxSpeed = midDist / vMax
	}
	l.TTotal = l.TRampUp + l.TAtMaxSpeed + l.TRampDown
	return l
}

// CreateLineWithoutRamps builds a Line with v_start = v_max = v_end and
// zero-length ramps, for stop/fallback/retraction moves that move at a
// single constant speed.
func CreateLineWithoutRamps(pStart, pEnd geom.Location[int64], speed float64) *InstructionLine {
	start := geom.Location[float64]{X: float64(pStart.X), Y: float64(pStart.Y), Z: float64(pStart.Z)}
	end := geom.Location[float64]{X: float64(pEnd.X), Y: float64(pEnd.Y), Z: float64(pEnd.Z)}
	return buildLine(start, end, speed, speed, speed, 0, 0)
}

// ExpectedPos returns the expected offset from PStart at elapsed time dt
// (nanoseconds), per the three-phase formula.
func (l *InstructionLine) ExpectedPos(dtNs float64) geom.Location[float64] {
	if l.distance == 0 || l.VMax == 0 {
		return geom.Location[float64]{}
	}
	var mag float64
	switch {
	case dtNs < l.TRampUp:
		mag = (l.VStart + (l.VStart + l.AAcc*dtNs)) / 2 * dtNs
	case dtNs < l.TRampUp+l.TAtMaxSpeed:
		mag = l.PVMaxStart.Dist(l.PStart) + l.VMax*(dtNs-l.TRampUp)
	default:
		dtPrime := dtNs - l.TRampUp - l.TAtMaxSpeed
		mag = l.PVEndStart.Dist(l.PStart) + (l.VMax+(l.VMax-l.ADec*dtPrime))/2*dtPrime
	}
	return l.direction.Scale(mag)
}

// ExpectedPosAbs returns the expected absolute position at elapsed dt.
func (l *InstructionLine) ExpectedPosAbs(dtNs float64) geom.Location[int64] {
	off := l.ExpectedPos(dtNs)
	return geom.Location[int64]{
		X: int64(roundHalfAwayFromZero(l.PStart.X + off.X)),
		Y: int64(roundHalfAwayFromZero(l.PStart.Y + off.Y)),
		Z: int64(roundHalfAwayFromZero(l.PStart.Z + off.Z)),
	}
}

// ExpectedDelta returns the expected step offset from PStart at elapsed
// dt, rounded to integer step counts.
func (l *InstructionLine) ExpectedDelta(dtNs float64) geom.Location[int64] {
	off := l.ExpectedPos(dtNs)
	return geom.Location[int64]{
		X: int64(roundHalfAwayFromZero(off.X)),
		Y: int64(roundHalfAwayFromZero(off.Y)),
		Z: int64(roundHalfAwayFromZero(off.Z)),
	}
}

func roundHalfAwayFromZero(v float64) float64 {
	if v < 0 {
		return -roundPositive(-v)
	}
	return roundPositive(v)
}

func roundPositive(v float64) float64 {
	return float64(int64(v + 0.5))
}

// IsComplete reports whether alreadyMoved (the step delta accumulated so
// far) matches the full p_end - p_start delta on every axis.
func (l *InstructionLine) IsComplete(alreadyMoved geom.Location[int64]) bool {
	if l.distance == 0 || l.VMax == 0 {
		return true
	}
	total := geom.Location[int64]{
		X: int64(roundHalfAwayFromZero(l.PEnd.X - l.PStart.X)),
		Y: int64(roundHalfAwayFromZero(l.PEnd.Y - l.PStart.Y)),
		Z: int64(roundHalfAwayFromZero(l.PEnd.Z - l.PStart.Z)),
	}
	return alreadyMoved == total
}
