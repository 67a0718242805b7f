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

import (
	"testing"

	"github.com/cncforge/motioncore/geom"
)

func TestRampFreeLine(t *testing.T) {
	pStart := geom.Location[int64]{X: 0, Y: 0, Z: 0}
	pEnd := geom.Location[int64]{X: 1000, Y: 0, Z: 0}
	line := CreateLineWithoutRamps(pStart, pEnd, 1.0)

	half := line.TTotal / 2
	got := line.ExpectedDelta(half)
	want := geom.Location[int64]{X: 500, Y: 0, Z: 0}
	if got != want {
		t.Errorf("ExpectedDelta(t_total/2) = %v, want %v", got, want)
	}

	if !line.IsComplete(geom.Location[int64]{X: 1000, Y: 0, Z: 0}) {
		t.Errorf("expected line to report complete once the full delta has moved")
	}
}

func TestRampFreeLineRoundTrip(t *testing.T) {
	pStart := geom.Location[int64]{X: 10, Y: 20, Z: 0}
	pEnd := geom.Location[int64]{X: 110, Y: 20, Z: 0}
	speed := 2.0
	line := CreateLineWithoutRamps(pStart, pEnd, speed)

	wantTotal := 100.0 / speed
	if line.TTotal != wantTotal {
		t.Errorf("TTotal = %v, want %v", line.TTotal, wantTotal)
	}

	mid := line.ExpectedDelta(line.TTotal / 2)
	want := geom.Location[int64]{X: 50, Y: 0, Z: 0}
	if mid != want {
		t.Errorf("midpoint delta = %v, want %v", mid, want)
	}
}

func TestThreeAxisDiagonal(t *testing.T) {
	pStart := geom.Location[int64]{X: 0, Y: 0, Z: 0}
	pEnd := geom.Location[int64]{X: 300, Y: 400, Z: 0}
	v := 0.00003
	vy := 0.00004
	// Build directly via buildLine equivalent using the public
	// constructor with matching start=max=end speeds per axis isn't
	// directly expressible (NewInstructionLine takes one scalar speed
	// triple along the direction vector); exercise via
	// CreateLineWithoutRamps at the combined vector speed instead, and
	// assert both axes arrive together without overshoot.
	speed := geom.Location[float64]{X: v, Y: vy}.Dist(geom.Location[float64]{})
	line := CreateLineWithoutRamps(pStart, pEnd, speed)

	end := line.ExpectedDelta(line.TTotal)
	want := geom.Location[int64]{X: 300, Y: 400, Z: 0}
	if end != want {
		t.Errorf("ExpectedDelta(t_total) = %v, want %v", end, want)
	}
	if !line.IsComplete(end) {
		t.Errorf("expected completion at t_total")
	}
}

func TestExpectedPosMonotoneAndBounded(t *testing.T) {
	pStart := geom.Location[int64]{X: 0, Y: 0, Z: 0}
	pEnd := geom.Location[int64]{X: 1000, Y: 0, Z: 0}
	line := NewInstructionLine(pStart, pEnd, 0, 0.002, 0, 0.0000001, 0.0000001)

	if d := line.ExpectedDelta(0); d.X != 0 {
		t.Errorf("expected_pos(0) = %v, want 0", d)
	}
	last := int64(-1)
	steps := 20
	for i := 0; i <= steps; i++ {
		dt := line.TTotal * float64(i) / float64(steps)
		d := line.ExpectedDelta(dt)
		if d.X < last {
			t.Errorf("expected_pos not monotone: %d then %d", last, d.X)
		}
		if d.X > 1000 {
			t.Errorf("expected_pos overshoot: %d", d.X)
		}
		last = d.X
	}
	final := line.ExpectedDelta(line.TTotal)
	if final.X != 1000 {
		t.Errorf("expected_pos(t_total) = %v, want 1000", final)
	}
}

func TestDegenerateLineCompletesImmediately(t *testing.T) {
	p := geom.Location[int64]{X: 5, Y: 5, Z: 5}
	line := NewInstructionLine(p, p, 0, 1, 0, 1, 1)
	if !line.IsComplete(geom.Location[int64]{}) {
		t.Errorf("zero-distance line should complete immediately")
	}
}
