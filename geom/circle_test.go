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

import "testing"

func TestStepCWAtRightmostPoint(t *testing.T) {
	// On the positive X axis, a clockwise arc moves toward -Y (down).
	got := StepCW(Location[int64]{X: 10, Y: 0})
	if got.Main != Down || got.Opt != Right {
		t.Errorf("StepCW(10,0) = %+v, want Main=Down Opt=Right", got)
	}
}

func TestStepCCWAtRightmostPoint(t *testing.T) {
	// On the positive X axis, a counter-clockwise arc moves toward +Y (up).
	got := StepCCW(Location[int64]{X: 10, Y: 0})
	if got.Main != Up || got.Opt != Right {
		t.Errorf("StepCCW(10,0) = %+v, want Main=Up Opt=Right", got)
	}
}

func TestStepCWAtTopPoint(t *testing.T) {
	// On the positive Y axis, a clockwise arc moves toward +X (right).
	got := StepCW(Location[int64]{X: 0, Y: 10})
	if got.Main != Right || got.Opt != Up {
		t.Errorf("StepCW(0,10) = %+v, want Main=Right Opt=Up", got)
	}
}

func TestStepCCWAtTopPoint(t *testing.T) {
	// On the positive Y axis, a counter-clockwise arc moves toward -X (left).
	got := StepCCW(Location[int64]{X: 0, Y: 10})
	if got.Main != Left || got.Opt != Up {
		t.Errorf("StepCCW(0,10) = %+v, want Main=Left Opt=Up", got)
	}
}

func TestShouldTakeOptionalStepExactlyOnRadius(t *testing.T) {
	center := Location[int64]{}
	stepSizes := Location[float64]{X: 1, Y: 1, Z: 1}
	radiusSq := 100.0 // radius 10
	pos := Location[int64]{X: 10, Y: 0}
	// moving up from (10,0) to (10,1): error goes from 0 to 1, strictly
	// worse, so the optional step must not be taken.
	if ShouldTakeOptionalStep(pos, center, stepSizes, radiusSq, Up) {
		t.Errorf("expected optional step to be skipped exactly on the radius")
	}
}

func TestShouldTakeOptionalStepWhenInside(t *testing.T) {
	center := Location[int64]{}
	stepSizes := Location[float64]{X: 1, Y: 1, Z: 1}
	radiusSq := 100.0
	pos := Location[int64]{X: 9, Y: 0} // inside the circle, error |100-81|=19
	// stepping right to (10,0): error |100-100|=0, strictly better.
	if !ShouldTakeOptionalStep(pos, center, stepSizes, radiusSq, Right) {
		t.Errorf("expected optional step to be taken when it improves radius error")
	}
}

func TestRadiusErrorSq(t *testing.T) {
	center := Location[int64]{}
	stepSizes := Location[float64]{X: 1, Y: 1, Z: 1}
	pos := Location[int64]{X: 6, Y: 8}
	got := RadiusErrorSq(pos, center, stepSizes, 100)
	if got != 0 {
		t.Errorf("RadiusErrorSq = %v, want 0 (exactly on radius 10)", got)
	}
}
