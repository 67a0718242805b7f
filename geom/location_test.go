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

func TestRotateCW90(t *testing.T) {
	l := Location[int64]{X: 3, Y: 5, Z: 7}
	got := l.RotateCW90()
	want := Location[int64]{X: 5, Y: -3, Z: 7}
	if got != want {
		t.Errorf("RotateCW90(%v) = %v, want %v", l, got, want)
	}
}

func TestRotateCCW90(t *testing.T) {
	l := Location[int64]{X: 3, Y: 5, Z: 7}
	got := l.RotateCCW90()
	want := Location[int64]{X: -5, Y: 3, Z: 7}
	if got != want {
		t.Errorf("RotateCCW90(%v) = %v, want %v", l, got, want)
	}
}

func TestRotateRoundTrip(t *testing.T) {
	l := Location[int64]{X: 4, Y: -9, Z: 0}
	got := l.RotateCW90().RotateCCW90()
	if got != l {
		t.Errorf("round trip CW then CCW = %v, want %v", got, l)
	}
}

func TestAddSub(t *testing.T) {
	a := Location[int64]{X: 1, Y: 2, Z: 3}
	b := Location[int64]{X: 4, Y: 5, Z: 6}
	if got := a.Add(b); got != (Location[int64]{X: 5, Y: 7, Z: 9}) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != (Location[int64]{X: 3, Y: 3, Z: 3}) {
		t.Errorf("Sub = %v", got)
	}
}

func TestSqDist(t *testing.T) {
	a := Location[int64]{X: 0, Y: 0, Z: 0}
	b := Location[int64]{X: 3, Y: 4, Z: 0}
	if got := a.SqDist(b); got != 25 {
		t.Errorf("SqDist = %v, want 25", got)
	}
}

func TestToStepsToMM(t *testing.T) {
	stepSize := Location[float64]{X: 0.1, Y: 0.1, Z: 0.1}
	mm := Location[float64]{X: 1.0, Y: 2.0, Z: 0.5}
	steps := ToSteps(mm, stepSize)
	want := Location[int64]{X: 10, Y: 20, Z: 5}
	if steps != want {
		t.Errorf("ToSteps = %v, want %v", steps, want)
	}
	back := ToMM(steps, stepSize)
	if back != mm {
		t.Errorf("ToMM(ToSteps(mm)) = %v, want %v", back, mm)
	}
}
