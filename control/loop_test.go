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
	"testing"
	"time"

	"github.com/cncforge/motioncore/config"
	"github.com/cncforge/motioncore/geom"
	"github.com/cncforge/motioncore/instr"
	"github.com/cncforge/motioncore/stepper"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	cfg := &config.Config{DevMode: true, PosUpdateEvery: time.Millisecond}
	in := make(chan instr.Instruction, 16)
	out := make(chan instr.Feedback, 16)
	l, err := NewLoop(cfg, in, out)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	return l
}

func TestManualMovementDiscardedDuringProgram(t *testing.T) {
	l := newTestLoop(t)
	l.state = instr.Program
	l.handleInput(instr.NewManualMovement(geom.Location[float64]{X: 1}))
	if len(l.queue) != 0 {
		t.Errorf("expected ManualMovement to be discarded while Program, queue = %v", l.queue)
	}
}

func TestManualMovementAcceptedWhenIdle(t *testing.T) {
	l := newTestLoop(t)
	l.state = instr.Idle
	l.handleInput(instr.NewManualMovement(geom.Location[float64]{X: 1}))
	if len(l.queue) != 1 {
		t.Fatalf("expected ManualMovement to be queued, queue = %v", l.queue)
	}
	if l.queue[0].Kind != instr.KindManualMovement {
		t.Errorf("queued instruction kind = %v, want ManualMovement", l.queue[0].Kind)
	}
}

func TestEmergencyClearsQueueAndCounters(t *testing.T) {
	l := newTestLoop(t)
	l.queue = []instr.Instruction{{Kind: instr.KindDelay}, {Kind: instr.KindDelay}}
	cur := instr.Instruction{Kind: instr.KindDelay}
	l.current = &cur
	l.done, l.todo = 3, 2

	l.handleInput(instr.Instruction{Kind: instr.KindEmergency})

	if len(l.queue) != 0 || l.current != nil {
		t.Errorf("Emergency should clear queue and current instruction")
	}
	if l.done != 0 || l.todo != 0 {
		t.Errorf("Emergency should reset progress counters, got done=%d todo=%d", l.done, l.todo)
	}
	if l.state != instr.Idle {
		t.Errorf("Emergency should leave state Idle, got %v", l.state)
	}
}

func TestStopEnqueuesSafeRetraction(t *testing.T) {
	l := newTestLoop(t)
	// Move the mock X axis to a known position.
	for i := 0; i < 10; i++ {
		l.hw.x.Step(instr.Right)
	}
	l.queue = []instr.Instruction{{Kind: instr.KindDelay}}
	cur := instr.Instruction{Kind: instr.KindDelay}
	l.current = &cur

	l.handleInput(instr.Instruction{Kind: instr.KindStop})

	if l.current != nil {
		t.Fatalf("Stop should clear the current instruction")
	}
	if len(l.queue) != 1 || l.queue[0].Kind != instr.KindLine {
		t.Fatalf("Stop should enqueue exactly one Line retraction, got %v", l.queue)
	}
	line := l.queue[0].Line
	if line.PEnd.Z != 0 {
		t.Errorf("retraction should target z=0, got %v", line.PEnd.Z)
	}
	if line.PEnd.X != 10 {
		t.Errorf("retraction should preserve x, got %v want 10", line.PEnd.X)
	}
}

func TestPauseResumeRestoresState(t *testing.T) {
	l := newTestLoop(t)
	l.state = instr.Manual
	l.handleInput(instr.Instruction{Kind: instr.KindPause})
	if l.state != instr.Paused {
		t.Fatalf("Pause should set state to Paused, got %v", l.state)
	}
	l.handleInput(instr.Instruction{Kind: instr.KindResume})
	if l.state != instr.Manual {
		t.Errorf("Resume should restore pre-pause state, got %v", l.state)
	}
}

func TestCalibrationMiddleConverges(t *testing.T) {
	l := newTestLoop(t)
	minPos, maxPos := int64(-50), int64(150)
	l.hw.x = stepper.NewAxis("x", stepper.NewMock(&minPos, &maxPos))

	cur := instr.NewCalibrate(instr.CalibrateMiddle, instr.CalibrateNone, instr.CalibrateNone)
	l.current = &cur
	l.op.startTime = time.Now().Add(-time.Second)
	l.op.resetCalibration()

	for i := 0; i < 1000 && l.current != nil; i++ {
		l.op.startTime = time.Now().Add(-time.Duration(i+1) * calibrateSweepTick)
		l.execCalibrate()
	}

	if l.current != nil {
		t.Fatalf("calibration did not complete within bound")
	}
	got := l.hw.x.Pos()
	want := (minPos + maxPos) / 2
	if diff := got - want; diff < -1 || diff > 1 {
		t.Errorf("calibrated midpoint = %d, want %d ± 1", got, want)
	}
}

// fakeSpindle is an Executer with a configurable settling delay, used to
// verify the loop actually waits for it instead of clearing the current
// instruction as soon as On/Off is issued.
type fakeSpindle struct {
	on    bool
	delay time.Duration
	onN   int
	offN  int
}

func (f *fakeSpindle) On(speed float64, cw bool) time.Duration {
	f.on = true
	f.onN++
	return f.delay
}
func (f *fakeSpindle) Off() time.Duration {
	f.on = false
	f.offN++
	return f.delay
}
func (f *fakeSpindle) Resume()    {}
func (f *fakeSpindle) IsOn() bool { return f.on }
func (f *fakeSpindle) Close()     {}

func TestExecMotorOnWaitsForSettlingDelay(t *testing.T) {
	l := newTestLoop(t)
	fs := &fakeSpindle{delay: 5 * time.Millisecond}
	l.hw.spin = fs

	cur := instr.Instruction{Kind: instr.KindMotorOn, Speed: 1000, CW: true}
	l.current = &cur
	l.op.startTime = time.Now()

	l.execMotorOn()
	if fs.onN != 1 || !fs.on {
		t.Fatalf("expected On to be issued once, got onN=%d on=%v", fs.onN, fs.on)
	}
	if l.current == nil {
		t.Fatalf("current cleared before fixture setup check")
	}

	// Still within the settling delay: must not clear current, and must
	// not reissue On.
	l.execMotorOn()
	if fs.onN != 1 {
		t.Errorf("On reissued while waiting for settle, onN=%d", fs.onN)
	}
	if l.current == nil {
		t.Fatalf("MotorOn cleared current before the settling delay elapsed")
	}

	l.op.startTime = time.Now().Add(-10 * time.Millisecond)
	l.execMotorOn()
	if l.current != nil {
		t.Errorf("MotorOn did not clear current once the settling delay elapsed")
	}
}

func TestExecMotorOffWaitsForSettlingDelay(t *testing.T) {
	l := newTestLoop(t)
	fs := &fakeSpindle{on: true, delay: 5 * time.Millisecond}
	l.hw.spin = fs

	cur := instr.Instruction{Kind: instr.KindMotorOff}
	l.current = &cur
	l.op.startTime = time.Now()

	l.execMotorOff()
	if fs.offN != 1 || fs.on {
		t.Fatalf("expected Off to be issued once, got offN=%d on=%v", fs.offN, fs.on)
	}
	if l.current == nil {
		t.Fatalf("MotorOff cleared current immediately")
	}

	l.op.startTime = time.Now().Add(-10 * time.Millisecond)
	l.execMotorOff()
	if l.current != nil {
		t.Errorf("MotorOff did not clear current once the settling delay elapsed")
	}
	if fs.offN != 1 {
		t.Errorf("Off reissued after settling, offN=%d", fs.offN)
	}
}

func TestConditionMotorOnOff(t *testing.T) {
	l := newTestLoop(t)
	fs := &fakeSpindle{on: true}
	l.hw.spin = fs

	sub := instr.Instruction{Kind: instr.KindDelay, DelaySeconds: 1}

	// MotorOn, invert=false, spindle on: condition met.
	l.queue = nil
	cur := instr.Instruction{Kind: instr.KindCondition, Predicate: instr.MotorOn, SubInstructions: []instr.Instruction{sub}}
	l.current = &cur
	l.execCondition()
	if len(l.queue) != 1 {
		t.Fatalf("MotorOn/invert=false with spindle on: expected sub-instruction pushed, queue=%v", l.queue)
	}

	// MotorOff, invert=false, spindle on: condition must NOT be met.
	l.queue = nil
	cur = instr.Instruction{Kind: instr.KindCondition, Predicate: instr.MotorOff, SubInstructions: []instr.Instruction{sub}}
	l.current = &cur
	l.execCondition()
	if len(l.queue) != 0 {
		t.Errorf("MotorOff/invert=false with spindle on: expected no sub-instruction pushed, queue=%v", l.queue)
	}

	// MotorOff, invert=false, spindle off: condition met.
	fs.on = false
	l.queue = nil
	cur = instr.Instruction{Kind: instr.KindCondition, Predicate: instr.MotorOff, SubInstructions: []instr.Instruction{sub}}
	l.current = &cur
	l.execCondition()
	if len(l.queue) != 1 {
		t.Errorf("MotorOff/invert=false with spindle off: expected sub-instruction pushed, queue=%v", l.queue)
	}

	// MotorOff, invert=true, spindle off: condition must NOT be met.
	l.queue = nil
	cur = instr.Instruction{Kind: instr.KindCondition, Predicate: instr.MotorOff, Invert: true, SubInstructions: []instr.Instruction{sub}}
	l.current = &cur
	l.execCondition()
	if len(l.queue) != 0 {
		t.Errorf("MotorOff/invert=true with spindle off: expected no sub-instruction pushed, queue=%v", l.queue)
	}
}

func TestCalibrateContactPinCompletesImmediatelyWithoutProbe(t *testing.T) {
	l := newTestLoop(t)
	// newTestLoop's config is DevMode, so hw.zProbe is always nil.
	startPos := l.hw.z.Pos()

	cur := instr.NewCalibrate(instr.CalibrateNone, instr.CalibrateNone, instr.CalibrateContactPin)
	l.current = &cur
	l.op.startTime = time.Now()
	l.op.resetCalibration()

	l.execCalibrate()

	if l.current != nil {
		t.Fatalf("expected calibration to complete immediately without a wired probe")
	}
	if got := l.hw.z.Pos(); got != startPos {
		t.Errorf("expected z axis not to move without a wired probe, moved from %d to %d", startPos, got)
	}
}

func TestAdvanceQueueResetsCurveStatePerInstruction(t *testing.T) {
	l := newTestLoop(t)
	l.op.curve.stepsDone = 42
	l.op.curve.closeToDestination = true

	l.queue = []instr.Instruction{{
		Kind: instr.KindCurve,
		Curve: instr.NewInstructionCurve(
			geom.Location[int64]{}, 100, geom.Location[float64]{X: 1, Y: 1, Z: 1},
			instr.CW, 0.001, 0.001, geom.Location[int64]{X: 10},
		),
	}}
	l.advanceQueue()

	if l.op.curve.stepsDone != 0 || l.op.curve.closeToDestination {
		t.Errorf("expected fresh curve state on new Curve instruction, got %+v", l.op.curve)
	}
}
