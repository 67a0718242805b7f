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

// Package control implements the controller loop: the hard real-time
// core that dequeues Instructions, drives the three axes and spindle,
// and publishes Feedback telemetry.
package control

import (
	"log"
	"time"

	"github.com/cncforge/motioncore/config"
	"github.com/cncforge/motioncore/geom"
	"github.com/cncforge/motioncore/instr"
)

// Loop owns the axes, spindle, GPIO handles and the live instruction
// queue for its entire lifetime. It is constructed and run by the
// façade, on a dedicated goroutine.
type Loop struct {
	cfg *config.Config
	hw  *hardware

	in  <-chan instr.Instruction
	out chan<- instr.Feedback

	state      instr.MachineState
	queue      []instr.Instruction
	current    *instr.Instruction
	done, todo int

	lastDone, lastTodo int
	haveLastProgress   bool

	op opState
}

// NewLoop builds a Loop from an initial configuration. Hardware
// acquisition failures are returned to the caller; they are fatal for
// output lines, per §4.1/§7.
func NewLoop(cfg *config.Config, in <-chan instr.Instruction, out chan<- instr.Feedback) (*Loop, error) {
	hw, err := buildHardware(cfg)
	if err != nil {
		return nil, err
	}
	return &Loop{
		cfg:   cfg,
		hw:    hw,
		in:    in,
		out:   out,
		state: instr.Idle,
		op:    newOpState(),
	}, nil
}

// Run executes the four-step cycle until Shutdown is requested. It is
// meant to run on its own goroutine, pinned to a dedicated OS thread by
// the caller if real-time behaviour is required.
func (l *Loop) Run() {
	for !l.op.shutdown {
		l.drainInput()
		l.executeCurrent()
		l.advanceQueue()
		l.emitTelemetry()
	}
	l.hw.x.Close()
	l.hw.y.Close()
	l.hw.z.Close()
	l.hw.spin.Close()
	if l.hw.zProbe != nil {
		l.hw.zProbe.Close()
	}
}

func (l *Loop) pos() geom.Location[int64] {
	return geom.Location[int64]{X: l.hw.x.Pos(), Y: l.hw.y.Pos(), Z: l.hw.z.Pos()}
}

// drainInput drains the submission channel without blocking, applying
// control verbs immediately and queuing everything else.
func (l *Loop) drainInput() {
	for {
		select {
		case in, ok := <-l.in:
			if !ok {
				l.op.shutdown = true
				return
			}
			l.handleInput(in)
		default:
			return
		}
	}
}

func (l *Loop) handleInput(in instr.Instruction) {
	switch in.Kind {
	case instr.KindShutdown:
		l.op.shutdown = true

	case instr.KindManualMovement:
		if l.state != instr.Program && l.state != instr.Calibrate {
			l.queue = nil
			l.current = nil
			l.queue = append(l.queue, in)
		}
		// else: discarded on arrival, per spec's explicit choice on the
		// Program/Calibrate ManualMovement open question.

	case instr.KindEmergency:
		l.queue = nil
		l.current = nil
		l.op.spindleIssued = false
		l.resetProgress()
		l.setState(instr.Idle)
		log.Printf("control: Emergency")

	case instr.KindStop:
		l.queue = nil
		l.current = nil
		l.op.spindleIssued = false
		l.resetProgress()
		p := l.pos()
		retract := instr.Instruction{
			Kind: instr.KindLine,
			Line: instr.CreateLineWithoutRamps(p, geom.Location[int64]{X: p.X, Y: p.Y, Z: 0}, safeRetractSpeed),
		}
		l.queue = append(l.queue, retract)

	case instr.KindPause:
		l.op.preState = l.state
		l.setState(instr.Paused)

	case instr.KindResume:
		l.setState(l.op.preState)

	case instr.KindSettings:
		l.applySettings(in)

	case instr.KindToolChanged:
		if in.ToolChanged != nil {
			l.op.toolID = in.ToolChanged.ID
			l.op.toolLength = in.ToolChanged.Length
		}
		l.setState(l.op.preState)
		l.current = nil
		l.op.waitFor = nil

	default:
		l.queue = append(l.queue, in)
	}
}

func (l *Loop) applySettings(in instr.Instruction) {
	xSave, ySave, zSave := l.hw.x.Save(), l.hw.y.Save(), l.hw.z.Save()
	closeHardware(l.hw)

	cfg := l.cfg
	if c, ok := in.NewSettings.(*config.Config); ok && c != nil {
		cfg = c
	}
	hw, err := buildHardware(cfg)
	if err != nil {
		log.Printf("control: settings rebuild failed: %v", err)
		l.sendError("settings", err.Error())
		return
	}
	hw.x.Restore(xSave)
	hw.y.Restore(ySave)
	hw.z.Restore(zSave)

	l.cfg = cfg
	l.hw = hw
	l.queue = nil
	l.current = nil
	l.resetProgress()
	l.op = newOpState()
	l.setState(instr.Idle)
}

func (l *Loop) resetProgress() {
	l.done, l.todo = 0, 0
}

// executeCurrent runs the current instruction's phase logic for one
// tick. If there is no current instruction, it does nothing.
func (l *Loop) executeCurrent() {
	if l.current == nil {
		return
	}
	switch l.current.Kind {
	case instr.KindLine:
		l.execLine()
	case instr.KindCurve:
		l.execCurve()
	case instr.KindManualMovement:
		l.execManualMovement()
	case instr.KindCalibrateReq:
		l.execCalibrate()
	case instr.KindMotorOn:
		l.execMotorOn()
	case instr.KindSetSpeed:
		l.execMotorOn()
	case instr.KindMotorOff:
		l.execMotorOff()
	case instr.KindDelay:
		l.execDelay()
	case instr.KindWaitFor:
		l.execWaitFor()
	case instr.KindCondition:
		l.execCondition()
	default:
		// Start is queued like any other instruction and completes here
		// with no effect; the other control verbs are fully handled in
		// drainInput and never become the current instruction.
		l.current = nil
	}
}

// execMotorOn issues On (or a speed change, routed here the same way)
// once per instruction and then holds the instruction current until the
// executer's reported settling delay has elapsed, so the next
// instruction cannot start before the spindle/VFD has reached speed.
func (l *Loop) execMotorOn() {
	if l.op.startTime.IsZero() {
		return
	}
	if !l.op.spindleIssued {
		l.op.spindleSettle = l.hw.spin.On(l.current.Speed, l.current.CW)
		l.op.spindleIssued = true
	}
	if time.Since(l.op.startTime) >= l.op.spindleSettle {
		l.op.spindleIssued = false
		l.current = nil
	}
}

// execMotorOff mirrors execMotorOn for Off's settling delay.
func (l *Loop) execMotorOff() {
	if l.op.startTime.IsZero() {
		return
	}
	if !l.op.spindleIssued {
		l.op.spindleSettle = l.hw.spin.Off()
		l.op.spindleIssued = true
	}
	if time.Since(l.op.startTime) >= l.op.spindleSettle {
		l.op.spindleIssued = false
		l.current = nil
	}
}

func (l *Loop) execDelay() {
	if l.op.startTime.IsZero() {
		return
	}
	if time.Since(l.op.startTime) >= time.Duration(l.current.DelaySeconds*float64(time.Second)) {
		l.current = nil
	}
}

func (l *Loop) execWaitFor() {
	if l.op.waitFor == nil {
		l.op.waitFor = l.current.WaitForTool
		l.setState(instr.WaitForInput)
		l.sendFeedback(instr.Feedback{
			Kind:              instr.FeedbackRequireToolChange,
			RequireToolChange: l.op.waitFor,
		})
	}
	// Remains current until a ToolChanged control verb clears it in
	// drainInput.
}

func (l *Loop) execCondition() {
	c := l.current
	var met bool
	switch c.Predicate {
	case instr.DifferentTool:
		met = (l.op.toolID != c.PredicateToolID) != c.Invert
	case instr.MotorOn:
		met = l.hw.spin.IsOn() != c.Invert
	case instr.MotorOff:
		met = !l.hw.spin.IsOn() != c.Invert
	}
	if met {
		for i := len(c.SubInstructions) - 1; i >= 0; i-- {
			l.queue = append([]instr.Instruction{c.SubInstructions[i]}, l.queue...)
		}
	}
	l.current = nil
}

// advanceQueue pops the next instruction once the current one has
// completed, and idles when the queue is empty.
func (l *Loop) advanceQueue() {
	if l.current != nil {
		return
	}
	if len(l.queue) == 0 {
		l.todo, l.done = 0, 0
		l.sendProgress()
		l.setState(instr.Idle)
		time.Sleep(idleSleep)
		return
	}
	next := l.queue[0]
	l.queue = l.queue[1:]
	l.current = &next
	l.done++
	l.todo = len(l.queue)
	l.sendProgress()
	l.setState(instr.Program)
	l.op.startTime = time.Now()
	l.op.startPos = l.pos()
	if next.Kind == instr.KindCurve {
		// step_delay is gated per-Curve instruction, not globally: reset
		// the sub-state every time a new Curve becomes current.
		l.op.curve = newCurveState()
	}
	if next.Kind == instr.KindCalibrateReq {
		l.op.resetCalibration()
	}
}

func (l *Loop) emitTelemetry() {
	if time.Since(l.op.lastTelemetry) > l.cfg.PosUpdateEvery {
		l.op.lastTelemetry = time.Now()
		l.sendFeedbackLossy(instr.Feedback{Kind: instr.FeedbackPos, Pos: l.pos()})
	}
}

func (l *Loop) setState(s instr.MachineState) {
	if l.state == s {
		return
	}
	l.state = s
	l.sendFeedback(instr.Feedback{Kind: instr.FeedbackState, State: s})
}

func (l *Loop) sendProgress() {
	if l.haveLastProgress && l.done == l.lastDone && l.todo == l.lastTodo {
		return
	}
	l.lastDone, l.lastTodo, l.haveLastProgress = l.done, l.todo, true
	l.sendFeedback(instr.Feedback{Kind: instr.FeedbackProgress, ProgressTodo: l.todo, ProgressDone: l.done})
}

func (l *Loop) sendError(kind, detail string) {
	l.sendFeedbackLossy(instr.Feedback{Kind: instr.FeedbackError, ErrorKind: kind, ErrorDetail: detail})
}

// sendFeedback is the reliable path: State, Progress and
// RequireToolChange must not be silently dropped, so this blocks if the
// channel is momentarily full rather than discard them.
func (l *Loop) sendFeedback(f instr.Feedback) {
	select {
	case l.out <- f:
	default:
		// Fall back to a blocking send so the event is not lost; the
		// channel is expected to be drained promptly by the façade's
		// fan-out goroutine.
		l.out <- f
	}
}

// sendFeedbackLossy is Pos's best-effort path: dropped under backpressure
// rather than stalling motion.
func (l *Loop) sendFeedbackLossy(f instr.Feedback) {
	select {
	case l.out <- f:
	default:
	}
}
