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

// Package bridge translates between a producer-side event bus and the
// controller façade's instruction/feedback channels. It is the "bridge
// context" of the concurrency model: owned by the producer adapter, run
// at default priority, touching no motor state directly.
package bridge

import (
	"github.com/cncforge/motioncore/geom"
	"github.com/cncforge/motioncore/instr"
)

// UserControlInput is the set of high-level control actions a producer
// (UI, gamepad, parser) can submit through the bus.
type UserControlInput int

const (
	InputStop UserControlInput = iota
	InputStart
	InputSelectProgram
	InputNextProgram
	InputPrevProgram
	InputCalibrateZ
	InputResetPosToNull
	InputManualControl
	InputTerminate
)

// EventKind discriminates the variant held by a SystemEvent.
type EventKind int

const (
	EventHardwareInstruction EventKind = iota
	EventHardwareFeedback
	EventControlInput
	EventTerminate
)

// SystemEvent is the single shared bus value type: high-level events
// flowing between UI, gamepad, parser, and the controller façade.
type SystemEvent struct {
	Kind EventKind

	Instruction instr.Instruction
	Feedback    instr.Feedback

	ControlInput   UserControlInput
	ManualVelocity geom.Location[float64]
}

// Submitter is the subset of facade.Controller the bridge depends on,
// kept as an interface so the bridge never holds a concrete handle to
// the loop.
type Submitter interface {
	Submit(instr.Instruction)
	Subscribe() <-chan instr.Feedback
}

// Bridge forwards SystemEvents to a Submitter's instruction channel, and
// republishes the Submitter's feedback back onto the bus.
type Bridge struct {
	ctrl Submitter
	bus  chan SystemEvent
}

// New builds a Bridge around ctrl and bus. bus is a shared,
// broadcast-style channel; producers and consumers of SystemEvent both
// read and write it.
func New(ctrl Submitter, bus chan SystemEvent) *Bridge {
	return &Bridge{ctrl: ctrl, bus: bus}
}

// Run consumes the bus until it is closed, translating each
// ControlInput into the Instruction(s) spec.md §6 defines. HardwareInstruction
// events are forwarded unchanged to the controller, Terminate events
// become Shutdown, and HardwareFeedback events read from the bus are
// ignored. Every Feedback from the controller is republished on the bus.
func (b *Bridge) Run() {
	feedback := b.ctrl.Subscribe()
	for {
		select {
		case ev, ok := <-b.bus:
			if !ok {
				return
			}
			b.handle(ev)
		case f, ok := <-feedback:
			if !ok {
				return
			}
			b.bus <- SystemEvent{Kind: EventHardwareFeedback, Feedback: f}
		}
	}
}

func (b *Bridge) handle(ev SystemEvent) {
	switch ev.Kind {
	case EventHardwareInstruction:
		b.ctrl.Submit(ev.Instruction)
	case EventControlInput:
		b.ctrl.Submit(b.translate(ev))
	case EventTerminate:
		b.ctrl.Submit(instr.Instruction{Kind: instr.KindShutdown})
	}
}

// translate implements the three named translations: CalibrateZ to a
// z-only ContactPin calibration sweep, ManualControl to a
// ManualMovement at the event's velocity, and Terminate to Shutdown.
func (b *Bridge) translate(ev SystemEvent) instr.Instruction {
	switch ev.ControlInput {
	case InputCalibrateZ:
		return instr.NewCalibrate(instr.CalibrateNone, instr.CalibrateNone, instr.CalibrateContactPin)
	case InputManualControl:
		return instr.NewManualMovement(ev.ManualVelocity)
	case InputTerminate:
		return instr.Instruction{Kind: instr.KindShutdown}
	case InputStop:
		return instr.Instruction{Kind: instr.KindStop}
	case InputStart:
		return instr.Instruction{Kind: instr.KindStart}
	default:
		return instr.Instruction{Kind: instr.KindStop}
	}
}
