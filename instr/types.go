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

// Package instr defines the instruction and feedback model the controller
// loop consumes and produces: the tagged-union Instruction fed in through
// the submission channel, and the Feedback telemetry values published out.
package instr

import "github.com/cncforge/motioncore/geom"

// Direction is a single step command.
type Direction int

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	if d == Right {
		return "Right"
	}
	return "Left"
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Right {
		return Left
	}
	return Right
}

// MachineState is the observable mode of the controller loop. Only the
// loop itself ever writes it; producers read it via Feedback.
type MachineState int

const (
	Idle MachineState = iota
	Manual
	Program
	Calibrate
	Paused
	WaitForInput
)

func (s MachineState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Manual:
		return "Manual"
	case Program:
		return "Program"
	case Calibrate:
		return "Calibrate"
	case Paused:
		return "Paused"
	case WaitForInput:
		return "WaitForInput"
	default:
		return "Unknown"
	}
}

// CalibrateType selects the calibration phase machine an axis runs.
type CalibrateType int

const (
	CalibrateNone CalibrateType = iota
	CalibrateMin
	CalibrateMax
	CalibrateMiddle
	CalibrateContactPin
)

func (c CalibrateType) String() string {
	switch c {
	case CalibrateNone:
		return "None"
	case CalibrateMin:
		return "Min"
	case CalibrateMax:
		return "Max"
	case CalibrateMiddle:
		return "Middle"
	case CalibrateContactPin:
		return "ContactPin"
	default:
		return "Unknown"
	}
}

// CircleDirection is the winding direction of an arc.
type CircleDirection int

const (
	CW CircleDirection = iota
	CCW
)

// Predicate selects the condition a Condition instruction probes.
type Predicate int

const (
	DifferentTool Predicate = iota
	MotorOn
	MotorOff
)

// ToolChange carries the tool identity a WaitFor/ToolChanged cycle settles
// on. Length is optional (nil when the producer did not report one).
type ToolChange struct {
	ID     int
	Length *float64
}

// Kind discriminates the variant held by an Instruction.
type Kind int

const (
	KindLine Kind = iota
	KindCurve
	KindManualMovement
	KindCalibrateReq
	KindMotorOn
	KindMotorOff
	KindSetSpeed
	KindDelay
	KindWaitFor
	KindCondition
	KindStart
	KindStop
	KindPause
	KindResume
	KindEmergency
	KindToolChanged
	KindSettings
	KindShutdown
)

// Instruction is a tagged union: exactly one field group is meaningful,
// selected by Kind. This mirrors the Rust source's enum at the API
// boundary while staying a single allocatable, comparable-by-pointer Go
// value that the loop can type-switch on.
type Instruction struct {
	Kind Kind

	Line  *InstructionLine
	Curve *InstructionCurve

	// ManualMovement: signed step-velocity vector, steps/ns.
	ManualVelocity geom.Location[float64]

	// Calibrate: independent per-axis calibration request.
	CalibrateX, CalibrateY, CalibrateZ CalibrateType

	// MotorOn / SetSpeed.
	Speed float64
	CW    bool

	// Delay, in seconds.
	DelaySeconds float64

	// WaitFor(ToolChanged).
	WaitForTool *ToolChange

	// Condition.
	Predicate       Predicate
	PredicateToolID int
	Invert          bool
	Terminate       bool
	SubInstructions []Instruction

	// ToolChanged.
	ToolChanged *ToolChange

	// Settings.
	NewSettings interface{}
}

// NewManualMovement builds a ManualMovement instruction.
func NewManualMovement(v geom.Location[float64]) Instruction {
	return Instruction{Kind: KindManualMovement, ManualVelocity: v}
}

// NewCalibrate builds a Calibrate instruction.
func NewCalibrate(x, y, z CalibrateType) Instruction {
	return Instruction{Kind: KindCalibrateReq, CalibrateX: x, CalibrateY: y, CalibrateZ: z}
}

// NewDelay builds a Delay instruction.
func NewDelay(seconds float64) Instruction {
	return Instruction{Kind: KindDelay, DelaySeconds: seconds}
}

// NewWaitForToolChanged builds a WaitFor(ToolChanged) instruction.
func NewWaitForToolChanged(id int, length *float64) Instruction {
	return Instruction{Kind: KindWaitFor, WaitForTool: &ToolChange{ID: id, Length: length}}
}

// NewToolChanged builds the ToolChanged control verb.
func NewToolChanged(id int, length *float64) Instruction {
	return Instruction{Kind: KindToolChanged, ToolChanged: &ToolChange{ID: id, Length: length}}
}

// FeedbackKind discriminates the variant held by a Feedback value.
type FeedbackKind int

const (
	FeedbackPos FeedbackKind = iota
	FeedbackState
	FeedbackProgress
	FeedbackRequireToolChange
	FeedbackError
)

// Feedback is the telemetry the controller loop publishes asynchronously.
type Feedback struct {
	Kind FeedbackKind

	Pos geom.Location[int64]

	State MachineState

	ProgressTodo, ProgressDone int
	JobName                    string

	RequireToolChange *ToolChange

	ErrorKind, ErrorDetail string
}
