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

// Package facade is the controller-interface façade: it owns the
// controller loop's execution context and exposes nothing to producers
// but an instruction submission channel and a telemetry subscription
// mechanism, mirroring the teacher's Clock/setup wiring (clock.go) where
// main() owns a Hand and exposes only Adjust()/Get().
package facade

import (
	"runtime"
	"sync"

	"github.com/cncforge/motioncore/config"
	"github.com/cncforge/motioncore/control"
	"github.com/cncforge/motioncore/instr"
)

// Controller owns the loop's execution context. Cyclic references
// between façade, bridge, and loop are avoided: channels are the only
// link, no component holds a handle to another.
type Controller struct {
	submit chan instr.Instruction
	events chan instr.Feedback

	mu          sync.Mutex
	subscribers []chan instr.Feedback

	loop *control.Loop
}

// New constructs the controller loop and its channel pair, but does not
// start it — call Run (typically in its own goroutine) to start the
// loop.
func New(cfg *config.Config) (*Controller, error) {
	submit := make(chan instr.Instruction, 256)
	events := make(chan instr.Feedback, 256)
	loop, err := control.NewLoop(cfg, submit, events)
	if err != nil {
		return nil, err
	}
	c := &Controller{submit: submit, events: events, loop: loop}
	go c.fanOut()
	return c, nil
}

// Run starts the controller loop on the calling goroutine. The caller
// should invoke this on a dedicated goroutine, pinned with
// runtime.LockOSThread if real-time scheduling is desired.
func (c *Controller) Run() {
	runtime.LockOSThread()
	c.loop.Run()
}

// Submit enqueues an instruction on the loop's buffered input channel
// (256 entries). It returns at once while the buffer has room and blocks
// while it is full. Submit reports no failure: the channel is never
// closed, so after the loop has exited, calls succeed until the buffer
// fills and then block.
func (c *Controller) Submit(in instr.Instruction) {
	c.submit <- in
}

// Subscribe returns a new, independently-buffered feedback channel. Pos
// feedback on it may be dropped under backpressure; State, Progress and
// RequireToolChange are delivered reliably.
func (c *Controller) Subscribe() <-chan instr.Feedback {
	ch := make(chan instr.Feedback, 64)
	c.mu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.mu.Unlock()
	return ch
}

// fanOut republishes every Feedback the loop emits to all subscribers.
func (c *Controller) fanOut() {
	for f := range c.events {
		c.mu.Lock()
		subs := append([]chan instr.Feedback(nil), c.subscribers...)
		c.mu.Unlock()
		for _, s := range subs {
			select {
			case s <- f:
			default:
				if f.Kind != instr.FeedbackPos {
					// Reliable kinds are not dropped: block until this
					// subscriber has room, which stalls the fan-out to
					// every subscriber meanwhile.
					s <- f
				}
			}
		}
	}
}

// Shutdown requests the loop to terminate.
func (c *Controller) Shutdown() {
	c.Submit(instr.Instruction{Kind: instr.KindShutdown})
}
