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

// Package viz is an HTTP telemetry consumer: it draws the tool head's
// current position over a job-preview canvas and serves a status page,
// the same role hand/http.go's ClockServer plays for a clock's hands.
// It consumes the feedback channel exposed by facade.Controller and
// never writes to the instruction channel itself.
package viz

import (
	"fmt"
	"image/color"
	"image/jpeg"
	"log"
	"net/http"
	"sync"

	"github.com/fogleman/gg"

	"github.com/cncforge/motioncore/instr"
)

// Server draws a live preview of tool position onto a canvas of the
// configured size, and serves a status page summarizing the latest
// telemetry.
type Server struct {
	width, height int

	mu       sync.Mutex
	pos      instr.Feedback
	state    instr.MachineState
	progress instr.Feedback
	lastErr  instr.Feedback
}

// New builds a Server with a canvas of size width x height, in pixels.
func New(width, height int) *Server {
	return &Server{width: width, height: height}
}

// Consume drains feedback until the channel closes, updating the
// server's last-known snapshot. Run this on its own goroutine.
func (s *Server) Consume(feedback <-chan instr.Feedback) {
	for f := range feedback {
		s.mu.Lock()
		switch f.Kind {
		case instr.FeedbackPos:
			s.pos = f
		case instr.FeedbackState:
			s.state = f.State
		case instr.FeedbackProgress:
			s.progress = f
		case instr.FeedbackError:
			s.lastErr = f
		}
		s.mu.Unlock()
	}
}

// ListenAndServe registers the /preview.jpg and /status handlers and
// blocks serving HTTP on addr.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/preview.jpg", s.servePreview)
	mux.HandleFunc("/status", s.serveStatus)
	log.Printf("viz: serving on %s", addr)
	return (&http.Server{Addr: addr, Handler: mux}).ListenAndServe()
}

func (s *Server) servePreview(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pos := s.pos.Pos
	s.mu.Unlock()

	c := gg.NewContext(s.width, s.height)
	c.SetColor(color.White)
	c.Clear()
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(s.width), float64(s.height))
	c.Stroke()

	cx, cy := float64(s.width)/2, float64(s.height)/2
	x := cx + float64(pos.X)
	y := cy - float64(pos.Y)
	c.SetRGB(1, 0, 0)
	c.DrawCircle(x, y, 4)
	c.Fill()

	w.Header().Set("Content-Type", "image/jpeg")
	if err := jpeg.Encode(w, c.Image(), nil); err != nil {
		log.Printf("viz: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, "<html><body><h1>Status</h1>")
	fmt.Fprintf(w, "state: %s<br>", s.state)
	fmt.Fprintf(w, "pos: (%d, %d, %d)<br>", s.pos.Pos.X, s.pos.Pos.Y, s.pos.Pos.Z)
	fmt.Fprintf(w, "progress: %d/%d<br>", s.progress.ProgressDone, s.progress.ProgressTodo)
	if s.lastErr.ErrorKind != "" {
		fmt.Fprintf(w, "last error: %s: %s<br>", s.lastErr.ErrorKind, s.lastErr.ErrorDetail)
	}
	fmt.Fprintf(w, "<p><a href=\"preview.jpg\">preview</a></body></html>")
}
