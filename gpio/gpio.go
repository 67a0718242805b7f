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

// Package gpio drives Linux sysfs GPIO lines: exported output lines that
// actuate a pin, and input lines that report a pin's level.
package gpio

import (
	"fmt"
	"log"
	"os"
	"os/user"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	baseDir       = "/sys/class/gpio/"
	exportFile    = baseDir + "export"
	unexportFile  = baseDir + "unexport"
	directionFile = "/direction"
	valueFile     = "/value"
	edgeFile      = "/edge"
)

const verifyTimeout = 2 * time.Second

// Verify, when true, waits for an exported pin's files to become writable
// before use. Non-root processes need this: udev changes file group
// ownership on export asynchronously, so the first access can race it.
var Verify = false

func init() {
	u, err := user.Current()
	if err == nil && u.Uid != "0" {
		Verify = true
	}
}

// pin is the shared sysfs handle underlying both Output and Switch.
type pin struct {
	number int
	value  *os.File
	buf    []byte
}

func openPin(number int, direction string) (*pin, error) {
	val := fmt.Sprintf("%sgpio%d%s", baseDir, number, valueFile)
	if err := unix.Access(val, unix.W_OK|unix.R_OK); err != nil {
		if err := writeFile(exportFile, fmt.Sprintf("%d", number)); err != nil {
			return nil, errors.Wrapf(err, "gpio%d: export", number)
		}
		if Verify {
			if err := verifyFile(val); err != nil {
				unexport(number)
				return nil, err
			}
		}
	}
	dirFile := fmt.Sprintf("%sgpio%d%s", baseDir, number, directionFile)
	if err := writeFile(dirFile, direction); err != nil {
		unexport(number)
		return nil, errors.Wrapf(err, "gpio%d: set direction %s", number, direction)
	}
	f, err := os.OpenFile(val, os.O_RDWR, 0600)
	if err != nil {
		unexport(number)
		return nil, errors.Wrapf(err, "gpio%d: open value file", number)
	}
	return &pin{number: number, value: f, buf: make([]byte, 1)}, nil
}

func (p *pin) close() {
	p.value.Close()
	unexport(p.number)
}

func (p *pin) write(v bool) error {
	if v {
		p.buf[0] = '1'
	} else {
		p.buf[0] = '0'
	}
	_, err := p.value.WriteAt(p.buf, 0)
	return err
}

func (p *pin) read() (bool, error) {
	if _, err := p.value.ReadAt(p.buf, 0); err != nil {
		return false, err
	}
	switch p.buf[0] {
	case '0':
		return false, nil
	case '1':
		return true, nil
	default:
		return false, fmt.Errorf("gpio%d: unknown value %q", p.number, p.buf)
	}
}

func unexport(n int) error {
	return writeFile(unexportFile, fmt.Sprintf("%d", n))
}

func writeFile(fname, s string) error {
	f, err := os.OpenFile(fname, os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte(s))
	return err
}

func verifyFile(f string) error {
	sl := time.Millisecond
	for tout := time.Duration(0); tout < verifyTimeout; tout += sl {
		if err := unix.Access(f, unix.W_OK); err == nil {
			return nil
		}
		time.Sleep(sl)
	}
	return fmt.Errorf("%s: not writable", f)
}

// Output is a controllable GPIO output line. Construction is fallible: a
// missing backing device is surfaced to the caller, never swallowed.
type Output struct {
	p       *pin
	invert  bool
	level   bool
}

// NewOutput exports pin `number` as an output, driven to defaultLevel. When
// invert is true, logical-high asserts the electrical line low.
func NewOutput(number int, invert, defaultLevel bool) (*Output, error) {
	p, err := openPin(number, "out")
	if err != nil {
		return nil, errors.Wrapf(err, "gpio: output pin %d", number)
	}
	o := &Output{p: p, invert: invert}
	if err := o.set(defaultLevel); err != nil {
		p.close()
		return nil, err
	}
	return o, nil
}

func (o *Output) set(high bool) error {
	electrical := high != o.invert
	if err := o.p.write(electrical); err != nil {
		return errors.Wrapf(err, "gpio%d: set", o.p.number)
	}
	o.level = high
	return nil
}

// SetHigh asserts the logical-high level.
func (o *Output) SetHigh() error { return o.set(true) }

// SetLow asserts the logical-low level.
func (o *Output) SetLow() error { return o.set(false) }

// Toggle flips the current logical level and returns the new value.
func (o *Output) Toggle() (bool, error) {
	next := !o.level
	return next, o.set(next)
}

// IsHigh reports the last level this Output was driven to.
func (o *Output) IsHigh() bool { return o.level }

// Close releases the pin.
func (o *Output) Close() { o.p.close() }

// Switch is a GPIO input line with invert semantics; reads are not
// debounced. If the backing device could not be acquired at construction,
// IsClosed always reports open: absent optional limit switches must stay
// benign.
type Switch struct {
	p      *pin
	invert bool
}

// NewSwitch exports pin `number` as an input. On failure it logs and
// returns a Switch that always reads open, per spec: GPIO input failure
// downgrades to a dummy switch rather than aborting construction.
func NewSwitch(number int, invert bool) *Switch {
	p, err := openPin(number, "in")
	if err != nil {
		log.Printf("gpio: input pin %d unavailable, reading as open: %v", number, err)
		return &Switch{p: nil, invert: invert}
	}
	return &Switch{p: p, invert: invert}
}

// IsClosed performs a fresh read of the line.
func (s *Switch) IsClosed() bool {
	if s.p == nil {
		return false
	}
	v, err := s.p.read()
	if err != nil {
		return false
	}
	return v != s.invert
}

// Close releases the pin, if one was acquired.
func (s *Switch) Close() {
	if s.p != nil {
		s.p.close()
	}
}
