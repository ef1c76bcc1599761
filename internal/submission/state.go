// Package submission implements the submission/result controller: it
// validates user input, drives one reduction request at a time and publishes
// every state transition through an observable cell.
package submission

import (
	"fmt"
	"strings"

	"uncss/internal/reduction"
)

// Validation messages shown for empty input.
const (
	MsgEmptyHTML = "无法处理空HTML"
	MsgEmptyCSS  = "无法处理空CSS"
)

// Input is the raw text the user submits.
type Input struct {
	HTML string
	CSS  string
}

// Validate checks the input without touching the network. HTML is checked
// before CSS.
func (in Input) Validate() *reduction.Error {
	if strings.TrimSpace(in.HTML) == "" {
		return reduction.Validation(MsgEmptyHTML)
	}
	if strings.TrimSpace(in.CSS) == "" {
		return reduction.Validation(MsgEmptyCSS)
	}
	return nil
}

// Phase is the discriminant of State.
type Phase int

const (
	Idle Phase = iota
	Loading
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case Loading:
		return "Loading"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is the controller's single observable value.
//
// Output is the text of the output region. It is empty until the first
// success and is only replaced by a successful terminal transition, so the
// previous result stays visible while a new request is Loading. Err is set
// only when Phase is Failed.
type State struct {
	Phase  Phase
	Output string
	Err    *reduction.Error
}

// IsLoading reports whether a request is in flight.
func (s State) IsLoading() bool {
	return s.Phase == Loading
}

func (s State) String() string {
	switch s.Phase {
	case Succeeded:
		return fmt.Sprintf("Succeeded(%q)", s.Output)
	case Failed:
		if s.Err == nil {
			return "Failed(<nil>)"
		}
		return fmt.Sprintf("Failed(%s(%q))", s.Err.Name(), s.Err.Message)
	default:
		return s.Phase.String()
	}
}

func (s State) loading() State {
	return State{Phase: Loading, Output: s.Output}
}

func (s State) succeed(output string) State {
	return State{Phase: Succeeded, Output: output}
}

func (s State) fail(err *reduction.Error) State {
	return State{Phase: Failed, Output: s.Output, Err: err}
}
