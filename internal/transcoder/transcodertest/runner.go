// Package transcodertest provides a scripted Runner for tests that must not
// invoke real media tools.
package transcodertest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
)

// Call is one recorded invocation
type Call struct {
	Name string
	Args []string
}

// FakeRunner records every invocation and answers from canned outputs.
// Outputs and Errors are keyed by the base name of the command.
type FakeRunner struct {
	mu      sync.Mutex
	calls   []Call
	Outputs map[string][]byte
	Errors  map[string]error
	// ErrorFunc, when set, overrides Errors
	ErrorFunc func(Call) error
}

// NewFakeRunner creates an empty runner where every command succeeds
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Outputs: make(map[string][]byte),
		Errors:  make(map[string]error),
	}
}

// Run records the call and returns the scripted result
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	call := Call{Name: filepath.Base(name), Args: append([]string(nil), args...)}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var err error
	if f.ErrorFunc != nil {
		err = f.ErrorFunc(call)
	} else {
		err = f.Errors[call.Name]
	}
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", call.Name, err)
	}

	return f.Outputs[call.Name], nil
}

// Calls returns every recorded invocation in order
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the invocations of one command
func (f *FakeRunner) CallsTo(name string) []Call {
	var matched []Call
	for _, c := range f.Calls() {
		if c.Name == name {
			matched = append(matched, c)
		}
	}
	return matched
}

// Count returns how many times a command ran
func (f *FakeRunner) Count(name string) int {
	return len(f.CallsTo(name))
}

// Last returns the final argument of a call, which is the output path for
// ffmpeg and mp4fragment and the input for mp4dash
func (c Call) Last() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[len(c.Args)-1]
}
