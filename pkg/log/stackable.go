// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"fmt"
	"sync"
	"time"

	"github.com/packetlss/amonra-bootable-recovery/pkg/log/flags"
)

// StackableLogger is a log sink that can be chained to others. Entries enter
// at the top of the stack and each sink forwards to the next. Normal logging
// goes through the package-level functions - Logf, Msgf, Fatalf - rather than
// through this interface.
type StackableLogger interface {
	// AddEntry records an entry, then must forward it to the next sink if
	// one is chained.
	AddEntry(e Entry)

	// ForwardTo chains another sink after this one. Calling it when a sink
	// is already chained is a programming error.
	ForwardTo(StackableLogger)

	// Ident returns a string identifying the sink type. No two sinks of the
	// same ident may coexist in a stack.
	Ident() string

	// Next returns the chained sink or nil.
	Next() StackableLogger

	// Finalize flushes and releases resources, and must do the same for the
	// next sink in the stack.
	Finalize()
}

// Entry is the record type passed between stacked sinks.
type Entry struct {
	Time  time.Time `json:"t"`
	Msg   string
	Args  []interface{} `json:",omitempty"`
	Flags flags.Flag    `json:",omitempty"`
}

func (e *Entry) String() string {
	var div string
	switch {
	case e.Flags&flags.EndUser != 0:
		div = "-- "
	case e.Flags&flags.Fatal != 0:
		div = "!! "
	case e.Flags == 0:
		div = "*- "
	default:
		div = "?? "
	}
	f := div + e.Time.Format(TimestampLayout) + " " + div + e.Msg
	return fmt.Sprintf(f, e.Args...)
}

// Topmost sink. Any access must hold stackMtx.
var stack StackableLogger = &memLog{}
var stackMtx sync.Mutex

type dupErr struct{ id string }

func (de *dupErr) Error() string {
	return fmt.Sprintf("duplicate logger %s in stack", de.id)
}

// FlaggedLogf is the backend of Logf, Msgf, Fatalf.
func FlaggedLogf(opts flags.Flag, f string, va ...interface{}) {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	stack.AddEntry(Entry{
		Time:  time.Now(),
		Flags: opts,
		Msg:   f,
		Args:  va,
	})
}

// Finalize flushes data and closes files held by any sink in the stack.
func Finalize() {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	stack.Finalize()
}

// DefaultLogStack finalizes the current stack and replaces it with a lone
// memLog, the initial state. Used at the start of tests.
func DefaultLogStack() {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	if stack != nil {
		stack.Finalize()
	}
	stack = &memLog{}
}

// AddLogger pushes a sink onto the stack. If addPrevious is true, entries
// already captured by a memLog are replayed into the new sink first. The only
// possible error is a duplicate sink type.
func AddLogger(sl StackableLogger, addPrevious bool) error {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	if err := checkDup(sl, stack); err != nil {
		return err
	}
	if addPrevious {
		replayInto(sl)
	}
	sl.ForwardTo(stack)
	stack = sl
	return nil
}

func checkDup(newSink, sl StackableLogger) error {
	for ; sl != nil; sl = sl.Next() {
		if newSink.Ident() == sl.Ident() {
			return &dupErr{id: sl.Ident()}
		}
	}
	return nil
}

func replayInto(newSink StackableLogger) {
	if _, isMem := newSink.(*memLog); isMem {
		// only one memLog can exist, no point copying to ourselves
		return
	}
	ml := findLocked(MemLogIdent)
	if ml == nil {
		return
	}
	for _, e := range ml.(*memLog).entries() {
		newSink.AddEntry(e)
	}
}

// RemoveLogger finalizes and unchains the sink with the given ident, if any.
func RemoveLogger(id string) {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	var prev StackableLogger
	for l := stack; l != nil; {
		next := l.Next()
		if l.Ident() == id {
			l.ForwardTo(nil)
			l.Finalize()
			switch {
			case prev != nil:
				prev.ForwardTo(nil)
				prev.ForwardTo(next)
			case next != nil:
				stack = next
			default:
				//never leave the stack empty
				stack = &memLog{}
			}
			return
		}
		prev = l
		l = next
	}
}

// InStack returns true if a sink in the stack matches the given ident.
func InStack(id string) bool { return FindInStack(id) != nil }

// FindInStack returns the sink matching ident, or nil.
func FindInStack(id string) StackableLogger {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	return findLocked(id)
}

func stackHead() StackableLogger {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	return stack
}

func findLocked(id string) StackableLogger {
	for l := stack; l != nil; l = l.Next() {
		if l.Ident() == id {
			return l
		}
	}
	return nil
}
