// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package testlog captures pkg/log output so tests can assert on what was
// logged. It also defuses Fatalf, turning it into a recorded event instead of
// process termination.
package testlog

import (
	"strings"
	"sync"
	"testing"

	"github.com/packetlss/amonra-bootable-recovery/pkg/log"
	"github.com/packetlss/amonra-bootable-recovery/pkg/log/flags"
)

const Ident = "testLog"

// TstLog records every entry passing through the stack. Do not share one
// between tests - create a new one each time.
type TstLog struct {
	t          *testing.T
	mu         sync.Mutex
	entries    []log.Entry
	next       log.StackableLogger
	FatalCount int
}

var _ log.StackableLogger = (*TstLog)(nil)

// NewTestLog pushes a recording sink onto the log stack and removes it when
// the test ends.
func NewTestLog(t *testing.T) *TstLog {
	tl := &TstLog{t: t}
	if err := log.AddLogger(tl, false); err != nil {
		t.Fatal(err)
	}
	log.SetFatalAction(log.FailAction{Terminator: func() {}})
	t.Cleanup(func() {
		log.SetFatalAction(log.DefaultFatal)
		log.RemoveLogger(Ident)
	})
	return tl
}

func (tl *TstLog) AddEntry(e log.Entry) {
	tl.mu.Lock()
	tl.entries = append(tl.entries, e)
	if e.Flags&flags.Fatal != 0 {
		tl.FatalCount++
	}
	tl.mu.Unlock()
	tl.t.Log(e.String())
	if tl.next != nil {
		tl.next.AddEntry(e)
	}
}

func (tl *TstLog) ForwardTo(sl log.StackableLogger) {
	if tl.next == nil || sl == nil {
		tl.next = sl
	} else {
		panic("next already set")
	}
}

func (tl *TstLog) Ident() string             { return Ident }
func (tl *TstLog) Next() log.StackableLogger { return tl.next }
func (tl *TstLog) Finalize()                 {}

// Entries returns a copy of everything recorded so far.
func (tl *TstLog) Entries() []log.Entry {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return append([]log.Entry(nil), tl.entries...)
}

// Contains reports whether any rendered entry contains the substring.
func (tl *TstLog) Contains(substr string) bool {
	for _, e := range tl.Entries() {
		if strings.Contains(e.String(), substr) {
			return true
		}
	}
	return false
}
