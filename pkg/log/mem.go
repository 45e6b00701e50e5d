// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

// The default sink, storing entries in memory without displaying them in any
// way. See AddConsoleLog, AddFileLog.
type memLog struct {
	stored []Entry
	next   StackableLogger
}

var _ StackableLogger = (*memLog)(nil)

// AddMemLog adds a memLog to the stack; unlikely to need calling since a
// memLog is the initial stack.
func AddMemLog() error { return AddLogger(&memLog{}, false) }

func (ml *memLog) AddEntry(e Entry) {
	ml.stored = append(ml.stored, e)
	if ml.next != nil {
		ml.next.AddEntry(e)
	}
}

func (ml *memLog) ForwardTo(sl StackableLogger) {
	if ml.next == nil || sl == nil {
		ml.next = sl
	} else {
		panic("next already set")
	}
}

const MemLogIdent = "memLog"

func (ml *memLog) Ident() string         { return MemLogIdent }
func (ml *memLog) Next() StackableLogger { return ml.next }

func (ml *memLog) Finalize() {
	ml.stored = nil
	if ml.next != nil {
		ml.next.Finalize()
	}
}

//not part of StackableLogger
func (ml *memLog) entries() []Entry { return ml.stored }

// StoredEntries retrieves all entries logged so far. Requires a memLog in the
// stack. Mostly useful in tests.
func StoredEntries() []Entry {
	ml := FindInStack(MemLogIdent)
	if ml == nil {
		return nil
	}
	return ml.(*memLog).entries()
}

// FlushMemLog removes the memLog from the stack. Used once other sinks have
// been added, to stop accumulation of entries in memory.
func FlushMemLog() { RemoveLogger(MemLogIdent) }
