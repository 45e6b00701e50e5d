// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package log is a stackable logging mechanism allowing multiple sinks,
// outputting to one or more of: the console, a file, memory.
//
// By default, events are retained in memory so they can be re-played into
// new sinks if/when they are added later on.
package log

import (
	"fmt"
	"os"

	"github.com/packetlss/amonra-bootable-recovery/pkg/log/flags"
)

var logPrefix string

// SetPrefix sets the log prefix, used in the file name chosen by AddFileLog.
// Must be set before calling AddFileLog.
func SetPrefix(pfx string) { logPrefix = pfx }

// GetPrefix gets the log prefix.
func GetPrefix() string { return logPrefix }

// Msgf is for use with messages suitable for display to the user. Short,
// non-technical.
func Msgf(f string, va ...interface{}) { FlaggedLogf(flags.EndUser, f, va...) }

// See Msgf
func Msgln(va ...interface{}) { Msgf(fmt.Sprintln(va...)) }

// See Msgf
func Msg(message string) { Msgf(message) }

// Logf is for use with more technical, or more trivial, messages.
func Logf(f string, va ...interface{}) { FlaggedLogf(flags.NA, f, va...) }

// See Logf
func Logln(va ...interface{}) { Logf(fmt.Sprintln(va...)) }

// See Logf
func Log(message string) { Logf(message) }

// DumpStderr writes all content of a MemLog in the stack to stderr. No-op if
// there is none.
func DumpStderr() {
	l := FindInStack(MemLogIdent)
	if l != nil {
		for _, e := range l.(*memLog).entries() {
			fmt.Fprintln(os.Stderr, e.String())
		}
	}
}
