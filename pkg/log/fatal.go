// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"os"
	"strings"

	"github.com/packetlss/amonra-bootable-recovery/pkg/log/flags"
)

// FatalFunc is called after a fatal event has been logged. This could reboot,
// power off, exit, etc.
type FatalFunc func()
type PreFunc func(f string, va ...interface{})

// FailAction describes what happens when log.Fatalf() is called. The event
// itself is logged automatically.
type FailAction struct {
	// Prefix to add to message
	MsgPfx string
	// Pre runs before log.Finalize() - i.e. the log is still writable.
	Pre PreFunc
	// Terminator exits - reboot, shutdown, exit process. Logs are no longer
	// writable when this is called.
	Terminator FatalFunc
}

var fatalAction = DefaultFatal

// SetFatalAction sets up the action taken when a fatal event is logged.
func SetFatalAction(act FailAction) { fatalAction = act }

// DefaultFatal calls os.Exit(1).
var DefaultFatal = FailAction{Terminator: DefaultFatalAction}

func DefaultFatalAction() {
	if strings.HasSuffix(os.Args[0], "test") {
		panic("generic fatal called from test")
	}
	os.Exit(1)
}

// Fatalf is like Msgf or Logf, but does not return - the process will be
// terminated. Behavior modified by SetFatalAction().
func Fatalf(f string, va ...interface{}) {
	if h := stackHead(); h.Ident() == MemLogIdent && h.Next() == nil {
		//save some headscratching if no log sink is configured for the process
		AddConsoleLog(0)
		Log("Fatalf: logging unconfigured")
	}
	FlaggedLogf(flags.Fatal, fatalAction.MsgPfx+f, va...)
	if fatalAction.Pre != nil {
		fatalAction.Pre(fatalAction.MsgPfx+f, va...)
	}
	Finalize()
	fatalAction.Terminator()
}
