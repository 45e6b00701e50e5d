// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"github.com/packetlss/amonra-bootable-recovery/pkg/log"
)

// UI is what the orchestrator needs from a front end. Menu rendering and key
// input live behind an implementation of this; the core never draws anything.
type UI interface {
	Print(f string, va ...interface{})
	ShowError(msg string)
	// WaitForOperator blocks after a failure until the operator acknowledges,
	// so a failed session is never hidden behind a silent reboot.
	WaitForOperator()
}

// LogUI is the headless default: messages go to the log, operator waits
// return immediately.
type LogUI struct{}

var _ UI = LogUI{}

func (LogUI) Print(f string, va ...interface{}) { log.Msgf(f, va...) }
func (LogUI) ShowError(msg string)              { log.Msgf("E:%s", msg) }
func (LogUI) WaitForOperator()                  { log.Logf("no operator console, continuing") }
