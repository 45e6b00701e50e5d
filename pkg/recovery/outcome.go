// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

// Outcome is the result of one recovery session.
type Outcome int

const (
	// NoCommand means resolution yielded nothing actionable. Treated like a
	// failure so a confused device waits for an operator instead of
	// boot-looping through silent reboots.
	NoCommand Outcome = iota
	InstallOK
	InstallFailed
	WipeOK
	WipeFailed
)

func (o Outcome) String() string {
	switch o {
	case NoCommand:
		return "no command"
	case InstallOK:
		return "update installed"
	case InstallFailed:
		return "update failed"
	case WipeOK:
		return "wipe completed"
	case WipeFailed:
		return "wipe failed"
	}
	return "unknown outcome"
}

// Failed reports whether the session should wait for operator acknowledgment
// rather than reboot silently.
func (o Outcome) Failed() bool {
	return o == NoCommand || o == InstallFailed || o == WipeFailed
}
