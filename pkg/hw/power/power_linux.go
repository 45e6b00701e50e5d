// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package power handles reboot-related functionality.
package power

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/packetlss/amonra-bootable-recovery/pkg/log"

	"golang.org/x/sys/unix"
)

//Reboot after a failure.
func FailReboot() {
	Reboot(false)
}

//Reboot after the current run finished cleanly.
func RebootSuccess() {
	Reboot(true)
}

//Not for general use - prefer FailReboot() or RebootSuccess()
func Reboot(success bool) {
	/* this func can be called from a defer statement; deferred functions
	   will execute even if panic() was called. exiting or rebooting will
	   mask any such panic, so check for it and log it
	*/
	x := recover()
	if x != nil {
		log.Logf("panic() caught in reboot(success=%t)", success)
		log.Msgf("internal error: %s", x)
		stars := "***********************************************************"
		log.Logf("%s\nstack trace:\n%s\n%s", stars, debug.Stack(), stars)
	}

	log.Finalize()
	Sync()
	if os.Getpid() != 1 {
		fmt.Fprintf(os.Stderr, "pid 1 would reboot here")
		os.Exit(0)
	}
	time.Sleep(2 * time.Second)
	err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART)
	if err != nil {
		fmt.Printf("%s", err)
	}
}

//Sync flushes filesystem caches to stable storage.
func Sync() {
	unix.Sync()
}
