// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// The recovery-mode entry point. Everything interesting happens in
// pkg/recovery; this wires the device config, the boot record store, and the
// log stack together and hands control over.
package main

import (
	"os"

	"github.com/packetlss/amonra-bootable-recovery/pkg/bcb"
	"github.com/packetlss/amonra-bootable-recovery/pkg/hw/power"
	"github.com/packetlss/amonra-bootable-recovery/pkg/log"
	"github.com/packetlss/amonra-bootable-recovery/pkg/recovery"
	"github.com/packetlss/amonra-bootable-recovery/pkg/roots"

	"golang.org/x/sys/unix"
)

func main() {
	cfg, err := recovery.LoadConfig(recovery.DefaultConfigPath)
	if err != nil {
		cfg = recovery.DefaultConfig()
	}
	redirect(cfg.TmpLog)
	if _, lerr := log.AddNamedFileLog(cfg.TmpLog); lerr != nil {
		log.Logf("no file log: %s", lerr)
	}
	if err != nil {
		log.Logf("config: %s, using defaults", err)
	}
	// a fatal anywhere below must still end in a reboot, never a hung device
	log.SetFatalAction(log.FailAction{Terminator: power.FailReboot})

	table := roots.New(cfg.Roots)
	table.SetMounter(roots.UrootMounter{})

	out := recovery.Run(os.Args, recovery.Options{
		Store:   &bcb.FileStore{Path: cfg.Misc.Path, Offset: cfg.Misc.Offset},
		Table:   table,
		Actions: recovery.NewExecActions(cfg.Commands),
		TmpLog:  cfg.TmpLog,
	})
	// only reachable when the reboot was skipped (not pid 1)
	log.Logf("exiting, outcome: %s", out)
}

// redirect points this process's stdout/stderr - and those of the action
// commands it spawns - at the temp log, so everything ends up in the one file
// the finisher relays to cache.
func redirect(path string) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	unix.Dup3(int(f.Fd()), 1, 0)
	unix.Dup3(int(f.Fd()), 2, 0)
}
