// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"io"

	"github.com/packetlss/amonra-bootable-recovery/pkg/bcb"
	"github.com/packetlss/amonra-bootable-recovery/pkg/flash"
	"github.com/packetlss/amonra-bootable-recovery/pkg/hw/power"
	"github.com/packetlss/amonra-bootable-recovery/pkg/log"
	"github.com/packetlss/amonra-bootable-recovery/pkg/recovery/firmware"
	"github.com/packetlss/amonra-bootable-recovery/pkg/roots"

	"github.com/spf13/pflag"
)

// Options configure a recovery run.
type Options struct {
	Store   bcb.Store
	Table   *roots.Table
	Actions Actions
	UI      UI
	TmpLog  string

	// CacheRaw overrides discovery of the raw cache partition used for
	// firmware handoff. Nil means look it up in the mtd table.
	CacheRaw flash.Partition

	// NoReboot suppresses the final reboot. Test-only override.
	NoReboot bool
}

// Run executes one recovery session and returns its outcome. Every path
// converges on finish-then-reboot: leaving the boot record armed without ever
// clearing it would boot-loop the device into recovery forever.
func Run(raw []string, o Options) Outcome {
	if o.UI == nil {
		o.UI = LogUI{}
	}
	s := NewSession(o.Store, o.Table, o.TmpLog)
	log.Msgf("Starting recovery (session %s)", s.ID)

	resolved := ResolveArgs(raw, o.Store, o.Table)
	log.Logf("command: %q", resolved)

	fs := pflag.NewFlagSet("recovery", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	sendIntent := fs.String("send_intent", "", "text to relay to the main system")
	updatePackage := fs.String("update_package", "", "root:path of a package to install")
	wipeData := fs.Bool("wipe_data", false, "erase user data (and cache)")
	wipeCache := fs.Bool("wipe_cache", false, "erase cache (but not user data)")
	noReboot := fs.Bool("no_reboot", false, "skip the final reboot (test override)")
	if err := fs.Parse(resolved[1:]); err != nil {
		log.Logf("parsing command: %s", err)
	}
	if rest := fs.Args(); len(rest) > 0 {
		log.Logf("ignoring unrecognized arguments %q", rest)
	}
	o.NoReboot = o.NoReboot || *noReboot

	out := execute(o, *updatePackage, *wipeData, *wipeCache)
	log.Msgf("%s", out)

	if out == InstallOK {
		if upd, ok := firmware.CheckStaged(o.Table); ok {
			if handoff(o, s, upd, *sendIntent) {
				return InstallOK
			}
			out = InstallFailed
		}
	}

	if out.Failed() {
		o.UI.ShowError(out.String())
		o.UI.WaitForOperator()
	}

	s.Finish(*sendIntent)
	o.Table.UnmountAll()
	if !o.NoReboot {
		o.UI.Print("Rebooting...")
		power.RebootSuccess()
	}
	return out
}

func execute(o Options, pkg string, wipeData, wipeCache bool) Outcome {
	switch {
	case pkg != "":
		if err := o.Table.EnsureMounted(pkg); err != nil {
			log.Logf("mounting %s: %s", pkg, err)
			return InstallFailed
		}
		path, err := o.Table.Resolve(pkg)
		if err != nil {
			log.Logf("bad package path: %s", err)
			return InstallFailed
		}
		o.UI.Print("Installing update...")
		if err := o.Actions.Install(path); err != nil {
			log.Logf("install: %s", err)
			o.UI.Print("Installation aborted.")
			return InstallFailed
		}
		return InstallOK
	case wipeData, wipeCache:
		// a data wipe takes cache with it, so stale caches never survive a
		// factory reset
		out := WipeOK
		if wipeData {
			if err := o.Actions.WipeData(); err != nil {
				log.Logf("wiping data: %s", err)
				out = WipeFailed
			}
		}
		if err := o.Actions.WipeCache(); err != nil {
			log.Logf("wiping cache: %s", err)
			out = WipeFailed
		}
		if out == WipeFailed {
			o.UI.Print("Data wipe failed.")
		}
		return out
	}
	return NoCommand
}

// handoff runs the firmware chain and reboots. The session relays the intent
// and log first, since this path never reaches Finish - the armed record must
// survive the reboot for the boot loader to act on it.
func handoff(o Options, s *Session, upd firmware.Update, intent string) bool {
	p := o.CacheRaw
	if p == nil {
		var err error
		if p, err = firmware.CachePartition(o.Table); err != nil {
			log.Logf("no cache partition for firmware: %s", err)
			return false
		}
	}
	o.UI.Print("Rebooting to complete installation.")
	s.Relay(intent)
	if err := firmware.Install(upd, o.Store, p, o.Table); err != nil {
		log.Logf("firmware handoff: %s", err)
		return false
	}
	o.Table.UnmountAll()
	if !o.NoReboot {
		power.RebootSuccess()
	}
	return true
}
