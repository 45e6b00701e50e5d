// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"bufio"
	"strings"

	"github.com/packetlss/amonra-bootable-recovery/pkg/bcb"
	"github.com/packetlss/amonra-bootable-recovery/pkg/log"
	"github.com/packetlss/amonra-bootable-recovery/pkg/roots"
)

// ResolveArgs produces the definitive argument list for this run, first
// element the program identifier. Precedence: argv, then the boot record's
// recovery blob, then the one-shot command file. Whatever the source, the
// resolved list is re-serialized into the boot record with the in-progress
// command before returning, so a crash during the action resumes the same
// action instead of re-reading a possibly-mutated command file.
func ResolveArgs(raw []string, st bcb.Store, t *roots.Table) []string {
	prog := "recovery"
	if len(raw) > 0 {
		prog = raw[0]
	}

	// the record is read even when argv decides the action: the status field
	// is the boot loader's report and must survive the re-arm below
	rec := st.Read()
	if c := rec.CommandString(); c != "" {
		log.Logf("boot command: %s", c)
	}
	if s := rec.StatusString(); s != "" {
		log.Logf("boot status: %s", s)
	}

	if len(raw) > 1 {
		log.Logf("got arguments from argv")
		arm(st, rec, raw[1:])
		return raw
	}

	args, ok := rec.RecoveryArgs()
	if ok && len(args) > 0 {
		log.Logf("got arguments from boot record")
		arm(st, rec, args)
		return append([]string{prog}, args...)
	}
	if !ok {
		if first := rec.RecoveryFirstLine(); first != "" && !rec.RecoveryCorrupt() {
			// not ours and not erased flash - worth reporting, but the
			// command file below may still hold a usable request
			log.Logf("bad boot record: unrecognized first line %q", first)
		}
	}

	args = readCommandFile(t)
	if len(args) > 0 {
		log.Logf("got arguments from %s", CommandFile)
	}
	arm(st, rec, args)
	return append([]string{prog}, args...)
}

// arm persists the resolved arguments, keeping the boot loader's status field
// intact. A write failure is logged, never fatal: losing crash-resume is
// better than never running the action.
func arm(st bcb.Store, prev bcb.Record, args []string) {
	r := bcb.Armed(args)
	r.Status = prev.Status
	if err := st.Write(r); err != nil {
		log.Logf("arming boot record: %s", err)
	}
}

// readCommandFile reads the one-shot command file, one argument per line.
// A missing or unmountable file just means no command.
func readCommandFile(t *roots.Table) (args []string) {
	f, err := t.Open(CommandFile)
	if err != nil {
		log.Logf("no command file: %s", err)
		return nil
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, bcb.MaxArgLen), bcb.MaxArgLen)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		args = append(args, line)
		if len(args) == bcb.MaxArgs-1 {
			break
		}
	}
	if err := sc.Err(); err != nil {
		log.Logf("reading %s: %s", CommandFile, err)
	}
	return args
}
