// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package bcb reads and writes the bootloader control block, the fixed-layout
// record shared with the boot loader. The record is the only state that
// survives an uncontrolled reboot: while a destructive action is in flight,
// command holds "boot-recovery" and the recovery blob encodes the argument
// list needed to resume that action. The record is zeroed only once the
// action's effects are fully committed.
package bcb

import (
	"bytes"
	"strings"
)

const (
	CommandSize  = 32
	StatusSize   = 32
	RecoverySize = 1024

	// RecordSize is the size of the whole record as stored.
	RecordSize = CommandSize + StatusSize + RecoverySize

	// BootRecovery in the command field means recovery is in progress.
	BootRecovery = "boot-recovery"
	// Marker is the first line of a well-formed recovery blob.
	Marker = "recovery"

	// Flash reads as all-ones where never written.
	corrupt = 0xff

	// Bounds on the encoded argument list.
	MaxArgs   = 100
	MaxArgLen = 4096
)

// Record is the bootloader control block. command is written by the main
// system or this tool; status is written by the boot loader and never
// interpreted here; recovery holds the marker line followed by one argument
// per line.
type Record struct {
	Command  [CommandSize]byte
	Status   [StatusSize]byte
	Recovery [RecoverySize]byte
}

func (r Record) IsZero() bool {
	return r == Record{}
}

// fixedString interprets a NUL-padded field. A field starting with 0xff has
// never been written and reads as empty.
func fixedString(b []byte) string {
	if len(b) == 0 || b[0] == corrupt {
		return ""
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func (r *Record) CommandString() string { return fixedString(r.Command[:]) }
func (r *Record) StatusString() string  { return fixedString(r.Status[:]) }

func (r *Record) SetCommand(s string) {
	r.Command = [CommandSize]byte{}
	copy(r.Command[:CommandSize-1], s)
}

// InProgress reports whether the record marks a recovery action in flight.
func (r *Record) InProgress() bool { return r.CommandString() == BootRecovery }

// RecoveryCorrupt reports whether the recovery blob reads as erased flash.
func (r *Record) RecoveryCorrupt() bool { return r.Recovery[0] == corrupt }

// RecoveryFirstLine returns the first line of the recovery blob, without
// interpreting it.
func (r *Record) RecoveryFirstLine() string {
	s := fixedString(r.Recovery[:])
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

// RecoveryArgs parses the recovery blob. ok is true only if the first line is
// the marker; args then holds the subsequent lines, at most MaxArgs-1 of
// them. The trailing NUL padding and a possible unterminated final line are
// tolerated.
func (r *Record) RecoveryArgs() (args []string, ok bool) {
	s := fixedString(r.Recovery[:])
	lines := strings.Split(s, "\n")
	if len(lines) == 0 || lines[0] != Marker {
		return nil, false
	}
	for _, l := range lines[1:] {
		if l == "" {
			continue
		}
		args = append(args, l)
		if len(args) == MaxArgs-1 {
			break
		}
	}
	return args, true
}

// SetRecoveryArgs encodes the marker line plus one argument per line,
// truncating at field capacity the way strlcat would. Truncation is not an
// error: an oversize argument list degrades to a shorter one rather than
// corrupting the record.
func (r *Record) SetRecoveryArgs(args []string) {
	var b strings.Builder
	b.WriteString(Marker)
	b.WriteByte('\n')
	for _, a := range args {
		b.WriteString(a)
		b.WriteByte('\n')
	}
	s := b.String()
	if len(s) > RecoverySize-1 {
		s = s[:RecoverySize-1]
	}
	r.Recovery = [RecoverySize]byte{}
	copy(r.Recovery[:], s)
}

// Armed builds a record that will resume the given argument list on the next
// boot. args excludes the program name.
func Armed(args []string) Record {
	var r Record
	r.SetCommand(BootRecovery)
	r.SetRecoveryArgs(args)
	return r
}

func (r *Record) marshal() []byte {
	buf := make([]byte, 0, RecordSize)
	buf = append(buf, r.Command[:]...)
	buf = append(buf, r.Status[:]...)
	buf = append(buf, r.Recovery[:]...)
	return buf
}

func unmarshal(buf []byte) (r Record) {
	copy(r.Command[:], buf)
	copy(r.Status[:], buf[CommandSize:])
	copy(r.Recovery[:], buf[CommandSize+StatusSize:])
	return
}
