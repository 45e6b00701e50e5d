// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"io"
	"os"

	"github.com/packetlss/amonra-bootable-recovery/pkg/bcb"
	"github.com/packetlss/amonra-bootable-recovery/pkg/hw/power"
	"github.com/packetlss/amonra-bootable-recovery/pkg/log"
	"github.com/packetlss/amonra-bootable-recovery/pkg/roots"

	"github.com/google/uuid"
)

// Cache-partition paths shared with the main system.
const (
	CommandFile = "CACHE:recovery/command"
	IntentFile  = "CACHE:recovery/intent"
	LogFile     = "CACHE:recovery/log"

	// DefaultTmpLog is where the running process accumulates its own log;
	// Finish relays the unread tail to LogFile.
	DefaultTmpLog = "/tmp/recovery.log"
)

// Session carries the mutable per-run state: which store holds the boot
// record, how much of the temp log has been relayed so far, and a unique id
// tying log lines from this run together.
type Session struct {
	Store  bcb.Store
	Table  *roots.Table
	TmpLog string
	ID     uuid.UUID

	logOffset int64
}

func NewSession(st bcb.Store, t *roots.Table, tmpLog string) *Session {
	if tmpLog == "" {
		tmpLog = DefaultTmpLog
	}
	return &Session{Store: st, Table: t, TmpLog: tmpLog, ID: uuid.New()}
}

// Finish ends the armed window: relay results upstream, zero the boot record,
// remove the one-shot command file, sync. Idempotent - a second call appends
// no duplicate log lines and leaves the same end state. Each step is
// best-effort; in particular the record reset proceeds even if the relay
// failed, because an un-clearable record boot-loops the device forever.
func (s *Session) Finish(intent string) {
	s.Relay(intent)
	if err := s.Store.Write(bcb.Record{}); err != nil {
		log.Logf("clearing boot record: %s", err)
	}
	if err := s.Table.Remove(CommandFile); err != nil {
		log.Logf("removing %s: %s", CommandFile, err)
	}
	power.Sync()
}

// Relay writes the intent file and appends the unread temp-log tail to the
// persistent log, without touching the boot record. Used on its own before a
// firmware-chain reboot, where the armed record must survive.
func (s *Session) Relay(intent string) {
	if intent != "" {
		if err := s.writeIntent(intent); err != nil {
			log.Logf("writing %s: %s", IntentFile, err)
		}
	}
	s.copyLogTail()
}

func (s *Session) writeIntent(intent string) error {
	f, err := s.Table.Create(IntentFile)
	if err != nil {
		return err
	}
	if _, err = f.WriteString(intent); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// copyLogTail appends everything past the last relayed offset. The offset
// only ever advances, so repeated calls never duplicate lines.
func (s *Session) copyLogTail() {
	src, err := os.Open(s.TmpLog)
	if err != nil {
		log.Logf("no temp log to relay: %s", err)
		return
	}
	defer src.Close()
	if _, err = src.Seek(s.logOffset, io.SeekStart); err != nil {
		log.Logf("seeking %s: %s", s.TmpLog, err)
		return
	}
	dst, err := s.Table.Append(LogFile)
	if err != nil {
		log.Logf("opening %s: %s", LogFile, err)
		return
	}
	defer dst.Close()
	n, err := io.Copy(dst, src)
	s.logOffset += n
	if err != nil {
		log.Logf("relaying log: %s", err)
	}
}
