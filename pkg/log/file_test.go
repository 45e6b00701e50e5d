// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log_test

import (
	"os"
	"testing"
	"time"

	"github.com/packetlss/amonra-bootable-recovery/pkg/log"
	"github.com/packetlss/amonra-bootable-recovery/pkg/log/flags"
)

func TestFileLog(t *testing.T) {
	log.DefaultLogStack()
	defer log.DefaultLogStack() //cleanup when test is done
	T, err := time.Parse("2006", "1999")
	if err != nil {
		t.Fatal(err)
	}
	e := log.Entry{
		Time:  T,
		Msg:   "interesting event",
		Flags: flags.EndUser,
	}
	stack := log.Stack()
	stack.AddEntry(e)
	//add another event, this time one that should not make it into the file
	e.Time = T.Add(time.Minute)
	e.Msg = "sensitive event"
	e.Flags = flags.EndUser | flags.NotFile
	stack.AddEntry(e)
	if len(log.StoredEntries()) != 2 {
		t.Error("wrong entries", log.StoredEntries())
	}

	tmp := t.TempDir()
	log.SetPrefix("gotest")
	fn, err := log.AddFileLog(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if fn != log.FileLogName() {
		t.Errorf("name mismatch: %s vs %s", fn, log.FileLogName())
	}
	log.Finalize()
	want := "-- 19990101_0000 -- interesting event\n"
	buf, err := os.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != want {
		t.Errorf("file:\nwant %q\ngot  %q", want, string(buf))
	}
}

func TestFileLogAppends(t *testing.T) {
	log.DefaultLogStack()
	defer log.DefaultLogStack()
	fname := t.TempDir() + "/proc.log"
	if err := os.WriteFile(fname, []byte("earlier run\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := log.AddNamedFileLog(fname); err != nil {
		t.Fatal(err)
	}
	log.Log("this run")
	log.Finalize()
	buf, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:12]) != "earlier run\n" {
		t.Errorf("earlier content clobbered: %q", buf)
	}
}
