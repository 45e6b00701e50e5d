// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery_test

import (
	"os"
	fp "path/filepath"
	"testing"

	"github.com/packetlss/amonra-bootable-recovery/pkg/bcb"
	"github.com/packetlss/amonra-bootable-recovery/pkg/log/testlog"
	"github.com/packetlss/amonra-bootable-recovery/pkg/recovery"
	"github.com/packetlss/amonra-bootable-recovery/pkg/roots"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cacheTable points the CACHE root at a temp dir; no mounter, nothing mounts.
func cacheTable(t *testing.T) (*roots.Table, string) {
	t.Helper()
	dir := t.TempDir()
	return roots.New(map[string]roots.Root{"CACHE": {Mountpoint: dir}}), dir
}

func tmpStore(t *testing.T) *bcb.FileStore {
	t.Helper()
	return &bcb.FileStore{Path: fp.Join(t.TempDir(), "misc")}
}

func writeCommandFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(fp.Join(dir, "recovery"), 0755))
	require.NoError(t, os.WriteFile(fp.Join(dir, "recovery", "command"), []byte(content), 0644))
}

func TestResolvePrecedence(t *testing.T) {
	for _, tc := range []struct {
		name    string
		raw     []string
		record  []string // nil = no record
		cmdFile string   // "" = no file
		want    []string
	}{
		{
			name:    "argv beats record and file",
			raw:     []string{"recovery", "--wipe_data"},
			record:  []string{"--update_package=CACHE:a.zip"},
			cmdFile: "--wipe_cache\n",
			want:    []string{"recovery", "--wipe_data"},
		},
		{
			name:    "record beats file",
			raw:     []string{"recovery"},
			record:  []string{"--update_package=CACHE:a.zip"},
			cmdFile: "--wipe_cache\n",
			want:    []string{"recovery", "--update_package=CACHE:a.zip"},
		},
		{
			name:    "file when nothing else",
			raw:     []string{"recovery"},
			cmdFile: "--wipe_cache\n",
			want:    []string{"recovery", "--wipe_cache"},
		},
		{
			name: "no command",
			raw:  []string{"recovery"},
			want: []string{"recovery"},
		},
		{
			name:    "crlf line endings tolerated",
			raw:     []string{"recovery"},
			cmdFile: "--wipe_data\r\n--send_intent=done\r\n",
			want:    []string{"recovery", "--wipe_data", "--send_intent=done"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			table, dir := cacheTable(t)
			st := tmpStore(t)
			if tc.record != nil {
				require.NoError(t, st.Write(bcb.Armed(tc.record)))
			}
			if tc.cmdFile != "" {
				writeCommandFile(t, dir, tc.cmdFile)
			}
			got := recovery.ResolveArgs(tc.raw, st, table)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveArms(t *testing.T) {
	table, dir := cacheTable(t)
	st := tmpStore(t)
	writeCommandFile(t, dir, "--wipe_data\n")

	got := recovery.ResolveArgs([]string{"recovery"}, st, table)
	require.Equal(t, []string{"recovery", "--wipe_data"}, got)

	// the arm must be observable through a fresh read
	rec := st.Read()
	assert.True(t, rec.InProgress())
	args, ok := rec.RecoveryArgs()
	require.True(t, ok)
	assert.Equal(t, []string{"--wipe_data"}, args)
}

func TestResolvePreservesStatus(t *testing.T) {
	tl := testlog.NewTestLog(t)
	table, _ := cacheTable(t)
	st := tmpStore(t)
	var rec bcb.Record
	copy(rec.Status[:], "firmware-ok")
	require.NoError(t, st.Write(rec))

	// argv decides the action, but the record is still read and its status
	// field survives the re-arm
	got := recovery.ResolveArgs([]string{"recovery", "--wipe_cache"}, st, table)
	require.Equal(t, []string{"recovery", "--wipe_cache"}, got)
	assert.True(t, tl.Contains("boot status: firmware-ok"))

	armed := st.Read()
	assert.True(t, armed.InProgress())
	assert.Equal(t, "firmware-ok", armed.StatusString())
	args, ok := armed.RecoveryArgs()
	require.True(t, ok)
	assert.Equal(t, []string{"--wipe_cache"}, args)
}

func TestCrashResume(t *testing.T) {
	table, dir := cacheTable(t)
	st := tmpStore(t)
	writeCommandFile(t, dir, "--wipe_data\n")

	first := recovery.ResolveArgs([]string{"recovery"}, st, table)

	// the process dies before the wipe finishes; the main system may have
	// rewritten or removed the command file by the time recovery reruns
	writeCommandFile(t, dir, "--wipe_cache\n")

	second := recovery.ResolveArgs([]string{"recovery"}, st, table)
	assert.Equal(t, first, second, "rerun must resume the armed action")
}

func TestResolveBadMarkerFallsThrough(t *testing.T) {
	tl := testlog.NewTestLog(t)
	table, dir := cacheTable(t)
	st := tmpStore(t)
	var rec bcb.Record
	rec.SetCommand(bcb.BootRecovery)
	copy(rec.Recovery[:], "not-a-marker\n--wipe_data\n")
	require.NoError(t, st.Write(rec))
	writeCommandFile(t, dir, "--wipe_cache\n")

	got := recovery.ResolveArgs([]string{"recovery"}, st, table)
	assert.Equal(t, []string{"recovery", "--wipe_cache"}, got)
	assert.True(t, tl.Contains("bad boot record"), "integrity warning expected")
}

func TestResolveErasedRecordFallsThrough(t *testing.T) {
	tl := testlog.NewTestLog(t)
	table, dir := cacheTable(t)
	st := tmpStore(t)
	var rec bcb.Record
	for i := range rec.Recovery {
		rec.Recovery[i] = 0xff
	}
	require.NoError(t, st.Write(rec))
	writeCommandFile(t, dir, "--wipe_cache\n")

	got := recovery.ResolveArgs([]string{"recovery"}, st, table)
	assert.Equal(t, []string{"recovery", "--wipe_cache"}, got)
	assert.False(t, tl.Contains("bad boot record"), "erased flash is not an integrity warning")
}

func TestResolveBoundedArgs(t *testing.T) {
	table, dir := cacheTable(t)
	st := tmpStore(t)
	var content string
	for i := 0; i < bcb.MaxArgs+50; i++ {
		content += "--arg\n"
	}
	writeCommandFile(t, dir, content)

	got := recovery.ResolveArgs([]string{"recovery"}, st, table)
	assert.Len(t, got, bcb.MaxArgs)
}
