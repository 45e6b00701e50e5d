// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package bcb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandString(t *testing.T) {
	var r Record
	assert.Equal(t, "", r.CommandString())
	assert.False(t, r.InProgress())

	r.SetCommand(BootRecovery)
	assert.Equal(t, BootRecovery, r.CommandString())
	assert.True(t, r.InProgress())

	//a field of erased flash reads as empty
	for i := range r.Command {
		r.Command[i] = 0xff
	}
	assert.Equal(t, "", r.CommandString())
}

func TestIsZero(t *testing.T) {
	var r Record
	assert.True(t, r.IsZero())
	r.SetCommand(BootRecovery)
	assert.False(t, r.IsZero())
	//must be callable on an unaddressable value, e.g. a Store.Read() result
	assert.True(t, Record{}.IsZero())
	assert.False(t, Armed(nil).IsZero())
}

func TestSetCommandTruncates(t *testing.T) {
	var r Record
	r.SetCommand(strings.Repeat("x", 100))
	got := r.CommandString()
	assert.Len(t, got, CommandSize-1)
	assert.Zero(t, r.Command[CommandSize-1], "field must stay NUL terminated")
}

func TestRecoveryArgs(t *testing.T) {
	var r Record
	copy(r.Recovery[:], "recovery\n--wipe_cache\n")
	args, ok := r.RecoveryArgs()
	require.True(t, ok)
	assert.Equal(t, []string{"--wipe_cache"}, args)

	//unterminated final line still parses
	r = Record{}
	copy(r.Recovery[:], "recovery\n--wipe_data")
	args, ok = r.RecoveryArgs()
	require.True(t, ok)
	assert.Equal(t, []string{"--wipe_data"}, args)

	//wrong marker
	r = Record{}
	copy(r.Recovery[:], "not-recovery\n--wipe_data\n")
	_, ok = r.RecoveryArgs()
	assert.False(t, ok)
	assert.Equal(t, "not-recovery", r.RecoveryFirstLine())
	assert.False(t, r.RecoveryCorrupt())

	//erased flash
	r = Record{}
	for i := range r.Recovery {
		r.Recovery[i] = 0xff
	}
	_, ok = r.RecoveryArgs()
	assert.False(t, ok)
	assert.True(t, r.RecoveryCorrupt())
	assert.Equal(t, "", r.RecoveryFirstLine())
}

func TestRecoveryArgsBounded(t *testing.T) {
	var lines []string
	lines = append(lines, Marker)
	for i := 0; i < 50; i++ {
		lines = append(lines, "--opt")
	}
	var r Record
	copy(r.Recovery[:], strings.Join(lines, "\n"))
	args, ok := r.RecoveryArgs()
	require.True(t, ok)
	assert.Equal(t, 50, len(args))
}

func TestSetRecoveryArgsRoundtrip(t *testing.T) {
	r := Armed([]string{"--update_package=CACHE:ota.zip", "--send_intent=done"})
	require.True(t, r.InProgress())
	args, ok := r.RecoveryArgs()
	require.True(t, ok)
	assert.Equal(t, []string{"--update_package=CACHE:ota.zip", "--send_intent=done"}, args)
}

func TestSetRecoveryArgsTruncates(t *testing.T) {
	huge := strings.Repeat("a", 2*RecoverySize)
	var r Record
	r.SetRecoveryArgs([]string{huge})
	assert.Zero(t, r.Recovery[RecoverySize-1])
	//parses to a (truncated) single arg, not garbage
	args, ok := r.RecoveryArgs()
	require.True(t, ok)
	require.Len(t, args, 1)
	assert.True(t, strings.HasPrefix(huge, args[0]))
}

func TestMarshalRoundtrip(t *testing.T) {
	r := Armed([]string{"--wipe_data"})
	copy(r.Status[:], "status-from-bootloader")
	buf := r.marshal()
	require.Len(t, buf, RecordSize)
	got := unmarshal(buf)
	assert.Equal(t, r, got)
}
