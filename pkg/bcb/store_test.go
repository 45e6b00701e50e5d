// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package bcb

import (
	"os"
	fp "path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundtrip(t *testing.T) {
	st := &FileStore{Path: fp.Join(t.TempDir(), "misc")}
	r := Armed([]string{"--wipe_cache"})
	require.NoError(t, st.Write(r))
	got := st.Read()
	assert.Equal(t, r, got)

	require.NoError(t, st.Write(Record{}))
	assert.True(t, st.Read().IsZero())
}

func TestFileStoreReadFailsSoft(t *testing.T) {
	//missing file
	st := &FileStore{Path: fp.Join(t.TempDir(), "nonexistent")}
	assert.True(t, st.Read().IsZero())

	//short file
	short := fp.Join(t.TempDir(), "misc")
	require.NoError(t, os.WriteFile(short, []byte("too short"), 0600))
	st = &FileStore{Path: short}
	assert.True(t, st.Read().IsZero())
}

func TestFileStoreOffset(t *testing.T) {
	path := fp.Join(t.TempDir(), "misc")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096+RecordSize), 0600))
	st := &FileStore{Path: path, Offset: 4096}
	r := Armed(nil)
	require.NoError(t, st.Write(r))
	assert.Equal(t, r, st.Read())
	//region before the offset untouched
	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, b := range buf[:4096] {
		require.Zero(t, b)
	}
}
