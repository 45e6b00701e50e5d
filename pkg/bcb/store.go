// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package bcb

import (
	"os"

	"github.com/packetlss/amonra-bootable-recovery/pkg/log"
)

// Store is the persistence contract for the control record. Read fails soft:
// on any read or parse error it returns a zero record, since the device may
// be factory-fresh or the region corrupt. Write replaces the whole record;
// there are no partial-field writes.
type Store interface {
	Read() Record
	Write(Record) error
}

// FileStore keeps the record at a fixed offset of a device node or regular
// file - the misc partition on real hardware, a temp file in tests.
type FileStore struct {
	Path   string
	Offset int64
}

var _ Store = (*FileStore)(nil)

func (fs *FileStore) Read() Record {
	var r Record
	f, err := os.Open(fs.Path)
	if err != nil {
		log.Logf("bcb read: %s", err)
		return r
	}
	defer f.Close()
	buf := make([]byte, RecordSize)
	n, err := f.ReadAt(buf, fs.Offset)
	if n != RecordSize {
		log.Logf("bcb read %s: got %d of %d bytes (%s)", fs.Path, n, RecordSize, err)
		return r
	}
	return unmarshal(buf)
}

func (fs *FileStore) Write(r Record) error {
	f, err := os.OpenFile(fs.Path, os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err = f.WriteAt(r.marshal(), fs.Offset); err != nil {
		return err
	}
	// the record must be observable on the next boot, not sit in page cache
	return f.Sync()
}
