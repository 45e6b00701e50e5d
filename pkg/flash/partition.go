// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package flash locates flash partitions and programs raw images into them.
// The programmer defers the image header to a second write pass so that an
// interruption never leaves a partition that looks valid but is not.
package flash

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Partition is a programmable flash partition. OpenWrite returns a write
// context positioned at partition start; its Close durably commits everything
// written through it.
type Partition interface {
	Name() string
	// BlockSize is the partition's flash block size, queried from the
	// device, never assumed.
	BlockSize() int64
	OpenRead() (io.ReadCloser, error)
	OpenWrite() (io.WriteCloser, error)
}

// MTDPartition is a row of the kernel's mtd table.
type MTDPartition struct {
	Index     int
	PartName  string
	Size      int64
	EraseSize int64
}

const mtdTable = "/proc/mtd"

// devPath returns the device node for this partition. Writes go through the
// corresponding mtdblock device so the block layer handles erase blocks.
func (p MTDPartition) devPath() string {
	return fmt.Sprintf("/dev/block/mtdblock%d", p.Index)
}

func (p MTDPartition) Name() string     { return p.PartName }
func (p MTDPartition) BlockSize() int64 { return p.EraseSize }

func (p MTDPartition) OpenRead() (io.ReadCloser, error) {
	return os.Open(p.devPath())
}

func (p MTDPartition) OpenWrite() (io.WriteCloser, error) {
	f, err := os.OpenFile(p.devPath(), os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	return &syncOnClose{f: f}, nil
}

// syncOnClose makes Close a durability barrier.
type syncOnClose struct{ f *os.File }

func (c *syncOnClose) Write(p []byte) (int, error) { return c.f.Write(p) }

func (c *syncOnClose) Close() error {
	if err := c.f.Sync(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}

// ParseMTDTable parses /proc/mtd content. Lines look like
//    mtd0: 00040000 00020000 "misc"
// and the header line is skipped.
func ParseMTDTable(r io.Reader) (parts []MTDPartition, err error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || !strings.HasPrefix(line, "mtd") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(fields[0], "mtd"), ":"))
		if err != nil {
			continue
		}
		size, err := strconv.ParseInt(fields[1], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("bad size in mtd line %q: %w", line, err)
		}
		esize, err := strconv.ParseInt(fields[2], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("bad erasesize in mtd line %q: %w", line, err)
		}
		name := strings.Trim(strings.Join(fields[3:], " "), `"`)
		parts = append(parts, MTDPartition{Index: idx, PartName: name, Size: size, EraseSize: esize})
	}
	return parts, sc.Err()
}

// ScanPartitions reads the kernel's mtd table.
func ScanPartitions() ([]MTDPartition, error) {
	f, err := os.Open(mtdTable)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMTDTable(f)
}

// FindPartition returns the named partition from the mtd table.
func FindPartition(name string) (MTDPartition, error) {
	parts, err := ScanPartitions()
	if err != nil {
		return MTDPartition{}, fmt.Errorf("scanning partitions: %w", err)
	}
	for _, p := range parts {
		if p.PartName == name {
			return p, nil
		}
	}
	return MTDPartition{}, fmt.Errorf("no partition %q", name)
}
