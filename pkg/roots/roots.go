// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package roots translates root-prefixed paths like "CACHE:recovery/command"
// to filesystem paths, mounting the backing partition on demand. The table of
// known roots is overridable, so tests can point any root at a temp dir.
package roots

import (
	"errors"
	"fmt"
	"os"
	fp "path/filepath"
	"strings"

	"github.com/packetlss/amonra-bootable-recovery/pkg/log"
)

// Root describes one named filesystem the recovery tool may touch.
type Root struct {
	Device     string `yaml:"device"`
	FSType     string `yaml:"fstype"`
	Options    string `yaml:"options"`
	Mountpoint string `yaml:"mountpoint"`
	// RawPartition names the flash partition backing this root, for raw
	// (unmounted) writes such as staging a firmware image.
	RawPartition string `yaml:"raw_partition"`
}

var ErrBadPath = errors.New("path not in root:path form")

// Mounter mounts and unmounts block devices. The zero table has none and
// assumes everything is already mounted, which is what tests want; real use
// installs one (see mount_linux.go).
type Mounter interface {
	Mount(dev, path, fstype, opts string) error
	Unmount(path string) error
}

type Table struct {
	roots   map[string]Root
	mounter Mounter
	mounted []string
}

// Defaults returns the built-in table.
func Defaults() *Table {
	return &Table{roots: map[string]Root{
		"CACHE":  {Device: "/dev/block/mtdblock4", FSType: "yaffs2", Mountpoint: "/cache", RawPartition: "cache"},
		"DATA":   {Device: "/dev/block/mtdblock5", FSType: "yaffs2", Mountpoint: "/data", RawPartition: "userdata"},
		"SDCARD": {Device: "/dev/block/mmcblk0p1", FSType: "vfat", Mountpoint: "/sdcard"},
	}}
}

// New returns the default table with the given overrides merged in. An
// override replaces only the fields it sets.
func New(overrides map[string]Root) *Table {
	t := Defaults()
	for name, o := range overrides {
		r := t.roots[name]
		if o.Device != "" {
			r.Device = o.Device
		}
		if o.FSType != "" {
			r.FSType = o.FSType
		}
		if o.Options != "" {
			r.Options = o.Options
		}
		if o.Mountpoint != "" {
			r.Mountpoint = o.Mountpoint
		}
		if o.RawPartition != "" {
			r.RawPartition = o.RawPartition
		}
		t.roots[name] = r
	}
	return t
}

func (t *Table) SetMounter(m Mounter) { t.mounter = m }

// Lookup returns the root with the given name.
func (t *Table) Lookup(name string) (Root, bool) {
	r, ok := t.roots[name]
	return r, ok
}

// Split breaks "CACHE:recovery/command" into root name and relative path.
func Split(rootPath string) (root, rest string, err error) {
	i := strings.IndexByte(rootPath, ':')
	if i <= 0 {
		return "", "", fmt.Errorf("%w: %q", ErrBadPath, rootPath)
	}
	return rootPath[:i], strings.TrimPrefix(rootPath[i+1:], "/"), nil
}

// Resolve translates a root-prefixed path to a filesystem path. It does not
// mount anything; see EnsureMounted.
func (t *Table) Resolve(rootPath string) (string, error) {
	root, rest, err := Split(rootPath)
	if err != nil {
		return "", err
	}
	r, ok := t.roots[root]
	if !ok {
		return "", fmt.Errorf("unknown root %q in %q", root, rootPath)
	}
	return fp.Join(r.Mountpoint, rest), nil
}

// EnsureMounted mounts the root backing the given path if a mounter is
// installed and the root is not mounted yet.
func (t *Table) EnsureMounted(rootPath string) error {
	root, _, err := Split(rootPath)
	if err != nil {
		return err
	}
	r, ok := t.roots[root]
	if !ok {
		return fmt.Errorf("unknown root %q", root)
	}
	if t.mounter == nil {
		return nil
	}
	for _, m := range t.mounted {
		if m == r.Mountpoint {
			return nil
		}
	}
	if err := t.mounter.Mount(r.Device, r.Mountpoint, r.FSType, r.Options); err != nil {
		return err
	}
	t.mounted = append(t.mounted, r.Mountpoint)
	return nil
}

// UnmountAll unmounts everything this table mounted, in reverse order.
// Best-effort; errors are logged.
func (t *Table) UnmountAll() {
	if t.mounter == nil {
		return
	}
	for i := len(t.mounted) - 1; i >= 0; i-- {
		if err := t.mounter.Unmount(t.mounted[i]); err != nil {
			log.Logf("unmounting %s: %s", t.mounted[i], err)
		}
	}
	t.mounted = nil
}

// Create opens a root-prefixed path for writing, truncating, mounting the
// root and creating parent dirs as needed. Generous dir permissions - the
// main system resets them on boot.
func (t *Table) Create(rootPath string) (*os.File, error) {
	path, err := t.prep(rootPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(fp.Dir(path), 0777); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
}

// Append is like Create but appends.
func (t *Table) Append(rootPath string) (*os.File, error) {
	path, err := t.prep(rootPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(fp.Dir(path), 0777); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
}

// Open opens a root-prefixed path for reading.
func (t *Table) Open(rootPath string) (*os.File, error) {
	path, err := t.prep(rootPath)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove unlinks a root-prefixed path. Absence is not an error.
func (t *Table) Remove(rootPath string) error {
	path, err := t.prep(rootPath)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (t *Table) prep(rootPath string) (string, error) {
	if err := t.EnsureMounted(rootPath); err != nil {
		return "", err
	}
	return t.Resolve(rootPath)
}
