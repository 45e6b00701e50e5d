// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// flash_image writes a raw image into an mtd partition, skipping the write
// entirely if the partition already holds the image.
package main

import (
	"os"

	"github.com/packetlss/amonra-bootable-recovery/pkg/flash"
	"github.com/packetlss/amonra-bootable-recovery/pkg/log"

	"github.com/spf13/cobra"
)

func main() {
	var deleteAfter bool
	root := &cobra.Command{
		Use:   "flash_image <partition> <image>",
		Short: "write an image into a flash partition",
		Long: `Writes an image file into the named mtd partition, atomically: the image
header is committed last, so an interrupted write never leaves a partition
that the boot loader would mistake for a valid image. If the partition
already holds the image, nothing is written.`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			log.AddConsoleLog(0)
			p, err := flash.FindPartition(args[0])
			if err != nil {
				log.Fatalf("%s", err)
			}
			if err := flash.Program(args[1], p, deleteAfter); err != nil {
				log.Fatalf("flashing %s: %s", args[0], err)
			}
		},
	}
	root.Flags().BoolVarP(&deleteAfter, "delete", "d", false,
		"delete the image file after a successful flash")
	if err := root.Execute(); err != nil {
		os.Exit(2)
	}
}
