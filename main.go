// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Andromeda - front panel controller and CAT tool for the Andromeda radio
// console.

package main

import (
	"os"

	"github.com/Thermoquad/andromeda/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
