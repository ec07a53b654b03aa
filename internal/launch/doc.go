// SPDX-License-Identifier: MPL-2.0

// Package launch renders a composed environment as shell script text and starts
// processes inside it: native commands via os/exec, package command aliases via
// the embedded mvdan/sh interpreter, and interactive shells.
package launch
