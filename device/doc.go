// SPDX-License-Identifier: MIT

// Package device resolves where and how wide a decomposition runs.
//
// Configuration is an explicit Config value handed to each call; nothing is
// read from the environment and no process-wide state is mutated. Select
// walks a fixed fallback chain once per call:
//
//	requested accelerator → Probe succeeds → accelerator
//	                      → Probe fails    → host, ErrBackendUnavailable warning
//	host                                   → host
//
// An accelerator limited to single precision turns a Float64 request into
// Float32 and records ErrPrecisionDowngrade. Warnings are returned in the
// Selection and logged; they never fail the call.
package device
