// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes user-written CUE files against an embedded schema.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	raw, err := cueutil.Decode[map[string]any](schema, data, "#Config",
//	    cueutil.WithFilename(path),
//	    cueutil.WithConcrete(false),
//	)
//
// Errors name the file and the JSON path of the offending field, for example
// "config.cue: ui.color_scheme: 3 errors in empty disjunction".
package cueutil
