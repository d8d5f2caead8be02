// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"

	"github.com/dataprep/imagenette/pkg/imagenette"
)

// newProgress selects the progress handler for the active output mode and
// returns it with a cleanup func that must run before printing anything else.
func newProgress(ro *RootOpts) (imagenette.ProgressFunc, func()) {
	if ro.JSONOut {
		return jsonProgress(os.Stdout), func() {}
	}
	if ro.Quiet {
		return nil, func() {}
	}
	return barProgress()
}

// barProgress renders the archive download as a pb progress bar and the
// remaining phases as one-line status messages.
func barProgress() (imagenette.ProgressFunc, func()) {
	var bar *pb.ProgressBar

	finish := func() {
		if bar != nil {
			bar.Finish()
			bar = nil
		}
	}

	handler := func(ev imagenette.ProgressEvent) {
		switch ev.Event {
		case "skip":
			fmt.Printf("skip: %s (%s)\n", ev.Path, ev.Message)
		case "download_start":
			fmt.Printf("downloading %s\n", ev.Dataset)
		case "download_progress":
			if bar == nil {
				if ev.Total > 0 {
					bar = pb.Full.Start64(ev.Total)
				} else {
					bar = pb.Full.Start64(0)
				}
				bar.Set(pb.Bytes, true)
			}
			bar.SetCurrent(ev.Downloaded)
		case "verify":
			finish()
			fmt.Println("verifying archive checksum")
		case "extract":
			finish()
			fmt.Printf("extracting into %s\n", ev.Path)
		case "error":
			finish()
			fmt.Fprintf(os.Stderr, "error: %s\n", ev.Message)
		case "done":
			finish()
		}
	}
	return handler, finish
}

// jsonProgress returns a JSON-lines progress handler.
func jsonProgress(w io.Writer) imagenette.ProgressFunc {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	var mu sync.Mutex
	return func(ev imagenette.ProgressEvent) {
		mu.Lock()
		_ = enc.Encode(ev)
		mu.Unlock()
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
