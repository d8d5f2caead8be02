// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// progressReader wraps an io.Reader and emits progress events during reads.
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	dataset    string
	emit       func(ProgressEvent)
	lastEmit   time.Time
	interval   time.Duration
}

func newProgressReader(r io.Reader, total int64, dataset string, emit func(ProgressEvent)) *progressReader {
	return &progressReader{
		reader:   r,
		total:    total,
		dataset:  dataset,
		emit:     emit,
		lastEmit: time.Now(),
		interval: 200 * time.Millisecond, // Emit at most 5 times per second
	}
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 {
		pr.downloaded += int64(n)
		// Throttle emissions to avoid flooding
		if time.Since(pr.lastEmit) >= pr.interval || err == io.EOF {
			pr.emit(ProgressEvent{
				Event:      "download_progress",
				Dataset:    pr.dataset,
				Downloaded: pr.downloaded,
				Total:      pr.total,
			})
			pr.lastEmit = time.Now()
		}
	}
	return n, err
}

// Ensure makes the dataset available under rootDir and returns its directory.
//
// If rootDir/<ds.ID> already exists the download is skipped entirely; this is
// the only caching policy, there is no staleness or checksum check against an
// existing directory. Otherwise the archive is downloaded to a temporary file
// inside rootDir, optionally checksum-verified, safe-extracted into rootDir
// and removed. The archive file is removed on every exit path, success or
// failure.
//
// Concurrent calls for the same rootDir race on the existence check and must
// be serialized by the caller.
func Ensure(ctx context.Context, rootDir string, ds Dataset, progress ProgressFunc) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ds.ID == "" || ds.URL == "" {
		return "", fmt.Errorf("dataset needs both an ID and a URL")
	}

	emit := func(ev ProgressEvent) {
		if progress != nil {
			if ev.Time.IsZero() {
				ev.Time = time.Now().UTC()
			}
			if ev.Dataset == "" {
				ev.Dataset = ds.ID
			}
			progress(ev)
		}
	}

	datasetDir := filepath.Join(rootDir, ds.ID)
	if _, err := os.Stat(datasetDir); err == nil {
		emit(ProgressEvent{Event: "skip", Path: datasetDir, Message: "dataset directory exists"})
		return datasetDir, nil
	}

	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return "", err
	}

	archivePath := filepath.Join(rootDir, ds.ID+".tgz")
	// Guaranteed cleanup of the archive regardless of exit path.
	defer os.Remove(archivePath)

	emit(ProgressEvent{Event: "download_start", Path: archivePath})
	if err := download(ctx, ds.URL, archivePath, ds.ID, emit); err != nil {
		emit(ProgressEvent{Event: "error", Message: err.Error()})
		return "", &DownloadError{URL: ds.URL, Err: err}
	}

	if ds.SHA256 != "" {
		emit(ProgressEvent{Event: "verify", Path: archivePath})
		if err := verifySHA256(archivePath, ds.SHA256); err != nil {
			emit(ProgressEvent{Event: "error", Message: err.Error()})
			return "", err
		}
	}

	emit(ProgressEvent{Event: "extract", Path: rootDir})
	if err := extractTarGz(archivePath, rootDir); err != nil {
		emit(ProgressEvent{Event: "error", Message: err.Error()})
		return "", err
	}

	emit(ProgressEvent{Event: "done", Path: datasetDir})
	return datasetDir, nil
}

// download fetches url into dst with a single GET request. No retries: a
// transport failure propagates to the caller as-is.
func download(ctx context.Context, url, dst, dataset string, emit func(ProgressEvent)) error {
	httpc := buildHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	pr := newProgressReader(resp.Body, resp.ContentLength, dataset, emit)
	if _, err := io.Copy(out, pr); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
