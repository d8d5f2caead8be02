// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// extractTarGz unpacks a gzip-compressed tar archive into destDir.
//
// Every member path is resolved against destDir before anything is written;
// a member that would land outside destDir (absolute name, ".." escape, or a
// link pointing out of the tree) aborts the whole extraction with a
// *PathTraversalError.
func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar member: %w", err)
		}

		dst, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dst, os.FileMode(hdr.Mode)|0o700); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return err
			}
			if err := writeMember(dst, tr, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink, tar.TypeLink:
			// Link targets resolve relative to the member's directory and
			// must stay inside the tree as well.
			target := hdr.Linkname
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(dst), target)
			}
			rel, err := filepath.Rel(filepath.Clean(destDir), filepath.Clean(target))
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
				return &PathTraversalError{Member: hdr.Name}
			}
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return err
			}
			_ = os.Remove(dst)
			if err := os.Symlink(hdr.Linkname, dst); err != nil {
				return err
			}
		default:
			// Devices, FIFOs etc. have no place in a dataset archive.
			continue
		}
	}
}

// safeJoin resolves name against destDir and verifies the result is a
// descendant of destDir after cleaning.
func safeJoin(destDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", &PathTraversalError{Member: name}
	}
	dst := filepath.Join(destDir, name)
	root := filepath.Clean(destDir)
	if dst != root && !strings.HasPrefix(dst, root+string(os.PathSeparator)) {
		return "", &PathTraversalError{Member: name}
	}
	return dst, nil
}

func writeMember(dst string, r io.Reader, mode os.FileMode) error {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm()|0o400)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
