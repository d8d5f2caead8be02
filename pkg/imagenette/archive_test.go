// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

type tarEntry struct {
	name     string
	body     string
	typeflag byte
	linkname string
}

func writeArchive(t *testing.T, entries []tarEntry) string {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		typ := e.typeflag
		if typ == 0 {
			typ = tar.TypeReg
		}
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     0o644,
			Size:     int64(len(e.body)),
			Typeflag: typ,
			Linkname: e.linkname,
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if typ == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "archive.tgz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtractTarGz(t *testing.T) {
	archive := writeArchive(t, []tarEntry{
		{name: "imagenette2/train/n01440764/", typeflag: tar.TypeDir},
		{name: "imagenette2/train/n01440764/a.jpg", body: "jpeg-bytes"},
		{name: "imagenette2/val/n01440764/b.jpg", body: "more-bytes"},
	})

	dest := t.TempDir()
	require.NoError(t, extractTarGz(archive, dest))

	got, err := os.ReadFile(filepath.Join(dest, "imagenette2", "train", "n01440764", "a.jpg"))
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(got))

	_, err = os.Stat(filepath.Join(dest, "imagenette2", "val", "n01440764", "b.jpg"))
	require.NoError(t, err)
}

func TestExtractTarGzRejectsTraversal(t *testing.T) {
	cases := []struct {
		name    string
		entries []tarEntry
	}{
		{
			name: "dotdot member",
			entries: []tarEntry{
				{name: "ok.txt", body: "fine"},
				{name: "../../evil", body: "nope"},
			},
		},
		{
			name: "absolute member",
			entries: []tarEntry{
				{name: "/etc/evil", body: "nope"},
			},
		},
		{
			name: "escaping symlink",
			entries: []tarEntry{
				{name: "link", typeflag: tar.TypeSymlink, linkname: "../../outside"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parent := t.TempDir()
			dest := filepath.Join(parent, "dest")
			require.NoError(t, os.Mkdir(dest, 0o755))

			archive := writeArchive(t, tc.entries)
			err := extractTarGz(archive, dest)

			var traversal *PathTraversalError
			require.ErrorAs(t, err, &traversal)

			// Nothing may have been written outside the destination root.
			entries, err := os.ReadDir(parent)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			require.Equal(t, "dest", entries[0].Name())
		})
	}
}
