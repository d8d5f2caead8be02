// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package imagenette

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

// verifySHA256 computes the SHA256 of a file and compares it to expected.
func verifySHA256(path string, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}

	sum := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(sum, expected) {
		return &VerificationError{Path: path, Expected: expected, Actual: sum}
	}
	return nil
}
