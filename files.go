// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"io"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog/log"
)

// replaceFile writes path through write and atomically swaps it into place,
// keeping the permissions of an existing file. Readers never observe a
// partially written file.
func replaceFile(path string, write func(io.Writer) error) error {
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithExistingPermissions())
	if err != nil {
		return fmt.Errorf("failed to create pending file for %s: %w", path, err)
	}

	defer func() {
		// No-op once the file has been committed.
		if err := pendingFile.Cleanup(); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Failed to clean up pending file")
		}
	}()

	if err := write(pendingFile); err != nil {
		return err
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
