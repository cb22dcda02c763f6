// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package reportcache remembers validation reports by file content.

Reports are keyed by the SHA-256 digest of the file name, the raw file bytes
and the check options, so a file saved without changes is not decoded and
checked again. Entries are stored as zstd-compressed JSON in a bounded
least-recently-used cache.
*/
package reportcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"codeberg.org/pixivfe/tstool/core/check"
)

// ErrInvalidSize is returned by New for a non-positive capacity.
var ErrInvalidSize = errors.New("must provide a positive size")

// Cache maps content digests to reports. It is safe for concurrent use.
type Cache struct {
	entries *lru
}

// New returns a cache holding at most size reports.
func New(size int) (*Cache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	entries, err := newLRU(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}

	return &Cache{entries: entries}, nil
}

// Key returns the digest identifying a report for content checked with opts.
func Key(name string, content []byte, opts check.Options, strict bool) string {
	h := sha256.New()

	fmt.Fprintf(h, "%s\x00%+v\x00%t\x00", name, opts, strict)
	h.Write(content)

	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the report stored under key.
func (c *Cache) Get(key string) (*check.Report, bool) {
	data, ok := c.entries.get(key)
	if !ok {
		return nil, false
	}

	var r check.Report
	if err := json.Unmarshal(data, &r); err != nil {
		c.entries.remove(key)

		return nil, false
	}

	return &r, true
}

// Add stores r under key and reports whether an older entry was evicted.
func (c *Cache) Add(key string, r *check.Report) (bool, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return false, fmt.Errorf("failed to encode report: %w", err)
	}

	return c.entries.add(key, data), nil
}

// Len returns the number of cached reports.
func (c *Cache) Len() int {
	return c.entries.len()
}
