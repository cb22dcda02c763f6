// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package reportcache

import (
	"container/list"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// lru is a fixed-capacity least-recently-used store of byte values.
// Values are kept zstd-compressed when that makes them smaller.
type lru struct {
	size      int
	evictList *list.List
	items     map[string]*list.Element
	lock      sync.Mutex
	enc       *zstd.Encoder
	dec       *zstd.Decoder
}

type entry struct {
	key        string
	value      []byte
	compressed bool
}

func newLRU(size int) (*lru, error) {
	// A nil writer/reader allows EncodeAll/DecodeAll without streams.
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, err
	}

	return &lru{
		size:      size,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
		enc:       enc,
		dec:       dec,
	}, nil
}

// add stores value under key and reports whether an entry was evicted.
func (c *lru) add(key string, value []byte) bool {
	// EncodeAll is safe for concurrent use; compress outside the lock.
	stored, compressed := value, false
	if packed := c.enc.EncodeAll(value, nil); len(packed) < len(value) {
		stored, compressed = packed, true
	} else {
		stored = append([]byte(nil), value...)
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if el, ok := c.items[key]; ok {
		c.evictList.MoveToFront(el)

		ent := el.Value.(*entry) //nolint:forcetypeassert // only *entry is stored
		ent.value, ent.compressed = stored, compressed

		return false
	}

	c.items[key] = c.evictList.PushFront(&entry{key: key, value: stored, compressed: compressed})

	if c.evictList.Len() <= c.size {
		return false
	}

	oldest := c.evictList.Back()
	c.evictList.Remove(oldest)
	delete(c.items, oldest.Value.(*entry).key) //nolint:forcetypeassert // only *entry is stored

	return true
}

// get returns a private copy of the value for key and marks it as recently
// used. A value that fails to decompress is treated as missing.
func (c *lru) get(key string) ([]byte, bool) {
	c.lock.Lock()

	el, ok := c.items[key]
	if !ok {
		c.lock.Unlock()

		return nil, false
	}

	c.evictList.MoveToFront(el)
	ent := *el.Value.(*entry) //nolint:forcetypeassert // only *entry is stored

	c.lock.Unlock()

	if !ent.compressed {
		return append([]byte(nil), ent.value...), true
	}

	decoded, err := c.dec.DecodeAll(ent.value, nil)
	if err != nil {
		return nil, false
	}

	return decoded, true
}

func (c *lru) remove(key string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}

	c.evictList.Remove(el)
	delete(c.items, key)

	return true
}

func (c *lru) len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.evictList.Len()
}
