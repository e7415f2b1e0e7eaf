/*
 * Copyright 2025 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package regionheap

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/bytedance/gopkg/util/logger"
)

// Heap manages one caller-supplied region. All block metadata lives inside
// the region; the Heap value itself holds only the region reference and its
// size, the lock, the cursor, the policy and counters.
type Heap struct {
	mu sync.Mutex

	region []byte
	base   unsafe.Pointer // cached &region[0]

	head        int64 // first block, always offset 0
	cursor      int64 // next-fit resume point, nilOff when unset
	policy      Policy
	regionBytes int64

	allocs uint64
	frees  uint64
}

// Stats is a point-in-time snapshot of a Heap.
type Stats struct {
	BlockCount  int
	FreeBlocks  int
	FreeBytes   int
	LargestFree int
	Allocs      uint64
	Frees       uint64
}

// New prepares a heap over the given region. The region must be at least
// MinRegionSize bytes and its base must be 8-byte aligned (any slice from
// make or NewRegion is). The whole region becomes a single free block.
func New(region []byte, policy Policy) (*Heap, error) {
	if region == nil {
		return nil, fmt.Errorf("regionheap: nil region")
	}
	if len(region) < MinRegionSize {
		return nil, fmt.Errorf("regionheap: region size must be >= %d, got %d", MinRegionSize, len(region))
	}
	if policy > WorstFit {
		return nil, fmt.Errorf("regionheap: unknown policy %d", policy)
	}
	base := unsafe.Pointer(&region[0])
	if uintptr(base)%payloadAlign != 0 {
		return nil, fmt.Errorf("regionheap: region base %p is not %d-byte aligned", base, payloadAlign)
	}

	h := &Heap{
		region:      region,
		base:        base,
		policy:      policy,
		regionBytes: int64(len(region)),
	}
	h.reset()
	return h, nil
}

// reset rewrites the region metadata to its initial single-block state.
// Callers hold the lock, except New.
func (h *Heap) reset() {
	first := h.hdr(h.head)
	first.magic = magic
	first.free = 1
	first.size = h.regionBytes - headerSize
	first.prev = nilOff
	first.next = nilOff
	h.cursor = nilOff
	h.allocs = 0
	h.frees = 0
}

// Reset discards all allocations and returns the heap to its initial state.
// Any payload slice handed out before Reset is invalidated.
func (h *Heap) Reset() {
	h.mu.Lock()
	h.reset()
	h.mu.Unlock()
}

// Alloc returns a zeroed payload of exactly size bytes carved out of the
// region, or nil when size <= 0 or no free block can satisfy the request
// under the heap's policy. The returned slice has extra capacity when size
// is not a multiple of 8 (the block is rounded up) or when splitting the
// chosen block would have left a sliver too small to reuse.
func (h *Heap) Alloc(size int) []byte {
	if size <= 0 {
		return nil
	}
	n := alignUp(int64(size))
	if n > h.regionBytes-headerSize {
		return nil
	}

	h.mu.Lock()
	off := h.findFit(n)
	if off == nilOff {
		h.mu.Unlock()
		return nil
	}
	if h.policy == NextFit {
		// Resume the next search past the chosen block, at its successor
		// as it stands before the split links in the remainder.
		h.cursor = h.hdr(off).next
	}
	h.carve(off, n)
	h.allocs++
	granted := h.hdr(off).size
	h.mu.Unlock()

	return h.payload(off, granted)[:size]
}

// carve turns the free block at off into a busy block of n payload bytes.
// The block is split when the residue can still hold a header plus
// minFreeBlock bytes; otherwise the whole block is consumed. The resulting
// payload is zeroed.
func (h *Heap) carve(off, n int64) {
	b := h.hdr(off)
	if b.size-n >= headerSize+minFreeBlock {
		rem := off + headerSize + n
		r := h.hdr(rem)
		r.magic = magic
		r.free = 1
		r.size = b.size - n - headerSize
		r.prev = off
		r.next = b.next
		if b.next != nilOff {
			h.hdr(b.next).prev = rem
		}
		b.next = rem
		b.size = n
	}
	b.free = 0

	p := h.payload(off, b.size)
	for i := range p {
		p[i] = 0
	}
}

// Free releases a payload previously returned by Alloc. A slice with zero
// capacity (nil or empty) is a no-op; a zero-length reslice of a payload
// that still has capacity releases that payload's block. A pointer outside the region, or one that does not mark
// the start of a live block, panics: such a reference was never handed out
// by this heap, or the metadata has been corrupted. Releasing a block that
// is already free logs a diagnostic and leaves the heap untouched.
func (h *Heap) Free(block []byte) {
	if cap(block) == 0 {
		return
	}
	off := h.offsetOf(block)
	if off < 0 || off+headerSize > h.regionBytes {
		panic("regionheap: pointer not in region")
	}

	h.mu.Lock()
	b := h.hdr(off)
	if b.magic != magic {
		h.mu.Unlock()
		panic("regionheap: pointer does not refer to an allocated block")
	}
	if b.free == 1 {
		h.mu.Unlock()
		logger.Warnf("regionheap: double free of block at offset %d ignored", off)
		return
	}
	h.release(off)
	h.frees++
	h.mu.Unlock()
}

// release marks the block at off free and merges it with free neighbors.
// Merge-prev runs first, then merge-next on the survivor, so at most three
// blocks fuse into one. The next-fit cursor is moved off any header that
// ceases to exist.
func (h *Heap) release(off int64) {
	b := h.hdr(off)
	b.free = 1

	if p := b.prev; p != nilOff && h.hdr(p).free == 1 {
		ph := h.hdr(p)
		if h.cursor == off {
			h.cursor = b.next
		}
		ph.size += headerSize + b.size
		ph.next = b.next
		if b.next != nilOff {
			h.hdr(b.next).prev = p
		}
		b.magic = 0
		off = p
		b = ph
	}

	if nx := b.next; nx != nilOff && h.hdr(nx).free == 1 {
		nh := h.hdr(nx)
		if h.cursor == nx {
			h.cursor = nh.next
		}
		b.size += headerSize + nh.size
		b.next = nh.next
		if nh.next != nilOff {
			h.hdr(nh.next).prev = off
		}
		nh.magic = 0
	}
}

// Available returns the total payload bytes currently free. Fragmentation
// may keep a single allocation of this size from succeeding; see
// LargestFree.
func (h *Heap) Available() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := int64(0)
	for off := h.head; off != nilOff; off = h.hdr(off).next {
		if b := h.hdr(off); b.free == 1 {
			total += b.size
		}
	}
	return int(total)
}

// LargestFree returns the payload size of the largest free block.
func (h *Heap) LargestFree() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	largest := int64(0)
	for off := h.head; off != nilOff; off = h.hdr(off).next {
		if b := h.hdr(off); b.free == 1 && b.size > largest {
			largest = b.size
		}
	}
	return int(largest)
}

// Blocks returns the number of blocks currently tiling the region.
func (h *Heap) Blocks() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for off := h.head; off != nilOff; off = h.hdr(off).next {
		n++
	}
	return n
}

// Stats returns a snapshot of the heap.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := Stats{Allocs: h.allocs, Frees: h.frees}
	for off := h.head; off != nilOff; off = h.hdr(off).next {
		b := h.hdr(off)
		s.BlockCount++
		if b.free == 1 {
			s.FreeBlocks++
			s.FreeBytes += int(b.size)
			if int(b.size) > s.LargestFree {
				s.LargestFree = int(b.size)
			}
		}
	}
	return s
}
