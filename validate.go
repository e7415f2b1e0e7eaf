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
	"io"
)

// Validate walks the block list and checks every structural invariant: the
// list is a well-formed doubly-linked chain in strictly increasing address
// order, the blocks tile the region exactly, no two adjacent blocks are
// both free, every size is positive, and the cursor points at a live block.
// Any violation panics; a heap that fails Validate has been corrupted and
// cannot be used further. Intended for tests and debug builds.
func (h *Heap) Validate() {
	h.mu.Lock()
	defer h.mu.Unlock()

	var (
		total      int64
		prevOff    = nilOff
		prevFree   = false
		cursorSeen = h.cursor == nilOff
	)
	for off := h.head; off != nilOff; {
		if off < 0 || off+headerSize > h.regionBytes {
			panic(fmt.Sprintf("regionheap: block offset %d outside region of %d bytes", off, h.regionBytes))
		}
		b := h.hdr(off)
		if b.magic != magic {
			panic(fmt.Sprintf("regionheap: bad magic %#x at offset %d", b.magic, off))
		}
		if b.size <= 0 {
			panic(fmt.Sprintf("regionheap: non-positive size %d at offset %d", b.size, off))
		}
		if b.prev != prevOff {
			panic(fmt.Sprintf("regionheap: broken back-link at offset %d: prev=%d want %d", off, b.prev, prevOff))
		}
		if prevFree && b.free == 1 {
			panic(fmt.Sprintf("regionheap: adjacent free blocks at offsets %d and %d", prevOff, off))
		}
		if b.next != nilOff && b.next != off+headerSize+b.size {
			panic(fmt.Sprintf("regionheap: gap after offset %d: next=%d want %d", off, b.next, off+headerSize+b.size))
		}
		if off == h.cursor {
			cursorSeen = true
		}
		total += headerSize + b.size
		prevOff, prevFree = off, b.free == 1
		off = b.next
	}
	if total != h.regionBytes {
		panic(fmt.Sprintf("regionheap: blocks cover %d bytes, region has %d", total, h.regionBytes))
	}
	if !cursorSeen {
		panic(fmt.Sprintf("regionheap: cursor %d does not refer to a live block", h.cursor))
	}
}

// Dump writes one line per block to w, in address order. Debug aid only;
// the output format is not stable.
func (h *Heap) Dump(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := 0
	for off := h.head; off != nilOff; i++ {
		b := h.hdr(off)
		state := "busy"
		if b.free == 1 {
			state = "free"
		}
		fmt.Fprintf(w, "block %3d: off=%-8d size=%-8d %s prev=%d next=%d\n",
			i, off, b.size, state, b.prev, b.next)
		off = b.next
	}
	fmt.Fprintf(w, "%d blocks, policy=%s, cursor=%d\n", i, h.policy, h.cursor)
}
