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
	"unsafe"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

const (
	// magic is stamped into every live header and cleared when a block is
	// absorbed by coalescing. Checked on Free to detect pointers that were
	// never handed out by this heap.
	magic uint32 = 0xA110CA7E

	// minFreeBlock is the smallest payload a split may leave behind.
	// Residues smaller than headerSize+minFreeBlock are handed to the
	// caller with the allocation instead of becoming a sliver block.
	minFreeBlock = 32

	// payloadAlign is the alignment of every payload, which is also the
	// natural alignment of the header record.
	payloadAlign = 8

	// MinRegionSize is the smallest region New accepts.
	MinRegionSize = 1024

	// nilOff marks an absent prev/next link or an unset cursor.
	nilOff int64 = -1
)

// header is the per-block metadata record, co-located with the block at its
// starting offset. The payload begins headerSize bytes after it. prev and
// next are region offsets of the neighboring headers in address order.
type header struct {
	magic uint32
	free  uint32
	size  int64 // payload bytes after the header
	prev  int64
	next  int64
}

// headerSize is the in-region footprint of a header.
const headerSize = int64(unsafe.Sizeof(header{}))

// hdr returns the header stored at the given region offset.
func (h *Heap) hdr(off int64) *header {
	return (*header)(unsafe.Add(h.base, off))
}

// payload returns the first n payload bytes of the block at off, as a slice
// whose length and capacity are both n.
func (h *Heap) payload(off, n int64) []byte {
	return unsafe.Slice((*byte)(unsafe.Add(h.base, off+headerSize)), n)
}

// offsetOf maps a payload pointer back to its block's header offset.
// Reads the slice word directly so zero-length slices do not panic.
func (h *Heap) offsetOf(block []byte) int64 {
	dataPtr := *(*uintptr)(unsafe.Pointer(&block))
	return int64(dataPtr-uintptr(h.base)) - headerSize
}

// alignUp rounds n up to the next multiple of payloadAlign so that every
// header stays naturally aligned.
func alignUp(n int64) int64 {
	return (n + payloadAlign - 1) &^ (payloadAlign - 1)
}

// NewRegion allocates a backing region of the given size. The bytes are
// deliberately not cleared: Alloc zeroes each payload as it is handed out,
// and header space is written before it is read.
func NewRegion(size int) []byte {
	return dirtmake.Bytes(size, size)
}
