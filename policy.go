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

import "fmt"

// Policy selects how Alloc picks a free block.
type Policy uint8

const (
	// FirstFit scans from the first block and takes the first free block
	// large enough.
	FirstFit Policy = iota
	// NextFit scans like FirstFit but resumes where the previous
	// allocation left off, wrapping around once.
	NextFit
	// BestFit scans the whole list and takes the smallest free block
	// large enough, earliest address on ties.
	BestFit
	// WorstFit scans the whole list and takes the largest free block
	// large enough, earliest address on ties.
	WorstFit
)

var policyNames = [...]string{
	FirstFit: "FirstFit",
	NextFit:  "NextFit",
	BestFit:  "BestFit",
	WorstFit: "WorstFit",
}

func (p Policy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("Policy(%d)", uint8(p))
}

// ParsePolicy maps a policy token to its Policy value. The empty string
// defaults to FirstFit.
func ParsePolicy(name string) (Policy, error) {
	if name == "" {
		return FirstFit, nil
	}
	for p, s := range policyNames {
		if s == name {
			return Policy(p), nil
		}
	}
	return FirstFit, fmt.Errorf("regionheap: unknown policy %q", name)
}

// findFit returns the offset of the free block chosen for an n-byte
// request, or nilOff when no free block qualifies. Callers hold the lock.
func (h *Heap) findFit(n int64) int64 {
	switch h.policy {
	case NextFit:
		return h.nextFit(n)
	case BestFit:
		return h.bestFit(n)
	case WorstFit:
		return h.worstFit(n)
	default:
		return h.firstFit(n)
	}
}

func (h *Heap) firstFit(n int64) int64 {
	for off := h.head; off != nilOff; off = h.hdr(off).next {
		if b := h.hdr(off); b.free == 1 && b.size >= n {
			return off
		}
	}
	return nilOff
}

// nextFit starts at the cursor (or the first block when the cursor is
// unset), wraps at the end, and stops after revisiting the starting block.
// The cursor itself is only moved by the caller on success.
func (h *Heap) nextFit(n int64) int64 {
	start := h.cursor
	if start == nilOff {
		start = h.head
	}
	off := start
	for {
		if b := h.hdr(off); b.free == 1 && b.size >= n {
			return off
		}
		off = h.hdr(off).next
		if off == nilOff {
			off = h.head
		}
		if off == start {
			return nilOff
		}
	}
}

func (h *Heap) bestFit(n int64) int64 {
	best := nilOff
	for off := h.head; off != nilOff; off = h.hdr(off).next {
		b := h.hdr(off)
		if b.free == 1 && b.size >= n && (best == nilOff || b.size < h.hdr(best).size) {
			best = off
		}
	}
	return best
}

func (h *Heap) worstFit(n int64) int64 {
	worst := nilOff
	for off := h.head; off != nilOff; off = h.hdr(off).next {
		b := h.hdr(off)
		if b.free == 1 && b.size >= n && (worst == nilOff || b.size > h.hdr(worst).size) {
			worst = off
		}
	}
	return worst
}
