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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanHeap(t *testing.T) {
	h := newTestHeap(t, 4096, NextFit)
	assert.NotPanics(t, h.Validate)

	a := h.Alloc(64)
	b := h.Alloc(200)
	h.Free(a)
	assert.NotPanics(t, h.Validate)
	h.Free(b)
	assert.NotPanics(t, h.Validate)
}

func TestValidateDetectsCorruption(t *testing.T) {
	// each case corrupts a fresh three-block heap [busy][busy][free]
	corrupt := func(t *testing.T, f func(h *Heap)) {
		t.Helper()
		h := newTestHeap(t, 4096, FirstFit)
		require.NotNil(t, h.Alloc(64))
		require.NotNil(t, h.Alloc(64))
		f(h)
		assert.Panics(t, h.Validate)
	}

	t.Run("BadMagic", func(t *testing.T) {
		corrupt(t, func(h *Heap) { h.hdr(0).magic = 0xDEAD })
	})
	t.Run("NonPositiveSize", func(t *testing.T) {
		corrupt(t, func(h *Heap) { h.hdr(0).size = 0 })
	})
	t.Run("BrokenBackLink", func(t *testing.T) {
		corrupt(t, func(h *Heap) { h.hdr(h.hdr(0).next).prev = 8 })
	})
	t.Run("GapBetweenBlocks", func(t *testing.T) {
		corrupt(t, func(h *Heap) { h.hdr(0).size += 8 })
	})
	t.Run("AdjacentFreeBlocks", func(t *testing.T) {
		corrupt(t, func(h *Heap) {
			h.hdr(0).free = 1
			h.hdr(h.hdr(0).next).free = 1
		})
	})
	t.Run("DanglingCursor", func(t *testing.T) {
		corrupt(t, func(h *Heap) { h.cursor = 8 })
	})
}

func TestDump(t *testing.T) {
	h := newTestHeap(t, 4096, BestFit)
	a := h.Alloc(64)
	require.NotNil(t, h.Alloc(128))
	h.Free(a)

	var sb strings.Builder
	h.Dump(&sb)
	out := sb.String()

	assert.Equal(t, 4, strings.Count(out, "\n")) // three blocks plus summary
	assert.Contains(t, out, "free")
	assert.Contains(t, out, "busy")
	assert.Contains(t, out, "policy=BestFit")
}
