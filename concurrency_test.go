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
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytedance/gopkg/util/gopool"
)

// TestConcurrentSoak hammers one heap from many workers sharing a slot
// array, then checks that the block list collapses back to a single free
// block once everything is released.
func TestConcurrentSoak(t *testing.T) {
	const (
		workers    = 150
		iterations = 2500
		slotCount  = 1000
	)

	for _, policy := range []Policy{FirstFit, NextFit, BestFit, WorstFit} {
		t.Run(policy.String(), func(t *testing.T) {
			h := newTestHeap(t, 1<<20, policy)
			initial := h.Available()

			slots := make([][]byte, slotCount)
			locks := make([]sync.Mutex, slotCount)

			var wg sync.WaitGroup
			wg.Add(workers)
			for w := 0; w < workers; w++ {
				seed := int64(w)
				gopool.Go(func() {
					defer wg.Done()
					rng := rand.New(rand.NewSource(seed))
					for i := 0; i < iterations; i++ {
						idx := rng.Intn(slotCount)
						locks[idx].Lock()
						if slots[idx] == nil {
							slots[idx] = h.Alloc(1 + rng.Intn(128))
						} else {
							h.Free(slots[idx])
							slots[idx] = nil
						}
						locks[idx].Unlock()

						if i%500 == 0 {
							h.Validate()
						}
					}
				})
			}
			wg.Wait()

			for i, b := range slots {
				if b != nil {
					h.Free(b)
					slots[i] = nil
				}
			}
			h.Validate()
			assert.Equal(t, 1, h.Blocks())
			assert.Equal(t, initial, h.Available())
		})
	}
}

// TestConcurrentPayloadIsolation checks that payloads handed to concurrent
// callers never overlap and keep their contents until released.
func TestConcurrentPayloadIsolation(t *testing.T) {
	const workers = 32

	h := newTestHeap(t, 1<<20, FirstFit)

	var wg sync.WaitGroup
	wg.Add(workers)
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		tag := byte(w + 1)
		gopool.Go(func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				p := h.Alloc(64)
				if p == nil {
					continue
				}
				for j := range p {
					p[j] = tag
				}
				for j := range p {
					if p[j] != tag {
						errs <- assert.AnError
						h.Free(p)
						return
					}
				}
				h.Free(p)
			}
		})
	}
	wg.Wait()
	close(errs)
	require.Empty(t, errs)

	h.Validate()
	assert.Equal(t, 1, h.Blocks())
}
