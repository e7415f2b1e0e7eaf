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

// Package regionheap implements a dynamic memory allocator over a fixed,
// caller-supplied byte region. The region is tiled by an address-ordered,
// doubly-linked list of blocks whose headers live inside the region itself;
// the allocator never touches the host allocator for bookkeeping.
//
// A Heap carves blocks out of its region on demand using one of four fit
// policies (FirstFit, NextFit, BestFit, WorstFit), splits oversized free
// blocks, and coalesces adjacent free neighbors on Free. Every public
// operation runs as one critical section under a region-wide mutex, so a
// Heap may be shared freely between goroutines.
//
// Payload sizes are rounded up to 8 bytes internally so that every header,
// and therefore every payload, is 8-byte aligned.
//
// Payloads returned by Alloc are zeroed. Payloads are not cleared on Free;
// the caller owns those bytes until release and the allocator does not read
// or write them in between.
package regionheap
