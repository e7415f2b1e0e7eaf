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

import "io"

// defaultHeap backs the package-level convenience functions for programs
// that want one process-wide heap with an init-before-use lifecycle.
// Programs managing several regions should construct Heap values directly.
var defaultHeap *Heap

// Init installs the default heap over the given region. policyName is one
// of "FirstFit", "NextFit", "BestFit", "WorstFit"; the empty string selects
// FirstFit. An unknown policy or an unusable region is a configuration bug
// and panics. Init must complete before any other package-level call.
func Init(region []byte, policyName string) {
	p, err := ParsePolicy(policyName)
	if err != nil {
		panic(err)
	}
	h, err := New(region, p)
	if err != nil {
		panic(err)
	}
	defaultHeap = h
}

func mustDefault() *Heap {
	if defaultHeap == nil {
		panic("regionheap: not initialized, call Init first")
	}
	return defaultHeap
}

// Malloc allocates from the default heap. See (*Heap).Alloc.
func Malloc(size int) []byte {
	return mustDefault().Alloc(size)
}

// Free releases a payload to the default heap. See (*Heap).Free.
func Free(block []byte) {
	mustDefault().Free(block)
}

// Validate checks the default heap's invariants. See (*Heap).Validate.
func Validate() {
	mustDefault().Validate()
}

// Dump prints the default heap's block list to w. See (*Heap).Dump.
func Dump(w io.Writer) {
	mustDefault().Dump(w)
}

// Reset returns the default heap to its initial state. See (*Heap).Reset.
func Reset() {
	mustDefault().Reset()
}
