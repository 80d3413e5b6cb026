// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import "github.com/bits-and-blooms/bitset"

// Mask has one bit per sample which is set once the sample has a value.
// Bits are never cleared. Callers keep sample indices in range.
type Mask struct {
	bits    *bitset.BitSet
	samples int
}

func NewMask(samples int) *Mask {
	return &Mask{bits: bitset.New(uint(samples)), samples: samples}
}

func (m *Mask) Samples() int {
	return m.samples
}

func (m *Mask) Set(sample int) {
	m.bits.Set(uint(sample))
}

func (m *Mask) Get(sample int) bool {
	return m.bits.Test(uint(sample))
}

// Present counts samples with a value.
func (m *Mask) Present() int {
	return int(m.bits.Count())
}

// Optional reports whether any sample is missing.
func (m *Mask) Optional() bool {
	return m.Present() != m.samples
}

// Grow extends the mask. New samples are missing.
func (m *Mask) Grow(samples int) {
	if samples > m.samples {
		m.samples = samples
	}
}
