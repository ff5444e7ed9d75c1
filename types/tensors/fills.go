/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package tensors

import (
	"math"
	"math/rand/v2"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// Fill operations initialize the contents of a Float32 tensor during graph
// construction. They all take the random generator explicitly: there is no
// package-level generator state, so two builds from the same seed produce
// identical tensors.

// FillConstant sets every element to the given value.
func (t *Tensor) FillConstant(value float32) *Tensor {
	t.assertFillable()
	for ii := range t.flatF32 {
		t.flatF32[ii] = value
	}
	return t
}

// FillUniform sets every element to an independent uniform sample in [low, high).
func (t *Tensor) FillUniform(low, high float64, rng *rand.Rand) *Tensor {
	t.assertFillable()
	for ii := range t.flatF32 {
		t.flatF32[ii] = float32(low + rng.Float64()*(high-low))
	}
	return t
}

// FillXavier fills with a variance-scaled uniform distribution in
// [-sqrt(3/fanIn), sqrt(3/fanIn)], the scaling used for inputs of the swept
// networks.
func (t *Tensor) FillXavier(fanIn float64, rng *rand.Rand) *Tensor {
	if fanIn <= 0 {
		exceptions.Panicf("Tensor.FillXavier: fanIn must be positive, got %g", fanIn)
	}
	limit := math.Sqrt(3.0 / fanIn)
	return t.FillUniform(-limit, limit, rng)
}

func (t *Tensor) assertFillable() {
	if t.DType() != dtypes.Float32 {
		exceptions.Panicf("tensor fills only operate on Float32 tensors, got %s", t.shape)
	}
}
