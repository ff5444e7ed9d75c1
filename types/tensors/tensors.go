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

// Package tensors implements the local (host memory) dense Tensor used to feed
// and read back values from computation graphs.
//
// Three element representations are supported, one per precision mode used by
// the sweep harness: float32 (the reference representation), float16
// (github.com/x448/float16) and int8 quantized with a per-tensor scale and
// zero-point.
//
// Tensors are created at float32, filled by one of the fill operations (see
// fills.go), and converted to the candidate representation with ConvertTo.
// After conversion a tensor is treated as immutable.
package tensors

import (
	"fmt"
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/opsweep/types/shapes"
	"github.com/x448/float16"
	"slices"
)

// Tensor is a dense n-dimensional array of one of the supported dtypes.
//
// The flat data is stored in row-major order. For the Int8 dtype the scale and
// zero-point used to quantize the original float values are carried along, so
// the tensor can be read back (dequantized) in float without extra context.
type Tensor struct {
	shape shapes.Shape

	flatF32 []float32
	flatF16 []float16.Float16
	flatI8  []int8

	// Quantization parameters, meaningful only when shape.DType == Int8:
	// float = scale * (quantized - zeroPoint).
	scale     float64
	zeroPoint int8
}

// FromShape returns a Tensor with the given shape, with the data initialized with zeros.
func FromShape(shape shapes.Shape) *Tensor {
	t := &Tensor{shape: shape}
	switch shape.DType {
	case dtypes.Float32:
		t.flatF32 = make([]float32, shape.Size())
	case dtypes.Float16:
		t.flatF16 = make([]float16.Float16, shape.Size())
	case dtypes.Int8:
		t.flatI8 = make([]int8, shape.Size())
		t.scale = 1
	default:
		exceptions.Panicf("tensors.FromShape: unsupported dtype %s", shape.DType)
	}
	return t
}

// FromFlatDataAndDimensions builds a float32 tensor from the given flat values,
// which are copied.
func FromFlatDataAndDimensions(flat []float32, dimensions ...int) *Tensor {
	shape := shapes.Make(dtypes.Float32, dimensions...)
	if len(flat) != shape.Size() {
		exceptions.Panicf("tensors.FromFlatDataAndDimensions: %d values given for shape %s", len(flat), shape)
	}
	t := FromShape(shape)
	copy(t.flatF32, flat)
	return t
}

// Shape of the tensor.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// DType of the tensor, a shortcut to Tensor.Shape().DType.
func (t *Tensor) DType() dtypes.DType { return t.shape.DType }

// Size is the number of elements, a shortcut to Tensor.Shape().Size().
func (t *Tensor) Size() int { return t.shape.Size() }

// Float32s returns the flat data of a Float32 tensor. It panics for other dtypes.
// The slice is owned by the tensor.
func (t *Tensor) Float32s() []float32 {
	if t.DType() != dtypes.Float32 {
		exceptions.Panicf("Tensor.Float32s: tensor is %s", t.shape)
	}
	return t.flatF32
}

// Float16s returns the flat data of a Float16 tensor. It panics for other dtypes.
func (t *Tensor) Float16s() []float16.Float16 {
	if t.DType() != dtypes.Float16 {
		exceptions.Panicf("Tensor.Float16s: tensor is %s", t.shape)
	}
	return t.flatF16
}

// Int8s returns the flat quantized data of an Int8 tensor. It panics for other dtypes.
func (t *Tensor) Int8s() []int8 {
	if t.DType() != dtypes.Int8 {
		exceptions.Panicf("Tensor.Int8s: tensor is %s", t.shape)
	}
	return t.flatI8
}

// QuantizationParams returns the scale and zero-point of an Int8 tensor.
func (t *Tensor) QuantizationParams() (scale float64, zeroPoint int8) {
	if t.DType() != dtypes.Int8 {
		exceptions.Panicf("Tensor.QuantizationParams: tensor is %s", t.shape)
	}
	return t.scale, t.zeroPoint
}

// Float64s returns a copy of the tensor data widened to float64, dequantizing
// with the tensor's own scale/zero-point when quantized. This is the common
// representation used to compare outputs produced at different precisions.
func (t *Tensor) Float64s() []float64 {
	flat := make([]float64, t.Size())
	switch t.DType() {
	case dtypes.Float32:
		for ii, v := range t.flatF32 {
			flat[ii] = float64(v)
		}
	case dtypes.Float16:
		for ii, v := range t.flatF16 {
			flat[ii] = float64(v.Float32())
		}
	case dtypes.Int8:
		for ii, v := range t.flatI8 {
			flat[ii] = t.scale * float64(v-t.zeroPoint)
		}
	default:
		exceptions.Panicf("Tensor.Float64s: unsupported dtype %s", t.shape.DType)
	}
	return flat
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		shape:     t.shape.Clone(),
		flatF32:   slices.Clone(t.flatF32),
		flatF16:   slices.Clone(t.flatF16),
		flatI8:    slices.Clone(t.flatI8),
		scale:     t.scale,
		zeroPoint: t.zeroPoint,
	}
}

// ConvertTo returns a new tensor with the same values represented with the
// given dtype. Converting to the tensor's own dtype returns a clone.
//
// Float32 -> Float16 rounds each element to the nearest float16.
// Float32 -> Int8 quantizes symmetrically: scale = maxAbs/127, zeroPoint = 0,
// so a constant-filled tensor is represented exactly (up to the scale
// rounding) and zero is always exact.
// Float16/Int8 -> Float32 widens (dequantizes) exactly.
func (t *Tensor) ConvertTo(dtype dtypes.DType) *Tensor {
	if dtype == t.DType() {
		return t.Clone()
	}
	switch {
	case t.DType() == dtypes.Float32 && dtype == dtypes.Float16:
		t2 := FromShape(t.shape.WithDType(dtypes.Float16))
		for ii, v := range t.flatF32 {
			t2.flatF16[ii] = float16.Fromfloat32(v)
		}
		return t2
	case t.DType() == dtypes.Float32 && dtype == dtypes.Int8:
		return t.quantize()
	case t.DType() == dtypes.Float16 && dtype == dtypes.Float32:
		t2 := FromShape(t.shape.WithDType(dtypes.Float32))
		for ii, v := range t.flatF16 {
			t2.flatF32[ii] = v.Float32()
		}
		return t2
	case t.DType() == dtypes.Int8 && dtype == dtypes.Float32:
		t2 := FromShape(t.shape.WithDType(dtypes.Float32))
		for ii, v := range t.flatI8 {
			t2.flatF32[ii] = float32(t.scale * float64(v-t.zeroPoint))
		}
		return t2
	}
	exceptions.Panicf("Tensor.ConvertTo: conversion %s -> %s not supported", t.DType(), dtype)
	return nil
}

// quantize maps a float32 tensor to int8 with a symmetric per-tensor scale.
func (t *Tensor) quantize() *Tensor {
	maxAbs := 0.0
	for _, v := range t.flatF32 {
		maxAbs = math.Max(maxAbs, math.Abs(float64(v)))
	}
	scale := maxAbs / 127.0
	if scale == 0 {
		// All-zeros tensor, any scale represents it exactly.
		scale = 1
	}
	t2 := FromShape(t.shape.WithDType(dtypes.Int8))
	t2.scale = scale
	t2.zeroPoint = 0
	for ii, v := range t.flatF32 {
		q := math.RoundToEven(float64(v) / scale)
		q = math.Min(math.Max(q, -127), 127)
		t2.flatI8[ii] = int8(q)
	}
	return t2
}

// String prints the shape and up to a handful of leading values.
func (t *Tensor) String() string {
	const maxValues = 8
	flat := t.Float64s()
	if len(flat) > maxValues {
		return fmt.Sprintf("%s: %v...", t.shape, flat[:maxValues])
	}
	return fmt.Sprintf("%s: %v", t.shape, flat)
}
