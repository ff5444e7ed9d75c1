// Package kernels holds the float32 operator kernels shared by the execution
// backends.
//
// Every kernel accumulates in float64 and rounds once when storing the output
// element. This keeps the arithmetic independent of how a backend partitions
// the work: any two backends that evaluate the same elements produce
// bit-identical results, so observed differences between executions come only
// from the numeric representation of the tensors, never from summation order.
//
// Kernels take a half-open range of "rows" (the outermost output axis being
// partitioned) so the caller chooses its own scheduling: the interpreter
// backend runs the full range in one call, the parallel backend splits it
// across goroutines.
package kernels

import (
	"golang.org/x/exp/constraints"
)

// ConvParams describes a 2D convolution over NHWC input with an
// {outChannels, kernel, kernel, inChannels} filter.
type ConvParams struct {
	Batch       int
	InSize      int // Spatial size of the (square) input.
	InChannels  int
	Kernel      int
	Stride      int
	Pad         int
	OutChannels int
}

// OutSize returns the output spatial size: (in + 2*pad - kernel)/stride + 1.
func (p ConvParams) OutSize() int {
	return (p.InSize+2*p.Pad-p.Kernel)/p.Stride + 1
}

// Rows returns the number of partitionable output rows (batch x output height).
func (p ConvParams) Rows() int { return p.Batch * p.OutSize() }

// Conv2D computes output rows [rowFrom, rowTo) of a 2D convolution.
//
// input is {batch, inSize, inSize, inChannels}, filter is
// {outChannels, kernel, kernel, inChannels}, bias is {outChannels} and output
// is {batch, outSize, outSize, outChannels}, all flat in row-major order.
func Conv2D(output, input, filter, bias []float32, p ConvParams, rowFrom, rowTo int) {
	outSize := p.OutSize()
	for row := rowFrom; row < rowTo; row++ {
		b := row / outSize
		oh := row % outSize
		for ow := 0; ow < outSize; ow++ {
			for oc := 0; oc < p.OutChannels; oc++ {
				acc := float64(bias[oc])
				for kh := 0; kh < p.Kernel; kh++ {
					ih := oh*p.Stride - p.Pad + kh
					if ih < 0 || ih >= p.InSize {
						continue
					}
					for kw := 0; kw < p.Kernel; kw++ {
						iw := ow*p.Stride - p.Pad + kw
						if iw < 0 || iw >= p.InSize {
							continue
						}
						inBase := ((b*p.InSize+ih)*p.InSize + iw) * p.InChannels
						filterBase := ((oc*p.Kernel+kh)*p.Kernel + kw) * p.InChannels
						acc += dot(input[inBase:inBase+p.InChannels],
							filter[filterBase:filterBase+p.InChannels])
					}
				}
				output[((b*outSize+oh)*outSize+ow)*p.OutChannels+oc] = float32(acc)
			}
		}
	}
}

// BatchMatMul computes batches [batchFrom, batchTo) of lhs {n, a, z} times
// rhs {n, z, b}, storing into output {n, a, b}.
func BatchMatMul(output, lhs, rhs []float32, n, a, z, b int, batchFrom, batchTo int) {
	for batch := batchFrom; batch < batchTo; batch++ {
		lhsBase := batch * a * z
		rhsBase := batch * z * b
		outBase := batch * a * b
		for row := 0; row < a; row++ {
			for col := 0; col < b; col++ {
				acc := 0.0
				for k := 0; k < z; k++ {
					acc += float64(lhs[lhsBase+row*z+k]) * float64(rhs[rhsBase+k*b+col])
				}
				output[outBase+row*b+col] = float32(acc)
			}
		}
	}
}

// FullyConnected computes rows [rowFrom, rowTo) of input {a, z} times
// weights {z, b} plus bias {b}, storing into output {a, b}.
func FullyConnected(output, input, weights, bias []float32, a, z, b int, rowFrom, rowTo int) {
	for row := rowFrom; row < rowTo; row++ {
		for col := 0; col < b; col++ {
			acc := float64(bias[col])
			for k := 0; k < z; k++ {
				acc += float64(input[row*z+k]) * float64(weights[k*b+col])
			}
			output[row*b+col] = float32(acc)
		}
	}
}

// dot is the float64-accumulated inner product of two equal-length slices.
func dot[F constraints.Float](x, y []F) float64 {
	acc := 0.0
	for ii := range x {
		acc += float64(x[ii]) * float64(y[ii])
	}
	return acc
}
