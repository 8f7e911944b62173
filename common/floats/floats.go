// Copyright 2025 bitirme2 Authors
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

package floats

import "github.com/chewxy/math32"

// Zero fills a vector with zeros.
func Zero(a []float32) {
	for i := range a {
		a[i] = 0
	}
}

// Dot computes the dot product of two vectors.
func Dot(a, b []float32) (ret float32) {
	if len(a) != len(b) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		ret += a[i] * b[i]
	}
	return
}

// Norm computes the Euclidean norm of a vector.
func Norm(a []float32) float32 {
	return math32.Sqrt(Dot(a, a))
}

// MulConst multiplies a vector by a constant in place.
func MulConst(dst []float32, c float32) {
	for i := range dst {
		dst[i] *= c
	}
}

// MulConstTo computes dst = a * c.
func MulConstTo(a []float32, c float32, dst []float32) {
	if len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] = a[i] * c
	}
}

// MulConstAdd computes dst += a * c.
func MulConstAdd(a []float32, c float32, dst []float32) {
	if len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] += a[i] * c
	}
}

// AddTo computes dst = a + b.
func AddTo(a, b, dst []float32) {
	if len(a) != len(b) || len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] = a[i] + b[i]
	}
}

// SubTo computes dst = a - b.
func SubTo(a, b, dst []float32) {
	if len(a) != len(b) || len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] = a[i] - b[i]
	}
}

// Sum returns the sum of all elements.
func Sum(a []float32) (ret float32) {
	for i := range a {
		ret += a[i]
	}
	return
}

// Mean returns the mean of all elements, zero for an empty vector.
func Mean(a []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	return Sum(a) / float32(len(a))
}

// MatZero fills a matrix with zeros.
func MatZero(x [][]float32) {
	for i := range x {
		Zero(x[i])
	}
}
