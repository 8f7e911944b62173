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

package model

import (
	"context"
	"math/rand"

	"github.com/SerberkSagnak/bitirme2/common/floats"
	"github.com/SerberkSagnak/bitirme2/dataset"
	"github.com/bits-and-blooms/bitset"
	"github.com/juju/errors"
)

// SVD learns a low-rank decomposition of the rating matrix and scores items
// by the inner product of user and item factors. Unobserved cells are imputed
// as zero for the decomposition only. This is a modeling convenience, not a
// statement that missing ratings are zero: it biases factors toward treating
// the unobserved as disliked, so reconstructed values at or below zero are
// read as "no signal" rather than as negative preference.
type SVD struct {
	BaseModel
	matrix          *dataset.Matrix
	userFactor      [][]float32 // p_u
	itemFactor      [][]float32 // q_i
	userPredictable *bitset.BitSet
	itemPredictable *bitset.BitSet
	nFactors        int
	nEpochs         int
	lr              float32
	reg             float32
	randState       int64
}

func NewSVD(m *dataset.Matrix, params Params) *SVD {
	svd := &SVD{matrix: m}
	svd.SetParams(params)
	svd.nFactors = params.GetInt(NFactors, 50)
	svd.nEpochs = params.GetInt(NEpochs, 20)
	svd.lr = params.GetFloat32(Lr, 0.01)
	svd.reg = params.GetFloat32(Reg, 0.02)
	svd.randState = params.GetInt64(RandomState, 0)
	return svd
}

func (svd *SVD) Name() Algorithm {
	return Factor
}

// Fit runs stochastic gradient descent over the zero-filled matrix. The rank
// must not exceed either matrix dimension or the decomposition is ill-posed.
func (svd *SVD) Fit(ctx context.Context) error {
	numUsers := svd.matrix.CountUsers()
	numItems := svd.matrix.CountItems()
	if svd.nFactors > numUsers || svd.nFactors > numItems {
		return errors.NotValidf("rank %d for %d users and %d items", svd.nFactors, numUsers, numItems)
	}
	rng := rand.New(rand.NewSource(svd.randState))
	newFactor := func(count int) [][]float32 {
		factor := make([][]float32, count)
		for i := range factor {
			factor[i] = make([]float32, svd.nFactors)
			for j := range factor[i] {
				factor[i][j] = float32(rng.NormFloat64()) * 0.1
			}
		}
		return factor
	}
	svd.userFactor = newFactor(numUsers)
	svd.itemFactor = newFactor(numItems)
	svd.userPredictable = bitset.New(uint(numUsers)).Complement()
	svd.itemPredictable = bitset.New(uint(numItems)).Complement()
	buf := make([]float32, svd.nFactors)
	row := make([]float32, numItems)
	for epoch := 0; epoch < svd.nEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return errors.Trace(err)
		}
		for userIndex := int32(0); userIndex < int32(numUsers); userIndex++ {
			floats.Zero(row)
			items, ratings := svd.matrix.UserRowByIndex(userIndex)
			for i, itemIndex := range items {
				row[itemIndex] = ratings[i]
			}
			userFactor := svd.userFactor[userIndex]
			for itemIndex := 0; itemIndex < numItems; itemIndex++ {
				itemFactor := svd.itemFactor[itemIndex]
				grad := row[itemIndex] - floats.Dot(userFactor, itemFactor)
				floats.MulConstTo(itemFactor, grad, buf)
				floats.MulConstAdd(userFactor, -svd.reg, buf)
				floats.MulConstAdd(itemFactor, -svd.reg*svd.lr, itemFactor)
				floats.MulConstAdd(userFactor, grad*svd.lr, itemFactor)
				floats.MulConstAdd(buf, svd.lr, userFactor)
			}
		}
	}
	return nil
}

// predictable reports whether both sides have trained factors.
func (svd *SVD) predictable(userIndex, itemIndex int32) bool {
	return svd.userFactor != nil &&
		userIndex != dataset.NotId && itemIndex != dataset.NotId &&
		svd.userPredictable.Test(uint(userIndex)) &&
		svd.itemPredictable.Test(uint(itemIndex))
}

func (svd *SVD) Score(userId int64, n int) []Scored {
	userIndex := svd.matrix.UserDict().Index(userId)
	if userIndex == dataset.NotId || svd.userFactor == nil {
		return nil
	}
	items, _ := svd.matrix.UserRowByIndex(userIndex)
	rated := make(map[int32]struct{}, len(items))
	for _, itemIndex := range items {
		rated[itemIndex] = struct{}{}
	}
	var scored []Scored
	for itemIndex := int32(0); itemIndex < int32(svd.matrix.CountItems()); itemIndex++ {
		if _, exist := rated[itemIndex]; exist {
			continue
		}
		if !svd.predictable(userIndex, itemIndex) {
			continue
		}
		// reconstructions at or below zero carry no signal under zero imputation
		prediction := floats.Dot(svd.userFactor[userIndex], svd.itemFactor[itemIndex])
		if prediction > 0 {
			itemId, _ := svd.matrix.ItemDict().Value(itemIndex)
			scored = append(scored, Scored{ItemId: itemId, Score: prediction})
		}
	}
	sortScored(scored)
	return truncate(scored, n)
}

func (svd *SVD) Predict(userId, itemId int64) (float32, bool) {
	userIndex := svd.matrix.UserDict().Index(userId)
	itemIndex := svd.matrix.ItemDict().Index(itemId)
	if !svd.predictable(userIndex, itemIndex) {
		return 0, false
	}
	prediction := floats.Dot(svd.userFactor[userIndex], svd.itemFactor[itemIndex])
	if prediction <= 0 {
		return 0, false
	}
	return prediction, true
}
