// Package model_selection provides cross-validation splitters.
//
// Splitters produce index folds over a table, never copies of the data.
// All splitters are plain value types with exported fields and are gob
// registered, so a search configuration carrying one can cross an engine
// boundary intact. Splitting is fully deterministic: the same data, seed and
// parameters always produce the same folds.
package model_selection

import (
	"encoding/gob"
	"fmt"
	"math/rand/v2"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/tabular"
)

func init() {
	gob.Register(KFold{})
	gob.Register(StratifiedKFold{})
	gob.Register(TrainValidationSplitter{})
}

// Fold is a single train/test index split.
type Fold struct {
	Train []int
	Test  []int
}

// Splitter produces cross-validation folds for a dataset.
type Splitter interface {
	// Split returns the folds for the given data.
	Split(X *tabular.Table, y *tabular.Series) ([]Fold, error)
	// NSplits returns how many folds Split produces.
	NSplits() int
}

// KFold splits samples into k consecutive folds, optionally shuffling first.
type KFold struct {
	Splits  int
	Shuffle bool
	Seed    int64
}

// NSplits returns the number of folds.
func (k KFold) NSplits() int {
	return k.Splits
}

// Split generates train/test indices for each fold.
func (k KFold) Split(X *tabular.Table, _ *tabular.Series) ([]Fold, error) {
	if k.Splits < 2 {
		return nil, errors.NewValueError("KFold.Split", "n_splits must be at least 2")
	}
	nSamples := X.NumRows()
	if nSamples < k.Splits {
		return nil, errors.NewValueError("KFold.Split",
			fmt.Sprintf("n_splits=%d cannot be greater than the number of samples=%d", k.Splits, nSamples))
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	if k.Shuffle {
		r := rand.New(rand.NewPCG(uint64(k.Seed), uint64(k.Seed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	// The first nSamples % Splits folds get one extra sample.
	folds := make([]Fold, k.Splits)
	foldSize := nSamples / k.Splits
	remainder := nSamples % k.Splits

	currentIdx := 0
	for i := 0; i < k.Splits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		test := make([]int, testSize)
		copy(test, indices[currentIdx:currentIdx+testSize])

		inTest := make(map[int]bool, testSize)
		for _, idx := range test {
			inTest[idx] = true
		}
		train := make([]int, 0, nSamples-testSize)
		for _, idx := range indices {
			if !inTest[idx] {
				train = append(train, idx)
			}
		}

		folds[i] = Fold{Train: train, Test: test}
		currentIdx += testSize
	}

	return folds, nil
}

// StratifiedKFold splits samples into k folds preserving per-class
// proportions. The target supplies the class labels.
type StratifiedKFold struct {
	Splits  int
	Shuffle bool
	Seed    int64
}

// NSplits returns the number of folds.
func (s StratifiedKFold) NSplits() int {
	return s.Splits
}

// Split generates stratified train/test indices for each fold.
func (s StratifiedKFold) Split(X *tabular.Table, y *tabular.Series) ([]Fold, error) {
	if s.Splits < 2 {
		return nil, errors.NewValueError("StratifiedKFold.Split", "n_splits must be at least 2")
	}
	if y == nil {
		return nil, errors.NewValueError("StratifiedKFold.Split", "target is required for stratification")
	}
	nSamples := X.NumRows()
	if y.Len() != nSamples {
		return nil, errors.NewDimensionError("StratifiedKFold.Split", nSamples, y.Len(), 0)
	}

	// Group indices by class. Classes are walked in sorted order so fold
	// assignment does not depend on map iteration.
	classIndices := make(map[float64][]int)
	for i := 0; i < nSamples; i++ {
		label := y.At(i)
		classIndices[label] = append(classIndices[label], i)
	}
	classes := y.Unique()

	for _, class := range classes {
		if len(classIndices[class]) < s.Splits {
			return nil, errors.NewValueError("StratifiedKFold.Split",
				fmt.Sprintf("the least populated class has %d members, fewer than n_splits=%d", len(classIndices[class]), s.Splits))
		}
	}

	if s.Shuffle {
		r := rand.New(rand.NewPCG(uint64(s.Seed), uint64(s.Seed)))
		for _, class := range classes {
			indices := classIndices[class]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]Fold, s.Splits)

	// Distribute each class across folds, spreading remainders over the
	// leading folds.
	for _, class := range classes {
		indices := classIndices[class]
		nClass := len(indices)
		foldSize := nClass / s.Splits
		remainder := nClass % s.Splits

		currentIdx := 0
		for i := 0; i < s.Splits; i++ {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			folds[i].Test = append(folds[i].Test, indices[currentIdx:currentIdx+testSize]...)
			currentIdx += testSize
		}
	}

	// Build train sets (all samples not in test).
	for i := range folds {
		inTest := make(map[int]bool, len(folds[i].Test))
		for _, idx := range folds[i].Test {
			inTest[idx] = true
		}
		train := make([]int, 0, nSamples-len(folds[i].Test))
		for j := 0; j < nSamples; j++ {
			if !inTest[j] {
				train = append(train, j)
			}
		}
		folds[i].Train = train
	}

	return folds, nil
}

// TrainValidationSplit produces a single shuffled train/validation split.
// testSize is the validation fraction in (0, 1); stratify preserves class
// proportions using y.
func TrainValidationSplit(X *tabular.Table, y *tabular.Series, testSize float64, stratify bool, seed int64) (Fold, error) {
	if testSize <= 0 || testSize >= 1 {
		return Fold{}, errors.NewValueError("TrainValidationSplit", "test_size must be within (0, 1)")
	}
	nSamples := X.NumRows()
	if nSamples < 2 {
		return Fold{}, errors.NewValueError("TrainValidationSplit", "at least 2 samples are required")
	}

	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

	if !stratify {
		indices := make([]int, nSamples)
		for i := range indices {
			indices[i] = i
		}
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		nTest := int(float64(nSamples)*testSize + 0.5)
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= nSamples {
			nTest = nSamples - 1
		}
		return Fold{Train: indices[nTest:], Test: indices[:nTest]}, nil
	}

	if y == nil {
		return Fold{}, errors.NewValueError("TrainValidationSplit", "target is required for stratification")
	}
	if y.Len() != nSamples {
		return Fold{}, errors.NewDimensionError("TrainValidationSplit", nSamples, y.Len(), 0)
	}

	classIndices := make(map[float64][]int)
	for i := 0; i < nSamples; i++ {
		classIndices[y.At(i)] = append(classIndices[y.At(i)], i)
	}

	var fold Fold
	for _, class := range y.Unique() {
		indices := classIndices[class]
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		nTest := int(float64(len(indices))*testSize + 0.5)
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= len(indices) {
			nTest = len(indices) - 1
		}
		fold.Test = append(fold.Test, indices[:nTest]...)
		fold.Train = append(fold.Train, indices[nTest:]...)
	}
	return fold, nil
}

// TrainValidationSplitter wraps TrainValidationSplit as a single-fold
// Splitter, mainly for quick evaluations on large datasets.
type TrainValidationSplitter struct {
	TestSize float64
	Stratify bool
	Seed     int64
}

// NSplits returns 1.
func (TrainValidationSplitter) NSplits() int {
	return 1
}

// Split returns the single train/validation fold.
func (t TrainValidationSplitter) Split(X *tabular.Table, y *tabular.Series) ([]Fold, error) {
	testSize := t.TestSize
	if testSize == 0 {
		testSize = 0.25
	}
	fold, err := TrainValidationSplit(X, y, testSize, t.Stratify, t.Seed)
	if err != nil {
		return nil, err
	}
	return []Fold{fold}, nil
}
