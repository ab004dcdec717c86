package model

import (
	"math"
	"math/rand"
	"sync"
)

// RandomForest is a bagged ensemble of DecisionTrees. Classifiers average
// the trees' class probabilities; regressors average their predictions.
type RandomForest struct {
	// Hyperparameters / options
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int // 0 => sqrt(p) for classifiers, p for regressors
	Bootstrap       bool
	RandomState     int64

	// Internal state
	Trees      []*DecisionTree
	regression bool
	nFeatures  int
	nClasses   int
}

// ForestOption functional config for RandomForest
type ForestOption func(*RandomForest)

func WithNEstimators(n int) ForestOption         { return func(rf *RandomForest) { rf.NEstimators = n } }
func WithBootstrap(b bool) ForestOption          { return func(rf *RandomForest) { rf.Bootstrap = b } }
func WithForestMaxDepth(d int) ForestOption      { return func(rf *RandomForest) { rf.MaxDepth = d } }
func WithForestMaxFeatures(k int) ForestOption   { return func(rf *RandomForest) { rf.MaxFeatures = k } }
func WithForestRandomState(s int64) ForestOption { return func(rf *RandomForest) { rf.RandomState = s } }

func newRandomForest(regression bool, opts ...ForestOption) *RandomForest {
	rf := &RandomForest{
		NEstimators:     100,
		MinSamplesSplit: 2,
		Bootstrap:       true,
		regression:      regression,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// NewRandomForestClassifier initializes a classification forest.
func NewRandomForestClassifier(opts ...ForestOption) *RandomForest {
	return newRandomForest(false, opts...)
}

// NewRandomForestRegressor initializes a regression forest.
func NewRandomForestRegressor(opts ...ForestOption) *RandomForest {
	return newRandomForest(true, opts...)
}

// Fit trains the forest. Each tree gets its own generator seeded with
// RandomState+index and is stored at its index, so the fitted forest does
// not depend on goroutine scheduling.
func (rf *RandomForest) Fit(X [][]float64, y []float64) error {
	p, err := checkXY(X, y, true)
	if err != nil {
		return err
	}
	nClasses := 0
	if !rf.regression {
		if nClasses, err = classCount(y); err != nil {
			return err
		}
	}
	rf.nFeatures = p
	rf.nClasses = nClasses

	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = p
		if !rf.regression {
			maxFeatures = max(1, int(math.Sqrt(float64(p))))
		}
	}

	n := len(X)
	rf.Trees = make([]*DecisionTree, rf.NEstimators)
	var wg sync.WaitGroup
	for i := 0; i < rf.NEstimators; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			seed := rf.RandomState + int64(idx)
			treeRand := rand.New(rand.NewSource(seed))

			// index-based sampling, no copy of the data
			sampleIndices := make([]int, n)
			for j := 0; j < n; j++ {
				if rf.Bootstrap {
					sampleIndices[j] = treeRand.Intn(n)
				} else {
					sampleIndices[j] = j
				}
			}

			tree := newDecisionTree(rf.regression,
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMaxFeatures(maxFeatures),
				WithRandomState(seed),
			)
			tree.fit(X, y, sampleIndices, p, nClasses)
			rf.Trees[idx] = tree
		}(i)
	}
	wg.Wait()
	return nil
}

// Predict returns the averaged prediction of all trees.
func (rf *RandomForest) Predict(X [][]float64) ([]float64, error) {
	if len(rf.Trees) == 0 {
		return nil, ErrNotFitted
	}
	if rf.regression {
		out := make([]float64, len(X))
		for _, t := range rf.Trees {
			preds, err := t.Predict(X)
			if err != nil {
				return nil, err
			}
			for i, v := range preds {
				out[i] += v
			}
		}
		for i := range out {
			out[i] /= float64(len(rf.Trees))
		}
		return out, nil
	}

	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, p := range proba {
		out[i] = float64(argmax(p))
	}
	return out, nil
}

// PredictProba averages the class probabilities of all trees.
func (rf *RandomForest) PredictProba(X [][]float64) ([][]float64, error) {
	if len(rf.Trees) == 0 {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(X))
	for i := range out {
		out[i] = make([]float64, rf.nClasses)
	}
	for _, t := range rf.Trees {
		proba, err := t.PredictProba(X)
		if err != nil {
			return nil, err
		}
		for i, p := range proba {
			for k, v := range p {
				out[i][k] += v
			}
		}
	}
	for i := range out {
		for k := range out[i] {
			out[i][k] /= float64(len(rf.Trees))
		}
	}
	return out, nil
}
