package model

import (
	"math"
	"math/rand"
	"sort"
)

// ---------------------------
// Types & options
// ---------------------------

// DecisionTree is a CART tree. As a classifier it splits on gini (or
// entropy) impurity and predicts the majority class of a leaf; as a
// regressor it splits on squared error and predicts the leaf mean.
type DecisionTree struct {
	// Hyperparameters / options
	MaxDepth        int    // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit int    // minimum samples to attempt a split
	MinSamplesLeaf  int    // minimum samples required in each leaf
	Criterion       string // "gini" (default) or "entropy"; ignored by regressors
	MaxFeatures     int    // 0 => all features, >0 => features sampled per node
	RandomState     int64  // seed for the per-node feature permutation

	// internals
	regression bool
	nClasses   int
	nFeatures  int
	root       *dtNode
}

// dtNode holds a node in the tree.
type dtNode struct {
	isLeaf      bool
	feature     int
	threshold   float64 // x <= threshold => left
	missingLeft bool    // where NaN values go
	left        *dtNode
	right       *dtNode

	n     int
	value []float64 // class probabilities, or a single mean for regression
}

// Option functional config
type Option func(*DecisionTree)

func WithMaxDepth(d int) Option         { return func(t *DecisionTree) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option  { return func(t *DecisionTree) { t.MinSamplesSplit = n } }
func WithMinSamplesLeaf(n int) Option   { return func(t *DecisionTree) { t.MinSamplesLeaf = n } }
func WithCriterion(c string) Option     { return func(t *DecisionTree) { t.Criterion = c } }
func WithMaxFeatures(k int) Option      { return func(t *DecisionTree) { t.MaxFeatures = k } }
func WithRandomState(seed int64) Option { return func(t *DecisionTree) { t.RandomState = seed } }

func newDecisionTree(regression bool, opts ...Option) *DecisionTree {
	t := &DecisionTree{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
		regression:      regression,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// NewDecisionTreeClassifier returns a classifier with sensible defaults.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTree {
	return newDecisionTree(false, opts...)
}

// NewDecisionTreeRegressor returns a regressor with sensible defaults.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTree {
	return newDecisionTree(true, opts...)
}

// ---------------------------
// Public API
// ---------------------------

// Fit trains the tree on X (n x p) and y. Classifier labels are class
// indices. Missing feature values must be math.NaN().
func (t *DecisionTree) Fit(X [][]float64, y []float64) error {
	p, err := checkXY(X, y, true)
	if err != nil {
		return err
	}
	nClasses := 0
	if !t.regression {
		if nClasses, err = classCount(y); err != nil {
			return err
		}
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	t.fit(X, y, idx, p, nClasses)
	return nil
}

// fit grows the tree over the rows listed in idx, which may repeat rows
// (bootstrap samples).
func (t *DecisionTree) fit(X [][]float64, y []float64, idx []int, p, nClasses int) {
	t.nFeatures = p
	t.nClasses = nClasses
	rnd := rand.New(rand.NewSource(t.RandomState))
	t.root = t.buildNode(X, y, idx, 0, rnd)
}

// Predict returns class indices (classifier) or values (regressor).
func (t *DecisionTree) Predict(X [][]float64) ([]float64, error) {
	if t.root == nil {
		return nil, ErrNotFitted
	}
	if _, err := checkX(X, t.nFeatures, true); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, row := range X {
		v := t.leaf(row).value
		if t.regression {
			out[i] = v[0]
		} else {
			out[i] = float64(argmax(v))
		}
	}
	return out, nil
}

// PredictProba returns the per-class probability vectors for rows in X.
func (t *DecisionTree) PredictProba(X [][]float64) ([][]float64, error) {
	if t.root == nil {
		return nil, ErrNotFitted
	}
	if _, err := checkX(X, t.nFeatures, true); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = t.leaf(row).value
	}
	return out, nil
}

// Depth returns the depth of the deepest leaf.
func (t *DecisionTree) Depth() int { return depth(t.root) }

func depth(n *dtNode) int {
	if n == nil || n.isLeaf {
		return 0
	}
	return 1 + max(depth(n.left), depth(n.right))
}

// ---------------------------
// Internal builders & helpers
// ---------------------------

// splitResult holds the best split found for a node.
type splitResult struct {
	gain        float64
	feature     int
	threshold   float64
	missingLeft bool
}

// pair is a value of one feature and the label of its row.
type pair struct {
	v float64
	y float64
}

// newAcc returns an empty accumulator. Regression targets are accumulated
// relative to shift, normally the node mean, to keep the variance accurate.
func (t *DecisionTree) newAcc(shift float64) *acc {
	a := &acc{regression: t.regression, entropy: t.Criterion == "entropy", shift: shift}
	if !t.regression {
		a.counts = make([]float64, t.nClasses)
	}
	return a
}

func (t *DecisionTree) buildNode(X [][]float64, y []float64, idx []int, depth int, rnd *rand.Rand) *dtNode {
	shift, constant := 0.0, true
	if len(idx) > 0 {
		lo, hi, sum := y[idx[0]], y[idx[0]], 0.0
		for _, ii := range idx {
			sum += y[ii]
			lo, hi = math.Min(lo, y[ii]), math.Max(hi, y[ii])
		}
		constant = lo == hi
		if t.regression {
			shift = sum / float64(len(idx))
		}
	}
	total := t.newAcc(shift)
	for _, ii := range idx {
		total.add(y[ii])
	}
	node := &dtNode{n: len(idx), value: total.value(), isLeaf: true}

	parentImpurity := total.impurity()
	if constant ||
		len(idx) < t.MinSamplesSplit ||
		len(idx) < 2*t.MinSamplesLeaf ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return node
	}

	// determine features to try
	featIndices := rnd.Perm(t.nFeatures)
	if t.MaxFeatures > 0 && t.MaxFeatures < t.nFeatures {
		featIndices = featIndices[:t.MaxFeatures]
	}

	best := splitResult{feature: -1, gain: math.Inf(-1)}
	for _, f := range featIndices {
		r := t.findBestSplitForFeature(X, y, idx, f, parentImpurity, shift)
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}
	if best.feature < 0 {
		return node
	}

	var leftIdx, rightIdx []int
	for _, ii := range idx {
		v := X[ii][best.feature]
		if math.IsNaN(v) {
			if best.missingLeft {
				leftIdx = append(leftIdx, ii)
			} else {
				rightIdx = append(rightIdx, ii)
			}
		} else if v <= best.threshold {
			leftIdx = append(leftIdx, ii)
		} else {
			rightIdx = append(rightIdx, ii)
		}
	}

	node.isLeaf = false
	node.feature = best.feature
	node.threshold = best.threshold
	node.missingLeft = best.missingLeft
	node.left = t.buildNode(X, y, leftIdx, depth+1, rnd)
	node.right = t.buildNode(X, y, rightIdx, depth+1, rnd)
	return node
}

// findBestSplitForFeature scans the sorted values of feature f once, moving
// rows from the right accumulator to the left one. Missing values are tried
// on both sides of every threshold.
func (t *DecisionTree) findBestSplitForFeature(X [][]float64, y []float64, idx []int, f int, parentImpurity, shift float64) splitResult {
	result := splitResult{feature: -1, gain: math.Inf(-1)}

	valid := make([]pair, 0, len(idx))
	nans := t.newAcc(shift)
	for _, ii := range idx {
		v := X[ii][f]
		if math.IsNaN(v) {
			nans.add(y[ii])
			continue
		}
		valid = append(valid, pair{v, y[ii]})
	}
	if len(valid) < 2 {
		return result
	}
	sort.SliceStable(valid, func(a, b int) bool { return valid[a].v < valid[b].v })

	left := t.newAcc(shift)
	right := t.newAcc(shift)
	for _, pv := range valid {
		right.add(pv.y)
	}
	n := float64(len(idx))

	try := func(l, r *acc, thr float64, missingLeft bool) {
		if l.n < t.MinSamplesLeaf || r.n < t.MinSamplesLeaf {
			return
		}
		weighted := (float64(l.n)/n)*l.impurity() + (float64(r.n)/n)*r.impurity()
		gain := parentImpurity - weighted
		if gain > result.gain {
			result = splitResult{gain: gain, feature: f, threshold: thr, missingLeft: missingLeft}
		}
	}

	for s := 1; s < len(valid); s++ {
		left.add(valid[s-1].y)
		right.remove(valid[s-1].y)
		if valid[s].v == valid[s-1].v {
			continue
		}
		thr := valid[s-1].v/2 + valid[s].v/2
		if thr >= valid[s].v || math.IsInf(thr, 0) {
			thr = valid[s-1].v
		}
		if nans.n == 0 {
			// unseen missing values follow the larger child
			try(left, right, thr, left.n >= right.n)
			continue
		}
		try(left.merged(nans), right, thr, true)
		try(left, right.merged(nans), thr, false)
	}
	return result
}

func (t *DecisionTree) leaf(x []float64) *dtNode {
	node := t.root
	for !node.isLeaf {
		val := x[node.feature]
		switch {
		case math.IsNaN(val):
			if node.missingLeft {
				node = node.left
			} else {
				node = node.right
			}
		case val <= node.threshold:
			node = node.left
		default:
			node = node.right
		}
	}
	return node
}

// ---------------------------
// Impurity accumulator
// ---------------------------

// acc accumulates the labels of one side of a candidate split.
type acc struct {
	regression bool
	entropy    bool
	n          int
	counts     []float64 // classification
	shift      float64   // regression: values are stored as y - shift
	sum, sumSq float64
}

func (a *acc) add(y float64) {
	a.n++
	if a.regression {
		d := y - a.shift
		a.sum += d
		a.sumSq += d * d
		return
	}
	a.counts[int(y)]++
}

func (a *acc) remove(y float64) {
	a.n--
	if a.regression {
		d := y - a.shift
		a.sum -= d
		a.sumSq -= d * d
		return
	}
	a.counts[int(y)]--
}

func (a *acc) merged(b *acc) *acc {
	m := &acc{regression: a.regression, entropy: a.entropy, shift: a.shift, n: a.n + b.n, sum: a.sum + b.sum, sumSq: a.sumSq + b.sumSq}
	if !a.regression {
		m.counts = make([]float64, len(a.counts))
		for i := range m.counts {
			m.counts[i] = a.counts[i] + b.counts[i]
		}
	}
	return m
}

func (a *acc) impurity() float64 {
	if a.n == 0 {
		return 0
	}
	n := float64(a.n)
	if a.regression {
		mean := a.sum / n
		v := a.sumSq/n - mean*mean
		if v < 0 {
			return 0
		}
		return v
	}
	res := 0.0
	for _, c := range a.counts {
		if c == 0 {
			continue
		}
		p := c / n
		if a.entropy {
			res -= p * math.Log2(p)
		} else {
			res += p * (1 - p)
		}
	}
	return res
}

// value is the leaf prediction: class probabilities or the mean.
func (a *acc) value() []float64 {
	if a.regression {
		if a.n == 0 {
			return []float64{a.shift}
		}
		return []float64{a.shift + a.sum/float64(a.n)}
	}
	p := make([]float64, len(a.counts))
	if a.n == 0 {
		return p
	}
	for i, c := range a.counts {
		p[i] = c / float64(a.n)
	}
	return p
}
