// Package iforest implements the Isolation Forest algorithm for anomaly detection.
package iforest

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math"
	"math/rand"

	"github.com/securetender/bidguard/pkg/detectors"
)

var _ detectors.Detector = (*IsolationForest)(nil)

// IsolationForest implements unsupervised anomaly detection using isolation trees.
//
// It performs no locking of its own; callers must serialize a Fit against
// concurrent Score/DecisionFunction calls on the same instance.
type IsolationForest struct {
	// Configuration
	nTrees        int
	sampleSize    int
	contamination float64
	maxDepth      int
	rng           *rand.Rand
	splitWeights  []float64
	weightTotal   float64

	// Trained model
	trees   []*Tree
	offset  float64
	trained bool

	// Statistics from training
	avgPathLength float64
}

// Tree represents a single isolation tree.
type Tree struct {
	Root *Node
}

// Node is a node in an isolation tree. Fields are exported for gob encoding.
type Node struct {
	// Split parameters (for internal nodes)
	SplitFeature int
	SplitValue   float64

	// Observed range of the split feature over this node's samples. A scored
	// sample outside it is isolated by this split.
	Min float64
	Max float64

	// Children
	Left  *Node
	Right *Node

	// Leaf information
	Size int // number of samples that reached this leaf
}

// Option configures an IsolationForest.
type Option func(*IsolationForest)

// WithTrees sets the number of isolation trees.
func WithTrees(n int) Option {
	return func(f *IsolationForest) {
		f.nTrees = n
	}
}

// WithSampleSize sets the subsample size for each tree.
func WithSampleSize(n int) Option {
	return func(f *IsolationForest) {
		f.sampleSize = n
	}
}

// WithContamination sets the expected proportion of anomalies.
func WithContamination(c float64) Option {
	return func(f *IsolationForest) {
		f.contamination = c
	}
}

// WithSeed sets the random seed for reproducibility.
func WithSeed(seed int64) Option {
	return func(f *IsolationForest) {
		f.rng = rand.New(rand.NewSource(seed))
	}
}

// WithSplitWeights biases split feature selection: feature i is picked with
// probability proportional to weights[i]. Weights whose length does not match
// the training data fall back to uniform selection.
func WithSplitWeights(weights []float64) Option {
	return func(f *IsolationForest) {
		f.splitWeights = weights
		f.weightTotal = 0
		for _, w := range weights {
			f.weightTotal += w
		}
	}
}

// New creates a new IsolationForest with the given options.
func New(opts ...Option) *IsolationForest {
	f := &IsolationForest{
		nTrees:        100,
		sampleSize:    256,
		contamination: 0.1,
		offset:        0.5,
		rng:           rand.New(rand.NewSource(42)),
	}

	for _, opt := range opts {
		opt(f)
	}

	// Max depth based on sample size
	f.maxDepth = int(math.Ceil(math.Log2(float64(f.sampleSize))))

	return f
}

// Fit trains the Isolation Forest on the provided data.
func (f *IsolationForest) Fit(data [][]float64) error {
	if len(data) == 0 {
		return errors.New("empty training data")
	}

	nSamples := len(data)
	nFeatures := len(data[0])

	// Adjust sample size if needed
	sampleSize := f.sampleSize
	if sampleSize > nSamples {
		sampleSize = nSamples
	}
	f.maxDepth = int(math.Ceil(math.Log2(float64(sampleSize))))

	// Build trees
	f.trees = make([]*Tree, f.nTrees)
	for i := 0; i < f.nTrees; i++ {
		// Sample without replacement
		indices := f.rng.Perm(nSamples)[:sampleSize]
		sample := make([][]float64, sampleSize)
		for j, idx := range indices {
			sample[j] = data[idx]
		}

		f.trees[i] = f.buildTree(sample, nFeatures, 0)
	}

	// Calculate average path length for normalization
	f.avgPathLength = averagePathLength(float64(sampleSize))
	f.trained = true

	// Calibrate the decision offset so roughly the contamination fraction of
	// the training data scores below zero.
	if f.contamination > 0 {
		scores := f.score(data)
		f.offset = percentile(scores, 100*(1-f.contamination))
	}

	return nil
}

// buildTree recursively builds an isolation tree.
func (f *IsolationForest) buildTree(data [][]float64, nFeatures, depth int) *Tree {
	return &Tree{
		Root: f.buildNode(data, nFeatures, depth),
	}
}

func (f *IsolationForest) buildNode(data [][]float64, nFeatures, depth int) *Node {
	n := len(data)

	// Terminal conditions
	if depth >= f.maxDepth || n <= 1 {
		return &Node{Size: n}
	}

	// Random feature and split value
	feature := f.pickFeature(nFeatures)

	// Find min/max for this feature
	minVal, maxVal := data[0][feature], data[0][feature]
	for _, row := range data[1:] {
		if row[feature] < minVal {
			minVal = row[feature]
		}
		if row[feature] > maxVal {
			maxVal = row[feature]
		}
	}

	// If all values are the same, return leaf
	if minVal == maxVal {
		return &Node{Size: n}
	}

	// Random split value
	splitValue := minVal + f.rng.Float64()*(maxVal-minVal)

	// Partition data
	var leftData, rightData [][]float64
	for _, row := range data {
		if row[feature] < splitValue {
			leftData = append(leftData, row)
		} else {
			rightData = append(rightData, row)
		}
	}

	return &Node{
		SplitFeature: feature,
		SplitValue:   splitValue,
		Min:          minVal,
		Max:          maxVal,
		Left:         f.buildNode(leftData, nFeatures, depth+1),
		Right:        f.buildNode(rightData, nFeatures, depth+1),
	}
}

// pickFeature selects the split feature, weighted when split weights were
// configured for this feature count.
func (f *IsolationForest) pickFeature(nFeatures int) int {
	if len(f.splitWeights) != nFeatures || f.weightTotal <= 0 {
		return f.rng.Intn(nFeatures)
	}
	r := f.rng.Float64() * f.weightTotal
	for i, w := range f.splitWeights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return nFeatures - 1
}

// Score returns raw anomaly scores in [0, 1] for the given samples.
// Higher score = more anomalous.
func (f *IsolationForest) Score(data [][]float64) ([]float64, error) {
	if !f.trained {
		return nil, errors.New("model not trained")
	}
	return f.score(data), nil
}

func (f *IsolationForest) score(data [][]float64) []float64 {
	scores := make([]float64, len(data))
	for i, sample := range data {
		scores[i] = f.scoreOne(sample)
	}
	return scores
}

// ScoreOne returns the raw anomaly score for a single sample.
func (f *IsolationForest) ScoreOne(sample []float64) (float64, error) {
	if !f.trained {
		return 0, errors.New("model not trained")
	}
	return f.scoreOne(sample), nil
}

func (f *IsolationForest) scoreOne(sample []float64) float64 {
	// Average path length across all trees
	var totalPath float64
	for _, tree := range f.trees {
		totalPath += pathLength(sample, tree.Root, 0)
	}
	avgPath := totalPath / float64(len(f.trees))

	// Anomaly score: 2^(-avgPath / c(n))
	// Higher score = more anomalous
	return math.Pow(2, -avgPath/f.avgPathLength)
}

// DecisionFunction returns signed scores for the given samples: the calibrated
// offset minus the raw isolation score. Negative values are outliers; lower
// means more unusual.
func (f *IsolationForest) DecisionFunction(data [][]float64) ([]float64, error) {
	if !f.trained {
		return nil, errors.New("model not trained")
	}

	decisions := make([]float64, len(data))
	for i, sample := range data {
		decisions[i] = f.offset - f.scoreOne(sample)
	}
	return decisions, nil
}

// pathLength calculates the path length for a sample in a tree.
func pathLength(sample []float64, n *Node, currentDepth int) float64 {
	if n.Left == nil && n.Right == nil {
		// Leaf node: add expected path length for remaining isolation
		return float64(currentDepth) + averagePathLength(float64(n.Size))
	}

	// A value outside the range this node was built on is separated from every
	// sample in the node, so this split isolates it.
	if sample[n.SplitFeature] < n.Min || sample[n.SplitFeature] > n.Max {
		return float64(currentDepth + 1)
	}

	if sample[n.SplitFeature] < n.SplitValue {
		return pathLength(sample, n.Left, currentDepth+1)
	}
	return pathLength(sample, n.Right, currentDepth+1)
}

// averagePathLength returns the average path length of unsuccessful search in BST.
func averagePathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	// c(n) = 2*H(n-1) - 2*(n-1)/n, where H is harmonic number
	// Approximation: H(n) ~ ln(n) + 0.5772156649 (Euler-Mascheroni constant)
	return 2*(math.Log(n-1)+0.5772156649) - 2*(n-1)/n
}

// Save serializes the trained model.
func (f *IsolationForest) Save() ([]byte, error) {
	if !f.trained {
		return nil, errors.New("model not trained")
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(f.nTrees); err != nil {
		return nil, err
	}
	if err := enc.Encode(f.sampleSize); err != nil {
		return nil, err
	}
	if err := enc.Encode(f.contamination); err != nil {
		return nil, err
	}
	if err := enc.Encode(f.offset); err != nil {
		return nil, err
	}
	if err := enc.Encode(f.avgPathLength); err != nil {
		return nil, err
	}
	if err := enc.Encode(f.trees); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Load deserializes a trained model.
func (f *IsolationForest) Load(data []byte) error {
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)

	if err := dec.Decode(&f.nTrees); err != nil {
		return err
	}
	if err := dec.Decode(&f.sampleSize); err != nil {
		return err
	}
	if err := dec.Decode(&f.contamination); err != nil {
		return err
	}
	if err := dec.Decode(&f.offset); err != nil {
		return err
	}
	if err := dec.Decode(&f.avgPathLength); err != nil {
		return err
	}
	if err := dec.Decode(&f.trees); err != nil {
		return err
	}

	f.maxDepth = int(math.Ceil(math.Log2(float64(f.sampleSize))))
	f.trained = true

	return nil
}

// Offset returns the calibrated decision offset.
func (f *IsolationForest) Offset() float64 {
	return f.offset
}

// Contamination returns the configured contamination rate.
func (f *IsolationForest) Contamination() float64 {
	return f.contamination
}

// Trees returns the configured ensemble size.
func (f *IsolationForest) Trees() int {
	return f.nTrees
}

// percentile calculates the p-th percentile of the data.
func percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)

	// Simple insertion sort for small arrays
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	idx := int(float64(len(sorted)-1) * p / 100)
	return sorted[idx]
}
