package predictor

import (
	"errors"
	"fmt"
)

// Node is one node of a regression tree, stored in a flat slice. Internal nodes
// send x to Left when x[Feature] < Threshold and to Right otherwise. Children
// always have a larger index than their parent.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

// Tree is a single regression tree rooted at Nodes[0].
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// TreeEnsemble is a gradient-boosted sum of regression trees:
// y = BaseScore + sum(tree(x)). Leaf values already include the learning rate.
type TreeEnsemble struct {
	features     []string
	baseScore    float64
	learningRate float64
	maxDepth     int
	trees        []Tree
}

// NewTreeEnsemble validates the trees and builds an ensemble.
func NewTreeEnsemble(features []string, baseScore, learningRate float64, maxDepth int, trees []Tree) (*TreeEnsemble, error) {
	if len(trees) == 0 {
		return nil, errors.New("tree ensemble: no trees")
	}
	cp := make([]Tree, len(trees))
	for i, t := range trees {
		if err := t.validate(len(features)); err != nil {
			return nil, fmt.Errorf("tree ensemble: tree %d: %w", i, err)
		}
		nodes := make([]Node, len(t.Nodes))
		copy(nodes, t.Nodes)
		cp[i] = Tree{Nodes: nodes}
	}
	return &TreeEnsemble{
		features:     copyStrings(features),
		baseScore:    baseScore,
		learningRate: learningRate,
		maxDepth:     maxDepth,
		trees:        cp,
	}, nil
}

func (t Tree) validate(nFeatures int) error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d: child index %d out of range", i, child)
			}
		}
	}
	return nil
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func (m *TreeEnsemble) Predict(x []float64) (float64, error) {
	if err := checkVector(x, len(m.features)); err != nil {
		return 0, err
	}
	y := m.baseScore
	for _, t := range m.trees {
		y += t.eval(x)
	}
	return y, nil
}

func (m *TreeEnsemble) Features() []string { return copyStrings(m.features) }

func (m *TreeEnsemble) Kind() string { return KindTreeEnsemble }

// Characteristics reports the boosting hyperparameters.
func (m *TreeEnsemble) Characteristics() map[string]any {
	return map[string]any{
		"kind":          KindTreeEnsemble,
		"n_estimators":  len(m.trees),
		"learning_rate": m.learningRate,
		"max_depth":     m.maxDepth,
	}
}
