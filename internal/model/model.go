// Package model loads the pretrained loss regression model.
//
// Models are exported from the training notebook as JSON, optionally gzip
// compressed. Two kinds are supported:
//
//	forest: a random forest regressor in scikit-learn's flat tree layout
//	        (children_left, children_right, feature, threshold, value per tree).
//	        A node is a leaf when its children are -1. Samples go left when
//	        x[feature] <= threshold. The prediction is the mean over trees.
//	linear: intercept + sum(coefficients[i] * x[i]).
//
// Both kinds carry the ordered feature list they were trained on and an
// optional importance weight per feature.
package model

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/klauspost/compress/gzip"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
)

// Kind names the model family stored in a model file.
type Kind string

const (
	KindForest Kind = "forest"
	KindLinear Kind = "linear"
)

// FeatureSet reports which columns a dataset can supply as model inputs.
type FeatureSet interface {
	HasFeature(column string) bool
}

// Model is a loaded, validated regression model. It is safe for concurrent
// use; nothing mutates it after Load.
type Model struct {
	Source string
	Kind   Kind

	features    []string
	importances []float64
	predict     func(x []float64) float64
}

type modelFile struct {
	Kind         Kind       `json:"kind"`
	Features     []string   `json:"features"`
	Importances  []float64  `json:"importances,omitempty"`
	Intercept    float64    `json:"intercept,omitempty"`
	Coefficients []float64  `json:"coefficients,omitempty"`
	Trees        []treeFile `json:"trees,omitempty"`
}

// Load reads the model file at path. Every failure is a *domain.ModelError.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.ModelError{Source: path, Err: err}
	}
	defer f.Close()

	return Decode(path, f)
}

// Decode reads a JSON model, transparently gunzipping compressed input.
func Decode(source string, r io.Reader) (*Model, error) {
	fail := func(err error) (*Model, error) {
		return nil, &domain.ModelError{Source: source, Err: err}
	}

	br := bufio.NewReader(r)
	var in io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return fail(fmt.Errorf("open gzip stream: %w", err))
		}
		defer zr.Close()
		in = zr
	}

	var mf modelFile
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&mf); err != nil {
		return fail(fmt.Errorf("decode model: %w", err))
	}

	m, err := build(source, mf)
	if err != nil {
		return fail(err)
	}
	return m, nil
}

func build(source string, mf modelFile) (*Model, error) {
	if len(mf.Features) == 0 {
		return nil, errors.New("model declares no features")
	}
	seen := make(map[string]bool, len(mf.Features))
	for _, f := range mf.Features {
		if f == "" {
			return nil, errors.New("empty feature name")
		}
		if seen[f] {
			return nil, fmt.Errorf("duplicate feature %q", f)
		}
		seen[f] = true
	}

	importances := mf.Importances
	switch {
	case len(importances) == 0:
		importances = make([]float64, len(mf.Features))
	case len(importances) != len(mf.Features):
		return nil, fmt.Errorf("%d importances for %d features", len(importances), len(mf.Features))
	}

	m := &Model{
		Source:      source,
		Kind:        mf.Kind,
		features:    append([]string(nil), mf.Features...),
		importances: append([]float64(nil), importances...),
	}

	switch mf.Kind {
	case KindLinear:
		if len(mf.Coefficients) != len(mf.Features) {
			return nil, fmt.Errorf("%d coefficients for %d features", len(mf.Coefficients), len(mf.Features))
		}
		m.predict = linear(mf.Intercept, append([]float64(nil), mf.Coefficients...))
	case KindForest:
		if len(mf.Trees) == 0 {
			return nil, errors.New("forest has no trees")
		}
		trees := make([]tree, len(mf.Trees))
		for i, tf := range mf.Trees {
			t, err := tf.validate(len(mf.Features))
			if err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
			trees[i] = t
		}
		m.predict = forest(trees)
	default:
		return nil, fmt.Errorf("unknown model kind %q", mf.Kind)
	}

	return m, nil
}

// NewLinear builds a linear model in memory.
func NewLinear(features []string, intercept float64, coefficients, importances []float64) (*Model, error) {
	m, err := build("memory", modelFile{
		Kind:         KindLinear,
		Features:     features,
		Importances:  importances,
		Intercept:    intercept,
		Coefficients: coefficients,
	})
	if err != nil {
		return nil, &domain.ModelError{Source: "memory", Err: err}
	}
	return m, nil
}

// WriteLinear writes a linear model in the gzip-compressed file format Load
// reads.
func WriteLinear(w io.Writer, features []string, intercept float64, coefficients, importances []float64) error {
	mf := modelFile{
		Kind:         KindLinear,
		Features:     features,
		Importances:  importances,
		Intercept:    intercept,
		Coefficients: coefficients,
	}
	if _, err := build("memory", mf); err != nil {
		return &domain.ModelError{Source: "memory", Err: err}
	}

	zw := gzip.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(mf); err != nil {
		zw.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	return zw.Close()
}

// Features returns the ordered input features the model expects.
func (m *Model) Features() []string {
	return append([]string(nil), m.features...)
}

// Predict scores one feature vector laid out in Features() order.
func (m *Model) Predict(x []float64) float64 {
	return m.predict(x)
}

// Importances returns the static feature importances, heaviest first.
// Ties keep the model's feature order.
func (m *Model) Importances() []domain.FeatureImportance {
	out := make([]domain.FeatureImportance, len(m.features))
	for i, f := range m.features {
		out[i] = domain.FeatureImportance{
			Feature: f,
			Label:   domain.FeatureLabel(f),
			Weight:  m.importances[i],
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}

// ValidateSchema checks that the dataset supplies every model feature as a
// numeric column.
func (m *Model) ValidateSchema(ds FeatureSet) error {
	var missing []string
	for _, f := range m.features {
		if !ds.HasFeature(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &domain.ModelError{
			Source: m.Source,
			Err:    fmt.Errorf("features not present in dataset: %v", missing),
		}
	}
	return nil
}

func linear(intercept float64, coef []float64) func([]float64) float64 {
	return func(x []float64) float64 {
		y := intercept
		for i, c := range coef {
			y += c * x[i]
		}
		return y
	}
}

func forest(trees []tree) func([]float64) float64 {
	return func(x []float64) float64 {
		var sum float64
		for i := range trees {
			sum += trees[i].predict(x)
		}
		return sum / float64(len(trees))
	}
}

type treeFile struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

type tree treeFile

const leaf = -1

// validate checks the flat layout so predict never indexes out of range or
// loops. Children must come after their parent, as scikit-learn emits them.
func (tf treeFile) validate(nFeatures int) (tree, error) {
	n := len(tf.ChildrenLeft)
	if n == 0 {
		return tree{}, errors.New("no nodes")
	}
	if len(tf.ChildrenRight) != n || len(tf.Feature) != n || len(tf.Threshold) != n || len(tf.Value) != n {
		return tree{}, errors.New("node arrays have different lengths")
	}

	for i := 0; i < n; i++ {
		l, r := tf.ChildrenLeft[i], tf.ChildrenRight[i]
		if l == leaf || r == leaf {
			if l != r {
				return tree{}, fmt.Errorf("node %d has exactly one child", i)
			}
			if math.IsNaN(tf.Value[i]) {
				return tree{}, fmt.Errorf("leaf %d has NaN value", i)
			}
			continue
		}
		if l <= i || l >= n || r <= i || r >= n {
			return tree{}, fmt.Errorf("node %d has out-of-order children %d/%d", i, l, r)
		}
		if f := tf.Feature[i]; f < 0 || f >= nFeatures {
			return tree{}, fmt.Errorf("node %d splits on feature %d of %d", i, f, nFeatures)
		}
		if math.IsNaN(tf.Threshold[i]) {
			return tree{}, fmt.Errorf("node %d has NaN threshold", i)
		}
	}
	return tree(tf), nil
}

func (t *tree) predict(x []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}
