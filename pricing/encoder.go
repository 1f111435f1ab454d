package pricing

import (
	"fmt"
	"math"
	"slices"
)

const (
	EncoderKindColumnTransformer = "column_transformer"

	DropFirst = "first"

	HandleUnknownIgnore = "ignore"
	HandleUnknownError  = "error"
)

// NumericColumn holds the frozen standardization parameters of one numeric column.
type NumericColumn struct {
	Name  string  `json:"name" yaml:"name"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Scale float64 `json:"scale" yaml:"scale"`
}

// CategoricalColumn holds the frozen vocabulary of one categorical column.
type CategoricalColumn struct {
	Name          string   `json:"name" yaml:"name"`
	Categories    []string `json:"categories" yaml:"categories"`
	Drop          string   `json:"drop,omitempty" yaml:"drop,omitempty"`
	HandleUnknown string   `json:"handle_unknown,omitempty" yaml:"handle_unknown,omitempty"`
}

// EncoderArtifact is the persisted form of the encoding transform.
type EncoderArtifact struct {
	Kind        string              `json:"kind" yaml:"kind"`
	Version     string              `json:"version" yaml:"version"`
	Numeric     []NumericColumn     `json:"numeric" yaml:"numeric"`
	Categorical []CategoricalColumn `json:"categorical" yaml:"categorical"`
}

// EncodedFeatureVector is the model-ready representation of one car description.
type EncodedFeatureVector []float64

type categoricalEncoding struct {
	name          string
	offsets       map[string]int // category -> indicator offset, -1 for the dropped reference
	width         int
	ignoreUnknown bool
}

// Encoder is the frozen encoding transform. It is immutable once built.
type Encoder struct {
	version     string
	numeric     []NumericColumn
	categorical []categoricalEncoding
	names       []string
}

// NewEncoder validates the artifact and builds the encoder.
func NewEncoder(a EncoderArtifact) (*Encoder, error) {
	if a.Kind != EncoderKindColumnTransformer {
		return nil, fmt.Errorf("unsupported encoder kind %q", a.Kind)
	}
	if len(a.Numeric)+len(a.Categorical) == 0 {
		return nil, fmt.Errorf("encoder has no columns")
	}

	seen := make(map[string]struct{}, 13)
	claim := func(name string, allowed []string) error {
		if !slices.Contains(allowed, name) {
			return fmt.Errorf("column %q cannot be encoded this way", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("column %q is encoded twice", name)
		}
		seen[name] = struct{}{}
		return nil
	}

	enc := &Encoder{version: a.Version}

	for _, col := range a.Numeric {
		if err := claim(col.Name, NumericFields); err != nil {
			return nil, err
		}
		if math.IsNaN(col.Mean) || math.IsInf(col.Mean, 0) || math.IsNaN(col.Scale) || math.IsInf(col.Scale, 0) {
			return nil, fmt.Errorf("column %q has non-finite scaling parameters", col.Name)
		}
		if col.Scale < 0 {
			return nil, fmt.Errorf("column %q has a negative scale", col.Name)
		}
		enc.numeric = append(enc.numeric, col)
		enc.names = append(enc.names, "num__"+col.Name)
	}

	stringColumns := append(slices.Clone(CategoricalFields), FlagFields...)
	for _, col := range a.Categorical {
		if err := claim(col.Name, stringColumns); err != nil {
			return nil, err
		}
		if len(col.Categories) == 0 {
			return nil, fmt.Errorf("column %q has no categories", col.Name)
		}
		switch col.Drop {
		case "", DropFirst:
		default:
			return nil, fmt.Errorf("column %q has unsupported drop policy %q", col.Name, col.Drop)
		}
		switch col.HandleUnknown {
		case "", HandleUnknownIgnore, HandleUnknownError:
		default:
			return nil, fmt.Errorf("column %q has unsupported handle_unknown policy %q", col.Name, col.HandleUnknown)
		}

		ce := categoricalEncoding{
			name:          col.Name,
			offsets:       make(map[string]int, len(col.Categories)),
			ignoreUnknown: col.HandleUnknown != HandleUnknownError,
		}
		for i, category := range col.Categories {
			if _, dup := ce.offsets[category]; dup {
				return nil, fmt.Errorf("column %q lists category %q twice", col.Name, category)
			}
			if i == 0 && col.Drop == DropFirst {
				ce.offsets[category] = -1
				continue
			}
			ce.offsets[category] = ce.width
			ce.width++
			enc.names = append(enc.names, "cat__"+col.Name+"_"+category)
		}
		enc.categorical = append(enc.categorical, ce)
	}

	for _, name := range AllFields() {
		if _, ok := seen[name]; !ok {
			return nil, fmt.Errorf("column %q is not encoded", name)
		}
	}

	return enc, nil
}

// Version returns the artifact version string.
func (e *Encoder) Version() string { return e.version }

// Dimension returns the length of every encoded vector.
func (e *Encoder) Dimension() int { return len(e.names) }

// FeatureNames returns the output feature names in vector order.
func (e *Encoder) FeatureNames() []string { return slices.Clone(e.names) }

// Encode transforms a one-row table into a feature vector. It also returns the
// columns whose category was absent from the training vocabulary.
func (e *Encoder) Encode(row map[string]any) (EncodedFeatureVector, []string, error) {
	out := make(EncodedFeatureVector, 0, len(e.names))
	var unknown []string

	for _, col := range e.numeric {
		v, ok := row[col.Name].(float64)
		if !ok {
			return nil, nil, fmt.Errorf("column %q is missing or not numeric", col.Name)
		}
		scale := col.Scale
		if scale == 0 {
			scale = 1
		}
		out = append(out, (v-col.Mean)/scale)
	}

	for _, col := range e.categorical {
		v, ok := row[col.name].(string)
		if !ok {
			return nil, nil, fmt.Errorf("column %q is missing or not a string", col.name)
		}
		indicators := make([]float64, col.width)
		offset, known := col.offsets[v]
		switch {
		case !known && !col.ignoreUnknown:
			return nil, nil, fmt.Errorf("found unknown category %q in column %q", v, col.name)
		case !known:
			unknown = append(unknown, col.name)
		case offset >= 0:
			indicators[offset] = 1
		}
		out = append(out, indicators...)
	}

	return out, unknown, nil
}
