package pricing

import (
	"sync"
	"sync/atomic"
)

// ArtifactLoader loads the encoder and regressor artifacts at most once, even under
// concurrent first use. A failed load is remembered and reported on every call; the
// artifacts are never reloaded during the process lifetime.
type ArtifactLoader struct {
	encoderPath   string
	regressorPath string

	once     sync.Once
	pipeline *Pipeline
	err      error

	loaded atomic.Bool
	loads  atomic.Int32
}

func NewArtifactLoader(encoderPath, regressorPath string) *ArtifactLoader {
	return &ArtifactLoader{
		encoderPath:   encoderPath,
		regressorPath: regressorPath,
	}
}

// Load returns the pipeline, loading the artifacts on first call.
func (l *ArtifactLoader) Load() (*Pipeline, error) {
	l.once.Do(func() {
		l.loads.Add(1)
		l.pipeline, l.err = l.load()
		l.loaded.Store(l.err == nil)
	})
	return l.pipeline, l.err
}

// Pipeline returns the loaded pipeline, or nil when the artifacts are not loaded.
func (l *ArtifactLoader) Pipeline() *Pipeline {
	if !l.loaded.Load() {
		return nil
	}
	return l.pipeline
}

// Loaded reports whether the artifacts were loaded successfully.
func (l *ArtifactLoader) Loaded() bool {
	return l.loaded.Load()
}

// EstimatePrice prices a car description with the loaded artifacts.
func (l *ArtifactLoader) EstimatePrice(car CarDescription) (*PriceEstimate, error) {
	p, err := l.Load()
	if err != nil {
		return nil, err
	}
	return p.EstimatePrice(car)
}

func (l *ArtifactLoader) load() (*Pipeline, error) {
	encArtifact, err := ReadEncoderArtifact(l.encoderPath)
	if err != nil {
		return nil, newModelUnavailableError("failed to read encoding artifact "+l.encoderPath, err)
	}
	encoder, err := NewEncoder(*encArtifact)
	if err != nil {
		return nil, newModelUnavailableError("encoding artifact "+l.encoderPath+" is corrupt", err)
	}

	regArtifact, err := ReadRegressorArtifact(l.regressorPath)
	if err != nil {
		return nil, newModelUnavailableError("failed to read regression artifact "+l.regressorPath, err)
	}
	regressor, err := NewRegressor(*regArtifact)
	if err != nil {
		return nil, newModelUnavailableError("regression artifact "+l.regressorPath+" is corrupt", err)
	}

	return NewPipeline(encoder, regressor)
}
