package pipeline

import (
	"encoding/binary"
	"math"

	"chrotation/ml"
	lru "github.com/hashicorp/golang-lru/v2"
)

type prediction struct {
	label      int
	confidence float64
}

// cachedPredictor memoises predictions by exact feature vector. Sensor
// exports repeat readings often enough that this skips most tree walks.
type cachedPredictor struct {
	predictor ml.Predictor
	cache     *lru.Cache[string, prediction]
	hits      int
	misses    int
}

// newCachedPredictor disables caching when size is not positive.
func newCachedPredictor(predictor ml.Predictor, size int) (*cachedPredictor, error) {
	c := &cachedPredictor{predictor: predictor}
	if size <= 0 {
		return c, nil
	}
	cache, err := lru.New[string, prediction](size)
	if err != nil {
		return nil, err
	}
	c.cache = cache
	return c, nil
}

func (c *cachedPredictor) Predict(features []float64) (int, float64, error) {
	if c.cache == nil {
		return c.predictor.Predict(features)
	}
	key := featureKey(features)
	if p, ok := c.cache.Get(key); ok {
		c.hits++
		return p.label, p.confidence, nil
	}
	c.misses++
	label, confidence, err := c.predictor.Predict(features)
	if err != nil {
		return 0, 0, err
	}
	c.cache.Add(key, prediction{label: label, confidence: confidence})
	return label, confidence, nil
}

func featureKey(features []float64) string {
	buf := make([]byte, 8*len(features))
	for i, f := range features {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return string(buf)
}
