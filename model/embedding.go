package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrEmptyEmbedding     = errors.New("embedding is empty")
	ErrEmbeddingDimension = errors.New("embedding dimension mismatch")
	ErrEmbeddingValue     = errors.New("embedding contains NaN or Inf")
)

// Embedding is a fixed-length vector representation of text.
// A nil Embedding means the vector is absent.
type Embedding []float32

// ParseEmbedding decodes an embedding stored as a JSON array string,
// the format used by records imported from the document backend.
func ParseEmbedding(raw string) (Embedding, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyEmbedding
	}

	var values []float64
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("parse embedding: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrEmptyEmbedding
	}

	e := make(Embedding, len(values))
	for i, v := range values {
		e[i] = float32(v)
	}
	return e, e.Validate(len(e))
}

// UnmarshalJSON accepts a JSON array or an array encoded as a string, as found in
// exported backend records. null and "" leave the embedding absent.
func (e *Embedding) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		if strings.TrimSpace(raw) == "" {
			*e = nil
			return nil
		}
		parsed, err := ParseEmbedding(raw)
		if err != nil {
			return err
		}
		*e = parsed
		return nil
	}

	var values []float32
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse embedding: %w", err)
	}
	*e = values
	return nil
}

// Validate reports whether the embedding can take part in similarity math
// against vectors of dimension dim.
func (e Embedding) Validate(dim int) error {
	if len(e) == 0 {
		return ErrEmptyEmbedding
	}
	if len(e) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrEmbeddingDimension, len(e), dim)
	}
	for _, v := range e {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ErrEmbeddingValue
		}
	}
	return nil
}

// Clone returns a copy that does not share the backing array.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}
