// Package service provides the sentiment classifier used by the prediction
// use case. The classifier is rule-based and fully deterministic; swapping in
// a model-backed implementation only requires satisfying the same interface.
package service

import (
	"time"
	"unicode/utf8"

	"github.com/sentimeter/sentimeter/internal/prediction/domain"
)

// Known classifier model versions.
const (
	ModelVersionV1 = "v1"
	ModelVersionV2 = "v2"

	// DefaultModelVersion is used when the caller does not pick one.
	DefaultModelVersion = ModelVersionV1
)

// Classification is the classifier output for a single text.
type Classification struct {
	Label        string
	Score        float64
	ModelVersion string
	ElapsedMS    float64
}

// Classifier scores a text as POSITIVE or NEGATIVE under a model version.
type Classifier interface {
	Classify(text, modelVersion string) *Classification
}

// ruleClassifier implements Classifier with deterministic length-based rules.
// v1 and v2 use different moduli and score multipliers so the two versions
// produce observably different output for the same input.
type ruleClassifier struct{}

// NewRuleClassifier creates a new rule-based Classifier instance.
func NewRuleClassifier() Classifier {
	return &ruleClassifier{}
}

// Classify scores the text. An unknown model version falls back to v1 rather
// than failing; version validation belongs to the request layer.
func (c *ruleClassifier) Classify(text, modelVersion string) *Classification {
	start := time.Now()

	if modelVersion != ModelVersionV1 && modelVersion != ModelVersionV2 {
		modelVersion = DefaultModelVersion
	}

	length := utf8.RuneCountInString(text)
	modulus, multiplier := 2, 1
	if modelVersion == ModelVersionV2 {
		modulus, multiplier = 3, 7
	}

	label := domain.LabelPositive
	if length%modulus == 0 {
		label = domain.LabelNegative
	}
	score := float64((length*multiplier)%100) / 100.0

	return &Classification{
		Label:        label,
		Score:        score,
		ModelVersion: modelVersion,
		ElapsedMS:    float64(time.Since(start).Microseconds()) / 1000.0,
	}
}
