// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Direction is the sign of a reported market movement.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Movement is a percentage change attributed to a market index in one article.
type Movement struct {
	// Index is the canonical index name (e.g. "Dow Jones", "Sensex").
	Index string `json:"index" yaml:"index"`

	// Change is the absolute percentage value.
	Change float64 `json:"change" yaml:"change"`

	Direction Direction `json:"direction" yaml:"direction"`

	// Reason is the connector plus the stated cause ("amid global optimism"),
	// empty when none was found.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// AnalysisResult is derived solely from the articles passed to one analysis
// call.
type AnalysisResult struct {
	// Summary is a one-line lead for the digest.
	Summary string `json:"summary" yaml:"summary"`

	// KeyPoints holds up to three distinct headlines in input order.
	KeyPoints []string `json:"key_points" yaml:"key_points"`

	// Insights is newline-separated text: movement statements, a theme
	// statement and a focus-terms statement.
	Insights string `json:"insights" yaml:"insights"`

	// TrendingTopics holds capitalized market terms, most frequent first.
	TrendingTopics []string `json:"trending_topics" yaml:"trending_topics"`

	Movements []Movement `json:"movements,omitempty" yaml:"movements,omitempty"`
	Themes    []string   `json:"themes,omitempty" yaml:"themes,omitempty"`
}
