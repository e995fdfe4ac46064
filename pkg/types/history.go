// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HistoryEntry is one journaled analysis.
type HistoryEntry struct {
	ID              string               `json:"id" yaml:"id"`
	CreatedAt       time.Time            `json:"created_at" yaml:"created_at"`
	Function        string               `json:"function" yaml:"function"`
	A               float64              `json:"a" yaml:"a"`
	B               float64              `json:"b" yaml:"b"`
	N               int                  `json:"n" yaml:"n"`
	Reference       Sample               `json:"true_integral_value" yaml:"true_integral_value"`
	ReferenceSource string               `json:"reference_source,omitempty" yaml:"reference_source,omitempty"`
	BestMethod      string               `json:"best_method" yaml:"best_method"`
	Summary         string               `json:"analysis_summary" yaml:"analysis_summary"`
	Results         []HistoryMethodEntry `json:"results" yaml:"results"`
}

// HistoryMethodEntry is one rule's estimate within a HistoryEntry. Sample
// points are not journaled.
type HistoryMethodEntry struct {
	MethodName    string `json:"method_name" yaml:"method_name"`
	IntegralValue Sample `json:"integral_value" yaml:"integral_value"`
	AbsoluteError Sample `json:"absolute_error" yaml:"absolute_error"`
}
