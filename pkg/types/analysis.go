// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AnalysisRequest asks for the definite integral of Function over [A, B]
// using N equal subdivisions.
type AnalysisRequest struct {
	// Function is an expression in the free variable x (e.g. "sin(x)").
	Function string `json:"function" yaml:"function" binding:"required,max=2048" validate:"required,max=2048"`

	// A is the lower bound of integration.
	A float64 `json:"a" yaml:"a"`

	// B is the upper bound of integration; it must exceed A.
	B float64 `json:"b" yaml:"b" binding:"gtfield=A" validate:"gtfield=A"`

	// N is the number of equal subdivisions of [A, B].
	N int `json:"n" yaml:"n" binding:"gt=0" validate:"gt=0"`
}

// FunctionPlotData samples the integrand for display.
type FunctionPlotData struct {
	Points []float64 `json:"points" yaml:"points"`
	Values []Sample  `json:"values" yaml:"values"`
}

// DerivativeInfo holds the symbolic derivative and its samples.
type DerivativeInfo struct {
	Expression string    `json:"expression" yaml:"expression"`
	Points     []float64 `json:"points" yaml:"points"`
	Values     []Sample  `json:"values" yaml:"values"`
}

// IntegrationResult is one quadrature rule's outcome measured against the
// reference value.
type IntegrationResult struct {
	MethodName    string    `json:"method_name" yaml:"method_name"`
	IntegralValue Sample    `json:"integral_value" yaml:"integral_value"`
	AbsoluteError Sample    `json:"absolute_error" yaml:"absolute_error"`
	Points        []float64 `json:"points" yaml:"points"`
	Values        []Sample  `json:"values" yaml:"values"`
}

// AnalysisResponse is the full result of one analysis request.
type AnalysisResponse struct {
	FunctionPlotData  FunctionPlotData    `json:"function_plot_data" yaml:"function_plot_data"`
	DerivativeInfo    DerivativeInfo      `json:"derivative_info" yaml:"derivative_info"`
	TrueIntegralValue Sample              `json:"true_integral_value" yaml:"true_integral_value"`
	ReferenceSource   string              `json:"reference_source,omitempty" yaml:"reference_source,omitempty"`
	Results           []IntegrationResult `json:"results" yaml:"results"`
	BestMethod        string              `json:"best_method" yaml:"best_method"`
	AnalysisSummary   string              `json:"analysis_summary" yaml:"analysis_summary"`
}

// MethodInfo describes one quadrature rule and the subdivision counts it
// accepts.
type MethodInfo struct {
	Name         string `json:"name" yaml:"name"`
	Precondition string `json:"precondition" yaml:"precondition"`
}
