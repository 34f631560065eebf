package solver

import (
	"go-equation-solver/internal/equation"
	"go-equation-solver/internal/recognition"
)

// SolveRequest is the JSON body for POST /equations/solve.
type SolveRequest struct {
	Equation string `json:"equation"`
}

// BatchRequest is the JSON body for POST /equations/batch.
type BatchRequest struct {
	Equations []string `json:"equations"`
}

// BatchResponse is the JSON response for POST /equations/batch.
type BatchResponse struct {
	Results []equation.SolveResult `json:"results"`
	Solved  int                    `json:"solved"`
	Failed  int                    `json:"failed"`
}

// ImageRequest is the JSON body for the recognize and scan endpoints. Image
// is base64 or a base64 data URL.
type ImageRequest struct {
	Image string `json:"image"`
}

// RecognizeResponse is the JSON response for POST /equations/recognize. Error
// is set when recognition fell back to the placeholder equation.
type RecognizeResponse struct {
	recognition.Recognition
	Error string `json:"error,omitempty"`
}

// ScanResponse is the JSON response for POST /equations/scan.
type ScanResponse struct {
	Recognition RecognizeResponse    `json:"recognition"`
	Result      equation.SolveResult `json:"result"`
}
