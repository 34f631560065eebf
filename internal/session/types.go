package session

// ImageRequest is the JSON body for POST /sessions/{id}/image.
type ImageRequest struct {
	Image string `json:"image"`
}

// EquationRequest is the JSON body for POST /sessions/{id}/equation.
type EquationRequest struct {
	Equation string `json:"equation"`
}
