package api

// OperationRequest is the JSON body for the four arithmetic endpoints.
// Pointer fields distinguish a missing field from an explicit zero.
type OperationRequest struct {
	A *float64 `json:"a"`
	B *float64 `json:"b"`
}

// OperationResponse is the success envelope for arithmetic endpoints.
type OperationResponse struct {
	Result float64 `json:"result"`
}

// HealthResponse is the payload for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// errorResponse is the error envelope for both validation (422) and domain
// (400) errors.
type errorResponse struct {
	Detail string `json:"detail"`
}
