package api

// StatusResponse is returned by the root endpoint
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// AnalysisResponse carries the HTML report body
type AnalysisResponse struct {
	AnalysisHTML string `json:"analysis_html"`
}
