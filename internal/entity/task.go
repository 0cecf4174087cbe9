package entity

const (
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

type EnhanceTask struct {
	JobID      string        `json:"job_id"`
	ImageIndex int           `json:"image_index"`
	Image      ImagePayload  `json:"image"`
	Params     EnhanceParams `json:"params"`
}

type BatchItemResult struct {
	Index   int     `json:"index"`
	Success bool    `json:"success"`
	Method  string  `json:"method,omitempty"`
	Path    string  `json:"path,omitempty"`
	Time    float64 `json:"time,omitempty"`
	Error   string  `json:"error,omitempty"`
}

type BatchJob struct {
	ID      string            `json:"id"`
	Status  string            `json:"status"`
	Total   int               `json:"total"`
	Done    int               `json:"done"`
	Results []BatchItemResult `json:"results,omitempty"`
	Error   string            `json:"error,omitempty"`
}

type BatchRequest struct {
	Images     []ImagePayload `json:"images"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}
