package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type SessionResponse struct {
	SessionID     string     `json:"sessionId"`
	RowCount      int        `json:"rowCount"`
	DocumentCount int        `json:"documentCount"`
	ResultCount   int        `json:"resultCount"`
	Auditing      bool       `json:"auditing"`
	Documents     []FileData `json:"documents,omitempty"`
}

type LedgerUploadResponse struct {
	RowCount int      `json:"rowCount"`
	Columns  []string `json:"columns"`
	Message  string   `json:"message"`
}

type DocumentUploadResponse struct {
	Added         int        `json:"added"`
	DocumentCount int        `json:"documentCount"`
	Documents     []FileData `json:"documents"`
	Message       string     `json:"message"`
}

type ResultsResponse struct {
	Results  []AuditResult `json:"results"`
	Failures []AuditError  `json:"failures"`
	Auditing bool          `json:"auditing"`
}
