package domain

// MigrationPayload is the one-shot import document: up to four named arrays,
// each optional. Operation logs are deliberately not importable.
type MigrationPayload struct {
	EmergencyItems  []Record `json:"emergencyItems"`
	OutboundRecords []Record `json:"outboundRecords"`
	ReturnRecords   []Record `json:"returnRecords"`
	BorrowRecords   []Record `json:"borrowRecords"`
}

// ImportResult summarizes a migration run. Success is true only when every
// supplied category was written; per-category failures land in Errors while
// the remaining categories still import.
type ImportResult struct {
	Success  bool           `json:"success"`
	Imported map[string]int `json:"imported"`
	Errors   []string       `json:"errors"`
	Message  string         `json:"message"`
}
