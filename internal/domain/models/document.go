package models

// DocumentContext is the extracted text of the currently loaded PDF
type DocumentContext struct {
	FileName string `json:"file_name"`
	FullText string `json:"full_text"`
}

// Empty reports whether no document text is loaded
func (d DocumentContext) Empty() bool {
	return d.FullText == ""
}

// Severity of a user-facing notice
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notice is a transient message a UI shows as a toast
type Notice struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}
