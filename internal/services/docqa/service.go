package docqa

import (
	"context"
	"errors"

	"github.com/deepgram/parley/internal/domain/models"
)

var (
	// ErrNoDocument is returned when asking before any document is loaded
	ErrNoDocument = errors.New("no document loaded")
)

// User-facing notices raised by document ingestion
var (
	NoticeNotPDF = models.Notice{Severity: models.SeverityError, Message: "Please upload a PDF file"}
	NoticeFailed = models.Notice{Severity: models.SeverityError, Message: "Error processing PDF file"}
	NoticeLoaded = models.Notice{Severity: models.SeveritySuccess, Message: "Document uploaded successfully"}
)

// Upload is one selected file
type Upload struct {
	FileName     string
	DeclaredType string
	Data         []byte
}

// Status describes the loaded document without its text
type Status struct {
	FileName   string `json:"file_name"`
	Loaded     bool   `json:"loaded"`
	CanSubmit  bool   `json:"can_submit"`
	Characters int    `json:"characters"`
}

// Service defines the document Q&A flow
type Service interface {
	// Upload replaces the document context on success. It always returns the
	// notice to show; err is non-nil whenever that notice is an error.
	Upload(ctx context.Context, sessionID string, upload Upload) (models.Notice, error)
	// Clear empties the document context, leaving the transcript alone
	Clear(ctx context.Context, sessionID string) error
	// Submit asks about the loaded document and records the exchange
	Submit(ctx context.Context, sessionID, input string) (models.Exchange, error)
	Transcript(ctx context.Context, sessionID string) ([]models.Message, error)
	Status(ctx context.Context, sessionID string) (Status, error)
}

func statusOf(d models.DocumentContext) Status {
	return Status{
		FileName:   d.FileName,
		Loaded:     !d.Empty(),
		CanSubmit:  !d.Empty(),
		Characters: len(d.FullText),
	}
}
