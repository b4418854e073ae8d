package docqa

import (
	"context"
	"errors"
	"testing"

	"github.com/deepgram/parley/internal/domain/models"
	"github.com/deepgram/parley/internal/services/dispatch"
	"github.com/deepgram/parley/internal/services/ingest"
	"github.com/deepgram/parley/internal/services/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Complete(ctx context.Context, prompt models.Prompt) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type stubExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	s.calls++
	return s.text, s.err
}

func newTestService(t *testing.T, provider *MockProvider, extractor *stubExtractor) (*Implementation, *dispatch.Guard) {
	t.Helper()
	guard := dispatch.NewGuard()
	svc, err := NewService(provider, extractor, workspace.NewMemoryStore(), guard)
	require.NoError(t, err)
	return svc, guard
}

func pdfUpload(name string) Upload {
	return Upload{FileName: name, DeclaredType: "application/pdf", Data: []byte("%PDF-1.4")}
}

func TestUploadLoadsDocument(t *testing.T) {
	svc, _ := newTestService(t, &MockProvider{}, &stubExtractor{text: "Hello World"})
	ctx := context.Background()

	notice, err := svc.Upload(ctx, "s1", pdfUpload("hello.pdf"))
	require.NoError(t, err)
	assert.Equal(t, NoticeLoaded, notice)

	status, err := svc.Status(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Status{FileName: "hello.pdf", Loaded: true, CanSubmit: true, Characters: 11}, status)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	extractor := &stubExtractor{text: "new"}
	svc, _ := newTestService(t, &MockProvider{}, extractor)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "s1", pdfUpload("first.pdf"))
	require.NoError(t, err)

	notice, err := svc.Upload(ctx, "s1", Upload{FileName: "notes.txt", DeclaredType: "text/plain", Data: []byte("hi")})
	assert.ErrorIs(t, err, ingest.ErrNotPDF)
	assert.Equal(t, NoticeNotPDF, notice)
	assert.Equal(t, 1, extractor.calls)

	status, err := svc.Status(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "first.pdf", status.FileName)
}

func TestUploadParseFailureKeepsPriorDocument(t *testing.T) {
	extractor := &stubExtractor{text: "original text"}
	svc, _ := newTestService(t, &MockProvider{}, extractor)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "s1", pdfUpload("good.pdf"))
	require.NoError(t, err)

	extractor.err = ingest.ErrExtract
	notice, err := svc.Upload(ctx, "s1", pdfUpload("broken.pdf"))
	assert.ErrorIs(t, err, ingest.ErrExtract)
	assert.Equal(t, NoticeFailed, notice)

	status, err := svc.Status(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "good.pdf", status.FileName)
	assert.Equal(t, len("original text"), status.Characters)
}

func TestUploadReplacesDocumentWholesale(t *testing.T) {
	extractor := &stubExtractor{text: "first"}
	svc, _ := newTestService(t, &MockProvider{}, extractor)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "s1", pdfUpload("a.pdf"))
	require.NoError(t, err)
	extractor.text = "second document"
	_, err = svc.Upload(ctx, "s1", pdfUpload("b.pdf"))
	require.NoError(t, err)

	status, err := svc.Status(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "b.pdf", status.FileName)
	assert.Equal(t, len("second document"), status.Characters)
}

func TestClearDisablesSubmitAndKeepsTranscript(t *testing.T) {
	provider := &MockProvider{}
	provider.On("Complete", mock.Anything, mock.Anything).Return("answer", nil).Once()
	svc, _ := newTestService(t, provider, &stubExtractor{text: "Hello World"})
	ctx := context.Background()

	_, err := svc.Upload(ctx, "s1", pdfUpload("hello.pdf"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "s1", "what does it say?")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "s1"))

	status, err := svc.Status(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Status{}, status)

	transcript, err := svc.Transcript(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, transcript, 2)

	_, err = svc.Submit(ctx, "s1", "and now?")
	assert.ErrorIs(t, err, ErrNoDocument)
	provider.AssertNumberOfCalls(t, "Complete", 1)
}

func TestSubmitBuildsDocumentPrompt(t *testing.T) {
	provider := &MockProvider{}
	provider.On("Complete", mock.Anything, models.Prompt{
		System: models.DocumentSystemPrompt("Hello World"),
		User:   "Based on the provided document, who is greeted?",
	}).Return("The **World**.", nil).Once()

	svc, _ := newTestService(t, provider, &stubExtractor{text: "Hello World"})
	ctx := context.Background()

	_, err := svc.Upload(ctx, "s1", pdfUpload("hello.pdf"))
	require.NoError(t, err)

	ex, err := svc.Submit(ctx, "s1", "who is greeted?")
	require.NoError(t, err)
	assert.Equal(t, "who is greeted?", ex.User.Content)
	assert.Equal(t, "The **World**.", ex.Assistant.Content)

	transcript, err := svc.Transcript(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, ex.Messages(), transcript)
	provider.AssertExpectations(t)
}

func TestSubmitFallbackOnFailure(t *testing.T) {
	provider := &MockProvider{}
	provider.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("status 502")).Once()
	svc, _ := newTestService(t, provider, &stubExtractor{text: "doc"})
	ctx := context.Background()

	_, err := svc.Upload(ctx, "s1", pdfUpload("doc.pdf"))
	require.NoError(t, err)

	ex, err := svc.Submit(ctx, "s1", "question")
	require.NoError(t, err)
	assert.True(t, ex.Failed)
	assert.Equal(t, models.FallbackReply, ex.Assistant.Content)
}

func TestSubmitPreconditions(t *testing.T) {
	provider := &MockProvider{}
	svc, guard := newTestService(t, provider, &stubExtractor{text: "doc"})
	ctx := context.Background()

	_, err := svc.Submit(ctx, "s1", "question")
	assert.ErrorIs(t, err, ErrNoDocument)

	_, err = svc.Upload(ctx, "s1", pdfUpload("doc.pdf"))
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "s1", "   ")
	assert.ErrorIs(t, err, dispatch.ErrEmptyInput)

	release, err := guard.TryAcquire("s1", string(workspace.FlowDocument))
	require.NoError(t, err)

	status, err := svc.Status(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, status.CanSubmit)

	_, err = svc.Submit(ctx, "s1", "question")
	assert.ErrorIs(t, err, dispatch.ErrInFlight)
	_, err = svc.Upload(ctx, "s1", pdfUpload("other.pdf"))
	assert.ErrorIs(t, err, dispatch.ErrInFlight)
	release()

	transcript, err := svc.Transcript(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, transcript)
	provider.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}
