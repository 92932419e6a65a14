package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
	"github.com/custodia-labs/lettergen/internal/core/ports/driving"
)

// --- Mock implementations shared by the batch tests ---

// memDocs is an in-memory file system of document bodies.
// It implements driven.FileCopier and driven.DocumentCodec.
type memDocs struct {
	mu        sync.Mutex
	files     map[string]*domain.DocumentBody
	copyErrs  map[string]error // keyed by destination base name
	openErr   error
	openPanic string // base name whose Open panics
	saveErr   error
	copies    []string
	dirs      []string
	ensureErr error
}

func newMemDocs() *memDocs {
	return &memDocs{
		files:    make(map[string]*domain.DocumentBody),
		copyErrs: make(map[string]error),
	}
}

func (m *memDocs) put(path string, body *domain.DocumentBody) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = cloneBody(body)
}

func (m *memDocs) get(path string) (*domain.DocumentBody, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.files[path]
	return body, ok
}

func (m *memDocs) Copy(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copies = append(m.copies, dst)
	if err := m.copyErrs[filepath.Base(dst)]; err != nil {
		return err
	}
	body, ok := m.files[src]
	if !ok {
		return errors.New("template not readable: " + src)
	}
	m.files[dst] = cloneBody(body)
	return nil
}

func (m *memDocs) EnsureDir(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = append(m.dirs, dir)
	return m.ensureErr
}

func (m *memDocs) Extension() string { return "docx" }

func (m *memDocs) Open(path string) (driven.EditableDocument, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	if m.openPanic != "" && filepath.Base(path) == m.openPanic {
		panic("corrupt archive")
	}
	body, ok := m.get(path)
	if !ok {
		return nil, domain.ErrInvalidDocument
	}
	return &memDocument{store: m, body: cloneBody(body)}, nil
}

func (m *memDocs) copyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.copies)
}

type memDocument struct {
	store *memDocs
	body  *domain.DocumentBody
}

func (d *memDocument) Body() *domain.DocumentBody { return d.body }

func (d *memDocument) Save(path string) error {
	if d.store.saveErr != nil {
		return d.store.saveErr
	}
	d.store.put(path, d.body)
	return nil
}

func cloneBody(b *domain.DocumentBody) *domain.DocumentBody {
	out := &domain.DocumentBody{}
	for _, p := range b.Paragraphs {
		out.Paragraphs = append(out.Paragraphs, cloneParagraph(p))
	}
	for _, t := range b.Tables {
		out.Tables = append(out.Tables, cloneTable(t))
	}
	return out
}

func cloneTable(t *domain.Table) *domain.Table {
	out := &domain.Table{}
	for _, row := range t.Rows {
		r := &domain.TableRow{}
		for _, cell := range row.Cells {
			c := &domain.TableCell{}
			for _, p := range cell.Paragraphs {
				c.Paragraphs = append(c.Paragraphs, cloneParagraph(p))
			}
			for _, nested := range cell.Tables {
				c.Tables = append(c.Tables, cloneTable(nested))
			}
			r.Cells = append(r.Cells, c)
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

func cloneParagraph(p *domain.Paragraph) *domain.Paragraph {
	out := &domain.Paragraph{}
	for _, r := range p.Runs {
		out.Runs = append(out.Runs, &domain.Run{Text: r.Text})
	}
	return out
}

// mockConversionAPI implements driven.ConversionAPI.
type mockConversionAPI struct {
	mu sync.Mutex

	createErr   error
	getTaskErr  error
	uploadErr   error
	waitErr     error
	downloadErr error

	// omitForm drops the upload form from the created job.
	omitForm bool
	// omitUpload drops the upload task from the created job.
	omitUpload bool
	// exportStatus is the status of the export task after the wait.
	exportStatus string

	requests  []domain.JobRequest
	uploads   []string
	downloads []string
	getTasks  int
}

func newMockConversionAPI() *mockConversionAPI {
	return &mockConversionAPI{exportStatus: domain.StatusFinished}
}

func (m *mockConversionAPI) uploadTask() domain.ConversionTask {
	task := domain.ConversionTask{
		ID: "task-upload", Name: domain.TaskNameUpload,
		Operation: domain.OperationImportUpload, Status: domain.StatusWaiting,
	}
	if !m.omitForm {
		task.Result.Form = &domain.UploadForm{URL: "https://upload.example/form", Parameters: map[string]string{"key": "v"}}
	}
	return task
}

func (m *mockConversionAPI) CreateJob(_ context.Context, req domain.JobRequest) (*domain.ConversionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.createErr != nil {
		return nil, m.createErr
	}
	job := &domain.ConversionJob{ID: "job-1", Status: domain.StatusWaiting}
	if !m.omitUpload {
		job.Tasks = append(job.Tasks, m.uploadTask())
	}
	job.Tasks = append(job.Tasks,
		domain.ConversionTask{ID: "task-convert", Name: domain.TaskNameConvert, Operation: domain.OperationConvert, Status: domain.StatusWaiting},
		domain.ConversionTask{ID: "task-export", Name: domain.TaskNameExport, Operation: domain.OperationExportURL, Status: domain.StatusWaiting},
	)
	return job, nil
}

func (m *mockConversionAPI) GetTask(_ context.Context, taskID string) (*domain.ConversionTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getTasks++
	if m.getTaskErr != nil {
		return nil, m.getTaskErr
	}
	task := m.uploadTask()
	task.ID = taskID
	task.Result.Form = &domain.UploadForm{URL: "https://upload.example/form"}
	return &task, nil
}

func (m *mockConversionAPI) Upload(_ context.Context, task *domain.ConversionTask, filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.Result.Form == nil {
		return errors.New("no upload form")
	}
	m.uploads = append(m.uploads, filePath)
	return m.uploadErr
}

func (m *mockConversionAPI) WaitJob(_ context.Context, jobID string) (*domain.ConversionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.waitErr != nil {
		return nil, m.waitErr
	}
	export := domain.ConversionTask{
		ID: "task-export", Name: domain.TaskNameExport, Operation: domain.OperationExportURL, Status: m.exportStatus,
	}
	if m.exportStatus == domain.StatusFinished {
		export.Result.Files = []domain.ResultFile{{Filename: "letter.pdf", URL: "https://storage.example/letter.pdf"}}
	} else {
		export.Message = "engine crashed"
	}
	return &domain.ConversionJob{
		ID:     jobID,
		Status: m.exportStatus,
		Tasks: []domain.ConversionTask{
			{ID: "task-upload", Name: domain.TaskNameUpload, Operation: domain.OperationImportUpload, Status: domain.StatusFinished},
			{ID: "task-convert", Name: domain.TaskNameConvert, Operation: domain.OperationConvert, Status: m.exportStatus},
			export,
		},
	}, nil
}

func (m *mockConversionAPI) Download(_ context.Context, url, destPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.downloadErr != nil {
		return m.downloadErr
	}
	m.downloads = append(m.downloads, destPath)
	return nil
}

func (m *mockConversionAPI) uploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}

// mockVerifier implements driven.PDFVerifier.
type mockVerifier struct {
	pages int
	err   error
	paths []string
}

func (m *mockVerifier) Verify(path string) (int, error) {
	m.paths = append(m.paths, path)
	return m.pages, m.err
}

// eventRecorder implements driving.EventSink.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
	onEmit func(domain.Event)
}

var _ driving.EventSink = (*eventRecorder)(nil)

func (r *eventRecorder) Emit(event domain.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	hook := r.onEmit
	r.mu.Unlock()
	if hook != nil {
		hook(event)
	}
}

func (r *eventRecorder) all() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

func (r *eventRecorder) ofKind(kind domain.EventKind) []domain.Event {
	var out []domain.Event
	for _, e := range r.all() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *eventRecorder) percents() []int {
	var out []int
	for _, e := range r.ofKind(domain.EventProgress) {
		out = append(out, e.Percent)
	}
	return out
}

func (r *eventRecorder) texts(kind domain.EventKind) []string {
	var out []string
	for _, e := range r.ofKind(kind) {
		out = append(out, e.Text)
	}
	return out
}
