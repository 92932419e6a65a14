package cloudconvert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

// fakeService is a minimal in-process CloudConvert.
type fakeService struct {
	t      *testing.T
	server *httptest.Server

	mu          sync.Mutex
	jobRequest  map[string]any
	authHeaders map[string]string
	uploadForm  map[string]string
	uploadFile  string
	uploadName  string
	uploadSize  int64
	omitForm    bool
	waitStatus  int
	waitBody    string
}

func newFakeService(t *testing.T) *fakeService {
	f := &fakeService{t: t, authHeaders: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/jobs", f.createJob)
	mux.HandleFunc("GET /v2/tasks/{id}", f.getTask)
	mux.HandleFunc("GET /v2/jobs/{id}", f.waitJob)
	mux.HandleFunc("POST /upload", f.upload)
	mux.HandleFunc("POST /upload-expired", f.rejectUpload)
	mux.HandleFunc("GET /files/letter.pdf", f.download)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeService) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authHeaders[r.Method+" "+r.URL.Path] = r.Header.Get("Authorization")
}

func (f *fakeService) writeData(w http.ResponseWriter, status int, data string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"data":%s}`, data)
}

func (f *fakeService) uploadTask() string {
	form := fmt.Sprintf(`{"form":{"url":%q,"parameters":{"key":"abc","policy":"xyz"}}}`, f.server.URL+"/upload")
	if f.omitForm {
		form = "null"
	}
	return `{"id":"t-upload","name":"upload","operation":"import/upload","status":"waiting","message":null,"result":` + form + `}`
}

func (f *fakeService) createJob(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	var body map[string]any
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
	f.mu.Lock()
	f.jobRequest = body
	f.mu.Unlock()

	f.writeData(w, http.StatusCreated, `{"id":"job-1","tag":"tag-1","status":"waiting","tasks":[`+f.uploadTask()+
		`,{"id":"t-convert","name":"convert","operation":"convert","status":"waiting"}`+
		`,{"id":"t-export","name":"export","operation":"export/url","status":"waiting"}]}`)
}

func (f *fakeService) getTask(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	if r.PathValue("id") != "t-upload" {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Task not found","code":"NOT_FOUND"}`)
		return
	}
	f.omitForm = false
	f.writeData(w, http.StatusOK, f.uploadTask())
}

func (f *fakeService) waitJob(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	if f.waitStatus != 0 {
		w.Header().Set(HeaderRetryAfter, "30")
		w.WriteHeader(f.waitStatus)
		fmt.Fprint(w, f.waitBody)
		return
	}
	files := fmt.Sprintf(`[{"filename":"letter.pdf","size":9,"url":%q}]`, f.server.URL+"/files/letter.pdf")
	f.writeData(w, http.StatusOK, `{"id":"`+r.PathValue("id")+`","status":"finished","tasks":[`+
		`{"id":"t-convert","name":"convert","operation":"convert","status":"finished"},`+
		`{"id":"t-export","name":"export","operation":"export/url","status":"finished","result":{"files":`+files+`}}]}`)
}

func (f *fakeService) rejectUpload(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprint(w, `{"message":"Upload signature expired","code":"INVALID_SIGNATURE"}`)
}

func (f *fakeService) upload(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	f.mu.Lock()
	f.uploadSize = r.ContentLength
	f.mu.Unlock()
	mr, err := r.MultipartReader()
	require.NoError(f.t, err)

	form := map[string]string{}
	var order []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(f.t, err)
		data, err := io.ReadAll(part)
		require.NoError(f.t, err)
		order = append(order, part.FormName())
		if part.FormName() == "file" {
			f.mu.Lock()
			f.uploadFile = string(data)
			f.uploadName = part.FileName()
			f.mu.Unlock()
			continue
		}
		form[part.FormName()] = string(data)
	}
	assert.Equal(f.t, []string{"key", "policy", "file"}, order, "parameters precede the file")

	f.mu.Lock()
	f.uploadForm = form
	f.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
}

func (f *fakeService) download(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	_, _ = w.Write([]byte("%PDF-1.7\n"))
}

func newTestClient(t *testing.T, f *fakeService) *Client {
	t.Helper()
	c, err := New(Config{
		APIKey:  "secret-key",
		BaseURL: f.server.URL,
		SyncURL: f.server.URL + "/",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
}

func TestFactory(t *testing.T) {
	factory := Factory(domain.ConversionSettings{Sandbox: true, RequestsPerSecond: 2})

	_, err := factory("")
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)

	api, err := factory("key")
	require.NoError(t, err)
	client, ok := api.(*Client)
	require.True(t, ok)
	assert.Equal(t, domain.SandboxConversionBaseURL, client.baseURL)
	assert.Equal(t, domain.SandboxConversionSyncURL, client.syncURL)
}

func TestClient_FullConversion(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)
	ctx := context.Background()

	job, err := c.CreateJob(ctx, domain.JobRequest{
		InputFormat:  "docx",
		OutputFormat: "pdf",
		Engine:       "office",
		Tag:          "tag-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	require.Len(t, job.Tasks, 3)

	tasks := f.jobRequest["tasks"].(map[string]any)
	assert.Equal(t, "tag-1", f.jobRequest["tag"])
	assert.Equal(t, map[string]any{"operation": "import/upload"}, tasks["upload"])
	assert.Equal(t, map[string]any{
		"operation":     "convert",
		"input":         "upload",
		"input_format":  "docx",
		"output_format": "pdf",
		"engine":        "office",
	}, tasks["convert"])
	assert.Equal(t, map[string]any{
		"operation":              "export/url",
		"input":                  "convert",
		"inline":                 false,
		"archive_multiple_files": false,
	}, tasks["export"])

	upload, ok := job.TaskByName(domain.TaskNameUpload)
	require.True(t, ok)
	require.NotNil(t, upload.Result.Form)
	assert.Equal(t, map[string]string{"key": "abc", "policy": "xyz"}, upload.Result.Form.Parameters)

	dir := t.TempDir()
	docPath := filepath.Join(dir, "Lee_AbsenceLetter.docx")
	require.NoError(t, os.WriteFile(docPath, []byte("docx bytes"), 0o644))
	require.NoError(t, c.Upload(ctx, upload, docPath))
	assert.Equal(t, "docx bytes", f.uploadFile)
	assert.Equal(t, "Lee_AbsenceLetter.docx", f.uploadName)
	assert.Equal(t, map[string]string{"key": "abc", "policy": "xyz"}, f.uploadForm)

	done, err := c.WaitJob(ctx, job.ID)
	require.NoError(t, err)
	export, ok := done.FinishedExport()
	require.True(t, ok)
	require.Len(t, export.Result.Files, 1)
	assert.Equal(t, int64(9), export.Result.Files[0].Size)

	pdfPath := filepath.Join(dir, "Lee_AbsenceLetter.pdf")
	require.NoError(t, c.Download(ctx, export.Result.Files[0].URL, pdfPath))
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7\n", string(data))

	assert.Equal(t, "Bearer secret-key", f.authHeaders["POST /v2/jobs"])
	assert.Equal(t, "Bearer secret-key", f.authHeaders["GET /v2/jobs/job-1"])
	assert.Empty(t, f.authHeaders["POST /upload"], "pre-signed upload carries no credential")
	assert.Empty(t, f.authHeaders["GET /files/letter.pdf"], "export URL carries no credential")
}

func TestClient_UploadStreamsFile(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)
	ctx := context.Background()

	job, err := c.CreateJob(ctx, domain.JobRequest{OutputFormat: "pdf"})
	require.NoError(t, err)
	upload, ok := job.TaskByName(domain.TaskNameUpload)
	require.True(t, ok)

	content := bytes.Repeat([]byte("PK\x03\x04 letter body "), 64<<10)
	docPath := filepath.Join(t.TempDir(), "Ann_AbsenceLetter.docx")
	require.NoError(t, os.WriteFile(docPath, content, 0o644))

	require.NoError(t, c.Upload(ctx, upload, docPath))

	assert.Equal(t, int64(-1), f.uploadSize, "body is streamed, not buffered to a known length")
	assert.Equal(t, string(content), f.uploadFile)
	assert.Equal(t, map[string]string{"key": "abc", "policy": "xyz"}, f.uploadForm)
}

func TestClient_UploadRejected(t *testing.T) {
	f := newFakeService(t)
	docPath := filepath.Join(t.TempDir(), "Ann_AbsenceLetter.docx")
	require.NoError(t, os.WriteFile(docPath, []byte("docx bytes"), 0o644))
	task := &domain.ConversionTask{ID: "t-upload", Result: domain.TaskResult{Form: &domain.UploadForm{
		URL:        f.server.URL + "/upload-expired",
		Parameters: map[string]string{"key": "abc"},
	}}}

	err := newTestClient(t, f).Upload(context.Background(), task, docPath)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INVALID_SIGNATURE", apiErr.Code)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestClient_UploadMissingFile(t *testing.T) {
	f := newFakeService(t)
	task := &domain.ConversionTask{ID: "t-upload", Result: domain.TaskResult{Form: &domain.UploadForm{
		URL: f.server.URL + "/upload",
	}}}

	err := newTestClient(t, f).Upload(context.Background(), task, filepath.Join(t.TempDir(), "missing.docx"))

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotContains(t, f.authHeaders, "POST /upload", "nothing sent")
}

func TestClient_GetTask(t *testing.T) {
	f := newFakeService(t)
	c := newTestClient(t, f)

	task, err := c.GetTask(context.Background(), "t-upload")
	require.NoError(t, err)
	assert.Equal(t, domain.OperationImportUpload, task.Operation)
	assert.NotNil(t, task.Result.Form)

	_, err = c.GetTask(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "Task not found", apiErr.Message)
}

func TestClient_Errors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		f := newFakeService(t)
		f.waitStatus = http.StatusUnauthorized
		f.waitBody = `{"message":"Unauthenticated.","code":"UNAUTHENTICATED"}`

		_, err := newTestClient(t, f).WaitJob(context.Background(), "job-1")

		assert.True(t, IsUnauthorized(err))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("rate limited", func(t *testing.T) {
		f := newFakeService(t)
		f.waitStatus = http.StatusTooManyRequests

		_, err := newTestClient(t, f).WaitJob(context.Background(), "job-1")

		require.True(t, IsRateLimited(err))
		assert.ErrorIs(t, err, domain.ErrRateLimited)
		var rlErr *RateLimitError
		require.ErrorAs(t, err, &rlErr)
		assert.False(t, rlErr.RetryAt.IsZero())
	})

	t.Run("plain text error body", func(t *testing.T) {
		f := newFakeService(t)
		f.waitStatus = http.StatusBadGateway
		f.waitBody = "upstream unavailable"

		_, err := newTestClient(t, f).WaitJob(context.Background(), "job-1")

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.NotErrorIs(t, err, domain.ErrUnauthorized)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, "upstream unavailable", apiErr.Message)
	})

	t.Run("upload without form", func(t *testing.T) {
		f := newFakeService(t)
		err := newTestClient(t, f).Upload(context.Background(), &domain.ConversionTask{ID: "t"}, "unused")
		assert.ErrorIs(t, err, ErrNoUploadForm)
	})

	t.Run("download not found", func(t *testing.T) {
		f := newFakeService(t)
		dest := filepath.Join(t.TempDir(), "letter.pdf")

		err := newTestClient(t, f).Download(context.Background(), f.server.URL+"/files/missing.pdf", dest)

		assert.True(t, IsNotFound(err))
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, statErr := os.Stat(dest)
		assert.ErrorIs(t, statErr, os.ErrNotExist)
	})

	t.Run("cancelled context", func(t *testing.T) {
		f := newFakeService(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestClient(t, f).WaitJob(ctx, "job-1")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_UploadFormFetchedLater(t *testing.T) {
	f := newFakeService(t)
	f.omitForm = true
	c := newTestClient(t, f)

	job, err := c.CreateJob(context.Background(), domain.JobRequest{OutputFormat: "pdf"})
	require.NoError(t, err)
	upload, ok := job.TaskByName(domain.TaskNameUpload)
	require.True(t, ok)
	assert.Nil(t, upload.Result.Form)

	fetched, err := c.GetTask(context.Background(), upload.ID)
	require.NoError(t, err)
	assert.NotNil(t, fetched.Result.Form)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0)
	require.NoError(t, rl.Wait(context.Background()))
	assert.Nil(t, rl.CheckRateLimit(&http.Response{StatusCode: http.StatusOK}))
	assert.Nil(t, rl.CheckRateLimit(nil))

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
	resp.Header.Set(HeaderRetryAfter, "10")

	err := rl.CheckRateLimit(resp)

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, now.Add(10*time.Second), rlErr.RetryAt)
}
