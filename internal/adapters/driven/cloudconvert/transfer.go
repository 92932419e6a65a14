package cloudconvert

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/logger"
)

// Upload streams the file at filePath to the task's pre-signed form.
// Form parameters are written before the file, as the form requires.
func (c *Client) Upload(ctx context.Context, task *domain.ConversionTask, filePath string) error {
	if task == nil || task.Result.Form == nil {
		return ErrNoUploadForm
	}
	form := task.Result.Form

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	contentType := mw.FormDataContentType()
	go func() {
		pw.CloseWithError(writeUploadForm(mw, form.Parameters, f))
	}()
	// Unblocks the writer when the request ends before reading the body.
	defer pr.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, form.URL, pr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.plain.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(newAPIError(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	logger.Debug("cloudconvert: uploaded %s to task %s", filepath.Base(filePath), task.ID)
	return nil
}

// writeUploadForm writes the sorted parameters, then the file part, then
// the closing boundary.
func writeUploadForm(mw *multipart.Writer, params map[string]string, f *os.File) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, params[k]); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}

	part, err := mw.CreateFormFile("file", filepath.Base(f.Name()))
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("read %s: %w", f.Name(), err)
	}
	return mw.Close()
}

// Download fetches url into destPath, replacing it atomically.
func (c *Client) Download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.plain.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(newAPIError(resp))
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".lettergen-*"+filepath.Ext(destPath))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return err
	}

	logger.Debug("cloudconvert: downloaded %d bytes to %s", n, destPath)
	return nil
}
