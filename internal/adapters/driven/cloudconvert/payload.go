package cloudconvert

import "github.com/custodia-labs/lettergen/internal/core/domain"

// jobPayload is the POST /v2/jobs request body.
type jobPayload struct {
	Tag   string         `json:"tag,omitempty"`
	Tasks map[string]any `json:"tasks"`
}

type uploadTaskPayload struct {
	Operation string `json:"operation"`
}

type convertTaskPayload struct {
	Operation    string `json:"operation"`
	Input        string `json:"input"`
	InputFormat  string `json:"input_format,omitempty"`
	OutputFormat string `json:"output_format"`
	Engine       string `json:"engine,omitempty"`
}

type exportTaskPayload struct {
	Operation            string `json:"operation"`
	Input                string `json:"input"`
	Inline               bool   `json:"inline"`
	ArchiveMultipleFiles bool   `json:"archive_multiple_files"`
}

func newJobPayload(req domain.JobRequest) jobPayload {
	return jobPayload{
		Tag: req.Tag,
		Tasks: map[string]any{
			domain.TaskNameUpload: uploadTaskPayload{
				Operation: domain.OperationImportUpload,
			},
			domain.TaskNameConvert: convertTaskPayload{
				Operation:    domain.OperationConvert,
				Input:        domain.TaskNameUpload,
				InputFormat:  req.InputFormat,
				OutputFormat: req.OutputFormat,
				Engine:       req.Engine,
			},
			domain.TaskNameExport: exportTaskPayload{
				Operation: domain.OperationExportURL,
				Input:     domain.TaskNameConvert,
			},
		},
	}
}

// jobData is the job object inside a response envelope.
type jobData struct {
	ID     string     `json:"id"`
	Tag    string     `json:"tag"`
	Status string     `json:"status"`
	Tasks  []taskData `json:"tasks"`
}

// taskData is the task object inside a response envelope.
type taskData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Operation string `json:"operation"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Result    *struct {
		Form *struct {
			URL        string            `json:"url"`
			Parameters map[string]string `json:"parameters"`
		} `json:"form"`
		Files []struct {
			Filename string `json:"filename"`
			URL      string `json:"url"`
			Size     int64  `json:"size"`
		} `json:"files"`
	} `json:"result"`
}

func (j *jobData) toDomain() *domain.ConversionJob {
	job := &domain.ConversionJob{
		ID:     j.ID,
		Tag:    j.Tag,
		Status: j.Status,
		Tasks:  make([]domain.ConversionTask, 0, len(j.Tasks)),
	}
	for _, t := range j.Tasks {
		job.Tasks = append(job.Tasks, t.toDomain())
	}
	return job
}

func (t *taskData) toDomain() domain.ConversionTask {
	task := domain.ConversionTask{
		ID:        t.ID,
		Name:      t.Name,
		Operation: t.Operation,
		Status:    t.Status,
		Message:   t.Message,
	}
	if t.Result == nil {
		return task
	}
	if f := t.Result.Form; f != nil {
		task.Result.Form = &domain.UploadForm{URL: f.URL, Parameters: f.Parameters}
	}
	for _, f := range t.Result.Files {
		task.Result.Files = append(task.Result.Files, domain.ResultFile{
			Filename: f.Filename,
			URL:      f.URL,
			Size:     f.Size,
		})
	}
	return task
}
