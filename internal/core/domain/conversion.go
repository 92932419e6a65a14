package domain

// Conversion task operations understood by the remote service.
const (
	OperationImportUpload = "import/upload"
	OperationConvert      = "convert"
	OperationExportURL    = "export/url"
)

// Task and job statuses reported by the remote service.
const (
	StatusWaiting    = "waiting"
	StatusProcessing = "processing"
	StatusFinished   = "finished"
	StatusError      = "error"
)

// Task names used in the job graph.
const (
	TaskNameUpload  = "upload"
	TaskNameConvert = "convert"
	TaskNameExport  = "export"
)

// JobRequest describes the upload → convert → export task graph.
type JobRequest struct {
	// InputFormat is the source extension (e.g. "docx"). Optional.
	InputFormat string

	// OutputFormat is the target extension (e.g. "pdf").
	OutputFormat string

	// Engine is the conversion engine profile (e.g. "office").
	Engine string

	// Tag is an arbitrary label attached to the job.
	Tag string
}

// ConversionJob is a remote-service-owned unit of work.
// Only a transient reference is held while a conversion is in flight.
type ConversionJob struct {
	ID     string
	Tag    string
	Status string
	Tasks  []ConversionTask
}

// ConversionTask is one step of a conversion job.
type ConversionTask struct {
	ID        string
	Name      string
	Operation string
	Status    string
	Message   string
	Result    TaskResult
}

// TaskResult carries the operation-specific output of a task.
type TaskResult struct {
	// Form is set on import/upload tasks awaiting a file.
	Form *UploadForm

	// Files is set on finished export tasks.
	Files []ResultFile
}

// UploadForm is the pre-signed form a file must be posted to.
type UploadForm struct {
	URL        string
	Parameters map[string]string
}

// ResultFile is a downloadable output of an export task.
type ResultFile struct {
	Filename string
	URL      string
	Size     int64
}

// TaskByName returns the task with the given name, if present.
func (j *ConversionJob) TaskByName(name string) (*ConversionTask, bool) {
	for i := range j.Tasks {
		if j.Tasks[i].Name == name {
			return &j.Tasks[i], true
		}
	}
	return nil, false
}

// FinishedExport returns the first export/url task in finished state.
func (j *ConversionJob) FinishedExport() (*ConversionTask, bool) {
	for i := range j.Tasks {
		t := &j.Tasks[i]
		if t.Operation == OperationExportURL && t.Status == StatusFinished {
			return t, true
		}
	}
	return nil, false
}

// FailedTask returns the first task in error state that carries a message,
// or the first task in error state when none does.
func (j *ConversionJob) FailedTask() (*ConversionTask, bool) {
	var first *ConversionTask
	for i := range j.Tasks {
		if j.Tasks[i].Status != StatusError {
			continue
		}
		if j.Tasks[i].Message != "" {
			return &j.Tasks[i], true
		}
		if first == nil {
			first = &j.Tasks[i]
		}
	}
	return first, first != nil
}
