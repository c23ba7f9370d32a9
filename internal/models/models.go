package models

// Outcome statuses reported per uploaded file
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// UploadItem is a single file received in an upload batch
type UploadItem struct {
	OriginalName string
	Extension    string // lowercased, includes the dot
	Data         []byte
	ReadErr      error // set when the upload body could not be read
}

// FilenameRecord describes where a renamed image ended up
type FilenameRecord struct {
	CleanedName     string
	FinalName       string
	DestinationPath string
	AIGeneratedName string
}

// FileResult is the per-file outcome returned to clients
type FileResult struct {
	OriginalName    string `json:"original_name" yaml:"original_name" parquet:"original_name"`
	NewName         string `json:"new_name,omitempty" yaml:"new_name,omitempty" parquet:"new_name"`
	AIGeneratedName string `json:"ai_generated_name,omitempty" yaml:"ai_generated_name,omitempty" parquet:"ai_generated_name"`
	Status          string `json:"status" yaml:"status" parquet:"status"`
	Message         string `json:"message,omitempty" yaml:"message,omitempty" parquet:"message"`
}

// Succeeded builds a success outcome from a placed file
func Succeeded(originalName string, record *FilenameRecord) FileResult {
	return FileResult{
		OriginalName:    originalName,
		NewName:         record.FinalName,
		AIGeneratedName: record.AIGeneratedName,
		Status:          StatusSuccess,
	}
}

// Failed builds an error outcome
func Failed(originalName, message string) FileResult {
	return FileResult{
		OriginalName: originalName,
		Status:       StatusError,
		Message:      message,
	}
}

// UploadReport aggregates the outcomes of one batch
type UploadReport struct {
	Results        []FileResult `json:"results" yaml:"results"`
	TotalProcessed int          `json:"total_processed" yaml:"total_processed"`
	SuccessCount   int          `json:"success_count" yaml:"success_count"`
}

// Add appends an outcome and updates the counters
func (r *UploadReport) Add(result FileResult) {
	r.Results = append(r.Results, result)
	r.TotalProcessed++
	if result.Status == StatusSuccess {
		r.SuccessCount++
	}
}
