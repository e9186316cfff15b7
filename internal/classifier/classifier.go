package classifier

import "context"

// Recommendation is the structured answer for an unknown file extension.
type Recommendation struct {
	SuggestedFolder string `json:"suggested_folder_name"`
	IsNewCategory   bool   `json:"is_new_category"`
}

// CodeClassification is the structured answer for a code content sample.
type CodeClassification struct {
	ProjectName     string `json:"project_name"`
	SuggestedFolder string `json:"suggested_folder"`
}

// ImageDescription is one entry of a batch image-renaming answer.
type ImageDescription struct {
	OriginalFilename string `json:"original_filename"`
	ShortTitle       string `json:"short_title"`
}

// PDFClassification is the structured answer for a PDF subfolder assignment.
type PDFClassification struct {
	SuggestedSubfolder string `json:"suggested_subfolder"`
	IsNewSubfolder     bool   `json:"is_new_subfolder"`
}

// ImageSample carries one image of a rename batch to the classifier.
type ImageSample struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Service is the remote classification boundary. Implementations may fail
// transiently; callers wrap invocations with the retry policy.
type Service interface {
	ClassifyExtension(ctx context.Context, ext string, categories []string) (Recommendation, error)
	AnalyzeCode(ctx context.Context, filename, snippet string) (CodeClassification, error)
	DescribeImages(ctx context.Context, batch []ImageSample) (map[string]ImageDescription, error)
	ClassifyPDF(ctx context.Context, filename string, subfolders []string) (PDFClassification, error)
}
