package testsupport

import (
	"context"
	"fmt"

	"curator/internal/classifier"
	"curator/internal/services"
)

// FakeClassifier is a scriptable classifier.Service for stage tests. Zero
// values answer with sensible defaults; the Fail* counters make the first N
// calls of an operation fail transiently. Calls counts invocations per
// operation.
type FakeClassifier struct {
	ExtensionAnswers map[string]classifier.Recommendation
	CodeAnswer       classifier.CodeClassification
	ImageTitles      map[string]string
	PDFAnswers       map[string]classifier.PDFClassification

	FailExtension int
	FailCode      int
	FailImages    int
	FailPDF       int

	Calls map[string]int
}

func (f *FakeClassifier) bump(op string) {
	if f.Calls == nil {
		f.Calls = make(map[string]int)
	}
	f.Calls[op]++
}

func (f *FakeClassifier) ClassifyExtension(ctx context.Context, ext string, categories []string) (classifier.Recommendation, error) {
	f.bump("extension")
	if f.FailExtension > 0 {
		f.FailExtension--
		return classifier.Recommendation{}, fmt.Errorf("%w: fake extension outage", services.ErrTransient)
	}
	if answer, ok := f.ExtensionAnswers[ext]; ok {
		return answer, nil
	}
	return classifier.Recommendation{SuggestedFolder: "Misc", IsNewCategory: true}, nil
}

func (f *FakeClassifier) AnalyzeCode(ctx context.Context, filename, snippet string) (classifier.CodeClassification, error) {
	f.bump("code")
	if f.FailCode > 0 {
		f.FailCode--
		return classifier.CodeClassification{}, fmt.Errorf("%w: fake code outage", services.ErrTransient)
	}
	if f.CodeAnswer.ProjectName != "" {
		return f.CodeAnswer, nil
	}
	return classifier.CodeClassification{ProjectName: "Scratch", SuggestedFolder: "Code"}, nil
}

func (f *FakeClassifier) DescribeImages(ctx context.Context, batch []classifier.ImageSample) (map[string]classifier.ImageDescription, error) {
	f.bump("images")
	if f.FailImages > 0 {
		f.FailImages--
		return nil, fmt.Errorf("%w: fake image outage", services.ErrTransient)
	}
	out := make(map[string]classifier.ImageDescription, len(batch))
	for _, sample := range batch {
		title := f.ImageTitles[sample.Filename]
		if title == "" {
			title = "Untitled"
		}
		out[sample.Filename] = classifier.ImageDescription{
			OriginalFilename: sample.Filename,
			ShortTitle:       title,
		}
	}
	return out, nil
}

func (f *FakeClassifier) ClassifyPDF(ctx context.Context, filename string, subfolders []string) (classifier.PDFClassification, error) {
	f.bump("pdf")
	if f.FailPDF > 0 {
		f.FailPDF--
		return classifier.PDFClassification{}, fmt.Errorf("%w: fake pdf outage", services.ErrTransient)
	}
	if answer, ok := f.PDFAnswers[filename]; ok {
		return answer, nil
	}
	return classifier.PDFClassification{SuggestedSubfolder: "General", IsNewSubfolder: true}, nil
}
