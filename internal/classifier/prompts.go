package classifier

import (
	"fmt"
	"strings"
)

const extensionSystemPrompt = "You are an expert file organizer. The input is an unknown file extension. " +
	"Recommend a folder name. Use an existing category if appropriate, or suggest a new, clean category " +
	"(e.g. 'Blender_Files')."

const codeSystemPrompt = "You are an expert software engineer and project classifier. " +
	"Analyze the code snippet. Infer its main purpose, language, and the project it belongs to. " +
	"Provide a clean, project-based folder classification. Use snake_case for names " +
	"(e.g. 'Web_Scraper', 'Financial_Model')."

const imageSystemPrompt = "You are an expert file naming assistant. Your only output must be the requested JSON structure."

const pdfSystemPrompt = "You are an expert document sorter. You must classify the document into one of the " +
	"existing subfolders or suggest a new one. Suggested names must be clean and reflect content " +
	"(e.g. 'Invoices', 'Research_Papers')."

func extensionPrompt(ext string, categories []string) string {
	return fmt.Sprintf("Classify the unknown file extension %q and suggest a folder. Existing categories: [%s].",
		ext, strings.Join(categories, ", "))
}

func codePrompt(filename, snippet string) string {
	return fmt.Sprintf("Code snippet from %s:\n\n%s", filename, snippet)
}

func imageBatchPrompt() string {
	return "Analyze the following batch of images. For EACH image, generate a concise, descriptive, " +
		"3-5 word title suitable for renaming. Return the complete structured JSON array."
}

func pdfPrompt(filename string, subfolders []string) string {
	return fmt.Sprintf("The PDF file is named %q. Infer its content. Existing subfolders are: [%s]. Classify it.",
		filename, strings.Join(subfolders, ", "))
}
