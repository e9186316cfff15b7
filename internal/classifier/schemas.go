package classifier

import "google.golang.org/genai"

func recommendationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"suggested_folder_name": {Type: genai.TypeString, Description: "The recommended folder name."},
			"is_new_category":       {Type: genai.TypeBoolean, Description: "True if this is a new category."},
		},
		Required: []string{"suggested_folder_name", "is_new_category"},
	}
}

func codeClassificationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"project_name":     {Type: genai.TypeString, Description: "The primary project or topic this code belongs to."},
			"suggested_folder": {Type: genai.TypeString, Description: "The final recommended folder name based on content."},
		},
		Required: []string{"project_name", "suggested_folder"},
	}
}

func batchDescriptionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"descriptions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"original_filename": {Type: genai.TypeString, Description: "The full original filename."},
						"short_title":       {Type: genai.TypeString, Description: "A concise, descriptive, 3-5 word title."},
					},
					Required: []string{"original_filename", "short_title"},
				},
			},
		},
		Required: []string{"descriptions"},
	}
}

func pdfClassificationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"suggested_subfolder": {Type: genai.TypeString, Description: "The specific subfolder name."},
			"is_new_subfolder":    {Type: genai.TypeBoolean, Description: "True if this subfolder is new to the Documents folder."},
		},
		Required: []string{"suggested_subfolder", "is_new_subfolder"},
	}
}
