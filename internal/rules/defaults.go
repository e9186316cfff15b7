package rules

// defaultMap returns the seed rule table written on first run.
func defaultMap() map[string][]string {
	return map[string][]string{
		"Images":     {".jpg", ".jpeg", ".png", ".gif", ".ico", ".webp", ".tiff"},
		"Documents":  {".pdf", ".docx", ".doc", ".txt", ".xlsx", ".pptx", ".csv", ".epub", ".odt"},
		"Installers": {".exe", ".msi", ".dmg", ".pkg"},
		"Archives":   {".zip", ".rar", ".7z", ".tar", ".gz"},
		"Code":       {".py", ".js", ".html", ".css", ".md", ".json", ".log"},
		"Audio":      {".mp3", ".wav", ".aac", ".flac"},
		"Video":      {".mp4", ".mov", ".mkv", ".avi"},
		exclusionsKey: {".temp", ".lock", "readme.md", "desktop.ini"},
	}
}

// CodeCategory is the rule category whose hits trigger content-based project
// classification during triage.
const CodeCategory = "Code"
