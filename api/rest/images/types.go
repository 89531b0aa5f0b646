package images

// AnalyzeRequest is the JSON form of an image-analyze call; multipart uploads use the "file" field
type AnalyzeRequest struct {
	ImageURL string `json:"imageUrl"`
	Base64   string `json:"base64"`
	Prompt   string `json:"prompt"`
}

type AnalyzeResponse struct {
	Caption   string `json:"caption"`
	Result    string `json:"result"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Remaining int    `json:"remaining"`
	Warning   string `json:"warning,omitempty"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
