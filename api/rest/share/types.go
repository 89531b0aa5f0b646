package share

type Request struct {
	Text     string `json:"text"`
	Platform string `json:"platform"`
}

// links keyed by platform; a single entry when a platform was named
type Response struct {
	Links map[string]string `json:"links"`
}

type PlatformsResponse struct {
	Platforms []string `json:"platforms"`
}
