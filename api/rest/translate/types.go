package translate

// Request accepts the target under any of the names older clients send
type Request struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	Language       string `json:"language"`
	TargetLang     string `json:"targetLang"`
}

func (r Request) target() string {
	switch {
	case r.TargetLanguage != "":
		return r.TargetLanguage
	case r.Language != "":
		return r.Language
	default:
		return r.TargetLang
	}
}

type Response struct {
	Translated string `json:"translated"`
	Language   string `json:"language"`
	Skipped    bool   `json:"skipped"`
}
