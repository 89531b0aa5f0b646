package usage

type Response struct {
	Allowed    bool   `json:"allowed"`
	Remaining  int    `json:"remaining"`
	Limit      int    `json:"limit"`
	Count      int    `json:"count"`
	Date       string `json:"date"`
	UpgradeURL string `json:"upgrade_url,omitempty"`
	Premium    bool   `json:"premium"`
}
