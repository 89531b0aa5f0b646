package history

import (
	"codeberg.org/boomline/server/api/rest/pagination"
	"codeberg.org/boomline/server/internal/ledger"
)

type SaveRequest struct {
	Prompt      string `json:"prompt"`
	Result      string `json:"result"`
	ContentType string `json:"contentType"`
}

type SaveResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Warning string `json:"warning,omitempty"`
}

type ListResponse struct {
	Entries    []ledger.Entry   `json:"entries"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

type ClearResponse struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

// returned with a 500 when only part of the hosted history could be removed
type PartialClearResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
	Failed  int    `json:"failed"`
}
