package dto

import (
	"botdash/internal/domain"
	"botdash/internal/filter"
	"botdash/internal/service"
)

// SignalListOutput is a page of signals plus counts over the whole filtered set
type SignalListOutput struct {
	Items    []*domain.Signal      `json:"items"`
	PageInfo filter.PageInfo       `json:"page_info"`
	Summary  service.SignalSummary `json:"summary"`
}
