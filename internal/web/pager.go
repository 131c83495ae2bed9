package web

import (
	"ski-portal/internal/dto/response"
	"ski-portal/pkg/utils"
)

// Pageable views know how to link to another page of themselves.
type Pageable interface {
	PageURL(page int) string
}

type PageLink struct {
	Number  int
	URL     string
	Current bool
}

type Pager struct {
	TotalPages int
	PrevURL    string
	NextURL    string
	Links      []PageLink
}

func NewPager(view Pageable, meta response.PaginationMeta) Pager {
	pager := Pager{TotalPages: meta.TotalPages}
	if meta.HasPrev() {
		pager.PrevURL = view.PageURL(meta.PrevPage())
	}
	if meta.HasNext() {
		pager.NextURL = view.PageURL(meta.NextPage())
	}
	for _, n := range utils.PageWindow(meta.Page, meta.TotalPages, 2) {
		pager.Links = append(pager.Links, PageLink{
			Number:  n,
			URL:     view.PageURL(n),
			Current: n == meta.Page,
		})
	}
	return pager
}
