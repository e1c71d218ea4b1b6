package csfloat

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
)

const (
	countKey = "count"

	// maxPages bounds how far a declared count can drive the walk.
	maxPages = 10000
)

// FetchAllPages walks a paged endpoint. See fetchAllPages.
func (c *RestClient) FetchAllPages(endpoint, itemsKey string, pageSize int) ([]map[string]any, error) {
	return fetchAllPages(c, endpoint, itemsKey, pageSize)
}

// fetchAllPages requests page 0, reads the declared total from "count" and
// then requests pages 1..ceil(count/pageSize)-1 one after another. Items are
// returned in page order. A failure on any page discards everything.
func fetchAllPages(r Requester, endpoint, itemsKey string, pageSize int) ([]map[string]any, error) {
	if pageSize <= 0 {
		return nil, invalidArgument("page size", "must be positive")
	}

	total, items, err := fetchPage(r, endpoint, itemsKey, 0, pageSize)
	if err != nil {
		return nil, err
	}
	if total <= pageSize {
		return items, nil
	}

	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	if pages > maxPages {
		return nil, &MappingError{
			Record: recordPage,
			Field:  countKey,
			Reason: fmt.Sprintf("count %d needs %d pages, more than %d", total, pages, maxPages),
		}
	}

	all := make([]map[string]any, 0, len(items))
	all = append(all, items...)
	for page := 1; page < pages; page++ {
		_, items, err := fetchPage(r, endpoint, itemsKey, page, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

func fetchPage(r Requester, endpoint, itemsKey string, page, pageSize int) (int, []map[string]any, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(pageSize))

	result, err := r.Execute(http.MethodGet, endpoint, params, nil)
	if err != nil {
		return 0, nil, err
	}

	body, ok := result.Data.(map[string]any)
	if !ok {
		return 0, nil, &MappingError{Record: recordPage, Reason: "expected object payload"}
	}
	total, err := intField(recordPage, body, countKey)
	if err != nil {
		return 0, nil, err
	}
	if total < 0 {
		return 0, nil, &MappingError{Record: recordPage, Field: countKey, Reason: "negative count"}
	}
	if total > math.MaxInt {
		return 0, nil, &MappingError{Record: recordPage, Field: countKey, Reason: fmt.Sprintf("count %d is out of range", total)}
	}
	items, err := resultObjects(recordPage, body, itemsKey)
	if err != nil {
		return 0, nil, err
	}
	return int(total), items, nil
}
