package csfloat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAllPages_RequestCount(t *testing.T) {
	tests := []struct {
		total, pageSize, wantRequests int
	}{
		{total: 0, pageSize: 100, wantRequests: 1},
		{total: 1, pageSize: 100, wantRequests: 1},
		{total: 100, pageSize: 100, wantRequests: 1},
		{total: 101, pageSize: 100, wantRequests: 2},
		{total: 200, pageSize: 100, wantRequests: 2},
		{total: 250, pageSize: 100, wantRequests: 3},
		{total: 7, pageSize: 3, wantRequests: 3},
		{total: 9, pageSize: 3, wantRequests: 3},
		{total: 5, pageSize: 1, wantRequests: 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("total=%d/size=%d", tt.total, tt.pageSize), func(t *testing.T) {
			fake := &fakeRequester{respond: pagedOrders(tt.total)}

			items, err := fetchAllPages(fake, ownOrdersEndpoint, "orders", tt.pageSize)
			require.NoError(t, err)
			assert.Len(t, items, tt.total)
			require.Len(t, fake.calls, tt.wantRequests)

			for page, call := range fake.calls {
				assert.Equal(t, http.MethodGet, call.Method)
				assert.Equal(t, ownOrdersEndpoint, call.Endpoint)
				assert.Equal(t, strconv.Itoa(page), call.Params.Get("page"))
				assert.Equal(t, strconv.Itoa(tt.pageSize), call.Params.Get("limit"))
			}
			for i, item := range items {
				assert.Equal(t, strconv.Itoa(i), item["id"])
			}
		})
	}
}

func TestFetchAllPages_FailureDiscardsPartialResults(t *testing.T) {
	serve := pagedOrders(300)
	rejected := &TransportError{Kind: KindStatus, StatusCode: http.StatusTooManyRequests, Message: "slow down"}
	fake := &fakeRequester{respond: func(call recordedCall) (*Result, error) {
		if call.Params.Get("page") == "2" {
			return nil, rejected
		}
		return serve(call)
	}}

	items, err := fetchAllPages(fake, ownOrdersEndpoint, "orders", 100)
	assert.Nil(t, items)
	assert.Same(t, rejected, err)
	assert.Len(t, fake.calls, 3)
}

func TestFetchAllPages_InvalidPageSize(t *testing.T) {
	fake := &fakeRequester{}

	_, err := fetchAllPages(fake, ownOrdersEndpoint, "orders", 0)
	var ia *InvalidArgumentError
	require.True(t, errors.As(err, &ia))
	assert.Empty(t, fake.calls)
}

func TestFetchAllPages_MissingCount(t *testing.T) {
	fake := &fakeRequester{respond: func(recordedCall) (*Result, error) {
		return &Result{StatusCode: 200, Data: map[string]any{"orders": []any{}}}, nil
	}}

	_, err := fetchAllPages(fake, ownOrdersEndpoint, "orders", 100)
	var me *MappingError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, countKey, me.Field)
}

func TestFetchAllPages_MissingItems(t *testing.T) {
	fake := &fakeRequester{respond: func(recordedCall) (*Result, error) {
		return &Result{StatusCode: 200, Data: map[string]any{"count": 3}}, nil
	}}

	_, err := fetchAllPages(fake, ownOrdersEndpoint, "orders", 100)
	var me *MappingError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "orders", me.Field)
}

func TestFetchAllPages_NullItemsIsEmpty(t *testing.T) {
	fake := &fakeRequester{respond: func(recordedCall) (*Result, error) {
		return &Result{StatusCode: 200, Data: map[string]any{"count": 0, "orders": nil}}, nil
	}}

	items, err := fetchAllPages(fake, ownOrdersEndpoint, "orders", 100)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchAllPages_OversizedCount(t *testing.T) {
	tests := []struct {
		name  string
		count any
	}{
		{"beyond page limit", int64(1) << 60},
		{"near max int64", json.Number("9223372036854775807")},
		{"beyond int64", json.Number("99999999999999999999")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRequester{respond: func(recordedCall) (*Result, error) {
				return &Result{StatusCode: 200, Data: map[string]any{
					"count":  tt.count,
					"orders": []any{rawOwnOrder(0)},
				}}, nil
			}}

			items, err := fetchAllPages(fake, ownOrdersEndpoint, "orders", 100)
			assert.Nil(t, items)
			var me *MappingError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, countKey, me.Field)
			assert.Len(t, fake.calls, 1)
		})
	}
}

func TestFetchAllPages_LargestAllowedCount(t *testing.T) {
	total := maxPages * 2
	fake := &fakeRequester{respond: pagedOrders(total)}

	items, err := fetchAllPages(fake, ownOrdersEndpoint, "orders", 2)
	require.NoError(t, err)
	assert.Len(t, items, total)
	assert.Len(t, fake.calls, maxPages)
}

func TestListOwnOrders_OversizedCount(t *testing.T) {
	fake := &fakeRequester{respond: func(recordedCall) (*Result, error) {
		return &Result{StatusCode: 200, Data: map[string]any{
			"count":  json.Number("1152921504606846976"),
			"orders": []any{rawOwnOrder(0)},
		}}, nil
	}}

	orders, err := NewService(fake).ListOwnOrders()
	assert.Nil(t, orders)
	var me *MappingError
	assert.True(t, errors.As(err, &me))
	assert.Len(t, fake.calls, 1)
}
