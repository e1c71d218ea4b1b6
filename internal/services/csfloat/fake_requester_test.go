package csfloat

import (
	"net/url"
	"strconv"
)

type recordedCall struct {
	Method   string
	Endpoint string
	Params   url.Values
	Body     any
}

// fakeRequester records every call and answers through respond.
type fakeRequester struct {
	calls   []recordedCall
	respond func(call recordedCall) (*Result, error)
}

func (f *fakeRequester) Execute(method, endpoint string, params url.Values, body any) (*Result, error) {
	call := recordedCall{Method: method, Endpoint: endpoint, Params: params, Body: body}
	f.calls = append(f.calls, call)
	if f.respond == nil {
		return &Result{StatusCode: 200, Message: "OK"}, nil
	}
	return f.respond(call)
}

// pagedOrders serves total orders split into pages of the requested limit.
func pagedOrders(total int) func(call recordedCall) (*Result, error) {
	return func(call recordedCall) (*Result, error) {
		page, _ := strconv.Atoi(call.Params.Get("page"))
		limit, _ := strconv.Atoi(call.Params.Get("limit"))

		items := []any{}
		for i := page * limit; i < total && i < (page+1)*limit; i++ {
			items = append(items, rawOwnOrder(i))
		}
		return &Result{
			StatusCode: 200,
			Message:    "OK",
			Data:       map[string]any{"count": total, "orders": items},
		}, nil
	}
}

func rawOwnOrder(i int) map[string]any {
	return map[string]any{
		"id":               strconv.Itoa(i),
		"created_at":       "2024-12-30T23:02:47.781696Z",
		"market_hash_name": "Revolution Case",
		"qty":              1 + i%3,
		"price":            100 + i,
	}
}
