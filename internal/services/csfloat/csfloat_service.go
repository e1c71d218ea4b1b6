package csfloat

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	ownOrdersEndpoint = "/v1/me/buy-orders"
	buyOrdersEndpoint = "/v1/buy-orders"
	listingsEndpoint  = "/v1/listings"
	meEndpoint        = "/v1/me"

	ownOrdersPageSize = 100
	marketOrdersLimit = 10
)

// Service exposes the CSFloat operations used by the trader.
type Service struct {
	client Requester
}

func NewService(client Requester) *Service {
	return &Service{client: client}
}

// ListOwnOrders returns every open buy order of the account, in the order
// the server returns them (newest first).
func (s *Service) ListOwnOrders() ([]OwnBuyOrder, error) {
	raw, err := fetchAllPages(s.client, ownOrdersEndpoint, "orders", ownOrdersPageSize)
	if err != nil {
		return nil, err
	}
	orders := make([]OwnBuyOrder, 0, len(raw))
	for _, r := range raw {
		o, err := mapOwnBuyOrder(r)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ListMarketOrders returns up to ten competing bids on a listing, best bid
// first. Bids with a float or wear expression are left out.
func (s *Service) ListMarketOrders(listingID string) ([]MarketBuyOrder, error) {
	if strings.TrimSpace(listingID) == "" {
		return nil, invalidArgument("listing id", "must not be empty")
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(marketOrdersLimit))
	result, err := s.client.Execute(http.MethodGet, listingsEndpoint+"/"+url.PathEscape(listingID)+"/buy-orders", params, nil)
	if err != nil {
		return nil, err
	}

	raw, err := resultObjects(recordMarketOrder, result.Data, "data")
	if err != nil {
		return nil, err
	}
	orders := make([]MarketBuyOrder, 0, len(raw))
	for _, r := range raw {
		if hasExpression(r) {
			continue
		}
		o, err := mapMarketBuyOrder(r)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// HighestBuyOrder returns the best plain bid on a listing. ok is false when
// the listing has none.
func (s *Service) HighestBuyOrder(listingID string) (order MarketBuyOrder, ok bool, err error) {
	orders, err := s.ListMarketOrders(listingID)
	if err != nil || len(orders) == 0 {
		return MarketBuyOrder{}, false, err
	}
	return orders[0], true, nil
}

type createOrderRequest struct {
	MarketHashName string `json:"market_hash_name"`
	MaxPrice       int64  `json:"max_price"`
	Quantity       int    `json:"quantity"`
}

// CreateOrder places a buy order. It reports false when the server answers
// with anything but 200; only transport failures are returned as errors.
func (s *Service) CreateOrder(itemName string, maxPrice Cents, quantity int) (bool, error) {
	if strings.TrimSpace(itemName) == "" {
		return false, invalidArgument("item name", "must not be empty")
	}
	if maxPrice <= 0 {
		return false, invalidArgument("max price", "must be positive")
	}
	if quantity <= 0 {
		return false, invalidArgument("quantity", "must be positive")
	}

	result, err := s.client.Execute(http.MethodPost, buyOrdersEndpoint, nil, createOrderRequest{
		MarketHashName: itemName,
		MaxPrice:       int64(maxPrice),
		Quantity:       quantity,
	})
	return accepted(result, err)
}

// RemoveOrder deletes one of the account's buy orders, with the same
// result convention as CreateOrder.
func (s *Service) RemoveOrder(orderID string) (bool, error) {
	if strings.TrimSpace(orderID) == "" {
		return false, invalidArgument("order id", "must not be empty")
	}
	result, err := s.client.Execute(http.MethodDelete, buyOrdersEndpoint+"/"+url.PathEscape(orderID), nil, nil)
	return accepted(result, err)
}

func accepted(result *Result, err error) (bool, error) {
	if err != nil {
		if isRejected(err) {
			return false, nil
		}
		return false, err
	}
	return result.StatusCode == http.StatusOK, nil
}

type listingQuery struct {
	limit  int
	sortBy string
	kind   string
}

// ListingOption adjusts a ListListings query.
type ListingOption func(*listingQuery)

func WithLimit(n int) ListingOption {
	return func(q *listingQuery) { q.limit = n }
}

func WithSortBy(sortBy string) ListingOption {
	return func(q *listingQuery) { q.sortBy = sortBy }
}

func WithType(kind string) ListingOption {
	return func(q *listingQuery) { q.kind = kind }
}

// ListListings returns listings of an item. By default it asks for the
// single cheapest buy-now listing.
func (s *Service) ListListings(itemName string, opts ...ListingOption) ([]Listing, error) {
	if strings.TrimSpace(itemName) == "" {
		return nil, invalidArgument("item name", "must not be empty")
	}
	q := listingQuery{limit: 1, sortBy: "lowest_price", kind: "buy_now"}
	for _, opt := range opts {
		opt(&q)
	}
	if q.limit <= 0 {
		return nil, invalidArgument("limit", "must be positive")
	}

	params := url.Values{}
	params.Set("market_hash_name", itemName)
	params.Set("limit", strconv.Itoa(q.limit))
	if q.sortBy != "" {
		params.Set("sort_by", q.sortBy)
	}
	if q.kind != "" {
		params.Set("type", q.kind)
	}

	result, err := s.client.Execute(http.MethodGet, listingsEndpoint, params, nil)
	if err != nil {
		return nil, err
	}
	raw, err := resultObjects(recordListing, result.Data, "data")
	if err != nil {
		return nil, err
	}
	listings := make([]Listing, 0, len(raw))
	for _, r := range raw {
		l, err := mapListing(r)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// ListingIDForItem returns the id of the cheapest buy-now listing of an
// item, or ErrNoListing.
func (s *Service) ListingIDForItem(itemName string) (string, error) {
	listings, err := s.ListListings(itemName)
	if err != nil {
		return "", err
	}
	if len(listings) == 0 {
		return "", ErrNoListing
	}
	return listings[0].ID, nil
}

// GetBalance returns the account balance. CSFloat nests it under "user";
// a top-level "balance" is accepted as well.
func (s *Service) GetBalance() (Cents, error) {
	result, err := s.client.Execute(http.MethodGet, meEndpoint, nil, nil)
	if err != nil {
		return 0, err
	}
	body, ok := result.Data.(map[string]any)
	if !ok {
		return 0, &MappingError{Record: recordBalance, Reason: "expected object payload"}
	}
	if _, nested := body["user"]; nested {
		if body, err = objectField(recordBalance, body, "user"); err != nil {
			return 0, err
		}
	}
	balance, err := intField(recordBalance, body, "balance")
	if err != nil {
		return 0, err
	}
	return Cents(balance), nil
}
