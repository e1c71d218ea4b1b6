package csfloat

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	recordOwnOrder    = "own_buy_order"
	recordMarketOrder = "market_buy_order"
	recordListing     = "listing"
	recordBalance     = "balance"
	recordPage        = "page"

	expressionKey = "expression"
	itemKey       = "item"
)

func mapOwnBuyOrder(raw map[string]any) (OwnBuyOrder, error) {
	var (
		o   OwnBuyOrder
		err error
	)
	if o.ID, err = stringField(recordOwnOrder, raw, "id"); err != nil {
		return OwnBuyOrder{}, err
	}
	if o.CreatedAt, err = stringField(recordOwnOrder, raw, "created_at"); err != nil {
		return OwnBuyOrder{}, err
	}
	if o.MarketHashName, err = stringField(recordOwnOrder, raw, "market_hash_name"); err != nil {
		return OwnBuyOrder{}, err
	}
	if o.Quantity, err = quantityField(recordOwnOrder, raw); err != nil {
		return OwnBuyOrder{}, err
	}
	price, err := intField(recordOwnOrder, raw, "price")
	if err != nil {
		return OwnBuyOrder{}, err
	}
	o.Price = Cents(price)
	return o, nil
}

func mapMarketBuyOrder(raw map[string]any) (MarketBuyOrder, error) {
	var (
		o   MarketBuyOrder
		err error
	)
	if o.MarketHashName, err = stringField(recordMarketOrder, raw, "market_hash_name"); err != nil {
		return MarketBuyOrder{}, err
	}
	if o.Quantity, err = quantityField(recordMarketOrder, raw); err != nil {
		return MarketBuyOrder{}, err
	}
	price, err := intField(recordMarketOrder, raw, "price")
	if err != nil {
		return MarketBuyOrder{}, err
	}
	o.Price = Cents(price)
	return o, nil
}

// hasExpression reports whether a market order carries a float-range or
// wear based condition. Such orders are dropped rather than mapped.
func hasExpression(raw map[string]any) bool {
	v, ok := raw[expressionKey]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString && s == "" {
		return false
	}
	return true
}

// FlattenListing merges the nested "item" object into the listing. Keys
// already present on the listing keep the listing's value. The input is not
// modified, and flattening a flat record returns an equal copy.
func FlattenListing(raw map[string]any) map[string]any {
	flat := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == itemKey {
			continue
		}
		flat[k] = v
	}
	item, ok := raw[itemKey].(map[string]any)
	if !ok {
		if v, present := raw[itemKey]; present && v != nil {
			flat[itemKey] = v
		}
		return flat
	}
	for k, v := range item {
		if _, exists := flat[k]; !exists {
			flat[k] = v
		}
	}
	return flat
}

func mapListing(raw map[string]any) (Listing, error) {
	flat := FlattenListing(raw)

	var (
		l   Listing
		err error
	)
	if l.ID, err = stringField(recordListing, flat, "id"); err != nil {
		return Listing{}, err
	}
	if l.CreatedAt, err = stringField(recordListing, flat, "created_at"); err != nil {
		return Listing{}, err
	}
	if l.Type, err = stringField(recordListing, flat, "type"); err != nil {
		return Listing{}, err
	}
	price, err := intField(recordListing, flat, "price")
	if err != nil {
		return Listing{}, err
	}
	l.Price = Cents(price)
	if l.MarketHashName, err = stringField(recordListing, flat, "market_hash_name"); err != nil {
		return Listing{}, err
	}
	if l.IsCommodity, err = boolField(recordListing, flat, "is_commodity"); err != nil {
		return Listing{}, err
	}
	if l.TypeName, err = stringField(recordListing, flat, "type_name"); err != nil {
		return Listing{}, err
	}
	return l, nil
}

func missing(record, field string) error {
	return &MappingError{Record: record, Field: field, Reason: "field is missing"}
}

func wrongType(record, field, want string, got any) error {
	return &MappingError{Record: record, Field: field, Reason: fmt.Sprintf("expected %s, got %T", want, got)}
}

func stringField(record string, raw map[string]any, field string) (string, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return "", missing(record, field)
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongType(record, field, "string", v)
	}
	return s, nil
}

func boolField(record string, raw map[string]any, field string) (bool, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return false, missing(record, field)
	}
	b, ok := v.(bool)
	if !ok {
		return false, wrongType(record, field, "bool", v)
	}
	return b, nil
}

// intField accepts json.Number as produced by the client's decoder, and the
// native numeric types so hand-built records map the same way.
func intField(record string, raw map[string]any, field string) (int64, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return 0, missing(record, field)
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, &MappingError{Record: record, Field: field, Reason: fmt.Sprintf("%q is not an integer", n.String())}
		}
		return i, nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, &MappingError{Record: record, Field: field, Reason: fmt.Sprintf("%v is not an integer", n)}
		}
		return int64(n), nil
	default:
		return 0, wrongType(record, field, "integer", v)
	}
}

func quantityField(record string, raw map[string]any) (int, error) {
	q, err := intField(record, raw, "qty")
	if err != nil {
		return 0, err
	}
	if q <= 0 || q > math.MaxInt32 {
		return 0, &MappingError{Record: record, Field: "qty", Reason: fmt.Sprintf("quantity %d is not positive", q)}
	}
	return int(q), nil
}

func objectField(record string, raw map[string]any, field string) (map[string]any, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return nil, missing(record, field)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, wrongType(record, field, "object", v)
	}
	return obj, nil
}

// objectList converts a decoded JSON array into objects, failing on any
// element that is not an object.
func objectList(record string, values []any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(values))
	for i, v := range values {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, &MappingError{Record: record, Reason: fmt.Sprintf("element %d: expected object, got %T", i, v)}
		}
		out = append(out, obj)
	}
	return out, nil
}

// resultObjects extracts the record list from a payload that is either a
// bare array or an object holding the array under key.
func resultObjects(record string, data any, key string) ([]map[string]any, error) {
	switch payload := data.(type) {
	case []any:
		return objectList(record, payload)
	case map[string]any:
		v, ok := payload[key]
		if !ok {
			return nil, missing(record, key)
		}
		if v == nil {
			return []map[string]any{}, nil
		}
		values, ok := v.([]any)
		if !ok {
			return nil, wrongType(record, key, "array", v)
		}
		return objectList(record, values)
	default:
		return nil, &MappingError{Record: record, Reason: fmt.Sprintf("expected array or object payload, got %T", data)}
	}
}
