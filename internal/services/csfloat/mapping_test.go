package csfloat

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOwnBuyOrder(t *testing.T) {
	raw := map[string]any{
		"id":               "738249126374",
		"created_at":       "2024-12-30T23:02:47.781696Z",
		"market_hash_name": "Kilowatt Case",
		"qty":              json.Number("5"),
		"price":            json.Number("42"),
		"extra":            "ignored",
	}

	got, err := mapOwnBuyOrder(raw)
	require.NoError(t, err)
	assert.Equal(t, OwnBuyOrder{
		ID:             "738249126374",
		CreatedAt:      "2024-12-30T23:02:47.781696Z",
		MarketHashName: "Kilowatt Case",
		Quantity:       5,
		Price:          42,
	}, got)
}

func TestMapOwnBuyOrder_Errors(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"id":               "1",
			"created_at":       "2024-12-30T23:02:47Z",
			"market_hash_name": "Kilowatt Case",
			"qty":              json.Number("1"),
			"price":            json.Number("42"),
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"missing id", func(m map[string]any) { delete(m, "id") }, "id"},
		{"null created_at", func(m map[string]any) { m["created_at"] = nil }, "created_at"},
		{"numeric name", func(m map[string]any) { m["market_hash_name"] = json.Number("7") }, "market_hash_name"},
		{"fractional price", func(m map[string]any) { m["price"] = json.Number("12.5") }, "price"},
		{"string price", func(m map[string]any) { m["price"] = "12" }, "price"},
		{"zero quantity", func(m map[string]any) { m["qty"] = json.Number("0") }, "qty"},
		{"float quantity", func(m map[string]any) { m["qty"] = 1.5 }, "qty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := valid()
			tt.mutate(raw)

			_, err := mapOwnBuyOrder(raw)
			var me *MappingError
			require.True(t, errors.As(err, &me), "got %v", err)
			assert.Equal(t, recordOwnOrder, me.Record)
			assert.Equal(t, tt.field, me.Field)
		})
	}
}

func TestMapMarketBuyOrder(t *testing.T) {
	got, err := mapMarketBuyOrder(map[string]any{
		"market_hash_name": "Glove Case",
		"qty":              json.Number("3"),
		"price":            json.Number("310"),
	})
	require.NoError(t, err)
	assert.Equal(t, MarketBuyOrder{MarketHashName: "Glove Case", Quantity: 3, Price: 310}, got)
}

func TestHasExpression(t *testing.T) {
	assert.False(t, hasExpression(map[string]any{}))
	assert.False(t, hasExpression(map[string]any{"expression": nil}))
	assert.False(t, hasExpression(map[string]any{"expression": ""}))
	assert.True(t, hasExpression(map[string]any{"expression": "FloatValue < 0.07"}))
	assert.True(t, hasExpression(map[string]any{"expression": map[string]any{"op": "<"}}))
}

func rawListing() map[string]any {
	return map[string]any{
		"id":         "791974964206110791",
		"created_at": "2025-01-02T10:00:00Z",
		"type":       "buy_now",
		"price":      json.Number("1999"),
		"item": map[string]any{
			"market_hash_name": "AWP | Asiimov (Field-Tested)",
			"is_commodity":     false,
			"type_name":        "Skin",
			"type":             "skin",
			"float_value":      json.Number("0.25"),
		},
	}
}

func TestFlattenListing(t *testing.T) {
	raw := rawListing()
	flat := FlattenListing(raw)

	assert.NotContains(t, flat, itemKey)
	assert.Equal(t, "buy_now", flat["type"], "listing value wins on collision")
	assert.Equal(t, "AWP | Asiimov (Field-Tested)", flat["market_hash_name"])
	assert.Equal(t, json.Number("0.25"), flat["float_value"])
	assert.Contains(t, raw, itemKey, "input must not be modified")
}

func TestFlattenListing_Idempotent(t *testing.T) {
	once := FlattenListing(rawListing())
	twice := FlattenListing(once)
	assert.Equal(t, once, twice)

	flat := map[string]any{"id": "1", "price": json.Number("5")}
	assert.Equal(t, flat, FlattenListing(flat))
}

func TestMapListing(t *testing.T) {
	got, err := mapListing(rawListing())
	require.NoError(t, err)
	assert.Equal(t, Listing{
		ID:             "791974964206110791",
		CreatedAt:      "2025-01-02T10:00:00Z",
		Type:           "buy_now",
		Price:          1999,
		MarketHashName: "AWP | Asiimov (Field-Tested)",
		IsCommodity:    false,
		TypeName:       "Skin",
	}, got)

	again, err := mapListing(FlattenListing(rawListing()))
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestMapListing_MissingItemField(t *testing.T) {
	raw := rawListing()
	delete(raw["item"].(map[string]any), "is_commodity")

	_, err := mapListing(raw)
	var me *MappingError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "is_commodity", me.Field)
}

func TestResultObjects(t *testing.T) {
	objs, err := resultObjects(recordListing, []any{map[string]any{"id": "1"}}, "data")
	require.NoError(t, err)
	assert.Len(t, objs, 1)

	objs, err = resultObjects(recordListing, map[string]any{"data": []any{map[string]any{"id": "1"}, map[string]any{"id": "2"}}}, "data")
	require.NoError(t, err)
	assert.Len(t, objs, 2)

	_, err = resultObjects(recordListing, []any{"nope"}, "data")
	var me *MappingError
	assert.True(t, errors.As(err, &me))

	_, err = resultObjects(recordListing, nil, "data")
	assert.True(t, errors.As(err, &me))
}

func TestCentsDollars(t *testing.T) {
	assert.Equal(t, "10.50", Cents(1050).Dollars().StringFixed(2))
	assert.Equal(t, "$0.07", Cents(7).String())
}
