package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"csfloat-trader/internal/models"
	"csfloat-trader/internal/services/csfloat"
)

// Market is the CSFloat service as used by the HTTP handlers.
type Market interface {
	ListOwnOrders() ([]csfloat.OwnBuyOrder, error)
	ListMarketOrders(listingID string) ([]csfloat.MarketBuyOrder, error)
	CreateOrder(itemName string, maxPrice csfloat.Cents, quantity int) (bool, error)
	RemoveOrder(orderID string) (bool, error)
	ListListings(itemName string, opts ...csfloat.ListingOption) ([]csfloat.Listing, error)
	GetBalance() (csfloat.Cents, error)
}

// Snapshots is the tracker as used by the HTTP handlers.
type Snapshots interface {
	Snapshot() (string, error)
	LatestOrders() ([]models.OrderSnapshot, error)
	BalanceHistory(limit int) ([]models.BalanceSnapshot, error)
}

type APIHandler struct {
	market    Market
	snapshots Snapshots
	log       logrus.FieldLogger
}

func SetupRoutes(r *gin.RouterGroup, market Market, snapshots Snapshots, log logrus.FieldLogger) {
	handler := &APIHandler{
		market:    market,
		snapshots: snapshots,
		log:       log,
	}

	r.GET("/balance", handler.GetBalance)

	orders := r.Group("/orders")
	{
		orders.GET("", handler.GetOrders)
		orders.POST("", handler.CreateOrder)
		orders.DELETE("/:id", handler.RemoveOrder)
	}

	listings := r.Group("/listings")
	{
		listings.GET("", handler.GetListings)
		listings.GET("/:id/buy-orders", handler.GetMarketOrders)
	}

	snaps := r.Group("/snapshots")
	{
		snaps.POST("", handler.TakeSnapshot)
		snaps.GET("/balance", handler.GetBalanceHistory)
		snaps.GET("/orders", handler.GetSnapshotOrders)
	}
}

type ownOrderView struct {
	csfloat.OwnBuyOrder
	PriceUSD string `json:"price_usd"`
}

type marketOrderView struct {
	csfloat.MarketBuyOrder
	PriceUSD string `json:"price_usd"`
}

type listingView struct {
	csfloat.Listing
	PriceUSD string `json:"price_usd"`
}

func usd(c csfloat.Cents) string {
	return c.Dollars().StringFixed(2)
}

func (h *APIHandler) GetBalance(c *gin.Context) {
	balance, err := h.market.GetBalance()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance, "balance_usd": usd(balance)})
}

func (h *APIHandler) GetOrders(c *gin.Context) {
	orders, err := h.market.ListOwnOrders()
	if err != nil {
		h.respondError(c, err)
		return
	}
	views := make([]ownOrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, ownOrderView{OwnBuyOrder: o, PriceUSD: usd(o.Price)})
	}
	c.JSON(http.StatusOK, gin.H{"orders": views, "count": len(views)})
}

type createOrderRequest struct {
	MarketHashName string `json:"market_hash_name" binding:"required"`
	MaxPrice       int64  `json:"max_price"`
	Quantity       int    `json:"quantity"`
}

func (h *APIHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.market.CreateOrder(req.MarketHashName, csfloat.Cents(req.MaxPrice), req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"market_hash_name": req.MarketHashName,
		"max_price":        req.MaxPrice,
		"quantity":         req.Quantity,
		"accepted":         ok,
	}).Info("buy order submitted")

	status := http.StatusCreated
	if !ok {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"accepted": ok})
}

func (h *APIHandler) RemoveOrder(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.market.RemoveOrder(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log.WithFields(logrus.Fields{"order_id": id, "removed": ok}).Info("buy order removal")

	status := http.StatusOK
	if !ok {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"removed": ok})
}

func (h *APIHandler) GetListings(c *gin.Context) {
	var opts []csfloat.ListingOption
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		opts = append(opts, csfloat.WithLimit(limit))
	}
	if v := c.Query("sort_by"); v != "" {
		opts = append(opts, csfloat.WithSortBy(v))
	}
	if v := c.Query("type"); v != "" {
		opts = append(opts, csfloat.WithType(v))
	}

	listings, err := h.market.ListListings(c.Query("market_hash_name"), opts...)
	if err != nil {
		h.respondError(c, err)
		return
	}
	views := make([]listingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, listingView{Listing: l, PriceUSD: usd(l.Price)})
	}
	c.JSON(http.StatusOK, gin.H{"listings": views})
}

func (h *APIHandler) GetMarketOrders(c *gin.Context) {
	orders, err := h.market.ListMarketOrders(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	views := make([]marketOrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, marketOrderView{MarketBuyOrder: o, PriceUSD: usd(o.Price)})
	}
	c.JSON(http.StatusOK, gin.H{"orders": views})
}

func (h *APIHandler) TakeSnapshot(c *gin.Context) {
	runID, err := h.snapshots.Snapshot()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"run_id": runID})
}

func (h *APIHandler) GetBalanceHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	snaps, err := h.snapshots.BalanceHistory(limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snaps})
}

func (h *APIHandler) GetSnapshotOrders(c *gin.Context) {
	orders, err := h.snapshots.LatestOrders()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// respondError maps csfloat errors onto HTTP statuses: bad input is the
// caller's fault, anything the upstream did wrong is a bad gateway.
func (h *APIHandler) respondError(c *gin.Context, err error) {
	var (
		invalid   *csfloat.InvalidArgumentError
		mapping   *csfloat.MappingError
		transport *csfloat.TransportError
	)
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
	case errors.As(err, &transport):
		h.log.WithError(err).Warn("csfloat request failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":           transport.Error(),
			"kind":            transport.Kind.String(),
			"upstream_status": transport.StatusCode,
		})
	case errors.As(err, &mapping):
		h.log.WithError(err).Error("unexpected csfloat response")
		c.JSON(http.StatusBadGateway, gin.H{"error": mapping.Error()})
	default:
		h.log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
