package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// ListingCreated 新商品发布事件
type ListingCreated struct {
	ListingID int64     `json:"listing_id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Brand     string    `json:"brand"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher 事件发布接口
type Publisher interface {
	PublishListingCreated(ctx context.Context, evt ListingCreated) error
	Close()
}

// ==================== NATS 实现 ====================

// NATSPublisher 通过 NATS 发布事件
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher 连接 NATS
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("trendies-market"))
	if err != nil {
		return nil, fmt.Errorf("连接 NATS 失败: %w", err)
	}
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

func (p *NATSPublisher) PublishListingCreated(_ context.Context, evt ListingCreated) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, data)
}

func (p *NATSPublisher) Close() {
	p.conn.Close()
}

// ==================== 空实现 ====================

// NoopPublisher 未配置 NATS 时使用
type NoopPublisher struct{}

func (NoopPublisher) PublishListingCreated(context.Context, ListingCreated) error { return nil }

func (NoopPublisher) Close() {}
