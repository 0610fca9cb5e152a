package notify

import (
	"context"
)

// Severity 通知级别
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notification 一条面向用户/运营侧的通知
type Notification struct {
	Message     string   `json:"message"`
	Description string   `json:"description,omitempty"`
	TxID        string   `json:"txid,omitempty"`
	Severity    Severity `json:"severity,omitempty"`
}

// Notifier 通知下游。实现必须 fire-and-forget：不阻塞调用方、不向上抛错。
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NopNotifier 丢弃全部通知
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, n Notification) {}
