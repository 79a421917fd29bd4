package notify

import (
	"encoding/json"
	"fmt"

	"medihealth-portal/internal/config"
	"medihealth-portal/internal/domain"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Publisher 通知推送接口
// pc360Front 的通知铃铛通过 MQTT over WebSocket 订阅 portal/notifications/{user_id}
type Publisher interface {
	PublishNotification(n *domain.Notification) error
	Close()
}

// NopPublisher MQTT 禁用时的空实现（默认）
type NopPublisher struct{}

func (NopPublisher) PublishNotification(*domain.Notification) error { return nil }
func (NopPublisher) Close()                                         {}

// MQTTPublisher MQTT 通知推送
type MQTTPublisher struct {
	client mqtt.Client
	qos    byte
	logger *zap.Logger
}

// NewMQTTPublisher 创建 MQTT 通知推送客户端
func NewMQTTPublisher(cfg *config.MQTTConfig, logger *zap.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTPublisher{client: client, qos: cfg.QoS, logger: logger}, nil
}

// PublishNotification 推送通知到用户主题
// 推送失败只记日志不中断主流程（通知行已落库，铃铛轮询兜底）
func (p *MQTTPublisher) PublishNotification(n *domain.Notification) error {
	payload, err := json.Marshal(map[string]any{
		"id":         n.ID,
		"title":      n.Title,
		"message":    n.Message,
		"type":       n.Type,
		"priority":   n.Priority,
		"action_url": n.ActionURL,
		"created_at": n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	topic := "portal/notifications/" + n.UserID
	if token := p.client.Publish(topic, p.qos, false, payload); token.Wait() && token.Error() != nil {
		p.logger.Warn("Failed to publish notification",
			zap.String("topic", topic),
			zap.Error(token.Error()),
		)
		return token.Error()
	}
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
