// Package events pushes field-force notifications to an MQTT broker.
package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fm-control/internal/config"
)

// Topics, relative to the configured prefix.
const (
	TopicTickets    = "tickets"
	TopicDemerits   = "demerits"
	TopicChecklists = "checklists"
	TopicFieldForce = "fieldforce"
)

// Event types.
const (
	TicketCreated    = "ticket.created"
	TicketResolved   = "ticket.resolved"
	DemeritIssued    = "demerit.issued"
	ChecklistLogged  = "checklist.logged"
	AttendanceToggle = "attendance.toggled"
	ZoneTakeover     = "zone.takeover"
	GasAdjusted      = "gas.adjusted"
)

const publishTimeout = 5 * time.Second

// Event is the envelope of every published message.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Payload   any    `json:"payload"`
}

// Publisher sends events to subscribers.
type Publisher interface {
	Publish(topic, eventType string, payload any) error
	Close()
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(string, string, any) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() {}

// MQTTPublisher publishes events with QoS 1.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
	now    func() time.Time
}

// NewPublisher connects to the configured broker, or returns a NopPublisher
// when no broker URL is set.
func NewPublisher(cfg config.MQTTConfig) (Publisher, error) {
	if cfg.BrokerURL == "" {
		log.Info("No MQTT broker configured, events are not published")
		return NopPublisher{}, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		log.WithField("broker", cfg.BrokerURL).Info("Connected to MQTT broker")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect: timed out")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return newMQTTPublisher(client, cfg.TopicPrefix), nil
}

func newMQTTPublisher(client mqtt.Client, prefix string) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		prefix: strings.TrimSuffix(prefix, "/"),
		now:    time.Now,
	}
}

// Topic returns the full topic name for a relative topic.
func (p *MQTTPublisher) Topic(topic string) string {
	if p.prefix == "" {
		return topic
	}
	return p.prefix + "/" + topic
}

// Publish implements Publisher.
func (p *MQTTPublisher) Publish(topic, eventType string, payload any) error {
	data, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: p.now().UnixMilli(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	token := p.client.Publish(p.Topic(topic), 1, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timed out", eventType)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
