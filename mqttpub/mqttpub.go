// Package mqttpub republishes decoded packets to an MQTT broker topic for
// home-automation consumers.
package mqttpub

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Payload is the JSON body published for each decoded packet.
type Payload struct {
	ReceiverID string `json:"receiver_id"`
	Value      uint32 `json:"value"`
	Bits       int    `json:"bits"`
	ProtocolID int    `json:"protocol_id"`
	Timestamp  int64  `json:"timestamp"`
}

// Publisher wraps a connected MQTT client bound to a single topic.
type Publisher struct {
	client mqtt.Client
	topic  string
}

func generateClientID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "rfswitch_" + hex.EncodeToString(b)
}

// New connects to broker and returns a Publisher for topic. username and
// password may be empty for an unauthenticated broker.
func New(broker, topic, username, password string) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(generateClientID())
	if username != "" {
		opts.SetUsername(username)
	}
	if password != "" {
		opts.SetPassword(password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Printf("rfswitch/mqttpub: connected to %s", broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("rfswitch/mqttpub: connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", broker, token.Error())
	}
	return &Publisher{client: client, topic: topic}, nil
}

// Publish sends payload to the configured topic at QoS 0, waits for the
// client to complete the send, and returns any error it reports. A failed
// publish is not retried.
func (p *Publisher) Publish(payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling MQTT payload: %w", err)
	}
	token := p.client.Publish(p.topic, 0, false, data)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.topic, err)
	}
	return nil
}

// Close disconnects the client, waiting up to 250ms for in-flight work.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
