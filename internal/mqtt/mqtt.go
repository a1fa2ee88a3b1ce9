// Package mqtt holds the server's push channel to devices. Players poll for
// truth; a published refresh only asks them to poll sooner.
package mqtt

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

var client mqtt.Client

// Init connects the server's publisher client. An empty broker URL leaves
// the push channel disabled.
func Init(brokerURL, clientID string) error {
	if brokerURL == "" {
		log.Info().Msg("MQTT broker not configured, push refresh disabled")
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(c mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		log.Error().Err(err).Msg("MQTT connection lost")
	}

	client = mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		client = nil
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return nil
}

// PublishRefresh tells one device to re-sync immediately. Fire-and-forget:
// a slow or absent broker must never block the calling request.
func PublishRefresh(deviceID string) {
	if client == nil || deviceID == "" {
		return
	}
	topic := fmt.Sprintf("tv/%s/commands", deviceID)
	payload, _ := json.Marshal(map[string]string{"type": "refresh"})

	go func() {
		token := client.Publish(topic, 1, false, payload)
		token.Wait()
		if token.Error() != nil {
			log.Error().Err(token.Error()).Str("topic", topic).Msg("failed to publish refresh")
			return
		}
		log.Debug().Str("topic", topic).Msg("refresh published")
	}()
}

// Cleanup disconnects the publisher client.
func Cleanup() {
	if client != nil {
		client.Disconnect(250)
		client = nil
	}
}
