package player

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Command is what the backend pushes on tv/<device>/commands. Anything the
// player does not understand is logged and dropped; polling remains the
// source of truth, MQTT only shortens the latency.
type Command struct {
	Type string `json:"type"`
}

// StartCommandListener connects to the broker and subscribes to the
// device's command topic. A "refresh" command triggers an immediate poll.
// Returning an error only means the push channel is unavailable; the caller
// keeps playing on polling alone.
func StartCommandListener(brokerURL, deviceID string, syncer *Syncer, logger zerolog.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(fmt.Sprintf("tv-%s", deviceID))
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn().Err(err).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	topic := fmt.Sprintf("tv/%s/commands", deviceID)
	handler := func(client mqtt.Client, msg mqtt.Message) {
		var cmd Command
		if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
			logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("unparseable command")
			return
		}
		switch cmd.Type {
		case "refresh":
			logger.Info().Msg("refresh command received")
			syncer.RequestRefresh()
		default:
			logger.Debug().Str("type", cmd.Type).Msg("ignoring unknown command")
		}
	}
	if token := client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
	}

	logger.Info().Str("topic", topic).Msg("listening for device commands")
	return client, nil
}
