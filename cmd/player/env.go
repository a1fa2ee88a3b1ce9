package main

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Environment struct {
	Environment   string
	ServerURL     string
	ScreenCode    string
	DeviceID      string
	ListenAddress string
	MQTTBrokerURL string
	PollInterval  time.Duration
}

// LoadEnvironment reads and validates env vars
func LoadEnvironment() Environment {
	env := Environment{
		Environment:   os.Getenv("APP_ENV"),
		ServerURL:     os.Getenv("SERVER_URL"),
		ScreenCode:    os.Getenv("SCREEN_CODE"),
		DeviceID:      os.Getenv("DEVICE_ID"),
		ListenAddress: os.Getenv("LISTEN_ADDRESS"),
		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),
	}

	if env.ListenAddress == "" {
		// renderer webview lives on the same device
		env.ListenAddress = "127.0.0.1:8090"
	}

	env.PollInterval = 30 * time.Second
	if v := os.Getenv("POLL_INTERVAL_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 5 {
			log.Fatalf("invalid POLL_INTERVAL_SECONDS: %q", v)
		}
		env.PollInterval = time.Duration(secs) * time.Second
	}

	// Basic validation
	if env.ServerURL == "" || env.ScreenCode == "" || env.DeviceID == "" {
		log.Fatal("Missing required environment variables")
	}

	return env
}
