package mqtt_test

import (
	"context"
	"fmt"
	"time"

	"github.com/autopeer-io/sensoragent/pkg/log"
	"github.com/autopeer-io/sensoragent/pkg/mqtt"
)

// ExampleClient shows the explicit session lifecycle: the caller picks the
// identity for every Connect and owns the retry policy.
func ExampleClient() {
	cfg := &mqtt.ClientConfig{
		BrokerURL:      "tcp://broker.hivemq.com:1883",
		Protocol:       mqtt.ProtocolV5,
		KeepAlive:      15,
		ConnectTimeout: 5 * time.Second,
		CleanStart:     true,
	}

	client, err := mqtt.NewClient(cfg)
	if err != nil {
		log.Error(err, "Failed to create MQTT client")
		return
	}

	ctx := context.Background()
	if err := client.Connect(ctx, "ESP8266-1a2b3c4d"); err != nil {
		log.Error(err, "Connect failed", "reason", client.DisconnectReason())
		return
	}
	defer client.Disconnect(ctx)

	// Liveness first, retained so late subscribers see it.
	if err := client.Publish(ctx, "graduacao/iot/grupo_3/status", 0, true, []byte("online")); err != nil {
		log.Error(err, "Failed to publish status")
	}

	// Call Maintain regularly from the owning loop.
	client.Maintain(ctx)
	fmt.Println("connected:", client.IsConnected())
}
