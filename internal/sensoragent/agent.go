package sensoragent

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/bus"
	"github.com/autopeer-io/sensoragent/internal/sensoragent/link"
	"github.com/autopeer-io/sensoragent/internal/sensoragent/scheduler"
	"github.com/autopeer-io/sensoragent/internal/sensoragent/sensor"
	"github.com/autopeer-io/sensoragent/internal/sensoragent/server"
	"github.com/autopeer-io/sensoragent/pkg/log"
	mqtttopic "github.com/autopeer-io/sensoragent/pkg/mqtt/topic"
)

// Agent owns the device state: the link, the session, the sensor and the loop.
type Agent struct {
	link      *link.Manager
	bus       *bus.Manager
	sensor    *sensor.Port
	scheduler *scheduler.Scheduler
	server    *server.Server

	topics mqtttopic.Set
	broker string
}

// Run initializes the sensor, associates the network once, then drives the
// device loop until ctx ends.
func (a *Agent) Run(ctx context.Context) error {
	log.Info("Starting cpeer-sensor-agent", "broker", a.broker, "statusTopic", a.topics.Status)

	g, ctx := errgroup.WithContext(ctx)

	if a.server != nil {
		g.Go(func() error {
			return a.server.Start(ctx)
		})
	}

	g.Go(func() error {
		return a.runDevice(ctx)
	})

	err := g.Wait()
	log.Info("Agent shutting down...")
	return err
}

func (a *Agent) runDevice(ctx context.Context) error {
	if err := a.sensor.Initialize(); err != nil {
		return err
	}

	if _, err := a.link.Establish(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("network association failed: %w", err)
	}

	log.Info("System ready")
	defer a.bus.Close(context.Background())

	return a.scheduler.Run(ctx)
}

// Ready reports whether readings can currently be published.
func (a *Agent) Ready() (bool, string) {
	if s := a.link.State(); s != link.StateConnected {
		return false, fmt.Sprintf("network link is %s", s)
	}
	if s := a.bus.State(); s != bus.StateConnected {
		return false, fmt.Sprintf("mqtt session is %s", s)
	}
	return true, ""
}
