// Package charger runs the battery-charger core as a bus-connected service:
// it waits for the retained charger config, brings up the chip, and bridges
// interrupt messages from the event fabric into the chip's handlers.
package charger

import (
	"context"

	"smb235x-go/bus"
	"smb235x-go/drivers/smb235x"
	"smb235x-go/psy"
	"smb235x-go/regmap"
)

var (
	topicConfigCharger = bus.T("config", "charger")
	topicIrqCharger    = bus.T("irq", "charger", "+")
)

type Service struct {
	rm       regmap.Regmap
	registry *psy.Registry
}

// NewService wires the service over a register transport and the shared
// power-supply registry.
func NewService(rm regmap.Regmap, registry *psy.Registry) *Service {
	return &Service{rm: rm, registry: registry}
}

// Start launches the service loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigCharger)
	defer conn.Unsubscribe(cfgSub)
	irqSub := conn.Subscribe(topicIrqCharger)
	defer conn.Unsubscribe(irqSub)

	var chip *smb235x.Chip
	defer func() {
		if chip != nil {
			chip.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			println("Info: charger service stopping")
			return

		case msg := <-cfgSub.Channel():
			m, ok := msg.Payload.(map[string]any)
			if !ok {
				println("Error: charger config is not an object")
				continue
			}
			params, err := smb235x.ParamsFromMap(m)
			if err != nil {
				println("Error: bad charger config:", err.Error())
				continue
			}

			// A config change rebuilds the chip from scratch; the init
			// sequence is not incremental.
			if chip != nil {
				chip.Close()
				chip = nil
			}
			c := smb235x.New(s.rm, s.registry, conn, params)
			if err := c.Configure(); err != nil {
				println("Error: charger init failed:", err.Error())
				continue
			}
			c.Start(ctx)
			chip = c
			println("Info: charger core started")

		case msg := <-irqSub.Channel():
			if chip == nil {
				continue
			}
			name := msg.Topic[len(msg.Topic)-1]
			irq, ok := smb235x.IRQByName(name)
			if !ok {
				println("Error: unknown charger irq:", name)
				continue
			}
			outcome := chip.HandleIRQ(irq)
			if len(msg.ReplyTo) > 0 {
				conn.Publish(&bus.Message{
					Topic:   msg.ReplyTo,
					Payload: map[string]any{"handled": outcome == smb235x.OutcomeHandled},
				})
			}
		}
	}
}
