package smb235x

import (
	"context"
	"time"

	"smb235x-go/psy"
	"smb235x-go/types"
	"smb235x-go/x/mathx"
)

// updateLoop periodically reconciles the charger with the fuel gauge. The
// first pass runs almost immediately so a freshly started core doesn't charge
// on stale state for a whole period.
func (c *Chip) updateLoop(ctx context.Context) {
	defer c.wg.Done()

	t := time.NewTimer(firstUpdateDelay)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		c.updateSOC()
		c.updateFvFcc()

		t.Reset(updatePeriod)
	}
}

// updateSOC mirrors the fuel gauge's state of charge into the step-charge
// block, rescaled from percent to the 0..255 hardware range. The update bit
// latches the new value.
func (c *Chip) updateSOC() {
	v, err := c.fromBMS(psy.PropCapacity)
	if err != nil {
		return
	}

	soc := uint8(mathx.RoundDivS(v.Int*255, 100))
	if err := c.rm.Write(RegStepChgSocVbattV, soc); err != nil {
		println("Error: couldn't update soc:", err.Error())
		return
	}
	if err := c.rm.UpdateBits(RegStepChgSocVbattVUpd, StepSocVbattVUpdateBit, StepSocVbattVUpdateBit); err != nil {
		println("Error: couldn't latch soc update:", err.Error())
	}
}

// updateFvFcc drifts the programmed charge profile toward the fuel gauge's
// targets. A failed write keeps the cached value so the delta is retried on
// the next pass.
func (c *Chip) updateFvFcc() {
	if v, err := c.fromBMS(psy.PropConstantChargeCurrentMax); err == nil {
		c.mu.Lock()
		cur := c.fastchgCurrUA
		c.mu.Unlock()
		if cur != v.Int {
			if err := c.setFCC(v.Int); err != nil {
				return
			}
			c.mu.Lock()
			c.fastchgCurrUA = v.Int
			c.mu.Unlock()
		}
	} else {
		return
	}

	if v, err := c.fromBMS(psy.PropConstantChargeVoltageMax); err == nil {
		c.mu.Lock()
		cur := c.floatVoltUV
		c.mu.Unlock()
		if cur != v.Int {
			if err := c.setFV(v.Int); err != nil {
				return
			}
			c.mu.Lock()
			c.floatVoltUV = v.Int
			c.mu.Unlock()
		}
	}
}

// tcpmNotifierLoop wakes on the negotiation peer's change notifications and
// recomputes the PD-derived input limit. Notifications are collapsed: while
// one recompute is pending, further notifications are dropped.
func (c *Chip) tcpmNotifierLoop(ctx context.Context) {
	defer c.wg.Done()

	sub := c.conn.Subscribe(psy.ChangedTopic(c.tcpmFullName))
	defer sub.Unsubscribe()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.Channel():
				if !ok {
					return
				}
				if c.statusPending.CompareAndSwap(false, true) {
					select {
					case c.statusCh <- struct{}{}:
					default:
					}
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.statusCh:
			c.statusPending.Store(false)
			c.tcpmUpdateICL()
		}
	}
}

// tcpmUpdateICL tracks the PD contract. Anything other than the bare Type-C
// attachment means a contract is live: remember that and push the granted
// current as the input limit.
func (c *Chip) tcpmUpdateICL() {
	v, err := c.fromTCPM(psy.PropUsbType)
	if err != nil {
		println("Error: couldn't get usb type from the negotiation peer:", err.Error())
		return
	}

	active := types.UsbType(v.Int) != types.UsbC
	c.mu.Lock()
	c.pdActive = active
	c.mu.Unlock()
	if !active {
		return
	}

	v, err = c.fromTCPM(psy.PropCurrentMax)
	if err != nil {
		println("Error: couldn't get icl from the negotiation peer:", err.Error())
		return
	}

	if err := c.setIclSw(v.Int / microToMilli); err != nil {
		println("Error: couldn't set the negotiated input current:", err.Error())
	}
}
