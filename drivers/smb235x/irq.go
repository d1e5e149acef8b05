package smb235x

import (
	"smb235x-go/psy"
	"smb235x-go/types"
)

// IRQ identifies one of the chip's interrupt lines.
type IRQ int

const (
	IRQChgrError IRQ = iota
	IRQChgrStateChange
	IRQOtgFail
	IRQInputCurrentLimit
	IRQBatTemp
	IRQBatOv
	IRQBatLow
	IRQBatThermOrIDMissing
	IRQBatTerminalMissing
	IRQUsbinCollapse
	IRQUsbinVashdn
	IRQUsbinUv
	IRQUsbinOv
	IRQUsbinPlugin
	IRQUsbinSrcChange
	IRQUsbinIclChange
	IRQAiclDone
	IRQTempChange
	IRQWdogBark
)

// Outcome reports how an event was consumed. OutcomeNone means the handler
// could not even establish what happened (the initiating status read failed);
// downstream failures are logged but still count as handled.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeHandled
)

type irqInfo struct {
	name    string
	handler func(*Chip) Outcome
	wake    bool
}

var irqTable = [...]irqInfo{
	// CHGR
	IRQChgrError:       {name: "chgr-error", handler: (*Chip).handleChargeErr},
	IRQChgrStateChange: {name: "chgr-state-change", handler: (*Chip).handleChgStateChange, wake: true},

	// DCDC
	IRQOtgFail:           {name: "otg-fail", handler: (*Chip).handleDefault},
	IRQInputCurrentLimit: {name: "input-current-limit", handler: (*Chip).handleDefault},

	// BATIF
	IRQBatTemp:             {name: "batt-temp", handler: (*Chip).handleBattTempChanged, wake: true},
	IRQBatOv:               {name: "batt-ov", handler: (*Chip).handleBattPsyChanged},
	IRQBatLow:              {name: "batt-low", handler: (*Chip).handleBattPsyChanged},
	IRQBatThermOrIDMissing: {name: "batt-therm-or-id-missing", handler: (*Chip).handleBattPsyChanged},
	IRQBatTerminalMissing:  {name: "batt-terminal-missing", handler: (*Chip).handleBattPsyChanged},

	// USBIN
	IRQUsbinCollapse:  {name: "usbin-collapse", handler: (*Chip).handleDefault},
	IRQUsbinVashdn:    {name: "usbin-vashdn", handler: (*Chip).handleDefault},
	IRQUsbinUv:        {name: "usbin-uv", handler: (*Chip).handleDefault, wake: true},
	IRQUsbinOv:        {name: "usbin-ov", handler: (*Chip).handleDefault},
	IRQUsbinPlugin:    {name: "usbin-plugin", handler: (*Chip).handleUsbPlugin, wake: true},
	IRQUsbinSrcChange: {name: "usbin-src-change", handler: (*Chip).handleUsbSourceChange, wake: true},
	IRQUsbinIclChange: {name: "usbin-icl-change", handler: (*Chip).handleDefault, wake: true},

	// MISC
	IRQAiclDone:   {name: "aicl-done", handler: (*Chip).handleAiclDone},
	IRQTempChange: {name: "temp-change", handler: (*Chip).handleDefault},
	IRQWdogBark:   {name: "wdog-bark", handler: (*Chip).handleWdogBark, wake: true},
}

// Name returns the interrupt line's device-tree style name.
func (i IRQ) Name() string {
	if i < 0 || int(i) >= len(irqTable) {
		return "unknown"
	}
	return irqTable[i].name
}

// Wake reports whether the line is a wakeup source.
func (i IRQ) Wake() bool {
	if i < 0 || int(i) >= len(irqTable) {
		return false
	}
	return irqTable[i].wake
}

// IRQByName resolves an interrupt line from its name.
func IRQByName(name string) (IRQ, bool) {
	for i := range irqTable {
		if irqTable[i].name == name {
			return IRQ(i), true
		}
	}
	return 0, false
}

// HandleIRQ dispatches one hardware event. Events arriving after Close are
// dropped. Handlers run one at a time.
func (c *Chip) HandleIRQ(irq IRQ) Outcome {
	if irq < 0 || int(irq) >= len(irqTable) {
		return OutcomeNone
	}
	if !c.accepting.Load() {
		return OutcomeNone
	}
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	return irqTable[irq].handler(c)
}

func (c *Chip) handleDefault() Outcome {
	return OutcomeHandled
}

func (c *Chip) handleChgStateChange() Outcome {
	stat, err := c.rm.Read(RegBatteryChargerStatus1)
	if err != nil {
		println("Error: couldn't read charger status 1:", err.Error())
		return OutcomeNone
	}
	println("Info: battery charger state is", int(stat&BatteryChargerStatusMask))
	c.battChanged()
	return OutcomeHandled
}

func (c *Chip) handleChargeErr() Outcome {
	stat, err := c.rm.Read(RegBatteryChargerStatus2)
	if err != nil {
		println("Error: couldn't read charger status 2:", err.Error())
		return OutcomeNone
	}
	if stat&ChargerErrSftExpireBit != 0 {
		println("Info: charge error due to safety timer expiry")
	}
	if stat&ChargerErrBatOvBit != 0 {
		println("Info: charge error due to battery over-voltage")
	}
	if stat&ChargerErrBatTermMissingBit != 0 {
		println("Info: charge error due to missing battery terminal")
	}
	return OutcomeHandled
}

func (c *Chip) handleBattTempChanged() Outcome {
	c.battChanged()
	return OutcomeHandled
}

func (c *Chip) handleBattPsyChanged() Outcome {
	c.battChanged()
	return OutcomeHandled
}

// handleUsbPlugin tracks vbus: charging follows the cable.
func (c *Chip) handleUsbPlugin() Outcome {
	stat, err := c.rm.Read(RegUsbIntRtSts)
	if err != nil {
		println("Error: couldn't read usb int status:", err.Error())
		return OutcomeNone
	}
	vbusRising := stat&UsbinPluginRtStsBit != 0

	if err := c.enableCharge(vbusRising); err != nil {
		println("Error: couldn't switch charging:", err.Error())
		return OutcomeHandled
	}

	c.usbChanged()
	if vbusRising {
		println("Info: usbin attached")
	} else {
		println("Info: usbin detached")
	}
	return OutcomeHandled
}

func (c *Chip) handleUsbSourceChange() Outcome {
	stat, err := c.rm.Read(RegUsbApsdStatus)
	if err != nil {
		println("Error: couldn't read apsd status:", err.Error())
		return OutcomeNone
	}
	c.handleApsdDone(stat&ApsdDtcStatusDoneBit != 0)
	c.usbChanged()
	return OutcomeHandled
}

func (c *Chip) handleWdogBark() Outcome {
	if err := c.rm.Write(RegMiscBarkBiteWdgPet, BarkBiteWdogPetBit); err != nil {
		println("Error: couldn't pet bark watchdog:", err.Error())
	}
	return OutcomeHandled
}

func (c *Chip) handleAiclDone() Outcome {
	stat, err := c.rm.Read(RegAiclIclStatus)
	if err != nil {
		println("Error: couldn't read aicl status:", err.Error())
		return OutcomeNone
	}
	println("Info: aicl result is", int(stat)*currentStepMA, "ma")
	return OutcomeHandled
}

// handleApsdDone applies the detection result: pick the type's input current
// budget, kick high-voltage negotiation where the type calls for it, and
// program the limit. An active PD contract overrides the table with whatever
// the negotiation peer granted.
func (c *Chip) handleApsdDone(done bool) {
	if !done {
		return
	}

	if err := c.getChgType(); err != nil {
		println("Error: couldn't get the charger type:", err.Error())
		return
	}

	c.mu.Lock()
	ct := c.chargerType
	sdpIcl := c.sdpIclUA
	pdActive := c.pdActive
	c.mu.Unlock()

	if ct != types.ChargerHVDCP3 {
		c.hvdcpMu.Lock()
		c.basedHvdcpVoltageUV = baseVoltageUV
		c.hvdcpMu.Unlock()
	}

	var iclMA int
	switch ct {
	case types.ChargerSDP:
		if sdpIcl != 0 {
			iclMA = sdpIcl / microToMilli
		} else {
			iclMA = sdp500UA / microToMilli
		}
	case types.ChargerCDP:
		iclMA = cdpCurrentUA / microToMilli
	case types.ChargerDCP:
		iclMA = dcpCurrentUA / microToMilli
	case types.ChargerFloat:
		iclMA = sdp500UA / microToMilli
	case types.ChargerHVDCP2:
		iclMA = hvdcpCurrentUA / microToMilli
		if err := c.rm.UpdateBits(RegUsbCmdHvdcp2, Force9VBit, Force9VBit); err != nil {
			println("Error: couldn't force 9V on hvdcp:", err.Error())
			return
		}
	case types.ChargerHVDCP3:
		iclMA = hvdcpCurrentUA / microToMilli
		c.hvdcpMu.Lock()
		target := c.hvdcp3VoltageUV
		c.hvdcpMu.Unlock()
		if err := c.setHvdcp3Voltage(target); err != nil {
			println("Error: couldn't set the hvdcp3 voltage:", err.Error())
		}
	default:
		iclMA = sdp500UA / microToMilli
	}

	if pdActive {
		v, err := c.fromTCPM(psy.PropCurrentMax)
		if err != nil {
			println("Error: couldn't get icl from the negotiation peer:", err.Error())
			return
		}
		iclMA = v.Int / microToMilli
	}

	if err := c.setIclSw(iclMA); err != nil {
		println("Error: couldn't set the input current for type", ct.String()+":", err.Error())
	}
}
