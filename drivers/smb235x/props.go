package smb235x

import (
	"smb235x-go/errcode"
	"smb235x-go/psy"
	"smb235x-go/types"
)

// usbSupply exposes the input path as the "usb" power supply.
type usbSupply struct {
	c *Chip
}

func (u *usbSupply) Name() string { return usbSupplyName }

func (u *usbSupply) GetProp(p psy.Property) (psy.Value, error) {
	c := u.c
	switch p {
	case psy.PropPresent:
		stat, err := c.rm.Read(RegUsbIntRtSts)
		if err != nil {
			println("Error: couldn't read usb int status:", err.Error())
			return psy.Value{}, errcode.NoData
		}
		return psy.BoolVal(stat&UsbinPluginRtStsBit != 0), nil

	case psy.PropOnline:
		return psy.BoolVal(c.UsbOnline()), nil

	case psy.PropCurrentMax:
		v, err := c.getUsbICL()
		if err != nil {
			println("Error: couldn't read input current limit:", err.Error())
			return psy.Value{}, errcode.NoData
		}
		return psy.IntVal(v), nil

	case psy.PropVoltageMax, psy.PropVoltageNow:
		return psy.IntVal(c.getUsbVoltage()), nil

	case psy.PropCurrentNow:
		if !c.UsbOnline() {
			return psy.IntVal(0), nil
		}
		v, err := c.fromTCPM(psy.PropCurrentNow)
		if err != nil {
			return psy.Value{}, errcode.NoData
		}
		return v, nil

	case psy.PropSDPCurrentMax:
		c.mu.Lock()
		sdpIcl := c.sdpIclUA
		c.mu.Unlock()
		if sdpIcl != 0 {
			return psy.IntVal(sdpIcl), nil
		}
		return psy.IntVal(sdp500UA), nil

	case psy.PropRealType:
		if err := c.getChgType(); err != nil {
			return psy.IntVal(int(types.ChargerUnknown)), errcode.NoData
		}
		return psy.IntVal(int(c.ChargerType())), nil

	case psy.PropUsbType:
		if err := c.getChgType(); err != nil {
			return psy.IntVal(int(types.UsbUnknown)), errcode.NoData
		}
		c.mu.Lock()
		ut := c.usbType
		c.mu.Unlock()
		return psy.IntVal(int(ut)), nil

	default:
		println("Error: get prop", p.String(), "is not supported in usb")
		return psy.Value{}, errcode.Unsupported
	}
}

func (u *usbSupply) SetProp(p psy.Property, v psy.Value) error {
	c := u.c
	switch p {
	case psy.PropCurrentMax:
		return c.setIclSw(v.Int / microToMilli)
	case psy.PropVoltageNow:
		if c.ChargerType() == types.ChargerHVDCP3 {
			return c.setHvdcp3Voltage(v.Int)
		}
		println("Info: setting voltage is only supported on hvdcp3")
		return nil
	case psy.PropSDPCurrentMax:
		c.mu.Lock()
		c.sdpIclUA = v.Int
		c.mu.Unlock()
		return c.setIclSw(v.Int / microToMilli)
	default:
		println("Error: set prop", p.String(), "is not supported in usb")
		return errcode.Unsupported
	}
}

func (u *usbSupply) Writeable(p psy.Property) bool {
	switch p {
	case psy.PropCurrentMax, psy.PropVoltageNow, psy.PropSDPCurrentMax:
		return true
	}
	return false
}

// getUsbICL reports the effective input current limit in µA: the software
// limit when the override is armed, otherwise whatever AICL settled on.
// An offline input always reads zero.
func (c *Chip) getUsbICL() (int, error) {
	if !c.UsbOnline() {
		return 0, nil
	}

	override, err := c.rm.Read(RegUsbCmdIclOverride)
	if err != nil {
		return 0, errcode.IOf("read icl override", err)
	}

	var reg uint16 = RegIclMaxStatus
	if override&IclOverrideBit != 0 {
		reg = RegUsbinCurrentLimitCfg
	}
	stat, err := c.rm.Read(reg)
	if err != nil {
		return 0, errcode.IOf("read icl", err)
	}
	return int(stat) * currentStepMA * microToMilli, nil
}

// getHvdcp2Voltage decodes the last QC2 voltage change request.
func (c *Chip) getHvdcp2Voltage() int {
	stat, err := c.rm.Read(RegUsbQcChangeStatus)
	if err != nil {
		println("Error: couldn't read qc change status:", err.Error())
		return voltageForce5VUV
	}
	switch {
	case stat&Qc12VBit != 0:
		return voltageForce12VUV
	case stat&Qc9VBit != 0:
		return voltageForce9VUV
	default:
		return voltageForce5VUV
	}
}

// getUsbVoltage reports the input voltage in µV, synthesized from the
// detected type. An active PD contract defers to the negotiation peer.
func (c *Chip) getUsbVoltage() int {
	if !c.UsbOnline() {
		return 0
	}

	c.mu.Lock()
	ct := c.chargerType
	pdActive := c.pdActive
	c.mu.Unlock()

	var uv int
	switch ct {
	case types.ChargerHVDCP3:
		c.hvdcpMu.Lock()
		uv = c.hvdcp3VoltageUV
		c.hvdcpMu.Unlock()
	case types.ChargerHVDCP2:
		uv = c.getHvdcp2Voltage()
	default:
		uv = voltageForce5VUV
	}

	if pdActive {
		if v, err := c.fromTCPM(psy.PropVoltageNow); err != nil {
			println("Error: couldn't get voltage from the negotiation peer:", err.Error())
		} else {
			uv = v.Int
		}
	}
	return uv
}

// battSupply exposes the charging state as the "battery" power supply. Most
// measurements proxy to the fuel gauge; state synthesis reads the charger's
// own status registers.
type battSupply struct {
	c *Chip
}

func (b *battSupply) Name() string { return battSupplyName }

func (b *battSupply) GetProp(p psy.Property) (psy.Value, error) {
	c := b.c
	var (
		v   psy.Value
		err error
	)

	switch p {
	case psy.PropPresent:
		v, err = c.getBattPresent()
	case psy.PropStatus:
		v, err = c.getBattStatus()
	case psy.PropChargeType:
		v, err = c.getBattChargeType()
	case psy.PropHealth:
		v, err = c.fromBMS(p)
		if err != nil {
			v, err = c.getBattHealth()
		}
	case psy.PropTemp, psy.PropVoltageNow, psy.PropCurrentNow, psy.PropCapacity:
		v, err = c.fromBMS(p)
	case psy.PropVoltageMax:
		c.mu.Lock()
		v = psy.IntVal(c.floatVoltUV)
		c.mu.Unlock()
	case psy.PropCurrentMax:
		c.mu.Lock()
		v = psy.IntVal(c.fastchgCurrUA)
		c.mu.Unlock()
	case psy.PropConstantChargeCurrentMax:
		v, err = c.fromBMS(p)
		if err != nil {
			c.mu.Lock()
			v, err = psy.IntVal(c.fastchgCurrUA), nil
			c.mu.Unlock()
		}
	case psy.PropConstantChargeVoltageMax:
		v, err = c.fromBMS(p)
		if err != nil {
			c.mu.Lock()
			v, err = psy.IntVal(c.floatVoltUV), nil
			c.mu.Unlock()
		}
	case psy.PropChargeTermCurrent:
		c.mu.Lock()
		v = psy.IntVal(c.terminationCurrentUA)
		c.mu.Unlock()
	default:
		return psy.Value{}, errcode.Unsupported
	}

	if err != nil {
		println("Error: couldn't get battery prop", p.String()+":", err.Error())
		return psy.Value{}, errcode.NoData
	}
	return v, nil
}

// SetProp reprograms the charge profile. The fuel gauge is the peer of
// record: when it holds the property its value wins over the caller's. The
// cached target only moves once the hardware write succeeded.
func (b *battSupply) SetProp(p psy.Property, v psy.Value) error {
	c := b.c

	target := v.Int
	if bmsVal, err := c.fromBMS(p); err == nil {
		target = bmsVal.Int
	}

	switch p {
	case psy.PropConstantChargeVoltageMax:
		if err := c.setFV(target); err != nil {
			return err
		}
		c.mu.Lock()
		c.floatVoltUV = target
		c.mu.Unlock()
		return nil
	case psy.PropConstantChargeCurrentMax:
		if err := c.setFCC(target); err != nil {
			return err
		}
		c.mu.Lock()
		c.fastchgCurrUA = target
		c.mu.Unlock()
		return nil
	default:
		return errcode.Unsupported
	}
}

func (b *battSupply) Writeable(p psy.Property) bool {
	switch p {
	case psy.PropConstantChargeVoltageMax, psy.PropConstantChargeCurrentMax:
		return true
	}
	return false
}

// getBattPresent treats a battery as present while neither the terminal nor
// the therm/ID pin reads missing.
func (c *Chip) getBattPresent() (psy.Value, error) {
	stat, err := c.rm.Read(RegBatifIntRtSts)
	if err != nil {
		return psy.Value{}, errcode.IOf("read batif int status", err)
	}
	missing := stat&(BatTerminalMissingRtStsBit|BatThermOrIDMissingRtStsBit) != 0
	return psy.BoolVal(!missing), nil
}

func (c *Chip) getBattChargeType() (psy.Value, error) {
	stat, err := c.rm.Read(RegBatteryChargerStatus1)
	if err != nil {
		return psy.Value{}, errcode.IOf("read charger status 1", err)
	}

	var ct types.ChargeType
	switch stat & BatteryChargerStatusMask {
	case TrickleCharge, PreCharge:
		ct = types.ChargeTrickle
	case FullonCharge:
		ct = types.ChargeFast
	case TaperCharge:
		ct = types.ChargeTaper
	default:
		ct = types.ChargeNone
	}
	return psy.IntVal(int(ct)), nil
}

// getBattHealth is the fallback when the fuel gauge has no health opinion:
// synthesize one from the charger's temperature-zone status.
func (c *Chip) getBattHealth() (psy.Value, error) {
	stat, err := c.rm.Read(RegBatteryChargerStatus7)
	if err != nil {
		return psy.Value{}, errcode.IOf("read charger status 7", err)
	}

	var h types.Health
	switch {
	case stat&BatTempTooColdBit != 0:
		h = types.HealthCold
	case stat&BatTempTooHotBit != 0:
		h = types.HealthOverheat
	case stat&BatTempColdSoftBit != 0:
		h = types.HealthCool
	case stat&BatTempHotSoftBit != 0:
		h = types.HealthWarm
	default:
		h = types.HealthGood
	}
	return psy.IntVal(int(h)), nil
}

// getBattStatus folds the charge state machine and the input presence into
// the externally visible status. Offline, a terminated or inhibited charge
// still reads as full; anything else is discharging.
func (c *Chip) getBattStatus() (psy.Value, error) {
	online := c.UsbOnline()

	stat, err := c.rm.Read(RegBatteryChargerStatus1)
	if err != nil {
		return psy.Value{}, errcode.IOf("read charger status 1", err)
	}
	state := stat & BatteryChargerStatusMask

	if !online {
		switch state {
		case TerminateCharge, InhibitCharge:
			return psy.IntVal(int(types.StatusFull)), nil
		default:
			return psy.IntVal(int(types.StatusDischarging)), nil
		}
	}

	var s types.BatteryStatus
	switch state {
	case TrickleCharge, PreCharge, FullonCharge, TaperCharge:
		s = types.StatusCharging
	case TerminateCharge:
		s = types.StatusFull
	case InhibitCharge, PauseCharge, DisableCharge:
		s = types.StatusNotCharging
	default:
		s = types.StatusUnknown
	}
	return psy.IntVal(int(s)), nil
}
