package smb235x

import (
	"time"

	"smb235x-go/errcode"
	"smb235x-go/types"
	"smb235x-go/x/mathx"
)

// setIclSw programs a software input current limit. Override must be armed in
// two places before the limit register takes effect: once in the load config
// so APSD reruns don't revert it, once in the command register.
func (c *Chip) setIclSw(iclMA int) error {
	if err := c.rm.UpdateBits(RegUsbinLoadCfg, IclOverrideAfterApsdBit, IclOverrideAfterApsdBit); err != nil {
		return errcode.IOf("arm icl override after apsd", err)
	}
	if err := c.rm.UpdateBits(RegUsbCmdIclOverride, IclOverrideBit, IclOverrideBit); err != nil {
		return errcode.IOf("arm icl override", err)
	}
	if err := c.rm.Write(RegUsbinCurrentLimitCfg, uint8(iclMA/currentStepMA)); err != nil {
		return errcode.IOf("write input current limit", err)
	}
	return nil
}

func (c *Chip) enableCharge(enable bool) error {
	var val uint8
	if enable {
		val = ChargingEnableBit
	}
	if err := c.rm.UpdateBits(RegChargingEnableCmd, ChargingEnableBit, val); err != nil {
		return errcode.IOf("set charging enable", err)
	}
	return nil
}

func (c *Chip) rerunAPSD() error {
	if err := c.rm.UpdateBits(RegUsbCmdApsd, ApsdRerunBit, ApsdRerunBit); err != nil {
		return errcode.IOf("rerun apsd", err)
	}
	return nil
}

// enableAPSD resets the HVDCP3 voltage bookkeeping, latches the adapter's
// maximum pulse allowance and turns on detection. Authentication and HVDCP
// stay enabled; autonomous mode is explicitly cleared so voltage moves only
// under software control.
func (c *Chip) enableAPSD() error {
	c.hvdcpMu.Lock()
	c.hvdcp3VoltageUV = qc3DefaultVoltageUV
	c.basedHvdcpVoltageUV = baseVoltageUV
	c.hvdcpMu.Unlock()

	stat, err := c.rm.Read(RegUsbHvdcpPulseCntMax)
	if err != nil {
		return errcode.IOf("read hvdcp pulse count max", err)
	}
	c.hvdcpMu.Lock()
	c.hvdcpPulseCountMax = int(stat & HvdcpPulseCountMaxQc3Mask)
	c.hvdcpMu.Unlock()

	mask := uint8(UsbinHvdcpAuthAlgEnBit | UsbinHvdcpAutonomousModeEnBit | UsbinApsdEnableBit | UsbinHvdcpEnBit)
	val := uint8(UsbinHvdcpAuthAlgEnBit | UsbinApsdEnableBit | UsbinHvdcpEnBit)
	if err := c.rm.UpdateBits(RegUsbinOptions1Cfg, mask, val); err != nil {
		return errcode.IOf("enable apsd", err)
	}

	return c.rerunAPSD()
}

// setHvdcp3Voltage walks the QC3 adapter to the requested voltage with
// 200mV increment/decrement pulses. Requests below the 5V floor are ignored.
// Upward moves count from the last committed base and are clamped to the
// adapter's advertised pulse allowance; downward moves count from the current
// voltage. A failed pulse aborts and leaves the stored voltages untouched, so
// a retry restarts from the old bookkeeping.
func (c *Chip) setHvdcp3Voltage(voltageUV int) error {
	if voltageUV < baseVoltageUV {
		return nil
	}

	c.hvdcpMu.Lock()
	defer c.hvdcpMu.Unlock()

	if voltageUV > c.basedHvdcpVoltageUV {
		pulses := mathx.Clamp((voltageUV-c.basedHvdcpVoltageUV)/qc3VoltageStepUV, 0, c.hvdcpPulseCountMax)
		for ; pulses > 0; pulses-- {
			if err := c.rm.UpdateBits(RegUsbCmdHvdcp2, SingleIncrementBit, SingleIncrementBit); err != nil {
				return errcode.IOf("hvdcp single increment", err)
			}
			time.Sleep(500 * time.Microsecond)
		}
	} else {
		pulses := (c.hvdcp3VoltageUV - voltageUV) / qc3VoltageStepUV
		for ; pulses > 0; pulses-- {
			if err := c.rm.UpdateBits(RegUsbCmdHvdcp2, SingleDecrementBit, SingleDecrementBit); err != nil {
				return errcode.IOf("hvdcp single decrement", err)
			}
			time.Sleep(500 * time.Microsecond)
		}
	}

	c.hvdcp3VoltageUV = voltageUV
	c.basedHvdcpVoltageUV = voltageUV
	return nil
}

// setFV programs the float voltage, coded as 20mV steps above the 7.2V base.
func (c *Chip) setFV(vfloatUV int) error {
	val := uint8((vfloatUV/microToMilli - floatVoltageBaseMV) / floatVoltageStepMV)
	if err := c.rm.Write(RegFloatVoltageCfg, val); err != nil {
		return errcode.IOf("write float voltage", err)
	}
	return nil
}

// setFCC programs the fast charge current. The hardware code carries a +1
// bias over the 50mA step grid.
func (c *Chip) setFCC(fccUA int) error {
	val := uint8(fccUA/microToMilli/currentStepMA + 1)
	if err := c.rm.Write(RegFastChargeCurrent, val); err != nil {
		return errcode.IOf("write fast charge current", err)
	}
	return nil
}

// configChgCurrentVoltage writes the full charge current/voltage profile.
// Only the two fast-charge codes carry the +1 bias; the trickle/pre-charge
// family is coded directly in 50mA steps.
func (c *Chip) configChgCurrentVoltage() error {
	c.mu.Lock()
	fcc := c.fastchgCurrUA
	maxFcc := c.maxFccUA
	fv := c.floatVoltUV
	trickle := c.trickleChargeCurrentUA
	pre := c.preChargeCurrentUA
	maxPre := c.maxPreChargeCurrentUA
	c.mu.Unlock()

	if err := c.setFCC(fcc); err != nil {
		return err
	}
	val := uint8(maxFcc/microToMilli/currentStepMA + 1)
	if err := c.rm.Write(RegMaxFastChargeCurrent, val); err != nil {
		return errcode.IOf("write max fast charge current", err)
	}
	if err := c.setFV(fv); err != nil {
		return err
	}
	if err := c.rm.Write(RegTrickleChargeCurrent, uint8(trickle/microToMilli/currentStepMA)); err != nil {
		return errcode.IOf("write trickle charge current", err)
	}
	if err := c.rm.Write(RegPreChargeCurrent, uint8(pre/microToMilli/currentStepMA)); err != nil {
		return errcode.IOf("write pre charge current", err)
	}
	if err := c.rm.Write(RegMaxPreChargeCurrent, uint8(maxPre/microToMilli/currentStepMA)); err != nil {
		return errcode.IOf("write max pre charge current", err)
	}
	return nil
}

func (c *Chip) configAicl() error {
	mask := uint8(UsbinAiclPeriodicRerunEnBit | UsbinAiclEnBit)
	if err := c.rm.UpdateBits(RegUsbinAiclOptionsCfg, mask, mask); err != nil {
		return errcode.IOf("enable aicl", err)
	}
	return nil
}

func (c *Chip) enableWatchdog() error {
	mask := uint8(BarkWdogIntEnBit | WdogTimerEnOnPluginBit)
	if err := c.rm.UpdateBits(RegMiscWdCfg, mask, mask); err != nil {
		return errcode.IOf("enable watchdog", err)
	}
	return nil
}

// configChargeTermination writes the termination current code. The value may
// be negative (terminate on discharge current); the byte write carries its
// two's complement.
func (c *Chip) configChargeTermination() error {
	c.mu.Lock()
	term := c.terminationCurrentUA
	c.mu.Unlock()
	val := uint8(term / microToMilli / currentStepMA)
	if err := c.rm.Write(RegChargeCurrentTermCfg, val); err != nil {
		return errcode.IOf("write termination current", err)
	}
	return nil
}

func (c *Chip) configRecharge() error {
	if err := c.rm.UpdateBits(RegChgrCfg2, SocBasedRechgBit, 1); err != nil {
		return errcode.IOf("enable soc based recharge", err)
	}
	if err := c.rm.Write(RegRchgSocThresholdCfg, uint8(c.params.AutoRechargeSOC)); err != nil {
		return errcode.IOf("write recharge soc threshold", err)
	}
	return nil
}

func (c *Chip) configFloatCharge() error {
	var val uint8
	switch c.params.FloatOption {
	case types.FloatForceSDP:
		val = ForceFloatSdpCfgBit
	case types.FloatDisableCharging:
		val = SuspendFloatCfgBit
	case types.FloatSuspendInput:
		val = FloatDisChgingCfg
	default:
		return nil
	}
	if err := c.rm.UpdateBits(RegUsbinOptions2Cfg, FloatOptionsMask, val); err != nil {
		return errcode.IOf("set float charge option", err)
	}
	return nil
}

func (c *Chip) configInhibit() error {
	thrMV := c.params.ChgInhibitThresholdMV
	if thrMV == 0 {
		return nil
	}

	if err := c.rm.UpdateBits(RegChgrCfg2, ChargerInhibitBit, ChargerInhibitBit); err != nil {
		return errcode.IOf("enable charge inhibit", err)
	}

	var val uint8
	switch thrMV {
	case 100:
		val = InhibitVfltMinus100mV
	case 200:
		val = InhibitVfltMinus200mV
	case 400:
		val = InhibitVfltMinus400mV
	case 600:
		val = InhibitVfltMinus600mV
	default:
		return &errcode.E{C: errcode.Config, Op: "config inhibit", Msg: "invalid inhibit threshold"}
	}
	if err := c.rm.UpdateBits(RegChargeInhibitThrCfg, ChargeInhibitThresholdMask, val); err != nil {
		return errcode.IOf("write inhibit threshold", err)
	}
	return nil
}
