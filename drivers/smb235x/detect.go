package smb235x

import (
	"smb235x-go/errcode"
	"smb235x-go/psy"
	"smb235x-go/types"
)

// UsbOnline reports whether the input path is powered from USBIN. Read
// failures degrade to "offline" rather than propagating.
func (c *Chip) UsbOnline() bool {
	stat, err := c.rm.Read(RegPowerPathStatus)
	if err != nil {
		println("Error: couldn't read power path status:", err.Error())
		return false
	}
	return stat&UseUsbinBit != 0 && stat&ValidInputPowerSourceStsBit != 0
}

// chargerTypeForUsb maps the negotiation peer's USB-type taxonomy onto the
// charger classification. Type-C/PD attachments have no APSD equivalent and
// stay unclassified.
func chargerTypeForUsb(u types.UsbType) types.ChargerType {
	switch u {
	case types.UsbSDP:
		return types.ChargerSDP
	case types.UsbCDP:
		return types.ChargerCDP
	case types.UsbDCP:
		return types.ChargerDCP
	default:
		return types.ChargerUnknown
	}
}

// getChgType refreshes chargerType/usbType from the attached source. The
// negotiation peer's answer wins over APSD when it has one; an offline input
// resets both to unknown.
func (c *Chip) getChgType() error {
	if !c.UsbOnline() {
		c.mu.Lock()
		c.chargerType = types.ChargerUnknown
		c.usbType = types.UsbUnknown
		c.mu.Unlock()
		return nil
	}

	// The negotiation peer's classification wins outright, except for the
	// bare Type-C attachment sentinel: that one carries no BC1.2 answer, so
	// APSD still decides.
	if v, err := c.fromTCPM(psy.PropUsbType); err != nil {
		println("Info: couldn't query usb type from peer:", err.Error())
	} else if u := types.UsbType(v.Int); u != types.UsbC {
		c.mu.Lock()
		c.usbType = u
		c.chargerType = chargerTypeForUsb(u)
		c.mu.Unlock()
		return nil
	}

	stat, err := c.rm.Read(RegUsbApsdResultStatus)
	if err != nil {
		return errcode.IOf("read apsd result", err)
	}
	stat &= ApsdResultStatusMask

	// Later matches overwrite earlier ones, so the QC bits take priority
	// over the base BC1.2 result they are reported alongside.
	ct := types.ChargerUnknown
	ut := types.UsbUnknown
	if stat&FloatChargerBit != 0 {
		ct, ut = types.ChargerFloat, types.UsbUnknown
	}
	if stat&(DcpChargerBit|OcpChargerBit) != 0 {
		ct, ut = types.ChargerDCP, types.UsbDCP
	}
	if stat&CdpChargerBit != 0 {
		ct, ut = types.ChargerCDP, types.UsbCDP
	}
	if stat&SdpChargerBit != 0 {
		ct, ut = types.ChargerSDP, types.UsbSDP
	}
	if stat&Qc3p0Bit != 0 {
		ct, ut = types.ChargerHVDCP3, types.UsbDCP
	}
	if stat&Qc2p0Bit != 0 {
		ct, ut = types.ChargerHVDCP2, types.UsbDCP
	}

	c.mu.Lock()
	c.chargerType = ct
	c.usbType = ut
	c.mu.Unlock()
	return nil
}

// ChargerType returns the current source classification.
func (c *Chip) ChargerType() types.ChargerType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chargerType
}
