package types

// ------------------------
// Charger / USB taxonomy (smb235x)
// ------------------------

// ChargerType is the attached-source classification decided by detection.
type ChargerType int

const (
	ChargerUnknown ChargerType = iota
	ChargerSDP                 // standard downstream port
	ChargerCDP                 // charging downstream port
	ChargerDCP                 // dedicated charging port
	ChargerFloat               // non-compliant "floating data lines" charger
	ChargerHVDCP2              // QC2.0 high-voltage port
	ChargerHVDCP3              // QC3.0 high-voltage port
)

func (t ChargerType) String() string {
	switch t {
	case ChargerSDP:
		return "sdp"
	case ChargerCDP:
		return "cdp"
	case ChargerDCP:
		return "dcp"
	case ChargerFloat:
		return "float"
	case ChargerHVDCP2:
		return "hvdcp2"
	case ChargerHVDCP3:
		return "hvdcp3"
	default:
		return "unknown"
	}
}

// UsbType mirrors ChargerType into the USB-type taxonomy shared with the
// Type-C/PD negotiation peer. UsbC is the "connected, nothing negotiated yet"
// sentinel the peer reports before PD contracts exist.
type UsbType int

const (
	UsbUnknown UsbType = iota
	UsbSDP
	UsbDCP
	UsbCDP
	UsbC
	UsbPD
	UsbPDPPS
)

func (t UsbType) String() string {
	switch t {
	case UsbSDP:
		return "sdp"
	case UsbDCP:
		return "dcp"
	case UsbCDP:
		return "cdp"
	case UsbC:
		return "c"
	case UsbPD:
		return "pd"
	case UsbPDPPS:
		return "pd_pps"
	default:
		return "unknown"
	}
}

// BatteryStatus is the externally visible battery charging state.
type BatteryStatus int

const (
	StatusUnknown BatteryStatus = iota
	StatusCharging
	StatusDischarging
	StatusNotCharging
	StatusFull
)

func (s BatteryStatus) String() string {
	switch s {
	case StatusCharging:
		return "charging"
	case StatusDischarging:
		return "discharging"
	case StatusNotCharging:
		return "not_charging"
	case StatusFull:
		return "full"
	default:
		return "unknown"
	}
}

// ChargeType is the charge phase reported on the battery supply.
type ChargeType int

const (
	ChargeNone ChargeType = iota
	ChargeTrickle
	ChargeFast
	ChargeTaper
)

// Health is the battery temperature-zone health.
type Health int

const (
	HealthUnknown Health = iota
	HealthGood
	HealthOverheat
	HealthWarm
	HealthCool
	HealthCold
)
