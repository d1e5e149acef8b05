package types

// FloatOption selects how the input path treats a float charger.
type FloatOption int

const (
	FloatOptionUnset FloatOption = iota
	FloatForceSDP
	FloatDisableCharging
	FloatSuspendInput
)

// ChargerParams is the platform configuration consumed by the charger core.
// Currents are µA (termination may be negative), voltages µV. Zero values
// mean "not configured" except where a compiled-in default applies first.
type ChargerParams struct {
	TrickleChargeCurrentUA int `json:"trickle-current-ua"`
	PreChargeCurrentUA     int `json:"precharge-current-ua"`
	MaxPreChargeCurrentUA  int `json:"max-precharge-current-ua"`
	FastChargeCurrentUA    int `json:"fast-charge-current-ua"`
	MaxFastChargeCurrentUA int `json:"fcc-max-ua"`
	TerminationCurrentUA   int `json:"termination-current-ua"`
	FloatVoltageUV         int `json:"fv-max-uv"`
	AutoRechargeSOC        int `json:"auto-recharge-soc"`

	// FloatOption and ChgInhibitThresholdMV are optional; unset leaves the
	// hardware default alone. The inhibit threshold must be one of
	// 100/200/400/600 mV when set.
	FloatOption           FloatOption `json:"float-option"`
	ChgInhibitThresholdMV int         `json:"chg-inhibit-threshold-mv"`

	// TcpmName is the suffix of the Type-C/PD negotiation peer's supply name.
	TcpmName string `json:"tcpm-psy-name"`
}

// DefaultChargerParams are the compiled-in targets used when the platform
// config omits a key.
func DefaultChargerParams() ChargerParams {
	return ChargerParams{
		TrickleChargeCurrentUA: 50_000,
		PreChargeCurrentUA:     750_000,
		MaxPreChargeCurrentUA:  1_000_000,
		FastChargeCurrentUA:    3_250_000,
		MaxFastChargeCurrentUA: 3_250_000,
		TerminationCurrentUA:   -325_000,
		FloatVoltageUV:         8_800_000,
		AutoRechargeSOC:        98,
	}
}
