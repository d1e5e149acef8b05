// Package smb235x implements the charge-control core of the SMB235x
// switch-mode battery charger: charger-type detection, current/voltage
// programming including the HVDCP pulse-train protocol, the hardware event
// handlers, the "usb"/"battery" power-supply property sets and the periodic
// fuel-gauge reconciler.
package smb235x

// Register addresses. The peripheral blocks sit at fixed 256-byte bases:
// CHGR 0x10xx, DCDC 0x11xx, BATIF 0x12xx, USBIN 0x13xx, MISC 0x16xx.
const (
	// --- CHGR ---
	RegBatteryChargerStatus1 = 0x1006
	RegBatteryChargerStatus2 = 0x1007
	RegBatteryChargerStatus7 = 0x100D
	RegChargingEnableCmd     = 0x1042
	RegChgrCfg2              = 0x1051
	RegRchgSocThresholdCfg   = 0x1052
	RegTrickleChargeCurrent  = 0x1058
	RegMaxPreChargeCurrent   = 0x105F
	RegPreChargeCurrent      = 0x1060
	RegFastChargeCurrent     = 0x1061
	RegMaxFastChargeCurrent  = 0x1062
	RegChargeCurrentTermCfg  = 0x1064
	RegFloatVoltageCfg       = 0x1070
	RegChargeInhibitThrCfg   = 0x1072
	RegStepChgSocVbattV      = 0x1073
	RegStepChgSocVbattVUpd   = 0x1074

	// --- DCDC ---
	RegAiclIclStatus   = 0x1107
	RegIclMaxStatus    = 0x1108
	RegPowerPathStatus = 0x110B

	// --- BATIF ---
	RegBatifIntRtSts = 0x1210

	// --- USBIN ---
	RegUsbApsdStatus        = 0x1307
	RegUsbApsdResultStatus  = 0x1308
	RegUsbQcChangeStatus    = 0x1309
	RegUsbIntRtSts          = 0x1310
	RegUsbCmdApsd           = 0x1341
	RegUsbCmdIclOverride    = 0x1342
	RegUsbCmdHvdcp2         = 0x1343
	RegUsbHvdcpPulseCntMax  = 0x135B
	RegUsbinOptions1Cfg     = 0x1362
	RegUsbinOptions2Cfg     = 0x1363
	RegUsbinLoadCfg         = 0x1365
	RegUsbinCurrentLimitCfg = 0x1370
	RegUsbinAiclOptionsCfg  = 0x1380

	// --- MISC ---
	RegMiscWdCfg          = 0x1651
	RegMiscBarkBiteWdgPet = 0x1643
)

// Bit assignments, per register.
const (
	// RegBatteryChargerStatus1 (low three bits are the charge state machine)
	BatteryChargerStatusMask = 0x07

	// RegBatteryChargerStatus2
	ChargerErrSftExpireBit      = 1 << 4
	ChargerErrBatOvBit          = 1 << 5
	ChargerErrBatTermMissingBit = 1 << 6

	// RegBatteryChargerStatus7 (battery temperature zones)
	BatTempTooColdBit  = 1 << 7
	BatTempTooHotBit   = 1 << 6
	BatTempColdSoftBit = 1 << 5
	BatTempHotSoftBit  = 1 << 4

	// RegChargingEnableCmd
	ChargingEnableBit = 1 << 0

	// RegChgrCfg2
	SocBasedRechgBit  = 1 << 0
	ChargerInhibitBit = 1 << 7

	// RegChargeInhibitThrCfg
	ChargeInhibitThresholdMask = 0x03
	InhibitVfltMinus100mV      = 0x00
	InhibitVfltMinus200mV      = 0x01
	InhibitVfltMinus400mV      = 0x02
	InhibitVfltMinus600mV      = 0x03

	// RegStepChgSocVbattVUpd
	StepSocVbattVUpdateBit = 1 << 0

	// RegPowerPathStatus
	UseUsbinBit                 = 1 << 4
	ValidInputPowerSourceStsBit = 1 << 7

	// RegBatifIntRtSts
	BatThermOrIDMissingRtStsBit = 1 << 4
	BatTerminalMissingRtStsBit  = 1 << 5

	// RegUsbApsdStatus
	ApsdDtcStatusDoneBit = 1 << 7

	// RegUsbApsdResultStatus
	SdpChargerBit        = 1 << 0
	OcpChargerBit        = 1 << 1
	CdpChargerBit        = 1 << 2
	DcpChargerBit        = 1 << 3
	FloatChargerBit      = 1 << 4
	Qc2p0Bit             = 1 << 5
	Qc3p0Bit             = 1 << 6
	ApsdResultStatusMask = 0x7F

	// RegUsbQcChangeStatus
	Qc5VBit  = 1 << 0
	Qc9VBit  = 1 << 1
	Qc12VBit = 1 << 2

	// RegUsbIntRtSts
	UsbinPluginRtStsBit = 1 << 4

	// RegUsbCmdApsd
	ApsdRerunBit = 1 << 0

	// RegUsbCmdIclOverride
	IclOverrideBit = 1 << 0

	// RegUsbCmdHvdcp2
	SingleDecrementBit = 1 << 0
	SingleIncrementBit = 1 << 1
	Force5VBit         = 1 << 3
	Force9VBit         = 1 << 4
	Force12VBit        = 1 << 5

	// RegUsbHvdcpPulseCntMax
	HvdcpPulseCountMaxQc3Mask = 0x3F

	// RegUsbinOptions1Cfg
	UsbinApsdEnableBit            = 1 << 0
	UsbinHvdcpEnBit               = 1 << 3
	UsbinHvdcpAutonomousModeEnBit = 1 << 5
	UsbinHvdcpAuthAlgEnBit        = 1 << 6

	// RegUsbinOptions2Cfg (float charger handling)
	ForceFloatSdpCfgBit = 1 << 0
	SuspendFloatCfgBit  = 1 << 1
	FloatDisChgingCfg   = 1 << 2
	FloatOptionsMask    = 0x07

	// RegUsbinLoadCfg
	IclOverrideAfterApsdBit = 1 << 4

	// RegUsbinAiclOptionsCfg
	UsbinAiclEnBit              = 1 << 2
	UsbinAiclPeriodicRerunEnBit = 1 << 4

	// RegMiscWdCfg
	WdogTimerEnOnPluginBit = 1 << 1
	BarkWdogIntEnBit       = 1 << 6

	// RegMiscBarkBiteWdgPet
	BarkBiteWdogPetBit = 1 << 0
)

// Charge state machine values in RegBatteryChargerStatus1.
const (
	TrickleCharge = iota
	PreCharge
	FullonCharge
	TaperCharge
	TerminateCharge
	InhibitCharge
	DisableCharge
	PauseCharge
)
