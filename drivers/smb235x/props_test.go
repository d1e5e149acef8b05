package smb235x

import (
	"testing"

	"smb235x-go/errcode"
	"smb235x-go/psy"
	"smb235x-go/types"
)

func usbOf(c *Chip) psy.Supply  { return &usbSupply{c: c} }
func battOf(c *Chip) psy.Supply { return &battSupply{c: c} }

func TestBattStatus_Offline(t *testing.T) {
	cases := []struct {
		state uint8
		want  types.BatteryStatus
	}{
		{TerminateCharge, types.StatusFull},
		{InhibitCharge, types.StatusFull},
		{TrickleCharge, types.StatusDischarging},
		{FullonCharge, types.StatusDischarging},
		{DisableCharge, types.StatusDischarging},
	}
	for _, tc := range cases {
		c, mem, _ := newTestChip(t)
		offline(mem)
		mem.Load(RegBatteryChargerStatus1, tc.state)

		v, err := battOf(c).GetProp(psy.PropStatus)
		if err != nil {
			t.Fatalf("state %d: %v", tc.state, err)
		}
		if types.BatteryStatus(v.Int) != tc.want {
			t.Fatalf("state %d: status = %d, want %d", tc.state, v.Int, tc.want)
		}
	}
}

func TestBattStatus_Online(t *testing.T) {
	cases := []struct {
		state uint8
		want  types.BatteryStatus
	}{
		{TrickleCharge, types.StatusCharging},
		{PreCharge, types.StatusCharging},
		{FullonCharge, types.StatusCharging},
		{TaperCharge, types.StatusCharging},
		{TerminateCharge, types.StatusFull},
		{InhibitCharge, types.StatusNotCharging},
		{PauseCharge, types.StatusNotCharging},
		{DisableCharge, types.StatusNotCharging},
	}
	for _, tc := range cases {
		c, mem, _ := newTestChip(t)
		online(mem)
		mem.Load(RegBatteryChargerStatus1, tc.state)

		v, err := battOf(c).GetProp(psy.PropStatus)
		if err != nil {
			t.Fatalf("state %d: %v", tc.state, err)
		}
		if types.BatteryStatus(v.Int) != tc.want {
			t.Fatalf("state %d: status = %d, want %d", tc.state, v.Int, tc.want)
		}
	}
}

func TestBattChargeType(t *testing.T) {
	cases := []struct {
		state uint8
		want  types.ChargeType
	}{
		{TrickleCharge, types.ChargeTrickle},
		{PreCharge, types.ChargeTrickle},
		{FullonCharge, types.ChargeFast},
		{TaperCharge, types.ChargeTaper},
		{TerminateCharge, types.ChargeNone},
	}
	for _, tc := range cases {
		c, mem, _ := newTestChip(t)
		mem.Load(RegBatteryChargerStatus1, tc.state)

		v, err := battOf(c).GetProp(psy.PropChargeType)
		if err != nil {
			t.Fatalf("state %d: %v", tc.state, err)
		}
		if types.ChargeType(v.Int) != tc.want {
			t.Fatalf("state %d: charge type = %d, want %d", tc.state, v.Int, tc.want)
		}
	}
}

func TestBattHealth_FallbackFromTempZones(t *testing.T) {
	cases := []struct {
		stat uint8
		want types.Health
	}{
		{BatTempTooColdBit, types.HealthCold},
		{BatTempTooHotBit, types.HealthOverheat},
		{BatTempColdSoftBit, types.HealthCool},
		{BatTempHotSoftBit, types.HealthWarm},
		// The hard zones shadow the soft ones.
		{BatTempTooColdBit | BatTempColdSoftBit, types.HealthCold},
		{0, types.HealthGood},
	}
	for _, tc := range cases {
		c, mem, _ := newTestChip(t)
		mem.Load(RegBatteryChargerStatus7, tc.stat)

		v, err := battOf(c).GetProp(psy.PropHealth)
		if err != nil {
			t.Fatalf("stat 0x%02X: %v", tc.stat, err)
		}
		if types.Health(v.Int) != tc.want {
			t.Fatalf("stat 0x%02X: health = %d, want %d", tc.stat, v.Int, tc.want)
		}
	}
}

func TestBattHealth_PeerOpinionWins(t *testing.T) {
	c, mem, registry := newTestChip(t)
	mem.Load(RegBatteryChargerStatus7, BatTempTooHotBit)
	registry.Register(&fakeSupply{name: "bms", props: map[psy.Property]int{
		psy.PropHealth: int(types.HealthGood),
	}})

	v, err := battOf(c).GetProp(psy.PropHealth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if types.Health(v.Int) != types.HealthGood {
		t.Fatalf("health = %d, want good", v.Int)
	}
}

func TestBattPresent(t *testing.T) {
	c, mem, _ := newTestChip(t)

	mem.Load(RegBatifIntRtSts, 0)
	v, err := battOf(c).GetProp(psy.PropPresent)
	if err != nil || v.Int != 1 {
		t.Fatalf("present = %d/%v, want 1", v.Int, err)
	}

	mem.Load(RegBatifIntRtSts, BatTerminalMissingRtStsBit)
	v, err = battOf(c).GetProp(psy.PropPresent)
	if err != nil || v.Int != 0 {
		t.Fatalf("present = %d/%v, want 0", v.Int, err)
	}
}

func TestBattSetProp_PeerOfRecord(t *testing.T) {
	c, _, registry := newTestChip(t)
	registry.Register(&fakeSupply{name: "bms", props: map[psy.Property]int{
		psy.PropConstantChargeCurrentMax: 2_500_000,
	}})

	// The fuel gauge holds the property, so its value wins over the caller's.
	if err := battOf(c).SetProp(psy.PropConstantChargeCurrentMax, psy.IntVal(1_000_000)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if c.fastchgCurrUA != 2_500_000 {
		t.Fatalf("fcc target = %d, want 2500000", c.fastchgCurrUA)
	}
}

func TestBattSetProp_NoPeerUsesCaller(t *testing.T) {
	c, mem, _ := newTestChip(t)

	if err := battOf(c).SetProp(psy.PropConstantChargeVoltageMax, psy.IntVal(8_400_000)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if c.floatVoltUV != 8_400_000 {
		t.Fatalf("fv target = %d, want 8400000", c.floatVoltUV)
	}
	if got := mem.Get(RegFloatVoltageCfg); got != 60 {
		t.Fatalf("fv code = %d, want 60", got)
	}
}

func TestBattSetProp_FailedWriteKeepsTarget(t *testing.T) {
	c, mem, _ := newTestChip(t)
	mem.OnWrite[RegFastChargeCurrent] = func(uint8) (uint8, error) { return 0, errFault }
	before := c.fastchgCurrUA

	if err := battOf(c).SetProp(psy.PropConstantChargeCurrentMax, psy.IntVal(2_000_000)); err == nil {
		t.Fatal("expected an error")
	}
	if c.fastchgCurrUA != before {
		t.Fatalf("target moved to %d on a failed write", c.fastchgCurrUA)
	}
}

func TestUsbIcl_OfflineReadsZero(t *testing.T) {
	c, mem, _ := newTestChip(t)
	offline(mem)
	mem.Load(RegUsbinCurrentLimitCfg, 30)

	v, err := usbOf(c).GetProp(psy.PropCurrentMax)
	if err != nil || v.Int != 0 {
		t.Fatalf("icl = %d/%v, want 0", v.Int, err)
	}
}

func TestUsbIcl_OverrideReadsSwLimit(t *testing.T) {
	c, mem, _ := newTestChip(t)
	online(mem)
	mem.Load(RegUsbCmdIclOverride, IclOverrideBit)
	mem.Load(RegUsbinCurrentLimitCfg, 30)
	mem.Load(RegIclMaxStatus, 10)

	v, err := usbOf(c).GetProp(psy.PropCurrentMax)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int != 1_500_000 {
		t.Fatalf("icl = %d, want 1500000", v.Int)
	}
}

func TestUsbIcl_NoOverrideReadsAiclResult(t *testing.T) {
	c, mem, _ := newTestChip(t)
	online(mem)
	mem.Load(RegUsbinCurrentLimitCfg, 30)
	mem.Load(RegIclMaxStatus, 10)

	v, err := usbOf(c).GetProp(psy.PropCurrentMax)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int != 500_000 {
		t.Fatalf("icl = %d, want 500000", v.Int)
	}
}

func TestUsbVoltage_ByChargerType(t *testing.T) {
	c, mem, _ := newTestChip(t)
	online(mem)

	c.chargerType = types.ChargerDCP
	if v, _ := usbOf(c).GetProp(psy.PropVoltageNow); v.Int != voltageForce5VUV {
		t.Fatalf("dcp voltage = %d, want 5V", v.Int)
	}

	c.chargerType = types.ChargerHVDCP3
	c.hvdcp3VoltageUV = 6_800_000
	if v, _ := usbOf(c).GetProp(psy.PropVoltageNow); v.Int != 6_800_000 {
		t.Fatalf("qc3 voltage = %d, want 6800000", v.Int)
	}

	c.chargerType = types.ChargerHVDCP2
	mem.Load(RegUsbQcChangeStatus, Qc9VBit)
	if v, _ := usbOf(c).GetProp(psy.PropVoltageNow); v.Int != voltageForce9VUV {
		t.Fatalf("qc2 voltage = %d, want 9V", v.Int)
	}
	mem.Load(RegUsbQcChangeStatus, Qc12VBit|Qc9VBit)
	if v, _ := usbOf(c).GetProp(psy.PropVoltageNow); v.Int != voltageForce12VUV {
		t.Fatalf("qc2 voltage = %d, want 12V", v.Int)
	}

	offline(mem)
	if v, _ := usbOf(c).GetProp(psy.PropVoltageNow); v.Int != 0 {
		t.Fatalf("offline voltage = %d, want 0", v.Int)
	}
}

func TestUsbVoltage_PdDefersToPeer(t *testing.T) {
	c, mem, registry := newTestChip(t)
	online(mem)
	registry.Register(&fakeSupply{name: "tcpm-source-psy-", props: map[psy.Property]int{
		psy.PropVoltageNow: 11_000_000,
	}})
	c.chargerType = types.ChargerDCP
	c.pdActive = true

	v, err := usbOf(c).GetProp(psy.PropVoltageNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int != 11_000_000 {
		t.Fatalf("voltage = %d, want 11000000", v.Int)
	}
}

func TestUsbCurrentNow_OfflineZeroElsePeer(t *testing.T) {
	c, mem, registry := newTestChip(t)
	offline(mem)

	v, err := usbOf(c).GetProp(psy.PropCurrentNow)
	if err != nil || v.Int != 0 {
		t.Fatalf("offline current = %d/%v, want 0", v.Int, err)
	}

	online(mem)
	if _, err := usbOf(c).GetProp(psy.PropCurrentNow); !errcode.Is(err, errcode.NoData) {
		t.Fatalf("err = %v, want no_data without a peer", err)
	}

	registry.Register(&fakeSupply{name: "tcpm-source-psy-", props: map[psy.Property]int{
		psy.PropCurrentNow: 1_250_000,
	}})
	v, err = usbOf(c).GetProp(psy.PropCurrentNow)
	if err != nil || v.Int != 1_250_000 {
		t.Fatalf("current = %d/%v, want 1250000", v.Int, err)
	}
}

func TestUsbSetProp_SdpCurrentMaxStoresAndPrograms(t *testing.T) {
	c, mem, _ := newTestChip(t)

	if err := usbOf(c).SetProp(psy.PropSDPCurrentMax, psy.IntVal(900_000)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if c.sdpIclUA != 900_000 {
		t.Fatalf("sdp icl = %d, want 900000", c.sdpIclUA)
	}
	if got := mem.Get(RegUsbinCurrentLimitCfg); got != 18 {
		t.Fatalf("icl code = %d, want 18", got)
	}

	v, _ := usbOf(c).GetProp(psy.PropSDPCurrentMax)
	if v.Int != 900_000 {
		t.Fatalf("sdp readback = %d, want 900000", v.Int)
	}
}

func TestUsbSetProp_VoltageIgnoredOffQc3(t *testing.T) {
	c, mem, _ := newTestChip(t)
	c.chargerType = types.ChargerDCP

	if err := usbOf(c).SetProp(psy.PropVoltageNow, psy.IntVal(9_000_000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.WriteCount(RegUsbCmdHvdcp2) != 0 {
		t.Fatal("pulses emitted for a non-QC3 source")
	}
}

func TestUsbSupply_Writeable(t *testing.T) {
	c, _, _ := newTestChip(t)
	u := usbOf(c)
	if !u.Writeable(psy.PropCurrentMax) || !u.Writeable(psy.PropVoltageNow) || !u.Writeable(psy.PropSDPCurrentMax) {
		t.Fatal("writeable props missing")
	}
	if u.Writeable(psy.PropOnline) {
		t.Fatal("online must not be writeable")
	}

	b := battOf(c)
	if !b.Writeable(psy.PropConstantChargeCurrentMax) || !b.Writeable(psy.PropConstantChargeVoltageMax) {
		t.Fatal("batt writeable props missing")
	}
	if b.Writeable(psy.PropStatus) {
		t.Fatal("status must not be writeable")
	}
}
