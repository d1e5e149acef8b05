package smb235x

import (
	"testing"

	"smb235x-go/errcode"
	"smb235x-go/types"
)

func TestParamsFromJSON_Defaults(t *testing.T) {
	p, err := ParamsFromJSON([]byte(`{}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if p != types.DefaultChargerParams() {
		t.Fatalf("params = %+v, want defaults", p)
	}
}

func TestParamsFromJSON_Overrides(t *testing.T) {
	raw := []byte(`{
		"fv-max-uv": 8400000,
		"fcc-max-ua": 2500000,
		"fast-charge-current-ua": 2000000,
		"trickle-current-ua": 100000,
		"termination-current-ua": -150000,
		"auto-recharge-soc": 95,
		"float-option": 1,
		"chg-inhibit-threshold-mv": 200,
		"tcpm-psy-name": "port0"
	}`)

	p, err := ParamsFromJSON(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if p.FloatVoltageUV != 8_400_000 || p.MaxFastChargeCurrentUA != 2_500_000 {
		t.Fatalf("voltage/fcc = %d/%d", p.FloatVoltageUV, p.MaxFastChargeCurrentUA)
	}
	if p.FastChargeCurrentUA != 2_000_000 || p.TrickleChargeCurrentUA != 100_000 {
		t.Fatalf("fast/trickle = %d/%d", p.FastChargeCurrentUA, p.TrickleChargeCurrentUA)
	}
	if p.TerminationCurrentUA != -150_000 {
		t.Fatalf("termination = %d", p.TerminationCurrentUA)
	}
	if p.AutoRechargeSOC != 95 || p.ChgInhibitThresholdMV != 200 {
		t.Fatalf("soc/inhibit = %d/%d", p.AutoRechargeSOC, p.ChgInhibitThresholdMV)
	}
	if p.FloatOption != types.FloatForceSDP {
		t.Fatalf("float option = %d", p.FloatOption)
	}
	if p.TcpmName != "port0" {
		t.Fatalf("tcpm name = %q", p.TcpmName)
	}
	// Unset keys keep their defaults.
	if p.PreChargeCurrentUA != 750_000 {
		t.Fatalf("pre charge = %d, want default", p.PreChargeCurrentUA)
	}
}

func TestParamsFromJSON_RejectsBadInhibitThreshold(t *testing.T) {
	_, err := ParamsFromJSON([]byte(`{"chg-inhibit-threshold-mv": 300}`))
	if !errcode.Is(err, errcode.Config) {
		t.Fatalf("err = %v, want config_error", err)
	}
}

func TestParamsFromJSON_RejectsNonObject(t *testing.T) {
	_, err := ParamsFromJSON([]byte(`[1,2,3]`))
	if !errcode.Is(err, errcode.Config) {
		t.Fatalf("err = %v, want config_error", err)
	}
}
