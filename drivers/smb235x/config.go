package smb235x

import (
	"github.com/andreyvit/tinyjson"

	"smb235x-go/errcode"
	"smb235x-go/types"
)

// ParamsFromJSON decodes a platform config blob into charger parameters.
// Missing keys keep the compiled-in defaults.
func ParamsFromJSON(raw []byte) (types.ChargerParams, error) {
	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return types.ChargerParams{}, &errcode.E{C: errcode.Config, Op: "decode charger config", Msg: "not a JSON object"}
	}
	return ParamsFromMap(m)
}

// ParamsFromMap builds charger parameters from an already-decoded config
// object, e.g. the payload of a retained config message.
func ParamsFromMap(m map[string]any) (types.ChargerParams, error) {
	p := types.DefaultChargerParams()

	if v, ok := intField(m, "fv-max-uv"); ok {
		p.FloatVoltageUV = v
	}
	if v, ok := intField(m, "fcc-max-ua"); ok {
		p.MaxFastChargeCurrentUA = v
	}
	if v, ok := intField(m, "fast-charge-current-ua"); ok {
		p.FastChargeCurrentUA = v
	}
	if v, ok := intField(m, "trickle-current-ua"); ok {
		p.TrickleChargeCurrentUA = v
	}
	if v, ok := intField(m, "precharge-current-ua"); ok {
		p.PreChargeCurrentUA = v
	}
	if v, ok := intField(m, "max-precharge-current-ua"); ok {
		p.MaxPreChargeCurrentUA = v
	}
	if v, ok := intField(m, "termination-current-ua"); ok {
		p.TerminationCurrentUA = v
	}
	if v, ok := intField(m, "auto-recharge-soc"); ok {
		p.AutoRechargeSOC = v
	}
	if v, ok := intField(m, "float-option"); ok {
		p.FloatOption = types.FloatOption(v)
	}
	if v, ok := intField(m, "chg-inhibit-threshold-mv"); ok {
		switch v {
		case 100, 200, 400, 600:
			p.ChgInhibitThresholdMV = v
		default:
			return p, &errcode.E{C: errcode.Config, Op: "decode charger config", Msg: "invalid inhibit threshold"}
		}
	}
	if v, ok := m["tcpm-psy-name"].(string); ok {
		p.TcpmName = v
	}

	return p, nil
}

func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}
