// cmd/chargersim/main.go
//
// Host-side simulator for the charger core: a RAM-backed register file plays
// the part of the hardware, scripted register changes play the part of a
// cable, and fake bms/tcpm supplies stand in for the peers. Useful for
// watching the detection → programming flow without a board.
package main

import (
	"context"
	"fmt"
	"time"

	"smb235x-go/bus"
	"smb235x-go/drivers/smb235x"
	"smb235x-go/errcode"
	"smb235x-go/psy"
	"smb235x-go/regmap"
	"smb235x-go/services/charger"
	"smb235x-go/types"
)

const stepDelay = 200 * time.Millisecond

// fakeSupply is a map-backed power supply peer.
type fakeSupply struct {
	name  string
	props map[psy.Property]int
}

func (f *fakeSupply) Name() string { return f.name }

func (f *fakeSupply) GetProp(p psy.Property) (psy.Value, error) {
	v, ok := f.props[p]
	if !ok {
		return psy.Value{}, errcode.NoData
	}
	return psy.IntVal(v), nil
}

func (f *fakeSupply) SetProp(p psy.Property, v psy.Value) error {
	f.props[p] = v.Int
	return nil
}

func (f *fakeSupply) Writeable(psy.Property) bool { return true }

func selfClearing(mask uint8) func(uint8) (uint8, error) {
	return func(val uint8) (uint8, error) { return val &^ mask, nil }
}

func seedHardware(mem *regmap.Mem) {
	// Idle: cable out, APSD not run, battery present and full-on capable.
	mem.Load(smb235x.RegUsbHvdcpPulseCntMax, 20)
	mem.Load(smb235x.RegBatteryChargerStatus1, smb235x.FullonCharge)

	// Command bits the hardware consumes and clears on its own.
	mem.OnWrite[smb235x.RegUsbCmdApsd] = selfClearing(smb235x.ApsdRerunBit)
	mem.OnWrite[smb235x.RegUsbCmdHvdcp2] = selfClearing(smb235x.SingleIncrementBit | smb235x.SingleDecrementBit)
	mem.OnWrite[smb235x.RegMiscBarkBiteWdgPet] = selfClearing(smb235x.BarkBiteWdogPetBit)
	mem.OnWrite[smb235x.RegStepChgSocVbattVUpd] = selfClearing(smb235x.StepSocVbattVUpdateBit)
}

func plugIn(mem *regmap.Mem, apsdResult uint8) {
	mem.Load(smb235x.RegUsbIntRtSts, smb235x.UsbinPluginRtStsBit)
	mem.Load(smb235x.RegPowerPathStatus, smb235x.UseUsbinBit|smb235x.ValidInputPowerSourceStsBit)
	mem.Load(smb235x.RegUsbApsdStatus, smb235x.ApsdDtcStatusDoneBit)
	mem.Load(smb235x.RegUsbApsdResultStatus, apsdResult)
}

func unplug(mem *regmap.Mem) {
	mem.Load(smb235x.RegUsbIntRtSts, 0)
	mem.Load(smb235x.RegPowerPathStatus, 0)
	mem.Load(smb235x.RegUsbApsdStatus, 0)
	mem.Load(smb235x.RegUsbApsdResultStatus, 0)
}

func fireIRQ(conn *bus.Connection, name string) {
	conn.Publish(&bus.Message{Topic: bus.T("irq", "charger", name)})
	time.Sleep(stepDelay)
}

func dump(registry *psy.Registry, name string, props []psy.Property) {
	s, err := registry.ByName(name)
	if err != nil {
		fmt.Println(name, "not registered:", err.Error())
		return
	}
	fmt.Println("--", name, "--")
	for _, p := range props {
		v, err := s.GetProp(p)
		if err != nil {
			fmt.Printf("  %-28s <%s>\n", p.String(), err.Error())
			continue
		}
		fmt.Printf("  %-28s %d\n", p.String(), v.Int)
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(16)
	registry := psy.NewRegistry(b.NewConnection("psy"))

	mem := regmap.NewMem()
	seedHardware(mem)

	registry.Register(&fakeSupply{name: "bms", props: map[psy.Property]int{
		psy.PropCapacity:   77,
		psy.PropTemp:       250,
		psy.PropVoltageNow: 8_150_000,
		psy.PropCurrentNow: 1_200_000,
	}})
	registry.Register(&fakeSupply{name: "tcpm-source-psy-port0", props: map[psy.Property]int{
		psy.PropUsbType: int(types.UsbC),
	}})

	svc := charger.NewService(mem, registry)
	if err := svc.Start(ctx, b.NewConnection("charger")); err != nil {
		fmt.Println("charger service failed to start:", err.Error())
		return
	}

	sim := b.NewConnection("sim")
	sim.Publish(&bus.Message{
		Topic: bus.T("config", "charger"),
		Payload: map[string]any{
			"fv-max-uv":                float64(8_800_000),
			"fcc-max-ua":               float64(3_250_000),
			"chg-inhibit-threshold-mv": float64(200),
			"tcpm-psy-name":            "port0",
		},
		Retained: true,
	})
	time.Sleep(stepDelay)

	usbProps := []psy.Property{
		psy.PropPresent, psy.PropOnline, psy.PropCurrentMax,
		psy.PropVoltageNow, psy.PropRealType, psy.PropUsbType,
	}
	battProps := []psy.Property{
		psy.PropPresent, psy.PropStatus, psy.PropChargeType,
		psy.PropHealth, psy.PropCapacity, psy.PropVoltageMax,
	}

	fmt.Println("== idle ==")
	dump(registry, "usb", usbProps)
	dump(registry, "battery", battProps)

	fmt.Println("== plug in a DCP charger ==")
	plugIn(mem, smb235x.DcpChargerBit)
	fireIRQ(sim, "usbin-plugin")
	fireIRQ(sim, "usbin-src-change")
	dump(registry, "usb", usbProps)
	dump(registry, "battery", battProps)

	fmt.Println("== swap for a QC3 adapter ==")
	unplug(mem)
	fireIRQ(sim, "usbin-plugin")
	plugIn(mem, smb235x.DcpChargerBit|smb235x.Qc3p0Bit)
	fireIRQ(sim, "usbin-plugin")
	fireIRQ(sim, "usbin-src-change")
	dump(registry, "usb", usbProps)

	fmt.Println("== step the QC3 adapter down to 5.4V ==")
	if usb, err := registry.ByName("usb"); err == nil {
		if err := usb.SetProp(psy.PropVoltageNow, psy.IntVal(5_400_000)); err != nil {
			fmt.Println("set voltage failed:", err.Error())
		}
	}
	dump(registry, "usb", usbProps)

	fmt.Println("== watchdog bark ==")
	fireIRQ(sim, "wdog-bark")

	fmt.Println("== unplug ==")
	unplug(mem)
	fireIRQ(sim, "usbin-plugin")
	dump(registry, "usb", usbProps)
	dump(registry, "battery", battProps)

	cancel()
	time.Sleep(stepDelay)
}
