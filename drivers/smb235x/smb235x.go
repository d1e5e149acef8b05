package smb235x

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"smb235x-go/bus"
	"smb235x-go/psy"
	"smb235x-go/regmap"
	"smb235x-go/types"
)

const (
	floatVoltageBaseMV = 7200
	floatVoltageStepMV = 20
	currentStepMA      = 50
	microToMilli       = 1000

	cdpCurrentUA   = 1_500_000
	dcpCurrentUA   = 1_500_000
	hvdcpCurrentUA = 3_000_000
	sdp500UA       = 500_000

	baseVoltageUV       = 5_000_000
	qc3DefaultVoltageUV = 9_000_000
	qc3VoltageStepUV    = 200_000
	voltageForce5VUV    = 5_000_000
	voltageForce9VUV    = 9_000_000
	voltageForce12VUV   = 12_000_000

	updatePeriod     = 10 * time.Second
	firstUpdateDelay = 20 * time.Millisecond

	usbSupplyName  = "usb"
	battSupplyName = "battery"
	bmsSupplyName  = "bms"
	tcpmNamePrefix = "tcpm-source-psy-"
)

// Chip is the single owned instance of the charge-control state. All
// components operate on it; nothing here is ambient or global.
type Chip struct {
	rm       regmap.Regmap
	registry *psy.Registry
	conn     *bus.Connection // may be nil: no notification fabric wired

	tcpmFullName string

	// Lazily resolved peers: lookup retried until it first succeeds, then
	// cached for the process lifetime.
	peersMu sync.Mutex
	bms     psy.Supply
	tcpm    psy.Supply

	// Detection results and configuration targets. Handlers and the
	// reconciler are the writers; property getters read concurrently.
	mu                     sync.Mutex
	chargerType            types.ChargerType
	usbType                types.UsbType
	pdActive               bool
	trickleChargeCurrentUA int
	preChargeCurrentUA     int
	maxPreChargeCurrentUA  int
	terminationCurrentUA   int
	floatVoltUV            int
	fastchgCurrUA          int
	maxFccUA               int
	sdpIclUA               int
	params                 types.ChargerParams

	// HVDCP3 voltage group. The lock also serializes the pulse train.
	hvdcpMu             sync.Mutex
	hvdcp3VoltageUV     int
	basedHvdcpVoltageUV int
	hvdcpPulseCountMax  int

	// Debounced "recompute ICL from tcpm": at most one outstanding.
	statusPending atomic.Bool
	statusCh      chan struct{}

	// Handler invocation is serialized, as the interrupt-dispatch model
	// guarantees on the real platform.
	dispatchMu sync.Mutex
	accepting  atomic.Bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a chip over the given register transport. conn may be nil when
// no bus is wired (tests); change notifications then go nowhere.
func New(rm regmap.Regmap, registry *psy.Registry, conn *bus.Connection, params types.ChargerParams) *Chip {
	c := &Chip{
		rm:           rm,
		registry:     registry,
		conn:         conn,
		tcpmFullName: tcpmNamePrefix + params.TcpmName,
		params:       params,
		statusCh:     make(chan struct{}, 1),
	}
	c.trickleChargeCurrentUA = params.TrickleChargeCurrentUA
	c.preChargeCurrentUA = params.PreChargeCurrentUA
	c.maxPreChargeCurrentUA = params.MaxPreChargeCurrentUA
	c.terminationCurrentUA = params.TerminationCurrentUA
	c.floatVoltUV = params.FloatVoltageUV
	c.fastchgCurrUA = params.FastChargeCurrentUA
	c.maxFccUA = params.MaxFastChargeCurrentUA
	return c
}

// Configure runs the one-shot hardware initialization sequence. The first
// failed register transaction aborts: the core refuses to come up
// mis-configured.
func (c *Chip) Configure() error {
	if err := c.configChgCurrentVoltage(); err != nil {
		return err
	}
	if err := c.enableAPSD(); err != nil {
		return err
	}
	if err := c.configAicl(); err != nil {
		return err
	}
	if err := c.enableWatchdog(); err != nil {
		return err
	}
	if err := c.configChargeTermination(); err != nil {
		return err
	}
	if err := c.configRecharge(); err != nil {
		return err
	}
	if err := c.configFloatCharge(); err != nil {
		return err
	}
	if err := c.configInhibit(); err != nil {
		return err
	}
	return c.enableCharge(true)
}

// Start registers the usb/battery supplies, kicks the initial status pass and
// launches the background loops. ctx cancellation is one of the two shutdown
// paths; Close is the other.
func (c *Chip) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.registry.Register(&usbSupply{c: c})
	c.registry.Register(&battSupply{c: c})

	c.accepting.Store(true)

	// Initial status: classify whatever is already attached and run the
	// source-change policy once, as if the IRQ had just fired.
	if err := c.getChgType(); err != nil {
		println("Error: initial charger type detection failed:", err.Error())
	}
	c.HandleIRQ(IRQUsbinSrcChange)

	c.wg.Add(1)
	go c.updateLoop(ctx)

	if c.conn != nil {
		c.wg.Add(1)
		go c.tcpmNotifierLoop(ctx)
	}
}

// Close disables event delivery, stops and joins the background loops, then
// releases peer references.
func (c *Chip) Close() {
	c.accepting.Store(false)
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	c.registry.Unregister(usbSupplyName)
	c.registry.Unregister(battSupplyName)

	c.peersMu.Lock()
	c.bms = nil
	c.tcpm = nil
	c.peersMu.Unlock()
}

// fromBMS resolves the fuel-gauge peer on first use and proxies a property
// read. Peer absence is a normal state, not an error escalation.
func (c *Chip) fromBMS(p psy.Property) (psy.Value, error) {
	s, err := c.peer(&c.bms, bmsSupplyName)
	if err != nil {
		return psy.Value{}, err
	}
	return s.GetProp(p)
}

func (c *Chip) fromTCPM(p psy.Property) (psy.Value, error) {
	s, err := c.peer(&c.tcpm, c.tcpmFullName)
	if err != nil {
		return psy.Value{}, err
	}
	return s.GetProp(p)
}

func (c *Chip) peer(slot *psy.Supply, name string) (psy.Supply, error) {
	c.peersMu.Lock()
	defer c.peersMu.Unlock()
	if *slot == nil {
		s, err := c.registry.ByName(name)
		if err != nil {
			return nil, err
		}
		*slot = s
	}
	return *slot, nil
}

func (c *Chip) usbChanged()  { c.registry.Changed(usbSupplyName) }
func (c *Chip) battChanged() { c.registry.Changed(battSupplyName) }
