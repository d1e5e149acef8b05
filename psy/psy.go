// Package psy models the "power supply" property surface: enumerated
// properties, a Supply interface over get/set/is-writeable, and a name-keyed
// registry with change notifications on the bus. The charger core both
// publishes supplies here ("usb", "battery") and consumes peers ("bms", the
// tcpm source supply).
package psy

import (
	"sync"

	"smb235x-go/bus"
	"smb235x-go/errcode"
)

// Property identifies one queryable/settable value on a Supply.
type Property int

const (
	PropPresent Property = iota
	PropOnline
	PropStatus
	PropChargeType
	PropHealth
	PropTemp
	PropVoltageMax
	PropVoltageNow
	PropCurrentMax
	PropCurrentNow
	PropConstantChargeCurrentMax
	PropConstantChargeVoltageMax
	PropCapacity
	PropChargeTermCurrent
	PropSDPCurrentMax
	PropRealType
	PropUsbType
)

func (p Property) String() string {
	switch p {
	case PropPresent:
		return "present"
	case PropOnline:
		return "online"
	case PropStatus:
		return "status"
	case PropChargeType:
		return "charge_type"
	case PropHealth:
		return "health"
	case PropTemp:
		return "temp"
	case PropVoltageMax:
		return "voltage_max"
	case PropVoltageNow:
		return "voltage_now"
	case PropCurrentMax:
		return "current_max"
	case PropCurrentNow:
		return "current_now"
	case PropConstantChargeCurrentMax:
		return "constant_charge_current_max"
	case PropConstantChargeVoltageMax:
		return "constant_charge_voltage_max"
	case PropCapacity:
		return "capacity"
	case PropChargeTermCurrent:
		return "charge_term_current"
	case PropSDPCurrentMax:
		return "sdp_current_max"
	case PropRealType:
		return "real_type"
	case PropUsbType:
		return "usb_type"
	default:
		return "unknown"
	}
}

// Value carries one property value. All values are integers: µA, µV,
// deci-°C, percent, bool as 0/1, or an enum ordinal.
type Value struct {
	Int int
}

func IntVal(v int) Value { return Value{Int: v} }
func BoolVal(b bool) Value {
	if b {
		return Value{Int: 1}
	}
	return Value{Int: 0}
}

// Supply is a named property set.
type Supply interface {
	Name() string
	GetProp(p Property) (Value, error)
	SetProp(p Property, v Value) error
	Writeable(p Property) bool
}

// Registry maps supply names to supplies and publishes change notifications.
// Absent peers are a normal state: ByName returns errcode.PeerUnavailable.
type Registry struct {
	mu       sync.RWMutex
	supplies map[string]Supply
	conn     *bus.Connection
}

// NewRegistry creates a registry; conn may be nil when no notification fabric
// is wired (tests).
func NewRegistry(conn *bus.Connection) *Registry {
	return &Registry{supplies: make(map[string]Supply), conn: conn}
}

func (r *Registry) Register(s Supply) {
	r.mu.Lock()
	r.supplies[s.Name()] = s
	r.mu.Unlock()
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.supplies, name)
	r.mu.Unlock()
}

func (r *Registry) ByName(name string) (Supply, error) {
	r.mu.RLock()
	s, ok := r.supplies[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errcode.PeerUnavailable
	}
	return s, nil
}

// ChangedTopic is where a supply's change notifications are published.
func ChangedTopic(name string) bus.Topic { return bus.T("psy", name, "changed") }

// Changed announces that the named supply's properties may have new values.
func (r *Registry) Changed(name string) {
	if r.conn == nil {
		return
	}
	r.conn.Publish(&bus.Message{Topic: ChangedTopic(name)})
}
