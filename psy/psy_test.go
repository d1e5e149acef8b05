package psy

import (
	"testing"
	"time"

	"smb235x-go/bus"
	"smb235x-go/errcode"
)

type stubSupply struct {
	name string
	val  int
}

func (s *stubSupply) Name() string                  { return s.name }
func (s *stubSupply) GetProp(Property) (Value, error) { return IntVal(s.val), nil }
func (s *stubSupply) SetProp(Property, Value) error   { return nil }
func (s *stubSupply) Writeable(Property) bool         { return false }

func TestRegistry_ByName(t *testing.T) {
	r := NewRegistry(nil)

	if _, err := r.ByName("bms"); !errcode.Is(err, errcode.PeerUnavailable) {
		t.Fatalf("err = %v, want peer_unavailable", err)
	}

	r.Register(&stubSupply{name: "bms", val: 55})
	s, err := r.ByName("bms")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if v, _ := s.GetProp(PropCapacity); v.Int != 55 {
		t.Fatalf("capacity = %d, want 55", v.Int)
	}

	r.Unregister("bms")
	if _, err := r.ByName("bms"); !errcode.Is(err, errcode.PeerUnavailable) {
		t.Fatalf("err after unregister = %v, want peer_unavailable", err)
	}
}

func TestRegistry_ChangedPublishes(t *testing.T) {
	b := bus.NewBus(4)
	r := NewRegistry(b.NewConnection("psy"))

	sub := b.NewConnection("watch").Subscribe(ChangedTopic("usb"))
	defer sub.Unsubscribe()

	r.Changed("usb")
	select {
	case <-sub.Channel():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for change notification")
	}
}

func TestRegistry_ChangedWithoutBusIsNoop(t *testing.T) {
	r := NewRegistry(nil)
	r.Changed("usb") // must not panic
}
