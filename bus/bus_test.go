package bus

import (
	"testing"
	"time"
)

func recvOne(t *testing.T, sub *Subscription) *Message {
	t.Helper()
	select {
	case msg := <-sub.Channel():
		return msg
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func TestPublishSubscribe(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("t")
	sub := conn.Subscribe(T("psy", "usb", "changed"))
	defer conn.Unsubscribe(sub)

	conn.Publish(&Message{Topic: T("psy", "usb", "changed"), Payload: 1})
	msg := recvOne(t, sub)
	if msg.Payload != 1 {
		t.Fatalf("payload = %v", msg.Payload)
	}

	// Non-matching topic is not delivered.
	conn.Publish(&Message{Topic: T("psy", "battery", "changed")})
	select {
	case msg := <-sub.Channel():
		t.Fatalf("unexpected delivery: %v", msg.Topic)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestWildcardMatchesSingleLevel(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("t")
	sub := conn.Subscribe(T("irq", "charger", "+"))
	defer conn.Unsubscribe(sub)

	conn.Publish(&Message{Topic: T("irq", "charger", "usbin-plugin")})
	msg := recvOne(t, sub)
	if msg.Topic[2] != "usbin-plugin" {
		t.Fatalf("topic = %v", msg.Topic)
	}

	// The wildcard spans exactly one level.
	conn.Publish(&Message{Topic: T("irq", "charger")})
	conn.Publish(&Message{Topic: T("irq", "charger", "a", "b")})
	select {
	case msg := <-sub.Channel():
		t.Fatalf("unexpected delivery: %v", msg.Topic)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRetainedReplaysToLateSubscriber(t *testing.T) {
	b := NewBus(4)
	pub := b.NewConnection("pub")
	pub.Publish(&Message{Topic: T("config", "charger"), Payload: "cfg", Retained: true})

	sub := b.NewConnection("sub").Subscribe(T("config", "charger"))
	defer sub.Unsubscribe()

	msg := recvOne(t, sub)
	if msg.Payload != "cfg" {
		t.Fatalf("payload = %v", msg.Payload)
	}
}

func TestRetainedClearedByNilPayload(t *testing.T) {
	b := NewBus(4)
	pub := b.NewConnection("pub")
	pub.Publish(&Message{Topic: T("config", "charger"), Payload: "cfg", Retained: true})
	pub.Publish(&Message{Topic: T("config", "charger"), Payload: nil, Retained: true})

	sub := b.NewConnection("sub").Subscribe(T("config", "charger"))
	defer sub.Unsubscribe()

	select {
	case msg := <-sub.Channel():
		t.Fatalf("unexpected replay: %v", msg.Payload)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("t")
	sub := conn.Subscribe(T("a"))
	conn.Unsubscribe(sub)

	conn.Publish(&Message{Topic: T("a")})
	if _, ok := <-sub.Channel(); ok {
		t.Fatal("message delivered after unsubscribe")
	}
}

func TestDisconnectClosesAllSubscriptions(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("t")
	s1 := conn.Subscribe(T("a"))
	s2 := conn.Subscribe(T("b"))
	conn.Disconnect()

	if _, ok := <-s1.Channel(); ok {
		t.Fatal("s1 still open")
	}
	if _, ok := <-s2.Channel(); ok {
		t.Fatal("s2 still open")
	}
}

func TestFullQueueDropsOldest(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("t")
	sub := conn.Subscribe(T("a"))
	defer conn.Unsubscribe(sub)

	for i := 0; i < 4; i++ {
		conn.Publish(&Message{Topic: T("a"), Payload: i})
	}

	first := recvOne(t, sub)
	if first.Payload == 0 {
		t.Fatal("oldest message survived a full queue")
	}
}
