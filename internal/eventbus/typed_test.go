package eventbus

import (
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type progress struct {
	Nodes int64
}

func TestTypedBusPublishSubscribe(t *testing.T) {
	bus := NewTyped[progress]()
	ch := bus.Subscribe()
	bus.Publish(progress{Nodes: 42})
	v := <-ch
	if v.Nodes != 42 {
		t.Fatalf("expected 42 nodes got %d", v.Nodes)
	}
	bus.Unsubscribe(ch)
	if n := bus.Subscribers(); n != 0 {
		t.Fatalf("expected no subscribers got %d", n)
	}
}

func TestTypedBusDropsWhenFull(t *testing.T) {
	bus := NewTyped[int]()
	ch := bus.SubscribeBuffered(2)
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	bus.Close()
	var got []int
	for v := range ch {
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("expected [0 1] got %v", got)
	}
}

func TestTypedBusConcurrentConsumer(t *testing.T) {
	bus := NewTyped[int]()
	ch := bus.SubscribeBuffered(100)
	var wg sync.WaitGroup
	wg.Add(1)
	sum := 0
	go func() {
		defer wg.Done()
		for v := range ch {
			sum += v
		}
	}()
	for i := 1; i <= 10; i++ {
		bus.Publish(i)
	}
	bus.Close()
	wg.Wait()
	if sum != 55 {
		t.Fatalf("expected 55 got %d", sum)
	}
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("expected subscription after close to be closed")
	}
	bus.Publish(1)
}

func TestTypedBusUnsubscribeAfterClose(t *testing.T) {
	bus := NewTyped[float64]()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
