package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/kilianp07/rcpspoc/core/bnb"
	coremetrics "github.com/kilianp07/rcpspoc/core/metrics"
	"github.com/kilianp07/rcpspoc/internal/eventbus"
)

// collectorBuffer bounds the events queued for a slow sink.
const collectorBuffer = 64

// StartEventCollector subscribes to the solver event bus and forwards
// progress and incumbent events to sinks implementing ProgressRecorder.
// The returned WaitGroup is done once the collector stopped, which happens
// when ctx is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[bnb.Event], sink coremetrics.MetricsSink) *sync.WaitGroup {
	var wg sync.WaitGroup
	rec, ok := sink.(coremetrics.ProgressRecorder)
	if bus == nil || !ok {
		return &wg
	}
	sub := bus.SubscribeBuffered(collectorBuffer)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if ev.Kind == bnb.EventDone {
					continue
				}
				_ = rec.RecordProgress(coremetrics.ProgressEvent{
					RunID:     ev.RunID,
					Instance:  ev.Instance,
					Nodes:     ev.Nodes,
					Bounded:   ev.Bounded,
					Incumbent: ev.Profit,
					Elapsed:   ev.Elapsed,
					Time:      time.Now(),
				})
			}
		}
	}()
	return &wg
}
