package metrics

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/maps"
)

// TimeBuckets maps bucket start times to counts for one operation.
type TimeBuckets map[time.Time]int

// Ops tallies history operations (commits, undos, redos, clears) into
// per-second buckets, discarding buckets older than the retention period.
type Ops struct {
	startTime          time.Time
	retentionSeconds   int
	measurements       chan measurement
	retentionThreshold time.Time
	ingestionMap       map[time.Time]opBuckets
	historicalData     map[string]TimeBuckets
	closed             chan struct{}
	mu                 sync.Mutex
}

type opBuckets map[string]int

type measurement struct {
	op     string
	value  int
	second time.Time
}

func NewOps(retentionSeconds int) *Ops {
	o := &Ops{
		startTime:        time.Now().Round(time.Second),
		retentionSeconds: retentionSeconds,
		// Large buffer to absorb writes while the run loop is busy indexing.
		measurements:   make(chan measurement, 100000),
		ingestionMap:   map[time.Time]opBuckets{},
		historicalData: map[string]TimeBuckets{},
		closed:         make(chan struct{}),
	}

	go o.run()

	return o
}

// Record counts n occurrences of op against the current second.
func (o *Ops) Record(op string, n int) {
	m := measurement{
		op:    op,
		value: n,
		// Round() clusters measurements around the nearest second boundary
		// rather than the second they occurred in; close enough for counts.
		second: time.Now().Round(time.Second),
	}

	start := time.Now()

	select {
	case o.measurements <- m:
		return
	default:
	}

	o.measurements <- m
	blockedFor := time.Since(start)
	fmt.Printf("warn: Ops#Record blocked for %v\n", blockedFor)
}

// Data returns a copy of the retained counts per operation, zero-filled for
// seconds within the retention period that saw no activity.
func (o *Ops) Data() map[string]TimeBuckets {
	data := func() map[string]TimeBuckets {
		o.mu.Lock()
		defer o.mu.Unlock()
		data := make(map[string]TimeBuckets, len(o.historicalData))
		for op, buckets := range o.historicalData {
			tb := make(TimeBuckets, len(buckets))
			for second, count := range buckets {
				tb[second] = count
			}
			data[op] = tb
		}
		return data
	}()

	now := time.Now()
	earliest := o.retentionThreshold
	if o.startTime.After(earliest) {
		earliest = o.startTime
	}
	for t := earliest.Round(time.Second); t.Before(now); t = t.Add(time.Second) {
		for op := range data {
			if _, ok := data[op][t]; !ok {
				data[op][t] = 0
			}
		}
	}

	return data
}

func (o *Ops) Close() {
	defer close(o.measurements)
	defer close(o.closed)
	o.closed <- struct{}{}
}

func (o *Ops) updateRetentionThreshold() {
	o.retentionThreshold = time.Now().Add(-time.Duration(o.retentionSeconds) * time.Second)
}

func (o *Ops) run() {

	o.updateRetentionThreshold()

	onTick := func() {
		o.updateRetentionThreshold()
		o.mu.Lock()
		defer o.mu.Unlock()
		o.indexMeasurements()
		o.expireOldData()
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		// Ingestion, indexing/expiry, and closure all touch the same maps, so
		// they are serialized through this loop. The second select keeps a
		// burst of buffered measurements from starving the tick and close
		// signals: after each ingest they get one non-blocking chance.

		select {
		case m := <-o.measurements:
			o.ingestMeasurement(m)
		case <-ticker.C:
			onTick()
		case <-o.closed:
			return
		}

		select {
		case <-ticker.C:
			onTick()
		case <-o.closed:
			return
		default:
		}
	}
}

func (o *Ops) ingestMeasurement(m measurement) {
	// A measurement already past retention isn't worth indexing.
	if m.second.Before(o.retentionThreshold) {
		return
	}

	counts, ok := o.ingestionMap[m.second]
	if !ok {
		counts = opBuckets{}
		o.ingestionMap[m.second] = counts
	}
	counts[m.op] += m.value
}

func (o *Ops) indexMeasurements() {
	for second, counts := range o.ingestionMap {
		for op, count := range counts {
			buckets, ok := o.historicalData[op]
			if !ok {
				buckets = TimeBuckets{}
				o.historicalData[op] = buckets
			}
			buckets[second] += count
			// Zero the ingest count so the same measurements aren't
			// re-indexed on the next tick.
			counts[op] = 0
		}
	}
}

func (o *Ops) expireOldData() {
	for _, buckets := range o.historicalData {
		for _, second := range maps.Keys(buckets) {
			if second.After(o.retentionThreshold) {
				continue
			}
			delete(buckets, second)
		}
	}
	for second := range o.ingestionMap {
		if second.After(o.retentionThreshold) {
			continue
		}
		delete(o.ingestionMap, second)
	}
}
