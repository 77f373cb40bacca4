package x11

import "sync"

// crossings filters pointer-entry events caused by the window manager's own
// map, unmap and configure requests. Windows that slide under a still
// pointer would otherwise steal focus under focus-follows-mouse.
//
// A batch opens with begin; while any batch is open every crossing is
// dropped. end records the sequence number of a round trip issued after the
// batch, and crossings the server generated before that request are dropped
// too since they reached the read loop late.
type crossings struct {
	mu      sync.Mutex
	pending int
	barrier uint16
	armed   bool
}

func (f *crossings) begin() {
	f.mu.Lock()
	f.pending++
	f.mu.Unlock()
}

// end closes a batch. ok is false when the round trip failed and seq is
// meaningless.
func (f *crossings) end(seq uint16, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending > 0 {
		f.pending--
	}
	if ok {
		f.barrier = seq
		f.armed = true
	}
}

// drop reports whether a crossing with sequence number seq is an echo of
// the window manager's requests.
func (f *crossings) drop(seq uint16) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending > 0 {
		return true
	}
	return f.armed && seqBefore(seq, f.barrier)
}

// seqBefore compares 16-bit X sequence numbers, allowing for wrap-around.
func seqBefore(a, b uint16) bool {
	return int16(a-b) < 0
}
