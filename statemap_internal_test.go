package u6fs

import "testing"

func TestStateMapRoundTrip(t *testing.T) {
	m := newStateMap(40)
	m.set(1, DState)
	m.set(2, FState)
	m.set(39, CState)

	if got := m.get(1); got != DState {
		t.Fatalf("get(1) = %d, want DState", got)
	}
	if got := m.get(2); got != FState {
		t.Fatalf("get(2) = %d, want FState", got)
	}
	if got := m.get(39); got != CState {
		t.Fatalf("get(39) = %d, want CState", got)
	}
	if got := m.get(3); got != UState {
		t.Fatalf("get(3) (untouched) = %d, want UState", got)
	}
}

func TestDupTablePartitioning(t *testing.T) {
	d := newDupTable()
	d.add(10)
	if d.multi != 1 || d.end != 1 {
		t.Fatalf("after first add: multi=%d end=%d, want 1/1", d.multi, d.end)
	}
	d.add(10) // block already in the prefix: another copy goes to the suffix
	if d.multi != 1 || d.end != 2 {
		t.Fatalf("after second add of same block: multi=%d end=%d, want 1/2", d.multi, d.end)
	}
	d.add(20)
	if d.multi != 2 {
		t.Fatalf("after add of new block: multi=%d, want 2", d.multi)
	}

	prefix := d.prefix()
	if len(prefix) != 2 {
		t.Fatalf("prefix len = %d, want 2", len(prefix))
	}
}

func TestDupTableFull(t *testing.T) {
	d := newDupTable()
	for i := 0; i < dupListSize; i++ {
		if !d.add(uint16(i + 1000)) {
			t.Fatalf("add #%d unexpectedly rejected before table full", i)
		}
	}
	if !d.full() {
		t.Fatalf("table should report full after %d distinct adds", dupListSize)
	}
	if d.add(9999) {
		t.Fatalf("add on full table should fail")
	}
}

func TestLinkCountMap(t *testing.T) {
	m := newLinkCountMap(10)
	m.set(5, 3)
	m.dec(5)
	m.dec(5)
	if got := m.get(5); got != 1 {
		t.Fatalf("get(5) after two decrements = %d, want 1", got)
	}
	m.inc(5)
	if got := m.get(5); got != 2 {
		t.Fatalf("get(5) after increment = %d, want 2", got)
	}
}

func TestBlockBitmap(t *testing.T) {
	b := newBlockBitmap(16)
	if b.isBusy(5) {
		t.Fatalf("fresh bitmap reports block 5 busy")
	}
	b.markBusy(5)
	if !b.isBusy(5) {
		t.Fatalf("markBusy(5) did not take effect")
	}
	clone := b.clone()
	b.markFree(5)
	if b.isBusy(5) {
		t.Fatalf("markFree(5) did not take effect on original")
	}
	if !clone.isBusy(5) {
		t.Fatalf("clone should be unaffected by markFree on the original")
	}
}
