package keytable

import "testing"

func TestNewRoundsCapacityToPowerOfTwo(t *testing.T) {
	tab := New(10)
	if len(tab.slots) != 16 {
		t.Fatalf("expected capacity rounded to 16, got %d", len(tab.slots))
	}
}

func TestAddAssignsPendingState(t *testing.T) {
	tab := New(4)
	idx, ok := tab.Add(1, 60, 0.8, 0)
	if !ok {
		t.Fatal("expected Add to succeed")
	}
	slot, used := tab.Slot(idx)
	if !used {
		t.Fatal("expected slot to be in use")
	}
	if slot.VoiceState != Pending {
		t.Fatalf("expected new slot Pending, got %v", slot.VoiceState)
	}
	if slot.CreatorID != 1 || slot.Note != 60 {
		t.Fatalf("unexpected slot contents: %+v", slot)
	}
}

func TestAddFullTableFails(t *testing.T) {
	tab := New(2)
	for i := 0; i < 2; i++ {
		if _, ok := tab.Add(i, float64(60+i), 1.0, 0); !ok {
			t.Fatalf("expected slot %d to be added", i)
		}
	}
	if _, ok := tab.Add(99, 70, 1.0, 0); ok {
		t.Fatal("expected table full to reject further Add")
	}
}

func TestFindByCreatorIDAndNote(t *testing.T) {
	tab := New(4)
	idx, _ := tab.Add(5, 64, 0.5, 0)

	got, ok := tab.FindByCreatorID(5)
	if !ok || got != idx {
		t.Fatalf("expected FindByCreatorID to find slot %d, got %d ok=%v", idx, got, ok)
	}
	got, ok = tab.FindByNote(64)
	if !ok || got != idx {
		t.Fatalf("expected FindByNote to find slot %d, got %d ok=%v", idx, got, ok)
	}
	if _, ok := tab.FindByNote(65); ok {
		t.Fatal("expected FindByNote to miss on absent note")
	}
}

func TestClearByCreatorIDFreesSlot(t *testing.T) {
	tab := New(4)
	idx, _ := tab.Add(7, 62, 1.0, 0)
	tab.ClearByCreatorID(7)
	if _, used := tab.Slot(idx); used {
		t.Fatal("expected slot to be freed")
	}
	if _, ok := tab.FindByCreatorID(7); ok {
		t.Fatal("expected creator ID to be gone after clear")
	}
}

func TestFreeSlotReused(t *testing.T) {
	tab := New(2)
	idxA, _ := tab.Add(1, 60, 1.0, 0)
	tab.Add(2, 61, 1.0, 0)
	tab.Free(idxA)

	idxC, ok := tab.Add(3, 62, 1.0, 0)
	if !ok {
		t.Fatal("expected reused slot to accept new Add")
	}
	if idxC != idxA {
		t.Fatalf("expected rotating scan to reuse freed slot %d, got %d", idxA, idxC)
	}
}

func TestHasLiveKeyTracksVoiceState(t *testing.T) {
	tab := New(4)
	idx, _ := tab.Add(1, 60, 1.0, 0)
	if tab.HasLiveKey(3) {
		t.Fatal("expected no live key for voice 3 yet")
	}
	tab.SetVoiceState(idx, State(3))
	if !tab.HasLiveKey(3) {
		t.Fatal("expected live key for voice 3 after SetVoiceState")
	}
}

func TestMostRecentPendingPicksLargestStartOrder(t *testing.T) {
	tab := New(4)
	idxA, _ := tab.Add(1, 60, 1.0, 0)
	idxB, _ := tab.Add(2, 61, 1.0, 0)
	idxC, _ := tab.Add(3, 62, 1.0, 0)

	// mark C as sounding; A and B stay pending, and B was added after A
	tab.SetVoiceState(idxA, Pending)
	tab.SetVoiceState(idxC, State(1))

	best, ok := tab.MostRecentPending()
	if !ok || best != idxB {
		t.Fatalf("expected most recent pending to be %d, got %d ok=%v", idxB, best, ok)
	}
}

func TestMostRecentPendingNoneWhenEmpty(t *testing.T) {
	tab := New(4)
	if _, ok := tab.MostRecentPending(); ok {
		t.Fatal("expected no pending slot in an empty table")
	}
}

func TestResetClearsAllSlots(t *testing.T) {
	tab := New(4)
	tab.Add(1, 60, 1.0, 0)
	tab.Add(2, 61, 1.0, 0)
	tab.Reset()
	if _, ok := tab.FindByCreatorID(1); ok {
		t.Fatal("expected Reset to clear slot 1")
	}
	if _, ok := tab.FindByCreatorID(2); ok {
		t.Fatal("expected Reset to clear slot 2")
	}
}
