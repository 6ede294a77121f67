package services

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestDaySlots_Grid(t *testing.T) {
	clock := fixedClock(date(2026, time.March, 1, 12, 0))
	slots := DaySlots(date(2026, time.March, 15, 0, 0), clock)

	if len(slots) != 27 {
		t.Fatalf("Expected 27 slots, got %d", len(slots))
	}

	if slots[0].Label != "08:00" {
		t.Errorf("Expected first slot 08:00, got %s", slots[0].Label)
	}
	if slots[len(slots)-1].Label != "21:00" {
		t.Errorf("Expected last slot 21:00, got %s", slots[len(slots)-1].Label)
	}
	if slots[1].Label != "08:30" {
		t.Errorf("Expected second slot 08:30, got %s", slots[1].Label)
	}
}

func TestDaySlots_FutureDateNeverDisabled(t *testing.T) {
	clock := fixedClock(date(2026, time.March, 1, 20, 45))
	slots := DaySlots(date(2026, time.March, 2, 0, 0), clock)

	for _, slot := range slots {
		if slot.Disabled {
			t.Errorf("Expected slot %s on a future date to be enabled", slot.Label)
		}
	}
}

func TestDaySlots_PastDateNeverDisabled(t *testing.T) {
	// disabling only applies to "today"; past dates are the caller's problem
	clock := fixedClock(date(2026, time.March, 10, 12, 0))
	slots := DaySlots(date(2026, time.March, 1, 0, 0), clock)

	for _, slot := range slots {
		if slot.Disabled {
			t.Errorf("Expected slot %s on another date to be enabled", slot.Label)
		}
	}
}

func TestDaySlots_TodayDisablesPassedSlots(t *testing.T) {
	// 14:10: everything up to and including 14:00 has passed
	clock := fixedClock(date(2026, time.March, 1, 14, 10))
	slots := DaySlots(date(2026, time.March, 1, 0, 0), clock)

	for _, slot := range slots {
		passed := slot.Label <= "14:00"
		if slot.Disabled != passed {
			t.Errorf("Slot %s: expected disabled=%v, got %v", slot.Label, passed, slot.Disabled)
		}
	}
}

func TestDaySlots_ExactBoundaryIsDisabled(t *testing.T) {
	// at exactly 14:00 the 14:00 slot is no longer bookable
	clock := fixedClock(date(2026, time.March, 1, 14, 0))
	slots := DaySlots(date(2026, time.March, 1, 0, 0), clock)

	for _, slot := range slots {
		if slot.Label == "14:00" && !slot.Disabled {
			t.Error("Expected the 14:00 slot to be disabled at exactly 14:00")
		}
		if slot.Label == "14:30" && slot.Disabled {
			t.Error("Expected the 14:30 slot to still be enabled at 14:00")
		}
	}
}

func TestDaySlots_LateEveningDisablesEverything(t *testing.T) {
	clock := fixedClock(date(2026, time.March, 1, 23, 30))
	slots := DaySlots(date(2026, time.March, 1, 0, 0), clock)

	for _, slot := range slots {
		if !slot.Disabled {
			t.Errorf("Expected slot %s to be disabled late in the evening", slot.Label)
		}
	}
}

func TestDaySlots_EarlyMorningEnablesEverything(t *testing.T) {
	clock := fixedClock(date(2026, time.March, 1, 6, 0))
	slots := DaySlots(date(2026, time.March, 1, 0, 0), clock)

	for _, slot := range slots {
		if slot.Disabled {
			t.Errorf("Expected slot %s to be enabled early in the morning", slot.Label)
		}
	}
}

func TestSlotByLabel(t *testing.T) {
	clock := fixedClock(date(2026, time.March, 1, 6, 0))
	selected := date(2026, time.March, 1, 0, 0)

	slot, ok := SlotByLabel(selected, clock, "09:30")
	if !ok {
		t.Fatal("Expected 09:30 to be a valid slot")
	}
	if slot.Label != "09:30" {
		t.Errorf("Expected label 09:30, got %s", slot.Label)
	}

	if _, ok := SlotByLabel(selected, clock, "09:15"); ok {
		t.Error("Expected 09:15 to be rejected, slots are half-hour aligned")
	}
	if _, ok := SlotByLabel(selected, clock, "07:30"); ok {
		t.Error("Expected 07:30 to be rejected, before opening")
	}
	if _, ok := SlotByLabel(selected, clock, "21:30"); ok {
		t.Error("Expected 21:30 to be rejected, after closing")
	}
}
