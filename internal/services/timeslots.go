package services

import (
	"fmt"
	"time"
)

// Clock supplies the current wall-clock time. Injected so slot disabling
// can be tested against a fixed instant; production code passes time.Now.
type Clock func() time.Time

const (
	slotOpeningHour = 8
	slotClosingHour = 21
	slotStepMinutes = 30
)

// Slot is one bookable half-hour increment of a service day.
type Slot struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// DaySlots generates the bookable slots for the selected date: fixed
// 30-minute increments from 08:00 through 21:00 inclusive, 27 per day.
//
// A slot is disabled when the selected date is "today" per the clock and
// the slot's time has already passed (or is equal to now). Slots on other
// dates are never disabled. The result depends on the clock, so callers
// must re-evaluate rather than cache across requests.
func DaySlots(selected time.Time, clock Clock) []Slot {
	now := clock()
	sameDay := selected.Year() == now.Year() &&
		selected.Month() == now.Month() &&
		selected.Day() == now.Day()

	minutesNow := now.Hour()*60 + now.Minute()

	slots := make([]Slot, 0, (slotClosingHour-slotOpeningHour)*60/slotStepMinutes+1)
	for m := slotOpeningHour * 60; m <= slotClosingHour*60; m += slotStepMinutes {
		slot := Slot{
			Label:    fmt.Sprintf("%02d:%02d", m/60, m%60),
			Disabled: sameDay && m <= minutesNow,
		}
		slots = append(slots, slot)
	}

	return slots
}

// SlotByLabel returns the slot with the given label for the selected date,
// or false when the label is not a valid slot of the day.
func SlotByLabel(selected time.Time, clock Clock, label string) (Slot, bool) {
	for _, slot := range DaySlots(selected, clock) {
		if slot.Label == label {
			return slot, true
		}
	}
	return Slot{}, false
}
