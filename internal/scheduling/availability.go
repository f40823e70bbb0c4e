package scheduling

// SlotPartition splits the grid slots of a day into bookable and occupied
// start times, both in grid order.
type SlotPartition struct {
	AvailableSlots []TimeOfDay `json:"availableSlots"`
	OccupiedSlots  []TimeOfDay `json:"occupiedSlots"`
}

type Calculator struct {
	grid Grid
}

func NewCalculator(grid Grid) *Calculator {
	return &Calculator{grid: grid}
}

func (c *Calculator) Grid() Grid { return c.grid }

// CalculateAvailableSlots classifies every slot of the default window for a
// booking of durationMinutes on date. Slots whose span would end after close
// are left out of both sets. Slots starting before open cannot be booked and
// are reported as occupied. The caller handles closed days before calling.
func (c *Calculator) CalculateAvailableSlots(
	date string,
	durationMinutes int,
	bookings []Booking,
	blackouts []BlackoutPeriod,
	resourceID string,
	open, close TimeOfDay,
) SlotPartition {
	p := SlotPartition{
		AvailableSlots: []TimeOfDay{},
		OccupiedSlots:  []TimeOfDay{},
	}
	for _, slot := range c.grid.DefaultSlots() {
		if spanEnd(slot, durationMinutes) > close {
			continue
		}
		if slot < open ||
			IsSlotOccupied(slot, durationMinutes, bookings, date, resourceID) ||
			IsSlotInBlackout(slot, durationMinutes, date, blackouts, resourceID) {
			p.OccupiedSlots = append(p.OccupiedSlots, slot)
		} else {
			p.AvailableSlots = append(p.AvailableSlots, slot)
		}
	}
	return p
}
