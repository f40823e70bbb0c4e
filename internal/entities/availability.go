package entities

import "simbooking/internal/scheduling"

// AvailabilityResponse is the body of GET /api/availability.
type AvailabilityResponse struct {
	Date               string                 `json:"date"`
	ResourceID         string                 `json:"resourceId"`
	AvailableSlots     []scheduling.TimeOfDay `json:"availableSlots"`
	OccupiedSlots      []scheduling.TimeOfDay `json:"occupiedSlots"`
	AllOccupiedSlots   []scheduling.TimeOfDay `json:"allOccupiedSlots"`
	OpeningHours       *scheduling.Window     `json:"openingHours"`
	IsClosed           bool                   `json:"isClosed"`
	HasFullDayBlackout bool                   `json:"hasFullDayBlackout"`
}

// EmptyAvailability is returned for closed days and when upstream data
// could not be loaded.
func EmptyAvailability(date, resourceID string) AvailabilityResponse {
	return AvailabilityResponse{
		Date:             date,
		ResourceID:       resourceID,
		AvailableSlots:   []scheduling.TimeOfDay{},
		OccupiedSlots:    []scheduling.TimeOfDay{},
		AllOccupiedSlots: []scheduling.TimeOfDay{},
	}
}
