package entities

type BlackoutRequest struct {
	ResourceID string  `json:"resourceId"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	StartTime  *string `json:"startTime"`
	EndTime    *string `json:"endTime"`
	Reason     string  `json:"reason"`
}

type WeeklyHoursRequest struct {
	ResourceID string `json:"resourceId"`
	DayOfWeek  *int   `json:"dayOfWeek"`
	OpenTime   string `json:"openTime"`
	CloseTime  string `json:"closeTime"`
	IsClosed   bool   `json:"isClosed"`
}
