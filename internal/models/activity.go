// internal/models/activity.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Activity statuses as stored by the Data API.
const (
	ActivityStatusUpcoming  = "Upcoming"
	ActivityStatusOngoing   = "Ongoing"
	ActivityStatusCompleted = "Completed"
)

// Activity is one record of /activities/.
type Activity struct {
	ID                   int64    `json:"id"`
	Title                string   `json:"title"`
	Description          string   `json:"description,omitempty"`
	StartDate            DateTime `json:"start_date"`
	EndDate              DateTime `json:"end_date"`
	Status               string   `json:"status,omitempty"`
	Location             string   `json:"location,omitempty"`
	Type                 string   `json:"type,omitempty"`
	MaxParticipants      *int     `json:"max_participants,omitempty"`
	ParticipantsCount    int      `json:"participants_count"`
	RegistrationDeadline DateTime `json:"registration_deadline"`
}

// ActivityList is a paginated /activities/ page.
type ActivityList struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []Activity `json:"results"`
}

// DateTime accepts the Data API timestamp forms (RFC 3339 with or without
// zone, date only, or null) and marshals back as RFC 3339.
type DateTime struct {
	time.Time
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("datetime: %w", err)
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("datetime: unsupported format %q", raw)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}

// ListOptions filters a paged /activities/ request. Zero values are omitted.
type ListOptions struct {
	Page     int
	PageSize int
	Search   string
	Type     string
}
