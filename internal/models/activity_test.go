package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityList_DecodesDataAPIPage(t *testing.T) {
	body := `{
		"count": 2,
		"next": null,
		"previous": null,
		"results": [
			{"id": 7, "title": "Mùa hè xanh", "start_date": "2025-07-01T08:00:00+07:00",
			 "end_date": "2025-07-30T17:00:00", "status": "Upcoming", "location": "Bến Tre",
			 "type": "Tình nguyện", "max_participants": null, "participants_count": 12,
			 "registration_deadline": null},
			{"id": 8, "title": "Hội thao", "start_date": "2025-08-02", "end_date": "",
			 "type": "Thể thao", "max_participants": 100, "participants_count": 0}
		]
	}`

	var list ActivityList
	require.NoError(t, json.Unmarshal([]byte(body), &list))

	require.Len(t, list.Results, 2)
	first := list.Results[0]
	assert.Equal(t, int64(7), first.ID)
	assert.Equal(t, 2025, first.StartDate.Year())
	assert.Equal(t, 30, first.EndDate.Day())
	assert.Nil(t, first.MaxParticipants)
	assert.True(t, first.RegistrationDeadline.IsZero())

	second := list.Results[1]
	require.NotNil(t, second.MaxParticipants)
	assert.Equal(t, 100, *second.MaxParticipants)
	assert.True(t, second.EndDate.IsZero())
}

func TestDateTime_MarshalsRFC3339(t *testing.T) {
	a := Activity{ID: 1, StartDate: NewDateTime(time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))}

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"start_date":"2025-05-01T08:00:00Z"`)
	assert.Contains(t, string(raw), `"end_date":null`)
}

func TestDateTime_RejectsGarbage(t *testing.T) {
	var d DateTime
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &d))
}
