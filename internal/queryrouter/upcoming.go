package queryrouter

import (
	"sort"
	"strconv"
	"time"

	"youthunion-chat/internal/intent"
	"youthunion-chat/internal/models"
)

const (
	defaultUpcomingPageSize = 5
	defaultListPageSize     = 10
)

// SelectActivities narrows a cached list for one question. With upcoming
// set, or a time_range param, only activities starting strictly after now
// are kept, sorted by start date, and Count reports how many qualified.
// The result is truncated to page_size either way; list is not modified.
func SelectActivities(list *models.ActivityList, params intent.Params, now time.Time, upcoming bool) *models.ActivityList {
	pageSize := pageSizeOf(params, upcoming)
	timeRange := params[intent.ParamTimeRange]

	if !upcoming && timeRange == "" {
		results := list.Results
		if len(results) > pageSize {
			results = results[:pageSize]
		}
		return &models.ActivityList{
			Count:   list.Count,
			Results: append([]models.Activity(nil), results...),
		}
	}

	end, bounded := windowEnd(now, timeRange)
	var kept []models.Activity
	for _, a := range list.Results {
		if !a.StartDate.After(now) {
			continue
		}
		if bounded && a.StartDate.After(end) {
			continue
		}
		kept = append(kept, a)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].StartDate.Before(kept[j].StartDate.Time)
	})

	count := len(kept)
	if len(kept) > pageSize {
		kept = kept[:pageSize]
	}
	if kept == nil {
		kept = []models.Activity{}
	}
	return &models.ActivityList{Count: count, Results: kept}
}

func pageSizeOf(params intent.Params, upcoming bool) int {
	if n, err := strconv.Atoi(params["page_size"]); err == nil && n > 0 {
		return n
	}
	if upcoming {
		return defaultUpcomingPageSize
	}
	return defaultListPageSize
}

func windowEnd(now time.Time, timeRange string) (time.Time, bool) {
	switch timeRange {
	case intent.TimeRangeDay:
		return now.AddDate(0, 0, 1), true
	case intent.TimeRangeWeek:
		return now.AddDate(0, 0, 7), true
	case intent.TimeRangeMonth:
		return now.AddDate(0, 1, 0), true
	}
	return time.Time{}, false
}
