package intent

import (
	"regexp"
	"strings"

	"youthunion-chat/internal/lexicon"
	"youthunion-chat/internal/textnorm"
)

// Parameter keys produced by the extractors.
const (
	ParamSearch    = "search"
	ParamType      = "type"
	ParamID        = "id"
	ParamTimeRange = "time_range"
)

// Time buckets stored under ParamTimeRange.
const (
	TimeRangeDay   = "day"
	TimeRangeWeek  = "week"
	TimeRangeMonth = "month"
)

// rule inspects the corrected (original case) and normalized question and
// yields at most one parameter.
type rule struct {
	name  string
	match func(corrected, normalized string) (key, value string, ok bool)
}

const (
	verbPattern   = `(?:tìm kiếm|tim kiem|tìm|tim|search|find)`
	nounPattern   = `(?:các\s+|cac\s+)?(?:hoạt động|hoat dong|hđ|hd|sự kiện|su kien|sk|activities|activity|events|event)`
	markerPattern = `(?:liên quan đến|lien quan den|về chủ đề|ve chu de|về|ve|related to|about)`
)

// strategies is evaluated in order; the first rule that matches wins.
var strategies = map[lexicon.ExtractorKind][]rule{
	lexicon.ExtractSearch: {
		captureRule("verb-noun-marker", `(?i)(?:^|\s)`+verbPattern+`\s+`+nounPattern+`\s+`+markerPattern+`\s+(.+)`, ParamSearch),
		captureRule("verb-noun", `(?i)(?:^|\s)`+verbPattern+`\s+`+nounPattern+`\s+(.+)`, ParamSearch),
		captureRule("noun-owner", `(?i)(?:^|\s)(?:hoạt động|hoat dong|hđ|hd|sự kiện|su kien)\s+(?:của|cua)\s+(.+)`, ParamSearch),
		captureRule("marker", `(?i)(?:^|\s)(?:liên quan đến|lien quan den|về chủ đề|chủ đề|chu de|về|related to|about|topic)\s+(.+)`, ParamSearch),
	},
	lexicon.ExtractDetailByID: {
		captureRule("numbered", `(?i)(?:hoạt động|hoat dong|hđ|hd|sự kiện|su kien|activity|event)\s*(?:số|so|#|id|mã|ma|number|no\.?)\s*#?(\d+)`, ParamID),
		captureRule("hash", `(?:^|\s)#(\d+)`, ParamID),
		nameRule("name-before-question", `(?i)(?:hoạt động|hoat dong|sự kiện|su kien)\s+(.+?)\s+(?:diễn ra|dien ra|ở đâu|o dau|khi nào|khi nao)`),
		nameRule("detail-of", `(?i)(?:chi tiết|chi tiet)\s+(?:về\s+|ve\s+)?(?:hoạt động|hoat dong|sự kiện|su kien|hđ)\s+(.+)`),
		nameRule("info-of", `(?i)(?:thông tin|thong tin)\s+(?:về\s+|ve\s+)?(?:hoạt động|hoat dong|sự kiện|su kien|hđ)\s+(.+)`),
	},
	lexicon.ExtractCategory: {
		phraseRule("volunteer", ParamType, "Tình nguyện", "tinh nguyen", "volunteer", "hien mau", "mua he xanh"),
		phraseRule("academic", ParamType, "Học tập", "hoc tap", "hoc thuat", "academic", "nghien cuu"),
		phraseRule("cultural", ParamType, "Văn hóa", "van hoa", "van nghe", "cultural", "le hoi"),
		phraseRule("sports", ParamType, "Thể thao", "the thao", "bong da", "sports", "sport", "giai dau"),
		phraseRule("seminar", ParamType, "Hội thảo", "hoi thao", "seminar", "toa dam", "workshop"),
		phraseRule("club", ParamType, "Câu lạc bộ", "cau lac bo", "clb", "club"),
	},
	lexicon.ExtractTimeWindow: {
		phraseRule("week", ParamTimeRange, TimeRangeWeek, "tuan nay", "tuan toi", "tuan sau", "this week", "next week"),
		phraseRule("month", ParamTimeRange, TimeRangeMonth, "thang nay", "thang toi", "thang sau", "this month", "next month"),
		phraseRule("day", ParamTimeRange, TimeRangeDay, "hom nay", "ngay mai", "today", "tomorrow"),
	},
}

// ExtractParams copies defaults and adds the parameter found by the
// extractor of kind, if any. A miss is not an error.
func ExtractParams(kind lexicon.ExtractorKind, corrected string, defaults Params) Params {
	params := defaults.Clone()
	normalized := textnorm.Normalize(corrected)
	for _, r := range strategies[kind] {
		if key, value, ok := r.match(corrected, normalized); ok {
			params[key] = value
			break
		}
	}
	return params
}

func captureRule(name, pattern, key string) rule {
	re := regexp.MustCompile(pattern)
	return rule{
		name: name,
		match: func(corrected, _ string) (string, string, bool) {
			m := re.FindStringSubmatch(corrected)
			if m == nil {
				return "", "", false
			}
			value := cleanCapture(m[1])
			return key, value, value != ""
		},
	}
}

var allDigits = regexp.MustCompile(`^\d+$`)

// nameRule captures an activity name; a name made only of digits is an id.
func nameRule(name, pattern string) rule {
	re := regexp.MustCompile(pattern)
	return rule{
		name: name,
		match: func(corrected, _ string) (string, string, bool) {
			m := re.FindStringSubmatch(corrected)
			if m == nil {
				return "", "", false
			}
			value := cleanCapture(m[1])
			if value == "" {
				return "", "", false
			}
			if allDigits.MatchString(value) {
				return ParamID, value, true
			}
			return ParamSearch, value, true
		},
	}
}

// phraseRule matches normalized phrases on word boundaries.
func phraseRule(name, key, value string, phrases ...string) rule {
	return rule{
		name: name,
		match: func(_, normalized string) (string, string, bool) {
			for _, p := range phrases {
				if textnorm.ContainsPhrase(normalized, p) {
					return key, value, true
				}
			}
			return "", "", false
		},
	}
}

var trailingParticles = map[string]bool{
	"ạ": true, "a": true, "nhé": true, "nhe": true, "nha": true,
	"với": true, "voi": true, "vậy": true, "nhỉ": true, "đi": true,
}

const trailingPunct = "?.!,;:\"'“”"

// cleanCapture trims punctuation and courtesy particles off the end of a capture.
func cleanCapture(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 {
		last := strings.TrimRight(words[len(words)-1], trailingPunct)
		if last == "" || trailingParticles[strings.ToLower(last)] {
			words = words[:len(words)-1]
			continue
		}
		words[len(words)-1] = last
		break
	}
	return strings.Trim(strings.Join(words, " "), trailingPunct)
}
