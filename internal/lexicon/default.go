package lexicon

// Intent labels of the built-in lexicon.
const (
	IntentActivityList     = "activity-list"
	IntentActivityUpcoming = "activity-upcoming"
	IntentActivityDetail   = "activity-detail"
	IntentActivitySearch   = "activity-search"
	IntentActivityByType   = "activity-by-type"
	IntentMemberList       = "member-list"
	IntentPostList         = "post-list"
	IntentStatistics       = "statistics"
)

// Expression names of the built-in lexicon.
const (
	ExpressionRequestInfo = "request-info"
	ExpressionAskLocation = "ask-location"
	ExpressionAskTime     = "ask-time"
	ExpressionAskHow      = "ask-how"
)

func pageParams(size string) Params {
	return Params{"page": "1", "page_size": size}
}

var defaultIntents = []IntentDefinition{
	{
		Intent: IntentActivityList,
		Keywords: []string{
			"hoạt động", "sự kiện", "chương trình", "danh sách hoạt động", "danh sách sự kiện",
			"có những hoạt động nào", "tổ chức gì", "liệt kê",
			"chuong trin",
			"hđ", "sk", "ds hđ", "event", "activities",
		},
		APIEndpoint:   "/activities/",
		DefaultParams: pageParams("10"),
		Description:   "Lấy danh sách các hoạt động của Đoàn trường",
		Extractor:     ExtractTimeWindow,
		Route:         RouteCachedList,
	},
	{
		Intent: IntentActivityUpcoming,
		Keywords: []string{
			"sắp tới", "sắp diễn ra", "hoạt động sắp tới", "sự kiện sắp tới", "sắp tới có",
			"sắp tới có gì", "tuần tới", "tháng tới", "upcoming",
		},
		APIEndpoint:   "/activities/",
		DefaultParams: Params{"page": "1", "page_size": "5", "upcoming": "true"},
		Description:   "Lấy các hoạt động sắp diễn ra",
		Extractor:     ExtractTimeWindow,
		Route:         RouteCachedUpcoming,
	},
	{
		Intent: IntentActivityDetail,
		Keywords: []string{
			"chi tiết hoạt động", "thông tin hoạt động", "chi tiết sự kiện", "thông tin sự kiện",
			"chi tiết", "mô tả hoạt động", "hoạt động số", "sự kiện số",
			"diễn ra ở đâu", "diễn ra khi nào", "ở đâu", "khi nào", "ai tham gia",
			"event detail",
		},
		APIEndpoint: "/activities/{id}/",
		Description: "Lấy thông tin chi tiết về một hoạt động cụ thể",
		Extractor:   ExtractDetailByID,
		Route:       RouteDetail,
	},
	{
		Intent: IntentActivitySearch,
		Keywords: []string{
			"tìm", "tìm kiếm", "tìm hoạt động", "tìm sự kiện", "tìm hđ", "tìm hđ về",
			"hđ về", "hoạt động về", "liên quan đến", "về chủ đề",
			"hđ của", "hoạt động của", "của câu lạc bộ",
			"search", "find",
		},
		APIEndpoint:   "/activities/",
		DefaultParams: pageParams("10"),
		Description:   "Tìm kiếm hoạt động theo từ khóa",
		Extractor:     ExtractSearch,
		Route:         RouteDirect,
	},
	{
		Intent: IntentActivityByType,
		Keywords: []string{
			"thể loại", "loại hoạt động", "hoạt động tình nguyện", "hoạt động học tập",
			"hoạt động văn hóa", "hoạt động thể thao", "tình nguyện", "học tập", "văn hóa",
			"thể thao", "hội thảo", "câu lạc bộ",
			"volunteer", "sports",
		},
		APIEndpoint:   "/activities/",
		DefaultParams: pageParams("10"),
		Description:   "Lấy các hoạt động theo thể loại",
		Extractor:     ExtractCategory,
		Route:         RouteDirect,
	},
	{
		Intent: IntentMemberList,
		Keywords: []string{
			"đoàn viên", "thành viên", "sinh viên", "danh sách đoàn viên", "danh sách thành viên",
			"member", "members",
		},
		APIEndpoint:   "/users/",
		DefaultParams: pageParams("10"),
		Description:   "Lấy danh sách các đoàn viên",
		Extractor:     ExtractSearch,
		Route:         RouteDirect,
	},
	{
		Intent: IntentPostList,
		Keywords: []string{
			"bài viết", "tin tức", "thông báo", "bản tin", "post", "news",
		},
		APIEndpoint:   "/posts/",
		DefaultParams: pageParams("10"),
		Description:   "Lấy danh sách các bài viết, tin tức của Đoàn trường",
		Extractor:     ExtractSearch,
		Route:         RouteDirect,
	},
	{
		Intent: IntentStatistics,
		Keywords: []string{
			"thống kê", "thống kê hoạt động", "báo cáo", "tổng quan", "số liệu", "report", "statistic",
		},
		APIEndpoint: "/dashboard/stats/",
		Description: "Lấy thông tin thống kê tổng quan",
		Extractor:   ExtractNone,
		Route:       RouteDirect,
	},
}

var defaultCorrections = []Correction{
	{Misspelling: "hoat dong", Correction: "hoạt động"},
	{Misspelling: "hoat đong", Correction: "hoạt động"},
	{Misspelling: "hoạt đông", Correction: "hoạt động"},
	{Misspelling: "hoat đông", Correction: "hoạt động"},
	{Misspelling: "su kien", Correction: "sự kiện"},
	{Misspelling: "su kiện", Correction: "sự kiện"},
	{Misspelling: "sư kien", Correction: "sự kiện"},
	{Misspelling: "thong tin", Correction: "thông tin"},
	{Misspelling: "tin tuc", Correction: "tin tức"},
	{Misspelling: "tinh nguyen", Correction: "tình nguyện"},
	{Misspelling: "clb", Correction: "câu lạc bộ"},
}

var defaultExpressions = []Expression{
	{
		Name:     ExpressionRequestInfo,
		Variants: []string{"cho tôi biết", "cho mình biết", "cho tớ xem", "cho tao xem", "liệt kê", "hiển thị"},
	},
	{
		Name:     ExpressionAskLocation,
		Variants: []string{"ở đâu", "địa điểm", "địa chỉ", "tại đâu", "chỗ nào"},
	},
	{
		Name:     ExpressionAskTime,
		Variants: []string{"khi nào", "lúc nào", "thời gian", "ngày", "giờ"},
	},
	{
		Name:     ExpressionAskHow,
		Variants: []string{"như thế nào", "làm sao", "bằng cách nào", "thế nào"},
	},
}

var defaultExamples = []Example{
	{Query: "Cho tôi biết các hoạt động sắp tới", Intent: IntentActivityUpcoming, Params: Params{"upcoming": "true", "page": "1", "page_size": "5"}},
	{Query: "cho toi biet cac hoat dong sap toi", Intent: IntentActivityUpcoming, Params: Params{"upcoming": "true", "page": "1", "page_size": "5"}},
	{Query: "Cho tôi biêt các hoạt đông sắp tơi", Intent: IntentActivityUpcoming, Params: Params{"upcoming": "true", "page": "1", "page_size": "5"}},
	{Query: "Sắp tới có những sự kiện gì?", Intent: IntentActivityUpcoming, Params: Params{"upcoming": "true", "page": "1", "page_size": "5"}},
	{Query: "sự kiện sắp tới?", Intent: IntentActivityUpcoming, Params: Params{"upcoming": "true", "page": "1", "page_size": "5"}},
	{Query: "Chi tiết hoạt động hiến máu tình nguyện", Intent: IntentActivityDetail, Params: Params{"search": "hiến máu tình nguyện"}},
	{Query: "tìm hđ ve tinh nguyen ạ", Intent: IntentActivitySearch, Params: Params{"search": "tình nguyện", "page": "1", "page_size": "10"}},
	{Query: "Liệt kê các sự kiện sắp diễn ra vào tuần tới", Intent: IntentActivityUpcoming, Params: Params{"upcoming": "true", "page": "1", "page_size": "5", "time_range": "week"}},
	{Query: "Tôi muốn tham gia hoạt động tình nguyện thì có những hoạt động nào?", Intent: IntentActivityByType, Params: Params{"type": "Tình nguyện", "page": "1", "page_size": "10"}},
	{Query: "ds hđ của clb tin học", Intent: IntentActivitySearch, Params: Params{"search": "câu lạc bộ tin học", "page": "1", "page_size": "10"}},
}

// Default returns the built-in Youth Union lexicon.
func Default() *Lexicon {
	lex, err := New(defaultIntents, defaultCorrections, defaultExpressions, defaultExamples)
	if err != nil {
		panic(err)
	}
	return lex
}
