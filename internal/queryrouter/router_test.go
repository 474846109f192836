package queryrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "youthunion-chat/internal/common/errors"
	"youthunion-chat/internal/common/logger"
	"youthunion-chat/internal/intent"
	"youthunion-chat/internal/lexicon"
	"youthunion-chat/internal/models"
)

// ==========================
// Test doubles
// ==========================

type fetchCall struct {
	Endpoint string
	Method   string
	Params   map[string]string
}

type stubDataAPI struct {
	mu sync.Mutex

	fetchResult json.RawMessage
	fetchErr    error
	byID        map[string]json.RawMessage
	byIDErr     error
	list        *models.ActivityList
	listErr     error

	fetches   []fetchCall
	byIDCalls []string
	listCalls []models.ListOptions
}

func (s *stubDataAPI) Fetch(_ context.Context, endpoint, method string, params map[string]string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches = append(s.fetches, fetchCall{Endpoint: endpoint, Method: method, Params: params})
	return s.fetchResult, s.fetchErr
}

func (s *stubDataAPI) FetchByID(_ context.Context, collection, id string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byIDCalls = append(s.byIDCalls, collection+"/"+id)
	if s.byIDErr != nil {
		return nil, s.byIDErr
	}
	return s.byID[id], nil
}

func (s *stubDataAPI) ListActivities(_ context.Context, opts models.ListOptions) (*models.ActivityList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls = append(s.listCalls, opts)
	return s.list, s.listErr
}

func (s *stubDataAPI) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fetches) + len(s.byIDCalls) + len(s.listCalls)
}

type stubGenerator struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func (g *stubGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type stubCache struct {
	list  *models.ActivityList
	err   error
	calls int
}

func (c *stubCache) Get(context.Context) (*models.ActivityList, error) {
	c.calls++
	return c.list, c.err
}

type stubRecorder struct {
	results []Result
	err     error
}

func (r *stubRecorder) Record(_ context.Context, res Result) error {
	r.results = append(r.results, res)
	return r.err
}

var testNow = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T, data DataAPI, cache ActivitySource, gen Generator, opts ...Option) *Router {
	t.Helper()
	analyzer := intent.NewAnalyzer(lexicon.Default())
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(analyzer, data, cache, gen, logger.NewTestLogger(t), opts...)
}

func activity(id int64, title string, start time.Time) models.Activity {
	return models.Activity{ID: id, Title: title, StartDate: models.NewDateTime(start)}
}

// ==========================
// Routing
// ==========================

func TestRoute_UnknownIntentFallsBackToGenerator(t *testing.T) {
	data := &stubDataAPI{}
	cache := &stubCache{}
	gen := &stubGenerator{answer: "Chào bạn! Mình có thể giúp gì?"}
	router := newTestRouter(t, data, cache, gen)

	res := router.Answer(context.Background(), "Xin chào, bạn khỏe không?")

	assert.Equal(t, intent.Unknown, res.Analysis.Intent)
	assert.Equal(t, "Chào bạn! Mình có thể giúp gì?", res.Answer)
	assert.Equal(t, "fallback", res.Outcome)
	assert.Equal(t, 1, gen.Calls())
	assert.Equal(t, 0, data.Calls())
	assert.Equal(t, 0, cache.calls)

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, lexicon.AssistantContext)
	assert.Contains(t, prompt, "/activities/")
	assert.Contains(t, prompt, "Không xác định được ý định")
	assert.Contains(t, prompt, "Xin chào, bạn khỏe không?")
}

func TestRoute_UpcomingUsesCacheAndFilters(t *testing.T) {
	var results []models.Activity
	// 8 future activities in scrambled order, 3 past, 1 without a date.
	for i, offset := range []int{5, 1, 8, 3, 7, 2, 6, 4} {
		results = append(results, activity(int64(100+i), fmt.Sprintf("Sắp tới %d", offset), testNow.Add(time.Duration(offset)*24*time.Hour)))
	}
	results = append(results,
		activity(1, "Đã qua 1", testNow.Add(-time.Hour)),
		activity(2, "Đã qua 2", testNow.Add(-48*time.Hour)),
		activity(3, "Đúng lúc này", testNow),
		models.Activity{ID: 4, Title: "Chưa có ngày"},
	)

	data := &stubDataAPI{}
	cache := &stubCache{list: &models.ActivityList{Count: len(results), Results: results}}
	gen := &stubGenerator{answer: "Có 8 hoạt động sắp tới."}
	router := newTestRouter(t, data, cache, gen)

	res := router.Answer(context.Background(), "Cho tôi biết các hoạt động sắp tới")

	require.NoError(t, res.Err)
	assert.Equal(t, lexicon.IntentActivityUpcoming, res.Analysis.Intent)
	assert.Equal(t, "Có 8 hoạt động sắp tới.", res.Answer)
	assert.Equal(t, 1, cache.calls)
	assert.Equal(t, 0, data.Calls())
	require.Equal(t, 1, gen.Calls())

	prompt := gen.prompts[0]
	for day := 1; day <= 5; day++ {
		assert.Contains(t, prompt, fmt.Sprintf("Sắp tới %d", day))
	}
	for _, absent := range []string{"Sắp tới 6", "Sắp tới 7", "Sắp tới 8", "Đã qua", "Đúng lúc này", "Chưa có ngày"} {
		assert.NotContains(t, prompt, absent)
	}
	assert.Less(t, strings.Index(prompt, "Sắp tới 1"), strings.Index(prompt, "Sắp tới 2"))
	assert.Less(t, strings.Index(prompt, "Sắp tới 4"), strings.Index(prompt, "Sắp tới 5"))
	assert.Contains(t, prompt, `"count": 8`)
}

func TestRoute_ListWithTimeRangeBoundsWindow(t *testing.T) {
	cache := &stubCache{list: &models.ActivityList{Count: 3, Results: []models.Activity{
		activity(1, "Trong tháng", testNow.AddDate(0, 0, 10)),
		activity(2, "Tháng sau nữa", testNow.AddDate(0, 2, 0)),
		activity(3, "Tuần trước", testNow.AddDate(0, 0, -7)),
	}}}
	gen := &stubGenerator{answer: "ok"}
	router := newTestRouter(t, &stubDataAPI{}, cache, gen)

	res := router.Answer(context.Background(), "Danh sách hoạt động tháng này")

	assert.Equal(t, lexicon.IntentActivityList, res.Analysis.Intent)
	assert.Equal(t, intent.TimeRangeMonth, res.Analysis.Params[intent.ParamTimeRange])
	require.Equal(t, 1, gen.Calls())
	assert.Contains(t, gen.prompts[0], "Trong tháng")
	assert.NotContains(t, gen.prompts[0], "Tháng sau nữa")
	assert.NotContains(t, gen.prompts[0], "Tuần trước")
}

func TestRoute_DetailByID(t *testing.T) {
	data := &stubDataAPI{byID: map[string]json.RawMessage{
		"42": json.RawMessage(`{"id": 42, "title": "Mùa hè xanh 2025", "location": "Bến Tre"}`),
	}}
	gen := &stubGenerator{answer: "Mùa hè xanh diễn ra ở Bến Tre."}
	router := newTestRouter(t, data, &stubCache{}, gen)

	answer := router.Route(context.Background(), "chi tiết hoạt động số 42")

	assert.Equal(t, "Mùa hè xanh diễn ra ở Bến Tre.", answer)
	assert.Equal(t, []string{"activities/42"}, data.byIDCalls)
	assert.Empty(t, data.listCalls)
	require.Equal(t, 1, gen.Calls())
	assert.Contains(t, gen.prompts[0], "Bến Tre")
	assert.Contains(t, gen.prompts[0], "bản ghi chi tiết")
}

func TestRoute_DetailSearchThenFetch(t *testing.T) {
	data := &stubDataAPI{
		list: &models.ActivityList{Count: 2, Results: []models.Activity{
			activity(7, "Mùa hè xanh 2025", testNow.AddDate(0, 1, 0)),
			activity(9, "Mùa hè xanh 2024", testNow.AddDate(-1, 0, 0)),
		}},
		byID: map[string]json.RawMessage{"7": json.RawMessage(`{"id": 7, "title": "Mùa hè xanh 2025"}`)},
	}
	gen := &stubGenerator{answer: "Thông tin chi tiết."}
	router := newTestRouter(t, data, &stubCache{}, gen)

	res := router.Answer(context.Background(), "Chi tiết hoạt động Mùa hè xanh")

	require.NoError(t, res.Err)
	assert.Equal(t, "answered", res.Outcome)
	require.Len(t, data.listCalls, 1)
	assert.Equal(t, "Mùa hè xanh", data.listCalls[0].Search)
	assert.Equal(t, []string{"activities/7"}, data.byIDCalls)
	assert.Equal(t, "Thông tin chi tiết.", res.Answer)
}

func TestRoute_DetailSearchNotFoundShortCircuits(t *testing.T) {
	data := &stubDataAPI{list: &models.ActivityList{Count: 0, Results: []models.Activity{}}}
	gen := &stubGenerator{answer: "should not be used"}
	router := newTestRouter(t, data, &stubCache{}, gen)

	res := router.Answer(context.Background(), "Chi tiết hoạt động Mùa hè xanh")

	assert.Equal(t, "not_found", res.Outcome)
	assert.Contains(t, res.Answer, `"Mùa hè xanh"`)
	assert.Contains(t, res.Answer, "Không tìm thấy")
	assert.Equal(t, 0, gen.Calls())
	assert.Empty(t, data.byIDCalls)
}

func TestRoute_DetailSearchNotFoundLogsCode(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	analyzer := intent.NewAnalyzer(lexicon.Default())
	data := &stubDataAPI{list: &models.ActivityList{Results: []models.Activity{}}}
	router := New(analyzer, data, &stubCache{}, &stubGenerator{}, logger.NewZapAdapter(zap.New(core)))

	router.Answer(context.Background(), "Chi tiết hoạt động Mùa hè xanh")

	entries := logs.FilterMessage("detail search found nothing").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Mùa hè xanh", fields["search"])
	assert.Equal(t, string(apperrors.ErrCodeActivityNotFound), fields["errorCode"])
	assert.Equal(t, "VALIDATION", fields["errorCategory"])
}

func TestRoute_DetailWithoutTargetAsksBack(t *testing.T) {
	data := &stubDataAPI{}
	gen := &stubGenerator{answer: "Bạn muốn xem hoạt động nào?"}
	router := newTestRouter(t, data, &stubCache{}, gen)

	res := router.Answer(context.Background(), "chi tiết")

	assert.Equal(t, lexicon.IntentActivityDetail, res.Analysis.Intent)
	assert.Equal(t, "fallback", res.Outcome)
	assert.Equal(t, "Bạn muốn xem hoạt động nào?", res.Answer)
	assert.Equal(t, 0, data.Calls())
	require.Equal(t, 1, gen.Calls())
	assert.Contains(t, gen.prompts[0], "chưa nêu tên hoặc mã hoạt động")
}

func TestRoute_DirectFetchUsesIntentEndpoint(t *testing.T) {
	data := &stubDataAPI{fetchResult: json.RawMessage(`{"count": 1, "results": [{"id": 1, "title": "Thông báo nghỉ lễ"}]}`)}
	gen := &stubGenerator{answer: "Có 1 tin mới."}
	router := newTestRouter(t, data, &stubCache{}, gen)

	answer := router.Route(context.Background(), "Tin tức mới nhất")

	assert.Equal(t, "Có 1 tin mới.", answer)
	require.Len(t, data.fetches, 1)
	assert.Equal(t, fetchCall{
		Endpoint: "/posts/",
		Method:   "GET",
		Params:   map[string]string{"page": "1", "page_size": "10"},
	}, data.fetches[0])
	assert.Contains(t, gen.prompts[0], "danh sách")
}

func TestRoute_CollaboratorFailuresBecomeApology(t *testing.T) {
	tests := []struct {
		name  string
		query string
		data  *stubDataAPI
		cache *stubCache
		gen   *stubGenerator
		want  string
	}{
		{
			name:  "data api error",
			query: "Tin tức mới nhất",
			data:  &stubDataAPI{fetchErr: apperrors.NewDataAPIRequestFailedError("/posts/", errors.New("status 502: bad gateway"))},
			cache: &stubCache{},
			gen:   &stubGenerator{answer: "unused"},
			want:  "status 502: bad gateway",
		},
		{
			name:  "cache never filled",
			query: "Cho tôi biết các hoạt động sắp tới",
			data:  &stubDataAPI{},
			cache: &stubCache{err: apperrors.NewCacheUnavailableError(errors.New("connection refused"))},
			gen:   &stubGenerator{answer: "unused"},
			want:  "connection refused",
		},
		{
			name:  "detail fetch error",
			query: "chi tiết hoạt động số 42",
			data:  &stubDataAPI{byIDErr: apperrors.NewDataAPITimeoutError("/activities/42/", context.DeadlineExceeded)},
			cache: &stubCache{},
			gen:   &stubGenerator{answer: "unused"},
			want:  "DATA_API_TIMEOUT",
		},
		{
			name:  "generator error",
			query: "Tin tức mới nhất",
			data:  &stubDataAPI{fetchResult: json.RawMessage(`[]`)},
			cache: &stubCache{},
			gen:   &stubGenerator{err: apperrors.NewGenAIRequestFailedError("http", errors.New("status 503"))},
			want:  "GENAI_REQUEST_FAILED",
		},
		{
			name:  "fallback generator error",
			query: "Xin chào, bạn khỏe không?",
			data:  &stubDataAPI{},
			cache: &stubCache{},
			gen:   &stubGenerator{err: errors.New("quota exceeded")},
			want:  "quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.data, tt.cache, tt.gen)

			res := router.Answer(context.Background(), tt.query)

			require.Error(t, res.Err)
			assert.Equal(t, "apology", res.Outcome)
			assert.True(t, strings.HasPrefix(res.Answer, "Xin lỗi"))
			assert.Contains(t, res.Answer, tt.want)
		})
	}
}

func TestRoute_DataCallTimesOut(t *testing.T) {
	data := &blockingDataAPI{}
	gen := &stubGenerator{answer: "unused"}
	router := newTestRouter(t, data, &stubCache{}, gen, WithTimeouts(20*time.Millisecond, 0))

	res := router.Answer(context.Background(), "Tin tức mới nhất")

	assert.Equal(t, "apology", res.Outcome)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Equal(t, 0, gen.Calls())
}

type blockingDataAPI struct {
	stubDataAPI
}

func (b *blockingDataAPI) Fetch(ctx context.Context, _, _ string, _ map[string]string) (json.RawMessage, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRoute_RecordsTranscript(t *testing.T) {
	rec := &stubRecorder{err: errors.New("db down")}
	gen := &stubGenerator{answer: "Chào bạn!"}
	router := newTestRouter(t, &stubDataAPI{}, &stubCache{}, gen, WithRecorder(rec))

	answer := router.Route(context.Background(), "Xin chào, bạn khỏe không?")

	assert.Equal(t, "Chào bạn!", answer)
	require.Len(t, rec.results, 1)
	assert.Equal(t, "Xin chào, bạn khỏe không?", rec.results[0].Query)
	assert.Equal(t, "fallback", rec.results[0].Outcome)
	assert.Equal(t, intent.Unknown, rec.results[0].Analysis.Intent)
}

func TestRouter_AnalyzeDoesNotCallCollaborators(t *testing.T) {
	data := &stubDataAPI{}
	gen := &stubGenerator{}
	router := newTestRouter(t, data, &stubCache{}, gen)

	analysis := router.Analyze("chi tiết hoạt động số 42")

	assert.Equal(t, lexicon.IntentActivityDetail, analysis.Intent)
	assert.Equal(t, intent.Params{"id": "42"}, analysis.Params)
	assert.Equal(t, 0, data.Calls())
	assert.Equal(t, 0, gen.Calls())
}

func TestCollectionOf(t *testing.T) {
	assert.Equal(t, "activities", collectionOf("/activities/{id}/"))
	assert.Equal(t, "api/posts", collectionOf("/api/posts/{id}"))
	assert.Equal(t, "users", collectionOf("/users/"))
}
