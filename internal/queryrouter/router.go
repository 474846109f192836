// Package queryrouter answers chat questions: it classifies the question,
// fetches the matching Data API data and has the generative model phrase
// the answer.
package queryrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "youthunion-chat/internal/common/errors"
	"youthunion-chat/internal/common/metrics"
	"youthunion-chat/internal/intent"
	"youthunion-chat/internal/lexicon"
	"youthunion-chat/internal/models"
)

const (
	defaultDataTimeout     = 10 * time.Second
	defaultGenerateTimeout = 30 * time.Second
	detailSearchPageSize   = 5
)

// DataAPI is the Youth Union REST API.
type DataAPI interface {
	Fetch(ctx context.Context, endpoint, method string, params map[string]string) (json.RawMessage, error)
	FetchByID(ctx context.Context, collection, id string) (json.RawMessage, error)
	ListActivities(ctx context.Context, opts models.ListOptions) (*models.ActivityList, error)
}

// Generator is the generative text model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ActivitySource serves the shared activity list.
type ActivitySource interface {
	Get(ctx context.Context) (*models.ActivityList, error)
}

// Recorder persists answered questions. Failures are logged, never returned
// to the asker.
type Recorder interface {
	Record(ctx context.Context, res Result) error
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Result describes how one question was answered.
type Result struct {
	Query    string
	Analysis intent.Analysis
	Answer   string
	Outcome  string
	Err      error
	Duration time.Duration
}

type Router struct {
	analyzer  *intent.Analyzer
	data      DataAPI
	cache     ActivitySource
	generator Generator
	formatter *Formatter
	recorder  Recorder
	logger    Logger

	now             func() time.Time
	dataTimeout     time.Duration
	generateTimeout time.Duration
}

type Option func(*Router)

// WithClock replaces time.Now for the upcoming filter.
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// WithTimeouts bounds each Data API and generative call. Zero keeps the default.
func WithTimeouts(data, generate time.Duration) Option {
	return func(r *Router) {
		if data > 0 {
			r.dataTimeout = data
		}
		if generate > 0 {
			r.generateTimeout = generate
		}
	}
}

func WithRecorder(rec Recorder) Option {
	return func(r *Router) { r.recorder = rec }
}

func New(analyzer *intent.Analyzer, data DataAPI, cache ActivitySource, generator Generator, log Logger, opts ...Option) *Router {
	r := &Router{
		analyzer:        analyzer,
		data:            data,
		cache:           cache,
		generator:       generator,
		formatter:       NewFormatter(generator),
		logger:          log,
		now:             time.Now,
		dataTimeout:     defaultDataTimeout,
		generateTimeout: defaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Analyze classifies query without calling any collaborator.
func (r *Router) Analyze(query string) intent.Analysis {
	return r.analyzer.Analyze(query)
}

// Route returns the answer text. It never fails: collaborator errors become
// an apology message.
func (r *Router) Route(ctx context.Context, query string) string {
	return r.Answer(ctx, query).Answer
}

// Answer is Route with the classification and outcome attached.
func (r *Router) Answer(ctx context.Context, query string) Result {
	start := time.Now()
	res := Result{Query: query, Analysis: r.analyzer.Analyze(query)}

	res.Answer, res.Outcome, res.Err = r.dispatch(ctx, res.Analysis, query)
	if res.Err != nil {
		res.Answer = apology(res.Err)
		res.Outcome = metrics.OutcomeApology
		r.logger.Error("question answered with apology", map[string]interface{}{
			"intent": res.Analysis.Intent,
			"error":  res.Err.Error(),
		})
	}
	res.Duration = time.Since(start)

	metrics.QuestionsTotal.WithLabelValues(res.Analysis.Intent, res.Outcome).Inc()
	metrics.QuestionDuration.WithLabelValues(res.Analysis.Intent).Observe(res.Duration.Seconds())
	r.logger.Info("question answered", map[string]interface{}{
		"intent":   res.Analysis.Intent,
		"score":    res.Analysis.Score,
		"params":   res.Analysis.Params,
		"outcome":  res.Outcome,
		"duration": res.Duration.String(),
	})

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, res); err != nil {
			r.logger.Warn("transcript not recorded", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return res
}

func (r *Router) dispatch(ctx context.Context, analysis intent.Analysis, query string) (string, string, error) {
	if !analysis.Known() {
		answer, err := r.fallback(ctx, query, unknownIntentNote)
		return answer, metrics.OutcomeFallback, err
	}

	def, ok := r.analyzer.Lexicon().Find(analysis.Intent)
	if !ok {
		return "", "", fmt.Errorf("intent %q is not in the lexicon", analysis.Intent)
	}

	switch def.Route {
	case lexicon.RouteDetail:
		return r.routeDetail(ctx, def, analysis, query)
	case lexicon.RouteCachedList, lexicon.RouteCachedUpcoming:
		return r.routeCached(ctx, def, analysis, query)
	default:
		return r.routeDirect(ctx, def, analysis, query)
	}
}

func (r *Router) routeDetail(ctx context.Context, def lexicon.IntentDefinition, analysis intent.Analysis, query string) (string, string, error) {
	collection := collectionOf(def.APIEndpoint)
	id := analysis.Params[intent.ParamID]

	if id == "" {
		term := analysis.Params[intent.ParamSearch]
		if term == "" {
			answer, err := r.fallback(ctx, query, missingDetailNote)
			return answer, metrics.OutcomeFallback, err
		}

		dctx, cancel := context.WithTimeout(ctx, r.dataTimeout)
		list, err := r.data.ListActivities(dctx, models.ListOptions{Page: 1, PageSize: detailSearchPageSize, Search: term})
		cancel()
		if err != nil {
			return "", "", err
		}
		if len(list.Results) == 0 {
			nf := apperrors.NewActivityNotFoundError(term)
			r.logger.Info("detail search found nothing", map[string]interface{}{
				"search":        term,
				"errorCode":     string(nf.Code),
				"errorCategory": apperrors.GetErrorCategory(nf.Code),
			})
			return notFound(term), metrics.OutcomeNotFound, nil
		}
		id = strconv.FormatInt(list.Results[0].ID, 10)
	}

	dctx, cancel := context.WithTimeout(ctx, r.dataTimeout)
	record, err := r.data.FetchByID(dctx, collection, id)
	cancel()
	if err != nil {
		return "", "", err
	}
	return r.format(ctx, analysis, record, query)
}

func (r *Router) routeCached(ctx context.Context, def lexicon.IntentDefinition, analysis intent.Analysis, query string) (string, string, error) {
	dctx, cancel := context.WithTimeout(ctx, r.dataTimeout)
	list, err := r.cache.Get(dctx)
	cancel()
	if err != nil {
		return "", "", err
	}

	upcoming := def.Route == lexicon.RouteCachedUpcoming || analysis.Params["upcoming"] == "true"
	selected := SelectActivities(list, analysis.Params, r.now(), upcoming)
	return r.format(ctx, analysis, selected, query)
}

func (r *Router) routeDirect(ctx context.Context, def lexicon.IntentDefinition, analysis intent.Analysis, query string) (string, string, error) {
	dctx, cancel := context.WithTimeout(ctx, r.dataTimeout)
	data, err := r.data.Fetch(dctx, def.APIEndpoint, def.HTTPMethod, analysis.Params)
	cancel()
	if err != nil {
		return "", "", err
	}
	return r.format(ctx, analysis, data, query)
}

func (r *Router) format(ctx context.Context, analysis intent.Analysis, data interface{}, query string) (string, string, error) {
	gctx, cancel := context.WithTimeout(ctx, r.generateTimeout)
	defer cancel()

	answer, err := r.formatter.Format(gctx, analysis.Intent, data, query, analysis.Expressions...)
	if err != nil {
		return "", "", err
	}
	return answer, metrics.OutcomeAnswered, nil
}

func (r *Router) fallback(ctx context.Context, query, note string) (string, error) {
	gctx, cancel := context.WithTimeout(ctx, r.generateTimeout)
	defer cancel()
	return r.generator.Generate(gctx, FallbackPrompt(r.analyzer.Lexicon(), query, note))
}

const (
	unknownIntentNote = "Không xác định được ý định của câu hỏi từ các API có sẵn. Hãy trả lời dựa trên hiểu biết chung về Đoàn trường."
	missingDetailNote = "Người dùng hỏi chi tiết một hoạt động nhưng chưa nêu tên hoặc mã hoạt động. Hãy lịch sự hỏi lại tên hoặc mã hoạt động."
)

// FallbackPrompt is sent when no data can be fetched for the question.
func FallbackPrompt(lex *lexicon.Lexicon, query, note string) string {
	var b strings.Builder
	b.WriteString(lexicon.AssistantContext)
	b.WriteString("\n\n")
	b.WriteString(lex.TrainingPrompt())
	b.WriteString("\n")
	b.WriteString(note)
	fmt.Fprintf(&b, "\n\nCâu hỏi: %s\n\nTrả lời:", query)
	return b.String()
}

func apology(err error) string {
	return fmt.Sprintf("Xin lỗi, tôi đang gặp sự cố khi truy xuất thông tin (%s). Vui lòng thử lại sau.", err.Error())
}

func notFound(term string) string {
	return fmt.Sprintf("Không tìm thấy hoạt động nào có tên %q. Bạn hãy kiểm tra lại tên hoặc thử tìm với từ khóa khác.", term)
}

// collectionOf turns "/activities/{id}/" into "activities".
func collectionOf(endpoint string) string {
	if i := strings.Index(endpoint, "{id}"); i >= 0 {
		endpoint = endpoint[:i]
	}
	return strings.Trim(endpoint, "/")
}
