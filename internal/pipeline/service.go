package pipeline

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/ppiankov/celestial/internal/cache"
	"github.com/ppiankov/celestial/internal/extract"
	"github.com/ppiankov/celestial/internal/model"
	"github.com/ppiankov/celestial/internal/source"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNoSigns is returned when an uploaded document yields no sign blocks
	ErrNoSigns = errors.New("0 signs found")

	// ErrUnavailable is returned when no source can supply a horoscope
	ErrUnavailable = errors.New("horoscope unavailable")

	// ErrUnknownSign is returned when a lookup token names no sign
	ErrUnknownSign = errors.New("unknown sign")
)

// Remote reads published batch files from the storage host
type Remote interface {
	FetchBatch(ctx context.Context, date, lang string) (*source.Batch, error)
	FetchSignJSON(ctx context.Context, date string, sign model.Sign, lang string) (*model.Horoscope, error)
}

// Generator produces a horoscope with an AI provider
type Generator interface {
	IsEnabled() bool
	Generate(ctx context.Context, sign model.Sign, date, lang string) (*model.Horoscope, error)
}

// RateWaiter throttles calls sharing a key
type RateWaiter interface {
	Wait(ctx context.Context, key string) error
}

// Options wires a Service. Only Store is required.
type Options struct {
	Store           cache.BatchStore
	Remote          Remote
	Generator       Generator
	Limiter         RateWaiter
	Logger          *zap.Logger
	DefaultLanguage string
}

// Service ingests uploaded batch documents and answers horoscope lookups
type Service struct {
	store       cache.BatchStore
	remote      Remote
	generator   Generator
	limiter     RateWaiter
	logger      *zap.Logger
	defaultLang string
	now         func() time.Time

	mu      sync.Mutex // guards read-modify-write of stored batches
	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
	fetches singleflight.Group
}

// NewService creates a Service from opts
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lang := strings.ToLower(strings.TrimSpace(opts.DefaultLanguage))
	if lang == "" {
		lang = "en"
	}

	return &Service{
		store:       opts.Store,
		remote:      opts.Remote,
		generator:   opts.Generator,
		limiter:     opts.Limiter,
		logger:      logger,
		defaultLang: lang,
		now:         time.Now,
		entropy:     ulid.Monotonic(rand.Reader, 0),
	}
}

// Today returns the current date in YYYY-MM-DD form
func (s *Service) Today() string {
	return s.now().Format(time.DateOnly)
}

var filenameDatePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)

// FilenameHints infers the batch date and language from an upload name
// such as "2025-01-15_hi.txt". Missing hints are returned empty.
func FilenameHints(name string) (date, lang string) {
	base := filepath.Base(name)
	if m := filenameDatePattern.FindStringSubmatch(base); m != nil {
		date = m[1]
	}

	lower := strings.ToLower(base)
	switch {
	case strings.Contains(lower, "_hi"):
		lang = "hi"
	case strings.Contains(lower, "_en"):
		lang = "en"
	}
	return date, lang
}

// IngestRequest is one uploaded batch document. Explicit Date and Lang win
// over filename hints.
type IngestRequest struct {
	Name    string
	Content string
	Date    string
	Lang    string
}

// IngestResult summarises a stored upload
type IngestResult struct {
	ID      string
	Date    string
	Lang    string
	Signs   []model.Sign
	Dropped []string
	Blocks  int
}

// Ingest parses an uploaded document and stores its batch under
// (date, lang), replacing anything stored for that key
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	date, lang := s.resolveKey(req)

	text := req.Content
	switch strings.ToLower(filepath.Ext(req.Name)) {
	case ".html", ".htm":
		converted, err := extract.HTMLToText(text)
		if err != nil {
			return nil, fmt.Errorf("convert HTML: %w", err)
		}
		text = converted
	}

	parsed := extract.Parse(text)
	for _, token := range parsed.Dropped {
		s.logger.Warn("dropped unidentifiable block",
			zap.String("header", token),
			zap.String("file", req.Name))
	}

	if len(parsed.Batch) == 0 {
		return nil, fmt.Errorf("%s: %w", displayName(req.Name), ErrNoSigns)
	}

	batch := parsed.Batch.WithSource(model.SourceManualUpload)

	s.mu.Lock()
	err := s.store.SetBatch(date, lang, batch)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("store batch: %w", err)
	}

	result := &IngestResult{
		ID:      s.newID(),
		Date:    date,
		Lang:    lang,
		Signs:   batch.Signs(),
		Dropped: parsed.Dropped,
		Blocks:  parsed.Blocks,
	}

	s.logger.Info("batch ingested",
		zap.String("id", result.ID),
		zap.String("date", date),
		zap.String("lang", lang),
		zap.Int("signs", len(result.Signs)),
		zap.Int("dropped", len(result.Dropped)))

	return result, nil
}

func (s *Service) resolveKey(req IngestRequest) (string, string) {
	hintDate, hintLang := FilenameHints(req.Name)

	date := firstNonEmpty(strings.TrimSpace(req.Date), hintDate, s.Today())
	lang := firstNonEmpty(strings.ToLower(strings.TrimSpace(req.Lang)), hintLang, s.defaultLang)
	return date, lang
}

func (s *Service) newID() string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}

// LookupRequest asks for one sign's horoscope. Sign may be any alias the
// parser understands ("Mesh", "मेष", "aries").
type LookupRequest struct {
	Sign    string
	Date    string
	Lang    string
	AllowAI bool
}

// LookupResult is a found horoscope and where it came from
type LookupResult struct {
	Sign      model.Sign
	Date      string
	Lang      string
	Horoscope model.Horoscope
}

// Source returns the provenance tag of the found record
func (r *LookupResult) Source() model.Source {
	return r.Horoscope.Meta.Source
}

// Lookup resolves a horoscope from the batch store, then the remote batch
// TXT, then remote per-sign JSON, then the AI provider when allowed.
// Remote and AI results are merged into the store.
func (s *Service) Lookup(ctx context.Context, req LookupRequest) (*LookupResult, error) {
	sign, ok := extract.ResolveSign(req.Sign)
	if !ok {
		return nil, fmt.Errorf("%q: %w", req.Sign, ErrUnknownSign)
	}

	date := firstNonEmpty(strings.TrimSpace(req.Date), s.Today())
	lang := firstNonEmpty(strings.ToLower(strings.TrimSpace(req.Lang)), s.defaultLang)
	found := func(h model.Horoscope) *LookupResult {
		if h.Meta.Source == "" {
			h.Meta.Source = model.SourceManualUpload
		}
		return &LookupResult{Sign: sign, Date: date, Lang: lang, Horoscope: h}
	}

	if batch, ok := s.store.GetBatch(date, lang); ok {
		if h, ok := batch[sign]; ok {
			return found(h), nil
		}
	}

	// non-zodiac identities only exist in uploaded batches
	if !sign.IsCanonical() {
		return nil, fmt.Errorf("%q: %w", req.Sign, ErrUnknownSign)
	}

	if s.remote != nil {
		h, err := s.lookupRemoteBatch(ctx, date, lang, sign)
		if err != nil {
			return nil, err
		}
		if h != nil {
			return found(*h), nil
		}

		h, err = s.remote.FetchSignJSON(ctx, date, sign, lang)
		switch {
		case err == nil:
			s.merge(date, lang, sign, *h)
			return found(*h), nil
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case !errors.Is(err, source.ErrNotFound):
			s.logger.Warn("remote sign JSON failed", zap.String("sign", string(sign)), zap.Error(err))
		}
	}

	if req.AllowAI && s.generator != nil && s.generator.IsEnabled() {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx, "llm"); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
		}
		h, err := s.generator.Generate(ctx, sign, date, lang)
		if err != nil {
			return nil, fmt.Errorf("%s %s/%s: %w: %w", sign, date, lang, ErrUnavailable, err)
		}
		s.merge(date, lang, sign, *h)
		return found(*h), nil
	}

	return nil, fmt.Errorf("%s %s/%s: %w", sign, date, lang, ErrUnavailable)
}

// remoteFetchTimeout bounds a shared batch fetch, which outlives the
// context of the lookup that started it
const remoteFetchTimeout = 30 * time.Second

// lookupRemoteBatch fetches and stores the day's published batch TXT.
// Concurrent lookups for the same key share one fetch; each caller stops
// waiting when its own ctx ends. It returns nil when the batch is missing
// or lacks sign.
func (s *Service) lookupRemoteBatch(ctx context.Context, date, lang string, sign model.Sign) (*model.Horoscope, error) {
	key := cache.BatchKey(date, lang)
	ch := s.fetches.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), remoteFetchTimeout)
		defer cancel()

		remote, err := s.remote.FetchBatch(fetchCtx, date, lang)
		if err != nil {
			return nil, err
		}

		parsed := extract.Parse(remote.Text)
		for _, token := range parsed.Dropped {
			s.logger.Warn("dropped unidentifiable block",
				zap.String("header", token),
				zap.String("path", remote.Path))
		}
		batch := parsed.Batch.WithSource(model.SourceCloud)
		s.mergeBatch(date, lang, batch)

		s.logger.Debug("remote batch loaded",
			zap.String("path", remote.Path),
			zap.Int("signs", len(batch)))
		return batch, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		if !errors.Is(res.Err, source.ErrNotFound) {
			s.logger.Warn("remote batch failed",
				zap.String("date", date),
				zap.String("lang", lang),
				zap.Error(res.Err))
		}
		return nil, nil
	}

	if h, ok := res.Val.(model.Batch)[sign]; ok {
		return &h, nil
	}
	return nil, nil
}

// merge stores one record alongside whatever the key already holds
func (s *Service) merge(date, lang string, sign model.Sign, h model.Horoscope) {
	s.mergeBatch(date, lang, model.Batch{sign: h})
}

// mergeBatch adds records for signs the stored batch does not cover.
// Records already stored for a sign are kept.
func (s *Service) mergeBatch(date, lang string, incoming model.Batch) {
	if len(incoming) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(model.Batch, len(incoming))
	if existing, ok := s.store.GetBatch(date, lang); ok {
		for sign, h := range existing {
			merged[sign] = h
		}
	}
	for sign, h := range incoming {
		if _, ok := merged[sign]; !ok {
			merged[sign] = h
		}
	}

	if err := s.store.SetBatch(date, lang, merged); err != nil {
		s.logger.Warn("store merge failed",
			zap.String("date", date),
			zap.String("lang", lang),
			zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func displayName(name string) string {
	if name == "" {
		return "upload"
	}
	return filepath.Base(name)
}
