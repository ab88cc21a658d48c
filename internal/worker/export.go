package worker

import (
	"context"
	"errors"
	"sort"

	"github.com/ppiankov/celestial/internal/model"
	"github.com/ppiankov/celestial/internal/pipeline"
)

// Lookuper resolves one sign's horoscope
type Lookuper interface {
	Lookup(ctx context.Context, req pipeline.LookupRequest) (*pipeline.LookupResult, error)
}

// SignJob looks up one sign for an export. The AI provider is only asked
// when no stored or published record exists.
type SignJob struct {
	Sign    model.Sign
	Date    string
	Lang    string
	AllowAI bool
	Lookup  Lookuper
}

// Execute executes the sign job
func (j *SignJob) Execute(ctx context.Context) Result {
	req := pipeline.LookupRequest{Sign: string(j.Sign), Date: j.Date, Lang: j.Lang}

	found, err := j.Lookup.Lookup(ctx, req)
	if err != nil && j.AllowAI && errors.Is(err, pipeline.ErrUnavailable) {
		req.AllowAI = true
		found, err = j.Lookup.Lookup(ctx, req)
	}
	if err != nil {
		return &SignResult{Sign: j.Sign, Error: err}
	}

	return &SignResult{
		Sign: j.Sign,
		Record: &pipeline.ExportRecord{
			Sign:      found.Sign,
			Horoscope: found.Horoscope,
			Origin:    pipeline.OriginFor(found.Source()),
		},
	}
}

// SignResult represents the result of a sign job
type SignResult struct {
	Sign   model.Sign
	Record *pipeline.ExportRecord
	Error  error
}

// GetError returns the error from the sign result
func (r *SignResult) GetError() error {
	return r.Error
}

// ExportReport collects an export run in zodiac order
type ExportReport struct {
	Date     string
	Lang     string
	Records  []pipeline.ExportRecord
	Failures []*SignResult
}

// ExportProcessor looks up every sign of a day concurrently
type ExportProcessor struct {
	lookup      Lookuper
	concurrency int
}

// NewExportProcessor creates a new export processor
func NewExportProcessor(lookup Lookuper, concurrency int) *ExportProcessor {
	return &ExportProcessor{
		lookup:      lookup,
		concurrency: concurrency,
	}
}

// Process looks up signs (all twelve when empty) for (date, lang)
func (p *ExportProcessor) Process(ctx context.Context, date, lang string, signs []model.Sign, allowAI bool) *ExportReport {
	if len(signs) == 0 {
		signs = model.Zodiac
	}

	pool := NewPool(ctx, p.concurrency)
	pool.Start()

	submitted := make(map[model.Sign]bool, len(signs))
	for _, sign := range signs {
		if submitted[sign] {
			continue
		}
		job := &SignJob{Sign: sign, Date: date, Lang: lang, AllowAI: allowAI, Lookup: p.lookup}
		if !pool.Submit(job) {
			break
		}
		submitted[sign] = true
	}

	report := &ExportReport{Date: date, Lang: lang}
	seen := make(map[model.Sign]bool, len(signs))
	for _, res := range pool.Wait() {
		sr := res.(*SignResult)
		seen[sr.Sign] = true
		if sr.Error != nil {
			report.Failures = append(report.Failures, sr)
			continue
		}
		report.Records = append(report.Records, *sr.Record)
	}

	// signs never run because the context ended
	for _, sign := range signs {
		if !seen[sign] {
			seen[sign] = true
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			report.Failures = append(report.Failures, &SignResult{Sign: sign, Error: err})
		}
	}

	sort.SliceStable(report.Records, func(i, j int) bool {
		return zodiacLess(report.Records[i].Sign, report.Records[j].Sign)
	})
	sort.SliceStable(report.Failures, func(i, j int) bool {
		return zodiacLess(report.Failures[i].Sign, report.Failures[j].Sign)
	})

	return report
}

func zodiacLess(a, b model.Sign) bool {
	ia, ib := a.Index(), b.Index()
	if ia < 0 || ib < 0 {
		if ia == ib {
			return a < b
		}
		return ia >= 0
	}
	return ia < ib
}
