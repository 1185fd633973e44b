package analysis

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/licensetower/pkg/cache"
	"github.com/matzehuels/licensetower/pkg/compat"
	"github.com/matzehuels/licensetower/pkg/errors"
	"github.com/matzehuels/licensetower/pkg/integrations"
	"github.com/matzehuels/licensetower/pkg/license"
	"github.com/matzehuels/licensetower/pkg/manifest"
	"github.com/matzehuels/licensetower/pkg/observability"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultConcurrency = 8
	DefaultTimeout     = 10 * time.Second
)

// TextSource supplies license texts on a cache miss.
type TextSource interface {
	FetchText(ctx context.Context, licenseName string) (text, source string, err error)
}

// Result is the outcome for one dependency.
type Result struct {
	Dependency manifest.Dependency `json:"dependency"`
	Info       license.Info        `json:"info"`
	Cached     bool                `json:"cached"`          // Served from the cache
	Error      string              `json:"error,omitempty"` // Why the fetch fell back to a sentinel
}

// Summary counts results by origin.
type Summary struct {
	Total   int `json:"total"`
	Cached  int `json:"cached"`
	Fetched int `json:"fetched"`
	Failed  int `json:"failed"` // Results carrying a sentinel license
}

// Report is the output of [Analyzer.Analyze].
type Report struct {
	ID              string          `json:"id"`
	GeneratedAt     time.Time       `json:"generatedAt"`
	Dependencies    []Result        `json:"dependencies"`
	Licenses        []string        `json:"licenses"` // Distinct normalized licenses, first-seen order
	Compatibility   compat.Analysis `json:"compatibility"`
	Risk            compat.Risk     `json:"risk"`
	Recommendations []string        `json:"recommendations"`
	Summary         Summary         `json:"summary"`
	Duration        time.Duration   `json:"duration"`
}

// ProgressFunc is called after each dependency resolves. Calls are
// serialized; done counts up to total.
type ProgressFunc func(done, total int, r Result)

// Options configures an [Analyzer].
type Options struct {
	Cache       *cache.Cache           // Nil disables caching
	Engine      *compat.Engine         // Defaults to compat.Default()
	Fetchers    []integrations.Fetcher // One per ecosystem; later entries win
	Text        TextSource             // Optional license text fallback
	Concurrency int                    // Defaults to DefaultConcurrency
	Timeout     time.Duration          // Per-fetch deadline; defaults to DefaultTimeout
	Progress    ProgressFunc           // Optional
	Clock       clockwork.Clock        // Defaults to the real clock
	Logger      *log.Logger            // Defaults to a discarding logger
}

// Analyzer resolves dependency licenses and evaluates them. It is safe for
// concurrent use.
type Analyzer struct {
	cache       *cache.Cache
	engine      *compat.Engine
	fetchers    map[license.Ecosystem]integrations.Fetcher
	text        TextSource
	concurrency int
	timeout     time.Duration
	progress    ProgressFunc
	clock       clockwork.Clock
	logger      *log.Logger
}

// New creates an Analyzer from opts.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		cache:       opts.Cache,
		engine:      opts.Engine,
		fetchers:    make(map[license.Ecosystem]integrations.Fetcher, len(opts.Fetchers)),
		text:        opts.Text,
		concurrency: opts.Concurrency,
		timeout:     opts.Timeout,
		progress:    opts.Progress,
		clock:       opts.Clock,
		logger:      opts.Logger,
	}
	for _, f := range opts.Fetchers {
		a.fetchers[f.Ecosystem()] = f
	}
	if a.engine == nil {
		a.engine = compat.Default()
	}
	if a.concurrency <= 0 {
		a.concurrency = DefaultConcurrency
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}
	if a.clock == nil {
		a.clock = clockwork.NewRealClock()
	}
	if a.logger == nil {
		a.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return a
}

// Engine returns the compatibility engine reports are evaluated with.
func (a *Analyzer) Engine() *compat.Engine { return a.engine }

// Analyze resolves every dependency and builds a report. Results keep the
// order of deps. The only error is cancellation of ctx.
func (a *Analyzer) Analyze(ctx context.Context, deps []manifest.Dependency) (report *Report, err error) {
	start := a.clock.Now()
	hooks := observability.Analysis()
	hooks.OnAnalyzeStart(ctx, len(deps))
	defer func() {
		hooks.OnAnalyzeComplete(ctx, len(deps), a.clock.Since(start), err)
	}()

	results := make([]Result, len(deps))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, dep := range deps {
		g.Go(func() error {
			r, err := a.Resolve(gctx, dep)
			if err != nil {
				return err
			}
			results[i] = r

			if a.progress != nil {
				mu.Lock()
				done++
				a.progress(done, len(deps), r)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report = a.Evaluate(results)
	report.GeneratedAt = start.UTC()
	report.Duration = a.clock.Since(start)

	a.logger.Info("analysis complete",
		"dependencies", report.Summary.Total,
		"cached", report.Summary.Cached,
		"failed", report.Summary.Failed,
		"risk", report.Risk,
		"duration", report.Duration)
	return report, nil
}

// Evaluate builds a report from already resolved results.
func (a *Analyzer) Evaluate(results []Result) *Report {
	report := &Report{
		ID:           uuid.NewString(),
		GeneratedAt:  a.clock.Now().UTC(),
		Dependencies: results,
	}
	var all []string
	for _, r := range results {
		all = append(all, a.Components(r.Info.License)...)
		report.Summary.Total++
		switch {
		case license.IsSentinel(r.Info.License):
			report.Summary.Failed++
		case r.Cached:
			report.Summary.Cached++
		default:
			report.Summary.Fetched++
		}
	}
	report.Compatibility = a.engine.Analyze(all)
	report.Licenses = report.Compatibility.Matrix.Licenses
	report.Risk = a.engine.RiskLevel(report.Licenses)
	report.Recommendations = a.engine.Recommendations(report.Licenses)
	return report
}

// Components normalizes a license string into the names it is evaluated
// as. A name the knowledge base knows is kept whole; compound expressions
// are split into their parts.
func (a *Analyzer) Components(expr string) []string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	if n := a.engine.Normalize(expr); a.known(n) {
		return []string{n}
	}
	parts := license.Split(expr)
	if len(parts) == 0 {
		return nil
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = a.engine.Normalize(p)
	}
	return out
}

func (a *Analyzer) known(name string) bool {
	if license.IsSentinel(name) {
		return true
	}
	_, ok := a.engine.KnowledgeBase().CompatibleWith(name)
	return ok
}

// Resolve returns the license record for one dependency, consulting the
// cache before the registry. Fetch failures resolve to a sentinel and are
// cached; only cancellation of ctx is returned as an error.
func (a *Analyzer) Resolve(ctx context.Context, dep manifest.Dependency) (Result, error) {
	eco := string(dep.Ecosystem)
	if a.cache != nil {
		if e, ok := a.cache.Lookup(eco, dep.Name, dep.Version); ok {
			observability.Analysis().OnFetch(ctx, eco, true, 0, nil)
			return Result{Dependency: dep, Info: e.Info, Cached: true}, nil
		}
	}

	if err := validate(dep); err != nil {
		return Result{
			Dependency: dep,
			Info:       *license.Failed(dep.Name, dep.Version, license.Unknown),
			Error:      errors.UserMessage(err),
		}, nil
	}

	f, ok := a.fetchers[dep.Ecosystem]
	if !ok {
		err := errors.New(errors.ErrCodeUnsupported, "no fetcher for ecosystem %q", dep.Ecosystem)
		return Result{
			Dependency: dep,
			Info:       *license.Failed(dep.Name, dep.Version, license.Unknown),
			Error:      errors.UserMessage(err),
		}, nil
	}

	fctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := a.clock.Now()
	info, err := f.FetchLicense(fctx, dep.Name, dep.Version)
	observability.Analysis().OnFetch(ctx, eco, false, a.clock.Since(start), err)

	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	r := Result{Dependency: dep}
	switch {
	case err == nil:
		r.Info = *info
		if r.Info.Name == "" {
			r.Info.Name = dep.Name
		}
		if r.Info.License == "" {
			r.Info.License = license.Unknown
		}
	case stderrors.Is(err, context.DeadlineExceeded) || fctx.Err() != nil:
		r.Info = *license.Failed(dep.Name, dep.Version, license.Timeout)
		r.Error = err.Error()
		a.logger.Warn("fetch timed out", "ecosystem", eco, "package", dep.Name, "timeout", a.timeout)
	default:
		r.Info = *license.Failed(dep.Name, dep.Version, license.Unknown)
		r.Error = err.Error()
		a.logger.Warn("fetch failed", "ecosystem", eco, "package", dep.Name, "err", err)
	}

	if a.cache != nil {
		a.cache.Store(eco, dep.Name, dep.Version, r.Info)
	}
	return r, nil
}

func validate(dep manifest.Dependency) error {
	if err := errors.ValidatePackageName(dep.Name); err != nil {
		return err
	}
	return errors.ValidateVersion(dep.Version)
}

// LicenseText returns the full text of a license, from the cache's text
// keyspace or the configured [TextSource]. Texts fetched from the source
// are cached under the requested name.
func (a *Analyzer) LicenseText(ctx context.Context, name string) (text, source string, err error) {
	if err := errors.ValidateLicenseName(name); err != nil {
		return "", "", err
	}
	if a.cache != nil {
		if e, ok := a.cache.LookupTextEntry(name); ok {
			return e.Text, e.Source, nil
		}
	}
	if a.text == nil {
		return "", "", errors.New(errors.ErrCodeLicenseNotFound, "no cached text for %q", name)
	}

	fctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, source, err = a.text.FetchText(fctx, a.engine.Normalize(name))
	if err != nil {
		return "", "", err
	}
	if a.cache != nil {
		a.cache.StoreText(name, text, source)
	}
	return text, source, nil
}
