package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/openfroyo/lzconfig/pkg/schema"
	"github.com/openfroyo/lzconfig/pkg/telemetry"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// State is the stage a load reached.
type State string

const (
	StateUnparsed              State = "unparsed"
	StateStructurallyValidated State = "structurally-validated"
	StateSemanticallyValidated State = "semantically-validated"
	StateRejected              State = "rejected"
)

// Metric source labels.
const (
	sourceFile    = "file"
	sourceString  = "string"
	sourceContent = "content"
)

// LoadResult describes one load attempt. Config is set only when State is
// StateSemanticallyValidated.
type LoadResult struct {
	ID       string        `json:"id"`
	Source   string        `json:"source"`
	State    State         `json:"state"`
	Config   *GlobalConfig `json:"config,omitempty"`
	Err      error         `json:"-"`
	Issues   []string      `json:"issues,omitempty"`
	LoadedAt time.Time     `json:"loadedAt"`
	Duration time.Duration `json:"duration"`
}

// Valid reports whether the load produced a configuration.
func (r *LoadResult) Valid() bool {
	return r.State == StateSemanticallyValidated
}

// Loader reads, parses, defaults and validates global configuration
// documents. A Loader is safe for concurrent use.
type Loader struct {
	root    *schema.InterfaceType
	logger  zerolog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
	rules   []Rule
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. The loader adds component=config-loader.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithMetrics records load metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

// WithTracer traces loads.
func WithTracer(t *telemetry.Tracer) Option {
	return func(l *Loader) {
		l.tracer = t
	}
}

// WithRules adds semantic rules run after the built-in partition rule.
func WithRules(rules ...Rule) Option {
	return func(l *Loader) {
		l.rules = append(l.rules, rules...)
	}
}

// WithSchema replaces the root schema. Nil is ignored.
func WithSchema(root *schema.InterfaceType) Option {
	return func(l *Loader) {
		if root != nil {
			l.root = root
		}
	}
}

// NewLoader creates a loader using the default schema registry and the
// global zerolog logger.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		root:   DefaultRegistry().GlobalConfig(),
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With().Str("component", "config-loader").Logger()
	return l
}

// LoadFromDirectory loads global-config.yaml from dir. Every failure is
// returned as a *LoadError.
func (l *Loader) LoadFromDirectory(ctx context.Context, dir string) (*GlobalConfig, error) {
	result, err := l.LoadFile(ctx, filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadFile loads the document at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (*LoadResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		result := &LoadResult{
			ID:       uuid.NewString(),
			Source:   path,
			State:    StateRejected,
			LoadedAt: start,
		}
		return l.finish(ctx, sourceFile, result, newLoadError(ErrorKindSource, path, err), start)
	}

	return l.load(ctx, sourceFile, path, content, start)
}

// Load validates content read from source. source names the document in
// logs and errors. The returned result is never nil.
func (l *Loader) Load(ctx context.Context, source string, content []byte) (*LoadResult, error) {
	return l.load(ctx, sourceContent, source, content, time.Now())
}

// LoadFromString loads a document held in memory. Unlike the file-based
// entry points it never returns an error: any failure is logged and the
// result is nil.
func (l *Loader) LoadFromString(ctx context.Context, content string) *GlobalConfig {
	result, err := l.load(ctx, sourceString, FileName, []byte(content), time.Now())
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("load_id", result.ID).
			Str("kind", string(KindOf(err))).
			Msg("failed to load configuration from string")
		return nil
	}
	return result.Config
}

func (l *Loader) load(ctx context.Context, origin, source string, content []byte, start time.Time) (*LoadResult, error) {
	result := &LoadResult{
		ID:       uuid.NewString(),
		Source:   source,
		State:    StateUnparsed,
		LoadedAt: start,
	}

	ctx, span := l.tracer.StartLoadSpan(ctx, result.ID, source)
	defer span.End()

	if err := ctx.Err(); err != nil {
		result.State = StateRejected
		return l.finish(ctx, origin, result, err, start)
	}

	generic, err := Deserialize(content)
	if err != nil {
		result.State = StateRejected
		return l.finish(ctx, origin, result, newLoadError(ErrorKindDeserialization, source, err), start)
	}

	values, err := l.parse(ctx, generic)
	if err != nil {
		result.State = StateRejected
		return l.finish(ctx, origin, result, newLoadError(ErrorKindStructural, source, err), start)
	}
	result.State = StateStructurallyValidated

	cfg, err := l.build(ctx, filepath.Base(source), values)
	if err != nil {
		result.State = StateRejected
		return l.finish(ctx, origin, result, err, start)
	}

	result.State = StateSemanticallyValidated
	result.Config = cfg
	return l.finish(ctx, origin, result, nil, start)
}

func (l *Loader) parse(ctx context.Context, generic any) (schema.Object, error) {
	_, span := l.tracer.Start(ctx, telemetry.SpanParse)
	defer span.End()

	values, err := schema.ParseObject(l.root, generic)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.RecordSuccess(span)
	return values, nil
}

// build overlays values on the defaults, checks the model tags and runs
// the semantic rules.
func (l *Loader) build(ctx context.Context, file string, values schema.Object) (*GlobalConfig, error) {
	ctx, span := l.tracer.Start(ctx, telemetry.SpanSemantic)
	defer span.End()

	cfg := buildGlobalConfig(GlobalConfigProps{ConfigFile: file}, values)
	if err := CheckModel(cfg); err != nil {
		telemetry.RecordError(span, err)
		return nil, newLoadError(ErrorKindStructural, file, err)
	}

	if err := NewSemanticValidator(l.rules...).Validate(ctx, file, cfg, values); err != nil {
		telemetry.RecordError(span, err)
		var semErr *SemanticValidationError
		if errors.As(err, &semErr) {
			return nil, newLoadError(ErrorKindSemantic, file, err)
		}
		return nil, err
	}
	telemetry.RecordSuccess(span)
	return cfg, nil
}

func (l *Loader) finish(ctx context.Context, origin string, result *LoadResult, err error, start time.Time) (*LoadResult, error) {
	result.Duration = time.Since(start)
	span := telemetry.SpanFromContext(ctx)
	span.SetAttributes(telemetry.AttrState.String(string(result.State)))

	logger := l.logger.With().
		Str("load_id", result.ID).
		Str("source", result.Source).
		Dur("duration", result.Duration).
		Logger()

	if err != nil {
		result.Err = err
		result.Issues = Issues(err)
		kind := KindOf(err)

		l.metrics.RecordLoad(origin, telemetry.ResultRejected, result.Duration)
		if kind == ErrorKindStructural || kind == ErrorKindSemantic {
			l.metrics.RecordViolations(string(kind), len(result.Issues))
		}
		span.SetAttributes(
			telemetry.AttrErrorKind.String(string(kind)),
			telemetry.AttrIssueCount.Int(len(result.Issues)),
		)
		telemetry.RecordError(span, err)

		logger.Debug().Err(err).Str("kind", string(kind)).Msg("configuration rejected")
		return result, err
	}

	l.metrics.RecordLoad(origin, telemetry.ResultValid, result.Duration)
	telemetry.RecordSuccess(span)
	logger.Debug().
		Str("home_region", result.Config.HomeRegion).
		Int("enabled_regions", len(result.Config.EnabledRegions)).
		Msg("configuration loaded")
	return result, nil
}

// Issues flattens a load failure into one message per violation.
func Issues(err error) []string {
	if err == nil {
		return nil
	}

	var schemaErr *schema.SchemaValidationError
	if errors.As(err, &schemaErr) {
		issues := make([]string, 0, schemaErr.Len())
		for _, v := range schemaErr.Violations {
			issues = append(issues, v.Error())
		}
		return issues
	}

	var semErr *SemanticValidationError
	if errors.As(err, &semErr) {
		return append([]string(nil), semErr.Issues...)
	}

	return []string{err.Error()}
}

// Deserialize decodes YAML or JSON content into a generic value tree of
// maps, lists and scalars.
func Deserialize(content []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return normalize(raw), nil
}

// normalize converts mappings with non-string keys into string-keyed maps.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = normalize(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	}
	return v
}

// LoadFromDirectory loads global-config.yaml from dir with a default
// loader, propagating every failure.
func LoadFromDirectory(dir string) (*GlobalConfig, error) {
	return NewLoader().LoadFromDirectory(context.Background(), dir)
}

// LoadFromString loads content with a default loader, returning nil and
// logging on any failure.
func LoadFromString(content string) *GlobalConfig {
	return NewLoader().LoadFromString(context.Background(), content)
}
