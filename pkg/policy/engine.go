package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage"
	"github.com/open-policy-agent/opa/storage/inmem"
	"github.com/openfroyo/lzconfig/pkg/config"
	"github.com/openfroyo/lzconfig/pkg/schema"
	"github.com/openfroyo/lzconfig/pkg/telemetry"
	"github.com/rs/zerolog"
)

// RuleName is the name the engine registers under as a semantic rule.
const RuleName = "policies"

// Engine evaluates Rego policies against validated global configurations.
type Engine struct {
	mu              sync.RWMutex
	policies        map[string]*compiledPolicy
	store           storage.Store
	logger          zerolog.Logger
	tracer          *telemetry.Tracer
	metrics         *telemetry.Metrics
	builtinPolicies []Policy
}

// compiledPolicy represents a compiled Rego policy.
type compiledPolicy struct {
	policy   *Policy
	module   *ast.Module
	query    rego.PreparedEvalQuery
	compiled time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineTracer traces each evaluation.
func WithEngineTracer(t *telemetry.Tracer) EngineOption {
	return func(e *Engine) { e.tracer = t }
}

// WithEngineMetrics counts policy violations.
func WithEngineMetrics(m *telemetry.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithoutBuiltins starts the engine with no built-in policies.
func WithoutBuiltins() EngineOption {
	return func(e *Engine) { e.builtinPolicies = nil }
}

// NewEngine creates a new policy engine with the built-in policies loaded.
func NewEngine(logger zerolog.Logger, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		policies:        make(map[string]*compiledPolicy),
		store:           inmem.New(),
		logger:          logger.With().Str("component", "policy-engine").Logger(),
		builtinPolicies: GetBuiltinPolicies(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.loadBuiltinPolicies(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load built-in policies: %w", err)
	}

	return e, nil
}

// Evaluate runs every enabled policy against cfg. Policies that fail to
// evaluate are reported in the result's Errors and do not abort the run.
func (e *Engine) Evaluate(ctx context.Context, cfg *config.GlobalConfig) (*PolicyResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil configuration")
	}

	start := time.Now()
	ctx, span := e.tracer.Start(ctx, telemetry.SpanPolicy)
	defer span.End()

	doc, err := documentOf(cfg)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	input := &PolicyInput{
		Config: doc,
		Context: &PolicyContext{
			Partition: string(schema.PartitionOf(cfg.HomeRegion)),
			Timestamp: start,
		},
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	result := &PolicyResult{
		Allowed:           true,
		EvaluatedAt:       start,
		EvaluatedPolicies: make([]string, 0, len(e.policies)),
	}

	for _, name := range e.sortedNames() {
		cp := e.policies[name]
		if !cp.policy.Enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		result.EvaluatedPolicies = append(result.EvaluatedPolicies, name)

		violations, err := e.evaluatePolicy(ctx, cp, input)
		if err != nil {
			e.logger.Error().Err(err).Str("policy", name).Msg("Policy evaluation failed")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		for _, v := range violations {
			if v.Severity.Blocking() {
				result.Violations = append(result.Violations, v)
			} else {
				result.Warnings = append(result.Warnings, v)
			}
		}
	}

	if len(result.Violations) > 0 || len(result.Errors) > 0 {
		result.Allowed = false
	}
	result.Duration = time.Since(start)

	e.metrics.RecordViolations("policy", len(result.Violations))
	span.SetAttributes(telemetry.AttrIssueCount.Int(len(result.Violations)))
	telemetry.RecordSuccess(span)

	e.logger.Debug().
		Int("policies", len(result.EvaluatedPolicies)).
		Int("violations", len(result.Violations)).
		Int("warnings", len(result.Warnings)).
		Dur("duration", result.Duration).
		Msg("Policy evaluation complete")

	return result, nil
}

// Rule adapts the engine into a semantic validation rule. Blocking
// violations and evaluation failures become issues; warnings are logged.
func (e *Engine) Rule() config.Rule {
	return config.NewRule(RuleName, func(ctx context.Context, cfg *config.GlobalConfig, _ schema.Object) []string {
		result, err := e.Evaluate(ctx, cfg)
		if err != nil {
			return []string{fmt.Sprintf("policy evaluation failed: %v", err)}
		}

		for _, w := range result.Warnings {
			e.logger.Warn().Str("policy", w.Policy).Str("path", w.Path).Msg(w.Message)
		}

		issues := make([]string, 0, len(result.Violations)+len(result.Errors))
		for _, v := range result.Violations {
			issues = append(issues, v.String())
		}
		for _, msg := range result.Errors {
			issues = append(issues, "policy evaluation failed: "+msg)
		}
		return issues
	})
}

// documentOf converts cfg into the JSON document policies see.
func documentOf(cfg *config.GlobalConfig) (map[string]interface{}, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return doc, nil
}

// evaluatePolicy evaluates a single policy's deny set.
func (e *Engine) evaluatePolicy(ctx context.Context, cp *compiledPolicy, input *PolicyInput) ([]PolicyViolation, error) {
	ctx, span := e.tracer.Start(ctx, telemetry.SpanPolicy, telemetry.AttrPolicyName.String(cp.policy.Name))
	defer span.End()

	results, err := cp.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}

	var violations []PolicyViolation
	for _, result := range results {
		for _, expr := range result.Expressions {
			set, ok := expr.Value.([]interface{})
			if !ok {
				continue
			}
			for _, item := range set {
				violations = append(violations, e.createViolation(cp.policy, item))
			}
		}
	}

	return violations, nil
}

// createViolation creates a violation from a deny set element.
func (e *Engine) createViolation(policy *Policy, item interface{}) PolicyViolation {
	v := PolicyViolation{
		Policy:     policy.Name,
		Severity:   policy.Severity,
		DetectedAt: time.Now(),
	}

	switch val := item.(type) {
	case string:
		v.Message = val
	case map[string]interface{}:
		if msg, ok := val["message"].(string); ok {
			v.Message = msg
		}
		if sev, ok := val["severity"].(string); ok {
			v.Severity = Severity(sev)
		}
		if path, ok := val["path"].(string); ok {
			v.Path = path
		}
	default:
		v.Message = fmt.Sprintf("%v", val)
	}

	if v.Message == "" {
		v.Message = fmt.Sprintf("Policy %s violated", policy.Name)
	}
	return v
}

// compileAndStorePolicy compiles a policy and stores it. Callers hold e.mu.
func (e *Engine) compileAndStorePolicy(ctx context.Context, policy *Policy) error {
	module, err := ast.ParseModule(policy.Name+".rego", policy.Rego)
	if err != nil {
		return fmt.Errorf("failed to parse policy %s: %w", policy.Name, err)
	}

	query, err := rego.New(
		rego.Query(module.Package.Path.String()+".deny"),
		rego.ParsedModule(module),
		rego.Store(e.store),
	).PrepareForEval(ctx)
	if err != nil {
		return fmt.Errorf("failed to prepare policy %s: %w", policy.Name, err)
	}

	if policy.Severity == "" {
		policy.Severity = SeverityError
	}

	e.policies[policy.Name] = &compiledPolicy{
		policy:   policy,
		module:   module,
		query:    query,
		compiled: time.Now(),
	}

	e.logger.Debug().
		Str("policy", policy.Name).
		Str("package", module.Package.Path.String()).
		Msg("Compiled policy")

	return nil
}

// loadBuiltinPolicies loads all built-in policies.
func (e *Engine) loadBuiltinPolicies(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.builtinPolicies {
		policy := e.builtinPolicies[i]
		if err := e.compileAndStorePolicy(ctx, &policy); err != nil {
			return fmt.Errorf("failed to load built-in policy %s: %w", policy.Name, err)
		}
	}

	e.logger.Info().Int("count", len(e.builtinPolicies)).Msg("Loaded built-in policies")
	return nil
}

// AddPolicy compiles and registers a policy, replacing any policy of the same name.
func (e *Engine) AddPolicy(ctx context.Context, policy Policy) error {
	if policy.Name == "" {
		return fmt.Errorf("policy name is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.compileAndStorePolicy(ctx, &policy)
}

// GetPolicy retrieves a policy by name.
func (e *Engine) GetPolicy(name string) (*Policy, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cp, ok := e.policies[name]
	if !ok {
		return nil, fmt.Errorf("policy not found: %s", name)
	}

	policy := *cp.policy
	return &policy, nil
}

// ListPolicies returns all loaded policies ordered by name.
func (e *Engine) ListPolicies() []Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()

	policies := make([]Policy, 0, len(e.policies))
	for _, name := range e.sortedNames() {
		policies = append(policies, *e.policies[name].policy)
	}
	return policies
}

// ReloadPolicies drops user policies and recompiles the built-ins.
func (e *Engine) ReloadPolicies(ctx context.Context) error {
	e.mu.Lock()
	e.policies = make(map[string]*compiledPolicy)
	e.mu.Unlock()

	return e.loadBuiltinPolicies(ctx)
}

// EnablePolicy enables a policy.
func (e *Engine) EnablePolicy(name string) error {
	return e.setEnabled(name, true)
}

// DisablePolicy disables a policy.
func (e *Engine) DisablePolicy(name string) error {
	return e.setEnabled(name, false)
}

func (e *Engine) setEnabled(name string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp, ok := e.policies[name]
	if !ok {
		return fmt.Errorf("policy not found: %s", name)
	}

	cp.policy.Enabled = enabled
	cp.policy.UpdatedAt = time.Now()

	e.logger.Info().Str("policy", name).Bool("enabled", enabled).Msg("Policy state changed")
	return nil
}

// LoadPolicies loads policies from the given files or directories.
func (e *Engine) LoadPolicies(ctx context.Context, paths []string) error {
	loader := NewLoader(e.logger)
	policies, err := loader.LoadFromPaths(ctx, paths)
	if err != nil {
		return err
	}
	return e.addAll(ctx, policies)
}

// Watch reloads user policies whenever files under paths change. It
// returns once watching has started; call the returned loader's
// StopWatching to stop.
func (e *Engine) Watch(ctx context.Context, paths []string) (*Loader, error) {
	loader := NewLoader(e.logger)
	err := loader.Watch(ctx, paths, func(policies []Policy) error {
		if err := e.ReloadPolicies(ctx); err != nil {
			return err
		}
		return e.addAll(ctx, policies)
	})
	if err != nil {
		return nil, err
	}
	return loader, nil
}

func (e *Engine) addAll(ctx context.Context, policies []Policy) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range policies {
		if err := e.compileAndStorePolicy(ctx, &policies[i]); err != nil {
			return err
		}
	}

	e.logger.Info().Int("count", len(policies)).Msg("Loaded policies")
	return nil
}

// sortedNames returns policy names in evaluation order. Callers hold e.mu.
func (e *Engine) sortedNames() []string {
	names := make([]string, 0, len(e.policies))
	for name := range e.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
