package rules

import (
	"fmt"
	"log/slog"

	"cconform/internal/engine/findings"
	"cconform/internal/engine/parser"
	"cconform/internal/shared/observability"
)

// Strictness is the declared weight of a rule in the standard it
// enforces. It maps onto finding severities: must -> error, should ->
// warning, may -> info (never emitted by default).
type Strictness string

const (
	StrictnessMust   Strictness = "must"
	StrictnessShould Strictness = "should"
	StrictnessMay    Strictness = "may"
)

// Severity maps a strictness level to the finding severity it emits.
func (s Strictness) Severity() findings.Severity {
	switch s {
	case StrictnessMust:
		return findings.SeverityError
	case StrictnessShould:
		return findings.SeverityWarning
	default:
		return findings.SeverityInfo
	}
}

// Rule is one independent check over a parsed file. Rules are pure:
// they read the parse result, never mutate it, and never depend on
// another rule's output.
type Rule interface {
	ID() string
	Strictness() Strictness
	Evaluate(res *parser.ParseResult, opts *Options) []findings.Finding
}

// Options is the rule configuration handed down from the config layer.
type Options struct {
	IndentWidth         int
	MaxLineLength       int
	VerbWhitelist       []string
	AllowedMagicNumbers []int
	TypeSuffixes        []string

	// Enabled restricts evaluation to the listed rule IDs. Empty means
	// every registered rule runs.
	Enabled []string

	// IncludeInfo also emits findings from "may" rules.
	IncludeInfo bool
}

// DefaultOptions returns the options used when no configuration is
// provided.
func DefaultOptions() Options {
	return Options{
		IndentWidth:         4,
		MaxLineLength:       80,
		VerbWhitelist:       DefaultVerbs(),
		AllowedMagicNumbers: []int{0, 1, -1},
		TypeSuffixes:        []string{"_t"},
	}
}

// DefaultVerbs is the built-in verb vocabulary for the verb-noun
// function naming heuristic. The standard leaves the list to
// configuration; this is the fallback.
func DefaultVerbs() []string {
	return []string{
		"add", "calc", "calculate", "check", "clear", "close", "compute",
		"configure", "convert", "create", "deinit", "destroy", "disable",
		"dispatch", "enable", "find", "format", "get", "handle", "init",
		"is", "load", "open", "parse", "poll", "process", "read",
		"receive", "register", "release", "reset", "run", "send", "set",
		"start", "stop", "store", "update", "validate", "wait", "write",
	}
}

func (o *Options) allowsMagicNumber(v int) bool {
	for _, allowed := range o.AllowedMagicNumbers {
		if v == allowed {
			return true
		}
	}
	return false
}

func (o *Options) hasVerb(word string) bool {
	for _, verb := range o.VerbWhitelist {
		if word == verb {
			return true
		}
	}
	return false
}

func (o *Options) ruleEnabled(id string) bool {
	if len(o.Enabled) == 0 {
		return true
	}
	for _, enabled := range o.Enabled {
		if enabled == id {
			return true
		}
	}
	return false
}

// Engine runs a registry of rules over a parse result. Rules run in
// registration order but are order-insensitive by contract; the engine
// concatenates whatever each produces.
type Engine struct {
	rules []Rule
	opts  Options
}

// NewEngine builds an engine with every standard rule registered.
func NewEngine(opts Options) *Engine {
	e := &Engine{opts: opts}
	for _, r := range StandardRules() {
		e.Register(r)
	}
	return e
}

// StandardRules returns the full standard rule set in a stable order.
func StandardRules() []Rule {
	return []Rule{
		FileNaming{},
		ConstNaming{},
		ConstDefine{},
		TypeNaming{},
		VarNaming{},
		FuncNaming{},
		Indentation{},
		BraceRequired{},
		OneStatement{},
		LineLength{},
		ComparisonOrder{},
		SwitchDefault{},
		SwitchBreak{},
		DocComment{},
		MagicNumber{},
	}
}

// Register appends a rule to the registry.
func (e *Engine) Register(r Rule) {
	e.rules = append(e.rules, r)
}

// Rules returns the registered rules.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate runs every enabled rule over the parse result and returns
// the concatenated findings, prefixed with the parser's recovery
// markers. A faulting rule is contained: its panic becomes a single
// diagnostic finding naming the rule and the remaining rules still
// run.
func (e *Engine) Evaluate(res *parser.ParseResult) []findings.Finding {
	out := recoveryFindings(res)

	for _, rule := range e.rules {
		if !e.opts.ruleEnabled(rule.ID()) {
			continue
		}
		if rule.Strictness() == StrictnessMay && !e.opts.IncludeInfo {
			continue
		}
		out = append(out, e.evaluateOne(rule, res)...)
	}
	return out
}

func (e *Engine) evaluateOne(rule Rule, res *parser.ParseResult) (result []findings.Finding) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("rule panicked", "rule", rule.ID(), "file", res.File.Path, "panic", r)
			observability.RulePanicsTotal.WithLabelValues(rule.ID()).Inc()
			result = []findings.Finding{{
				RuleID:   "rule-internal",
				Severity: findings.SeverityError,
				FilePath: res.File.Path,
				Line:     1,
				Column:   1,
				Message:  fmt.Sprintf("rule %s failed while evaluating this file: %v", rule.ID(), r),
			}}
		}
	}()
	return rule.Evaluate(res, &e.opts)
}

// recoveryFindings converts the parser's repair markers into findings
// so damaged input is visible in reports.
func recoveryFindings(res *parser.ParseResult) []findings.Finding {
	out := make([]findings.Finding, 0, len(res.Recoveries))
	for _, rec := range res.Recoveries {
		out = append(out, findings.Finding{
			RuleID:   rec.Kind,
			Severity: findings.SeverityWarning,
			FilePath: res.File.Path,
			Line:     rec.Pos.Line,
			Column:   rec.Pos.Column,
			Message:  rec.Message,
		})
	}
	return out
}

// finding is the shared constructor all rules use.
func finding(rule Rule, res *parser.ParseResult, line, column int, message string) findings.Finding {
	return findings.Finding{
		RuleID:   rule.ID(),
		Severity: rule.Strictness().Severity(),
		FilePath: res.File.Path,
		Line:     line,
		Column:   column,
		Message:  message,
	}
}
