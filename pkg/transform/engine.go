// Package transform implements the rule-based field-transformation engine
// and the record processor that drives it from a mapping list.
package transform

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gsbingo17/tms-migrate/pkg/logger"
	"github.com/gsbingo17/tms-migrate/pkg/mapping"
	"github.com/gsbingo17/tms-migrate/pkg/record"
)

// errNoSourceRecord signals a transformation that needs record context but
// was invoked without one. The combinator turns it into the identity
// fallback.
var errNoSourceRecord = errors.New("no source record available")

// input carries everything a handler may need for one field.
type input struct {
	value  interface{}
	params map[string]interface{}
	source record.Record
	// hasSource distinguishes "no record context at all" from an empty
	// record. CONCAT and JOIN behave differently in that case.
	hasSource bool
}

// handlerFunc computes a target value or reports why it could not. Returning
// an error never reaches the caller of Apply; it selects the fallback.
type handlerFunc func(in input) (interface{}, error)

// Engine applies a single transformation to a single value. It is stateless
// and performs no I/O. Apply never fails: a broken transformation degrades
// to the identity mapping instead of aborting the whole record.
type Engine struct {
	handlers map[mapping.TransformationType]handlerFunc
	formulas FormulaEvaluator
	log      *logger.Logger
}

// NewEngine creates an engine with one handler per transformation type.
// formulas may be nil, in which case CUSTOM degrades to identity.
func NewEngine(formulas FormulaEvaluator, log *logger.Logger) *Engine {
	e := &Engine{
		formulas: formulas,
		log:      log,
	}
	e.handlers = map[mapping.TransformationType]handlerFunc{
		mapping.TypeNone:      e.applyNone,
		mapping.TypeConcat:    e.applyConcat,
		mapping.TypeSubstring: e.applySubstring,
		mapping.TypeReplace:   e.applyReplace,
		mapping.TypeMapValues: e.applyMapValues,
		mapping.TypeSplit:     e.applySplit,
		mapping.TypeJoin:      e.applyJoin,
		mapping.TypeUppercase: e.applyUppercase,
		mapping.TypeLowercase: e.applyLowercase,
		mapping.TypeCustom:    e.applyCustom,
	}
	return e
}

// Apply transforms sourceValue according to typ and params. source provides
// record context for multi-field transformations and may be nil. Any internal
// error, unknown type or panic falls back to sourceValue unchanged.
func (e *Engine) Apply(sourceValue interface{}, typ mapping.TransformationType, params map[string]interface{}, source record.Record) (result interface{}) {
	result = sourceValue

	defer func() {
		if r := recover(); r != nil {
			e.log.Warnf("transformation %s panicked, keeping original value: %v", typ, r)
			result = sourceValue
		}
	}()

	handler, ok := e.handlers[typ]
	if !ok {
		e.log.Warnf("unknown transformation type %q, keeping original value", typ)
		return sourceValue
	}

	out, err := handler(input{
		value:     sourceValue,
		params:    params,
		source:    source,
		hasSource: source != nil,
	})
	if err != nil {
		e.log.Debugf("transformation %s failed, keeping original value: %v", typ, err)
		return sourceValue
	}
	return out
}

func (e *Engine) applyNone(in input) (interface{}, error) {
	return in.value, nil
}

func (e *Engine) applyConcat(in input) (interface{}, error) {
	if !in.hasSource {
		return nil, errNoSourceRecord
	}
	separator := stringParam(in.params, "separator")

	var parts []string
	for _, field := range fieldsParam(in.params) {
		value, ok := in.source.Get(field)
		if !ok {
			continue
		}
		parts = append(parts, stringify(value))
	}
	return strings.Join(parts, separator), nil
}

func (e *Engine) applySubstring(in input) (interface{}, error) {
	runes := []rune(stringify(in.value))

	start := clampIndex(intParam(in.params, "start", 0), len(runes))
	end := len(runes)
	if raw, ok := in.params["end"]; ok && raw != nil {
		end = clampIndex(intParam(in.params, "end", len(runes)), len(runes))
	}
	if start >= end {
		return "", nil
	}
	return string(runes[start:end]), nil
}

func (e *Engine) applyReplace(in input) (interface{}, error) {
	source := stringify(in.value)
	pattern := stringParam(in.params, "pattern")
	replacement := stringParam(in.params, "replacement")

	// A pattern wrapped in /…/ is a regular expression; anything else is a
	// literal substring, replaced globally.
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		re, err := regexp.Compile(pattern[1 : len(pattern)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid replace pattern %q: %w", pattern, err)
		}
		return re.ReplaceAllString(source, replacement), nil
	}
	return strings.ReplaceAll(source, pattern, replacement), nil
}

func (e *Engine) applyMapValues(in input) (interface{}, error) {
	// Null passes through unchanged here, unlike the string transforms.
	if in.value == nil {
		return in.value, nil
	}
	mappings, ok := in.params["mappings"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("mappings parameter is missing or not a map")
	}
	if mapped, ok := mappings[stringify(in.value)]; ok {
		return mapped, nil
	}
	return in.value, nil
}

func (e *Engine) applySplit(in input) (interface{}, error) {
	separator := stringParam(in.params, "separator")
	if separator == "" {
		return nil, fmt.Errorf("separator parameter is required")
	}
	parts := strings.Split(stringify(in.value), separator)
	index := intParam(in.params, "index", 0)
	if index < 0 || index >= len(parts) {
		return "", nil
	}
	return parts[index], nil
}

func (e *Engine) applyJoin(in input) (interface{}, error) {
	// JOIN has no fallback to the source value: without record context the
	// result is simply empty.
	if !in.hasSource {
		return "", nil
	}
	separator := stringParam(in.params, "separator")

	var parts []string
	for _, field := range fieldsParam(in.params) {
		value, ok := in.source.Get(field)
		if !ok {
			continue
		}
		if items, isArray := value.([]interface{}); isArray {
			for _, item := range items {
				parts = append(parts, stringify(item))
			}
			continue
		}
		parts = append(parts, stringify(value))
	}
	return strings.Join(parts, separator), nil
}

func (e *Engine) applyUppercase(in input) (interface{}, error) {
	return strings.ToUpper(stringify(in.value)), nil
}

func (e *Engine) applyLowercase(in input) (interface{}, error) {
	return strings.ToLower(stringify(in.value)), nil
}

func (e *Engine) applyCustom(in input) (interface{}, error) {
	if e.formulas == nil {
		return nil, fmt.Errorf("no formula evaluator configured")
	}
	formula := stringParam(in.params, "formula")
	if formula == "" {
		return nil, fmt.Errorf("formula parameter is required")
	}
	return e.formulas.Evaluate(formula, in.value)
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}
