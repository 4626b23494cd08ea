// Package normalize coerces raw agent output into a canonical SchedulePlan.
//
// Agent output arrives in many shapes: a decoded object, a JSON string, JSON
// wrapped in markdown fences and prose, or an object whose nested fields are
// themselves JSON strings. Normalize tries an ordered list of strategies, the
// first that yields a schedule-like object wins, and the object is then
// decoded with field-level coercion. Normalize never fails: on total failure
// it returns an empty plan carrying a warning.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/coursecheck/internal/mdparse"
	"github.com/dshills/coursecheck/internal/schema"
)

// StrategyName identifies a parsing strategy.
type StrategyName string

const (
	StrategyDirectShape   StrategyName = "direct_shape"
	StrategyFencedJSON    StrategyName = "fenced_json"
	StrategyBraceScan     StrategyName = "brace_scan"
	StrategyFieldCoercion StrategyName = "field_coercion"
	StrategyNone          StrategyName = "none"
)

// Strategy extracts a schedule object from a raw value.
type Strategy interface {
	Name() StrategyName
	Extract(raw any) (map[string]any, bool)
}

// DefaultStrategies is the fallback chain, in order.
var DefaultStrategies = []Strategy{
	DirectShape{},
	FencedJSON{},
	BraceScan{},
	FieldCoercion{},
}

// Report describes how a value was normalized.
type Report struct {
	Strategy StrategyName
	// Failed is true when no strategy produced an object.
	Failed bool
}

// Normalize returns a best-effort canonical plan for raw.
func Normalize(raw any) schema.SchedulePlan {
	plan, _ := NormalizeWith(raw, DefaultStrategies)
	return plan
}

// NormalizeWithReport is Normalize plus the name of the winning strategy.
func NormalizeWithReport(raw any) (schema.SchedulePlan, Report) {
	return NormalizeWith(raw, DefaultStrategies)
}

// NormalizeWith runs the given strategies in order.
func NormalizeWith(raw any, strategies []Strategy) (schema.SchedulePlan, Report) {
	raw = canonicalInput(raw)
	for _, s := range strategies {
		doc, ok := s.Extract(raw)
		if !ok {
			continue
		}
		return decodePlan(doc), Report{Strategy: s.Name()}
	}
	return emptyPlan(describeFailure(raw)), Report{Strategy: StrategyNone, Failed: true}
}

func emptyPlan(warning string) schema.SchedulePlan {
	return schema.SchedulePlan{
		Semesters: []schema.Semester{},
		Warnings:  []string{warning},
	}
}

func describeFailure(raw any) string {
	switch v := raw.(type) {
	case nil:
		return "Schedule could not be parsed: agent returned no content"
	case string:
		if strings.TrimSpace(v) == "" {
			return "Schedule could not be parsed: agent returned no content"
		}
		return fmt.Sprintf("Schedule could not be parsed: no schedule object found in %d characters of agent output", len(v))
	default:
		return fmt.Sprintf("Schedule could not be parsed: unsupported value of type %T", raw)
	}
}

// canonicalInput folds byte slices into strings and typed plans or other Go
// values into generic JSON objects.
func canonicalInput(raw any) any {
	switch v := raw.(type) {
	case nil, string, map[string]any:
		return v
	case []byte:
		return string(v)
	case json.RawMessage:
		return string(v)
	case *schema.SchedulePlan:
		if v == nil {
			return nil
		}
		return canonicalInput(*v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return raw
		}
		var out any
		if err := json.Unmarshal(b, &out); err != nil {
			return raw
		}
		return out
	}
}

// DirectShape accepts an object that already has a school and a semesters
// array.
type DirectShape struct{}

func (DirectShape) Name() StrategyName { return StrategyDirectShape }

func (DirectShape) Extract(raw any) (map[string]any, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	if _, ok := m["school"]; !ok {
		return nil, false
	}
	if _, ok := m["semesters"].([]any); !ok {
		return nil, false
	}
	return m, true
}

// FencedJSON parses a string after removing markdown fences. Every fenced
// block is tried, json-tagged blocks first, then the whole text.
type FencedJSON struct{}

func (FencedJSON) Name() StrategyName { return StrategyFencedJSON }

func (FencedJSON) Extract(raw any) (map[string]any, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	var candidates []string
	var others []string
	for _, b := range mdparse.FencedBlocks(s) {
		if b.Info == "json" || b.Info == "javascript" || b.Info == "js" {
			candidates = append(candidates, b.Body)
		} else {
			others = append(others, b.Body)
		}
	}
	candidates = append(candidates, others...)
	candidates = append(candidates, stripMarkdownFences(s))
	for _, c := range candidates {
		if m, ok := parseObject(c); ok && looksLikePlan(m) {
			return m, true
		}
	}
	return nil, false
}

// schoolKeys are the quoted keys BraceScan anchors on.
var schoolKeys = []string{`"school"`, `"university"`, `"institution"`}

// maxBraceCandidates bounds the work BraceScan does on pathological input.
const maxBraceCandidates = 256

// BraceScan finds a balanced JSON object enclosing the last school-like key
// in free text, for responses with prose or broken fragments around the
// object.
type BraceScan struct{}

func (BraceScan) Name() StrategyName { return StrategyBraceScan }

func (BraceScan) Extract(raw any) (map[string]any, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	lower := asciiLower(s)
	var anchors []int
	for _, key := range schoolKeys {
		from := 0
		for {
			i := strings.Index(lower[from:], key)
			if i < 0 {
				break
			}
			anchors = append(anchors, from+i)
			from += i + len(key)
		}
	}
	if len(anchors) == 0 {
		return nil, false
	}
	// Latest anchor first.
	sortDescending(anchors)

	tried := 0
	for _, anchor := range anchors {
		for open := strings.LastIndexByte(s[:anchor], '{'); open >= 0; open = strings.LastIndexByte(s[:open], '{') {
			if tried >= maxBraceCandidates {
				return nil, false
			}
			tried++
			end := balancedEnd(s, open)
			if end < anchor {
				continue
			}
			if m, ok := parseObject(s[open : end+1]); ok && looksLikePlan(m) {
				return m, true
			}
		}
	}
	return nil, false
}

func sortDescending(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] > xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

// FieldCoercion accepts any object with a schedule-like field, including
// objects with renamed fields, wrapper objects, and semesters given as a JSON
// string.
type FieldCoercion struct{}

func (FieldCoercion) Name() StrategyName { return StrategyFieldCoercion }

func (FieldCoercion) Extract(raw any) (map[string]any, bool) {
	var m map[string]any
	switch v := raw.(type) {
	case map[string]any:
		m = v
	case string:
		obj, ok := parseObject(stripMarkdownFences(v))
		if !ok {
			return nil, false
		}
		m = obj
	default:
		return nil, false
	}
	if !looksLikePlan(m) {
		return nil, false
	}
	return m, true
}

// looksLikePlan reports whether m, or a wrapper object inside it, carries a
// school or semesters field.
func looksLikePlan(m map[string]any) bool {
	m = unwrap(m)
	if _, ok := lookup(m, semestersKeys...); ok {
		return true
	}
	_, ok := lookup(m, schoolAliases...)
	return ok
}
