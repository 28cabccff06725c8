package registry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PropType is the declared shape of a prop
type PropType int

const (
	PropString PropType = iota
	PropEnum
	PropInt
	PropBool
	PropStringList
	PropRows
	PropNavItems
	PropDataPoints
)

func (t PropType) String() string {
	switch t {
	case PropString:
		return "string"
	case PropEnum:
		return "enum"
	case PropInt:
		return "int"
	case PropBool:
		return "bool"
	case PropStringList:
		return "string[]"
	case PropRows:
		return "string[][]"
	case PropNavItems:
		return "{label, icon}[]"
	case PropDataPoints:
		return "{label, value}[]"
	default:
		return "unknown"
	}
}

// PropSpec declares one prop: its type, default and, for enums and ints,
// the accepted values.
type PropSpec struct {
	Name    string
	Type    PropType
	Default interface{}
	Values  []string
	Min     int
	Max     int
}

// NavItem is one Sidebar entry
type NavItem struct {
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

// DataPoint is one Chart value
type DataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// PropError reports a structured prop whose value has the wrong shape.
type PropError struct {
	Component string
	Prop      string
	Want      PropType
	Msg       string
}

func (e *PropError) Error() string {
	return fmt.Sprintf("%s: prop %q expects %s: %s", e.Component, e.Prop, e.Want, e.Msg)
}

// Props are resolved prop values keyed by prop name. Every declared prop is
// present after Resolve.
type Props map[string]interface{}

func (p Props) String(name string) string {
	s, _ := p[name].(string)
	return s
}

func (p Props) Int(name string) int {
	n, _ := p[name].(int)
	return n
}

func (p Props) Bool(name string) bool {
	b, _ := p[name].(bool)
	return b
}

func (p Props) Strings(name string) []string {
	s, _ := p[name].([]string)
	return s
}

func (p Props) Rows(name string) [][]string {
	r, _ := p[name].([][]string)
	return r
}

func (p Props) NavItems(name string) []NavItem {
	items, _ := p[name].([]NavItem)
	return items
}

func (p Props) DataPoints(name string) []DataPoint {
	points, _ := p[name].([]DataPoint)
	return points
}

// Resolve coerces raw attribute values into typed props. raw holds strings
// for quoted attributes, true for bare flags and decoded literals for {…}
// expressions. Undeclared names are ignored. Scalar props never fail: an
// unusable value falls back to the declared default. Structured props fail
// with a *PropError when the value cannot be read as the declared shape.
func (d *Descriptor) Resolve(raw map[string]interface{}) (Props, error) {
	props := make(Props, len(d.Props))
	for _, spec := range d.Props {
		props[spec.Name] = spec.Default

		v, ok := raw[spec.Name]
		if !ok || v == nil {
			continue
		}

		resolved, err := spec.coerce(v)
		if err != nil {
			return nil, &PropError{Component: d.Name, Prop: spec.Name, Want: spec.Type, Msg: err.Error()}
		}
		if resolved != nil {
			props[spec.Name] = resolved
		}
	}

	return props, nil
}

// coerce returns nil when v should fall back to the default.
func (s PropSpec) coerce(v interface{}) (interface{}, error) {
	switch s.Type {
	case PropString:
		return coerceString(v)

	case PropEnum:
		str, ok := v.(string)
		if !ok {
			return nil, nil
		}
		for _, allowed := range s.Values {
			if str == allowed {
				return str, nil
			}
		}
		return nil, nil

	case PropInt:
		n, ok := toNumber(v)
		if !ok {
			return nil, nil
		}
		i := int(math.Floor(n))
		if i < s.Min {
			i = s.Min
		}
		if s.Max > s.Min && i > s.Max {
			i = s.Max
		}
		return i, nil

	case PropBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return nil, nil
			}
			return parsed, nil
		}
		return nil, nil

	case PropStringList:
		return toStringList(v)

	case PropRows:
		list, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("got %s", describe(v))
		}
		rows := make([][]string, 0, len(list))
		for i, item := range list {
			row, err := toStringList(item)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			rows = append(rows, row)
		}
		return rows, nil

	case PropNavItems:
		list, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("got %s", describe(v))
		}
		items := make([]NavItem, 0, len(list))
		for i, item := range list {
			obj, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("item %d: got %s", i, describe(item))
			}
			label, err := optionalString(obj, "label")
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			icon, err := optionalString(obj, "icon")
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, NavItem{Label: label, Icon: icon})
		}
		return items, nil

	case PropDataPoints:
		list, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("got %s", describe(v))
		}
		points := make([]DataPoint, 0, len(list))
		for i, item := range list {
			obj, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("point %d: got %s", i, describe(item))
			}
			label, err := optionalString(obj, "label")
			if err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
			value, ok := toNumber(obj["value"])
			if !ok {
				return nil, fmt.Errorf("point %d: value must be a number", i)
			}
			points = append(points, DataPoint{Label: label, Value: value})
		}
		return points, nil
	}

	return nil, nil
}

func coerceString(v interface{}) (interface{}, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case int, float64:
		return formatScalar(s), nil
	case bool:
		return nil, nil
	default:
		return nil, fmt.Errorf("got %s", describe(v))
	}
}

func toStringList(v interface{}) ([]string, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("got %s", describe(v))
	}

	out := make([]string, 0, len(list))
	for i, item := range list {
		switch item.(type) {
		case string, int, float64:
			out = append(out, formatScalar(item))
		case bool, nil:
			out = append(out, "")
		default:
			return nil, fmt.Errorf("element %d: got %s", i, describe(item))
		}
	}

	return out, nil
}

func optionalString(obj map[string]interface{}, key string) (string, error) {
	switch v := obj[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int, float64:
		return formatScalar(v), nil
	default:
		return "", fmt.Errorf("%s must be a string, got %s", key, describe(v))
	}
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// formatScalar renders a literal the way it would print as text.
func formatScalar(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	case float64:
		return formatNumber(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}

func formatNumber(f float64) string {
	if f == 0 {
		f = 0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func describe(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case int, float64:
		return "a number"
	case bool:
		return "a boolean"
	case []interface{}:
		return "an array"
	case map[string]interface{}:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
