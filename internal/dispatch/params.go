package dispatch

import (
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reserved parameter keys understood by the server.
const (
	ParamTaskName   = "task_name"
	ParamMainTask   = "main_task"
	ParamTaskPeriod = "task_period"
)

// Params are the configuration parameters of a task instance.
type Params map[string]any

// Clone returns a shallow copy of p. A nil Params clones to an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EncodeConfig serializes params into the configuration payload handed to
// the server.
func EncodeConfig(p Params) ([]byte, error) {
	if p == nil {
		p = Params{}
	}
	out, err := yaml.Marshal(map[string]any(p))
	if err != nil {
		return nil, fmt.Errorf("failed to encode task config: %w", err)
	}
	return out, nil
}

// DecodeConfig parses a configuration payload produced by EncodeConfig.
func DecodeConfig(data []byte) (Params, error) {
	p := Params{}
	if len(data) == 0 {
		return p, nil
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode task config: %w", err)
	}
	return p, nil
}

// ParseAssignments turns "key=value" strings into Params. Values are typed
// the way a YAML scalar would be: booleans, integers and floats are
// recognized, anything else stays a string.
func ParseAssignments(assignments []string) (Params, error) {
	p := Params{}
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", a)
		}
		p[key] = parseScalar(strings.TrimSpace(value))
	}
	return p, nil
}

func parseScalar(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Float returns p[key] as a float64 if it is numeric.
func (p Params) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Bool returns p[key] as a bool if it is one.
func (p Params) Bool(key string) (bool, bool) {
	b, ok := p[key].(bool)
	return b, ok
}
