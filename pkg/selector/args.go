package selector

import (
	"strconv"
	"strings"
)

// Params holds the arguments of a token, e.g. @p[c=2,r=10] → {c:2, r:10}.
type Params map[string]string

// ParseArgs parses the text between the brackets of a token.
// Segments are separated by "," and split on their first "=".
// A later duplicate name overwrites an earlier one.
func ParseArgs(raw string) (Params, error) {
	params := Params{}
	if raw == "" {
		return params, nil
	}

	for _, segment := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(segment, "=")
		if !ok || name == "" {
			return nil, &MalformedArgumentsError{Segment: segment}
		}
		params[name] = value
	}
	return params, nil
}

// Get returns the value of the first name present.
func (p Params) Get(names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := p[name]; ok {
			return v, true
		}
	}
	return "", false
}

// Int returns the first present name as an integer, or def when none is set.
func (p Params) Int(def int, names ...string) (int, error) {
	v, ok := p.Get(names...)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, &ParamError{Name: names[0], Value: v, Want: "integer"}
	}
	return n, nil
}

// Float returns the first present name as a float, or def when none is set.
func (p Params) Float(def float64, names ...string) (float64, error) {
	v, ok := p.Get(names...)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def, &ParamError{Name: names[0], Value: v, Want: "number"}
	}
	return f, nil
}

// ParamError reports an argument value of the wrong type.
type ParamError struct {
	Name  string
	Value string
	Want  string
}

func (e *ParamError) Error() string {
	return "argument " + e.Name + "=" + e.Value + " is not a valid " + e.Want
}
