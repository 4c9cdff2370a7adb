package mux

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
)

// compiled holds every pattern compiled for a route. Its size is bounded
// by the registered routes.
var compiled sync.Map // map[string]*regexp.Regexp

func compileRegexp(pattern string) (*regexp.Regexp, error) {
	if re, ok := compiled.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	actual, _ := compiled.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}

// routeRegexp stores a compiled path regexp and metadata about the template.
type routeRegexp struct {
	// template is the original template string.
	template string
	// regexp is the compiled regular expression.
	regexp *regexp.Regexp
	// varsN are the variable names in order.
	varsN []string
	// varsC are the declared constraints (macro name or raw pattern).
	varsC []string
}

// newRouteRegexp parses a path template such as "/pets/{id:int}" and
// returns a compiled routeRegexp.
func newRouteRegexp(tpl string, strictSlash bool) (*routeRegexp, error) {
	idxs, err := braceIndices(tpl)
	if err != nil {
		return nil, err
	}

	var (
		pattern bytes.Buffer
		varsN   []string
		varsC   []string
		end     int
	)

	pattern.WriteByte('^')

	for i := 0; i < len(idxs); i += 2 {
		raw := tpl[end:idxs[i]]
		end = idxs[i+1]

		name, constraint, _ := strings.Cut(tpl[idxs[i]+1:end-1], ":")
		if name == "" {
			return nil, fmt.Errorf("mux: missing name in %q from %q", tpl[idxs[i]:end], tpl)
		}

		patt := "[^/]+"
		if constraint != "" {
			patt = expandMacro(constraint)
		}

		fmt.Fprintf(&pattern, "%s(%s)", regexp.QuoteMeta(raw), patt)
		varsN = append(varsN, name)
		varsC = append(varsC, constraint)
	}

	raw := tpl[end:]
	if strictSlash && strings.HasSuffix(raw, "/") {
		raw = strings.TrimSuffix(raw, "/")
		pattern.WriteString(regexp.QuoteMeta(raw))
		pattern.WriteString("[/]?")
	} else {
		pattern.WriteString(regexp.QuoteMeta(raw))
		if strictSlash {
			pattern.WriteString("[/]?")
		}
	}
	pattern.WriteByte('$')

	if err := checkDuplicateVars(varsN); err != nil {
		return nil, err
	}

	reg, err := compileRegexp(pattern.String())
	if err != nil {
		return nil, fmt.Errorf("mux: invalid path template %q: %w", tpl, err)
	}

	return &routeRegexp{
		template: tpl,
		regexp:   reg,
		varsN:    varsN,
		varsC:    varsC,
	}, nil
}

// Match checks whether the compiled regexp matches the request path.
func (r *routeRegexp) Match(req *http.Request) bool {
	return r.regexp.MatchString(req.URL.Path)
}

// vars extracts route variables from the given path.
func (r *routeRegexp) vars(path string) map[string]string {
	if len(r.varsN) == 0 {
		return nil
	}
	matches := r.regexp.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}

	// Raw patterns may carry their own groups, so walk the named
	// variables against the leading submatches only when counts line up.
	vars := make(map[string]string, len(r.varsN))
	idx := 1
	for i, name := range r.varsN {
		if idx >= len(matches) {
			break
		}
		vars[name] = matches[idx]
		idx += 1 + groupCount(r.varsC[i])
	}
	return vars
}

// groupCount returns the number of capturing groups inside a constraint
// after macro expansion.
func groupCount(constraint string) int {
	if constraint == "" {
		return 0
	}
	re, err := compileRegexp(expandMacro(constraint))
	if err != nil {
		return 0
	}
	return re.NumSubexp()
}

// braceIndices returns the start and end+1 indices of each top-level
// {...} pair in s. Returns an error if braces are unbalanced.
func braceIndices(s string) ([]int, error) {
	var (
		idxs  []int
		level int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if level++; level == 1 {
				idxs = append(idxs, i)
			}
		case '}':
			if level--; level == 0 {
				idxs = append(idxs, i+1)
			} else if level < 0 {
				return nil, fmt.Errorf("mux: unbalanced braces in %q", s)
			}
		}
	}
	if level != 0 {
		return nil, fmt.Errorf("mux: unbalanced braces in %q", s)
	}
	return idxs, nil
}

// checkDuplicateVars returns an error if any variable name is repeated.
func checkDuplicateVars(vars []string) error {
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v] {
			return fmt.Errorf("mux: duplicated route variable %q", v)
		}
		seen[v] = true
	}
	return nil
}
