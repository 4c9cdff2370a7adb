package view

import "net/http"

// Result carries a body with an optional status code and headers, in the
// forms (body), (body, status), (body, headers) or (body, status, headers).
type Result []any

// Reply builds a Result.
func Reply(body any, extra ...any) Result {
	return append(Result{body}, extra...)
}

// Unpack normalizes a handler result into body, status and headers. A zero
// status means none was given. The second element of a two-value Result is
// a status when it is an int and headers otherwise.
func Unpack(v any) (body any, status int, header http.Header, err error) {
	res, ok := v.(Result)
	if !ok {
		return v, 0, nil, nil
	}

	switch len(res) {
	case 0:
		return nil, 0, nil, nil
	case 1:
		return res[0], 0, nil, nil
	case 2:
		if code, ok := toStatus(res[1]); ok {
			return res[0], code, nil, nil
		}
		h, ok := toHeader(res[1])
		if !ok {
			return nil, 0, nil, usageError("result element %T is neither a status nor headers", res[1])
		}
		return res[0], 0, h, nil
	case 3:
		code, ok := toStatus(res[1])
		if !ok {
			return nil, 0, nil, usageError("result status %T is not an int", res[1])
		}
		h, ok := toHeader(res[2])
		if !ok {
			return nil, 0, nil, usageError("result headers %T are not a header map", res[2])
		}
		return res[0], code, h, nil
	default:
		return nil, 0, nil, usageError("result has %d elements", len(res))
	}
}

func toStatus(v any) (int, bool) {
	switch code := v.(type) {
	case nil:
		return 0, true
	case int:
		return code, true
	}
	return 0, false
}

func toHeader(v any) (http.Header, bool) {
	switch h := v.(type) {
	case nil:
		return nil, true
	case http.Header:
		return h, true
	case map[string][]string:
		return http.Header(h), true
	case map[string]string:
		out := make(http.Header, len(h))
		for k, value := range h {
			out[k] = []string{value}
		}
		return out, true
	}
	return nil, false
}
