package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"merchantfeed/internal/services/api/docs"
)

// docSource returns the raw document; tests replace it
var docSource = docs.SwaggerInfo.ReadDoc

// docOptions are the runtime patches applied to the generated document
type docOptions struct {
	TitleSuffix string
	Bearer      bool
}

type spec map[string]any

// docHandler parses the document once per request so config changes need no rebuild
func docHandler(o docOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var s spec
		if err := json.Unmarshal([]byte(docSource()), &s); err != nil {
			http.Error(w, "openapi document is not valid json", http.StatusInternalServerError)
			return
		}
		s.patch(o)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(s)
	}
}

func (s spec) patch(o docOptions) {
	if _, ok := s["servers"]; !ok {
		s["servers"] = []any{map[string]any{"url": "/api/v1"}}
	}
	if info, ok := s["info"].(map[string]any); ok && o.TitleSuffix != "" {
		title, _ := info["title"].(string)
		info["title"] = strings.TrimSpace(title + " " + o.TitleSuffix)
	}

	schemas := s.section("schemas")
	if _, ok := schemas["ErrorEnvelope"]; !ok {
		schemas["ErrorEnvelope"] = errorEnvelopeSchema
	}
	if o.Bearer {
		s.section("securitySchemes")["bearerAuth"] = map[string]any{"type": "http", "scheme": "bearer"}
	}

	s.operations(func(path string, op map[string]any) {
		responses, ok := op["responses"].(map[string]any)
		if !ok {
			responses = map[string]any{}
			op["responses"] = responses
		}
		for code, desc := range defaultErrors {
			if _, set := responses[code]; !set {
				responses[code] = errorResponse(desc)
			}
		}
		if o.Bearer && strings.HasPrefix(path, "/feeds") {
			op["security"] = []any{map[string]any{"bearerAuth": []any{}}}
		}
	})
}

// section returns components[key], creating both levels on demand
func (s spec) section(key string) map[string]any {
	comps, ok := s["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		s["components"] = comps
	}
	m, ok := comps[key].(map[string]any)
	if !ok {
		m = map[string]any{}
		comps[key] = m
	}
	return m
}

func (s spec) operations(fn func(path string, op map[string]any)) {
	paths, _ := s["paths"].(map[string]any)
	for path, item := range paths {
		methods, _ := item.(map[string]any)
		for _, v := range methods {
			if op, ok := v.(map[string]any); ok {
				fn(path, op)
			}
		}
	}
}

var defaultErrors = map[string]string{
	"400": "Bad Request",
	"500": "Internal Server Error",
}

var errorEnvelopeSchema = map[string]any{
	"type":     "object",
	"required": []any{"status_code", "status"},
	"properties": map[string]any{
		"status_code": map[string]any{"type": "integer"},
		"status":      map[string]any{"type": "string"},
		"code":        map[string]any{"type": "integer"},
		"error":       map[string]any{"type": "string"},
		"field":       map[string]any{"type": "string"},
		"request_id":  map[string]any{"type": "string"},
	},
}

func errorResponse(desc string) map[string]any {
	return map[string]any{
		"description": desc,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorEnvelope"},
			},
		},
	}
}
