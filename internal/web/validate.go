package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const maxBodyBytes = 1 << 20

// ValidationError lists the schema violations of a request body.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "invalid request body: " + strings.Join(e.Details, "; ")
}

// schemas holds the compiled request schemas keyed by file stem.
type schemas map[string]*gojsonschema.Schema

func loadSchemas() (schemas, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}
	out := make(schemas, len(entries))
	for _, e := range entries {
		data, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		out[strings.TrimSuffix(e.Name(), ".json")] = s
	}
	return out, nil
}

// decode reads the request body, validates it against the named schema and
// unmarshals it into dst.
func (s schemas) decode(w http.ResponseWriter, r *http.Request, name string, dst any) error {
	schema, ok := s[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ValidationError{Details: []string{"request body too large"}}
		}
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		return &ValidationError{Details: []string{"request body is not valid JSON"}}
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validate body: %w", err)
	}
	if !res.Valid() {
		details := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			details = append(details, e.String())
		}
		return &ValidationError{Details: details}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &ValidationError{Details: []string{err.Error()}}
	}
	return nil
}
