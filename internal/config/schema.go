package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://sitebuilder.local/schema/config.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func configSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// SchemaViolation is one failed structural constraint.
type SchemaViolation struct {
	Path    string
	Message string
}

// ValidateStructure checks a decoded YAML document against the embedded
// JSON schema and returns a fatal config error listing every violation.
func ValidateStructure(raw any) error {
	if raw == nil {
		return errors.ConfigError("configuration is empty").Build()
	}
	schema, err := configSchema()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "compile configuration schema").Fatal().Build()
	}

	// Round trip through JSON so the validator sees JSON-native values.
	data, err := json.Marshal(raw)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "configuration is not a string-keyed document").Fatal().Build()
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "re-decode configuration").Fatal().Build()
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	var violations []SchemaViolation
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		violations = collectViolations(ve)
	} else {
		violations = []SchemaViolation{{Path: "$", Message: err.Error()}}
	}

	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, fmt.Sprintf("%s: %s", v.Path, v.Message))
	}
	category := errors.CategoryConfig
	if tocViolation(violations) {
		category = errors.CategoryTOC
	}
	return errors.NewError(category, "configuration failed structural validation").
		Fatal().
		UserAction().
		WithContext("violations", strings.Join(msgs, "; ")).
		Build()
}

var violationPrinter = message.NewPrinter(language.English)

// collectViolations flattens the validator's cause tree to its leaves.
func collectViolations(ve *jsonschema.ValidationError) []SchemaViolation {
	if len(ve.Causes) == 0 {
		p := "$"
		if len(ve.InstanceLocation) > 0 {
			p = "$." + strings.Join(ve.InstanceLocation, ".")
		}
		return []SchemaViolation{{Path: p, Message: ve.ErrorKind.LocalizedString(violationPrinter)}}
	}
	var out []SchemaViolation
	for _, c := range ve.Causes {
		out = append(out, collectViolations(c)...)
	}
	return out
}

func tocViolation(vs []SchemaViolation) bool {
	for _, v := range vs {
		if strings.HasPrefix(v.Path, "$.toc") {
			return true
		}
	}
	return false
}
