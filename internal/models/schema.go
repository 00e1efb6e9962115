package models

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed report.schema.json
var reportSchemaJSON []byte

var (
	reportSchema     *jsonschema.Schema
	reportSchemaErr  error
	reportSchemaOnce sync.Once
)

func compiledReportSchema() (*jsonschema.Schema, error) {
	reportSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("report.schema.json", bytes.NewReader(reportSchemaJSON)); err != nil {
			reportSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		reportSchema, reportSchemaErr = compiler.Compile("report.schema.json")
		if reportSchemaErr != nil {
			reportSchemaErr = fmt.Errorf("compile schema: %w", reportSchemaErr)
		}
	})
	return reportSchema, reportSchemaErr
}

// ValidateReportJSON checks an encoded report against the embedded report schema.
func ValidateReportJSON(data []byte) error {
	schema, err := compiledReportSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal report: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	return nil
}
