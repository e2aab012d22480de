// Package output renders command results as tables, JSON, YAML or a
// user-supplied Go template.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"

	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTemplate Format = "go-template"

	templatePrefix = string(FormatTemplate) + "="
)

// Printer is a parsed --output value.
type Printer struct {
	Format   Format
	Template string
}

// Parse accepts table, json, yaml or go-template=<template>. An empty value
// selects the table format.
func Parse(value string) (Printer, error) {
	value = strings.TrimSpace(value)
	switch Format(value) {
	case "", FormatTable:
		return Printer{Format: FormatTable}, nil
	case FormatJSON, FormatYAML:
		return Printer{Format: Format(value)}, nil
	}
	if tmpl, ok := strings.CutPrefix(value, templatePrefix); ok {
		if tmpl == "" {
			return Printer{}, apierr.InvalidInput("go-template output requires a template")
		}
		if _, err := newTemplate(tmpl); err != nil {
			return Printer{}, apierr.InvalidInput("invalid go-template: %v", err).Wrap(err)
		}
		return Printer{Format: FormatTemplate, Template: tmpl}, nil
	}
	return Printer{}, apierr.InvalidInput("unknown output format: %s", value)
}

// Write renders obj. table is used for the table format; when it is nil the
// object is printed as YAML instead.
func (p Printer) Write(w io.Writer, obj any, table func(io.Writer)) error {
	switch p.Format {
	case FormatTable, "":
		if table == nil {
			return WriteObject(w, FormatYAML, obj)
		}
		table(w)
		return nil
	case FormatTemplate:
		return WriteTemplate(w, p.Template, obj)
	default:
		return WriteObject(w, p.Format, obj)
	}
}

func WriteObject(w io.Writer, format Format, obj any) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(obj)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatTable:
		return fmt.Errorf("table format requires a specific formatter")
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// WriteTemplate executes tmpl against obj. Fields are addressed by their JSON
// names, e.g. {{range .}}{{.id}}{{"\n"}}{{end}}. Sprig functions are available.
func WriteTemplate(w io.Writer, tmpl string, obj any) error {
	t, err := newTemplate(tmpl)
	if err != nil {
		return apierr.InvalidInput("invalid go-template: %v", err).Wrap(err)
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	var generic any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return err
	}
	if err := t.Execute(w, generic); err != nil {
		return fmt.Errorf("failed to execute go-template: %w", err)
	}
	return nil
}

func newTemplate(tmpl string) (*template.Template, error) {
	return template.New("output").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(tmpl)
}
