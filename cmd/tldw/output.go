package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"tldw/internal/digest"
)

type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

func parseOutputFormat(value string) (outputFormat, error) {
	switch outputFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", outputText:
		return outputText, nil
	case outputJSON:
		return outputJSON, nil
	case outputYAML, "yml":
		return outputYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want text, json, or yaml)", value)
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML encodes v as YAML to the command's stdout.
func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeStructured handles json and yaml output. It reports false for text so
// the caller renders its own view.
func writeStructured(cmd *cobra.Command, format outputFormat, v any) (bool, error) {
	switch format {
	case outputJSON:
		return true, writeJSON(cmd, v)
	case outputYAML:
		return true, writeYAML(cmd, v)
	default:
		return false, nil
	}
}

func renderSummary(w io.Writer, result *digest.Result) {
	title := strings.TrimSpace(result.Title)
	if title == "" {
		title = result.VideoID
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(title))))
	if result.WebpageURL != "" {
		fmt.Fprintln(w, result.WebpageURL)
	}
	fmt.Fprintln(w)

	sum := result.Summary
	if sum.TLDR != "" {
		fmt.Fprintf(w, "TL;DR: %s\n", sum.TLDR)
	}
	if len(sum.KeyPoints) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Key points:")
		for _, point := range sum.KeyPoints {
			fmt.Fprintf(w, "  - %s\n", point)
		}
	}
	for _, topic := range sum.Topics {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headingCase(topic.Title))
		if topic.Summary != "" {
			fmt.Fprintf(w, "  %s\n", topic.Summary)
		}
	}
	if result.Model != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "(model: %s)\n", result.Model)
	}
}

// headingCase title-cases headings that arrive all lower case.
func headingCase(title string) string {
	title = strings.TrimSpace(title)
	if title == "" || title != strings.ToLower(title) {
		return title
	}
	return cases.Title(language.Und).String(title)
}
