// Package phase creates phase and closeout entities under a plan and
// cross-links them with the parent.
package phase

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Spec is one phase to create, in invocation order.
type Spec struct {
	Name      string
	Duration  string
	DependsOn string
}

const placeholder = "TBD"

// ParseQuick splits a comma-delimited list of phase names. Duration and
// dependencies get placeholders.
func ParseQuick(s string) []Spec {
	var specs []Spec
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		specs = append(specs, Spec{Name: name, Duration: placeholder, DependsOn: "None"})
	}
	return specs
}

// ParseBatch reads pipe-delimited records: "name | duration | dependencies".
// Blank lines, lines with an empty name field, and #-comments are skipped.
func ParseBatch(r io.Reader) ([]Spec, error) {
	var specs []Spec
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.SplitN(line, "|", 3)
		if len(fields) > 3 {
			return nil, fmt.Errorf("line %d: too many fields", lineNo)
		}

		spec := Spec{Duration: placeholder, DependsOn: "None"}
		spec.Name = strings.TrimSpace(fields[0])
		if spec.Name == "" {
			// A delimited record with no name is treated like a blank line.
			continue
		}
		if len(fields) > 1 {
			if d := strings.TrimSpace(fields[1]); d != "" {
				spec.Duration = d
			}
		}
		if len(fields) > 2 {
			if dep := strings.TrimSpace(fields[2]); dep != "" {
				spec.DependsOn = dep
			}
		}
		specs = append(specs, spec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading batch input: %w", err)
	}
	return specs, nil
}

// ReadInteractive prompts for phases on w and reads answers from r until an
// empty name or "done" is entered.
func ReadInteractive(r io.Reader, w io.Writer) ([]Spec, error) {
	scanner := bufio.NewScanner(r)
	readLine := func(prompt string) (string, bool) {
		fmt.Fprint(w, prompt)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	var specs []Spec
	for {
		name, ok := readLine(fmt.Sprintf("Phase %d name (empty or 'done' to finish): ", len(specs)+1))
		if !ok || name == "" || strings.EqualFold(name, "done") {
			break
		}

		duration, ok := readLine("  estimated duration: ")
		if !ok {
			specs = append(specs, Spec{Name: name, Duration: placeholder, DependsOn: "None"})
			break
		}
		if duration == "" {
			duration = placeholder
		}

		deps, ok := readLine("  depends on: ")
		if deps == "" {
			deps = "None"
		}
		specs = append(specs, Spec{Name: name, Duration: duration, DependsOn: deps})
		if !ok {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading interactive input: %w", err)
	}
	return specs, nil
}
