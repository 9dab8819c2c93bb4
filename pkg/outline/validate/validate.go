// Package validate checks converted notes for the structural invariants the
// conversion pipeline is meant to establish.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Findings are the errors and warnings reported by one check
type Findings struct {
	Errors   []string
	Warnings []string
}

// Check inspects the lines of a document
type Check interface {
	Name() string
	Run(lines []string) Findings
}

// Result is the validation outcome for one document
type Result struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

// Validator runs registered checks in registration order
type Validator struct {
	checks []Check
}

// New creates a validator with the given checks.
// With no arguments the four built-in checks are registered.
func New(checks ...Check) *Validator {
	if len(checks) == 0 {
		checks = Builtin()
	}
	v := &Validator{}
	for _, c := range checks {
		v.Register(c)
	}
	return v
}

// Builtin returns the property, header, bullet and link checks
func Builtin() []Check {
	return []Check{PropertiesCheck{}, HeadersCheck{}, BulletsCheck{}, LinksCheck{}}
}

// Register adds a check. A check with the same name replaces the earlier one.
func (v *Validator) Register(c Check) {
	for i, existing := range v.checks {
		if existing.Name() == c.Name() {
			v.checks[i] = c
			return
		}
	}
	v.checks = append(v.checks, c)
}

// Checks returns the registered check names
func (v *Validator) Checks() []string {
	names := make([]string, len(v.checks))
	for i, c := range v.checks {
		names[i] = c.Name()
	}
	return names
}

// Validate runs every check and concatenates their findings.
// Valid is true iff no check reported an error.
func (v *Validator) Validate(text string) Result {
	lines := splitLines(text)
	res := Result{Errors: []string{}, Warnings: []string{}}
	for _, c := range v.checks {
		f := c.Run(lines)
		res.Errors = append(res.Errors, f.Errors...)
		res.Warnings = append(res.Warnings, f.Warnings...)
	}
	res.Valid = len(res.Errors) == 0
	return res
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

var (
	doubleColonProp = regexp.MustCompile(`^\w+::`)
	singleColonProp = regexp.MustCompile(`^\w+:\s`)
	rawHeader       = regexp.MustCompile(`^#+\s+\w`)
	bulletHeader    = regexp.MustCompile(`^-\s*#+`)
	bulletLine      = regexp.MustCompile(`^\s*-`)
	markdownLink    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// PropertiesCheck wants double-colon properties at the top of the file
type PropertiesCheck struct{}

func (PropertiesCheck) Name() string { return "properties" }

func (PropertiesCheck) Run(lines []string) Findings {
	var f Findings

	hasProps := false
	for i, line := range lines {
		if doubleColonProp.MatchString(line) {
			hasProps = true
			continue
		}
		if singleColonProp.MatchString(line) {
			f.Errors = append(f.Errors, fmt.Sprintf("Line %d: Property should use '::' not ':'", i+1))
		}
	}
	if hasProps && !doubleColonProp.MatchString(lines[0]) {
		f.Warnings = append(f.Warnings, "Properties should be at the beginning of the file")
	}
	return f
}

// HeadersCheck wants headers written as bullets
type HeadersCheck struct{}

func (HeadersCheck) Name() string { return "headers" }

func (HeadersCheck) Run(lines []string) Findings {
	var f Findings
	for i, line := range lines {
		if rawHeader.MatchString(line) && !bulletHeader.MatchString(line) {
			f.Errors = append(f.Errors, fmt.Sprintf("Line %d: Header should be in bullet format (- # Header)", i+1))
		}
	}
	return f
}

// BulletsCheck counts content lines that are not bullets
type BulletsCheck struct{}

func (BulletsCheck) Name() string { return "bullets" }

func (BulletsCheck) Run(lines []string) Findings {
	var f Findings
	missing := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || doubleColonProp.MatchString(line) {
			continue
		}
		if !bulletLine.MatchString(line) {
			missing++
		}
	}
	if missing > 0 {
		f.Warnings = append(f.Warnings, fmt.Sprintf("%d lines without bullet points found", missing))
	}
	return f
}

// LinksCheck flags broken bracket runs and markdown-style links
type LinksCheck struct{}

func (LinksCheck) Name() string { return "links" }

func (LinksCheck) Run(lines []string) Findings {
	var f Findings
	text := strings.Join(lines, "\n")

	if strings.Contains(text, "[[[") {
		f.Errors = append(f.Errors, "Triple brackets found - possible linking error")
	}
	if strings.Contains(text, "]]]") {
		f.Errors = append(f.Errors, "Triple closing brackets found - possible linking error")
	}
	if markdownLink.MatchString(text) {
		f.Warnings = append(f.Warnings, "Markdown-style links found - consider using [[wikilinks]]")
	}
	return f
}

// Summary aggregates many results
type Summary struct {
	Files      int
	ValidFiles int
	Errors     int
	Warnings   int
	Valid      bool
}

// Summarize aggregates results. Valid is true iff every result is valid.
func Summarize(results []Result) Summary {
	s := Summary{Files: len(results), Valid: true}
	for _, r := range results {
		if r.Valid {
			s.ValidFiles++
		} else {
			s.Valid = false
		}
		s.Errors += len(r.Errors)
		s.Warnings += len(r.Warnings)
	}
	return s
}
