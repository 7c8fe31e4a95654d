package frmr

import "fmt"

// Violation describes one structural problem found in a source document.
type Violation struct {
	// Section names where the problem was found (info, glossary,
	// requirements, indicators, or a requirement path).
	Section string `json:"section"`

	// Message is the human-readable description.
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Section, v.Message)
}

// Validate runs the pre-flight structural checks that gate the transforms.
// Every check runs; all violations are collected and returned together so
// the caller can report them as a batch. An empty result means the
// document is structurally complete.
func Validate(doc *Document) []Violation {
	var violations []Violation

	if doc.Info.Version == "" {
		violations = append(violations, Violation{
			Section: "info",
			Message: "version is required",
		})
	}
	if len(doc.Glossary) == 0 {
		violations = append(violations, Violation{
			Section: "glossary",
			Message: "glossary section is missing",
		})
	}
	if len(doc.Requirements) == 0 {
		violations = append(violations, Violation{
			Section: "requirements",
			Message: "requirements section is empty",
		})
	}
	if len(doc.Indicators) == 0 {
		violations = append(violations, Violation{
			Section: "indicators",
			Message: "indicators section is empty",
		})
	}

	for _, proc := range doc.Requirements {
		for _, part := range proc.Partitions {
			for _, group := range part.Groups {
				for _, req := range group.Requirements {
					if req.Statement.Kind == StatementNone {
						violations = append(violations, Violation{
							Section: fmt.Sprintf("requirements/%s/%s", proc.Key, req.Key),
							Message: fmt.Sprintf("requirement %q has neither a statement nor level variants", req.Key),
						})
					}
				}
			}
		}
	}

	return violations
}
