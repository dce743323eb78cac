package service

import (
	"io"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/constants"
)

// SARIF 2.1.0 document structures, limited to the fields this tool emits.
// Rules map to reportingDescriptors, violations to results, and fix
// suggestions to SARIF fixes.

type sarifDocument struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string            `json:"name"`
	Version string            `json:"version,omitempty"`
	Rules   []sarifDescriptor `json:"rules"`
}

type sarifDescriptor struct {
	ID               string           `json:"id"`
	ShortDescription *sarifMessage    `json:"shortDescription,omitempty"`
	Properties       *sarifProperties `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifProperties struct {
	Tags []string `json:"tags,omitempty"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations"`
	Fixes               []sarifFix        `json:"fixes,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion           `json:"deletedRegion"`
	InsertedContent *sarifArtifactContent `json:"insertedContent,omitempty"`
}

type sarifArtifactContent struct {
	Text string `json:"text"`
}

// sarifLevel maps severities onto SARIF levels. Notice maps to "note";
// the other names coincide.
func sarifLevel(s domain.Severity) string {
	switch s {
	case domain.SeverityError:
		return "error"
	case domain.SeverityWarning:
		return "warning"
	case domain.SeverityNotice:
		return "note"
	}
	return "none"
}

func sarifRegionFromSpan(span domain.Span) sarifRegion {
	return sarifRegion{
		StartLine:   span.StartLine,
		StartColumn: span.StartCol,
		EndLine:     span.EndLine,
		EndColumn:   span.EndCol,
	}
}

func (f *OutputFormatterImpl) writeSARIF(response *domain.AnalyzeResponse, w io.Writer) error {
	report := response.Report

	descriptors := make([]sarifDescriptor, 0, len(report.Rules))
	ruleIndex := make(map[string]int, len(report.Rules))
	for i, ri := range report.Rules {
		ruleIndex[ri.ID] = i
		d := sarifDescriptor{ID: ri.ID}
		if ri.Description != "" {
			d.ShortDescription = &sarifMessage{Text: ri.Description}
		}
		if ri.Category != "" {
			d.Properties = &sarifProperties{Tags: []string{"category:" + ri.Category}}
		}
		descriptors = append(descriptors, d)
	}

	results := make([]sarifResult, 0, len(report.Violations))
	for _, v := range report.Violations {
		res := sarifResult{
			RuleID:    v.RuleID,
			RuleIndex: -1,
			Level:     sarifLevel(v.Severity),
			Message:   sarifMessage{Text: v.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: v.Path},
					Region:           sarifRegionFromSpan(v.Span),
				},
			}},
			PartialFingerprints: map[string]string{"crosslint/v1": v.Fingerprint},
		}
		if idx, ok := ruleIndex[v.RuleID]; ok {
			res.RuleIndex = idx
		}
		if v.Fix != nil {
			replacement := sarifReplacement{DeletedRegion: sarifRegionFromSpan(v.Fix.Span)}
			if v.Fix.Replacement != "" {
				replacement.InsertedContent = &sarifArtifactContent{Text: v.Fix.Replacement}
			}
			res.Fixes = []sarifFix{{
				Description: sarifMessage{Text: v.Message},
				ArtifactChanges: []sarifArtifactChange{{
					ArtifactLocation: sarifArtifactLocation{URI: v.Path},
					Replacements:     []sarifReplacement{replacement},
				}},
			}}
		}
		results = append(results, res)
	}

	doc := sarifDocument{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    constants.ToolName,
				Version: response.Version,
				Rules:   descriptors,
			}},
			Results: results,
		}},
	}
	return WriteJSON(w, doc)
}
