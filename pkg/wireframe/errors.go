package wireframe

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Extraction errors. A call that returns one of these produces no mesh.
var (
	ErrNoStableIDAttribute         = errors.New("wireframe: mesh has no stable id attribute")
	ErrUnsupportedTopology         = errors.New("wireframe: full edge enumeration needs a triangle list")
	ErrInconsistentAttributeLength = errors.New("wireframe: optional attribute missing on some verts")
)

// DiagnosticKind classifies a non-fatal condition.
type DiagnosticKind int

// Diagnostic kinds.
const (
	UnresolvedEdgeID DiagnosticKind = iota + 1
	MissingAttribute
	MalformedTriangleList
	IndexOutOfRange
)

// String returns the kind name.
func (k DiagnosticKind) String() string {
	switch k {
	case UnresolvedEdgeID:
		return "UnresolvedEdgeId"
	case MissingAttribute:
		return "MissingAttribute"
	case MalformedTriangleList:
		return "MalformedTriangleList"
	case IndexOutOfRange:
		return "IndexOutOfRange"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// Diagnostic describes a condition that was reported and skipped.
type Diagnostic struct {
	Kind DiagnosticKind
	// Attribute is set for MissingAttribute.
	Attribute string
	// Pair and Missing are set for UnresolvedEdgeID.
	Pair    [2]uint32
	Missing []uint32
	// Triangle is the triangle ordinal for IndexOutOfRange; for
	// MalformedTriangleList it is the number of trailing indices dropped.
	Triangle int
}

// String formats the diagnostic for logs and reports.
func (d Diagnostic) String() string {
	switch d.Kind {
	case UnresolvedEdgeID:
		return fmt.Sprintf("%s: pair [%d %d], missing %v", d.Kind, d.Pair[0], d.Pair[1], d.Missing)
	case MissingAttribute:
		return fmt.Sprintf("%s: %s", d.Kind, d.Attribute)
	case MalformedTriangleList:
		return fmt.Sprintf("%s: %d trailing indices dropped", d.Kind, d.Triangle)
	case IndexOutOfRange:
		return fmt.Sprintf("%s: triangle %d skipped", d.Kind, d.Triangle)
	default:
		return d.Kind.String()
	}
}

// report collects diagnostics for one extraction call and mirrors them
// to the logger.
type report struct {
	log         *zap.Logger
	diagnostics []Diagnostic
}

func (r *report) add(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
	r.log.Warn(d.String(), zap.Stringer("kind", d.Kind))
}

// CountDiagnostics returns how many diagnostics have the given kind.
func CountDiagnostics(diags []Diagnostic, kind DiagnosticKind) int {
	n := 0
	for _, d := range diags {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
