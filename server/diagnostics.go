package server

import "github.com/felixgeelhaar/lsp-go/protocol"

// Position is a zero-based line and character offset in a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open text range between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// DiagnosticSeverity is the reported severity of a diagnostic.
type DiagnosticSeverity int

const (
	SeverityError       DiagnosticSeverity = 1
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
	SeverityHint        DiagnosticSeverity = 4
)

// Diagnostic is one reported problem in a document.
type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Code     string             `json:"code,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
}

// PublishDiagnosticsParams is the payload of the
// textDocument/publishDiagnostics notification. Diagnostics replace the
// previous set for the document; publish an empty slice to clear them.
type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     *int         `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// PublishDiagnostics sends a publishDiagnostics notification via p.
// A nil diagnostics slice is sent as an empty array so clients clear
// their marks instead of ignoring the update.
func PublishDiagnostics(p Publisher, params PublishDiagnosticsParams) error {
	if params.Diagnostics == nil {
		params.Diagnostics = []Diagnostic{}
	}
	return p.Notify(protocol.MethodPublishDiagnostics, params)
}
