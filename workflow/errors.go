// Package workflow implements the contract analysis pipeline: parse with a
// tool-calling sub-loop, extract clauses, assess risk, and summarise, with a
// single error terminal reached from any failing step.
package workflow

import "errors"

// Sentinel errors for workflow operations.
var (
	ErrMissingParsedText = errors.New("no parsed text available for clause extraction")
	ErrMissingExtraction = errors.New("no extraction results available")
	ErrMissingRisk       = errors.New("no risk results available for summarisation")
	ErrNoTextExtracted   = errors.New("no text extracted from document")
	ErrToolLoopExceeded  = errors.New("tool loop exceeded")
	ErrStepPanic         = errors.New("step panicked")
)

// Failure prefixes carried by ErrorMessage.
const (
	PrefixParse     = "Parser failed: "
	PrefixExtract   = "Clause extraction failed: "
	PrefixAssess    = "Risk assessment failed: "
	PrefixSummarise = "Summarisation failed: "
)

// DefaultErrorMessage is reported when a run reaches the error terminal
// without a message.
const DefaultErrorMessage = "Unknown error occurred."
