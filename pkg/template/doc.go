// Package template detects and substitutes ${NAME} placeholders.
//
// Substitution is plain text replacement in a single pass: values are
// never rescanned and never evaluated. Unresolved names stay in the output
// verbatim and are reported as warnings. Processor commits rendered output
// through a temp file and rename in the destination directory, taking a
// backup of any existing destination first.
package template
