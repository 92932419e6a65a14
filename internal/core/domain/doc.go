// Package domain defines the core business entities for lettergen.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - BatchConfig: The immutable input of one generation run
//   - Participant: A named recipient of an absence letter
//   - PlaceholderMap: Token replacements derived per participant
//   - DocumentBody: The text structure of a template (paragraphs, tables, runs)
//   - GeneratedArtifact: The files produced for one participant
//   - ConversionJob: A remote conversion job and its tasks
//   - Event: A progress notification sent to a front end
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
