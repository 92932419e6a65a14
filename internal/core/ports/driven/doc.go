// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentCodec: Opens and saves structured (.docx) documents
//   - FileCopier: Copies templates and prepares output directories
//   - ConversionAPI: Talks to the remote conversion service
//   - ConversionAPIFactory: Builds a ConversionAPI session from a credential
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PDFVerifier: Validates converted files. Without it, downloads are trusted.
//   - RunStore: Batch history persistence. Without it, runs are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
