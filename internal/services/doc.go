// Package services defines shared utilities consumed by the pipeline stages
// and external tool integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that keep failure
//     classification uniform across stages.
//   - Context helpers that stamp run labels and stage names for logging.
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays consistent across the pipeline.
package services
