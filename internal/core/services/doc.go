// Package services implements the driving port interfaces.
// Services contain the core logic of ragstore and orchestrate
// calls to driven ports (adapters).
//
// VectorStore binds the vector index to the metadata store and persists them.
// AnswerService composes answers from retrieved chunks, IngestService loads
// files into the store, and SettingsService maps the config file onto
// domain.AppSettings.
package services
