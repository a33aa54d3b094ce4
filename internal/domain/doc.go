// Package domain defines core data models, error kinds and interfaces shared
// across the app. It contains plain types (wire/state), the structured error
// taxonomy and contracts (interfaces); no behaviour beyond encoding helpers.
package domain
