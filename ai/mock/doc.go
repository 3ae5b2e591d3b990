// Package mock provides deterministic test doubles for the ai package.
// No network calls are made; vectors are derived from a hash of the input
// text so tests get stable, repeatable embeddings.
package mock
