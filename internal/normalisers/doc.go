// Package normalisers provides implementations of the Normaliser interface
// for the corpus formats. Each normaliser knows how to split one format into
// ordered paragraphs.
//
// Normalisers are registered with the Registry at startup.
package normalisers
