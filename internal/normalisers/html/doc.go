// Package html provides a Normaliser implementation for HTML documents.
// It strips tags, scripts and styles, decodes entities, and returns one
// paragraph per block element.
package html
