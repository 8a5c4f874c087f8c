// Package driven holds the interfaces the core calls out through: the
// tokenizer and encoder behind the embedder, the paragraph store and vector
// index, corpus reading and watching, normalisers and post-processors,
// configuration, prompts, the journal rephraser and metrics.
//
// Rephraser, PromptStore, CorpusWatcher and Recorder may be nil; everything
// else is needed to search. The package imports only domain.
package driven
