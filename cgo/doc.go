// Package cgo groups the packages that need a C toolchain. Today that is
// onnx, which runs sentence-transformer models through ONNX Runtime; a
// build without cgo gets a stub that reports the backend as unavailable.
package cgo
