// Package onnx provides a token encoder backed by ONNX Runtime.
// It implements the driven.TokenEncoder interface.
//
// Build requires:
//   - the onnxruntime shared library (path set via embedding.onnx_library)
//   - a sentence-transformer ONNX export taking input_ids and attention_mask
package onnx
