//go:build cgo

package onnx

import (
	"context"
	"fmt"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure Encoder implements the interface.
var _ driven.TokenEncoder = (*Encoder)(nil)

var envMu sync.Mutex

// Encoder runs a sentence-transformer export. A rank-3 first output is
// treated as per-token hidden states, a rank-2 output as pooled vectors.
type Encoder struct {
	mu sync.Mutex

	modelPath string
	libPath   string
	dimension int

	session     *ort.DynamicAdvancedSession
	inputNames  []string
	outputName  string
	outputRank  int
	needsTypeID bool
}

// New creates an encoder that loads the model on Load.
func New(modelPath, libPath string, dimension int) *Encoder {
	return &Encoder{modelPath: modelPath, libPath: libPath, dimension: dimension}
}

// Load initialises the runtime environment and opens a session.
func (e *Encoder) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.modelPath == "" {
		return fmt.Errorf("%w: onnx model path is empty", domain.ErrModelUnavailable)
	}

	if err := initEnvironment(e.libPath); err != nil {
		return fmt.Errorf("%w: onnx init environment: %w", domain.ErrModelUnavailable, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(e.modelPath)
	if err != nil {
		return fmt.Errorf("%w: onnx get input/output info: %w", domain.ErrModelUnavailable, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("%w: onnx model has no inputs or outputs", domain.ErrModelUnavailable)
	}

	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		switch {
		case strings.Contains(in.Name, "input_ids"), strings.Contains(in.Name, "attention_mask"):
		case strings.Contains(in.Name, "token_type_ids"):
			e.needsTypeID = true
		default:
			return fmt.Errorf("%w: unsupported model input %q", domain.ErrModelUnavailable, in.Name)
		}
		names = append(names, in.Name)
	}

	out := outputs[0]
	rank := len(out.Dimensions)
	if rank != 2 && rank != 3 {
		return fmt.Errorf("%w: output %q has rank %d, want 2 or 3", domain.ErrModelUnavailable, out.Name, rank)
	}
	if d := out.Dimensions[rank-1]; d > 0 && int(d) != e.dimension {
		return &domain.DimensionError{Expected: e.dimension, Actual: int(d), Context: "onnx output " + out.Name}
	}

	session, err := ort.NewDynamicAdvancedSession(e.modelPath, names, []string{out.Name}, nil)
	if err != nil {
		return fmt.Errorf("%w: onnx new session: %w", domain.ErrModelUnavailable, err)
	}

	e.session = session
	e.inputNames = names
	e.outputName = out.Name
	e.outputRank = rank
	return nil
}

func initEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	return ort.InitializeEnvironment()
}

// Encode runs one inference over a batch of equal-length rows.
func (e *Encoder) Encode(ctx context.Context, ids, mask [][]int64) (driven.EncoderOutput, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return driven.EncoderOutput{}, domain.ErrNotReady
	}
	if len(ids) == 0 {
		return driven.EncoderOutput{}, nil
	}
	if len(ids) != len(mask) {
		return driven.EncoderOutput{}, fmt.Errorf("%w: %d id rows but %d mask rows",
			domain.ErrInvalidInput, len(ids), len(mask))
	}
	if err := ctx.Err(); err != nil {
		return driven.EncoderOutput{}, err
	}

	batch, seqLen := len(ids), len(ids[0])
	shape := ort.NewShape(int64(batch), int64(seqLen))
	flatIDs := flatten(ids, seqLen)
	flatMask := flatten(mask, seqLen)

	inputs := make([]ort.Value, 0, len(e.inputNames))
	defer func() {
		for _, v := range inputs {
			v.Destroy()
		}
	}()
	for _, name := range e.inputNames {
		var data []int64
		switch {
		case strings.Contains(name, "input_ids"):
			data = flatIDs
		case strings.Contains(name, "attention_mask"):
			data = flatMask
		default:
			data = make([]int64, batch*seqLen)
		}
		t, err := ort.NewTensor(shape, data)
		if err != nil {
			return driven.EncoderOutput{}, fmt.Errorf("onnx input tensor %s: %w", name, err)
		}
		inputs = append(inputs, t)
	}

	outShape := ort.NewShape(int64(batch), int64(e.dimension))
	if e.outputRank == 3 {
		outShape = ort.NewShape(int64(batch), int64(seqLen), int64(e.dimension))
	}
	output, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return driven.EncoderOutput{}, fmt.Errorf("onnx output tensor: %w", err)
	}
	defer output.Destroy()

	if err := e.session.Run(inputs, []ort.Value{output}); err != nil {
		return driven.EncoderOutput{}, fmt.Errorf("onnx run: %w", err)
	}

	data := output.GetData()
	if e.outputRank == 2 {
		pooled := make([][]float32, batch)
		for b := range pooled {
			pooled[b] = append([]float32(nil), data[b*e.dimension:(b+1)*e.dimension]...)
		}
		return driven.EncoderOutput{Pooled: pooled}, nil
	}

	tokens := make([][][]float32, batch)
	for b := range tokens {
		rows := make([][]float32, seqLen)
		for i := range rows {
			off := (b*seqLen + i) * e.dimension
			rows[i] = append([]float32(nil), data[off:off+e.dimension]...)
		}
		tokens[b] = rows
	}
	return driven.EncoderOutput{Tokens: tokens}, nil
}

func flatten(rows [][]int64, width int) []int64 {
	out := make([]int64, 0, len(rows)*width)
	for _, r := range rows {
		out = append(out, r[:width]...)
	}
	return out
}

// Dimensions returns the configured output size.
func (e *Encoder) Dimensions() int {
	return e.dimension
}

// Close destroys the session. The runtime environment stays initialised.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}
