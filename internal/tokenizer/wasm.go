package tokenizer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// wasmTokenizer hosts a CJK-capable segmentation module in a pure-Go WASM
// runtime. The runtime and module are process-wide singletons (§5's "one
// engine per database URL" rule, extended to the tokenizer capability):
// Open must be called at most once per process.
type wasmTokenizer struct {
	mu      sync.Mutex
	runtime wazero.Runtime
	module  api.Module
}

// Open instantiates the WASM module at path in a fresh wazero runtime. The
// module is expected to export alloc(size)->ptr, dealloc(ptr,size),
// tokenize(ptr,len)->packed_ptr_len, and query_expand(ptr,len)->packed_ptr_len:
// callers pass UTF-8 bytes through the allocator and read the result back
// out of linear memory, the common ABI shape for small single-purpose WASM
// text utilities.
func Open(ctx context.Context, path string) (Tokenizer, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading wasm module %s: %w", path, err)
	}

	runtime := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("instantiating wasi: %w", err)
	}

	compiled, err := runtime.CompileModule(ctx, code)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("compiling wasm module: %w", err)
	}

	mod, err := runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("instantiating wasm module: %w", err)
	}

	return &wasmTokenizer{runtime: runtime, module: mod}, nil
}

func (w *wasmTokenizer) Tokenize(text string) []string {
	raw, err := w.call("tokenize", text)
	if err != nil {
		return NewFallback().Tokenize(text)
	}
	return strings.Split(raw, "\x1f")
}

func (w *wasmTokenizer) QueryExpand(query string) string {
	raw, err := w.call("query_expand", query)
	if err != nil {
		return NewFallback().QueryExpand(query)
	}
	return raw
}

func (w *wasmTokenizer) Close() error {
	ctx := context.Background()
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.module.Close(ctx); err != nil {
		return err
	}
	return w.runtime.Close(ctx)
}

func (w *wasmTokenizer) call(fnName, text string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ctx := context.Background()

	alloc := w.module.ExportedFunction("alloc")
	dealloc := w.module.ExportedFunction("dealloc")
	entry := w.module.ExportedFunction(fnName)
	if alloc == nil || dealloc == nil || entry == nil {
		return "", fmt.Errorf("wasm module missing export %q", fnName)
	}

	input := []byte(text)
	allocRes, err := alloc.Call(ctx, uint64(len(input)))
	if err != nil {
		return "", fmt.Errorf("alloc: %w", err)
	}
	ptr := uint32(allocRes[0])
	defer dealloc.Call(ctx, uint64(ptr), uint64(len(input)))

	mem := w.module.Memory()
	if !mem.Write(ptr, input) {
		return "", fmt.Errorf("writing input to wasm memory")
	}

	res, err := entry.Call(ctx, uint64(ptr), uint64(len(input)))
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", fnName, err)
	}

	packed := res[0]
	outPtr := uint32(packed >> 32)
	outLen := uint32(packed)
	out, ok := mem.Read(outPtr, outLen)
	if !ok {
		return "", fmt.Errorf("reading output from wasm memory")
	}
	defer dealloc.Call(ctx, uint64(outPtr), uint64(outLen))

	return string(out), nil
}
