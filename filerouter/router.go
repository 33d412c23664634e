// Package filerouter translates FilePath directives into bytes (source
// side) and bytes into effects (sink side), against the four backends a
// Worker owns: scratch filesystem, blob store, tmp map, and the child's
// stdio streams. A Router holds references to the Worker's scratch
// filesystem, blob store and tmp map; the captured streams are passed in
// per call, so one Router can be shared across a batch's executions.
package filerouter

import (
	"context"
	"fmt"

	"github.com/quayrun/sandexec/blobstore"
	"github.com/quayrun/sandexec/scratchfs"
	"github.com/quayrun/sandexec/tmpstore"
	"github.com/quayrun/sandexec/types"
)

// Streams bundles the captured child output a Router needs to resolve
// Stdout/Stderr sources. Populated only after a process has exited.
type Streams struct {
	Stdout []byte
	Stderr []byte
}

// Router resolves and applies FilePath directives for one Worker.
type Router struct {
	FS   *scratchfs.FS
	Blob blobstore.Store
	Tmp  *tmpstore.Store
}

// New returns a Router over the given Worker collaborators.
func New(fs *scratchfs.FS, blob blobstore.Store, tmp *tmpstore.Store) *Router {
	return &Router{FS: fs, Blob: blob, Tmp: tmp}
}

// Resolve reads the bytes a FilePath names for copy_out and return_files
// sources, per the source-side matrix: Local reads scratch (stamping +x
// first if Executable), Data returns its inline content, Remote fetches
// from the blob store, Tmp looks up the worker's tmp map (a miss is empty
// bytes, not an error — see DESIGN.md), Stdout/Stderr return the captured
// child streams truncated to MaxSize, and Stdin is never a valid source.
func (r *Router) Resolve(ctx context.Context, fp types.FilePath, streams Streams) ([]byte, error) {
	return r.resolve(ctx, fp, streams, r.FS.ReadFile)
}

// ResolveCopyInSource reads the bytes a FilePath names for copy_in
// sources. It differs from Resolve only in the Local case: copy_in's
// Local names an arbitrary caller-given path to stage into scratch, so it
// is opened verbatim rather than resolved against the scratch root.
func (r *Router) ResolveCopyInSource(ctx context.Context, fp types.FilePath, streams Streams) ([]byte, error) {
	return r.resolve(ctx, fp, streams, scratchfs.ReadFileVerbatim)
}

func (r *Router) resolve(ctx context.Context, fp types.FilePath, streams Streams, readLocal func(name string, executable bool) ([]byte, error)) ([]byte, error) {
	switch fp.Kind {
	case types.PathLocal:
		return readLocal(fp.Name, fp.Executable)
	case types.PathData:
		return fp.Content, nil
	case types.PathRemote:
		return r.Blob.Get(ctx, fp.ID)
	case types.PathTmp:
		data, ok := r.Tmp.Get(fp.TmpID)
		if !ok {
			return nil, nil
		}
		return data, nil
	case types.PathStdout:
		return truncate(streams.Stdout, fp.MaxSize), nil
	case types.PathStderr:
		return truncate(streams.Stderr, fp.MaxSize), nil
	default:
		return nil, fmt.Errorf("unsupported file path for source: %s", fp.String())
	}
}

// Apply writes bytes per the sink-side matrix: Local writes scratch
// (stamping +x if Executable), Tmp stores into the worker's tmp map
// (overwriting any existing entry), Remote puts to the blob store.
// Stdin is handled by the caller directly (it queues bytes for the
// child's stdin pipe rather than writing through a Router), so it is
// rejected here along with every other sink-invalid kind.
func (r *Router) Apply(ctx context.Context, fp types.FilePath, data []byte) error {
	switch fp.Kind {
	case types.PathLocal:
		return r.FS.CreateFile(fp.Name, data, fp.Executable)
	case types.PathTmp:
		r.Tmp.Set(fp.TmpID, data)
		return nil
	case types.PathRemote:
		return r.Blob.Put(ctx, fp.ID, data)
	default:
		return fmt.Errorf("unsupported file path for sink: %s", fp.String())
	}
}

// TakeReturnFile resolves a return_files entry, naming it per spec: Local
// and Tmp entries are named after their name/id, Remote entries as
// "remote_<id>", and Stdout/Stderr as "stdout"/"stderr". Tmp sources are
// consumed (removed) here; every other source is left untouched.
func (r *Router) TakeReturnFile(ctx context.Context, fp types.FilePath, streams Streams) (types.ExecutionFile, error) {
	switch fp.Kind {
	case types.PathLocal:
		data, err := r.FS.ReadFile(fp.Name, fp.Executable)
		if err != nil {
			return types.ExecutionFile{}, err
		}
		return types.ExecutionFile{Name: fp.Name, Content: data}, nil
	case types.PathTmp:
		data, _ := r.Tmp.Take(fp.TmpID)
		return types.ExecutionFile{Name: fmt.Sprintf("tmp_%d", fp.TmpID), Content: data}, nil
	case types.PathRemote:
		data, err := r.Blob.Get(ctx, fp.ID)
		if err != nil {
			return types.ExecutionFile{}, err
		}
		return types.ExecutionFile{Name: fmt.Sprintf("remote_%s", fp.ID), Content: data}, nil
	case types.PathStdout:
		return types.ExecutionFile{Name: "stdout", Content: truncate(streams.Stdout, fp.MaxSize)}, nil
	case types.PathStderr:
		return types.ExecutionFile{Name: "stderr", Content: truncate(streams.Stderr, fp.MaxSize)}, nil
	default:
		return types.ExecutionFile{}, fmt.Errorf("unsupported file path for return_files: %s", fp.String())
	}
}

// truncate applies FilePath.MaxSize to a captured stream, per the
// boundary rule that max_size=0 yields empty bytes and max_size >=
// len(data) yields the stream unmodified.
func truncate(data []byte, maxSize *int64) []byte {
	if maxSize == nil {
		return data
	}
	if *maxSize <= 0 {
		return nil
	}
	if int64(len(data)) > *maxSize {
		return data[:*maxSize]
	}
	return data
}
