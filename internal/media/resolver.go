package media

import (
	"github.com/cutforge/cutforge/pkg/util"
)

// Resolver turns a clip/overlay/SFX media reference into a readable path.
// The render compiler uses it to fail on dangling references before any
// graph stage is built.
type Resolver interface {
	// Resolve returns the readable path for a reference, or ok=false when
	// the reference cannot be read.
	Resolve(ref string) (path string, ok bool)
}

// FileResolver resolves references as filesystem paths, optionally rooted
// at a base directory.
type FileResolver struct {
	Base string
}

func (r FileResolver) Resolve(ref string) (string, bool) {
	path := ref
	if r.Base != "" && !util.FileExists(path) {
		path = r.Base + "/" + ref
	}
	if !util.FileExists(path) {
		return "", false
	}
	return util.AbsPath(path), true
}

// StaticResolver resolves from a fixed set of references. Used by tests
// and by callers that pre-resolve assets.
type StaticResolver map[string]string

func (r StaticResolver) Resolve(ref string) (string, bool) {
	path, ok := r[ref]
	return path, ok
}
