package rfcontext

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// ModuleVersion is the four-word version stamp every kernel cache file is
// prefixed with. A cache file whose stamp doesn't equal the running
// module's version is treated as a miss and recompiled.
type ModuleVersion struct {
	Major, Minor, Build, Patch uint32
}

func (v ModuleVersion) write(f *os.File) error {
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:4], v.Major)
	binary.LittleEndian.PutUint32(buf[4:8], v.Minor)
	binary.LittleEndian.PutUint32(buf[8:12], v.Build)
	binary.LittleEndian.PutUint32(buf[12:16], v.Patch)
	_, err := f.Write(buf[:])
	return err
}

func readModuleVersion(f *os.File) (ModuleVersion, error) {
	var buf [16]byte
	if _, err := f.Read(buf[:]); err != nil {
		return ModuleVersion{}, err
	}
	return ModuleVersion{
		Major: binary.LittleEndian.Uint32(buf[0:4]),
		Minor: binary.LittleEndian.Uint32(buf[4:8]),
		Build: binary.LittleEndian.Uint32(buf[8:12]),
		Patch: binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

// KernelCache stores compiled CSC kernel binaries on disk, keyed by kernel
// name and invalidated whenever the stored version prefix doesn't match
// the version passed to Load/Store. This package's CSC kernels are pure Go
// and need no real compilation step, but sessions embedding a real GPU
// kernel source (a future AMF/OpenCL backend) can key their compiled
// binaries through the same cache without inventing a new format.
type KernelCache struct {
	dir     string
	version ModuleVersion
}

// NewKernelCache returns a cache rooted at dir (typically the directory
// containing the running executable) for binaries built by the given
// module version.
func NewKernelCache(dir string, version ModuleVersion) *KernelCache {
	return &KernelCache{dir: dir, version: version}
}

func (c *KernelCache) pathFor(kernelName string) string {
	return filepath.Join(c.dir, kernelName+".clbin")
}

// Load returns the cached binary for kernelName if present and its version
// stamp matches the cache's configured version, or ok=false on any miss
// (missing file, version mismatch, truncated file).
func (c *KernelCache) Load(kernelName string) (binary []byte, ok bool) {
	f, err := os.Open(c.pathFor(kernelName))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	stored, err := readModuleVersion(f)
	if err != nil || stored != c.version {
		return nil, false
	}

	rest, err := os.ReadFile(c.pathFor(kernelName))
	if err != nil || len(rest) < 16 {
		return nil, false
	}
	return rest[16:], true
}

// Store writes data to the cache for kernelName, prefixed by the cache's
// module version.
func (c *KernelCache) Store(kernelName string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("rfcontext: kernel cache mkdir: %w", err)
	}
	f, err := os.Create(c.pathFor(kernelName))
	if err != nil {
		return fmt.Errorf("rfcontext: kernel cache create: %w", err)
	}
	defer f.Close()

	if err := c.version.write(f); err != nil {
		return fmt.Errorf("rfcontext: kernel cache write version: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("rfcontext: kernel cache write body: %w", err)
	}
	return nil
}
