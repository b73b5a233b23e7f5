package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"provel/internal/ast"
	"provel/internal/plugin"
	"provel/internal/source"
)

// Bump when UnitPayload changes shape.
const cacheSchemaVersion uint16 = 1

// Digest is a SHA-256 cache key.
type Digest [32]byte

// DiskCache stores generated units on disk, keyed by item digest. Reuse is
// safe because generation is a pure function of the digested inputs.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes a cache at the standard XDG location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt initializes a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "units", hexKey+".mp")
}

// UnitPayload is the serialized form of one generated unit.
type UnitPayload struct {
	Schema  uint16
	Name    string
	Content string
	// Mapping ranges flattened as (genStart, genEnd, file, orgStart, orgEnd).
	Mappings []uint32
}

func newUnitPayload(unit *plugin.GeneratedUnit) *UnitPayload {
	p := &UnitPayload{
		Schema:  cacheSchemaVersion,
		Name:    unit.Name,
		Content: unit.Content,
	}
	for _, m := range unit.Mappings {
		p.Mappings = append(p.Mappings,
			m.Generated.Start, m.Generated.End,
			uint32(m.Original.File), m.Original.Start, m.Original.End)
	}
	return p
}

func (p *UnitPayload) toUnit() *plugin.GeneratedUnit {
	unit := &plugin.GeneratedUnit{Name: p.Name, Content: p.Content}
	for i := 0; i+4 < len(p.Mappings); i += 5 {
		unit.Mappings = append(unit.Mappings, plugin.CodeMapping{
			Generated: plugin.TextRange{Start: p.Mappings[i], End: p.Mappings[i+1]},
			Original: source.Span{
				File:  source.FileID(p.Mappings[i+2]),
				Start: p.Mappings[i+3],
				End:   p.Mappings[i+4],
			},
		})
	}
	return unit
}

// Put serializes and writes a payload, replacing atomically.
func (c *DiskCache) Put(key Digest, payload *UnitPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // best-effort cleanup after rename

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close() //nolint:errcheck,gosec // write already failed
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get reads and deserializes a payload. The first result reports a hit.
func (c *DiskCache) Get(key Digest, out *UnitPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close() //nolint:errcheck // read-only handle

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the whole cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "units"))
}

// itemDigest fingerprints everything generation reads from an item: kind,
// name, attributes, parameters, generic list, spans (spans feed the emitted
// mappings, so they are part of the identity). The second result is false for
// items a generator can never fire on.
func itemDigest(strings *source.Interner, genIdx int, item *ast.Item) (Digest, bool) {
	fn, ok := item.FreeFn()
	if !ok {
		return Digest{}, false
	}

	h := sha256.New()
	var buf [8]byte
	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:4], v)
		h.Write(buf[:4]) //nolint:errcheck,gosec // hash writes cannot fail
	}
	writeStr := func(s string) {
		writeU32(uint32(len(s))) //nolint:gosec // identifier lengths are small
		h.Write([]byte(s))       //nolint:errcheck,gosec
	}
	writeSpan := func(sp source.Span) {
		writeU32(uint32(sp.File))
		writeU32(sp.Start)
		writeU32(sp.End)
	}

	writeU32(uint32(cacheSchemaVersion))
	writeU32(uint32(genIdx)) //nolint:gosec // suite sizes are tiny
	writeStr(strings.MustLookup(fn.Name))
	writeSpan(fn.NameSpan)
	writeSpan(fn.Span)

	writeU32(uint32(len(fn.Attrs))) //nolint:gosec
	for _, a := range fn.Attrs {
		writeStr(strings.MustLookup(a.Name))
	}

	writeU32(uint32(len(fn.Generics))) //nolint:gosec
	for _, g := range fn.Generics {
		writeStr(strings.MustLookup(g.Name))
		writeSpan(g.Span)
	}
	writeSpan(fn.GenericsSpan)

	writeU32(uint32(len(fn.Params))) //nolint:gosec
	for _, p := range fn.Params {
		writeStr(strings.MustLookup(p.Name))
		writeStr(strings.MustLookup(p.TypeText))
		if p.Ref {
			writeU32(1)
		} else {
			writeU32(0)
		}
		writeSpan(p.Span)
	}

	writeStr(strings.MustLookup(fn.ReturnText))
	writeSpan(fn.ReturnSpan)

	var d Digest
	copy(d[:], h.Sum(nil))
	return d, true
}
