package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"swimat/internal/format"
	"swimat/internal/project"
)

// Current schema version - increment when Record format changes
const cacheSchemaVersion uint16 = 1

// Cache remembers file contents that are known to be formatted, keyed by the
// content hash and the options that formatted them. Thread-safe.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Record is the payload stored per formatted content.
type Record struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path        string
	Size        uint32
	FormattedAt int64 // unix seconds
}

// Open initializes a cache rooted at dir.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// OpenDefault opens the cache at the standard per-user location.
func OpenDefault(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return Open(filepath.Join(base, app))
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// CacheKey identifies content formatted with opt.
func CacheKey(content project.Digest, opt format.Options) project.Digest {
	return project.Combine(content, project.OptionsDigest(opt))
}

func (c *Cache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не раздувать один каталог
	return filepath.Join(c.dir, "fmt", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a record to the cache.
func (c *Cache) Put(key project.Digest, rec *Record) (err error) {
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
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	stored := *rec
	stored.Schema = cacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(&stored); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a record. A record written under another schema is a miss.
func (c *Cache) Get(key project.Digest) (*Record, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("cache: corrupt record: %w", err)
	}
	if rec.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &rec, true, nil
}

// Has reports whether key is recorded. Read errors count as a miss.
func (c *Cache) Has(key project.Digest) bool {
	_, ok, err := c.Get(key)
	return ok && err == nil
}

// MarkFormatted records that content is the formatted form of a file under opt.
func (c *Cache) MarkFormatted(path string, content []byte, opt format.Options) error {
	if c == nil {
		return nil
	}
	size, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return c.Put(CacheKey(sha256.Sum256(content), opt), &Record{
		Path:        path,
		Size:        size,
		FormattedAt: time.Now().Unix(),
	})
}

// DropAll invalidates the cache.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
