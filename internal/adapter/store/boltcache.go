package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"marks/internal/port"
)

var bucketVectors = []byte("vectors")

// BoltVectorCache is an Embedder that memoizes vectors in BoltDB keyed
// by a hash of (model, text). Vectors are rebuilt into the in-memory
// index each session, but an unchanged bookmark never hits the
// embedding backend twice across runs.
type BoltVectorCache struct {
	db    *bbolt.DB
	inner port.Embedder
}

type cachedVector struct {
	Vector []float32 `json:"v"`
}

// NewBoltVectorCache opens (or creates) the cache database at path.
func NewBoltVectorCache(path string, inner port.Embedder) (*BoltVectorCache, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVectors)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create vectors bucket: %w", err)
	}

	return &BoltVectorCache{db: db, inner: inner}, nil
}

// Embed serves each text from the cache when possible, delegating
// misses to the wrapped embedder and persisting the results.
func (c *BoltVectorCache) Embed(texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	missIdx := make([]int, 0)
	missTexts := make([]string, 0)

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for i, text := range texts {
			v := b.Get(c.key(text))
			if v == nil {
				missIdx = append(missIdx, i)
				missTexts = append(missTexts, text)
				continue
			}
			var stored cachedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				// Corrupted entry, re-embed.
				missIdx = append(missIdx, i)
				missTexts = append(missTexts, text)
				continue
			}
			vectors[i] = stored.Vector
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	fresh, err := c.inner.Embed(missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for j, idx := range missIdx {
			vectors[idx] = fresh[j]
			data, err := json.Marshal(cachedVector{Vector: fresh[j]})
			if err != nil {
				return err
			}
			if err := b.Put(c.key(missTexts[j]), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist vectors: %w", err)
	}

	return vectors, nil
}

func (c *BoltVectorCache) key(text string) []byte {
	sum := sha256.Sum256([]byte(c.inner.ModelName() + "\x00" + text))
	return []byte(hex.EncodeToString(sum[:]))
}

// Dimension returns the wrapped embedder's dimension.
func (c *BoltVectorCache) Dimension() int {
	return c.inner.Dimension()
}

// ModelName returns the wrapped embedder's model name.
func (c *BoltVectorCache) ModelName() string {
	return c.inner.ModelName()
}

// Close closes the underlying database.
func (c *BoltVectorCache) Close() error {
	return c.db.Close()
}
