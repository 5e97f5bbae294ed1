package convocatoria

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/spigell/convocatorias/internal/grading"
)

// compiledCache keeps compiled formula sets keyed by their content, so a
// posting whose criteria changed can never hit a stale entry.
type compiledCache struct {
	items *cache.Cache
}

func newCompiledCache(ttl time.Duration) *compiledCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &compiledCache{items: cache.New(ttl, 2*ttl)}
}

func formulaKey(f grading.FormulaSet) string {
	h := sha256.New()
	for _, s := range []string{f.PartialGrade, f.WeightedScore, f.PassCondition} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *compiledCache) get(f grading.FormulaSet) (*grading.Compiled, error) {
	key := formulaKey(f)
	if v, found := c.items.Get(key); found {
		return v.(*grading.Compiled), nil
	}

	compiled, err := grading.Compile(f)
	if err != nil {
		return nil, err
	}

	c.items.Set(key, compiled, cache.DefaultExpiration)
	return compiled, nil
}

func (c *compiledCache) forget(f grading.FormulaSet) {
	c.items.Delete(formulaKey(f))
}

func (c *compiledCache) len() int { return c.items.ItemCount() }
