package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gopkg.in/yaml.v3"

	currency "github.com/malusev998/currency-board"
)

// Catalog is the list of currencies a board can offer. It is created once
// and shared by reference; Replace swaps the whole list.
type Catalog struct {
	lock       sync.RWMutex
	currencies []currency.Currency
	index      map[currency.Code]int
	fallback   bool
}

func New(currencies []currency.Currency) *Catalog {
	c := &Catalog{}
	c.Replace(currencies)

	return c
}

// Default returns a catalog holding the built-in major currencies.
func Default() *Catalog {
	c := New(defaultCurrencies)
	c.fallback = true

	return c
}

// Enrich fills name, symbol and flag from the static tables, falling back to
// what the provider sent and then to the code itself.
func Enrich(c currency.Currency) currency.Currency {
	if name, ok := names[c.Code]; ok {
		c.Name = name
	} else if c.Name == "" {
		c.Name = string(c.Code)
	}

	if symbol, ok := symbols[c.Code]; ok {
		c.Symbol = symbol
	} else if c.Symbol == "" {
		c.Symbol = string(c.Code)
	}

	if flag, ok := flags[c.Code]; ok {
		c.Flag = flag
	} else if c.Flag == "" && len(c.Code) >= 2 {
		c.Flag = string(c.Code[:2])
	}

	return c
}

func (c *Catalog) Replace(currencies []currency.Currency) {
	list := make([]currency.Currency, 0, len(currencies))
	index := make(map[currency.Code]int, len(currencies))

	for _, cur := range currencies {
		code, err := currency.Normalize(string(cur.Code))
		if err != nil {
			continue
		}

		if _, exists := index[code]; exists {
			continue
		}

		cur.Code = code
		index[code] = len(list)
		list = append(list, Enrich(cur))
	}

	c.lock.Lock()
	c.currencies = list
	c.index = index
	c.fallback = false
	c.lock.Unlock()
}

// Lookup returns the catalog entry, or an enriched placeholder for unknown codes.
func (c *Catalog) Lookup(code currency.Code) (currency.Currency, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if i, ok := c.index[code]; ok {
		return c.currencies[i], true
	}

	return Enrich(currency.Currency{Code: code}), false
}

func (c *Catalog) Contains(code currency.Code) bool {
	_, ok := c.Lookup(code)
	return ok
}

func (c *Catalog) All() []currency.Currency {
	c.lock.RLock()
	defer c.lock.RUnlock()

	all := make([]currency.Currency, len(c.currencies))
	copy(all, c.currencies)

	return all
}

// Search matches the query against codes and names, case-insensitively.
func (c *Catalog) Search(query string) []currency.Currency {
	query = strings.ToLower(strings.TrimSpace(query))
	result := make([]currency.Currency, 0)

	for _, cur := range c.All() {
		if strings.Contains(strings.ToLower(string(cur.Code)), query) ||
			strings.Contains(strings.ToLower(cur.Name), query) {
			result = append(result, cur)
		}
	}

	return result
}

func (c *Catalog) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return len(c.currencies)
}

// Fallback reports whether the catalog still holds only the built-in list.
func (c *Catalog) Fallback() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.fallback
}

// LoadFile reads a YAML list of currencies.
func LoadFile(path string) ([]currency.Currency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}

	var file struct {
		Currencies []currency.Currency `yaml:"currencies"`
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}

	return file.Currencies, nil
}

// Load builds the catalog from the fetcher. When the provider is unreachable
// or unauthenticated the built-in list is kept and the error is only logged.
func Load(ctx context.Context, fetcher currency.Fetcher, logger log.Logger) *Catalog {
	c := Default()

	currencies, err := fetcher.Currencies(ctx)
	if err != nil {
		level.Warn(logger).Log("msg", "using built-in currency catalog", "err", err)
		return c
	}

	if len(currencies) == 0 {
		level.Warn(logger).Log("msg", "provider returned no currencies, using built-in catalog")
		return c
	}

	c.Replace(currencies)
	level.Info(logger).Log("msg", "currency catalog loaded", "currencies", c.Len())

	return c
}
