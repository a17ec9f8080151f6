// Package catalog holds the ordered collections of selectable image assets
// from which the try-on wizard picks its inputs.
package catalog

// Asset is a selectable image. Data is either a remote URL (presets) or a
// data URL (uploads and generated garments); Embedded tells the two apart.
// Assets are immutable once created and ids are never reused.
type Asset struct {
	ID       string `json:"id"`
	Data     string `json:"data"`
	Embedded bool   `json:"embedded"`
}

// Catalog is an immutable, most-recent-first sequence of assets. Mutations
// return a new value so partially applied updates are never observable.
type Catalog struct {
	assets []Asset
}

func New(assets ...Asset) Catalog {
	out := make([]Asset, len(assets))
	copy(out, assets)
	return Catalog{assets: out}
}

// Prepend returns a new catalog with the asset at the front. The caller
// guarantees the id does not already exist.
func (c Catalog) Prepend(a Asset) Catalog {
	out := make([]Asset, 0, len(c.assets)+1)
	out = append(out, a)
	out = append(out, c.assets...)
	return Catalog{assets: out}
}

// FindByID looks an asset up by identity. Absence is a normal outcome.
func (c Catalog) FindByID(id string) (Asset, bool) {
	for _, a := range c.assets {
		if a.ID == id {
			return a, true
		}
	}
	return Asset{}, false
}

// Assets returns a copy of the assets in order.
func (c Catalog) Assets() []Asset {
	out := make([]Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

func (c Catalog) Len() int {
	return len(c.assets)
}
