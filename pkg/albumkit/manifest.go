package albumkit

import (
	"encoding/json"
	"fmt"
	"io"
)

// Manifest is the serialized form of a Catalog consumed by the presentation layer.
type Manifest struct {
	Albums []Album                 `json:"albums"`
	Images map[string][]AlbumImage `json:"images"`
}

// Manifest returns the catalog's serializable form.
func (c *Catalog) Manifest() *Manifest {
	m := &Manifest{Albums: c.ListAlbums(), Images: map[string][]AlbumImage{}}
	for _, a := range m.Albums {
		m.Images[a.ID] = c.GetAlbumImages(a.ID)
	}
	return m
}

// WriteManifest writes the catalog as indented JSON.
func WriteManifest(w io.Writer, c *Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Manifest()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest written by WriteManifest. Album order and
// display order are restored as written.
func LoadManifest(r io.Reader) (*Catalog, error) {
	m := &Manifest{}
	if err := json.NewDecoder(r).Decode(m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	byID := map[string]*entry{}
	albums := []Album{}
	for _, a := range m.Albums {
		is := m.Images[a.ID]
		if len(is) == 0 {
			continue
		}
		if a.CoverImage == nil {
			cover := is[0].ImageThumb
			a.CoverImage = &cover
		}
		byID[a.ID] = &entry{album: a, images: is}
		albums = append(albums, a.clone())
	}
	return &Catalog{albums: albums, byID: byID}, nil
}
