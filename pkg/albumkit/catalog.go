package albumkit

import (
	"path"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"k8s.io/klog/v2"
)

// PublicUser owns every album in a statically built catalog.
const PublicUser = "public"

// Epoch stands in for authoring timestamps, which the file system does not carry.
var Epoch = time.Unix(0, 0).UTC()

// Album is a named collection of images sharing one directory.
type Album struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CoverImage  *string   `json:"cover_image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// clone returns a with its optional fields pointing at private copies.
func (a Album) clone() Album {
	if a.Description != nil {
		d := *a.Description
		a.Description = &d
	}
	if a.CoverImage != nil {
		c := *a.CoverImage
		a.CoverImage = &c
	}
	return a
}

// AlbumImage is one entry in an album.
type AlbumImage struct {
	ID            string    `json:"id"`
	AlbumID       string    `json:"album_id"`
	ImageSrc      string    `json:"image_src"`
	ImageThumb    string    `json:"image_thumb"`
	ImageTitle    string    `json:"image_title"`
	ImageCategory string    `json:"image_category"`
	DisplayOrder  int       `json:"display_order"`
	CreatedAt     time.Time `json:"created_at"`
}

// entry is an album under construction. It owns its images and so its next display order.
type entry struct {
	album  Album
	images []AlbumImage
}

func (e *entry) add(img AlbumImage) {
	img.DisplayOrder = len(e.images)
	e.images = append(e.images, img)
}

// Catalog is an immutable set of albums. It is safe for concurrent reads.
type Catalog struct {
	albums []Album
	byID   map[string]*entry
}

// ParseThumbPath splits "<album>/thumbs/<name>" into its album id and name.
func ParseThumbPath(rel string) (albumID string, name string, ok bool) {
	albumID, rest, found := strings.Cut(rel, "/")
	if !found || albumID == "" {
		return "", "", false
	}
	dir, name, found := strings.Cut(rest, "/")
	if !found || !IsCacheDirectory(dir) || name == "" {
		return "", "", false
	}
	return albumID, name, true
}

// ParseSourcePath splits "<album>/<name>" into its album id and name. Paths
// inside any thumbs directory do not match.
func ParseSourcePath(rel string) (albumID string, name string, ok bool) {
	if inThumbDir(rel) {
		return "", "", false
	}
	albumID, name, found := strings.Cut(rel, "/")
	if !found || albumID == "" || name == "" || IsCacheDirectory(albumID) {
		return "", "", false
	}
	return albumID, name, true
}

func thumbKey(albumID string, name string) string {
	return albumID + "::" + name
}

// NewCatalog joins sources to thumbnails by directory convention. Images keep
// the order in which sources are given; albums are sorted by name.
func NewCatalog(sources []Asset, thumbs []Asset) *Catalog {
	thumbURLs := map[string]string{}
	for _, t := range thumbs {
		albumID, name, ok := ParseThumbPath(t.Path)
		if !ok {
			klog.V(2).Infof("ignoring thumb %s: not <album>/%s/<name>", t.Path, ThumbDirName)
			continue
		}
		thumbURLs[thumbKey(albumID, name)] = t.URL
	}

	byID := map[string]*entry{}
	order := []*entry{}
	for _, s := range sources {
		albumID, name, ok := ParseSourcePath(s.Path)
		if !ok {
			klog.V(2).Infof("ignoring source %s: not <album>/<name>", s.Path)
			continue
		}

		e := byID[albumID]
		if e == nil {
			e = &entry{album: Album{
				ID:        albumID,
				UserID:    PublicUser,
				Name:      Humanize(albumID),
				CreatedAt: Epoch,
				UpdatedAt: Epoch,
			}}
			byID[albumID] = e
			order = append(order, e)
		}

		title := Humanize(stem(path.Base(name)))
		if title == "" {
			title = e.album.Name
		}

		thumb, ok := thumbURLs[thumbKey(albumID, name)]
		if !ok {
			thumb = s.URL
		}

		e.add(AlbumImage{
			ID:            albumID + "-" + name,
			AlbumID:       albumID,
			ImageSrc:      s.URL,
			ImageThumb:    thumb,
			ImageTitle:    title,
			ImageCategory: e.album.Name,
			CreatedAt:     Epoch,
		})
	}

	return finalize(byID, order)
}

func finalize(byID map[string]*entry, order []*entry) *Catalog {
	albums := []Album{}
	for _, e := range order {
		if len(e.images) == 0 {
			delete(byID, e.album.ID)
			continue
		}
		cover := e.images[0].ImageThumb
		e.album.CoverImage = &cover
		albums = append(albums, e.album.clone())
	}

	col := collate.New(language.Und)
	slices.SortStableFunc(albums, func(a, b Album) int {
		return col.CompareString(a.Name, b.Name)
	})

	klog.V(1).Infof("catalog: %d albums", len(albums))
	return &Catalog{albums: albums, byID: byID}
}

// ListAlbums returns all albums sorted by name.
func (c *Catalog) ListAlbums() []Album {
	as := make([]Album, 0, len(c.albums))
	for _, a := range c.albums {
		as = append(as, a.clone())
	}
	return as
}

// Album returns the album with the given id.
func (c *Catalog) Album(id string) (Album, bool) {
	e, ok := c.byID[id]
	if !ok {
		return Album{}, false
	}
	return e.album.clone(), true
}

// GetAlbumImages returns a copy of the album's images in display order. An
// unknown id yields an empty slice.
func (c *Catalog) GetAlbumImages(albumID string) []AlbumImage {
	e, ok := c.byID[albumID]
	if !ok {
		return []AlbumImage{}
	}
	is := slices.Clone(e.images)
	slices.SortStableFunc(is, func(a, b AlbumImage) int {
		return a.DisplayOrder - b.DisplayOrder
	})
	return is
}

// Load scans root and builds a catalog from what is on disk.
func Load(root string, urlBase string) (*Catalog, error) {
	inv, err := Scan(root, urlBase)
	if err != nil {
		return nil, err
	}
	return NewCatalog(inv.Sources, inv.Thumbs), nil
}
