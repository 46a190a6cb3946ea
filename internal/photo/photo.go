// Package photo handles uploaded photo files: identity, de-duplication,
// metadata extraction and sampling.
package photo

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"image"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"

	"github.com/kozaktomas/photobook/internal/book"
)

var supportedExt = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp"}

// File is an uploaded photo before analysis. Exactly one of Path or Data holds the pixels.
type File struct {
	Name    string
	Size    int64
	ModTime time.Time
	Path    string
	Data    []byte
}

// Key is the identity used for de-duplication: name, size and modification time in milliseconds.
func (f File) Key() string {
	return fmt.Sprintf("%s|%d|%d", f.Name, f.Size, f.ModTime.UnixMilli())
}

func (f File) open() (io.ReadCloser, error) {
	if f.Data != nil {
		return io.NopCloser(bytes.NewReader(f.Data)), nil
	}
	if f.Path == "" {
		return nil, fmt.Errorf("photo %s has no source", f.Name)
	}
	return os.Open(f.Path)
}

// Deduplicate drops files whose key was already seen. The first occurrence wins.
func Deduplicate(files []File) (unique []File, duplicates int) {
	seen := make(map[string]struct{}, len(files))
	unique = make([]File, 0, len(files))
	for _, f := range files {
		k := f.Key()
		if _, ok := seen[k]; ok {
			duplicates++
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, f)
	}
	return unique, duplicates
}

// IsSupported reports whether the file name has an image extension we can decode.
func IsSupported(name string) bool {
	return slices.Contains(supportedExt, strings.ToLower(filepath.Ext(name)))
}

// LoadDir walks dir and returns every supported image file, sorted by path.
func LoadDir(ctx context.Context, dir string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !IsSupported(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		files = append(files, File{
			Name:    d.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Path:    path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return files, nil
}

// SaveUpload streams a multipart upload to path and returns it as a
// path-backed File. Browsers do not send the original modification time, so
// the caller supplies one (usually a form field).
func SaveUpload(fh *multipart.FileHeader, modTime time.Time, path string) (File, error) {
	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return File{}, fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return File{}, fmt.Errorf("write upload %s: %w", fh.Filename, err)
	}
	if err := dst.Close(); err != nil {
		return File{}, fmt.Errorf("write upload %s: %w", fh.Filename, err)
	}
	return File{
		Name:    filepath.Base(fh.Filename),
		Size:    fh.Size,
		ModTime: modTime,
		Path:    path,
	}, nil
}

// Record is a de-duplicated photo with its basic metadata.
type Record struct {
	File
	ID         string
	Index      int // position in upload order
	Src        string
	Width      int
	Height     int
	CapturedAt time.Time
}

// SortChronological orders records by capture time, oldest first. Records
// without a time go last; ties keep upload order.
func SortChronological(recs []Record) {
	slices.SortStableFunc(recs, func(a, b Record) int {
		if az, bz := a.CapturedAt.IsZero(), b.CapturedAt.IsZero(); az != bz {
			if az {
				return 1
			}
			return -1
		}
		if c := a.CapturedAt.Compare(b.CapturedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
}

func (r Record) AspectRatio() float64 {
	if r.Height == 0 {
		return 1
	}
	return float64(r.Width) / float64(r.Height)
}

func (r Record) IsPortrait() bool  { return r.Height > r.Width }
func (r Record) IsLandscape() bool { return r.Width > r.Height }

// Open reads the dimensions and capture time of a file. The returned record is
// always usable; on error it carries only what could be determined.
func Open(f File, index int) (Record, error) {
	rec := Record{
		File:       f,
		ID:         book.NewID(),
		Index:      index,
		Src:        f.Path,
		CapturedAt: f.ModTime,
	}

	rc, err := f.open()
	if err != nil {
		return rec, err
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return rec, fmt.Errorf("read %s: %w", f.Name, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return rec, fmt.Errorf("decode config %s: %w", f.Name, err)
	}
	rec.Width, rec.Height = cfg.Width, cfg.Height

	if x, err := exif.Decode(bytes.NewReader(data)); err == nil {
		if t, err := x.DateTime(); err == nil {
			rec.CapturedAt = t
		}
		if tag, err := x.Get(exif.Orientation); err == nil {
			// orientations 5-8 are rotated by 90 degrees
			if o, err := tag.Int(0); err == nil && o >= 5 && o <= 8 {
				rec.Width, rec.Height = rec.Height, rec.Width
			}
		}
	}

	return rec, nil
}

// Decode returns the full image, rotated according to its EXIF orientation.
func (r Record) Decode() (image.Image, error) {
	rc, err := r.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.Name, err)
	}
	return img, nil
}
