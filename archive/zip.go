// Package archive reads and writes zipped notebooks: a set of .rm pages and
// the .content file that orders them.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ddvk/rmshapes/encoding/rm"
	"github.com/ddvk/rmshapes/log"
)

const (
	rmExt      = ".rm"
	contentExt = ".content"
)

var ErrNoPages = errors.New("no pages found in archive")

// Zip is a notebook.
type Zip struct {
	UUID  string
	Pages []Page
}

// Page is one .rm entry of a notebook.
type Page struct {
	// Name is the entry path inside the zip, usually <uuid>/<page id>.rm
	Name string
	Data *rm.Rm
}

// content is the part of the .content file used to order pages
type content struct {
	CPages struct {
		Pages []struct {
			ID string `json:"id"`
		} `json:"pages"`
	} `json:"cPages"`
}

// NewZip returns an empty notebook with a fresh id.
func NewZip() *Zip {
	return &Zip{UUID: uuid.New().String()}
}

// Read loads every .rm entry of the zip in r. Pages follow the order of
// the .content file when there is one, entry name order otherwise.
func (z *Zip) Read(r io.ReaderAt, size int64) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return errors.Wrap(err, "can't open as zip")
	}

	order := map[string]int{}
	var entries []*zip.File
	for _, f := range zr.File {
		switch {
		case strings.HasSuffix(f.Name, contentExt):
			z.UUID = strings.TrimSuffix(path.Base(f.Name), contentExt)
			order, err = readOrder(f)
			if err != nil {
				return err
			}
		case strings.HasSuffix(f.Name, rmExt):
			entries = append(entries, f)
		}
	}

	rank := func(f *zip.File) int {
		id := strings.TrimSuffix(path.Base(f.Name), rmExt)
		if i, ok := order[id]; ok {
			return i
		}
		return len(order)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := rank(entries[i]), rank(entries[j])
		if ri != rj {
			return ri < rj
		}
		return entries[i].Name < entries[j].Name
	})

	z.Pages = z.Pages[:0]
	for _, f := range entries {
		page, err := readPage(f)
		if err != nil {
			log.Warning.Printf("skipping page %s: %v", f.Name, err)
			continue
		}
		z.Pages = append(z.Pages, page)
	}

	if len(z.Pages) == 0 {
		return ErrNoPages
	}
	log.Trace.Printf("archive %s: %d pages", z.UUID, len(z.Pages))
	return nil
}

func readOrder(f *zip.File) (map[string]int, error) {
	data, err := readEntry(f)
	if err != nil {
		return nil, err
	}

	var c content
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "can't parse content file")
	}

	order := make(map[string]int, len(c.CPages.Pages))
	for i, p := range c.CPages.Pages {
		order[p.ID] = i
	}
	return order, nil
}

func readPage(f *zip.File) (Page, error) {
	data, err := readEntry(f)
	if err != nil {
		return Page{}, err
	}

	page := Page{Name: f.Name, Data: &rm.Rm{}}
	if err := page.Data.UnmarshalBinary(data); err != nil {
		return Page{}, err
	}
	return page, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", f.Name)
	}
	defer rc.Close()

	return ioutil.ReadAll(rc)
}

// Write stores the pages as v5 together with a .content file listing them
// in order. Unnamed pages are named after their position.
func (z *Zip) Write(w io.Writer) error {
	if z.UUID == "" {
		z.UUID = uuid.New().String()
	}

	zw := zip.NewWriter(w)

	var c content
	for i := range z.Pages {
		page := &z.Pages[i]
		if page.Name == "" {
			page.Name = fmt.Sprintf("%s/%d%s", z.UUID, i, rmExt)
		}

		data, err := page.Data.MarshalBinary()
		if err != nil {
			return errors.Wrapf(err, "encode %s", page.Name)
		}
		if err := writeEntry(zw, page.Name, data); err != nil {
			return err
		}

		id := strings.TrimSuffix(path.Base(page.Name), rmExt)
		c.CPages.Pages = append(c.CPages.Pages, struct {
			ID string `json:"id"`
		}{ID: id})
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := writeEntry(zw, z.UUID+contentExt, data); err != nil {
		return err
	}

	return zw.Close()
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return errors.Wrapf(err, "failed to create zip entry %s", name)
	}
	_, err = io.Copy(f, bytes.NewReader(data))
	return err
}

// Open loads a bare .rm page as a one page notebook, anything else as a
// zipped notebook.
func Open(filename string) (*Zip, error) {
	if strings.EqualFold(filepath.Ext(filename), rmExt) {
		data, err := ioutil.ReadFile(filename)
		if err != nil {
			return nil, err
		}

		page := Page{Name: filepath.Base(filename), Data: &rm.Rm{}}
		if err := page.Data.UnmarshalBinary(data); err != nil {
			return nil, errors.Wrapf(err, "can't parse %s", filename)
		}

		z := NewZip()
		z.Pages = []Page{page}
		return z, nil
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fi, err := file.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "can't stat file")
	}

	z := NewZip()
	if err := z.Read(file, fi.Size()); err != nil {
		return nil, errors.Wrapf(err, "can't read %s", filename)
	}
	return z, nil
}

// Save writes the notebook to filename, or the first page as a bare .rm
// when filename ends in .rm.
func (z *Zip) Save(filename string) error {
	if strings.EqualFold(filepath.Ext(filename), rmExt) {
		if len(z.Pages) == 0 {
			return ErrNoPages
		}
		data, err := z.Pages[0].Data.MarshalBinary()
		if err != nil {
			return err
		}
		return ioutil.WriteFile(filename, data, 0644)
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := z.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
