package gesture

import (
	"io"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/ddvk/rmshapes/geometry"
)

// Source is a raw, unnormalized template stroke as kept in template files.
type Source struct {
	Name   string           `yaml:"name"`
	Points []geometry.Point `yaml:"points"`
}

// LoadTemplates reads a YAML list of sources and normalizes each of them.
func LoadTemplates(r io.Reader) ([]Template, []Source, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read templates")
	}

	var sources []Source
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, nil, errors.Wrap(err, "parse templates")
	}

	templates := make([]Template, 0, len(sources))
	for i, s := range sources {
		if s.Name == "" {
			return nil, nil, errors.Errorf("template %d has no name", i)
		}
		if len(s.Points) < 2 {
			return nil, nil, errors.Errorf("template %q needs at least 2 points, has %d", s.Name, len(s.Points))
		}
		templates = append(templates, NewTemplate(s.Name, s.Points))
	}
	return templates, sources, nil
}

// SaveTemplates writes sources as YAML.
func SaveTemplates(w io.Writer, sources []Source) error {
	data, err := yaml.Marshal(sources)
	if err != nil {
		return errors.Wrap(err, "encode templates")
	}
	_, err = w.Write(data)
	return err
}

// LoadTemplateFile reads a template file. A missing file yields no templates.
func LoadTemplateFile(path string) ([]Template, []Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	defer f.Close()

	return LoadTemplates(f)
}

// AddTemplateFile appends or replaces the source named s.Name in the
// template file at path.
func AddTemplateFile(path string, s Source) error {
	_, sources, err := LoadTemplateFile(path)
	if err != nil {
		return err
	}

	found := false
	for i := range sources {
		if sources[i].Name == s.Name {
			sources[i] = s
			found = true
			break
		}
	}
	if !found {
		sources = append(sources, s)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := SaveTemplates(f, sources); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
