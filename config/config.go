// Package config loads the YAML settings of the shell, the server and the
// converter.
package config

import (
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	yaml "gopkg.in/yaml.v2"

	"github.com/ddvk/rmshapes/gesture"
	"github.com/ddvk/rmshapes/log"
	"github.com/ddvk/rmshapes/pages"
	"github.com/ddvk/rmshapes/shape"
)

const (
	configFileName  = "config.yaml"
	configDirName   = "rmshapes"
	fallbackDirName = ".rmshapes"

	EnvConfig    = "RMSHAPES_CONFIG"
	EnvSecret    = "RMSHAPES_SERVER_SECRET"
	EnvBatchSize = "RMSHAPES_SCAN_BATCHSIZE"
	EnvMinScore  = "RMSHAPES_GESTURE_MINSCORE"

	DefaultMinScore  = pages.DefaultMinScore
	DefaultBatchSize = pages.DefaultBatchSize
	DefaultAddr      = ":8080"
)

type Shape struct {
	ToleranceSquared float64 `yaml:"toleranceSquared"`
	ClosedFloor      float64 `yaml:"closedFloor"`
	ClosedRatio      float64 `yaml:"closedRatio"`
	Circularity      float64 `yaml:"circularity"`
}

type Gesture struct {
	Templates string  `yaml:"templates"`
	MinScore  float64 `yaml:"minScore"`
}

type Scan struct {
	BatchSize int64 `yaml:"batchSize"`
}

type Server struct {
	Addr   string `yaml:"addr"`
	Secret string `yaml:"secret"`
}

// Config is the whole settings file.
type Config struct {
	Shape   Shape   `yaml:"shape"`
	Gesture Gesture `yaml:"gesture"`
	Scan    Scan    `yaml:"scan"`
	Server  Server  `yaml:"server"`

	// Warnings collects what was ignored or replaced while loading.
	Warnings []string `yaml:"-"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	opts := shape.DefaultOptions()
	return Config{
		Shape: Shape{
			ToleranceSquared: opts.ToleranceSquared,
			ClosedFloor:      opts.ClosedFloor,
			ClosedRatio:      opts.ClosedRatio,
			Circularity:      opts.CircularityThreshold,
		},
		Gesture: Gesture{MinScore: DefaultMinScore},
		Scan:    Scan{BatchSize: DefaultBatchSize},
		Server:  Server{Addr: DefaultAddr},
	}
}

var knownKeys = map[string][]string{
	"shape":   {"toleranceSquared", "closedFloor", "closedRatio", "circularity"},
	"gesture": {"templates", "minScore"},
	"scan":    {"batchSize"},
	"server":  {"addr", "secret"},
}

// Path returns the config file location: $RMSHAPES_CONFIG, else the user
// config dir, else ~/.rmshapes.
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}

	configDir, err := os.UserConfigDir()
	if err == nil {
		dir := path.Join(configDir, configDirName)
		if err = os.MkdirAll(dir, 0700); err == nil {
			return path.Join(dir, configFileName), nil
		}
	}

	// Fallback to home directory if config dir cannot be used
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "no config directory")
	}
	dir := path.Join(home, fallbackDirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return path.Join(dir, configFileName), nil
}

// LoadDefault loads the file at Path.
func LoadDefault() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return Load(p)
}

// Load reads the file at p. A missing file yields the defaults, environment
// overrides still apply.
func Load(p string) (Config, error) {
	data, err := ioutil.ReadFile(p)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, errors.Wrapf(err, "read config %s", p)
		}
		log.Trace.Printf("no config at %s, using defaults", p)
		data = nil
	} else {
		log.Trace.Println("config loaded: ", p)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", p)
	}
	cfg.applyEnv()

	for _, w := range cfg.Warnings {
		log.Warning.Println(w)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	cfg.Warnings = unknownKeys(raw)

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	cfg.validate()
	return cfg, nil
}

func unknownKeys(raw map[string]interface{}) []string {
	var warnings []string
	for section, value := range raw {
		keys, ok := knownKeys[section]
		if !ok {
			warnings = append(warnings, "unknown config section: "+section)
			continue
		}
		fields, ok := value.(map[interface{}]interface{})
		if !ok {
			continue
		}
		for k := range fields {
			name := cast.ToString(k)
			if !contains(keys, name) {
				warnings = append(warnings, "unknown config key: "+section+"."+name)
			}
		}
	}
	sort.Strings(warnings)
	return warnings
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (c *Config) warnf(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// NaN compares false both ways, so range checks test for it first.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validate puts back the default of every out of range value.
func (c *Config) validate() {
	def := Default()

	if !finite(c.Shape.ToleranceSquared) || c.Shape.ToleranceSquared < 0 {
		c.warnf("shape.toleranceSquared %v is not a non-negative number, using %v", c.Shape.ToleranceSquared, def.Shape.ToleranceSquared)
		c.Shape.ToleranceSquared = def.Shape.ToleranceSquared
	}
	if !finite(c.Shape.ClosedFloor) || c.Shape.ClosedFloor < 0 {
		c.warnf("shape.closedFloor %v is not a non-negative number, using %v", c.Shape.ClosedFloor, def.Shape.ClosedFloor)
		c.Shape.ClosedFloor = def.Shape.ClosedFloor
	}
	if math.IsNaN(c.Shape.ClosedRatio) || c.Shape.ClosedRatio < 0 || c.Shape.ClosedRatio > 1 {
		c.warnf("shape.closedRatio %v is outside [0,1], using %v", c.Shape.ClosedRatio, def.Shape.ClosedRatio)
		c.Shape.ClosedRatio = def.Shape.ClosedRatio
	}
	if math.IsNaN(c.Shape.Circularity) || c.Shape.Circularity <= 0 || c.Shape.Circularity > 1 {
		c.warnf("shape.circularity %v is outside (0,1], using %v", c.Shape.Circularity, def.Shape.Circularity)
		c.Shape.Circularity = def.Shape.Circularity
	}
	if math.IsNaN(c.Gesture.MinScore) || c.Gesture.MinScore < 0 || c.Gesture.MinScore > 1 {
		c.warnf("gesture.minScore %v is outside [0,1], using %v", c.Gesture.MinScore, def.Gesture.MinScore)
		c.Gesture.MinScore = def.Gesture.MinScore
	}
	if c.Scan.BatchSize <= 0 {
		c.warnf("scan.batchSize %v is not positive, using %v", c.Scan.BatchSize, def.Scan.BatchSize)
		c.Scan.BatchSize = def.Scan.BatchSize
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
}

func (c *Config) applyEnv() {
	if s := os.Getenv(EnvSecret); s != "" {
		c.Server.Secret = s
	}

	if v := os.Getenv(EnvBatchSize); v != "" {
		n, err := cast.ToInt64E(v)
		if err != nil || n <= 0 {
			c.warnf("%s=%q is not a positive number, ignored", EnvBatchSize, v)
		} else {
			c.Scan.BatchSize = n
		}
	}

	if v := os.Getenv(EnvMinScore); v != "" {
		f, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
			c.warnf("%s=%q is not a score in [0,1], ignored", EnvMinScore, v)
		} else {
			c.Gesture.MinScore = f
		}
	}
}

// ShapeOptions returns the finalizer thresholds.
func (c Config) ShapeOptions() shape.Options {
	return shape.Options{
		ToleranceSquared:     c.Shape.ToleranceSquared,
		ClosedFloor:          c.Shape.ClosedFloor,
		ClosedRatio:          c.Shape.ClosedRatio,
		CircularityThreshold: c.Shape.Circularity,
	}
}

// Library returns the default templates extended with the ones in the
// configured template file.
func (c Config) Library() (*gesture.Library, error) {
	lib := gesture.DefaultLibrary()
	if c.Gesture.Templates == "" {
		return lib, nil
	}

	templates, _, err := gesture.LoadTemplateFile(c.Gesture.Templates)
	if err != nil {
		return nil, errors.Wrapf(err, "templates %s", c.Gesture.Templates)
	}
	log.Trace.Printf("%d templates loaded from %s", len(templates), c.Gesture.Templates)
	return lib.With(templates...), nil
}

// Pages returns the scan configuration: finalizer thresholds, template
// library, score threshold and batch size.
func (c Config) Pages() (pages.Config, error) {
	lib, err := c.Library()
	if err != nil {
		return pages.Config{}, err
	}
	return pages.Config{
		Finalize:   true,
		Recognize:  true,
		MinScore:   c.Gesture.MinScore,
		BatchSize:  c.Scan.BatchSize,
		Finalizer:  shape.NewFinalizer(c.ShapeOptions()),
		Recognizer: gesture.NewRecognizer(lib),
	}, nil
}
