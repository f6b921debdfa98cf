package rm

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

// UnmarshalBinary implements encoding.BinaryUnmarshaler for
// transforming bytes into a Rm page
func (rm *Rm) UnmarshalBinary(data []byte) error {
	r := newReader(data)
	if err := r.checkHeader(); err != nil {
		return err
	}
	rm.Version = r.version

	// V6 uses tagged scene blocks instead of a fixed layout
	if r.version == V6 {
		return unmarshalV6(rm, data)
	}

	nbLayers, err := r.readNumber()
	if err != nil {
		return err
	}

	// every layer starts with its line count
	if int64(nbLayers)*4 > int64(r.Len()) {
		return errors.Errorf("page claims %d layers, only %d bytes left", nbLayers, r.Len())
	}

	rm.Layers = make([]Layer, nbLayers)
	for i := uint32(0); i < nbLayers; i++ {
		nbLines, err := r.readNumber()
		if err != nil {
			return errors.Wrapf(err, "layer %d", i)
		}
		if int64(nbLines)*r.minLineSize() > int64(r.Len()) {
			return errors.Errorf("layer %d claims %d lines, only %d bytes left", i, nbLines, r.Len())
		}

		rm.Layers[i].Lines = make([]Line, nbLines)
		for j := uint32(0); j < nbLines; j++ {
			line, err := r.readLine()
			if err != nil {
				return errors.Wrapf(err, "layer %d line %d", i, j)
			}
			rm.Layers[i].Lines[j] = line
		}
	}

	return nil
}

type reader struct {
	bytes.Reader
	version Version
}

func newReader(data []byte) *reader {
	// V5 is the default, the header decides
	return &reader{Reader: *bytes.NewReader(data), version: V5}
}

func (r *reader) checkHeader() error {
	buf := make([]byte, HeaderLen)

	n, err := r.Read(buf)
	if err != nil {
		return errors.Wrap(err, "read header")
	}

	if n != HeaderLen {
		return errors.New("wrong header size")
	}

	switch string(buf) {
	case HeaderV5:
		r.version = V5
	case HeaderV3:
		r.version = V3
	case HeaderV6:
		r.version = V6
	default:
		// some writers pad the v6 header differently
		if strings.Contains(string(buf), "version=6") {
			r.version = V6
		} else {
			return errors.New("unknown header")
		}
	}

	return nil
}

func (r *reader) readNumber() (uint32, error) {
	var nb uint32
	if err := binary.Read(r, binary.LittleEndian, &nb); err != nil {
		return 0, errors.New("wrong number read")
	}
	return nb, nil
}

// minLineSize is the size of a line without points: the brush fields
// and the point count.
func (r *reader) minLineSize() int64 {
	if r.version == V3 {
		return 5 * 4
	}
	return 6 * 4
}

func (r *reader) readLine() (Line, error) {
	var line Line

	fields := []interface{}{&line.BrushType, &line.BrushColor, &line.Padding, &line.BrushSize}
	// this attribute has been added in v5
	if r.version == V5 {
		fields = append(fields, &line.Unknown)
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return line, errors.New("failed to read line")
		}
	}

	nbPoints, err := r.readNumber()
	if err != nil {
		return line, err
	}

	if nbPoints == 0 {
		return line, nil
	}

	// every point takes 24 bytes, refuse counts the data cannot hold
	if int64(nbPoints)*pointSize > int64(r.Len()) {
		return line, errors.Errorf("line claims %d points, only %d bytes left", nbPoints, r.Len())
	}

	line.Points = make([]Point, nbPoints)
	for i := uint32(0); i < nbPoints; i++ {
		p, err := r.readPoint()
		if err != nil {
			return line, err
		}
		line.Points[i] = p
	}

	return line, nil
}

const pointSize = 24

func (r *reader) readPoint() (Point, error) {
	var point Point

	if err := binary.Read(r, binary.LittleEndian, &point); err != nil {
		return point, errors.New("failed to read point")
	}

	return point, nil
}
