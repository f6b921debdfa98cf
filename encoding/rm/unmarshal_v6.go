package rm

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// V6 pages are a sequence of tagged blocks. Only scene line items carry
// strokes; every other block is skipped.

const (
	blockTypeSceneLineItem = 0x05
	lineItemType           = 0x03
	// float32 x,y + uint16 speed,width + uint8 direction,pressure
	pointSizeV2 = 14
	// length, unknown, min version, current version, block type
	blockHeaderLen = 8
)

const (
	tagTypeByte1   = 0x1
	tagTypeByte4   = 0x4
	tagTypeByte8   = 0x8
	tagTypeLength4 = 0xC
	tagTypeID      = 0xF
)

var errShortData = errors.New("unexpected end of data")

// dataStream is a cursor over a v6 block.
type dataStream struct {
	data []byte
	pos  int
}

func newDataStream(data []byte) *dataStream {
	return &dataStream{data: data}
}

func (ds *dataStream) remaining() int {
	return len(ds.data) - ds.pos
}

func (ds *dataStream) readBytes(n int) ([]byte, error) {
	if n < 0 || ds.pos+n > len(ds.data) {
		return nil, errShortData
	}
	b := ds.data[ds.pos : ds.pos+n]
	ds.pos += n
	return b, nil
}

func (ds *dataStream) readVaruint() (uint64, error) {
	var result uint64
	for shift := 0; shift < 64; shift += 7 {
		if ds.pos >= len(ds.data) {
			return 0, errShortData
		}
		b := ds.data[ds.pos]
		ds.pos++
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
	}
	return 0, errors.New("varuint too large")
}

func (ds *dataStream) readUint32() (uint32, error) {
	b, err := ds.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (ds *dataStream) readFloat64() (float64, error) {
	b, err := ds.readBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// readTag returns the (index, type) pair packed as (index << 4) | type.
func (ds *dataStream) readTag() (int, int, error) {
	v, err := ds.readVaruint()
	if err != nil {
		return 0, 0, err
	}
	return int(v >> 4), int(v & 0xF), nil
}

// skipValue moves past the value of a tag of the given type.
func (ds *dataStream) skipValue(tagType int) error {
	switch tagType {
	case tagTypeByte1:
		_, err := ds.readBytes(1)
		return err
	case tagTypeByte4:
		_, err := ds.readBytes(4)
		return err
	case tagTypeByte8:
		_, err := ds.readBytes(8)
		return err
	case tagTypeLength4:
		n, err := ds.readUint32()
		if err != nil {
			return err
		}
		_, err = ds.readBytes(int(n))
		return err
	case tagTypeID:
		// crdt id: uint8 + varuint
		if _, err := ds.readBytes(1); err != nil {
			return err
		}
		_, err := ds.readVaruint()
		return err
	}
	return errors.Errorf("unknown tag type %#x", tagType)
}

// readSubblock returns the payload of a length prefixed tag value.
func (ds *dataStream) readSubblock() ([]byte, error) {
	n, err := ds.readUint32()
	if err != nil {
		return nil, err
	}
	return ds.readBytes(int(n))
}

func unmarshalV6(rm *Rm, data []byte) error {
	if len(data) < HeaderLen {
		return errors.New("file too short")
	}

	var lines []Line
	pos := HeaderLen
	for pos+blockHeaderLen <= len(data) {
		blockLength := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
		unknown := data[pos+4]
		version := data[pos+6]
		blockType := data[pos+7]
		start := pos + blockHeaderLen
		end := start + blockLength
		if blockLength < 0 || end > len(data) {
			return errors.Errorf("block at %d overruns the file", pos)
		}

		if unknown == 0 && blockType == blockTypeSceneLineItem {
			line, ok := parseSceneLineItem(data[start:end], version)
			if ok {
				lines = append(lines, line)
			}
		}
		pos = end
	}

	// v6 has no layer list in line blocks, everything goes to one layer
	rm.Layers = []Layer{}
	if len(lines) > 0 {
		rm.Layers = []Layer{{Lines: lines}}
	}
	return nil
}

// parseSceneLineItem finds the item subblock (tag 6) of a scene line item
// block and decodes the line in it. Deleted items have no subblock.
func parseSceneLineItem(block []byte, version uint8) (Line, bool) {
	ds := newDataStream(block)
	for ds.remaining() > 0 {
		index, tagType, err := ds.readTag()
		if err != nil {
			return Line{}, false
		}
		if index == 6 && tagType == tagTypeLength4 {
			sub, err := ds.readSubblock()
			if err != nil {
				return Line{}, false
			}
			line, err := parseLineItem(sub, version)
			if err != nil || len(line.Points) == 0 {
				return Line{}, false
			}
			return line, true
		}
		if err := ds.skipValue(tagType); err != nil {
			return Line{}, false
		}
	}
	return Line{}, false
}

// parseLineItem decodes the tagged line fields:
// 1 tool, 2 color, 3 thickness scale, 4 starting length, 5 points.
func parseLineItem(sub []byte, version uint8) (Line, error) {
	var line Line
	ds := newDataStream(sub)

	itemType, err := ds.readBytes(1)
	if err != nil {
		return line, err
	}
	if itemType[0] != lineItemType {
		return line, errors.Errorf("unexpected item type %d", itemType[0])
	}

	var pointsData []byte
	for ds.remaining() > 0 {
		index, tagType, err := ds.readTag()
		if err != nil {
			return line, err
		}

		switch {
		case index == 1 && tagType == tagTypeByte4:
			v, err := ds.readUint32()
			if err != nil {
				return line, err
			}
			line.BrushType = BrushType(v)
		case index == 2 && tagType == tagTypeByte4:
			v, err := ds.readUint32()
			if err != nil {
				return line, err
			}
			line.BrushColor = BrushColor(v)
		case index == 3 && tagType == tagTypeByte8:
			v, err := ds.readFloat64()
			if err != nil {
				return line, err
			}
			line.BrushSize = BrushSize(v)
		case index == 4 && tagType == tagTypeByte4:
			v, err := ds.readUint32()
			if err != nil {
				return line, err
			}
			line.Unknown = math.Float32frombits(v)
		case index == 5 && tagType == tagTypeLength4:
			if pointsData, err = ds.readSubblock(); err != nil {
				return line, err
			}
		default:
			if err := ds.skipValue(tagType); err != nil {
				return line, err
			}
		}
	}

	if version < 2 {
		line.Points, err = parsePointsV1(pointsData)
	} else {
		line.Points, err = parsePointsV2(pointsData)
	}
	return line, err
}

// parsePointsV1 decodes the early layout of six float32 per point.
func parsePointsV1(data []byte) ([]Point, error) {
	if len(data)%pointSize != 0 {
		return nil, errors.Errorf("points data length not multiple of %d", pointSize)
	}

	r := newReader(data)
	points := make([]Point, 0, len(data)/pointSize)
	for r.Len() > 0 {
		p, err := r.readPoint()
		if err != nil {
			return nil, err
		}
		if !isValidCoordinate(p.X) || !isValidCoordinate(p.Y) {
			continue
		}
		points = append(points, p)
	}
	return points, nil
}

func parsePointsV2(data []byte) ([]Point, error) {
	if len(data)%pointSizeV2 != 0 {
		return nil, errors.Errorf("points data length not multiple of %d", pointSizeV2)
	}

	points := make([]Point, 0, len(data)/pointSizeV2)
	for off := 0; off < len(data); off += pointSizeV2 {
		b := data[off : off+pointSizeV2]
		x := math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))
		y := math.Float32frombits(binary.LittleEndian.Uint32(b[4:8]))
		if !isValidCoordinate(x) || !isValidCoordinate(y) {
			continue
		}
		points = append(points, Point{
			X:         x,
			Y:         y,
			Speed:     float32(binary.LittleEndian.Uint16(b[8:10])),
			Width:     float32(binary.LittleEndian.Uint16(b[10:12])),
			Direction: float32(b[12]),
			Pressure:  float32(b[13]) / 255.0,
		})
	}
	return points, nil
}

func isValidCoordinate(c float32) bool {
	return !math.IsNaN(float64(c)) && !math.IsInf(float64(c), 0)
}
