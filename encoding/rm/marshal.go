package rm

import (
	"bytes"
	"encoding/binary"
)

// MarshalBinary implements encoding.BinaryMarshaler for
// transforming a Rm page into bytes. Pages are always written as v5,
// whatever version they were read from.
func (rm *Rm) MarshalBinary() ([]byte, error) {
	w := new(writer)

	w.writeHeader()
	w.writeNumber(len(rm.Layers))

	for _, layer := range rm.Layers {
		w.writeNumber(len(layer.Lines))

		for _, line := range layer.Lines {
			w.writeLine(line)
		}
	}

	return w.Bytes(), nil
}

type writer struct {
	b bytes.Buffer
}

func (w *writer) Bytes() []byte {
	return w.b.Bytes()
}

func (w *writer) writeHeader() {
	w.b.WriteString(HeaderV5)
}

// writes to a bytes.Buffer cannot fail
func (w *writer) write(v interface{}) {
	_ = binary.Write(&w.b, binary.LittleEndian, v)
}

func (w *writer) writeNumber(n int) {
	w.write(uint32(n))
}

// writeLine mirrors reader.readLine for v5.
func (w *writer) writeLine(line Line) {
	w.write(line.BrushType)
	w.write(line.BrushColor)
	w.write(line.Padding)
	w.write(line.BrushSize)
	w.write(line.Unknown)

	w.writeNumber(len(line.Points))
	for _, point := range line.Points {
		w.write(point)
	}
}
