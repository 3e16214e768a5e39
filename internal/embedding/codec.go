package embedding

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
)

// Binary layout (little endian):
//
//	magic "BGEM" | version u16 | dim u32 | count u32
//	count * ( labelLen u32 | label bytes | dim * float32 )
const (
	codecMagic   = "BGEM"
	codecVersion = uint16(1)
	maxLabelLen  = 1 << 16
)

// Encode serialises the model into the binary model format.
func Encode(m *Model) []byte {
	var buf bytes.Buffer
	buf.Grow(14 + m.Len()*(4+16+m.dim*4))

	buf.WriteString(codecMagic)
	writeU16(&buf, codecVersion)
	writeU32(&buf, uint32(m.dim))
	writeU32(&buf, uint32(len(m.names)))

	for i, name := range m.names {
		writeU32(&buf, uint32(len(name)))
		buf.WriteString(name)
		buf.Write(vectorToBytes(m.vectors[i]))
	}
	return buf.Bytes()
}

// Decode parses data produced by Encode.
func Decode(data []byte) (*Model, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, len(codecMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != codecMagic {
		return nil, fmt.Errorf("%w: bad magic", domain.ErrInvalidModel)
	}

	var (
		version    uint16
		dim, count uint32
	)
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, truncated("version", err)
	}
	if version != codecVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrInvalidModel, version)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, truncated("dim", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, truncated("count", err)
	}

	// every entry needs at least a length prefix and its vector
	if uint64(count)*(4+uint64(dim)*4) > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d entries of dim %d exceed %d remaining bytes",
			domain.ErrInvalidModel, count, dim, r.Len())
	}

	names := make([]string, count)
	vectors := make([][]float32, count)
	vecBuf := make([]byte, int(dim)*4)
	for i := range names {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, truncated("label length", err)
		}
		if n > maxLabelLen {
			return nil, fmt.Errorf("%w: label length %d", domain.ErrInvalidModel, n)
		}
		label := make([]byte, n)
		if _, err := io.ReadFull(r, label); err != nil {
			return nil, truncated("label", err)
		}
		if _, err := io.ReadFull(r, vecBuf); err != nil {
			return nil, truncated("vector", err)
		}
		names[i] = string(label)
		vectors[i] = bytesToVector(vecBuf)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", domain.ErrInvalidModel, r.Len())
	}

	return NewModel(names, vectors)
}

func truncated(what string, err error) error {
	return fmt.Errorf("%w: read %s: %w", domain.ErrInvalidModel, what, err)
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) []float32 {
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}
