package navmesh

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/milk9111/navpath/common"
)

// Binary layout written by the navigation mesh exporter. All integers and
// floats are little-endian; buffer offsets are relative to dataOffset.
const (
	checksumNAVM = uint32('N') | uint32('A')<<8 | uint32('V')<<16 | uint32('M')<<24

	headerSize     = 48
	vertexSize     = 12
	edgeSize       = 8
	polySize       = 36
	fileNullFace   = 0xffff
	maxFileIndex   = 0xfffe
	versionMajor   = 1
	versionMinor   = 0
	currentVersion = versionMajor<<16 | versionMinor
)

var (
	ErrInvalidChecksum    = errors.New("navmesh: invalid checksum")
	ErrUnsupportedVersion = errors.New("navmesh: unsupported version")
	ErrTruncated          = errors.New("navmesh: truncated data")
	ErrTooLarge           = errors.New("navmesh: mesh too large for binary format")
)

type header struct {
	Checksum         uint32
	Version          uint32
	DataOffset       uint32
	VertexCount      uint32
	VertexDataOffset uint32
	EdgeCount        uint32
	EdgeDataOffset   uint32
	PolyCount        uint32
	PolyDataOffset   uint32
	Gravity          [3]float32
}

// Decode reads a binary navigation mesh.
func Decode(r io.Reader) (*NavigationMesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize {
		return nil, ErrTruncated
	}

	var h header
	if _, err := binary.Decode(data[:headerSize], binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("navmesh: header: %w", err)
	}
	if h.Checksum != checksumNAVM {
		return nil, ErrInvalidChecksum
	}
	if h.Version>>16 != versionMajor {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, h.Version>>16, h.Version&0xffff)
	}

	vbuf, err := section(data, h.DataOffset, h.VertexDataOffset, h.VertexCount, vertexSize)
	if err != nil {
		return nil, fmt.Errorf("navmesh: vertices: %w", err)
	}
	ebuf, err := section(data, h.DataOffset, h.EdgeDataOffset, h.EdgeCount, edgeSize)
	if err != nil {
		return nil, fmt.Errorf("navmesh: edges: %w", err)
	}
	pbuf, err := section(data, h.DataOffset, h.PolyDataOffset, h.PolyCount, polySize)
	if err != nil {
		return nil, fmt.Errorf("navmesh: polys: %w", err)
	}

	le := binary.LittleEndian
	f32 := func(b []byte) float32 { return math.Float32frombits(le.Uint32(b)) }
	vec := func(b []byte) common.Vector3 { return common.Vec3(f32(b), f32(b[4:]), f32(b[8:])) }
	face := func(v uint16) FaceIndex {
		if v == fileNullFace {
			return NullFace
		}
		return FaceIndex(v)
	}

	vertices := make([]common.Vector3, h.VertexCount)
	for i := range vertices {
		vertices[i] = vec(vbuf[i*vertexSize:])
	}

	edges := make([]Edge, h.EdgeCount)
	for i := range edges {
		b := ebuf[i*edgeSize:]
		edges[i] = Edge{
			Vertex: [2]VertexIndex{VertexIndex(le.Uint16(b)), VertexIndex(le.Uint16(b[2:]))},
			Face:   [2]FaceIndex{face(le.Uint16(b[4:])), face(le.Uint16(b[6:]))},
		}
		// A single owner may have been written to either slot.
		if edges[i].Face[0] == NullFace {
			edges[i].Face[0], edges[i].Face[1] = edges[i].Face[1], NullFace
		}
	}

	faces := make([]Face, h.PolyCount)
	for i := range faces {
		b := pbuf[i*polySize:]
		f := &faces[i]
		for k := 0; k < 3; k++ {
			f.Vertex[k] = VertexIndex(le.Uint16(b[k*2:]))
			f.Edge[k] = EdgeIndex(le.Uint16(b[6+k*2:]))
		}
		f.Normal = vec(b[12:])
		f.Center = vec(b[24:])
	}

	return New(vertices, edges, faces, common.Vec3FromArray(h.Gravity))
}

func section(data []byte, base, offset, count, size uint32) ([]byte, error) {
	start := uint64(base) + uint64(offset)
	end := start + uint64(count)*uint64(size)
	if end > uint64(len(data)) {
		return nil, ErrTruncated
	}
	return data[start:end], nil
}

// Encode writes m in the binary format read by Decode.
func Encode(w io.Writer, m *NavigationMesh) error {
	if m.VertexCount() > maxFileIndex || m.EdgeCount() > maxFileIndex || m.FaceCount() > maxFileIndex {
		return ErrTooLarge
	}

	h := header{
		Checksum:         checksumNAVM,
		Version:          currentVersion,
		DataOffset:       headerSize,
		VertexCount:      m.VertexCount(),
		VertexDataOffset: 0,
		EdgeCount:        m.EdgeCount(),
		EdgeDataOffset:   m.VertexCount() * vertexSize,
		PolyCount:        m.FaceCount(),
		Gravity:          m.gravity.Array(),
	}
	h.PolyDataOffset = h.EdgeDataOffset + h.EdgeCount*edgeSize

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return err
	}
	for _, v := range m.vertices {
		if err := binary.Write(bw, binary.LittleEndian, v.Array()); err != nil {
			return err
		}
	}
	face := func(f FaceIndex) uint16 {
		if f == NullFace {
			return fileNullFace
		}
		return uint16(f)
	}
	for _, e := range m.edges {
		rec := [4]uint16{uint16(e.Vertex[0]), uint16(e.Vertex[1]), face(e.Face[0]), face(e.Face[1])}
		if err := binary.Write(bw, binary.LittleEndian, rec); err != nil {
			return err
		}
	}
	for _, f := range m.faces {
		idx := [6]uint16{
			uint16(f.Vertex[0]), uint16(f.Vertex[1]), uint16(f.Vertex[2]),
			uint16(f.Edge[0]), uint16(f.Edge[1]), uint16(f.Edge[2]),
		}
		if err := binary.Write(bw, binary.LittleEndian, idx); err != nil {
			return err
		}
		vecs := [6]float32{f.Normal.X, f.Normal.Y, f.Normal.Z, f.Center.X, f.Center.Y, f.Center.Z}
		if err := binary.Write(bw, binary.LittleEndian, vecs); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveFile writes m to path in the binary format.
func SaveFile(path string, m *NavigationMesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("navmesh: create %s: %w", path, err)
	}
	if err := Encode(f, m); err != nil {
		_ = f.Close()
		return fmt.Errorf("navmesh: encode %s: %w", path, err)
	}
	return f.Close()
}
