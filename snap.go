package u6fs

import (
	"compress/gzip"
	"fmt"
	"io"
)

// SnapCodec selects the compression scheme a snapshot stream is wrapped
// in, shaped like the teacher's SquashComp enum (comp.go) but scoped to
// the codecs this module actually wires: V6 images have nothing
// comparable to squashfs's six on-disk compressor IDs, so there is no
// need to mirror LZMA/LZO/LZ4 here, only the general registry idea.
type SnapCodec int

const (
	SnapGZip SnapCodec = iota
	SnapZSTD
	SnapXZ
)

func (c SnapCodec) String() string {
	switch c {
	case SnapGZip:
		return "gzip"
	case SnapZSTD:
		return "zstd"
	case SnapXZ:
		return "xz"
	}
	return fmt.Sprintf("SnapCodec(%d)", c)
}

type snapCompressor func(w io.Writer) (io.WriteCloser, error)
type snapDecompressor func(r io.Reader) (io.ReadCloser, error)

// snapCompressors/snapDecompressors are the codec registries build-tag
// gated files (comp_zstd.go, comp_xz.go) populate via init(), the same
// registration pattern as the teacher's RegisterDecompressor calls in
// comp_zstd.go/comp_xz.go — that registry's own defining file wasn't
// part of the retrieved pack, so the map-based implementation here is
// reconstructed from the call-site shape rather than copied.
var (
	snapCompressors   = map[SnapCodec]snapCompressor{}
	snapDecompressors = map[SnapCodec]snapDecompressor{}
)

func registerSnapCodec(c SnapCodec, comp snapCompressor, decomp snapDecompressor) {
	snapCompressors[c] = comp
	snapDecompressors[c] = decomp
}

func init() {
	registerSnapCodec(SnapGZip,
		func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil },
		func(r io.Reader) (io.ReadCloser, error) {
			gr, err := gzip.NewReader(r)
			if err != nil {
				return nil, err
			}
			return gr, nil
		},
	)
}

// SnapshotImage streams all Super.Fsize blocks of img through the
// chosen codec to w. Grounded on the teacher's decompress-only codec
// registry, generalized to the write direction a squashfs reader never
// needed (a V6 snapshot tool produces compressed images, not just reads
// them).
func SnapshotImage(img *Image, w io.Writer, codec SnapCodec) error {
	comp, ok := snapCompressors[codec]
	if !ok {
		return fmt.Errorf("u6fs: codec %s not registered (missing build tag?)", codec)
	}
	cw, err := comp(w)
	if err != nil {
		return err
	}

	buf := make([]byte, BlockSize)
	for b := uint32(0); b < img.Super.Fsize; b++ {
		if err := img.ReadBlock(b, buf); err != nil {
			cw.Close()
			return err
		}
		if _, err := cw.Write(buf); err != nil {
			cw.Close()
			return err
		}
	}
	return cw.Close()
}

// RestoreSnapshot decompresses r with codec into an in-memory image and
// reopens it through [IMG] so the result can be run straight through
// Check.
func RestoreSnapshot(r io.Reader, codec SnapCodec, writable bool) (*Image, error) {
	decomp, ok := snapDecompressors[codec]
	if !ok {
		return nil, fmt.Errorf("u6fs: codec %s not registered (missing build tag?)", codec)
	}
	dr, err := decomp(r)
	if err != nil {
		return nil, err
	}
	defer dr.Close()

	data, err := io.ReadAll(dr)
	if err != nil {
		return nil, err
	}
	dev := &memDevice{data: data}
	return NewImage(dev, writable)
}
