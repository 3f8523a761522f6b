package gltfio

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// Save writes the document to path. A .glb extension selects the binary
// container; anything else writes JSON with embedded buffers.
func (d *Document) Save(path string) error {
	binary := strings.EqualFold(filepath.Ext(path), ".glb")
	prepareBuffers(d.GLTF, binary)

	var err error
	if binary {
		err = gltf.SaveBinary(d.GLTF, path)
	} else {
		err = gltf.Save(d.GLTF, path)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}
	return nil
}

// Encode writes the document to w.
func (d *Document) Encode(w io.Writer, binary bool) error {
	prepareBuffers(d.GLTF, binary)
	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	if err := enc.Encode(d.GLTF); err != nil {
		return errors.Wrap(err, "failed to encode gltf")
	}
	return nil
}

// prepareBuffers makes every buffer self-contained: the first buffer
// becomes the GLB chunk in binary output, and buffers without a URI are
// embedded as data URIs in JSON output.
func prepareBuffers(doc *gltf.Document, binary bool) {
	for i, b := range doc.Buffers {
		switch {
		case binary && i == 0:
			b.URI = ""
		case b.URI == "":
			b.EmbeddedResource()
		}
	}
}
