// Package convert turns split-indexed authoring documents into the
// flat-indexed runtime model and back.
//
// The hard part lives here: canonicalizing split-index face corners
// into a minimal flat vertex buffer, proving that morph frames share
// their base's topology before they merge into one animated model, and
// applying the axis convention consistently in both directions.
package convert

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/coderbot16/cemconv/pkg/cem"
	"github.com/coderbot16/cemconv/pkg/dom"
	"github.com/coderbot16/cemconv/pkg/formats"
)

// Conversion errors.
var (
	ErrUnknownFormat         = errors.New("unrecognized format token")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrFrameOutOfRange       = errors.New("frame index out of range")
)

// FormatKind distinguishes the conversion endpoints.
type FormatKind int

const (
	KindModel FormatKind = iota
	KindObj
	KindCollada
)

// Format is one endpoint of a conversion: a kind plus, for the
// runtime model, a container version and the frame index to extract
// when the other endpoint holds a single frame.
type Format struct {
	Kind       FormatKind
	Version    cem.Header
	FrameIndex int
}

// String returns the format's canonical token.
func (f Format) String() string {
	switch f.Kind {
	case KindModel:
		return "cem" + f.Version.String()
	case KindObj:
		return "obj"
	case KindCollada:
		return "collada"
	default:
		return "unknown"
	}
}

// ParseFormat maps a CLI format token to a Format. Version aliases
// "cem", "cem2" and "ssmf" all mean the v2.0 container.
func ParseFormat(token string, frameIndex int) (Format, error) {
	switch token {
	case "cem", "cem2", "ssmf":
		return Format{Kind: KindModel, Version: cem.HeaderV2, FrameIndex: frameIndex}, nil
	case "cem1.3":
		return Format{Kind: KindModel, Version: cem.Header{Major: 1, Minor: 3}, FrameIndex: frameIndex}, nil
	case "obj":
		return Format{Kind: KindObj, FrameIndex: frameIndex}, nil
	case "dae", "collada":
		return Format{Kind: KindCollada, FrameIndex: frameIndex}, nil
	default:
		return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, token)
	}
}

// Convert reads one document from r in the input format and writes the
// converted result to w in the output format. Conversions are
// all-or-nothing: any error aborts with no partial output semantics
// beyond what was already streamed.
func Convert(r io.Reader, w io.Writer, input, output Format, log *zap.Logger) error {
	model, err := readModel(r, input, log)
	if err != nil {
		return err
	}

	switch output.Kind {
	case KindModel:
		if !output.Version.Supported() {
			return fmt.Errorf("%w: cannot write model version %s", ErrUnsupportedConversion, output.Version)
		}
		return cem.Write(model, w)
	case KindObj:
		return ModelToObj(model, output.FrameIndex, w)
	case KindCollada:
		return ModelToCollada(model, w)
	default:
		return fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, input, output)
	}
}

// readModel decodes the input document into the flat model.
func readModel(r io.Reader, input Format, log *zap.Logger) (*cem.Model, error) {
	switch input.Kind {
	case KindModel:
		header, err := cem.ReadHeader(r)
		if err != nil {
			return nil, err
		}
		if !header.Supported() {
			return nil, fmt.Errorf("%w: model version %s", cem.ErrUnsupportedVersion, header)
		}
		return cem.ReadModel(r)
	case KindObj:
		doc, err := formats.ParseObj(r)
		if err != nil {
			return nil, err
		}
		return ObjToModel(doc, log)
	case KindCollada:
		root, err := dom.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("parsing collada markup: %w", err)
		}
		doc, err := formats.ParseCollada(root)
		if err != nil {
			return nil, err
		}
		return ColladaToModel(doc, log)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, input)
	}
}

// assembleModel wraps a triangle buffer and its frames into a model
// with one material spanning every triangle. The model's declared
// center is the base frame's.
func assembleModel(triangles []cem.Triangle, frames []cem.Frame) *cem.Model {
	vertexCount := 0
	if len(frames) > 0 {
		vertexCount = len(frames[0].Vertices)
	}

	return &cem.Model{
		Center: frames[0].Center,
		Materials: []cem.Material{{
			Name:    "",
			Texture: 0,
			Selections: []cem.TriangleSelection{{
				Offset: 0,
				Count:  uint32(len(triangles)),
			}},
			VertexOffset: 0,
			VertexCount:  uint32(vertexCount),
			TextureName:  "",
		}},
		LodLevels: [][]cem.Triangle{triangles},
		Frames:    frames,
	}
}
