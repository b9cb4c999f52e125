package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/zuordnung/internal/cache"
	"github.com/ppiankov/zuordnung/internal/extract"
	"github.com/ppiankov/zuordnung/internal/ingest"
	"github.com/ppiankov/zuordnung/internal/model"
)

// Fatal parse errors. Everything else surfaces as warnings on a
// successful result, so callers can distinguish "nothing matched" from
// "nothing to parse".
var (
	// ErrEmptyInput means the request carried no lines or rows
	ErrEmptyInput = errors.New("no input to parse")

	// ErrUnsupportedShape means the declared document shape is unknown
	ErrUnsupportedShape = errors.New("unsupported document shape")
)

// Parser orchestrates extraction, deduplication and provenance
// stamping. It never reaches into files or persistence itself; all state
// lives inside one Parse invocation, so parses may run concurrently.
type Parser struct {
	registry *ingest.Registry
	cache    cache.Cache // optional, nil disables caching
}

// NewParser creates a parser. A nil cache disables result caching.
func NewParser(c cache.Cache) *Parser {
	return &Parser{
		registry: ingest.NewRegistry(),
		cache:    c,
	}
}

// Parse runs one parse invocation over already-extracted lines or rows.
// The result is deterministic: the same request always yields the same
// controls, mappings and warnings in the same order.
func (p *Parser) Parse(req model.ParseRequest) (*model.ParseResult, error) {
	sourceType := req.DefaultSourceType
	if sourceType == "" {
		sourceType = model.SourceOfficial
	}
	if !sourceType.Valid() {
		return nil, fmt.Errorf("unknown source type %q", req.DefaultSourceType)
	}

	var raw *extract.RawResult
	switch req.Shape {
	case model.ShapeTextWithAnchors:
		if len(req.Lines) == 0 {
			return nil, fmt.Errorf("%w: no lines", ErrEmptyInput)
		}
		raw = extract.ExtractAnchored(req.Lines)
	case model.ShapeTabular:
		if len(req.Rows) == 0 {
			return nil, fmt.Errorf("%w: no rows", ErrEmptyInput)
		}
		raw = extract.ExtractTabular(req.Rows, req.ColumnsDeclared)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedShape, req.Shape)
	}

	controls, pairs, warnings := extract.Dedupe(raw)

	result := &model.ParseResult{
		Controls: controls,
		Mappings: make([]model.MappingRecord, 0, len(pairs)),
		Warnings: warnings,
	}
	for _, pair := range pairs {
		result.Mappings = append(result.Mappings, model.MappingRecord{
			SourceControlID: pair.Source,
			TargetControlID: pair.Target,
			SourceType:      sourceType,
			Confidence:      model.DefaultConfidence,
			SourceDocument:  req.SourceDocument,
		})
	}
	return result, nil
}

// DocumentRequest asks for a raw document to be ingested and parsed
type DocumentRequest struct {
	Filename       string
	Data           []byte
	SourceDocument string           // defaults to the base filename
	SourceType     model.SourceType // defaults to official
}

// ParseDocument converts raw bytes through the format adapter matching
// the filename and parses the result, consulting the cache when one is
// configured. The cache key covers content and provenance, so two
// uploads of the same bytes under different source documents never
// collide.
func (p *Parser) ParseDocument(req DocumentRequest) (*model.ParseResult, error) {
	sourceDoc := req.SourceDocument
	if sourceDoc == "" {
		sourceDoc = filepath.Base(req.Filename)
	}

	key := cache.Key(req.Filename, sourceDoc, string(req.SourceType), string(req.Data))
	if p.cache != nil {
		if result, found := p.cache.Get(key); found {
			return result, nil
		}
	}

	doc, err := p.registry.Read(req.Filename, req.Data)
	if err != nil {
		return nil, err
	}

	result, err := p.Parse(model.ParseRequest{
		Shape:             doc.Shape,
		Lines:             doc.Lines,
		Rows:              doc.Rows,
		SourceDocument:    sourceDoc,
		DefaultSourceType: req.SourceType,
		ColumnsDeclared:   doc.ColumnsDeclared,
	})
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		_ = p.cache.Set(key, result, 0)
	}
	return result, nil
}

// ParseFile reads and parses a document from disk
func (p *Parser) ParseFile(path string, sourceDoc string, sourceType model.SourceType) (*model.ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return p.ParseDocument(DocumentRequest{
		Filename:       path,
		Data:           data,
		SourceDocument: sourceDoc,
		SourceType:     sourceType,
	})
}
