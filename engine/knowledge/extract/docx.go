package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	formatDOCX       = "docx"
	docxMainDocument = "word/document.xml"
	// maxDocumentXML caps the decompressed size of word/document.xml.
	maxDocumentXML = 256 << 20
)

// DOCXAdapter loads the body text of a WordprocessingML package as one record.
type DOCXAdapter struct {
	opts Options
}

func NewDOCXAdapter(opts Options) Adapter {
	return &DOCXAdapter{opts: opts.withDefaults()}
}

func (a *DOCXAdapter) Load(ctx context.Context, path string) ([]Record, error) {
	data, err := readFile(ctx, a.opts, path, formatDOCX)
	if err != nil {
		return nil, err
	}
	text, err := docxText(ctx, data)
	if err != nil {
		return nil, failed(path, formatDOCX, err)
	}
	return []Record{newRecord(path, formatDOCX, text)}, nil
}

func docxText(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open package: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != docxMainDocument {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", docxMainDocument, err)
		}
		defer rc.Close()
		return paragraphsFromXML(ctx, io.LimitReader(rc, maxDocumentXML))
	}
	return "", fmt.Errorf("package has no %s", docxMainDocument)
}

// paragraphsFromXML collects w:t runs per w:p and joins non-blank paragraphs with a blank line.
func paragraphsFromXML(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
		depth      int
		runDepth   int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document xml: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "r":
				runDepth++
			case "t":
				inText = runDepth > 0
			case "tab":
				// w:tab also declares tab stops inside w:pPr; only runs carry text.
				if runDepth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if runDepth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "r":
				runDepth--
			case "t":
				inText = false
			case "p":
				depth--
				if depth > 0 {
					continue
				}
				if err := ctx.Err(); err != nil {
					return "", err
				}
				if para := current.String(); strings.TrimSpace(para) != "" {
					paragraphs = append(paragraphs, para)
				}
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}
