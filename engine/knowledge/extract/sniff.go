package extract

import (
	"bytes"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
)

var (
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	zipSignature = []byte("PK\x03\x04")
)

// detectMIME determines a MIME type using stdlib detection first and
// falling back to the broader mimetype library when ambiguous.
func detectMIME(head []byte) string {
	if len(head) == 0 {
		return "application/octet-stream"
	}
	mt := http.DetectContentType(head)
	if mt != "application/octet-stream" && mt != "application/zip" {
		return mt
	}
	return mimetype.Detect(head).String()
}

// isTextual reports whether data looks like text in any encoding.
func isTextual(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func isOLE2(data []byte) bool {
	return bytes.HasPrefix(data, oleSignature)
}

func isZip(data []byte) bool {
	return bytes.HasPrefix(data, zipSignature)
}
