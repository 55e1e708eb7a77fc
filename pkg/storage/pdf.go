package storage

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var ErrNotPDF = errors.New("file is not a pdf document")

const ContentTypePDF = "application/pdf"

type PDFInfo struct {
	Pages int
}

// InspectPDF checks the document header and counts its pages.
func InspectPDF(data []byte) (info PDFInfo, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return info, ErrNotPDF
	}
	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrNotPDF, r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return info, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	info.Pages = reader.NumPage()
	return info, nil
}
