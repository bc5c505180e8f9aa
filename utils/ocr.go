package utils

// MIME types eligible for text extraction. Everything else is stored without
// ocr_text.
var ocrMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

func IsOcrEligible(mimeType string) bool {
	return ocrMimeTypes[mimeType]
}

// ExtractText returns the text content of an uploaded blob.
//
// Extraction is not performed in-process: the real pipeline consumes OcrRequest
// events from Pub/Sub and writes text back asynchronously. Callers gate on
// IsOcrEligible; this stub keeps ocr_text populated (empty until the pipeline
// catches up) so search never trips over a NULL column.
func ExtractText(mimeType string, data []byte) (string, error) {
	return "", nil
}
