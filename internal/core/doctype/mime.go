package doctype

import "strings"

const OctetStream = "application/octet-stream"

var mimeByExtension = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"heic": "image/heic",
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"txt":  "text/plain",
}

// MimeTypeFromExtension infers a media type from the text after the last
// dot in filename. Unknown or missing extensions yield OctetStream.
func MimeTypeFromExtension(filename string) string {
	dot := strings.LastIndexByte(filename, '.')
	if dot < 0 {
		return OctetStream
	}
	ext := strings.ToLower(filename[dot+1:])
	if mimeType, ok := mimeByExtension[ext]; ok {
		return mimeType
	}
	return OctetStream
}
