package types

import "encoding/base64"

// MealAnalysisRequest is the canonical form of an analyze-meal request after
// input normalization. At least one of Text or Image is guaranteed non-empty.
type MealAnalysisRequest struct {
	Text  string
	Lang  string
	Image *ImageAttachment
}

// ImageAttachment holds an uploaded meal photo and its declared MIME type.
type ImageAttachment struct {
	ContentType string
	Data        []byte
}

// DataURI renders the attachment as a base64 data URI suitable for embedding
// in a multimodal chat message.
func (a *ImageAttachment) DataURI() string {
	return "data:" + a.ContentType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}
