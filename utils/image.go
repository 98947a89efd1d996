package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/nfnt/resize"
)

// Image types accepted by the upload pipeline
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// IsAllowedImageType reports whether a MIME type is accepted for upload
func IsAllowedImageType(mimeType string) bool {
	return allowedImageTypes[strings.ToLower(mimeType)]
}

// ParseDataURL splits a "data:<mime>;base64,<payload>" URL into its MIME type
// and decoded bytes. The MIME type defaults to image/jpeg when absent.
func ParseDataURL(dataURL string) (mimeType string, data []byte, err error) {
	mimeType = "image/jpeg"

	payload := dataURL
	if strings.HasPrefix(dataURL, "data:") {
		idx := strings.Index(dataURL, ",")
		if idx < 0 {
			return "", nil, fmt.Errorf("invalid image data format")
		}
		header := dataURL[len("data:"):idx]
		payload = dataURL[idx+1:]
		if semi := strings.Index(header, ";"); semi >= 0 {
			header = header[:semi]
		}
		if header != "" {
			mimeType = header
		}
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("invalid image data format")
	}
	return mimeType, data, nil
}

// BuildDataURL encodes raw bytes as a base64 data URL
func BuildDataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// DownscaleImage re-encodes an image so neither dimension exceeds maxDim.
// Images already within bounds, or in a format the stdlib cannot decode
// (webp), are returned unchanged. Downscaled output is JPEG (quality 85)
// except PNG input, which stays PNG to keep transparency.
func DownscaleImage(data []byte, mimeType string, maxDim uint) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, mimeType, nil
	}

	bounds := img.Bounds()
	if uint(bounds.Dx()) <= maxDim && uint(bounds.Dy()) <= maxDim {
		return data, mimeType, nil
	}

	resized := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)

	var buf bytes.Buffer
	if mimeType == "image/png" {
		if err := png.Encode(&buf, resized); err != nil {
			return nil, "", fmt.Errorf("failed to encode resized image: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}

	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, "", fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
