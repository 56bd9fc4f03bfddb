package marketplace

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// The cars and images endpoints answer in several historical payload shapes.
// Rather than silently flattening unknown payloads to an empty list, each
// decoder names the shape it recognised and fails loudly on anything else so
// malformed responses surface as bugs instead of blank pages.

// ErrUnrecognizedShape is returned when a payload matches none of the known
// backend response shapes.
var ErrUnrecognizedShape = errors.New("marketplace: unrecognized payload shape")

// CarListShape tags the payload shape DecodeCarList recognised.
type CarListShape int

const (
	CarListBare CarListShape = iota // [...]
	CarListKeyedCars                // {"cars": [...]}
	CarListKeyedResults             // {"results": [...]}
	CarListUnrecognized
)

// isArray reports whether a raw JSON value is a JSON array.
func isArray(raw json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(string(raw)), "[")
}

// DecodeCarList canonicalizes a car-list payload into a flat slice.
func DecodeCarList(data []byte) ([]Car, CarListShape, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var cars []Car
		if err := json.Unmarshal(data, &cars); err != nil {
			return nil, CarListUnrecognized, fmt.Errorf("marketplace: decode car array: %w", err)
		}
		return cars, CarListBare, nil
	}

	var envelope struct {
		Cars    json.RawMessage `json:"cars"`
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, CarListUnrecognized, ErrUnrecognizedShape
	}
	if isArray(envelope.Cars) {
		var cars []Car
		if err := json.Unmarshal(envelope.Cars, &cars); err != nil {
			return nil, CarListUnrecognized, fmt.Errorf("marketplace: decode cars field: %w", err)
		}
		return cars, CarListKeyedCars, nil
	}
	if isArray(envelope.Results) {
		var cars []Car
		if err := json.Unmarshal(envelope.Results, &cars); err != nil {
			return nil, CarListUnrecognized, fmt.Errorf("marketplace: decode results field: %w", err)
		}
		return cars, CarListKeyedResults, nil
	}
	return nil, CarListUnrecognized, ErrUnrecognizedShape
}

// ImageRef is one raw element of an image-list payload: a URL string or an
// object carrying a URL under one of several known field names.
type ImageRef any

// ImageListShape tags the payload shape DecodeImageList recognised.
type ImageListShape int

const (
	ImageListBare       ImageListShape = iota // [...]
	ImageListKeyedImages                      // {"images": [...]}
	ImageListKeyedImage                       // {"image": [...]}
	ImageListSingleObject                     // {"image": ...} or {"url": ...} etc.
	ImageListSingleString                     // "a.jpg"
	ImageListUnrecognized
)

// srcFields is the strict probe priority for URL-carrying object fields.
var srcFields = []string{"url", "image_url", "src", "imageUrl", "href"}

// DecodeImageList canonicalizes an image payload into a flat slice of refs.
func DecodeImageList(data []byte) ([]ImageRef, ImageListShape, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, ImageListUnrecognized, ErrUnrecognizedShape
	}

	switch v := payload.(type) {
	case []any:
		refs := make([]ImageRef, len(v))
		for i := range v {
			refs[i] = v[i]
		}
		return refs, ImageListBare, nil
	case string:
		return []ImageRef{v}, ImageListSingleString, nil
	case map[string]any:
		if arr, ok := v["images"].([]any); ok {
			refs := make([]ImageRef, len(arr))
			for i := range arr {
				refs[i] = arr[i]
			}
			return refs, ImageListKeyedImages, nil
		}
		if arr, ok := v["image"].([]any); ok {
			refs := make([]ImageRef, len(arr))
			for i := range arr {
				refs[i] = arr[i]
			}
			return refs, ImageListKeyedImage, nil
		}
		if img, ok := v["image"]; ok && img != nil {
			return []ImageRef{img}, ImageListSingleObject, nil
		}
		for _, field := range srcFields {
			if s, ok := v[field].(string); ok && s != "" {
				return []ImageRef{v}, ImageListSingleObject, nil
			}
		}
	}
	return nil, ImageListUnrecognized, ErrUnrecognizedShape
}

// ImageSrc extracts a URL from a single image ref. Strings pass through;
// objects are probed in strict priority order (url, image_url, src, imageUrl,
// href), falling back to a nested image field probed the same way one level
// deep. Anything else yields the empty string.
func ImageSrc(ref ImageRef) string {
	switch v := ref.(type) {
	case string:
		return v
	case map[string]any:
		if s := probeSrc(v); s != "" {
			return s
		}
		switch nested := v["image"].(type) {
		case string:
			return nested
		case map[string]any:
			return probeSrc(nested)
		}
	}
	return ""
}

func probeSrc(obj map[string]any) string {
	for _, field := range srcFields {
		if s, ok := obj[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// AbsoluteURL turns a possibly relative image path into an absolute URL on
// origin. Already-absolute http(s) URLs pass through; an empty path yields an
// empty string; with no origin the path is returned as-is, best effort.
func AbsoluteURL(path, origin string) string {
	if path == "" {
		return ""
	}
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return path
	}
	origin = strings.TrimRight(origin, "/")
	if origin == "" {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return origin + path
	}
	return origin + "/" + path
}
