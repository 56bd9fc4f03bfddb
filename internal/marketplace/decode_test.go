package marketplace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"motorline.org/motorline-web/internal/marketplace"
)

const carJSON = `{"id":1,"make":"Tata","model":"Nexon","year":2022,"price":"750000.00","condition":"Used","description":"clean","seller_id":7}`

func TestDecodeCarListShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
		shape   marketplace.CarListShape
	}{
		{"bare array", `[` + carJSON + `]`, marketplace.CarListBare},
		{"keyed cars", `{"cars":[` + carJSON + `]}`, marketplace.CarListKeyedCars},
		{"keyed results", `{"results":[` + carJSON + `]}`, marketplace.CarListKeyedResults},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cars, shape, err := marketplace.DecodeCarList([]byte(tc.payload))
			require.NoError(t, err)
			require.Equal(t, tc.shape, shape)
			require.Len(t, cars, 1)
			require.Equal(t, int64(1), cars[0].ID)
			require.Equal(t, "Tata", cars[0].Make)
			require.Equal(t, marketplace.Decimal("750000.00"), cars[0].Price)
			require.Equal(t, int64(7), cars[0].SellerID)
		})
	}
}

func TestDecodeCarListNumericPrice(t *testing.T) {
	t.Parallel()

	cars, _, err := marketplace.DecodeCarList([]byte(`[{"id":2,"price":550000.5,"seller_id":3}]`))
	require.NoError(t, err)
	require.Equal(t, marketplace.Decimal("550000.5"), cars[0].Price)
}

func TestDecodeCarListUnrecognized(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{`{"items":[]}`, `"nope"`, `42`, `{"cars":"nope"}`} {
		_, shape, err := marketplace.DecodeCarList([]byte(payload))
		require.ErrorIs(t, err, marketplace.ErrUnrecognizedShape, "payload %s", payload)
		require.Equal(t, marketplace.CarListUnrecognized, shape)
	}
}

func TestDecodeImageListShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
		shape   marketplace.ImageListShape
		want    []string
	}{
		{"bare array of strings", `["/a.jpg","/b.jpg"]`, marketplace.ImageListBare, []string{"/a.jpg", "/b.jpg"}},
		{"keyed images", `{"images":[{"url":"/a.jpg"}]}`, marketplace.ImageListKeyedImages, []string{"/a.jpg"}},
		{"keyed image array", `{"image":["/a.jpg"]}`, marketplace.ImageListKeyedImage, []string{"/a.jpg"}},
		{"single object with image", `{"image":"/a.jpg"}`, marketplace.ImageListSingleObject, []string{"/a.jpg"}},
		{"single object with url field", `{"image_url":"/a.jpg"}`, marketplace.ImageListSingleObject, []string{"/a.jpg"}},
		{"bare string", `"/a.jpg"`, marketplace.ImageListSingleString, []string{"/a.jpg"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			refs, shape, err := marketplace.DecodeImageList([]byte(tc.payload))
			require.NoError(t, err)
			require.Equal(t, tc.shape, shape)
			var got []string
			for _, ref := range refs {
				got = append(got, marketplace.ImageSrc(ref))
			}
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeImageListUnrecognized(t *testing.T) {
	t.Parallel()

	_, shape, err := marketplace.DecodeImageList([]byte(`{"thumbnail":"/a.jpg"}`))
	require.ErrorIs(t, err, marketplace.ErrUnrecognizedShape)
	require.Equal(t, marketplace.ImageListUnrecognized, shape)
}

func TestImageSrcPriority(t *testing.T) {
	t.Parallel()

	// url wins over every later field
	ref := map[string]any{"href": "/e.jpg", "url": "/a.jpg", "src": "/c.jpg"}
	require.Equal(t, "/a.jpg", marketplace.ImageSrc(ref))

	// nested image object probed one level deep, same order
	nested := map[string]any{"image": map[string]any{"imageUrl": "/n.jpg", "href": "/h.jpg"}}
	require.Equal(t, "/n.jpg", marketplace.ImageSrc(nested))

	require.Equal(t, "/s.jpg", marketplace.ImageSrc("/s.jpg"))
	require.Equal(t, "", marketplace.ImageSrc(42))
	require.Equal(t, "", marketplace.ImageSrc(map[string]any{"alt": "no url"}))
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	const origin = "https://api.example.com"
	cases := []struct {
		path, origin, want string
	}{
		{"", origin, ""},
		{"https://cdn.example.com/a.jpg", origin, "https://cdn.example.com/a.jpg"},
		{"HTTP://cdn.example.com/a.jpg", origin, "HTTP://cdn.example.com/a.jpg"},
		{"/media/a.jpg", origin, "https://api.example.com/media/a.jpg"},
		{"media/a.jpg", origin, "https://api.example.com/media/a.jpg"},
		{"/media/a.jpg", origin + "/", "https://api.example.com/media/a.jpg"},
		{"media/a.jpg", "", "media/a.jpg"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, marketplace.AbsoluteURL(tc.path, tc.origin), "path=%q origin=%q", tc.path, tc.origin)
	}
}

// Equivalent inputs across shapes must resolve to the same absolute URL.
func TestShapeEquivalence(t *testing.T) {
	t.Parallel()

	const origin = "https://api.example.com"
	payloads := []string{
		`["/a.jpg"]`,
		`{"images":["/a.jpg"]}`,
		`{"image":"/a.jpg"}`,
		`{"url":"/a.jpg"}`,
		`"/a.jpg"`,
	}
	for _, payload := range payloads {
		refs, _, err := marketplace.DecodeImageList([]byte(payload))
		require.NoError(t, err, "payload %s", payload)
		require.Len(t, refs, 1)
		got := marketplace.AbsoluteURL(marketplace.ImageSrc(refs[0]), origin)
		require.Equal(t, "https://api.example.com/a.jpg", got, "payload %s", payload)
	}
}
