package modules

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	lua "github.com/yuin/gopher-lua"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/vovakirdan/luaframe/internal/registry"
)

// Texture formats reported to scripts.
const (
	FormatRGB   = "RGB8"
	FormatRGBA  = "RGBA8"
	FormatAlpha = "ALPHA8"
)

func init() {
	register(PPM, "Image loading into texture slots (Netpbm, PNG, JPEG, GIF, BMP, TIFF, WebP)", openPPM)
}

func openPPM(L *lua.LState, env *registry.Env) *lua.LTable {
	load := func(L *lua.LState, name string) (image.Image, string) {
		img, format, err := LoadImage(env.FS, name)
		if err != nil {
			raise(L, err)
		}
		return img, format
	}
	push := func(L *lua.LState, format string, img image.Image) int {
		L.Push(lua.LString(format))
		L.Push(lua.LNumber(img.Bounds().Dx()))
		L.Push(lua.LNumber(img.Bounds().Dy()))
		return 3
	}

	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"texture": func(L *lua.LState) int {
			id := L.CheckInt(1)
			img, format := load(L, L.CheckString(2))
			if _, err := env.Render.Textures.Load(id, img, format); err != nil {
				raise(L, err)
			}
			return push(L, format, img)
		},
		"load": func(L *lua.LState) int {
			img, format := load(L, L.CheckString(1))
			return push(L, format, img)
		},
	})
}

// LoadImage decodes name from fsys. A name without an extension is looked
// up as a name.ppm pixmap with an optional name.pgm alpha mask, or a lone
// name.pgm alpha texture.
func LoadImage(fsys fs.FS, name string) (image.Image, string, error) {
	if fsys == nil {
		return nil, "", errors.New("ppm: asset loading is disabled")
	}
	name = strings.TrimPrefix(path.Clean(name), "/")

	if path.Ext(name) != "" {
		return decodeFile(fsys, name)
	}

	rgb, _, rgbErr := decodeFile(fsys, name+".ppm")
	alpha, _, alphaErr := decodeFile(fsys, name+".pgm")
	switch {
	case rgbErr == nil && alphaErr == nil:
		gray, ok := alpha.(*image.Gray)
		if !ok {
			return nil, "", fmt.Errorf("ppm: %s.pgm is not a graymap", name)
		}
		img, err := withAlpha(rgb, gray)
		if err != nil {
			return nil, "", err
		}
		return img, FormatRGBA, nil
	case rgbErr == nil:
		return rgb, FormatRGB, nil
	case alphaErr == nil:
		return alpha, FormatAlpha, nil
	default:
		return nil, "", fmt.Errorf("ppm: can't open %s: %w", name, rgbErr)
	}
}

func decodeFile(fsys fs.FS, name string) (image.Image, string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, "", err
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".ppm", ".pgm", ".pbm", ".pnm", ".pam":
		img, err := decodePNM(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", name, err)
		}
		switch img := img.(type) {
		case *image.Gray:
			return img, FormatAlpha, nil
		case *image.NRGBA:
			if !img.Opaque() {
				return img, FormatRGBA, nil
			}
		}
		return img, FormatRGB, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("ppm: decode %s: %w", name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxTexturePixels/cfg.Height {
		return nil, "", fmt.Errorf("ppm: %s: %dx%d image is too large", name, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("ppm: decode %s: %w", name, err)
	}
	return img, FormatRGBA, nil
}
