package modules

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"

	"github.com/spakin/netpbm"
	"golang.org/x/image/draw"
)

// maxTexturePixels bounds the raster a header may announce.
const maxTexturePixels = 4096 * 4096

// pnmHeaderPeek is how much of the stream the header check may look at.
const pnmHeaderPeek = 512

var errBadPNM = errors.New("ppm: malformed header")

// decodePNM decodes a Netpbm image (P1 to P7). Bitmaps and graymaps decode
// to *image.Gray, everything else to *image.NRGBA.
func decodePNM(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	if err := checkPNMHeader(br); err != nil {
		return nil, err
	}

	img, err := netpbm.Decode(br, &netpbm.DecodeOptions{Target: netpbm.PNM, PBMMaxValue: 255})
	if err != nil {
		return nil, fmt.Errorf("ppm: %w", err)
	}

	b := img.Bounds()
	switch img.Format() {
	case netpbm.PBM, netpbm.PGM:
		gray := image.NewGray(b)
		draw.Draw(gray, b, img, b.Min, draw.Src)
		return gray, nil
	}
	rgba := image.NewNRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba, nil
}

// checkPNMHeader peeks at the header and rejects dimensions the decoder
// would otherwise try to allocate.
func checkPNMHeader(br *bufio.Reader) error {
	head, err := br.Peek(pnmHeaderPeek)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	toks := pnmTokens(head)
	if len(toks) == 0 {
		return errBadPNM
	}

	var w, h int
	switch toks[0] {
	case "P1", "P4":
		if len(toks) < 3 {
			return errBadPNM
		}
		if w, err = pnmInt(toks[1]); err != nil {
			return err
		}
		if h, err = pnmInt(toks[2]); err != nil {
			return err
		}
	case "P2", "P3", "P5", "P6":
		if len(toks) < 4 {
			return errBadPNM
		}
		if w, err = pnmInt(toks[1]); err != nil {
			return err
		}
		if h, err = pnmInt(toks[2]); err != nil {
			return err
		}
		maxval, err := pnmInt(toks[3])
		if err != nil {
			return err
		}
		if maxval > 0xffff {
			return fmt.Errorf("ppm: maxval %d out of range", maxval)
		}
	case "P7":
		for i := 1; i+1 < len(toks) && toks[i] != "ENDHDR"; i++ {
			switch toks[i] {
			case "WIDTH":
				w, err = pnmInt(toks[i+1])
			case "HEIGHT":
				h, err = pnmInt(toks[i+1])
			}
			if err != nil {
				return err
			}
		}
		if w == 0 || h == 0 {
			return errBadPNM
		}
	default:
		return fmt.Errorf("ppm: unsupported format %q", toks[0])
	}

	if w > maxTexturePixels/h {
		return fmt.Errorf("ppm: %dx%d image is too large", w, h)
	}
	return nil
}

// pnmTokens splits a header into whitespace-separated tokens, dropping comments.
// The last token is dropped when the buffer may have cut it short.
func pnmTokens(head []byte) []string {
	var toks []string
	for _, line := range bytes.Split(head, []byte{'\n'}) {
		if i := bytes.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, f := range bytes.Fields(line) {
			toks = append(toks, string(f))
		}
	}
	if len(head) == pnmHeaderPeek && len(toks) > 0 {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func pnmInt(tok string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil || n <= 0 {
		return 0, errBadPNM
	}
	return n, nil
}

// withAlpha combines an RGB pixmap and a same-sized graymap used as alpha.
func withAlpha(rgb image.Image, alpha *image.Gray) (*image.NRGBA, error) {
	b := rgb.Bounds()
	if b.Size() != alpha.Bounds().Size() {
		return nil, fmt.Errorf("ppm: alpha size %v does not match %v", alpha.Bounds().Size(), b.Size())
	}
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(rgb.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			c.A = alpha.GrayAt(alpha.Bounds().Min.X+x, alpha.Bounds().Min.Y+y).Y
			img.SetNRGBA(x, y, c)
		}
	}
	return img, nil
}
