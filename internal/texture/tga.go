package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types supported by DecodeTGA.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const (
	tgaHeaderSize = 18
	// maxTGAPixels bounds the decoded size of RLE images, whose length is
	// only known after decoding.
	maxTGAPixels = 8192 * 8192
)

var (
	errTGATruncated = errors.New("TGA data truncated")
	errTGATooLarge  = errors.New("TGA dimensions too large")
)

// tgaReader writes decoded pixels in file order, flipping rows for
// bottom-up images.
type tgaReader struct {
	img           *image.RGBA
	width, height int
	bytesPerPixel int
	topToBottom   bool
	next          int
}

func (r *tgaReader) pixel(p []byte) color.RGBA {
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.bytesPerPixel == 4 {
		c.A = p[3]
	}
	return c
}

func (r *tgaReader) put(c color.RGBA) {
	x := r.next % r.width
	y := r.next / r.width
	if !r.topToBottom {
		y = r.height - 1 - y
	}
	r.img.SetRGBA(x, y, c)
	r.next++
}

func (r *tgaReader) done() bool {
	return r.next >= r.width*r.height
}

// DecodeTGA decodes an uncompressed (type 2) or RLE (type 10) 24/32-bit TGA image.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, errTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d", bpp)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}
	pix := data[offset:]
	bytesPerPixel := bpp / 8

	if imageType == TGATypeUncompressed && len(pix) < width*height*bytesPerPixel {
		return nil, errTGATruncated
	}
	if width*height > maxTGAPixels {
		return nil, errTGATooLarge
	}

	r := &tgaReader{
		img:           image.NewRGBA(image.Rect(0, 0, width, height)),
		width:         width,
		height:        height,
		bytesPerPixel: bytesPerPixel,
		topToBottom:   descriptor&0x20 != 0,
	}

	if imageType == TGATypeUncompressed {
		for i := 0; !r.done(); i += r.bytesPerPixel {
			r.put(r.pixel(pix[i:]))
		}
		return r.img, nil
	}

	if err := r.decodeRLE(pix); err != nil {
		return nil, err
	}
	return r.img, nil
}

func (r *tgaReader) decodeRLE(pix []byte) error {
	i := 0
	for !r.done() {
		if i >= len(pix) {
			return errTGATruncated
		}
		packet := pix[i]
		i++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if i+r.bytesPerPixel > len(pix) {
				return errTGATruncated
			}
			c := r.pixel(pix[i:])
			i += r.bytesPerPixel
			for n := 0; n < count && !r.done(); n++ {
				r.put(c)
			}
			continue
		}

		for n := 0; n < count && !r.done(); n++ {
			if i+r.bytesPerPixel > len(pix) {
				return errTGATruncated
			}
			r.put(r.pixel(pix[i:]))
			i += r.bytesPerPixel
		}
	}
	return nil
}
