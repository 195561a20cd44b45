package video

import "image/color"

func testPicture(width, height int, fill func(x, y int) color.RGBA) *Picture {
	p := NewBGRPicture(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := fill(x, y)
			off := y*p.LineSize[0] + x*3
			p.Data[0][off] = c.B
			p.Data[0][off+1] = c.G
			p.Data[0][off+2] = c.R
		}
	}
	return p
}

func gradient(x, y int) color.RGBA {
	return color.RGBA{R: byte(x * 10), G: byte(y * 10), B: byte(x + y), A: 0xFF}
}

func solid(c color.RGBA) func(x, y int) color.RGBA {
	return func(int, int) color.RGBA { return c }
}

func gray(v byte) color.RGBA {
	return color.RGBA{R: v, G: v, B: v, A: 0xFF}
}
