//go:build ignore

// This program generates the cube OBJ/MTL fixtures for unit tests.
// Run with: go run generate_cube.go
package main

import (
	"bytes"
	"fmt"
	"os"
)

type quad struct {
	corners [4]int // 1-based position indices
	normal  int
}

func main() {
	var obj bytes.Buffer
	obj.WriteString("# unit cube: 2 groups, 12 triangles\n")
	obj.WriteString("mtllib cube.mtl\n")

	// Corner i sits at (i&1, i>>1&1, i>>2&1)
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&obj, "v %d %d %d\n", i&1, i>>1&1, i>>2&1)
	}

	for _, uv := range [][2]int{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		fmt.Fprintf(&obj, "vt %d %d\n", uv[0], uv[1])
	}

	normals := [][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for _, n := range normals {
		fmt.Fprintf(&obj, "vn %d %d %d\n", n[0], n[1], n[2])
	}

	sides := []quad{
		{[4]int{1, 5, 7, 3}, 2}, // -x
		{[4]int{2, 4, 8, 6}, 1}, // +x
		{[4]int{1, 3, 4, 2}, 6}, // -z
		{[4]int{5, 6, 8, 7}, 5}, // +z
	}
	caps := []quad{
		{[4]int{1, 2, 6, 5}, 4}, // -y
		{[4]int{3, 7, 8, 4}, 3}, // +y
	}

	obj.WriteString("o cube\n")
	obj.WriteString("g sides\n")
	obj.WriteString("usemtl paint\n")
	writeQuads(&obj, sides)
	obj.WriteString("g caps\n")
	obj.WriteString("usemtl metal\n")
	writeQuads(&obj, caps)

	mtl := `# cube materials
newmtl paint
Ka 0.1 0.1 0.1
Kd 0.8 0.2 0.2
d 1
illum 2
map_Kd -s 1 1 1 textures\paint.png

newmtl metal
Kd 0.5 0.5 0.5
Ks 1 1 1
Ns 96
Tr 0.25
`

	if err := os.WriteFile("cube.obj", obj.Bytes(), 0644); err != nil {
		panic(err)
	}
	if err := os.WriteFile("cube.mtl", []byte(mtl), 0644); err != nil {
		panic(err)
	}
}

// writeQuads emits each quad as two triangles sharing the first corner.
func writeQuads(buf *bytes.Buffer, quads []quad) {
	for _, q := range quads {
		c, n := q.corners, q.normal
		fmt.Fprintf(buf, "f %d/1/%d %d/2/%d %d/3/%d\n", c[0], n, c[1], n, c[2], n)
		fmt.Fprintf(buf, "f %d/1/%d %d/3/%d %d/4/%d\n", c[0], n, c[2], n, c[3], n)
	}
}
