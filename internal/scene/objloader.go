package scene

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// LoadOBJMesh parses a Wavefront OBJ stream into a Mesh with smooth
// shading on iff every face vertex carried a normal, adapted from the
// teacher's LoadOBJ/parseFaceVertex scan loop. Faces are fan-
// triangulated; each face-vertex occurrence gets its own Vert entry
// since a single OBJ position index may pair with different
// normal/UV indices across faces.
func LoadOBJMesh(r io.Reader) (*Mesh, error) {
	scanner := bufio.NewScanner(r)

	var positions []mgl64.Vec3
	var normals []mgl64.Vec3
	var uvs []mgl64.Vec2

	var vertices []Vert
	var indices []uint32
	hadNormal := true
	anyFace := false

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "v":
			if len(parts) < 4 {
				return nil, fmt.Errorf("obj: line %d: invalid vertex definition", lineNum)
			}
			p, err := parseVec3(parts[1:4])
			if err != nil {
				return nil, fmt.Errorf("obj: line %d: %w", lineNum, err)
			}
			positions = append(positions, p)

		case "vn":
			if len(parts) < 4 {
				return nil, fmt.Errorf("obj: line %d: invalid normal definition", lineNum)
			}
			n, err := parseVec3(parts[1:4])
			if err != nil {
				return nil, fmt.Errorf("obj: line %d: %w", lineNum, err)
			}
			normals = append(normals, n)

		case "vt":
			if len(parts) < 3 {
				return nil, fmt.Errorf("obj: line %d: invalid texture coordinate", lineNum)
			}
			u, err1 := strconv.ParseFloat(parts[1], 64)
			v, err2 := strconv.ParseFloat(parts[2], 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("obj: line %d: invalid UV coordinates", lineNum)
			}
			uvs = append(uvs, mgl64.Vec2{u, v})

		case "f":
			if len(parts) < 4 {
				return nil, fmt.Errorf("obj: line %d: face must have at least 3 vertices", lineNum)
			}
			anyFace = true

			faceVerts := make([]uint32, 0, len(parts)-1)
			for i := 1; i < len(parts); i++ {
				posIdx, uvIdx, normIdx, err := parseFaceVertex(parts[i])
				if err != nil {
					return nil, fmt.Errorf("obj: line %d: %w", lineNum, err)
				}
				if posIdx < 0 || posIdx >= len(positions) {
					return nil, fmt.Errorf("obj: line %d: vertex index out of range", lineNum)
				}

				v := Vert{Position: positions[posIdx]}
				if uvIdx >= 0 {
					if uvIdx >= len(uvs) {
						return nil, fmt.Errorf("obj: line %d: uv index out of range", lineNum)
					}
					v.UV = uvs[uvIdx]
				}
				if normIdx >= 0 {
					if normIdx >= len(normals) {
						return nil, fmt.Errorf("obj: line %d: normal index out of range", lineNum)
					}
					v.Normal = normals[normIdx]
				} else {
					hadNormal = false
				}

				vertices = append(vertices, v)
				faceVerts = append(faceVerts, uint32(len(vertices)-1))
			}

			for i := 1; i < len(faceVerts)-1; i++ {
				indices = append(indices, faceVerts[0], faceVerts[i], faceVerts[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("obj: scan error: %w", err)
	}
	if !anyFace {
		return nil, fmt.Errorf("obj: no faces found")
	}

	if !hadNormal {
		computeFlatNormals(vertices, indices)
	}

	return NewMesh(vertices, indices, hadNormal)
}

func parseVec3(fields []string) (mgl64.Vec3, error) {
	x, err1 := strconv.ParseFloat(fields[0], 64)
	y, err2 := strconv.ParseFloat(fields[1], 64)
	z, err3 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return mgl64.Vec3{}, fmt.Errorf("invalid float triple %v", fields)
	}
	return mgl64.Vec3{x, y, z}, nil
}

// parseFaceVertex parses a face-vertex token (v, v/vt, v/vt/vn, v//vn)
// and returns 0-based (position, uv, normal) indices; uv/normal are -1
// when absent.
func parseFaceVertex(s string) (pos, uv, norm int, err error) {
	parts := strings.Split(s, "/")
	pos, err = parseObjIndex(parts[0])
	if err != nil {
		return 0, 0, 0, err
	}
	uv, norm = -1, -1
	if len(parts) >= 2 && parts[1] != "" {
		uv, err = parseObjIndex(parts[1])
		if err != nil {
			return 0, 0, 0, err
		}
	}
	if len(parts) >= 3 && parts[2] != "" {
		norm, err = parseObjIndex(parts[2])
		if err != nil {
			return 0, 0, 0, err
		}
	}
	return pos, uv, norm, nil
}

func parseObjIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid face index %q", s)
	}
	if n == 0 {
		return 0, fmt.Errorf("face index must not be 0")
	}
	return n - 1, nil
}

// computeFlatNormals assigns each triangle's geometric normal to all
// three of its (already duplicated) vertices, used when the source
// OBJ carried no vn data.
func computeFlatNormals(vertices []Vert, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		a := vertices[indices[i]].Position
		b := vertices[indices[i+1]].Position
		c := vertices[indices[i+2]].Position
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() > 0 {
			n = n.Normalize()
		}
		vertices[indices[i]].Normal = n
		vertices[indices[i+1]].Normal = n
		vertices[indices[i+2]].Normal = n
	}
}
