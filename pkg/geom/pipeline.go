package geom

// Triangulate runs a shape collection through the whole pipeline: winding
// correction, validation, boolean reduction, triangulation and, when it is
// safe, redundant triangle removal. An invalid collection produces no
// triangles.
func Triangulate(collection ShapeCollection) TriangleList {
	polygons := make([]Polygon, 0, len(collection.Polygons))
	negative := make([]bool, 0, len(collection.Polygons))
	hasHoles := false
	for _, shape := range collection.Polygons {
		if len(shape.Vertices) >= 3 {
			polygons = append(polygons, CorrectPolygonWinding(shape.Vertices, shape.Negative))
			negative = append(negative, shape.Negative)
		}
		if shape.Negative {
			hasHoles = true
		}
	}

	if !ArePolygonsValid(polygons) {
		return nil
	}

	var out TriangleList
	for _, region := range ReducePolygons(polygons, negative) {
		out = append(out, TriangulateRegion(region, collection.AvoidVertexMerging)...)
	}

	// Shapes with holes are left alone: their triangles can legitimately
	// share edges around the hole.
	if !hasHoles && !collection.AvoidVertexMerging && len(collection.Polygons) > 1 && out.Count() > 1 {
		out = RemoveRedundantTriangles(out)
	}
	return out
}
