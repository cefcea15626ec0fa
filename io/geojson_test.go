package io

import (
	"bytes"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gridmap/grid"
	"gridmap/util"
	"testing"
)

func TestWriteCellExtentAsGeoJson(t *testing.T) {
	buffer := &bytes.Buffer{}
	extent := grid.CellExtent{grid.CellIndex{6, 2}, grid.CellIndex{7, 3}}

	err := WriteCellExtentAsGeoJson(extent, 256, map[string]interface{}{"id": "2-6-2"}, buffer)
	util.AssertNil(t, err)

	featureCollection, err := geojson.UnmarshalFeatureCollection(buffer.Bytes())
	util.AssertNil(t, err)
	util.AssertEqual(t, 1, len(featureCollection.Features))

	feature := featureCollection.Features[0]
	util.AssertEqual(t, orb.Bound{Min: orb.Point{1536, 512}, Max: orb.Point{2048, 1024}}, feature.Geometry.Bound())
	util.AssertEqual(t, "2-6-2", feature.Properties.MustString("id"))
	util.AssertEqual(t, []interface{}{6.0, 2.0}, feature.Properties["@lower_left_cell"])
	util.AssertEqual(t, []interface{}{7.0, 3.0}, feature.Properties["@upper_right_cell"])
}
