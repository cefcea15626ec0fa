package io

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"gridmap/grid"
	"io"
)

// WriteCellExtentAsGeoJson writes the footprint of the given cells as a feature collection with a single polygon
// feature. The polygon is in world-units.
func WriteCellExtentAsGeoJson(extent grid.CellExtent, cellSize float64, properties map[string]interface{}, writer io.Writer) error {
	sigolo.Tracef("Write cell extent %v as GeoJSON", extent)

	geoJsonFeature := geojson.NewFeature(extent.ToPolygon(cellSize))
	geoJsonFeature.Properties["@lower_left_cell"] = extent.LowerLeftCell()
	geoJsonFeature.Properties["@upper_right_cell"] = extent.UpperRightCell()
	for key, value := range properties {
		geoJsonFeature.Properties[key] = value
	}

	featureCollection := geojson.NewFeatureCollection()
	featureCollection.Append(geoJsonFeature)

	geojsonBytes, err := featureCollection.MarshalJSON()
	if err != nil {
		return errors.Wrapf(err, "Unable to marshal cell extent %v", extent)
	}

	_, err = writer.Write(geojsonBytes)
	if err != nil {
		return errors.Wrap(err, "Unable to write GeoJSON")
	}

	return nil
}
