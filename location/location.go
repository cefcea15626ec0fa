// Package location turns a resolved click into what the map host shows: the region, the position within it and the
// URI to teleport there.
package location

import (
	"fmt"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"gridmap/grid"
	"html/template"
	"io"
	"math"
	"net/url"
)

type Location struct {
	Name       string         `json:"name"`
	Cell       grid.CellIndex `json:"cell"`
	Offset     grid.Offset    `json:"offset"`
	Coordinate [2]int         `json:"coordinate"`
	Uri        string         `json:"uri"`
}

var popupTemplate = template.Must(template.New("popup").Parse(
	`<h3><a href="{{.Uri}}">{{.Name}}</a></h3>` +
		`<p>Tile: {{index .Cell 0}}, {{index .Cell 1}}<br />` +
		`Coordinate: {{index .Coordinate 0}}, {{index .Coordinate 1}}</p>` +
		`<div class="d-grid gap-2"><a class="btn btn-primary" title="Teleport" href="{{.Uri}}">Teleport</a>` +
		`<a class="btn btn-secondary" href="{{.JoinUrl}}">Join free today</a></div>`,
))

type popupData struct {
	Name       string
	Cell       grid.CellIndex
	Coordinate [2]int
	Uri        template.URL // The URI scheme is not one html/template considers safe on its own
	JoinUrl    string
}

type Presenter struct {
	uriPrefix string
	joinUrl   string
}

func NewPresenter(uriPrefix string, joinUrl string) *Presenter {
	return &Presenter{
		uriPrefix: uriPrefix,
		joinUrl:   joinUrl,
	}
}

// Uri returns "<prefix><escaped name>/<localX>/<localY>".
func (p *Presenter) Uri(name string, offset grid.Offset) string {
	return fmt.Sprintf("%s%s/%d/%d", p.uriPrefix, url.PathEscape(name), offset.X(), offset.Y())
}

// Present combines the clicked point, its resolved cell and the region name into a location.
func (p *Presenter) Present(name string, point orb.Point, resolved grid.PointLocation) Location {
	return Location{
		Name:       name,
		Cell:       resolved.Cell,
		Offset:     resolved.Offset,
		Coordinate: [2]int{int(math.Round(point.X())), int(math.Round(point.Y()))},
		Uri:        p.Uri(name, resolved.Offset),
	}
}

// RenderPopup writes the HTML fragment of the location popup.
func (p *Presenter) RenderPopup(writer io.Writer, location Location) error {
	err := popupTemplate.Execute(writer, popupData{
		Name:       location.Name,
		Cell:       location.Cell,
		Coordinate: location.Coordinate,
		Uri:        template.URL(location.Uri),
		JoinUrl:    p.joinUrl,
	})
	if err != nil {
		return errors.Wrapf(err, "Unable to render popup for region '%s'", location.Name)
	}
	return nil
}
