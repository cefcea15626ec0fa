package web

import (
	"context"
	"encoding/json"
	"github.com/gorilla/websocket"
	"github.com/paulmach/orb/geojson"
	"gridmap/grid"
	"gridmap/location"
	"gridmap/naming"
	"gridmap/util"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type mapResolver map[grid.CellIndex]string

func (r mapResolver) Resolve(ctx context.Context, cell grid.CellIndex) (string, error) {
	name, ok := r[cell]
	if !ok {
		return "", naming.ErrNoLocation
	}
	return name, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	geometry, err := grid.NewGeometry(1048576, 1, 8, 256)
	util.AssertNil(t, err)

	resolver := mapResolver{{997, 1001}: "Da Boom"}
	presenter := location.NewPresenter("secondlife://", "https://join.example.com/")
	api := NewApi(geometry, "https://tiles.example.com", resolver, presenter)

	server := httptest.NewServer(api.Router())
	t.Cleanup(server.Close)
	return server
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func getBody(t *testing.T, response *http.Response) string {
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	util.AssertNil(t, err)
	return string(body)
}

func TestApi_geometry(t *testing.T) {
	server := newTestServer(t)

	response, err := http.Get(server.URL + "/geometry")
	util.AssertNil(t, err)
	util.AssertEqual(t, http.StatusOK, response.StatusCode)
	util.AssertEqual(t, "*", response.Header.Get("Access-Control-Allow-Origin"))

	geometry := GeometryResponse{}
	util.AssertNil(t, json.Unmarshal([]byte(getBody(t, response)), &geometry))
	util.AssertEqual(t, GeometryResponse{
		Extent:      [4]float64{0, 0, 1048576, 1048576},
		Origin:      [2]float64{0, 0},
		Resolutions: []float64{128, 64, 32, 16, 8, 4, 2, 1},
		MinZoom:     1,
		MaxZoom:     8,
		TileSize:    256,
	}, geometry)
}

func TestApi_tileRedirect(t *testing.T) {
	server := newTestServer(t)

	response, err := noRedirectClient().Get(server.URL + "/tiles/6/3/-2")
	util.AssertNil(t, err)
	defer response.Body.Close()

	util.AssertEqual(t, http.StatusFound, response.StatusCode)
	util.AssertEqual(t, "https://tiles.example.com/map-2-6-2-objects.jpg", response.Header.Get("Location"))
}

func TestApi_tileJson(t *testing.T) {
	server := newTestServer(t)

	response, err := http.Get(server.URL + "/tiles/6/3/-2?format=json")
	util.AssertNil(t, err)
	util.AssertEqual(t, http.StatusOK, response.StatusCode)

	tile := TileResponse{}
	util.AssertNil(t, json.Unmarshal([]byte(getBody(t, response)), &tile))
	util.AssertEqual(t, TileResponse{
		Id:        "2-6-2",
		Locator:   "https://tiles.example.com/map-2-6-2-objects.jpg",
		ZoomLevel: 2,
		Cell:      grid.CellIndex{6, 2},
		Cells:     2,
	}, tile)
}

func TestApi_tileGeoJson(t *testing.T) {
	server := newTestServer(t)

	response, err := http.Get(server.URL + "/tiles/6/3/-2?format=geojson")
	util.AssertNil(t, err)
	util.AssertEqual(t, http.StatusOK, response.StatusCode)

	featureCollection, err := geojson.UnmarshalFeatureCollection([]byte(getBody(t, response)))
	util.AssertNil(t, err)
	util.AssertEqual(t, "2-6-2", featureCollection.Features[0].Properties.MustString("id"))
}

func TestApi_tileOutOfRange(t *testing.T) {
	server := newTestServer(t)

	response, err := http.Get(server.URL + "/tiles/8/0/-1")
	util.AssertNil(t, err)
	util.AssertEqual(t, http.StatusBadRequest, response.StatusCode)

	errorResponse := ErrorResponse{}
	util.AssertNil(t, json.Unmarshal([]byte(getBody(t, response)), &errorResponse))
	util.AssertEqual(t, "Tile out of range", errorResponse.Error)
}

func TestApi_locate(t *testing.T) {
	server := newTestServer(t)

	response, err := http.Get(server.URL + "/locate?x=255233&y=256510")
	util.AssertNil(t, err)
	util.AssertEqual(t, http.StatusOK, response.StatusCode)

	loc := location.Location{}
	util.AssertNil(t, json.Unmarshal([]byte(getBody(t, response)), &loc))
	util.AssertEqual(t, location.Location{
		Name:       "Da Boom",
		Cell:       grid.CellIndex{997, 1001},
		Offset:     grid.Offset{1, 254},
		Coordinate: [2]int{255233, 256510},
		Uri:        "secondlife://Da%20Boom/1/254",
	}, loc)
}

func TestApi_locateHtml(t *testing.T) {
	server := newTestServer(t)

	response, err := http.Get(server.URL + "/locate?x=255233&y=256510&format=html")
	util.AssertNil(t, err)
	util.AssertEqual(t, http.StatusOK, response.StatusCode)
	util.AssertTrue(t, strings.HasPrefix(response.Header.Get("Content-Type"), "text/html"))

	body := getBody(t, response)
	util.AssertMatch(t, `<a href="secondlife://Da%20Boom/1/254">Da Boom</a>`, body)
}

func TestApi_locateWithoutRegion(t *testing.T) {
	server := newTestServer(t)

	response, err := http.Get(server.URL + "/locate?x=10&y=10")
	util.AssertNil(t, err)
	util.AssertEqual(t, http.StatusNotFound, response.StatusCode)

	errorResponse := ErrorResponse{}
	util.AssertNil(t, json.Unmarshal([]byte(getBody(t, response)), &errorResponse))
	util.AssertEqual(t, "no location available", errorResponse.Error)
}

func TestApi_locateInvalidPoint(t *testing.T) {
	server := newTestServer(t)

	for _, query := range []string{"x=abc&y=10", "x=10", "x=-1&y=10", "x=10&y=1048576"} {
		response, err := http.Get(server.URL + "/locate?" + query)
		util.AssertNil(t, err)
		response.Body.Close()
		util.AssertEqual(t, http.StatusBadRequest, response.StatusCode)
	}
}

func TestApi_cell(t *testing.T) {
	server := newTestServer(t)

	response, err := http.Get(server.URL + "/cells/997/1001")
	util.AssertNil(t, err)
	util.AssertEqual(t, http.StatusOK, response.StatusCode)

	featureCollection, err := geojson.UnmarshalFeatureCollection([]byte(getBody(t, response)))
	util.AssertNil(t, err)
	bound := featureCollection.Features[0].Geometry.Bound()
	util.AssertEqual(t, 255232.0, bound.Min.X())
	util.AssertEqual(t, 256256.0, bound.Min.Y())
	util.AssertEqual(t, 255488.0, bound.Max.X())

	response, err = http.Get(server.URL + "/cells/4096/0")
	util.AssertNil(t, err)
	response.Body.Close()
	util.AssertEqual(t, http.StatusNotFound, response.StatusCode)
}

func TestApi_socket(t *testing.T) {
	server := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	util.AssertNil(t, err)
	defer conn.Close()
	util.AssertNil(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	// Outside of the world
	util.AssertNil(t, conn.WriteJSON(ClickMessage{X: -5, Y: 10}))
	message := LocationMessage{}
	util.AssertNil(t, conn.ReadJSON(&message))
	util.AssertTrue(t, message.Location == nil)
	util.AssertTrue(t, message.Error != "")

	// Without region nothing is sent, so the next answer belongs to the following click
	util.AssertNil(t, conn.WriteJSON(ClickMessage{X: 10, Y: 10}))
	util.AssertNil(t, conn.WriteJSON(ClickMessage{X: 255233, Y: 256510}))

	message = LocationMessage{}
	util.AssertNil(t, conn.ReadJSON(&message))
	util.AssertNotNil(t, message.Location)
	util.AssertEqual(t, "Da Boom", message.Location.Name)
	util.AssertEqual(t, "secondlife://Da%20Boom/1/254", message.Location.Uri)
}
