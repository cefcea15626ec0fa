package web

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gridmap/grid"
	ownIo "gridmap/io"
	"gridmap/location"
	"gridmap/naming"
	"net/http"
	"strconv"
	"time"
)

const shutdownTimeout = 10 * time.Second

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func NewErrorResponse(message string, err error) ErrorResponse {
	response := ErrorResponse{
		Error: message,
	}
	if err != nil {
		response.Details = err.Error()
	}
	return response
}

type GeometryResponse struct {
	Extent      [4]float64 `json:"extent"`
	Origin      [2]float64 `json:"origin"`
	Resolutions []float64  `json:"resolutions"`
	MinZoom     int        `json:"min_zoom"`
	MaxZoom     int        `json:"max_zoom"`
	TileSize    int        `json:"tile_size"`
}

type TileResponse struct {
	Id        string         `json:"id"`
	Locator   string         `json:"locator"`
	ZoomLevel int            `json:"zoom_level"`
	Cell      grid.CellIndex `json:"cell"`
	Cells     int            `json:"cells_per_tile_edge"`
}

// Api serves the tile grid and resolves clicks on it for a map host.
type Api struct {
	geometry    grid.Geometry
	tileBaseUrl string
	resolver    naming.Resolver
	presenter   *location.Presenter
}

func NewApi(geometry grid.Geometry, tileBaseUrl string, resolver naming.Resolver, presenter *location.Presenter) *Api {
	return &Api{
		geometry:    geometry,
		tileBaseUrl: tileBaseUrl,
		resolver:    resolver,
		presenter:   presenter,
	}
}

// StartServer serves the handler until the context is done or the server fails. TLS is used when certificate and key
// file are given.
func StartServer(ctx context.Context, port string, certFile string, keyFile string, handler http.Handler) error {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error
		if certFile != "" && keyFile != "" {
			sigolo.Infof("Start server with TLS support on port %s", port)
			err = server.ListenAndServeTLS(certFile, keyFile)
		} else {
			sigolo.Infof("Start server without TLS support on port %s", port)
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "Server on port %s stopped", port)
	})

	group.Go(func() error {
		<-groupCtx.Done()
		sigolo.Info("Shut down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func (a *Api) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.HandleFunc("/geometry", a.handleGeometry).Methods(http.MethodGet)
	r.HandleFunc("/tiles/{z:-?[0-9]+}/{x:-?[0-9]+}/{y:-?[0-9]+}", a.handleTile).Methods(http.MethodGet)
	r.HandleFunc("/locate", a.handleLocate).Methods(http.MethodGet)
	r.HandleFunc("/cells/{x:-?[0-9]+}/{y:-?[0-9]+}", a.handleCell).Methods(http.MethodGet)
	r.HandleFunc("/ws", a.handleSocket)
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(writer, request)
	})
}

func (a *Api) handleGeometry(writer http.ResponseWriter, request *http.Request) {
	extent := a.geometry.Extent()
	writeJson(writer, http.StatusOK, GeometryResponse{
		Extent:      [4]float64{extent.Min.X(), extent.Min.Y(), extent.Max.X(), extent.Max.Y()},
		Origin:      [2]float64{0, 0},
		Resolutions: a.geometry.Resolutions(),
		MinZoom:     a.geometry.MinZoom(),
		MaxZoom:     a.geometry.MaxZoom(),
		TileSize:    a.geometry.TileSize(),
	})
}

func (a *Api) handleTile(writer http.ResponseWriter, request *http.Request) {
	vars := mux.Vars(request)

	tile := grid.TileCoord{}
	var err error
	for name, target := range map[string]*int{"z": &tile.Z, "x": &tile.X, "y": &tile.Y} {
		*target, err = strconv.Atoi(vars[name])
		if err != nil {
			writeError(writer, http.StatusBadRequest, fmt.Sprintf("Invalid tile coordinate %s=%s", name, vars[name]), err)
			return
		}
	}

	address, err := a.geometry.ResolveTile(tile)
	if err != nil {
		sigolo.Debugf("Rejected tile request %s: %+v", tile, err)
		writeError(writer, http.StatusBadRequest, "Tile out of range", err)
		return
	}

	locator := address.Locator(a.tileBaseUrl)
	sigolo.Tracef("Tile %s resolved to %s", tile, locator)

	switch request.URL.Query().Get("format") {
	case "json":
		writeJson(writer, http.StatusOK, TileResponse{
			Id:        address.String(),
			Locator:   locator,
			ZoomLevel: address.ZoomLevel,
			Cell:      address.Cell,
			Cells:     address.CellsPerTileEdge,
		})
	case "geojson":
		writer.Header().Set("Content-Type", "application/geo+json")
		properties := map[string]interface{}{"id": address.String(), "locator": locator}
		err = ownIo.WriteCellExtentAsGeoJson(address.CellExtent(), float64(a.geometry.TileSize()), properties, writer)
		if err != nil {
			sigolo.Errorf("Error writing tile footprint: %+v", err)
		}
	default:
		http.Redirect(writer, request, locator, http.StatusFound)
	}
}

func (a *Api) handleLocate(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	x, err := strconv.ParseFloat(query.Get("x"), 64)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Invalid x coordinate", err)
		return
	}
	y, err := strconv.ParseFloat(query.Get("y"), 64)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Invalid y coordinate", err)
		return
	}

	point := orb.Point{x, y}
	resolved, err := a.geometry.ResolvePoint(point)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Point outside of the world", err)
		return
	}

	name, err := a.resolver.Resolve(request.Context(), resolved.Cell)
	if err != nil {
		sigolo.Debugf("No location for point %v: %+v", point, err)
		writeError(writer, http.StatusNotFound, naming.ErrNoLocation.Error(), err)
		return
	}

	loc := a.presenter.Present(name, point, resolved)
	sigolo.Debugf("Point %v is at %s", point, loc.Uri)

	if query.Get("format") == "html" {
		writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = a.presenter.RenderPopup(writer, loc)
		if err != nil {
			sigolo.Errorf("Error writing popup: %+v", err)
		}
		return
	}

	writeJson(writer, http.StatusOK, loc)
}

func (a *Api) handleCell(writer http.ResponseWriter, request *http.Request) {
	vars := mux.Vars(request)

	cellX, errX := strconv.Atoi(vars["x"])
	cellY, errY := strconv.Atoi(vars["y"])
	if errX != nil || errY != nil {
		writeError(writer, http.StatusBadRequest, "Invalid cell index", nil)
		return
	}

	cell := grid.CellIndex{cellX, cellY}
	if !a.geometry.CellExtent().Contains(cell) {
		writeError(writer, http.StatusNotFound, fmt.Sprintf("Cell %v outside of the world", cell), nil)
		return
	}

	writer.Header().Set("Content-Type", "application/geo+json")
	err := ownIo.WriteCellExtentAsGeoJson(grid.CellExtent{cell, cell}, float64(a.geometry.TileSize()), nil, writer)
	if err != nil {
		sigolo.Errorf("Error writing cell %v: %+v", cell, err)
	}
}

func writeJson(writer http.ResponseWriter, status int, value interface{}) {
	responseBytes, err := json.Marshal(value)
	if err != nil {
		sigolo.Errorf("Error marshalling response: %+v", err)
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_, err = writer.Write(responseBytes)
	if err != nil {
		sigolo.Errorf("Error writing response: %+v", err)
	}
}

func writeError(writer http.ResponseWriter, status int, message string, err error) {
	writeJson(writer, status, NewErrorResponse(message, err))
}
