package main

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/alecthomas/kong"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/schollz/progressbar/v3"
	"gridmap/config"
	"gridmap/grid"
	"gridmap/location"
	"gridmap/naming"
	"gridmap/web"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

const VERSION = "v0.1.0"

var cli struct {
	Logging string      `help:"Logging verbosity." enum:"info,debug,trace" short:"l" default:"info"`
	Config  string      `help:"YAML configuration file. Defaults and GRIDMAP_* environment variables are used without it." short:"c" type:"existingfile" placeholder:"<config-file>"`
	Version VersionFlag `help:"Print version information and quit" name:"version" short:"v"`
	Serve   struct {
	} `cmd:"" help:"Starts the map server."`
	Tile struct {
		Z int `help:"Zoom value of the map library." arg:""`
		X int `help:"Tile column." arg:""`
		Y int `help:"Tile row. Rows are negative, so put '--' in front of the arguments." arg:""`
	} `cmd:"" help:"Prints identifier and locator of a single tile."`
	Tiles struct {
		Level  int    `help:"Zoom level, 1 being the most detailed one." arg:""`
		Output string `help:"Output file. Prints to stdout if not set." short:"o" placeholder:"<output-file>"`
	} `cmd:"" help:"Lists the locators of all tiles of a zoom level."`
	Locate struct {
		X        float64 `help:"X coordinate in world-units." arg:""`
		Y        float64 `help:"Y coordinate in world-units." arg:""`
		NoLookup bool    `help:"Only resolve cell and offset without asking for the region name." name:"no-lookup"`
	} `cmd:"" help:"Resolves a map coordinate to its cell, offset and region."`
	ConfigCmd struct {
	} `cmd:"" name:"config" help:"Prints the effective configuration."`
}

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	ctx := kong.Parse(
		&cli,
		kong.Name("gridmap"),
		kong.Description("Tile addressing and click resolution for a grid-based world map."),
		kong.Vars{
			"version": VERSION,
		},
	)

	if strings.ToLower(cli.Logging) == "debug" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_DEBUG)
	} else if strings.ToLower(cli.Logging) == "trace" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	} else if strings.ToLower(cli.Logging) == "info" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_INFO)
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
	} else {
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
		sigolo.Fatalf("Unknown logging level '%s'", cli.Logging)
	}

	conf, err := config.Load(cli.Config)
	sigolo.FatalCheck(err)

	geometry, err := conf.Geometry()
	sigolo.FatalCheck(err)

	switch ctx.Command() {
	case "serve":
		err = serve(conf, geometry)
		sigolo.FatalCheck(err)
	case "tile <z> <x> <y>":
		address, err := geometry.ResolveTile(grid.TileCoord{Z: cli.Tile.Z, X: cli.Tile.X, Y: cli.Tile.Y})
		sigolo.FatalCheck(err)
		fmt.Println(address.String())
		fmt.Println(address.Locator(conf.Tiles.BaseUrl))
	case "tiles <level>":
		err = writeTiles(geometry, conf.Tiles.BaseUrl, cli.Tiles.Level, cli.Tiles.Output)
		sigolo.FatalCheck(err)
	case "locate <x> <y>":
		err = locate(conf, geometry, orb.Point{cli.Locate.X, cli.Locate.Y}, !cli.Locate.NoLookup)
		sigolo.FatalCheck(err)
	case "config":
		err = conf.Write(os.Stdout)
		sigolo.FatalCheck(err)
	default:
		sigolo.Errorf("Unknown command '%s'", ctx.Command())
	}
}

func newResolver(conf *config.Config) (naming.Resolver, func(), error) {
	client, err := naming.NewCapabilityClient(conf.Naming.CapabilityUrl, conf.Naming.Variable, conf.Naming.Timeout)
	if err != nil {
		return nil, nil, err
	}

	var store *naming.SqliteStore
	closeStore := func() {}
	if conf.Naming.CacheFile != "" {
		store, err = naming.OpenSqliteStore(conf.Naming.CacheFile)
		if err != nil {
			return nil, nil, err
		}
		closeStore = func() {
			if err := store.Close(); err != nil {
				sigolo.Errorf("Error closing name cache: %+v", err)
			}
		}
	}

	return naming.NewCachingResolver(client, conf.Naming.CacheSize, store), closeStore, nil
}

func serve(conf *config.Config, geometry grid.Geometry) error {
	resolver, closeResolver, err := newResolver(conf)
	if err != nil {
		return err
	}
	defer closeResolver()

	presenter := location.NewPresenter(conf.Location.UriPrefix, conf.Location.JoinUrl)
	api := web.NewApi(geometry, conf.Tiles.BaseUrl, resolver, presenter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return web.StartServer(ctx, conf.Server.Port, conf.Server.CertFile, conf.Server.KeyFile, api.Router())
}

func writeTiles(geometry grid.Geometry, baseUrl string, level int, outputFile string) error {
	tilesPerEdge, err := geometry.TilesPerEdge(level)
	if err != nil {
		return err
	}

	var writer io.Writer = os.Stdout
	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	sigolo.Infof("Write %d tiles of level %d", tilesPerEdge*tilesPerEdge, level)
	var bar *progressbar.ProgressBar
	if outputFile != "" {
		bar = progressbar.Default(int64(tilesPerEdge*tilesPerEdge), "Writing tiles")
		defer bar.Close()
	}

	return geometry.VisitTiles(level, func(tile grid.TileCoord, address grid.TileAddress) error {
		_, err := fmt.Fprintf(writer, "%d\t%d\t%d\t%s\t%s\n", tile.Z, tile.X, tile.Y, address.String(), address.Locator(baseUrl))
		if err != nil {
			return err
		}
		if bar != nil {
			return bar.Add(1)
		}
		return nil
	})
}

func locate(conf *config.Config, geometry grid.Geometry, point orb.Point, lookup bool) error {
	resolved, err := geometry.ResolvePoint(point)
	if err != nil {
		return err
	}

	if !lookup {
		fmt.Printf("Cell: %d, %d\n", resolved.Cell.X(), resolved.Cell.Y())
		fmt.Printf("Offset: %d, %d\n", resolved.Offset.X(), resolved.Offset.Y())
		return nil
	}

	resolver, closeResolver, err := newResolver(conf)
	if err != nil {
		return err
	}
	defer closeResolver()

	name, err := resolver.Resolve(context.Background(), resolved.Cell)
	if err != nil {
		return err
	}

	presenter := location.NewPresenter(conf.Location.UriPrefix, conf.Location.JoinUrl)
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(presenter.Present(name, point, resolved))
}
