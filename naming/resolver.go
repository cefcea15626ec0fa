// Package naming resolves grid cells to the names of the regions occupying them.
package naming

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"gridmap/grid"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var ErrNoLocation = errors.New("no location available")

// Responses of the capability endpoint are a single short script statement.
const maxResponseSize = 64 * 1024

type Resolver interface {
	// Resolve returns the name of the region at the given cell. Every failure, including a cell without region,
	// wraps ErrNoLocation.
	Resolve(ctx context.Context, cell grid.CellIndex) (string, error)
}

// CapabilityClient asks the capability endpoint for region names. The endpoint answers a script assigning the name to
// a variable, e.g. `var slRegionName = "Ahern";`.
type CapabilityClient struct {
	capabilityUrl *url.URL
	variable      string
	httpClient    *http.Client
}

// NewCapabilityClient creates a client for the given endpoint. A timeout of zero means requests only end when the
// context passed to Resolve is done.
func NewCapabilityClient(capabilityUrl string, variable string, timeout time.Duration) (*CapabilityClient, error) {
	parsedUrl, err := url.Parse(capabilityUrl)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid capability URL %s", capabilityUrl)
	}
	if parsedUrl.Scheme == "" || parsedUrl.Host == "" {
		return nil, errors.Errorf("Capability URL %s must be absolute", capabilityUrl)
	}
	if !variableRegex.MatchString(variable) {
		return nil, errors.Errorf("Invalid result variable name '%s'", variable)
	}

	return &CapabilityClient{
		capabilityUrl: parsedUrl,
		variable:      variable,
		httpClient:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *CapabilityClient) requestUrl(cell grid.CellIndex) string {
	requestUrl := *c.capabilityUrl
	query := requestUrl.Query()
	query.Set("var", c.variable)
	query.Set("grid_x", strconv.Itoa(cell.X()))
	query.Set("grid_y", strconv.Itoa(cell.Y()))
	requestUrl.RawQuery = query.Encode()
	return requestUrl.String()
}

func (c *CapabilityClient) Resolve(ctx context.Context, cell grid.CellIndex) (string, error) {
	requestUrl := c.requestUrl(cell)
	sigolo.Debugf("Request region name for cell %v from %s", cell, requestUrl)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return "", errors.Wrapf(ErrNoLocation, "unable to create request for cell %v: %v", cell, err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", errors.Wrapf(ErrNoLocation, "request for cell %v failed: %v", cell, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", errors.Wrapf(ErrNoLocation, "capability endpoint answered %s for cell %v", response.Status, cell)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return "", errors.Wrapf(ErrNoLocation, "unable to read response for cell %v: %v", cell, err)
	}

	name, err := parseAssignment(string(body), c.variable)
	if err != nil {
		return "", errors.Wrapf(err, "cell %v", cell)
	}

	sigolo.Debugf("Cell %v belongs to region '%s'", cell, name)
	return name, nil
}
