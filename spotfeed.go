package metalsim

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/PaesslerAG/jsonpath"
)

// spot feed endpoints, one JSON document per metal.
var spotSymbols = map[Metal]string{
	Gold:      "XAU",
	Silver:    "XAG",
	Platinum:  "XPT",
	Palladium: "XPD",
}

const spotFeedBase = "https://api.gold-api.com/price/"

// FetchSpot retrieves the current spot prices (per troy ounce) for all four
// metals from the public feed. It is a CLI convenience; the simulation
// itself never touches the network.
func FetchSpot(client *http.Client) (map[Metal]float64, error) {
	if client == nil {
		client = new(http.Client)
	}
	out := make(map[Metal]float64, len(metals))
	var errs error
	for _, m := range Metals() {
		val, err := fetchSpotOne(client, spotFeedBase+spotSymbols[m])
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("could not fetch %s spot: %w", m, err))
			continue
		}
		out[m] = val
	}
	return out, errs
}

func fetchSpotOne(client *http.Client, addr string) (float64, error) {
	var jobj any
	if err := jwget(client, addr, &jobj); err != nil {
		return math.NaN(), err
	}
	path := "$.price"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return math.NaN(), fmt.Errorf("error parsing %q: %w", path, err)
	}
	// jsonpath is never clear about whether it returns a list of 1 answer
	// or a single answer: keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return math.NaN(), fmt.Errorf("error parsing %q: not a float: %v", path, jval)
	}
	if val == 0 {
		return math.NaN(), fmt.Errorf("empty quote at %s", addr)
	}
	return val, nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func jwget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}
