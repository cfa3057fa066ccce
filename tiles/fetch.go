package tiles

import (
	"fmt"
	"image"
	"net/http"

	_ "image/jpeg"
	_ "image/png"

	"mapview/geo"
)

// Version is the produced-by version reported in the User-Agent header and
// in exported GeoJSON.
const Version = "0.3.0"

// UserAgent returns the default User-Agent for tile requests.
func UserAgent() string {
	return fmt.Sprintf("mapview/%s", Version)
}

type fetchResult struct {
	img image.Image
	err error
}

// fetch downloads and decodes one tile and writes the single result into
// out. It runs on its own goroutine; out is buffered so the worker never
// blocks on a cache that stopped polling.
func (c *Cache) fetch(id geo.TileID, out chan<- fetchResult) {
	url := c.source.TileURL(id)

	img, err := c.fetchImage(url)
	if err != nil {
		out <- fetchResult{err: fmt.Errorf("tile %s from %s: %w", id, url, err)}
		return
	}
	out <- fetchResult{img: img}
}

func (c *Cache) fetchImage(url string) (image.Image, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode tile image: %w", err)
	}
	return img, nil
}
